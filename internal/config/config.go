// Пакет config — загрузка и валидация конфигурации сервиса
// из переменных окружения.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Режимы определения пользователя (MCMP_AUTH_MODE).
const (
	AuthModeJWT    = "jwt"
	AuthModeHeader = "header"
)

// Config содержит все параметры конфигурации сервиса.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера (1-65535)
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Таймауты HTTP-сервера
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// --- Идентификация ---

	// Режим: jwt или header
	AuthMode string
	// URL JWKS endpoint (обязателен в режиме jwt)
	JWTJWKSURL string
	// Ожидаемый issuer JWT (пустая строка — не проверяется)
	JWTIssuer string
	// Claim с числовым ID пользователя
	JWTUserClaim string
	// Допустимое отклонение времени при проверке JWT
	JWTLeeway time.Duration
	// Интервал обновления JWKS-ключей
	JWKSRefreshInterval time.Duration
	// Таймаут HTTP-клиента JWKS
	JWKSClientTimeout time.Duration
	// Путь к CA-сертификату для JWKS (опционально)
	CACertPath string

	// --- Данные ---

	// Загружать демонстрационные данные при старте
	SeedDemoData bool
	// Префикс fileUrl, если URL не передан при загрузке
	UploadURLPrefix string
	// Регион по умолчанию для проверки телефонов
	PhoneRegion string
	// Размер LRU-кэша карточек проектов
	DetailsCacheSize int
	// TTL записей кэша карточек проектов
	DetailsCacheTTL time.Duration

	// --- Мониторинг зависимостей ---

	// Группа в метриках topologymetrics
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// значения и возвращает Config или ошибку с именем переменной.
// Перед чтением загружается .env файл (MCMP_ENV_FILE), если он существует;
// уже заданные переменные окружения не перезаписываются.
func Load() (*Config, error) {
	if err := loadEnvFile(getEnvDefault("MCMP_ENV_FILE", ".env")); err != nil {
		return nil, fmt.Errorf("MCMP_ENV_FILE: %w", err)
	}

	cfg := &Config{}
	var err error

	// --- Сервер ---

	// MCMP_PORT — порт HTTP-сервера (по умолчанию 8000)
	cfg.Port, err = getEnvInt("MCMP_PORT", 8000)
	if err != nil {
		return nil, fmt.Errorf("MCMP_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("MCMP_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// MCMP_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("MCMP_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("MCMP_LOG_LEVEL: %w", err)
	}

	// MCMP_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("MCMP_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("MCMP_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	cfg.ReadTimeout, err = getEnvDuration("MCMP_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MCMP_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.WriteTimeout, err = getEnvDuration("MCMP_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MCMP_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.IdleTimeout, err = getEnvDuration("MCMP_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MCMP_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- Идентификация ---

	// MCMP_AUTH_MODE — jwt или header (по умолчанию header)
	cfg.AuthMode = strings.ToLower(getEnvDefault("MCMP_AUTH_MODE", AuthModeHeader))
	if cfg.AuthMode != AuthModeJWT && cfg.AuthMode != AuthModeHeader {
		return nil, fmt.Errorf("MCMP_AUTH_MODE: недопустимое значение %q, допустимые: jwt, header", cfg.AuthMode)
	}

	// MCMP_JWT_JWKS_URL — обязательный в режиме jwt
	if cfg.AuthMode == AuthModeJWT {
		cfg.JWTJWKSURL, err = getEnvRequired("MCMP_JWT_JWKS_URL")
		if err != nil {
			return nil, err
		}
	} else {
		cfg.JWTJWKSURL = getEnvDefault("MCMP_JWT_JWKS_URL", "")
	}

	cfg.JWTIssuer = getEnvDefault("MCMP_JWT_ISSUER", "")
	cfg.JWTUserClaim = getEnvDefault("MCMP_JWT_USER_CLAIM", "sub")

	cfg.JWTLeeway, err = getEnvDuration("MCMP_JWT_LEEWAY", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MCMP_JWT_LEEWAY: %w", err)
	}
	cfg.JWKSRefreshInterval, err = getEnvDuration("MCMP_JWKS_REFRESH_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("MCMP_JWKS_REFRESH_INTERVAL: %w", err)
	}
	cfg.JWKSClientTimeout, err = getEnvDuration("MCMP_JWKS_CLIENT_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MCMP_JWKS_CLIENT_TIMEOUT: %w", err)
	}

	// MCMP_CA_CERT_PATH — путь к CA-сертификату (опционально)
	cfg.CACertPath = getEnvDefault("MCMP_CA_CERT_PATH", "")

	// --- Данные ---

	cfg.SeedDemoData, err = getEnvBool("MCMP_SEED_DEMO_DATA", true)
	if err != nil {
		return nil, fmt.Errorf("MCMP_SEED_DEMO_DATA: %w", err)
	}

	cfg.UploadURLPrefix = getEnvDefault("MCMP_UPLOAD_URL_PREFIX", "/mock/uploads")
	cfg.PhoneRegion = strings.ToUpper(getEnvDefault("MCMP_PHONE_REGION", "AU"))
	if len(cfg.PhoneRegion) != 2 {
		return nil, fmt.Errorf("MCMP_PHONE_REGION: ожидается двухбуквенный код региона, получено %q", cfg.PhoneRegion)
	}

	cfg.DetailsCacheSize, err = getEnvInt("MCMP_DETAILS_CACHE_SIZE", 256)
	if err != nil {
		return nil, fmt.Errorf("MCMP_DETAILS_CACHE_SIZE: %w", err)
	}
	if cfg.DetailsCacheSize < 1 || cfg.DetailsCacheSize > 100000 {
		return nil, fmt.Errorf("MCMP_DETAILS_CACHE_SIZE: значение %d вне допустимого диапазона 1-100000", cfg.DetailsCacheSize)
	}
	cfg.DetailsCacheTTL, err = getEnvDuration("MCMP_DETAILS_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("MCMP_DETAILS_CACHE_TTL: %w", err)
	}

	// --- Мониторинг зависимостей ---

	cfg.DephealthGroup = getEnvDefault("MCMP_DEPHEALTH_GROUP", "mcmp")
	cfg.DephealthCheckInterval, err = getEnvDuration("MCMP_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MCMP_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("MCMP_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MCMP_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// loadEnvFile загружает переменные из .env файла. Отсутствие файла не ошибка.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает логическое значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное логическое значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
