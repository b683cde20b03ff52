// identity.go — middleware определения действующего пользователя.
// Режим jwt: Bearer token, подпись RS256 проверяется через JWKS провайдера
// идентификации, числовой ID пользователя берётся из настраиваемого claim.
// Режим header: ID пользователя передаётся в заголовке X-User-ID
// (разработка или доверенный шлюз).
// ID должен разрешаться в пользователя хранилища; Actor помещается в контекст.
package middleware

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	apierrors "github.com/BigWhaleDJY/MCMP-stack/internal/api/errors"
	"github.com/BigWhaleDJY/MCMP-stack/internal/domain/model"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

const (
	// ContextKeyActor — действующий пользователь в контексте запроса.
	ContextKeyActor contextKey = "actor"

	contextKeyActorHolder contextKey = "actor_holder"
)

// HeaderUserID — заголовок с ID пользователя в режиме header.
const HeaderUserID = "X-User-ID"

// Режимы определения пользователя.
const (
	ModeJWT    = "jwt"
	ModeHeader = "header"
)

// DefaultUserClaim — claim JWT с ID пользователя по умолчанию.
const DefaultUserClaim = "sub"

// Actor — действующий пользователь запроса.
type Actor struct {
	UserID   int64
	OrgID    int64
	Role     model.Role
	FullName string
}

// UserResolver — поиск пользователя по ID. Реализуется repository.Store.
type UserResolver interface {
	GetUser(id int64) (*model.User, error)
}

// Identity — middleware определения действующего пользователя.
type Identity struct {
	mode      string
	jwks      keyfunc.Keyfunc
	issuer    string
	userClaim string
	jwtLeeway time.Duration
	users     UserResolver
	logger    *slog.Logger
}

// NewHeaderIdentity создаёт middleware режима header.
func NewHeaderIdentity(users UserResolver, logger *slog.Logger) *Identity {
	return &Identity{
		mode:   ModeHeader,
		users:  users,
		logger: logger.With(slog.String("component", "identity")),
	}
}

// NewJWTIdentity создаёт middleware режима jwt с JWKS провайдера идентификации.
// jwksURL — URL JWKS endpoint.
// caCertPath — опциональный путь к CA-сертификату для TLS.
// issuer — ожидаемый issuer JWT (пустая строка — не проверяется).
// userClaim — claim с числовым ID пользователя (MCMP_JWT_USER_CLAIM).
// jwksClientTimeout — таймаут HTTP-клиента JWKS (MCMP_JWKS_CLIENT_TIMEOUT).
// jwksRefreshInterval — интервал обновления ключей (MCMP_JWKS_REFRESH_INTERVAL).
// jwtLeeway — допустимое отклонение времени (MCMP_JWT_LEEWAY).
func NewJWTIdentity(
	jwksURL string,
	caCertPath string,
	issuer string,
	userClaim string,
	jwksClientTimeout time.Duration,
	jwksRefreshInterval time.Duration,
	jwtLeeway time.Duration,
	users UserResolver,
	logger *slog.Logger,
) (*Identity, error) {
	httpClient := &http.Client{Timeout: jwksClientTimeout}
	if caCertPath != "" {
		var err error
		httpClient, err = httpClientWithCA(caCertPath, jwksClientTimeout)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата %s: %w", caCertPath, err)
		}
		logger.Info("CA-сертификат для JWKS добавлен в пул доверия",
			slog.String("ca_cert", caCertPath),
		)
	}

	// NoErrorReturnFirstHTTPReq — стартуем даже если провайдер ещё недоступен
	storage, err := jwkset.NewStorageFromHTTP(jwksURL, jwkset.HTTPClientStorageOptions{
		Client:                    httpClient,
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           jwksRefreshInterval,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Error("Ошибка обновления JWKS",
				slog.String("error", err.Error()),
				slog.String("url", jwksURL),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("создание JWKS storage: %w", err)
	}

	k, err := keyfunc.New(keyfunc.Options{
		Storage: storage,
	})
	if err != nil {
		return nil, fmt.Errorf("создание keyfunc: %w", err)
	}

	id := NewJWTIdentityWithKeyfunc(k, issuer, userClaim, users, logger)
	id.jwtLeeway = jwtLeeway
	return id, nil
}

// NewJWTIdentityWithKeyfunc создаёт middleware режима jwt с предоставленной keyfunc.
// Используется в тестах для подстановки mock JWKS.
func NewJWTIdentityWithKeyfunc(
	kf keyfunc.Keyfunc,
	issuer string,
	userClaim string,
	users UserResolver,
	logger *slog.Logger,
) *Identity {
	if userClaim == "" {
		userClaim = DefaultUserClaim
	}
	return &Identity{
		mode:      ModeJWT,
		jwks:      kf,
		issuer:    issuer,
		userClaim: userClaim,
		users:     users,
		logger:    logger.With(slog.String("component", "identity")),
	}
}

// httpClientWithCA создаёт HTTP-клиент с кастомным CA-сертификатом.
func httpClientWithCA(caCertPath string, timeout time.Duration) (*http.Client, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, err
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	caCertPool.AppendCertsFromPEM(caCert)

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				RootCAs: caCertPool,
			},
		},
	}, nil
}

// Mode возвращает режим определения пользователя.
func (i *Identity) Mode() string {
	return i.mode
}

// Middleware возвращает HTTP middleware, определяющий действующего пользователя.
// Ошибки токена — 401 UNAUTHORIZED, отсутствующий или неизвестный
// пользователь — 401 IDENTITY_MISSING.
func (i *Identity) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var raw string
			if i.mode == ModeJWT {
				var ok bool
				raw, ok = i.userFromToken(w, r)
				if !ok {
					return
				}
			} else {
				raw = strings.TrimSpace(r.Header.Get(HeaderUserID))
			}

			if raw == "" {
				apierrors.IdentityMissing(w, "Не указан идентификатор пользователя")
				return
			}
			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || userID <= 0 {
				apierrors.IdentityMissing(w, fmt.Sprintf("Некорректный идентификатор пользователя %q", raw))
				return
			}

			u, err := i.users.GetUser(userID)
			if err != nil {
				i.logger.Debug("Пользователь не найден",
					slog.Int64("user_id", userID),
					slog.String("error", err.Error()),
				)
				apierrors.IdentityMissing(w, fmt.Sprintf("Пользователь %d не найден", userID))
				return
			}

			actor := &Actor{UserID: u.ID, OrgID: u.OrgID, Role: u.Role, FullName: u.FullName}
			if holder, ok := r.Context().Value(contextKeyActorHolder).(*actorHolder); ok {
				holder.actor = actor
			}
			ctx := context.WithValue(r.Context(), ContextKeyActor, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// userFromToken извлекает Bearer token, проверяет подпись и возвращает
// значение claim с ID пользователя. При ошибке ответ уже записан.
func (i *Identity) userFromToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		apierrors.Unauthorized(w, "Отсутствует заголовок Authorization")
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		apierrors.Unauthorized(w, "Неверный формат Authorization: ожидается Bearer <token>")
		return "", false
	}

	tokenString := parts[1]
	if tokenString == "" {
		apierrors.Unauthorized(w, "Пустой Bearer token")
		return "", false
	}

	claims := jwt.MapClaims{}
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(i.jwtLeeway),
	}
	if i.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(i.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, i.jwks.KeyfuncCtx(r.Context()), parserOpts...)
	if err != nil || !token.Valid {
		msg := "невалидный токен"
		if err != nil {
			msg = err.Error()
		}
		i.logger.Debug("JWT валидация не пройдена",
			slog.String("error", msg),
			slog.String("remote_addr", r.RemoteAddr),
		)
		apierrors.Unauthorized(w, "Невалидный или просроченный токен")
		return "", false
	}

	return claimString(claims[i.userClaim]), true
}

// claimString приводит значение claim к строке. Числовые claims
// в JSON декодируются как float64.
func claimString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		if val != math.Trunc(val) {
			return strconv.FormatFloat(val, 'f', -1, 64)
		}
		return strconv.FormatInt(int64(val), 10)
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// CheckReady реализует ReadinessChecker для режима header.
// В режиме jwt готовность провайдера проверяет мониторинг зависимостей.
func (i *Identity) CheckReady() (string, string) {
	return "ok", "режим " + i.mode
}

// --- Context helpers ---

// actorHolder передаёт определённого пользователя внешним middleware
// (логирование запросов).
type actorHolder struct {
	actor *Actor
}

func withActorHolder(ctx context.Context, h *actorHolder) context.Context {
	return context.WithValue(ctx, contextKeyActorHolder, h)
}

// ActorFromContext извлекает Actor из контекста запроса.
// Возвращает nil, если пользователь не определён.
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(ContextKeyActor).(*Actor)
	return actor
}

// WithActor помещает Actor в контекст.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, ContextKeyActor, actor)
}
