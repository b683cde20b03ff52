package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/BigWhaleDJY/MCMP-stack/internal/api/handlers"
	"github.com/BigWhaleDJY/MCMP-stack/internal/api/middleware"
	"github.com/BigWhaleDJY/MCMP-stack/internal/api/openapi"
	"github.com/BigWhaleDJY/MCMP-stack/internal/config"
	"github.com/BigWhaleDJY/MCMP-stack/internal/server"
	"github.com/BigWhaleDJY/MCMP-stack/internal/service"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, logger)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("MCMP запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("auth_mode", cfg.AuthMode),
	)

	// 1. Хранилище и сервисный слой
	a, err := newApp(cfg, logger, nil)
	if err != nil {
		return err
	}
	logger.Info("Хранилище инициализировано",
		slog.Bool("demo_data", cfg.SeedDemoData),
		slog.Uint64("version", a.store.Version()),
	)

	// 2. Определение пользователя
	var identity *middleware.Identity
	if cfg.AuthMode == config.AuthModeJWT {
		identity, err = middleware.NewJWTIdentity(
			cfg.JWTJWKSURL,
			cfg.CACertPath,
			cfg.JWTIssuer,
			cfg.JWTUserClaim,
			cfg.JWKSClientTimeout,
			cfg.JWKSRefreshInterval,
			cfg.JWTLeeway,
			a.store,
			logger,
		)
		if err != nil {
			return fmt.Errorf("создание JWT middleware: %w", err)
		}
		logger.Info("JWT middleware инициализирован",
			slog.String("jwks_url", cfg.JWTJWKSURL),
			slog.String("issuer", cfg.JWTIssuer),
			slog.String("user_claim", cfg.JWTUserClaim),
		)
	} else {
		identity = middleware.NewHeaderIdentity(a.store, logger)
		logger.Warn("Пользователь определяется по заголовку X-User-ID, режим только для разработки")
	}

	// 3. topologymetrics — мониторинг JWKS endpoint (только режим jwt)
	var identityChecker handlers.ReadinessChecker = identity
	var dephealthSvc *service.DephealthService
	if cfg.AuthMode == config.AuthModeJWT {
		if os.Getenv("MCMP_DEPHEALTH_GROUP") == "" {
			logger.Warn("MCMP_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
				slog.String("default", cfg.DephealthGroup),
			)
		}
		var dhErr error
		dephealthSvc, dhErr = service.NewDephealthService(
			serviceID,
			cfg.DephealthGroup,
			cfg.JWTJWKSURL,
			cfg.DephealthCheckInterval,
			logger,
		)
		if dhErr != nil {
			logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
				slog.String("error", dhErr.Error()),
			)
			dephealthSvc = nil
		} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
			dephealthSvc = nil
		} else {
			identityChecker = dephealthSvc
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 4. OpenAPI документ
	doc, err := openapi.Load(ctx)
	if err != nil {
		return err
	}
	docHandler, err := openapi.Handler(doc)
	if err != nil {
		return err
	}

	// 5. API handlers
	healthHandler := handlers.NewHealthHandler(a.store, a.dashboard, identityChecker)
	apiHandler := handlers.NewAPIHandler(
		healthHandler,
		a.dashboard,
		a.review,
		a.profile,
		a.directory,
		a.export,
		logger,
	)

	// 6. HTTP-сервер
	srv := server.New(cfg, logger, apiHandler, identity, docHandler)
	runErr := srv.Run(ctx)

	// 7. Остановка фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}
	if runErr != nil {
		return runErr
	}

	logger.Info("MCMP остановлен")
	return nil
}
