// Пакет server — HTTP-сервер MCMP с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на API Gateway.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/BigWhaleDJY/MCMP-stack/internal/api/handlers"
	"github.com/BigWhaleDJY/MCMP-stack/internal/api/middleware"
	"github.com/BigWhaleDJY/MCMP-stack/internal/config"
)

// Server — HTTP-сервер MCMP.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер с настроенными routes и middleware.
// identity может быть nil (маршруты /api/v1 доступны без пользователя).
func New(
	cfg *config.Config,
	logger *slog.Logger,
	handler *handlers.APIHandler,
	identity *middleware.Identity,
	apiDoc http.Handler,
) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewRouter(logger, handler, identity, apiDoc),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Server{
		httpServer: srv,
		logger:     logger.With(slog.String("component", "http_server")),
		cfg:        cfg,
	}
}

// NewRouter регистрирует все маршруты API.
// Health, metrics и OpenAPI документ доступны без определения пользователя.
func NewRouter(
	logger *slog.Logger,
	handler *handlers.APIHandler,
	identity *middleware.Identity,
	apiDoc http.Handler,
) chi.Router {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	router.Get("/health/live", handler.HealthLive)
	router.Get("/health/ready", handler.HealthReady)
	router.Get("/metrics", handler.GetMetrics)
	if apiDoc != nil {
		router.Method(http.MethodGet, "/api/v1/openapi.json", apiDoc)
	}

	router.Group(func(r chi.Router) {
		if identity != nil {
			r.Use(identity.Middleware())
		}

		r.Get("/api/v1/me", handler.GetMe)
		r.Patch("/api/v1/me", handler.UpdateMe)

		r.Get("/api/v1/contractors", handler.ListContractors)
		r.Get("/api/v1/contractors/{orgID}", handler.GetContractor)

		r.Get("/api/v1/organizations/{orgID}", handler.GetOrganization)
		r.Get("/api/v1/organizations/{orgID}/projects", handler.ListOrganizationProjects)
		r.Get("/api/v1/organizations/{orgID}/users", handler.ListOrganizationUsers)

		r.Get("/api/v1/projects/{projectID}", handler.GetProjectDetails)
		r.Post("/api/v1/projects/{projectID}/files", handler.SubmitFile)

		r.Get("/api/v1/file-records/{fileRecordID}", handler.GetFileRecord)
		r.Post("/api/v1/file-records/{fileRecordID}/approve", handler.ApproveFile)
		r.Post("/api/v1/file-records/{fileRecordID}/reject", handler.RejectFile)

		r.Get("/api/v1/reports/compliance.xlsx", handler.GetComplianceReport)
	})

	return router
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM)
// или отмены ctx. После этого выполняется graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case <-ctx.Done():
		s.logger.Info("Контекст сервера отменён")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
		return nil
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
