// Точка входа MCMP — сервис проверки документов подрядчиков.
// Команды: serve (HTTP API), dashboard (карточки подрядчиков),
// export (XLSX-отчёт), version.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/BigWhaleDJY/MCMP-stack/internal/config"
	"github.com/BigWhaleDJY/MCMP-stack/internal/repository"
	"github.com/BigWhaleDJY/MCMP-stack/internal/service"
)

// serviceID — имя вершины графа зависимостей.
const serviceID = "mcmp"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// cobra уже вывел ошибку
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mcmp",
		Short:         "Сервис проверки документов подрядчиков",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newServeCmd(),
		newDashboardCmd(),
		newExportCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Версия сборки",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", serviceID, config.Version)
			return err
		},
	}
}

// app — сервисный слой поверх хранилища.
type app struct {
	store     *repository.Store
	metrics   *service.Metrics
	dashboard *service.DashboardService
	review    *service.ReviewService
	profile   *service.ProfileService
	directory *service.DirectoryService
	export    *service.ExportService
}

// newApp создаёт хранилище и сервисы. reg == nil — глобальный registry.
func newApp(cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*app, error) {
	seed := repository.Seed{}
	if cfg.SeedDemoData {
		seed = repository.DemoSeed()
	}
	store, err := repository.NewStore(seed)
	if err != nil {
		return nil, fmt.Errorf("инициализация хранилища: %w", err)
	}

	var metrics *service.Metrics
	if reg == nil {
		metrics = service.NewMetrics()
	} else {
		metrics = service.NewMetricsWithRegisterer(reg)
	}

	cache := service.NewCacheService(cfg.DetailsCacheSize, cfg.DetailsCacheTTL, metrics)
	dashboard := service.NewDashboardService(store, cache, metrics, nil, logger)

	return &app{
		store:     store,
		metrics:   metrics,
		dashboard: dashboard,
		review: service.NewReviewService(store, dashboard, metrics, logger,
			service.WithUploadURLPrefix(cfg.UploadURLPrefix)),
		profile:   service.NewProfileService(store, dashboard, cfg.PhoneRegion, logger),
		directory: service.NewDirectoryService(store),
		export:    service.NewExportService(dashboard, logger),
	}, nil
}

// loadConfig загружает конфигурацию и настраивает логирование.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("загрузка конфигурации: %w", err)
	}
	return cfg, config.SetupLogger(cfg), nil
}
