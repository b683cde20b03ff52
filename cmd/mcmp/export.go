package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Сохранить XLSX-отчёт о соответствии",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cfg, logger, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			if err := runExport(a, out); err != nil {
				return err
			}
			logger.Info("Отчёт сохранён", slog.String("path", out))
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "compliance.xlsx", "Путь к файлу отчёта")
	return cmd
}

func runExport(a *app, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("создание файла отчёта: %w", err)
	}
	if err := a.export.WriteComplianceReport(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("закрытие файла отчёта: %w", err)
	}
	return nil
}
