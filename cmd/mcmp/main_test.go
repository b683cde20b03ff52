package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xuri/excelize/v2"

	"github.com/BigWhaleDJY/MCMP-stack/internal/config"
	"github.com/BigWhaleDJY/MCMP-stack/internal/domain/model"
	"github.com/BigWhaleDJY/MCMP-stack/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig() *config.Config {
	return &config.Config{
		SeedDemoData:     true,
		UploadURLPrefix:  "/mock/uploads",
		PhoneRegion:      "AU",
		DetailsCacheSize: 16,
		DetailsCacheTTL:  time.Minute,
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *app {
	t.Helper()
	a, err := newApp(cfg, testLogger(), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	return a
}

func TestNewApp_EmptyStore(t *testing.T) {
	cfg := testConfig()
	cfg.SeedDemoData = false
	a := newTestApp(t, cfg)

	if n := len(a.dashboard.Contractors()); n != 0 {
		t.Errorf("карточек = %d, ожидается 0 без демо-данных", n)
	}
	if status, _ := a.store.CheckReady(); status != "degraded" {
		t.Errorf("CheckReady() = %q, ожидается degraded", status)
	}
}

func TestRunDashboard_JSON(t *testing.T) {
	a := newTestApp(t, testConfig())

	var buf bytes.Buffer
	if err := runDashboard(&buf, a, dashboardFlags{format: "json"}, testLogger()); err != nil {
		t.Fatalf("runDashboard: %v", err)
	}
	var cards []model.ContractorCard
	if err := json.Unmarshal(buf.Bytes(), &cards); err != nil {
		t.Fatalf("разбор JSON: %v", err)
	}
	if len(cards) != 3 || cards[0].Name != "TWS" {
		t.Errorf("карточки = %d, первая %q", len(cards), cards[0].Name)
	}
}

func TestRunDashboard_TableSingleOrg(t *testing.T) {
	a := newTestApp(t, testConfig())

	var buf bytes.Buffer
	if err := runDashboard(&buf, a, dashboardFlags{format: "TABLE", orgID: 102}, testLogger()); err != nil {
		t.Fatalf("runDashboard: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "SalesForce") || !strings.Contains(out, "Sarah Jones") {
		t.Errorf("таблица не содержит SalesForce:\n%s", out)
	}
	if strings.Contains(out, "TWS") {
		t.Errorf("таблица содержит другие организации:\n%s", out)
	}
}

func TestRunDashboard_Errors(t *testing.T) {
	a := newTestApp(t, testConfig())

	if err := runDashboard(&bytes.Buffer{}, a, dashboardFlags{format: "yaml"}, testLogger()); err == nil {
		t.Error("ожидалась ошибка для формата yaml")
	}
	err := runDashboard(&bytes.Buffer{}, a, dashboardFlags{format: "json", orgID: 1}, testLogger())
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("регулятор: error = %v, ожидается ErrNotFound", err)
	}
}

func TestRunExport(t *testing.T) {
	a := newTestApp(t, testConfig())
	path := filepath.Join(t.TempDir(), "report.xlsx")

	if err := runExport(a, path); err != nil {
		t.Fatalf("runExport: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("excelize.OpenFile: %v", err)
	}
	defer f.Close()
	if idx, _ := f.GetSheetIndex("Contractors"); idx < 0 {
		t.Error("лист Contractors отсутствует")
	}
}

func TestRunExport_BadPath(t *testing.T) {
	a := newTestApp(t, testConfig())
	if err := runExport(a, filepath.Join(t.TempDir(), "missing", "report.xlsx")); err == nil {
		t.Error("ожидалась ошибка для несуществующего каталога")
	}
}

func TestVersionCmd(t *testing.T) {
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "mcmp "+config.Version {
		t.Errorf("version = %q", got)
	}
}
