package service

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/BigWhaleDJY/MCMP-stack/internal/domain/model"
	"github.com/BigWhaleDJY/MCMP-stack/internal/repository"
)

// testNow — фиксированное время команд в тестах.
var testNow = time.Date(2025, 12, 5, 10, 30, 0, 0, time.UTC)

// testEnv — изолированный набор сервисов поверх демонстрационных данных.
type testEnv struct {
	store     *repository.Store
	metrics   *Metrics
	cache     *CacheService
	dashboard *DashboardService
	review    *ReviewService
	profile   *ProfileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := repository.NewStore(repository.DemoSeed())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	metrics := NewMetricsWithRegisterer(prometheus.NewRegistry())
	cache := NewCacheService(64, time.Minute, metrics)
	dashboard := NewDashboardService(store, cache, metrics, nil, slog.Default())

	var seq atomic.Int64
	review := NewReviewService(store, dashboard, metrics, slog.Default(),
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string { return fmt.Sprintf("FR-TEST-%03d", seq.Add(1)) }),
	)
	profile := NewProfileService(store, dashboard, "AU", slog.Default())

	return &testEnv{
		store:     store,
		metrics:   metrics,
		cache:     cache,
		dashboard: dashboard,
		review:    review,
		profile:   profile,
	}
}

// assertProjectInvariant проверяет для всех проектов: статус проекта равен
// статусу текущей записи, причина отклонения равна комментарию записи
// только для REJECTED.
func assertProjectInvariant(t *testing.T, store *repository.Store) {
	t.Helper()

	snap := store.Snapshot()
	records := make(map[string]model.FileRecord, len(snap.FileRecords))
	for _, fr := range snap.FileRecords {
		records[fr.ID] = fr
	}

	for _, p := range snap.Projects {
		if p.CurrentFileRecordID == nil {
			continue
		}
		fr, ok := records[*p.CurrentFileRecordID]
		if !ok {
			t.Errorf("проект %s: текущая запись %s не найдена", p.ID, *p.CurrentFileRecordID)
			continue
		}
		if fr.ProjectID != p.ID {
			t.Errorf("проект %s: текущая запись принадлежит проекту %s", p.ID, fr.ProjectID)
		}
		if string(p.Status) != string(fr.Status) {
			t.Errorf("проект %s: статус %s, статус текущей записи %s", p.ID, p.Status, fr.Status)
		}
		if p.Status == model.ProjectRejected {
			if p.RejectionReason == nil || fr.Feedback == nil || *p.RejectionReason != *fr.Feedback {
				t.Errorf("проект %s: причина отклонения не совпадает с комментарием записи", p.ID)
			}
		} else if p.RejectionReason != nil {
			t.Errorf("проект %s (%s): причина отклонения %q, ожидается nil", p.ID, p.Status, *p.RejectionReason)
		}
	}
}

func strPtr(s string) *string { return &s }
