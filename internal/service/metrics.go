// metrics.go — Prometheus-метрики процесса проверки документов и проекций.
package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — метрики сервисного слоя.
type Metrics struct {
	// FileSubmissions — количество принятых загрузок файлов
	FileSubmissions prometheus.Counter
	// ReviewDecisions — решения проверяющих, метка decision: approved, rejected
	ReviewDecisions *prometheus.CounterVec
	// CommandFailures — отказы команд, метки command и reason
	CommandFailures *prometheus.CounterVec
	// ProjectionRebuild — длительность пересчёта карточек подрядчиков
	ProjectionRebuild prometheus.Histogram
	// ComplianceRate — процент одобренных проектов подрядчика
	ComplianceRate *prometheus.GaugeVec
	// DetailsCacheHits / DetailsCacheMisses — попадания и промахи кэша карточек проектов
	DetailsCacheHits   prometheus.Counter
	DetailsCacheMisses prometheus.Counter
}

// NewMetrics регистрирует метрики в глобальном Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegisterer регистрирует метрики в указанном registerer.
// Используется в тестах для изоляции метрик.
func NewMetricsWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		FileSubmissions: f.NewCounter(prometheus.CounterOpts{
			Name: "mcmp_file_submissions_total",
			Help: "Общее количество принятых загрузок документов",
		}),
		ReviewDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mcmp_review_decisions_total",
			Help: "Общее количество решений по загруженным документам",
		}, []string{"decision"}),
		CommandFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mcmp_command_failures_total",
			Help: "Общее количество отклонённых команд процесса проверки",
		}, []string{"command", "reason"}),
		ProjectionRebuild: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "mcmp_projection_rebuild_duration_seconds",
			Help:    "Длительность пересчёта карточек подрядчиков в секундах",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		ComplianceRate: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mcmp_contractor_compliance_rate",
			Help: "Процент одобренных проектов подрядчика",
		}, []string{"org_id", "org_name"}),
		DetailsCacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "mcmp_details_cache_hits_total",
			Help: "Общее количество попаданий в LRU-кэш карточек проектов",
		}),
		DetailsCacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "mcmp_details_cache_misses_total",
			Help: "Общее количество промахов LRU-кэша карточек проектов",
		}),
	}
}
