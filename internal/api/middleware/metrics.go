// metrics.go — Prometheus HTTP метрики.
// Регистрирует метрики: mcmp_http_requests_total, mcmp_http_request_duration_seconds.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcmp_http_requests_total",
			Help: "Общее количество HTTP-запросов",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mcmp_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Идентификаторы в пути заменяются шаблонами
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath заменяет идентификаторы в пути на шаблоны маршрутов,
// чтобы кардинальность меток не росла с числом сущностей.
// /api/v1/projects/P-TWS-PLI-2025/files → /api/v1/projects/{projectID}/files
func normalizePath(path string) string {
	switch path {
	case "/health/live", "/health/ready", "/metrics",
		"/api/v1/openapi.json",
		"/api/v1/me",
		"/api/v1/contractors",
		"/api/v1/reports/compliance.xlsx":
		return path
	}

	collections := []struct {
		prefix   string
		param    string
		suffixes []string
	}{
		{"/api/v1/contractors/", "{orgID}", nil},
		{"/api/v1/organizations/", "{orgID}", []string{"/projects", "/users"}},
		{"/api/v1/projects/", "{projectID}", []string{"/files"}},
		{"/api/v1/file-records/", "{fileRecordID}", []string{"/approve", "/reject"}},
	}

	for _, c := range collections {
		rest, ok := strings.CutPrefix(path, c.prefix)
		if !ok || rest == "" {
			continue
		}
		id, suffix, hasSuffix := strings.Cut(rest, "/")
		if id == "" {
			continue
		}
		if !hasSuffix {
			return c.prefix + c.param
		}
		for _, s := range c.suffixes {
			if "/"+suffix == s {
				return c.prefix + c.param + s
			}
		}
		return c.prefix + c.param + "/other"
	}

	return "other"
}
