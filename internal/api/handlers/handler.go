// handler.go — основной обработчик API.
// Объединяет доменные обработчики и делегирует запросы в сервисный слой.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/BigWhaleDJY/MCMP-stack/internal/api/errors"
	"github.com/BigWhaleDJY/MCMP-stack/internal/api/middleware"
	"github.com/BigWhaleDJY/MCMP-stack/internal/service"
)

// maxBodySize — максимальный размер JSON-тела запроса.
const maxBodySize = 1 << 20

// APIHandler — основной обработчик API.
type APIHandler struct {
	health    *HealthHandler
	dashboard *service.DashboardService
	review    *service.ReviewService
	profile   *service.ProfileService
	directory *service.DirectoryService
	export    *service.ExportService
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	dashboard *service.DashboardService,
	review *service.ReviewService,
	profile *service.ProfileService,
	directory *service.DirectoryService,
	export *service.ExportService,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:    health,
		dashboard: dashboard,
		review:    review,
		profile:   profile,
		directory: directory,
		export:    export,
		validate:  validator.New(),
		logger:    logger.With(slog.String("component", "api_handler")),
	}
}

// HealthLive — liveness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики (делегируется в HealthHandler).
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeBody разбирает JSON-тело запроса в dst и проверяет теги validate.
// При ошибке ответ 400 уже записан.
func (h *APIHandler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		apierrors.ValidationError(w, validationMessage(err))
		return false
	}
	return true
}

// validationMessage формирует сообщение из ошибок validator.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	if fe.Param() != "" {
		return fmt.Sprintf("Поле %s: нарушено правило %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("Поле %s: нарушено правило %s", fe.Field(), fe.Tag())
}

// serviceError записывает ответ для ошибки сервисного слоя;
// неизвестные ошибки логируются.
func (h *APIHandler) serviceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if apierrors.FromService(w, err) {
		return
	}
	h.logger.Error(msg,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
}

// actor возвращает действующего пользователя; при отсутствии пишет 401.
func actor(w http.ResponseWriter, r *http.Request) (*middleware.Actor, bool) {
	a := middleware.ActorFromContext(r.Context())
	if a == nil {
		apierrors.IdentityMissing(w, "Не указан идентификатор пользователя")
		return nil, false
	}
	return a, true
}

// orgIDParam разбирает {orgID} из пути; при ошибке пишет 400.
func orgIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "orgID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		apierrors.ValidationError(w, fmt.Sprintf("Некорректный ID организации %q", raw))
		return 0, false
	}
	return id, true
}
