// projects.go — обработчики /api/v1/projects endpoints.
// Карточка проекта с историей загрузок и загрузка нового файла.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BigWhaleDJY/MCMP-stack/internal/service"
)

// GetProjectDetails — GET /api/v1/projects/{projectID}.
func (h *APIHandler) GetProjectDetails(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	details, err := h.dashboard.ProjectDetails(projectID)
	if err != nil {
		h.serviceError(w, r, err, "Ошибка получения проекта")
		return
	}
	writeJSON(w, http.StatusOK, mapProjectDetails(details))
}

// SubmitFile — POST /api/v1/projects/{projectID}/files.
// Регистрирует загрузку файла действующим пользователем.
func (h *APIHandler) SubmitFile(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	var req submitFileRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	rec, err := h.review.SubmitFile(r.Context(), chi.URLParam(r, "projectID"), a.UserID,
		service.FileUpload{Name: req.Name, Size: req.Size, URL: req.URL}, req.Notes)
	if err != nil {
		h.serviceError(w, r, err, "Ошибка загрузки файла")
		return
	}
	writeJSON(w, http.StatusCreated, mapFileRecord(rec))
}
