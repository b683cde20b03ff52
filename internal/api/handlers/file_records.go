// file_records.go — обработчики /api/v1/file-records endpoints.
// Получение записи (ссылка на скачивание) и решения регулятора.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GetFileRecord — GET /api/v1/file-records/{fileRecordID}.
func (h *APIHandler) GetFileRecord(w http.ResponseWriter, r *http.Request) {
	fr, err := h.directory.FileRecord(chi.URLParam(r, "fileRecordID"))
	if err != nil {
		h.serviceError(w, r, err, "Ошибка получения записи файла")
		return
	}
	writeJSON(w, http.StatusOK, mapFileRecord(fr))
}

// ApproveFile — POST /api/v1/file-records/{fileRecordID}/approve.
func (h *APIHandler) ApproveFile(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	fr, err := h.review.ApproveFile(r.Context(), chi.URLParam(r, "fileRecordID"), a.UserID)
	if err != nil {
		h.serviceError(w, r, err, "Ошибка одобрения файла")
		return
	}
	writeJSON(w, http.StatusOK, mapFileRecord(fr))
}

// RejectFile — POST /api/v1/file-records/{fileRecordID}/reject.
// Комментарий обязателен.
func (h *APIHandler) RejectFile(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	var req rejectFileRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	fr, err := h.review.RejectFile(r.Context(), chi.URLParam(r, "fileRecordID"), req.Feedback, a.UserID)
	if err != nil {
		h.serviceError(w, r, err, "Ошибка отклонения файла")
		return
	}
	writeJSON(w, http.StatusOK, mapFileRecord(fr))
}
