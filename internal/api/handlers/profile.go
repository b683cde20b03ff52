// profile.go — обработчики /api/v1/me: профиль действующего пользователя.
package handlers

import (
	"net/http"

	"github.com/BigWhaleDJY/MCMP-stack/internal/service"
)

// GetMe — GET /api/v1/me.
// Возвращает действующего пользователя и его организацию.
func (h *APIHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	u, org, err := h.profile.GetProfile(a.UserID)
	if err != nil {
		h.serviceError(w, r, err, "Ошибка получения профиля")
		return
	}

	writeJSON(w, http.StatusOK, meResponse{User: mapUser(u), Organization: mapOrganization(org)})
}

// UpdateMe — PATCH /api/v1/me.
// Изменяет имя, email и телефон действующего пользователя.
func (h *APIHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	var req profileUpdateRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if _, err := h.profile.UpdateProfile(r.Context(), a.UserID, service.ProfileUpdate{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	}); err != nil {
		h.serviceError(w, r, err, "Ошибка обновления профиля")
		return
	}

	u, org, err := h.profile.GetProfile(a.UserID)
	if err != nil {
		h.serviceError(w, r, err, "Ошибка получения профиля")
		return
	}
	writeJSON(w, http.StatusOK, meResponse{User: mapUser(u), Organization: mapOrganization(org)})
}
