// contractors.go — обработчики /api/v1/contractors: карточки подрядчиков
// из текущей проекции.
package handlers

import (
	"net/http"
)

// ListContractors — GET /api/v1/contractors.
func (h *APIHandler) ListContractors(w http.ResponseWriter, _ *http.Request) {
	proj := h.dashboard.Projection()
	writeJSON(w, http.StatusOK, contractorListResponse{
		Items:   proj.Cards,
		Total:   len(proj.Cards),
		Version: proj.Version,
	})
}

// GetContractor — GET /api/v1/contractors/{orgID}.
func (h *APIHandler) GetContractor(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}

	card, err := h.dashboard.Contractor(orgID)
	if err != nil {
		h.serviceError(w, r, err, "Ошибка получения карточки подрядчика")
		return
	}
	writeJSON(w, http.StatusOK, card)
}
