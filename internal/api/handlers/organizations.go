// organizations.go — обработчики /api/v1/organizations endpoints.
package handlers

import (
	"net/http"
)

// GetOrganization — GET /api/v1/organizations/{orgID}.
func (h *APIHandler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}

	org, err := h.directory.Organization(orgID)
	if err != nil {
		h.serviceError(w, r, err, "Ошибка получения организации")
		return
	}
	writeJSON(w, http.StatusOK, mapOrganization(org))
}

// ListOrganizationProjects — GET /api/v1/organizations/{orgID}/projects.
func (h *APIHandler) ListOrganizationProjects(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}

	projects, err := h.directory.OrganizationProjects(orgID)
	if err != nil {
		h.serviceError(w, r, err, "Ошибка получения проектов организации")
		return
	}

	items := make([]projectResponse, len(projects))
	for i := range projects {
		items[i] = mapProject(&projects[i])
	}
	writeJSON(w, http.StatusOK, listResponse[projectResponse]{Items: items, Total: len(items)})
}

// ListOrganizationUsers — GET /api/v1/organizations/{orgID}/users.
func (h *APIHandler) ListOrganizationUsers(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}

	users, err := h.directory.OrganizationUsers(orgID)
	if err != nil {
		h.serviceError(w, r, err, "Ошибка получения пользователей организации")
		return
	}

	items := make([]userResponse, len(users))
	for i := range users {
		items[i] = mapUser(&users[i])
	}
	writeJSON(w, http.StatusOK, listResponse[userResponse]{Items: items, Total: len(items)})
}
