// dto.go — типы запросов и ответов API и маппинг domain → API.
package handlers

import (
	"time"

	"github.com/BigWhaleDJY/MCMP-stack/internal/domain/model"
)

// --- Запросы ---

// submitFileRequest — тело POST /api/v1/projects/{projectID}/files.
// Передаются только метаданные: содержимое хранится во внешнем хранилище.
type submitFileRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Size  int64  `json:"size" validate:"gt=0"`
	URL   string `json:"url" validate:"omitempty,max=2048,url"`
	Notes string `json:"notes" validate:"max=2000"`
}

// rejectFileRequest — тело POST /api/v1/file-records/{fileRecordID}/reject.
type rejectFileRequest struct {
	Feedback string `json:"feedback" validate:"required,max=2000"`
}

// profileUpdateRequest — тело PATCH /api/v1/me. Отсутствующее поле не меняется.
type profileUpdateRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,max=100"`
	Email    *string `json:"email" validate:"omitempty,max=254"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
}

// --- Ответы ---

type organizationResponse struct {
	ID           int64     `json:"id"`
	Type         string    `json:"type"`
	Name         string    `json:"name"`
	ABN          string    `json:"abn"`
	Address      string    `json:"address"`
	Phone        string    `json:"phone"`
	Services     string    `json:"services"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	OrgID    int64  `json:"orgId"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Avatar   string `json:"avatar,omitempty"`
	Phone    string `json:"phone,omitempty"`
	IsActive bool   `json:"isActive"`
}

type meResponse struct {
	User         userResponse         `json:"user"`
	Organization organizationResponse `json:"organization"`
}

type templateResponse struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Frequency       string    `json:"frequency"`
	MandatoryForAll bool      `json:"mandatoryForAll"`
	CreatedAt       time.Time `json:"createdAt"`
}

type projectResponse struct {
	ID                  string    `json:"id"`
	TemplateID          string    `json:"templateId"`
	OrgID               int64     `json:"orgId"`
	DisplayName         string    `json:"displayName"`
	Status              string    `json:"status"`
	CurrentFileRecordID *string   `json:"currentFileRecordId"`
	DueDate             time.Time `json:"dueDate"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
	RejectionReason     *string   `json:"rejectionReason"`
}

type fileRecordResponse struct {
	ID         string     `json:"id"`
	ProjectID  string     `json:"projectId"`
	UploadedBy int64      `json:"uploadedBy"`
	FileName   string     `json:"fileName"`
	FileURL    string     `json:"fileUrl"`
	FileSize   int64      `json:"fileSize"`
	UploadDate time.Time  `json:"uploadDate"`
	Notes      string     `json:"notes"`
	Status     string     `json:"status"`
	Feedback   *string    `json:"feedback"`
	ReviewedBy *int64     `json:"reviewedBy"`
	ReviewedAt *time.Time `json:"reviewedAt"`
}

type fileHistoryEntryResponse struct {
	Record   fileRecordResponse `json:"record"`
	Uploader *userResponse      `json:"uploader,omitempty"`
}

type projectDetailsResponse struct {
	Project      projectResponse            `json:"project"`
	Template     *templateResponse          `json:"template,omitempty"`
	Organization *organizationResponse      `json:"organization,omitempty"`
	FileHistory  []fileHistoryEntryResponse `json:"fileHistory"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

type contractorListResponse struct {
	Items   []model.ContractorCard `json:"items"`
	Total   int                    `json:"total"`
	Version uint64                 `json:"version"`
}

// --- Маппинг domain → API ---

func mapOrganization(o *model.Organization) organizationResponse {
	return organizationResponse{
		ID:           o.ID,
		Type:         string(o.Type),
		Name:         o.Name,
		ABN:          o.ABN,
		Address:      o.Address,
		Phone:        o.Phone,
		Services:     o.Services,
		Status:       string(o.Status),
		CreatedAt:    o.CreatedAt,
		LastActivity: o.LastActivity,
	}
}

func mapUser(u *model.User) userResponse {
	return userResponse{
		ID:       u.ID,
		OrgID:    u.OrgID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     string(u.Role),
		Avatar:   u.Avatar,
		Phone:    u.Phone,
		IsActive: u.IsActive,
	}
}

func mapTemplate(t *model.RequirementTemplate) templateResponse {
	return templateResponse{
		ID:              t.ID,
		Type:            string(t.Type),
		Title:           t.Title,
		Description:     t.Description,
		Frequency:       string(t.Frequency),
		MandatoryForAll: t.MandatoryForAll,
		CreatedAt:       t.CreatedAt,
	}
}

func mapProject(p *model.ComplianceProject) projectResponse {
	return projectResponse{
		ID:                  p.ID,
		TemplateID:          p.TemplateID,
		OrgID:               p.OrgID,
		DisplayName:         p.DisplayName,
		Status:              string(p.Status),
		CurrentFileRecordID: p.CurrentFileRecordID,
		DueDate:             p.DueDate,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
		RejectionReason:     p.RejectionReason,
	}
}

func mapFileRecord(fr *model.FileRecord) fileRecordResponse {
	return fileRecordResponse{
		ID:         fr.ID,
		ProjectID:  fr.ProjectID,
		UploadedBy: fr.UploadedBy,
		FileName:   fr.FileName,
		FileURL:    fr.FileURL,
		FileSize:   fr.FileSize,
		UploadDate: fr.UploadDate,
		Notes:      fr.Notes,
		Status:     string(fr.Status),
		Feedback:   fr.Feedback,
		ReviewedBy: fr.ReviewedBy,
		ReviewedAt: fr.ReviewedAt,
	}
}

func mapProjectDetails(d *model.ProjectDetails) projectDetailsResponse {
	resp := projectDetailsResponse{
		Project:     mapProject(d.Project),
		FileHistory: make([]fileHistoryEntryResponse, 0, len(d.FileHistory)),
	}
	if d.Template != nil {
		t := mapTemplate(d.Template)
		resp.Template = &t
	}
	if d.Organization != nil {
		o := mapOrganization(d.Organization)
		resp.Organization = &o
	}
	for _, e := range d.FileHistory {
		entry := fileHistoryEntryResponse{Record: mapFileRecord(e.Record)}
		if e.Uploader != nil {
			u := mapUser(e.Uploader)
			entry.Uploader = &u
		}
		resp.FileHistory = append(resp.FileHistory, entry)
	}
	return resp
}
