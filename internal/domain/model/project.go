package model

import "time"

// ProjectStatus — агрегированный статус проекта соответствия.
type ProjectStatus string

const (
	// ProjectPending — ещё ни одного файла не загружено
	ProjectPending ProjectStatus = "PENDING"
	// ProjectPendingReview — текущий файл ожидает проверки
	ProjectPendingReview ProjectStatus = "PENDING_REVIEW"
	// ProjectApproved — текущий файл одобрен
	ProjectApproved ProjectStatus = "APPROVED"
	// ProjectRejected — текущий файл отклонён
	ProjectRejected ProjectStatus = "REJECTED"
)

// ComplianceProject — экземпляр требования, назначенный подрядчику.
// Status, CurrentFileRecordID, RejectionReason и UpdatedAt меняет только
// сервис проверки документов.
type ComplianceProject struct {
	// ID — идентификатор проекта (P-TWS-PLI-2025, ...)
	ID string
	// TemplateID — шаблон требования
	TemplateID string
	// OrgID — организация-подрядчик
	OrgID int64
	// DisplayName — переопределённый заголовок (может быть пустым)
	DisplayName string
	// Status — PENDING, PENDING_REVIEW, APPROVED, REJECTED
	Status ProjectStatus
	// CurrentFileRecordID — текущая (последняя) загрузка, nil если загрузок нет
	CurrentFileRecordID *string
	// DueDate — срок сдачи
	DueDate time.Time
	// CreatedAt — дата назначения
	CreatedAt time.Time
	// UpdatedAt — дата последнего изменения статуса
	UpdatedAt time.Time
	// RejectionReason — причина отклонения текущей загрузки
	RejectionReason *string
}

// CurrentRecordID возвращает идентификатор текущей загрузки или "".
func (p *ComplianceProject) CurrentRecordID() string {
	if p.CurrentFileRecordID == nil {
		return ""
	}
	return *p.CurrentFileRecordID
}

// Clone возвращает копию проекта, не разделяющую указатели с оригиналом.
func (p *ComplianceProject) Clone() *ComplianceProject {
	c := *p
	if p.CurrentFileRecordID != nil {
		id := *p.CurrentFileRecordID
		c.CurrentFileRecordID = &id
	}
	if p.RejectionReason != nil {
		reason := *p.RejectionReason
		c.RejectionReason = &reason
	}
	return &c
}

// Valid сообщает, является ли значение известным статусом проекта.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPending, ProjectPendingReview, ProjectApproved, ProjectRejected:
		return true
	}
	return false
}
