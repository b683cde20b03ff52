package model

import "time"

// FileStatus — статус проверки загруженного файла.
type FileStatus string

const (
	FileStatusPendingReview FileStatus = "PENDING_REVIEW"
	FileStatusApproved      FileStatus = "APPROVED"
	FileStatusRejected      FileStatus = "REJECTED"
)

// IsTerminal возвращает true для APPROVED и REJECTED.
func (s FileStatus) IsTerminal() bool {
	return s == FileStatusApproved || s == FileStatusRejected
}

// FileRecord — запись о загрузке файла в проект.
// Журнал только на добавление: запись не удаляется, поля проверки
// (Status, Feedback, ReviewedBy, ReviewedAt) выставляются один раз.
type FileRecord struct {
	// ID — идентификатор записи (FR-...)
	ID string
	// ProjectID — проект, к которому относится загрузка
	ProjectID string
	// UploadedBy — пользователь, загрузивший файл
	UploadedBy int64
	// FileName — отображаемое имя файла
	FileName string
	// FileURL — адрес файла во внешнем объектном хранилище
	FileURL string
	// FileSize — размер в байтах (0 для исторических записей)
	FileSize int64
	// UploadDate — время загрузки
	UploadDate time.Time
	// Notes — комментарий загрузившего
	Notes string
	// Status — PENDING_REVIEW, APPROVED, REJECTED
	Status FileStatus
	// Feedback — комментарий проверяющего (nil до проверки)
	Feedback *string
	// ReviewedBy — проверяющий (nil до проверки)
	ReviewedBy *int64
	// ReviewedAt — время проверки (nil до проверки)
	ReviewedAt *time.Time
}

// Clone возвращает копию записи, не разделяющую указатели с оригиналом.
func (f *FileRecord) Clone() *FileRecord {
	c := *f
	if f.Feedback != nil {
		fb := *f.Feedback
		c.Feedback = &fb
	}
	if f.ReviewedBy != nil {
		rb := *f.ReviewedBy
		c.ReviewedBy = &rb
	}
	if f.ReviewedAt != nil {
		ra := *f.ReviewedAt
		c.ReviewedAt = &ra
	}
	return &c
}

// Valid сообщает, является ли значение известным статусом записи.
func (s FileStatus) Valid() bool {
	switch s {
	case FileStatusPendingReview, FileStatusApproved, FileStatusRejected:
		return true
	}
	return false
}
