package model

// Форматы дат в производных представлениях.
const (
	// DateLayout — дата без времени (сроки, даты загрузки на карточках)
	DateLayout = "2006-01-02"
	// DateTimeLayout — дата и время загрузки в истории
	DateTimeLayout = "2006-01-02 15:04"
	// NotUploaded — заглушка даты загрузки для проектов без файлов
	NotUploaded = "-"
	// UnknownName — заглушка для отсутствующих шаблонов и пользователей
	UnknownName = "Unknown"
)

// FileHistoryEntry — запись истории проекта вместе с загрузившим пользователем.
type FileHistoryEntry struct {
	Record *FileRecord
	// Uploader — nil, если пользователь не найден
	Uploader *User
}

// ProjectDetails — проект со связанными сущностями и полной историей загрузок.
// История отсортирована по дате загрузки, последняя загрузка первой.
type ProjectDetails struct {
	Project      *ComplianceProject
	Template     *RequirementTemplate // nil, если шаблон не найден
	Organization *Organization
	FileHistory  []FileHistoryEntry
}

// UploadEntry — строка истории загрузок в документе карточки подрядчика.
type UploadEntry struct {
	UploadID   string     `json:"uploadId"`
	FileName   string     `json:"fileName"`
	UploadDate string     `json:"uploadDate"`
	Notes      string     `json:"notes"`
	Status     FileStatus `json:"status"`
	UploadedBy string     `json:"uploadedBy"`
}

// DocumentView — проект соответствия в виде документа карточки.
type DocumentView struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Type            string        `json:"type"`
	Status          ProjectStatus `json:"status"`
	DueDate         string        `json:"dueDate"`
	UploadedDate    string        `json:"uploadedDate"`
	Description     string        `json:"description"`
	RejectionReason *string       `json:"rejectionReason"`
	UploadHistory   []UploadEntry `json:"uploadHistory"`
}

// ContractorCard — денормализованная карточка подрядчика для дашборда.
type ContractorCard struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	Status         string         `json:"status"`
	ComplianceRate int            `json:"complianceRate"`
	LastUpload     string         `json:"lastUpload"`
	ABN            string         `json:"abn"`
	Address        string         `json:"address"`
	ContactName    string         `json:"contactName"`
	ContactEmail   string         `json:"contactEmail"`
	Services       string         `json:"services"`
	ComplianceDocs []DocumentView `json:"complianceDocs"`
	ReportingDocs  []DocumentView `json:"reportingDocs"`
}
