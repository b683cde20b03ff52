package model

import "time"

// TemplateType — категория требования.
type TemplateType string

const (
	// TemplateCompliance — документы соответствия (страховки, планы безопасности)
	TemplateCompliance TemplateType = "COMPLIANCE"
	// TemplateReporting — периодическая отчётность
	TemplateReporting TemplateType = "REPORTING"
)

// DisplayName возвращает тип так, как он показывается в документах карточки.
func (t TemplateType) DisplayName() string {
	if t == TemplateReporting {
		return "Reporting"
	}
	return "Compliance"
}

// Frequency — периодичность требования.
type Frequency string

const (
	FrequencyAnnual  Frequency = "ANNUAL"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyWeekly  Frequency = "WEEKLY"
)

// RequirementTemplate — запись каталога требований регулятора.
// Неизменяема, общая для всех подрядчиков.
type RequirementTemplate struct {
	// ID — идентификатор шаблона (TPL-PLI, ...)
	ID string
	// Type — COMPLIANCE или REPORTING
	Type TemplateType
	// Title — заголовок требования
	Title string
	// Description — инструкция для подрядчика
	Description string
	// Frequency — ANNUAL, MONTHLY, WEEKLY
	Frequency Frequency
	// MandatoryForAll — обязательно для всех подрядчиков
	MandatoryForAll bool
	// CreatedAt — дата создания шаблона
	CreatedAt time.Time
}

// Valid сообщает, является ли значение известным типом шаблона.
func (t TemplateType) Valid() bool {
	return t == TemplateCompliance || t == TemplateReporting
}
