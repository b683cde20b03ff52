// Пакет model — доменные модели MCMP: организации, пользователи,
// шаблоны требований, проекты соответствия и записи загруженных файлов.
package model

import "time"

// OrgType — тип организации.
type OrgType string

const (
	// OrgTypeRegulator — регулятор (единственная организация-администратор)
	OrgTypeRegulator OrgType = "REGULATOR"
	// OrgTypeContractor — подрядчик
	OrgTypeContractor OrgType = "CONTRACTOR"
)

// OrgStatus — статус организации.
type OrgStatus string

const (
	OrgStatusActive   OrgStatus = "ACTIVE"
	OrgStatusInactive OrgStatus = "INACTIVE"
	OrgStatusPending  OrgStatus = "PENDING"
)

// DisplayName возвращает статус в виде, принятом на карточках подрядчиков.
func (s OrgStatus) DisplayName() string {
	switch s {
	case OrgStatusActive:
		return "Active"
	case OrgStatusInactive:
		return "Inactive"
	default:
		return "Pending"
	}
}

// Organization — организация (регулятор или подрядчик).
type Organization struct {
	// ID — числовой идентификатор организации
	ID int64
	// Type — REGULATOR или CONTRACTOR
	Type OrgType
	// Name — название компании
	Name string
	// ABN — Australian Business Number
	ABN string
	// Address — юридический адрес
	Address string
	// Phone — контактный телефон
	Phone string
	// Services — перечень услуг подрядчика
	Services string
	// Status — ACTIVE, INACTIVE, PENDING
	Status OrgStatus
	// CreatedAt — дата регистрации
	CreatedAt time.Time
	// LastActivity — дата последней активности
	LastActivity time.Time
}

// IsContractor возвращает true для организаций-подрядчиков.
func (o *Organization) IsContractor() bool {
	return o.Type == OrgTypeContractor
}

// Valid сообщает, является ли значение известным типом организации.
func (t OrgType) Valid() bool {
	return t == OrgTypeRegulator || t == OrgTypeContractor
}

// Valid сообщает, является ли значение известным статусом организации.
func (s OrgStatus) Valid() bool {
	switch s {
	case OrgStatusActive, OrgStatusInactive, OrgStatusPending:
		return true
	}
	return false
}
