package model

// Role — роль пользователя.
type Role string

const (
	// RoleMegaAdmin — администратор регулятора (проверяет документы)
	RoleMegaAdmin Role = "MEGA_ADMIN"
	// RoleContractorUser — сотрудник подрядчика (загружает документы)
	RoleContractorUser Role = "CONTRACTOR_USER"
)

// User — пользователь системы. Принадлежит ровно одной организации.
type User struct {
	// ID — числовой идентификатор пользователя
	ID int64
	// OrgID — организация пользователя
	OrgID int64
	// Email — адрес электронной почты
	Email string
	// FullName — отображаемое имя
	FullName string
	// Role — MEGA_ADMIN или CONTRACTOR_USER
	Role Role
	// Avatar — seed аватара
	Avatar string
	// Phone — контактный телефон
	Phone string
	// IsActive — активна ли учётная запись
	IsActive bool
}

// Valid сообщает, является ли значение известной ролью.
func (r Role) Valid() bool {
	return r == RoleMegaAdmin || r == RoleContractorUser
}
