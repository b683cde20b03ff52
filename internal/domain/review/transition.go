// Пакет review — матрица переходов статусов проверки загруженных файлов.
//
// Жизненный цикл записи: PENDING_REVIEW → APPROVED | REJECTED.
// APPROVED и REJECTED — конечные статусы, обратных переходов нет.
//
// Пакет не хранит состояние: статус живёт в FileRecord, а сервис проверки
// сверяется с матрицей перед каждой мутацией.
package review

import (
	"fmt"

	"github.com/BigWhaleDJY/MCMP-stack/internal/domain/model"
)

// Коды ошибок перехода.
const (
	// CodeInvalidTransition — переход из текущего статуса запрещён
	CodeInvalidTransition = "INVALID_TRANSITION"
	// CodeUnknownStatus — статус не входит в жизненный цикл
	CodeUnknownStatus = "UNKNOWN_STATUS"
)

// validTransitions — матрица допустимых переходов.
// Ключ — текущий статус, значение — набор допустимых целевых статусов.
var validTransitions = map[model.FileStatus]map[model.FileStatus]bool{
	model.FileStatusPendingReview: {model.FileStatusApproved: true, model.FileStatusRejected: true},
	model.FileStatusApproved:      {},
	model.FileStatusRejected:      {},
}

// projectStatusFor — статус проекта, соответствующий статусу текущей записи.
var projectStatusFor = map[model.FileStatus]model.ProjectStatus{
	model.FileStatusPendingReview: model.ProjectPendingReview,
	model.FileStatusApproved:      model.ProjectApproved,
	model.FileStatusRejected:      model.ProjectRejected,
}

// TransitionError — ошибка перехода между статусами записи.
type TransitionError struct {
	Code string           // INVALID_TRANSITION, UNKNOWN_STATUS
	From model.FileStatus // Текущий статус
	To   model.FileStatus // Запрошенный статус
}

func (e *TransitionError) Error() string {
	if e.Code == CodeUnknownStatus {
		return fmt.Sprintf("%s: неизвестный статус %q", e.Code, e.To)
	}
	return fmt.Sprintf("%s: переход %s → %s недопустим", e.Code, e.From, e.To)
}

// CanTransition проверяет, допустим ли переход from → to.
func CanTransition(from, to model.FileStatus) bool {
	transitions, ok := validTransitions[from]
	if !ok {
		return false
	}
	return transitions[to]
}

// Check возвращает *TransitionError, если переход from → to недопустим.
func Check(from, to model.FileStatus) error {
	if !IsKnown(from) || !IsKnown(to) {
		bad := to
		if !IsKnown(from) {
			bad = from
		}
		return &TransitionError{Code: CodeUnknownStatus, From: from, To: bad}
	}
	if !CanTransition(from, to) {
		return &TransitionError{Code: CodeInvalidTransition, From: from, To: to}
	}
	return nil
}

// ProjectStatus возвращает статус проекта, который должен соответствовать
// статусу его текущей записи.
func ProjectStatus(s model.FileStatus) model.ProjectStatus {
	if ps, ok := projectStatusFor[s]; ok {
		return ps
	}
	return model.ProjectPending
}

// IsKnown проверяет, входит ли статус в жизненный цикл записи.
func IsKnown(s model.FileStatus) bool {
	_, ok := validTransitions[s]
	return ok
}

// ParseStatus преобразует строку в FileStatus.
func ParseStatus(s string) (model.FileStatus, error) {
	fs := model.FileStatus(s)
	if !IsKnown(fs) {
		return "", fmt.Errorf("недопустимый статус: %q, допустимые: PENDING_REVIEW, APPROVED, REJECTED", s)
	}
	return fs, nil
}
