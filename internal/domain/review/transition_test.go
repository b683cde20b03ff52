package review

import (
	"errors"
	"testing"

	"github.com/BigWhaleDJY/MCMP-stack/internal/domain/model"
)

// TestCanTransition проверяет матрицу переходов.
func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to model.FileStatus
		want     bool
	}{
		{model.FileStatusPendingReview, model.FileStatusApproved, true},
		{model.FileStatusPendingReview, model.FileStatusRejected, true},
		{model.FileStatusPendingReview, model.FileStatusPendingReview, false},
		{model.FileStatusApproved, model.FileStatusRejected, false},
		{model.FileStatusApproved, model.FileStatusPendingReview, false},
		{model.FileStatusApproved, model.FileStatusApproved, false},
		{model.FileStatusRejected, model.FileStatusApproved, false},
		{model.FileStatusRejected, model.FileStatusPendingReview, false},
		{model.FileStatus("DRAFT"), model.FileStatusApproved, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, ожидается %v", tt.from, tt.to, got, tt.want)
		}
	}
}

// TestCheck_TerminalStatuses проверяет, что конечные статусы не меняются.
func TestCheck_TerminalStatuses(t *testing.T) {
	for _, from := range []model.FileStatus{model.FileStatusApproved, model.FileStatusRejected} {
		for _, to := range []model.FileStatus{model.FileStatusApproved, model.FileStatusRejected} {
			err := Check(from, to)
			var te *TransitionError
			if !errors.As(err, &te) {
				t.Fatalf("Check(%s, %s): ожидалась TransitionError, получено %v", from, to, err)
			}
			if te.Code != CodeInvalidTransition {
				t.Errorf("Code = %q, ожидается %q", te.Code, CodeInvalidTransition)
			}
			if te.From != from || te.To != to {
				t.Errorf("From/To = %s/%s, ожидается %s/%s", te.From, te.To, from, to)
			}
		}
	}
}

// TestCheck_UnknownStatus проверяет отказ для статусов вне жизненного цикла.
func TestCheck_UnknownStatus(t *testing.T) {
	err := Check(model.FileStatusPendingReview, model.FileStatus("ARCHIVED"))
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("ожидалась TransitionError, получено %v", err)
	}
	if te.Code != CodeUnknownStatus {
		t.Errorf("Code = %q, ожидается %q", te.Code, CodeUnknownStatus)
	}
}

// TestCheck_Allowed проверяет допустимые переходы.
func TestCheck_Allowed(t *testing.T) {
	if err := Check(model.FileStatusPendingReview, model.FileStatusApproved); err != nil {
		t.Errorf("PENDING_REVIEW → APPROVED: неожиданная ошибка %v", err)
	}
	if err := Check(model.FileStatusPendingReview, model.FileStatusRejected); err != nil {
		t.Errorf("PENDING_REVIEW → REJECTED: неожиданная ошибка %v", err)
	}
}

// TestProjectStatus проверяет соответствие статусов записи и проекта.
func TestProjectStatus(t *testing.T) {
	tests := map[model.FileStatus]model.ProjectStatus{
		model.FileStatusPendingReview: model.ProjectPendingReview,
		model.FileStatusApproved:      model.ProjectApproved,
		model.FileStatusRejected:      model.ProjectRejected,
		model.FileStatus("???"):       model.ProjectPending,
	}
	for in, want := range tests {
		if got := ProjectStatus(in); got != want {
			t.Errorf("ProjectStatus(%q) = %q, ожидается %q", in, got, want)
		}
	}
}

// TestParseStatus проверяет разбор строкового статуса.
func TestParseStatus(t *testing.T) {
	if s, err := ParseStatus("APPROVED"); err != nil || s != model.FileStatusApproved {
		t.Errorf("ParseStatus(APPROVED) = %q, %v", s, err)
	}
	if _, err := ParseStatus("approved"); err == nil {
		t.Error("ParseStatus(approved): ожидалась ошибка")
	}
}
