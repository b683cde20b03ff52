// review.go — процесс проверки документов: загрузка файла подрядчиком,
// одобрение и отклонение проверяющим. Каждая команда изменяет записи
// файлов и проект в одной транзакции хранилища, после чего проекции
// пересчитываются до возврата из метода.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BigWhaleDJY/MCMP-stack/internal/domain/model"
	"github.com/BigWhaleDJY/MCMP-stack/internal/domain/review"
	"github.com/BigWhaleDJY/MCMP-stack/internal/repository"
)

const (
	// DefaultNotes — комментарий загрузки, если подрядчик его не указал
	DefaultNotes = "No notes provided"
	// ApprovalFeedback — комментарий проверяющего при одобрении
	ApprovalFeedback = "Approved by MEGA admin."
	// DefaultUploadURLPrefix — префикс адреса файла, если адрес не передан
	DefaultUploadURLPrefix = "/mock/uploads"
)

// Имена команд в метриках и логах.
const (
	commandSubmit  = "submit_file"
	commandApprove = "approve_file"
	commandReject  = "reject_file"
)

// FileUpload — метаданные загружаемого файла. Содержимое файла хранится
// во внешнем объектном хранилище.
type FileUpload struct {
	// Name — имя файла
	Name string
	// Size — размер в байтах
	Size int64
	// URL — адрес файла; пустой — собирается из префикса и имени
	URL string
}

// ReviewOption — опция ReviewService.
type ReviewOption func(*ReviewService)

// WithClock задаёт источник текущего времени.
func WithClock(now func() time.Time) ReviewOption {
	return func(s *ReviewService) { s.now = now }
}

// WithIDGenerator задаёт генератор идентификаторов новых записей.
func WithIDGenerator(newID func() string) ReviewOption {
	return func(s *ReviewService) { s.newID = newID }
}

// WithUploadURLPrefix задаёт префикс адреса файла.
func WithUploadURLPrefix(prefix string) ReviewOption {
	return func(s *ReviewService) { s.uploadURLPrefix = strings.TrimRight(prefix, "/") }
}

// ReviewService — сервис процесса проверки документов.
type ReviewService struct {
	store           *repository.Store
	recomputer      Recomputer
	metrics         *Metrics
	uploadURLPrefix string
	now             func() time.Time
	newID           func() string
	logger          *slog.Logger
}

// NewReviewService создаёт сервис проверки документов.
// recomputer вызывается после каждой успешной команды.
func NewReviewService(
	store *repository.Store,
	recomputer Recomputer,
	metrics *Metrics,
	logger *slog.Logger,
	opts ...ReviewOption,
) *ReviewService {
	s := &ReviewService{
		store:           store,
		recomputer:      recomputer,
		metrics:         metrics,
		uploadURLPrefix: DefaultUploadURLPrefix,
		now:             func() time.Time { return time.Now().UTC() },
		newID:           func() string { return "FR-" + uuid.NewString() },
		logger:          logger.With(slog.String("component", "review_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitFile регистрирует новую загрузку файла в проект.
// Новая запись становится текущей, проект переходит в PENDING_REVIEW,
// причина прошлого отклонения сбрасывается.
//
// Ошибки:
//   - ErrValidation — пустое имя файла или неположительный размер
//   - ErrIdentityMissing — не указан загружающий пользователь
//   - ErrNotFound — проект или пользователь не найдены
func (s *ReviewService) SubmitFile(
	ctx context.Context,
	projectID string,
	uploaderID int64,
	upload FileUpload,
	notes string,
) (*model.FileRecord, error) {
	rec, err := s.submitFile(ctx, projectID, uploaderID, upload, notes)
	if err != nil {
		s.fail(commandSubmit, err,
			slog.String("project_id", projectID),
			slog.Int64("actor_id", uploaderID),
		)
		return nil, err
	}

	s.metrics.FileSubmissions.Inc()
	s.recomputer.Recompute(ctx)
	s.logger.Info("Файл загружен на проверку",
		slog.String("project_id", projectID),
		slog.String("file_record_id", rec.ID),
		slog.Int64("actor_id", uploaderID),
		slog.String("file_name", rec.FileName),
		slog.Int64("file_size", rec.FileSize),
	)
	return rec, nil
}

func (s *ReviewService) submitFile(
	ctx context.Context,
	projectID string,
	uploaderID int64,
	upload FileUpload,
	notes string,
) (*model.FileRecord, error) {
	name := strings.TrimSpace(upload.Name)
	if name == "" {
		return nil, validationf("имя файла не может быть пустым")
	}
	if upload.Size <= 0 {
		return nil, validationf("размер файла должен быть больше нуля, получено %d", upload.Size)
	}
	if uploaderID == 0 {
		return nil, ErrIdentityMissing
	}

	notes = strings.TrimSpace(notes)
	if notes == "" {
		notes = DefaultNotes
	}
	fileURL := strings.TrimSpace(upload.URL)
	if fileURL == "" {
		fileURL = s.uploadURLPrefix + "/" + url.PathEscape(name)
	}

	now := s.now()
	rec := &model.FileRecord{
		ID:         s.newID(),
		ProjectID:  projectID,
		UploadedBy: uploaderID,
		FileName:   name,
		FileURL:    fileURL,
		FileSize:   upload.Size,
		UploadDate: now,
		Notes:      notes,
		Status:     model.FileStatusPendingReview,
	}

	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		project, err := tx.Project(projectID)
		if err != nil {
			return fromRepo(err, EntityProject, projectID)
		}
		if _, err := tx.User(uploaderID); err != nil {
			return fromRepo(err, EntityUser, uploaderID)
		}

		if err := tx.InsertFileRecord(rec); err != nil {
			return err
		}

		project.Status = model.ProjectPendingReview
		project.CurrentFileRecordID = &rec.ID
		project.RejectionReason = nil
		project.UpdatedAt = startOfDay(now)
		return tx.UpdateProject(project)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ApproveFile одобряет запись файла. Проект переходит в APPROVED, если
// запись является его текущей или самой поздней загрузкой.
//
// Ошибки:
//   - ErrIdentityMissing — не указан проверяющий
//   - ErrNotFound — запись или проверяющий не найдены
//   - ErrInvalidTransition — запись уже проверена
func (s *ReviewService) ApproveFile(ctx context.Context, fileRecordID string, reviewerID int64) (*model.FileRecord, error) {
	rec, projectUpdated, err := s.decide(ctx, fileRecordID, reviewerID, model.FileStatusApproved, ApprovalFeedback)
	if err != nil {
		s.fail(commandApprove, err,
			slog.String("file_record_id", fileRecordID),
			slog.Int64("actor_id", reviewerID),
		)
		return nil, err
	}

	s.metrics.ReviewDecisions.WithLabelValues("approved").Inc()
	s.recomputer.Recompute(ctx)
	s.logger.Info("Файл одобрен",
		slog.String("project_id", rec.ProjectID),
		slog.String("file_record_id", rec.ID),
		slog.Int64("actor_id", reviewerID),
		slog.Bool("project_updated", projectUpdated),
	)
	return rec, nil
}

// RejectFile отклоняет запись файла с комментарием. Проект переходит
// в REJECTED, запись становится текущей, комментарий — причиной отклонения.
//
// Ошибки:
//   - ErrValidation — пустой комментарий
//   - ErrIdentityMissing — не указан проверяющий
//   - ErrNotFound — запись или проверяющий не найдены
//   - ErrInvalidTransition — запись уже проверена
func (s *ReviewService) RejectFile(ctx context.Context, fileRecordID, feedback string, reviewerID int64) (*model.FileRecord, error) {
	feedback = strings.TrimSpace(feedback)

	var (
		rec *model.FileRecord
		err error
	)
	if feedback == "" {
		err = validationf("комментарий к отклонению не может быть пустым")
	} else {
		rec, _, err = s.decide(ctx, fileRecordID, reviewerID, model.FileStatusRejected, feedback)
	}
	if err != nil {
		s.fail(commandReject, err,
			slog.String("file_record_id", fileRecordID),
			slog.Int64("actor_id", reviewerID),
		)
		return nil, err
	}

	s.metrics.ReviewDecisions.WithLabelValues("rejected").Inc()
	s.recomputer.Recompute(ctx)
	s.logger.Info("Файл отклонён",
		slog.String("project_id", rec.ProjectID),
		slog.String("file_record_id", rec.ID),
		slog.Int64("actor_id", reviewerID),
	)
	return rec, nil
}

// decide применяет решение проверяющего к записи и её проекту.
// Возвращает обновлённую запись и признак изменения проекта.
func (s *ReviewService) decide(
	ctx context.Context,
	fileRecordID string,
	reviewerID int64,
	target model.FileStatus,
	feedback string,
) (*model.FileRecord, bool, error) {
	if reviewerID == 0 {
		return nil, false, ErrIdentityMissing
	}

	var (
		rec            *model.FileRecord
		projectUpdated bool
	)
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		fr, err := tx.FileRecord(fileRecordID)
		if err != nil {
			return fromRepo(err, EntityFileRecord, fileRecordID)
		}
		if _, err := tx.User(reviewerID); err != nil {
			return fromRepo(err, EntityUser, reviewerID)
		}
		if err := review.Check(fr.Status, target); err != nil {
			return invalidTransition(err)
		}

		now := s.now()
		fr.Status = target
		fr.Feedback = &feedback
		fr.ReviewedBy = &reviewerID
		fr.ReviewedAt = &now
		if err := tx.UpdateFileRecord(fr); err != nil {
			return err
		}

		project, err := tx.Project(fr.ProjectID)
		if err != nil {
			return fromRepo(err, EntityProject, fr.ProjectID)
		}

		if target == model.FileStatusApproved {
			// Текущая запись всегда отражается в проекте, независимо от дат
			if fr.ID != project.CurrentRecordID() {
				latest, err := tx.LatestFileRecord(fr.ProjectID)
				if err != nil {
					return err
				}
				if latest.ID != fr.ID {
					// Запись уже не последняя загрузка: проект отражает более новую
					rec = fr
					return nil
				}
			}
			project.RejectionReason = nil
		} else {
			reason := feedback
			project.RejectionReason = &reason
		}

		project.Status = review.ProjectStatus(target)
		project.CurrentFileRecordID = &fr.ID
		project.UpdatedAt = startOfDay(now)
		if err := tx.UpdateProject(project); err != nil {
			return err
		}
		rec = fr
		projectUpdated = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return rec, projectUpdated, nil
}

// fail учитывает отказ команды в метриках и логе.
// Ожидаемые отказы пишутся на уровне Warn, внутренние — на Error.
func (s *ReviewService) fail(command string, err error, attrs ...slog.Attr) {
	reason := failureReason(err)
	s.metrics.CommandFailures.WithLabelValues(command, reason).Inc()

	level := slog.LevelWarn
	if reason == "internal" && !errors.Is(err, context.Canceled) {
		level = slog.LevelError
	}
	attrs = append(attrs,
		slog.String("command", command),
		slog.String("reason", reason),
		slog.String("error", err.Error()),
	)
	s.logger.LogAttrs(context.Background(), level, "Команда отклонена", attrs...)
}

// startOfDay отбрасывает время, оставляя дату в UTC.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
