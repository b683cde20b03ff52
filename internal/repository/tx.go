// tx.go — транзакционная запись: изменения накапливаются в Tx
// и применяются к хранилищу целиком только при успехе.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/BigWhaleDJY/MCMP-stack/internal/domain/model"
)

// Tx — набор изменений внутри Store.Update.
// Чтения через Tx видят уже внесённые в неё изменения.
// Tx действительна только внутри функции, переданной в Update.
type Tx struct {
	s *Store

	projects   map[string]*model.ComplianceProject
	records    map[string]*model.FileRecord
	users      map[int64]*model.User
	newRecords []string
}

// Update выполняет fn под монопольной блокировкой хранилища.
// Если fn возвращает ошибку, ни одно изменение не применяется.
// При успехе версия хранилища увеличивается на единицу.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{
		s:        s,
		projects: make(map[string]*model.ComplianceProject),
		records:  make(map[string]*model.FileRecord),
		users:    make(map[int64]*model.User),
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(tx.projects) == 0 && len(tx.records) == 0 && len(tx.users) == 0 {
		return nil
	}

	tx.apply()
	s.version++
	return nil
}

// apply переносит накопленные изменения в хранилище. Вызывается под Lock.
func (tx *Tx) apply() {
	s := tx.s
	for _, id := range tx.newRecords {
		fr := tx.records[id]
		s.recordOrder = append(s.recordOrder, id)
		s.recordsByProject[fr.ProjectID] = append(s.recordsByProject[fr.ProjectID], id)
	}
	for id, fr := range tx.records {
		s.records[id] = fr
	}
	for id, p := range tx.projects {
		s.projects[id] = p
	}
	for id, u := range tx.users {
		s.users[id] = u
	}
}

// Project возвращает проект с учётом внесённых в транзакцию изменений.
func (tx *Tx) Project(id string) (*model.ComplianceProject, error) {
	if p, ok := tx.projects[id]; ok {
		return p.Clone(), nil
	}
	p, ok := tx.s.projects[id]
	if !ok {
		return nil, fmt.Errorf("проект %q: %w", id, ErrNotFound)
	}
	return p.Clone(), nil
}

// FileRecord возвращает запись файла с учётом изменений транзакции.
func (tx *Tx) FileRecord(id string) (*model.FileRecord, error) {
	if fr, ok := tx.records[id]; ok {
		return fr.Clone(), nil
	}
	fr, ok := tx.s.records[id]
	if !ok {
		return nil, fmt.Errorf("запись файла %q: %w", id, ErrNotFound)
	}
	return fr.Clone(), nil
}

// User возвращает пользователя с учётом изменений транзакции.
func (tx *Tx) User(id int64) (*model.User, error) {
	if u, ok := tx.users[id]; ok {
		c := *u
		return &c, nil
	}
	u, ok := tx.s.users[id]
	if !ok {
		return nil, fmt.Errorf("пользователь %d: %w", id, ErrNotFound)
	}
	c := *u
	return &c, nil
}

// LatestFileRecord возвращает самую позднюю загрузку проекта с учётом
// изменений транзакции. При равных датах предпочитается текущая запись
// проекта. Возвращает ErrNotFound, если у проекта нет записей.
func (tx *Tx) LatestFileRecord(projectID string) (*model.FileRecord, error) {
	p, err := tx.Project(projectID)
	if err != nil {
		return nil, err
	}

	ids := tx.s.recordsByProject[projectID]
	records := make([]*model.FileRecord, 0, len(ids)+len(tx.newRecords))
	for _, id := range ids {
		if fr, ok := tx.records[id]; ok {
			records = append(records, fr)
			continue
		}
		records = append(records, tx.s.records[id])
	}
	for _, id := range tx.newRecords {
		if fr := tx.records[id]; fr.ProjectID == projectID {
			records = append(records, fr)
		}
	}

	latest := latestRecord(records, p.CurrentRecordID())
	if latest == nil {
		return nil, fmt.Errorf("записи проекта %q: %w", projectID, ErrNotFound)
	}
	return latest.Clone(), nil
}

// InsertFileRecord добавляет новую запись файла.
// Проект записи должен существовать, идентификатор — быть уникальным.
func (tx *Tx) InsertFileRecord(fr *model.FileRecord) error {
	if _, err := tx.FileRecord(fr.ID); err == nil {
		return fmt.Errorf("запись файла %q: %w", fr.ID, ErrConflict)
	}
	if _, err := tx.Project(fr.ProjectID); err != nil {
		return err
	}
	tx.records[fr.ID] = fr.Clone()
	tx.newRecords = append(tx.newRecords, fr.ID)
	return nil
}

// UpdateFileRecord заменяет существующую запись файла.
// Проект записи менять нельзя.
func (tx *Tx) UpdateFileRecord(fr *model.FileRecord) error {
	prev, err := tx.FileRecord(fr.ID)
	if err != nil {
		return err
	}
	if prev.ProjectID != fr.ProjectID {
		return fmt.Errorf("запись файла %q: смена проекта %q → %q: %w",
			fr.ID, prev.ProjectID, fr.ProjectID, ErrIntegrity)
	}
	tx.records[fr.ID] = fr.Clone()
	return nil
}

// UpdateProject заменяет существующий проект.
// Текущая запись, если задана, должна принадлежать этому проекту.
func (tx *Tx) UpdateProject(p *model.ComplianceProject) error {
	if _, err := tx.Project(p.ID); err != nil {
		return err
	}
	if p.CurrentFileRecordID != nil {
		fr, err := tx.FileRecord(*p.CurrentFileRecordID)
		if err != nil {
			return err
		}
		if fr.ProjectID != p.ID {
			return fmt.Errorf("проект %q: текущая запись %q не принадлежит проекту: %w",
				p.ID, fr.ID, ErrIntegrity)
		}
	}
	tx.projects[p.ID] = p.Clone()
	return nil
}

// UpdateUser заменяет существующего пользователя. Организация не меняется,
// email остаётся уникальным без учёта регистра (ErrConflict).
func (tx *Tx) UpdateUser(u *model.User) error {
	prev, err := tx.User(u.ID)
	if err != nil {
		return err
	}
	if prev.OrgID != u.OrgID {
		return fmt.Errorf("пользователь %d: смена организации: %w", u.ID, ErrIntegrity)
	}
	if !strings.EqualFold(prev.Email, u.Email) {
		if other, ok := tx.userByEmail(u.Email); ok && other != u.ID {
			return fmt.Errorf("email %q уже занят пользователем %d: %w", u.Email, other, ErrConflict)
		}
	}
	c := *u
	tx.users[u.ID] = &c
	return nil
}

// userByEmail ищет пользователя по email без учёта регистра
// с учётом изменений транзакции.
func (tx *Tx) userByEmail(email string) (int64, bool) {
	for _, id := range tx.s.userOrder {
		u := tx.s.users[id]
		if staged, ok := tx.users[id]; ok {
			u = staged
		}
		if strings.EqualFold(u.Email, email) {
			return id, true
		}
	}
	return 0, false
}
