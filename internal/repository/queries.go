// queries.go — методы чтения хранилища: выборки по идентификатору,
// списки по организации и полная карточка проекта с историей.
package repository

import (
	"fmt"
	"sort"

	"github.com/BigWhaleDJY/MCMP-stack/internal/domain/model"
)

// GetOrganization возвращает организацию по ID.
func (s *Store) GetOrganization(id int64) (*model.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, ok := s.orgs[id]
	if !ok {
		return nil, fmt.Errorf("организация %d: %w", id, ErrNotFound)
	}
	c := *org
	return &c, nil
}

// ListOrganizations возвращает все организации в порядке создания.
func (s *Store) ListOrganizations() []model.Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Organization, 0, len(s.orgOrder))
	for _, id := range s.orgOrder {
		result = append(result, *s.orgs[id])
	}
	return result
}

// GetUser возвращает пользователя по ID.
func (s *Store) GetUser(id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("пользователь %d: %w", id, ErrNotFound)
	}
	c := *u
	return &c, nil
}

// ListUsersForOrg возвращает пользователей организации в порядке создания.
// Для неизвестной организации возвращает пустой список.
func (s *Store) ListUsersForOrg(orgID int64) []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.usersByOrg[orgID]
	result := make([]model.User, 0, len(ids))
	for _, id := range ids {
		result = append(result, *s.users[id])
	}
	return result
}

// GetTemplate возвращает шаблон требования по ID.
func (s *Store) GetTemplate(id string) (*model.RequirementTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tpl, ok := s.templates[id]
	if !ok {
		return nil, fmt.Errorf("шаблон %q: %w", id, ErrNotFound)
	}
	c := *tpl
	return &c, nil
}

// GetProject возвращает проект по ID.
func (s *Store) GetProject(id string) (*model.ComplianceProject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("проект %q: %w", id, ErrNotFound)
	}
	return p.Clone(), nil
}

// ListProjectsForOrg возвращает проекты организации в порядке создания.
func (s *Store) ListProjectsForOrg(orgID int64) []model.ComplianceProject {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.projectsByOrg[orgID]
	result := make([]model.ComplianceProject, 0, len(ids))
	for _, id := range ids {
		result = append(result, *s.projects[id].Clone())
	}
	return result
}

// GetFileRecord возвращает запись файла по ID.
func (s *Store) GetFileRecord(id string) (*model.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fr, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("запись файла %q: %w", id, ErrNotFound)
	}
	return fr.Clone(), nil
}

// ListFileRecordsForProject возвращает записи проекта в порядке добавления.
func (s *Store) ListFileRecordsForProject(projectID string) []model.FileRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.recordsByProject[projectID]
	result := make([]model.FileRecord, 0, len(ids))
	for _, id := range ids {
		result = append(result, *s.records[id].Clone())
	}
	return result
}

// GetProjectDetails возвращает проект с шаблоном, организацией и историей
// загрузок. История отсортирована по дате загрузки по убыванию; при равных
// датах первой идёт текущая запись проекта, затем записи в обратном
// порядке добавления.
func (s *Store) GetProjectDetails(projectID string) (*model.ProjectDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[projectID]
	if !ok {
		return nil, fmt.Errorf("проект %q: %w", projectID, ErrNotFound)
	}

	details := &model.ProjectDetails{Project: p.Clone()}
	if tpl, ok := s.templates[p.TemplateID]; ok {
		c := *tpl
		details.Template = &c
	}
	if org, ok := s.orgs[p.OrgID]; ok {
		c := *org
		details.Organization = &c
	}

	ids := s.recordsByProject[projectID]
	records := make([]*model.FileRecord, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		records = append(records, s.records[ids[i]])
	}
	SortHistory(records, p.CurrentRecordID())

	details.FileHistory = make([]model.FileHistoryEntry, 0, len(records))
	for _, fr := range records {
		entry := model.FileHistoryEntry{Record: fr.Clone()}
		if u, ok := s.users[fr.UploadedBy]; ok {
			c := *u
			entry.Uploader = &c
		}
		details.FileHistory = append(details.FileHistory, entry)
	}
	return details, nil
}

// SortHistory упорядочивает записи по дате загрузки по убыванию.
// Сортировка устойчивая; при равных датах запись currentID идёт первой.
// Ожидает записи в обратном порядке добавления.
func SortHistory(records []*model.FileRecord, currentID string) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.UploadDate.Equal(b.UploadDate) {
			return a.UploadDate.After(b.UploadDate)
		}
		return a.ID == currentID && b.ID != currentID
	})
}

// latestRecord возвращает самую позднюю запись; при равных датах
// предпочитает currentID, затем более позднюю по порядку добавления.
// Ожидает записи в порядке добавления.
func latestRecord(records []*model.FileRecord, currentID string) *model.FileRecord {
	var latest *model.FileRecord
	for _, fr := range records {
		switch {
		case latest == nil:
			latest = fr
		case fr.UploadDate.After(latest.UploadDate):
			latest = fr
		case fr.UploadDate.Equal(latest.UploadDate) && latest.ID != currentID:
			latest = fr
		}
	}
	return latest
}
