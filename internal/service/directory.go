// directory.go — чтение сущностей хранилища для HTTP API:
// организации, их проекты и пользователи, записи файлов.
package service

import (
	"github.com/BigWhaleDJY/MCMP-stack/internal/domain/model"
	"github.com/BigWhaleDJY/MCMP-stack/internal/repository"
)

// DirectoryService — сервис чтения сущностей. Ошибки хранилища
// переводятся в ошибки сервисного слоя.
type DirectoryService struct {
	store *repository.Store
}

// NewDirectoryService создаёт сервис чтения сущностей.
func NewDirectoryService(store *repository.Store) *DirectoryService {
	return &DirectoryService{store: store}
}

// Organization возвращает организацию по ID.
func (s *DirectoryService) Organization(id int64) (*model.Organization, error) {
	org, err := s.store.GetOrganization(id)
	if err != nil {
		return nil, fromRepo(err, EntityOrganization, id)
	}
	return org, nil
}

// OrganizationProjects возвращает проекты организации в порядке создания.
func (s *DirectoryService) OrganizationProjects(orgID int64) ([]model.ComplianceProject, error) {
	if _, err := s.Organization(orgID); err != nil {
		return nil, err
	}
	return s.store.ListProjectsForOrg(orgID), nil
}

// OrganizationUsers возвращает пользователей организации в порядке создания.
func (s *DirectoryService) OrganizationUsers(orgID int64) ([]model.User, error) {
	if _, err := s.Organization(orgID); err != nil {
		return nil, err
	}
	return s.store.ListUsersForOrg(orgID), nil
}

// FileRecord возвращает запись файла по ID.
func (s *DirectoryService) FileRecord(id string) (*model.FileRecord, error) {
	fr, err := s.store.GetFileRecord(id)
	if err != nil {
		return nil, fromRepo(err, EntityFileRecord, id)
	}
	return fr, nil
}
