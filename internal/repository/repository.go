// Пакет repository — хранилище сущностей MCMP в памяти процесса.
//
// Пять нормализованных коллекций (организации, пользователи, шаблоны,
// проекты, записи файлов) с индексами по внешним ключам. Единственный
// способ изменить данные — Store.Update: изменения накапливаются в Tx
// и применяются целиком только при успешном завершении функции.
package repository

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/BigWhaleDJY/MCMP-stack/internal/domain/model"
)

// Ошибки слоя хранилища.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrConflict — конфликт уникальности (дублирующийся идентификатор).
	ErrConflict = errors.New("конфликт — запись уже существует")
	// ErrIntegrity — нарушение ссылочной целостности начальных данных.
	ErrIntegrity = errors.New("нарушение ссылочной целостности")
)

// Seed — начальное содержимое хранилища. Порядок элементов задаёт
// порядок создания, в котором возвращаются списки.
type Seed struct {
	Organizations []model.Organization
	Users         []model.User
	Templates     []model.RequirementTemplate
	Projects      []model.ComplianceProject
	FileRecords   []model.FileRecord
}

// Store — хранилище сущностей. Потокобезопасно: чтения под RLock,
// Update сериализует все мутации под Lock.
type Store struct {
	mu      sync.RWMutex
	version uint64

	orgs      map[int64]*model.Organization
	users     map[int64]*model.User
	templates map[string]*model.RequirementTemplate
	projects  map[string]*model.ComplianceProject
	records   map[string]*model.FileRecord

	// Порядок создания
	orgOrder      []int64
	userOrder     []int64
	templateOrder []string
	projectOrder  []string
	recordOrder   []string

	// Индексы внешних ключей
	usersByOrg       map[int64][]int64
	projectsByOrg    map[int64][]string
	recordsByProject map[string][]string
}

// NewStore создаёт хранилище из начальных данных.
// Проверяет уникальность идентификаторов и email, допустимость перечислений,
// ссылки пользователь → организация, проект → организация и шаблон,
// запись → проект и загрузивший пользователь, текущая запись → запись
// того же проекта, а также согласованность статуса проекта с текущей записью.
func NewStore(seed Seed) (*Store, error) {
	s := &Store{
		orgs:             make(map[int64]*model.Organization, len(seed.Organizations)),
		users:            make(map[int64]*model.User, len(seed.Users)),
		templates:        make(map[string]*model.RequirementTemplate, len(seed.Templates)),
		projects:         make(map[string]*model.ComplianceProject, len(seed.Projects)),
		records:          make(map[string]*model.FileRecord, len(seed.FileRecords)),
		usersByOrg:       make(map[int64][]int64),
		projectsByOrg:    make(map[int64][]string),
		recordsByProject: make(map[string][]string),
	}

	for i := range seed.Organizations {
		org := seed.Organizations[i]
		if _, ok := s.orgs[org.ID]; ok {
			return nil, fmt.Errorf("организация %d: %w", org.ID, ErrConflict)
		}
		if !org.Type.Valid() || !org.Status.Valid() {
			return nil, fmt.Errorf("организация %d: недопустимый тип %q или статус %q: %w",
				org.ID, org.Type, org.Status, ErrIntegrity)
		}
		s.orgs[org.ID] = &org
		s.orgOrder = append(s.orgOrder, org.ID)
	}

	emails := make(map[string]int64, len(seed.Users))
	for i := range seed.Users {
		u := seed.Users[i]
		if _, ok := s.users[u.ID]; ok {
			return nil, fmt.Errorf("пользователь %d: %w", u.ID, ErrConflict)
		}
		if _, ok := s.orgs[u.OrgID]; !ok {
			return nil, fmt.Errorf("пользователь %d ссылается на организацию %d: %w", u.ID, u.OrgID, ErrIntegrity)
		}
		if !u.Role.Valid() {
			return nil, fmt.Errorf("пользователь %d: недопустимая роль %q: %w", u.ID, u.Role, ErrIntegrity)
		}
		if email := strings.ToLower(u.Email); email != "" {
			if other, ok := emails[email]; ok {
				return nil, fmt.Errorf("пользователь %d: email %q уже занят пользователем %d: %w",
					u.ID, u.Email, other, ErrConflict)
			}
			emails[email] = u.ID
		}
		s.users[u.ID] = &u
		s.userOrder = append(s.userOrder, u.ID)
		s.usersByOrg[u.OrgID] = append(s.usersByOrg[u.OrgID], u.ID)
	}

	for i := range seed.Templates {
		tpl := seed.Templates[i]
		if _, ok := s.templates[tpl.ID]; ok {
			return nil, fmt.Errorf("шаблон %q: %w", tpl.ID, ErrConflict)
		}
		if !tpl.Type.Valid() {
			return nil, fmt.Errorf("шаблон %q: недопустимый тип %q: %w", tpl.ID, tpl.Type, ErrIntegrity)
		}
		s.templates[tpl.ID] = &tpl
		s.templateOrder = append(s.templateOrder, tpl.ID)
	}

	for i := range seed.Projects {
		p := seed.Projects[i].Clone()
		if _, ok := s.projects[p.ID]; ok {
			return nil, fmt.Errorf("проект %q: %w", p.ID, ErrConflict)
		}
		if _, ok := s.orgs[p.OrgID]; !ok {
			return nil, fmt.Errorf("проект %q ссылается на организацию %d: %w", p.ID, p.OrgID, ErrIntegrity)
		}
		if _, ok := s.templates[p.TemplateID]; !ok {
			return nil, fmt.Errorf("проект %q ссылается на шаблон %q: %w", p.ID, p.TemplateID, ErrIntegrity)
		}
		if !p.Status.Valid() {
			return nil, fmt.Errorf("проект %q: недопустимый статус %q: %w", p.ID, p.Status, ErrIntegrity)
		}
		s.projects[p.ID] = p
		s.projectOrder = append(s.projectOrder, p.ID)
		s.projectsByOrg[p.OrgID] = append(s.projectsByOrg[p.OrgID], p.ID)
	}

	for i := range seed.FileRecords {
		fr := seed.FileRecords[i].Clone()
		if _, ok := s.records[fr.ID]; ok {
			return nil, fmt.Errorf("запись файла %q: %w", fr.ID, ErrConflict)
		}
		if _, ok := s.projects[fr.ProjectID]; !ok {
			return nil, fmt.Errorf("запись файла %q ссылается на проект %q: %w", fr.ID, fr.ProjectID, ErrIntegrity)
		}
		if _, ok := s.users[fr.UploadedBy]; !ok {
			return nil, fmt.Errorf("запись файла %q ссылается на пользователя %d: %w", fr.ID, fr.UploadedBy, ErrIntegrity)
		}
		if !fr.Status.Valid() {
			return nil, fmt.Errorf("запись файла %q: недопустимый статус %q: %w", fr.ID, fr.Status, ErrIntegrity)
		}
		s.records[fr.ID] = fr
		s.recordOrder = append(s.recordOrder, fr.ID)
		s.recordsByProject[fr.ProjectID] = append(s.recordsByProject[fr.ProjectID], fr.ID)
	}

	for _, id := range s.projectOrder {
		p := s.projects[id]
		if p.CurrentFileRecordID == nil {
			continue
		}
		fr, ok := s.records[*p.CurrentFileRecordID]
		if !ok || fr.ProjectID != p.ID {
			return nil, fmt.Errorf("проект %q: текущая запись %q не принадлежит проекту: %w",
				p.ID, *p.CurrentFileRecordID, ErrIntegrity)
		}
		if err := checkProjectStatus(p, fr); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// checkProjectStatus проверяет, что статус проекта равен статусу текущей
// записи, а причина отклонения задана и равна комментарию только для REJECTED.
func checkProjectStatus(p *model.ComplianceProject, current *model.FileRecord) error {
	if string(p.Status) != string(current.Status) {
		return fmt.Errorf("проект %q: статус %s, статус текущей записи %s: %w",
			p.ID, p.Status, current.Status, ErrIntegrity)
	}
	if p.Status == model.ProjectRejected {
		if p.RejectionReason == nil || current.Feedback == nil || *p.RejectionReason != *current.Feedback {
			return fmt.Errorf("проект %q: причина отклонения не совпадает с комментарием записи: %w",
				p.ID, ErrIntegrity)
		}
		return nil
	}
	if p.RejectionReason != nil {
		return fmt.Errorf("проект %q (%s): задана причина отклонения: %w", p.ID, p.Status, ErrIntegrity)
	}
	return nil
}

// Version возвращает номер версии данных. Увеличивается при каждом
// успешном Update.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot — согласованная копия всех коллекций в порядке создания.
type Snapshot struct {
	Version       uint64
	Organizations []model.Organization
	Users         []model.User
	Templates     []model.RequirementTemplate
	Projects      []model.ComplianceProject
	FileRecords   []model.FileRecord
}

// Snapshot возвращает копию всех коллекций, снятую под одной блокировкой.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		Version:       s.version,
		Organizations: make([]model.Organization, 0, len(s.orgOrder)),
		Users:         make([]model.User, 0, len(s.userOrder)),
		Templates:     make([]model.RequirementTemplate, 0, len(s.templateOrder)),
		Projects:      make([]model.ComplianceProject, 0, len(s.projectOrder)),
		FileRecords:   make([]model.FileRecord, 0, len(s.recordOrder)),
	}
	for _, id := range s.orgOrder {
		snap.Organizations = append(snap.Organizations, *s.orgs[id])
	}
	for _, id := range s.userOrder {
		snap.Users = append(snap.Users, *s.users[id])
	}
	for _, id := range s.templateOrder {
		snap.Templates = append(snap.Templates, *s.templates[id])
	}
	for _, id := range s.projectOrder {
		snap.Projects = append(snap.Projects, *s.projects[id].Clone())
	}
	for _, id := range s.recordOrder {
		snap.FileRecords = append(snap.FileRecords, *s.records[id].Clone())
	}
	return snap
}

// CheckReady реализует ReadinessChecker: хранилище инициализировано.
func (s *Store) CheckReady() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.orgs) == 0 {
		return "degraded", "хранилище пустое"
	}
	return "ok", fmt.Sprintf("версия %d, проектов: %d, записей: %d", s.version, len(s.projects), len(s.records))
}
