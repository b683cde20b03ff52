package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/BigWhaleDJY/MCMP-stack/internal/domain/model"
)

// newDemoStore создаёт хранилище с демонстрационными данными.
func newDemoStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(DemoSeed())
	if err != nil {
		t.Fatalf("NewStore(DemoSeed()): %v", err)
	}
	return s
}

func TestNewStore_DemoSeedCounts(t *testing.T) {
	snap := newDemoStore(t).Snapshot()

	if len(snap.Organizations) != 4 {
		t.Errorf("организаций = %d, ожидается 4", len(snap.Organizations))
	}
	if len(snap.Users) != 3 {
		t.Errorf("пользователей = %d, ожидается 3", len(snap.Users))
	}
	if len(snap.Templates) != 4 {
		t.Errorf("шаблонов = %d, ожидается 4", len(snap.Templates))
	}
	if len(snap.Projects) != 6 {
		t.Errorf("проектов = %d, ожидается 6", len(snap.Projects))
	}
	if len(snap.FileRecords) != 5 {
		t.Errorf("записей = %d, ожидается 5", len(snap.FileRecords))
	}
	if snap.Version != 0 {
		t.Errorf("Version = %d, ожидается 0", snap.Version)
	}
}

func TestNewStore_IntegrityErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Seed)
		want   error
	}{
		{
			name:   "дублирующаяся организация",
			mutate: func(s *Seed) { s.Organizations = append(s.Organizations, s.Organizations[0]) },
			want:   ErrConflict,
		},
		{
			name: "email занят без учёта регистра",
			mutate: func(s *Seed) {
				s.Users[2].Email = "TEST1@tws.com.au"
			},
			want: ErrConflict,
		},
		{
			name:   "пользователь неизвестной организации",
			mutate: func(s *Seed) { s.Users[0].OrgID = 999 },
			want:   ErrIntegrity,
		},
		{
			name:   "проект неизвестной организации",
			mutate: func(s *Seed) { s.Projects[0].OrgID = 999 },
			want:   ErrIntegrity,
		},
		{
			name:   "запись неизвестного проекта",
			mutate: func(s *Seed) { s.FileRecords[0].ProjectID = "P-NONE" },
			want:   ErrIntegrity,
		},
		{
			name: "текущая запись чужого проекта",
			mutate: func(s *Seed) {
				id := "FR-SLS-PLI-001"
				s.Projects[0].CurrentFileRecordID = &id
			},
			want: ErrIntegrity,
		},
		{
			name: "текущая запись не существует",
			mutate: func(s *Seed) {
				id := "FR-MISSING"
				s.Projects[0].CurrentFileRecordID = &id
			},
			want: ErrIntegrity,
		},
		{
			name:   "проект неизвестного шаблона",
			mutate: func(s *Seed) { s.Projects[1].TemplateID = "TPL-NONE" },
			want:   ErrIntegrity,
		},
		{
			name:   "запись неизвестного пользователя",
			mutate: func(s *Seed) { s.FileRecords[0].UploadedBy = 999 },
			want:   ErrIntegrity,
		},
		{
			name:   "статус проекта расходится с текущей записью",
			mutate: func(s *Seed) { s.Projects[0].Status = model.ProjectApproved },
			want:   ErrIntegrity,
		},
		{
			name: "причина отклонения не совпадает с комментарием",
			mutate: func(s *Seed) {
				reason := "другая причина"
				s.Projects[0].RejectionReason = &reason
			},
			want: ErrIntegrity,
		},
		{
			name:   "отклонённый проект без причины",
			mutate: func(s *Seed) { s.Projects[0].RejectionReason = nil },
			want:   ErrIntegrity,
		},
		{
			name: "причина у одобренного проекта",
			mutate: func(s *Seed) {
				reason := "лишняя причина"
				s.Projects[1].RejectionReason = &reason
			},
			want: ErrIntegrity,
		},
		{
			name:   "недопустимый статус организации",
			mutate: func(s *Seed) { s.Organizations[0].Status = "CLOSED" },
			want:   ErrIntegrity,
		},
		{
			name:   "пустая роль пользователя",
			mutate: func(s *Seed) { s.Users[0].Role = "" },
			want:   ErrIntegrity,
		},
		{
			name:   "недопустимый тип шаблона",
			mutate: func(s *Seed) { s.Templates[0].Type = "AUDIT" },
			want:   ErrIntegrity,
		},
		{
			name:   "недопустимый статус проекта",
			mutate: func(s *Seed) { s.Projects[3].Status = "DRAFT" },
			want:   ErrIntegrity,
		},
		{
			name:   "недопустимый статус записи",
			mutate: func(s *Seed) { s.FileRecords[0].Status = "DONE" },
			want:   ErrIntegrity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed := DemoSeed()
			tt.mutate(&seed)
			_, err := NewStore(seed)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewStore() error = %v, ожидается %v", err, tt.want)
			}
		})
	}
}

func TestGetOrganization(t *testing.T) {
	s := newDemoStore(t)

	org, err := s.GetOrganization(101)
	if err != nil {
		t.Fatalf("GetOrganization(101): %v", err)
	}
	if org.Name != "TWS" || org.Type != model.OrgTypeContractor {
		t.Errorf("организация = %+v", org)
	}

	if _, err := s.GetOrganization(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetOrganization(999) error = %v, ожидается ErrNotFound", err)
	}
}

func TestGetOrganization_ReturnsCopy(t *testing.T) {
	s := newDemoStore(t)

	org, _ := s.GetOrganization(101)
	org.Name = "changed"

	again, _ := s.GetOrganization(101)
	if again.Name != "TWS" {
		t.Errorf("изменение копии повлияло на хранилище: %q", again.Name)
	}
}

func TestListProjectsForOrg_CreationOrder(t *testing.T) {
	s := newDemoStore(t)

	projects := s.ListProjectsForOrg(101)
	want := []string{"P-TWS-PLI-2025", "P-TWS-WHS-2025", "P-TWS-WSR-W42", "P-TWS-WSR-W43", "P-TWS-MEA-NOV"}
	if len(projects) != len(want) {
		t.Fatalf("проектов = %d, ожидается %d", len(projects), len(want))
	}
	for i, p := range projects {
		if p.ID != want[i] {
			t.Errorf("projects[%d] = %q, ожидается %q", i, p.ID, want[i])
		}
	}

	if got := s.ListProjectsForOrg(103); len(got) != 0 {
		t.Errorf("AWS: проектов = %d, ожидается 0", len(got))
	}
}

func TestListUsersForOrg(t *testing.T) {
	s := newDemoStore(t)

	users := s.ListUsersForOrg(102)
	if len(users) != 1 || users[0].FullName != "Sarah Jones" {
		t.Errorf("пользователи SalesForce = %+v", users)
	}
	if got := s.ListUsersForOrg(103); len(got) != 0 {
		t.Errorf("пользователи AWS = %d, ожидается 0", len(got))
	}
}

func TestGetProjectDetails(t *testing.T) {
	s := newDemoStore(t)

	d, err := s.GetProjectDetails("P-TWS-PLI-2025")
	if err != nil {
		t.Fatalf("GetProjectDetails: %v", err)
	}
	if d.Template == nil || d.Template.ID != "TPL-PLI" {
		t.Errorf("шаблон = %+v", d.Template)
	}
	if d.Organization == nil || d.Organization.ID != 101 {
		t.Errorf("организация = %+v", d.Organization)
	}
	if len(d.FileHistory) != 2 {
		t.Fatalf("история = %d записей, ожидается 2", len(d.FileHistory))
	}
	// Последняя загрузка первой
	if d.FileHistory[0].Record.ID != "FR-TWS-PLI-001" || d.FileHistory[1].Record.ID != "FR-TWS-PLI-002" {
		t.Errorf("порядок истории: %s, %s", d.FileHistory[0].Record.ID, d.FileHistory[1].Record.ID)
	}
	if d.FileHistory[0].Uploader == nil || d.FileHistory[0].Uploader.FullName != "Jack Deng" {
		t.Errorf("загрузивший = %+v", d.FileHistory[0].Uploader)
	}

	if _, err := s.GetProjectDetails("P-NONE"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProjectDetails(P-NONE) error = %v, ожидается ErrNotFound", err)
	}
}

func TestGetProjectDetails_NoHistory(t *testing.T) {
	s := newDemoStore(t)

	d, err := s.GetProjectDetails("P-TWS-WSR-W43")
	if err != nil {
		t.Fatalf("GetProjectDetails: %v", err)
	}
	if len(d.FileHistory) != 0 {
		t.Errorf("история = %d записей, ожидается 0", len(d.FileHistory))
	}
	if d.Project.CurrentFileRecordID != nil {
		t.Errorf("CurrentFileRecordID = %v, ожидается nil", *d.Project.CurrentFileRecordID)
	}
}

func TestSortHistory_TieBreak(t *testing.T) {
	same := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	// Обратный порядок добавления: C, B, A
	records := []*model.FileRecord{
		{ID: "C", UploadDate: same},
		{ID: "B", UploadDate: same},
		{ID: "A", UploadDate: same.Add(-time.Hour)},
	}

	SortHistory(records, "B")

	want := []string{"B", "C", "A"}
	for i, fr := range records {
		if fr.ID != want[i] {
			t.Errorf("records[%d] = %q, ожидается %q", i, fr.ID, want[i])
		}
	}
}

func TestLatestRecord(t *testing.T) {
	same := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	records := []*model.FileRecord{
		{ID: "A", UploadDate: same.Add(-time.Hour)},
		{ID: "B", UploadDate: same},
		{ID: "C", UploadDate: same},
	}

	if got := latestRecord(records, "B"); got.ID != "B" {
		t.Errorf("при текущей B последняя = %q, ожидается B", got.ID)
	}
	if got := latestRecord(records, "A"); got.ID != "C" {
		t.Errorf("при текущей A последняя = %q, ожидается C", got.ID)
	}
	if got := latestRecord(nil, ""); got != nil {
		t.Errorf("пустой список: ожидается nil, получено %q", got.ID)
	}
}

func TestStore_CheckReady(t *testing.T) {
	empty, err := NewStore(Seed{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if status, _ := empty.CheckReady(); status != "degraded" {
		t.Errorf("CheckReady() пустого хранилища = %q, ожидается degraded", status)
	}

	demo, err := NewStore(DemoSeed())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if status, _ := demo.CheckReady(); status != "ok" {
		t.Errorf("CheckReady() = %q, ожидается ok", status)
	}
}
