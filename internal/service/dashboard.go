// dashboard.go — слой проекций: карточки подрядчиков, процент соответствия
// и кэшируемые карточки проектов. Проекция полностью пересчитывается после
// каждой мутации и публикуется как неизменяемый снимок.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BigWhaleDJY/MCMP-stack/internal/domain/model"
	"github.com/BigWhaleDJY/MCMP-stack/internal/repository"
)

// Recomputer — пересчёт производных представлений после мутации хранилища.
type Recomputer interface {
	Recompute(ctx context.Context)
}

// PrimaryContactPolicy выбирает основной контакт организации из её
// пользователей (в порядке создания). Возвращает nil, если выбрать некого.
type PrimaryContactPolicy func(users []model.User) *model.User

// PrimaryContactFirstCreated — основным контактом считается первый
// созданный пользователь организации.
func PrimaryContactFirstCreated(users []model.User) *model.User {
	if len(users) == 0 {
		return nil
	}
	u := users[0]
	return &u
}

// Projection — неизменяемый снимок карточек подрядчиков.
// Срезы и вложенные структуры нельзя изменять после публикации.
type Projection struct {
	// Version — версия хранилища, из которой собран снимок
	Version uint64
	// BuiltAt — время сборки
	BuiltAt time.Time
	// Cards — карточки подрядчиков в порядке создания организаций
	Cards []model.ContractorCard

	byOrg map[int64]int
}

// Card возвращает карточку подрядчика по ID организации.
func (p *Projection) Card(orgID int64) (*model.ContractorCard, bool) {
	i, ok := p.byOrg[orgID]
	if !ok {
		return nil, false
	}
	return &p.Cards[i], true
}

// DashboardService — сервис проекций для дашборда регулятора.
type DashboardService struct {
	store   *repository.Store
	cache   *CacheService
	metrics *Metrics
	policy  PrimaryContactPolicy
	now     func() time.Time
	logger  *slog.Logger

	current atomic.Pointer[Projection]
	// rebuildMu сериализует пересборки, чтобы версии публиковались по порядку
	rebuildMu sync.Mutex
}

// NewDashboardService создаёт сервис и собирает начальную проекцию.
// policy == nil означает PrimaryContactFirstCreated.
func NewDashboardService(
	store *repository.Store,
	cache *CacheService,
	metrics *Metrics,
	policy PrimaryContactPolicy,
	logger *slog.Logger,
) *DashboardService {
	if policy == nil {
		policy = PrimaryContactFirstCreated
	}
	d := &DashboardService{
		store:   store,
		cache:   cache,
		metrics: metrics,
		policy:  policy,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger.With(slog.String("component", "dashboard_service")),
	}
	d.rebuild()
	return d
}

// Recompute сбрасывает кэш карточек проектов и пересобирает проекцию.
func (d *DashboardService) Recompute(_ context.Context) {
	d.cache.Purge()
	d.rebuild()
}

// rebuild собирает проекцию из снимка хранилища и публикует её,
// если она новее текущей.
func (d *DashboardService) rebuild() {
	d.rebuildMu.Lock()
	defer d.rebuildMu.Unlock()

	start := time.Now()
	snap := d.store.Snapshot()
	if cur := d.current.Load(); cur != nil && cur.Version >= snap.Version {
		return
	}

	cards := BuildContractorCards(snap, d.policy)
	proj := &Projection{
		Version: snap.Version,
		BuiltAt: d.now(),
		Cards:   cards,
		byOrg:   make(map[int64]int, len(cards)),
	}
	for i := range cards {
		proj.byOrg[cards[i].ID] = i
		d.metrics.ComplianceRate.
			WithLabelValues(strconv.FormatInt(cards[i].ID, 10), cards[i].Name).
			Set(float64(cards[i].ComplianceRate))
	}
	d.current.Store(proj)
	d.metrics.ProjectionRebuild.Observe(time.Since(start).Seconds())

	d.logger.Debug("Проекция пересобрана",
		slog.Uint64("version", snap.Version),
		slog.Int("contractors", len(cards)),
	)
}

// Projection возвращает текущий снимок проекции.
func (d *DashboardService) Projection() *Projection {
	return d.current.Load()
}

// Contractors возвращает карточки всех подрядчиков.
func (d *DashboardService) Contractors() []model.ContractorCard {
	return d.current.Load().Cards
}

// Contractor возвращает карточку подрядчика по ID организации.
func (d *DashboardService) Contractor(orgID int64) (*model.ContractorCard, error) {
	card, ok := d.current.Load().Card(orgID)
	if !ok {
		return nil, notFound(EntityContractor, orgID)
	}
	return card, nil
}

// ProjectDetails возвращает проект с историей загрузок. Результат
// кэшируется до следующей мутации или истечения TTL.
func (d *DashboardService) ProjectDetails(projectID string) (*model.ProjectDetails, error) {
	version := d.store.Version()
	if details, ok := d.cache.Get(projectID, version); ok {
		return details, nil
	}

	details, err := d.store.GetProjectDetails(projectID)
	if err != nil {
		return nil, fromRepo(err, EntityProject, projectID)
	}
	d.cache.Set(projectID, version, details)
	return details, nil
}

// CheckReady реализует ReadinessChecker: проекция собрана и соответствует
// текущей версии хранилища.
func (d *DashboardService) CheckReady() (string, string) {
	proj := d.current.Load()
	if proj == nil {
		return "fail", "проекция не собрана"
	}
	if v := d.store.Version(); proj.Version != v {
		return "degraded", fmt.Sprintf("проекция версии %d, хранилище версии %d", proj.Version, v)
	}
	return "ok", fmt.Sprintf("подрядчиков: %d", len(proj.Cards))
}

// --- Сборка проекции ---

// BuildContractorCards собирает карточки всех подрядчиков из снимка
// хранилища в порядке создания организаций.
func BuildContractorCards(snap *repository.Snapshot, policy PrimaryContactPolicy) []model.ContractorCard {
	if policy == nil {
		policy = PrimaryContactFirstCreated
	}

	templates := make(map[string]*model.RequirementTemplate, len(snap.Templates))
	for i := range snap.Templates {
		templates[snap.Templates[i].ID] = &snap.Templates[i]
	}
	users := make(map[int64]*model.User, len(snap.Users))
	usersByOrg := make(map[int64][]model.User)
	for i := range snap.Users {
		u := &snap.Users[i]
		users[u.ID] = u
		usersByOrg[u.OrgID] = append(usersByOrg[u.OrgID], *u)
	}
	records := make(map[string]*model.FileRecord, len(snap.FileRecords))
	recordsByProject := make(map[string][]*model.FileRecord)
	for i := range snap.FileRecords {
		fr := &snap.FileRecords[i]
		records[fr.ID] = fr
		recordsByProject[fr.ProjectID] = append(recordsByProject[fr.ProjectID], fr)
	}
	projectsByOrg := make(map[int64][]*model.ComplianceProject)
	for i := range snap.Projects {
		p := &snap.Projects[i]
		projectsByOrg[p.OrgID] = append(projectsByOrg[p.OrgID], p)
	}

	cards := make([]model.ContractorCard, 0, len(snap.Organizations))
	for i := range snap.Organizations {
		org := &snap.Organizations[i]
		if !org.IsContractor() {
			continue
		}

		projects := projectsByOrg[org.ID]
		card := model.ContractorCard{
			ID:             org.ID,
			Name:           org.Name,
			Status:         org.Status.DisplayName(),
			LastUpload:     org.LastActivity.Format(model.DateLayout),
			ABN:            org.ABN,
			Address:        org.Address,
			ContactName:    model.UnknownName,
			Services:       org.Services,
			ComplianceDocs: make([]model.DocumentView, 0),
			ReportingDocs:  make([]model.DocumentView, 0),
		}
		if contact := policy(usersByOrg[org.ID]); contact != nil {
			card.ContactName = contact.FullName
			card.ContactEmail = contact.Email
		}

		approved := 0
		for _, p := range projects {
			if p.Status == model.ProjectApproved {
				approved++
			}
			tpl := templates[p.TemplateID]
			if tpl == nil {
				// Проект без шаблона не относится ни к одной группе документов
				continue
			}
			doc := buildDocument(p, tpl, records, recordsByProject[p.ID], users)
			if tpl.Type == model.TemplateReporting {
				card.ReportingDocs = append(card.ReportingDocs, doc)
			} else {
				card.ComplianceDocs = append(card.ComplianceDocs, doc)
			}
		}
		card.ComplianceRate = ComplianceRate(approved, len(projects))

		cards = append(cards, card)
	}
	return cards
}

// buildDocument собирает документ карточки из проекта и его записей.
func buildDocument(
	p *model.ComplianceProject,
	tpl *model.RequirementTemplate,
	records map[string]*model.FileRecord,
	history []*model.FileRecord,
	users map[int64]*model.User,
) model.DocumentView {
	doc := model.DocumentView{
		ID:           p.ID,
		Title:        documentTitle(p, tpl),
		Type:         tpl.Type.DisplayName(),
		Status:       p.Status,
		DueDate:      p.DueDate.Format(model.DateLayout),
		UploadedDate: model.NotUploaded,
		Description:  tpl.Description,
	}
	if p.RejectionReason != nil {
		reason := *p.RejectionReason
		doc.RejectionReason = &reason
	}
	if cur, ok := records[p.CurrentRecordID()]; ok {
		doc.UploadedDate = cur.UploadDate.Format(model.DateLayout)
	}

	ordered := make([]*model.FileRecord, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		ordered = append(ordered, history[i])
	}
	repository.SortHistory(ordered, p.CurrentRecordID())

	doc.UploadHistory = make([]model.UploadEntry, 0, len(ordered))
	for _, fr := range ordered {
		uploader := model.UnknownName
		if u, ok := users[fr.UploadedBy]; ok {
			uploader = u.FullName
		}
		doc.UploadHistory = append(doc.UploadHistory, model.UploadEntry{
			UploadID:   fr.ID,
			FileName:   fr.FileName,
			UploadDate: fr.UploadDate.Format(model.DateTimeLayout),
			Notes:      fr.Notes,
			Status:     fr.Status,
			UploadedBy: uploader,
		})
	}
	return doc
}

// documentTitle — отображаемое имя проекта, иначе заголовок шаблона,
// иначе "Unknown".
func documentTitle(p *model.ComplianceProject, tpl *model.RequirementTemplate) string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if tpl != nil && tpl.Title != "" {
		return tpl.Title
	}
	return model.UnknownName
}

// ComplianceRate возвращает round-half-up(100 × approved / total).
// Для организации без проектов возвращает 0.
func ComplianceRate(approved, total int) int {
	if total <= 0 {
		return 0
	}
	rate := decimal.NewFromInt(int64(approved)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(0)
	return int(rate.IntPart())
}
