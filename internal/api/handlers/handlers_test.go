package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/BigWhaleDJY/MCMP-stack/internal/api/middleware"
	"github.com/BigWhaleDJY/MCMP-stack/internal/domain/model"
	"github.com/BigWhaleDJY/MCMP-stack/internal/repository"
	"github.com/BigWhaleDJY/MCMP-stack/internal/service"
)

// testNow — фиксированное время команд в тестах.
var testNow = time.Date(2025, 12, 5, 10, 30, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testAPI — роутер поверх демонстрационных данных и header-идентификации.
type testAPI struct {
	router http.Handler
	store  *repository.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store, err := repository.NewStore(repository.DemoSeed())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	logger := testLogger()
	metrics := service.NewMetricsWithRegisterer(prometheus.NewRegistry())
	cache := service.NewCacheService(64, time.Minute, metrics)
	dashboard := service.NewDashboardService(store, cache, metrics, nil, logger)

	var seq atomic.Int64
	review := service.NewReviewService(store, dashboard, metrics, logger,
		service.WithClock(func() time.Time { return testNow }),
		service.WithIDGenerator(func() string { return fmt.Sprintf("FR-TEST-%03d", seq.Add(1)) }),
	)
	profile := service.NewProfileService(store, dashboard, "AU", logger)
	directory := service.NewDirectoryService(store)
	export := service.NewExportService(dashboard, logger)
	identity := middleware.NewHeaderIdentity(store, logger)

	health := NewHealthHandler(store, dashboard, identity)
	h := NewAPIHandler(health, dashboard, review, profile, directory, export, logger)

	r := chi.NewRouter()
	r.Get("/health/ready", h.HealthReady)
	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware())
		r.Get("/api/v1/me", h.GetMe)
		r.Patch("/api/v1/me", h.UpdateMe)
		r.Get("/api/v1/contractors", h.ListContractors)
		r.Get("/api/v1/contractors/{orgID}", h.GetContractor)
		r.Get("/api/v1/organizations/{orgID}", h.GetOrganization)
		r.Get("/api/v1/organizations/{orgID}/projects", h.ListOrganizationProjects)
		r.Get("/api/v1/organizations/{orgID}/users", h.ListOrganizationUsers)
		r.Get("/api/v1/projects/{projectID}", h.GetProjectDetails)
		r.Post("/api/v1/projects/{projectID}/files", h.SubmitFile)
		r.Get("/api/v1/file-records/{fileRecordID}", h.GetFileRecord)
		r.Post("/api/v1/file-records/{fileRecordID}/approve", h.ApproveFile)
		r.Post("/api/v1/file-records/{fileRecordID}/reject", h.RejectFile)
		r.Get("/api/v1/reports/compliance.xlsx", h.GetComplianceReport)
	})

	return &testAPI{router: r, store: store}
}

// do выполняет запрос от имени userID (0 — без заголовка).
func (a *testAPI) do(t *testing.T, method, path string, userID int64, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if userID != 0 {
		req.Header.Set(middleware.HeaderUserID, fmt.Sprint(userID))
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("декодирование ответа: %v (тело: %s)", err, rec.Body.String())
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decodeJSON(t, rec, &body)
	return body.Error.Code
}

// --- Профиль ---

func TestGetMe(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/me", 2, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, тело: %s", rec.Code, rec.Body.String())
	}
	var me meResponse
	decodeJSON(t, rec, &me)
	if me.User.FullName != "Jack Deng" || me.User.Role != string(model.RoleContractorUser) {
		t.Errorf("user = %+v", me.User)
	}
	if me.Organization.ID != 101 || me.Organization.Name != "TWS" {
		t.Errorf("organization = %+v", me.Organization)
	}
}

func TestGetMe_NoIdentity(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/me", 0, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, ожидается 401", rec.Code)
	}
	if code := errorCode(t, rec); code != "IDENTITY_MISSING" {
		t.Errorf("code = %q, ожидается IDENTITY_MISSING", code)
	}
}

func TestUpdateMe(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPatch, "/api/v1/me", 2, `{"fullName":"  Jack D.  "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, тело: %s", rec.Code, rec.Body.String())
	}
	var me meResponse
	decodeJSON(t, rec, &me)
	if me.User.FullName != "Jack D." {
		t.Errorf("FullName = %q, ожидается Jack D.", me.User.FullName)
	}

	// Контакт карточки обновляется после пересборки проекции
	rec = api.do(t, http.MethodGet, "/api/v1/contractors/101", 1, "")
	var card model.ContractorCard
	decodeJSON(t, rec, &card)
	if card.ContactName != "Jack D." {
		t.Errorf("ContactName = %q, ожидается Jack D.", card.ContactName)
	}
}

func TestUpdateMe_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"некорректный email", `{"email":"not-an-email"}`},
		{"некорректный телефон", `{"phone":"123"}`},
		{"неизвестное поле", `{"nickname":"jd"}`},
		{"не JSON", `{"fullName":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t)
			version := api.store.Version()

			rec := api.do(t, http.MethodPatch, "/api/v1/me", 2, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, ожидается 400 (тело: %s)", rec.Code, rec.Body.String())
			}
			if code := errorCode(t, rec); code != "VALIDATION_ERROR" {
				t.Errorf("code = %q", code)
			}
			if api.store.Version() != version {
				t.Error("хранилище не должно изменяться")
			}
		})
	}
}

func TestUpdateMe_EmailConflict(t *testing.T) {
	api := newTestAPI(t)
	version := api.store.Version()

	rec := api.do(t, http.MethodPatch, "/api/v1/me", 3, `{"email":"test1@tws.com.au"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, ожидается 409 (тело: %s)", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "CONFLICT" {
		t.Errorf("code = %q, ожидается CONFLICT", code)
	}
	if api.store.Version() != version {
		t.Error("хранилище не должно изменяться")
	}
}

func TestUpdateMe_EmptyBody(t *testing.T) {
	api := newTestAPI(t)
	version := api.store.Version()

	rec := api.do(t, http.MethodPatch, "/api/v1/me", 2, `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, тело: %s", rec.Code, rec.Body.String())
	}
	if api.store.Version() != version {
		t.Errorf("Version = %d, ожидается %d", api.store.Version(), version)
	}
}

// --- Подрядчики и справочники ---

func TestListContractors(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/contractors", 1, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp contractorListResponse
	decodeJSON(t, rec, &resp)
	if resp.Total != 3 || len(resp.Items) != 3 {
		t.Fatalf("total = %d, items = %d, ожидается 3", resp.Total, len(resp.Items))
	}
	if resp.Items[0].Name != "TWS" || resp.Items[0].ComplianceRate != 40 {
		t.Errorf("первая карточка = %s/%d", resp.Items[0].Name, resp.Items[0].ComplianceRate)
	}
	if resp.Version != api.store.Version() {
		t.Errorf("version = %d, ожидается %d", resp.Version, api.store.Version())
	}
}

func TestGetContractor_Errors(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		path       string
		wantStatus int
		wantCode   string
	}{
		{"/api/v1/contractors/abc", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"/api/v1/contractors/0", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"/api/v1/contractors/1", http.StatusNotFound, "NOT_FOUND"},
		{"/api/v1/contractors/999", http.StatusNotFound, "NOT_FOUND"},
		{"/api/v1/organizations/999", http.StatusNotFound, "NOT_FOUND"},
		{"/api/v1/organizations/999/projects", http.StatusNotFound, "NOT_FOUND"},
		{"/api/v1/projects/P-NONE", http.StatusNotFound, "NOT_FOUND"},
		{"/api/v1/file-records/FR-NONE", http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := api.do(t, http.MethodGet, tt.path, 1, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, ожидается %d", rec.Code, tt.wantStatus)
			}
			if code := errorCode(t, rec); code != tt.wantCode {
				t.Errorf("code = %q, ожидается %q", code, tt.wantCode)
			}
		})
	}
}

func TestOrganizationEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/organizations/103", 1, "")
	var org organizationResponse
	decodeJSON(t, rec, &org)
	if org.Name != "AWS" || org.Status != string(model.OrgStatusInactive) {
		t.Errorf("organization = %+v", org)
	}

	rec = api.do(t, http.MethodGet, "/api/v1/organizations/101/projects", 1, "")
	var projects listResponse[projectResponse]
	decodeJSON(t, rec, &projects)
	if projects.Total != 5 {
		t.Errorf("проектов TWS = %d, ожидается 5", projects.Total)
	}

	rec = api.do(t, http.MethodGet, "/api/v1/organizations/102/users", 1, "")
	var users listResponse[userResponse]
	decodeJSON(t, rec, &users)
	if users.Total != 1 || users.Items[0].FullName != "Sarah Jones" {
		t.Errorf("пользователи SalesForce = %+v", users.Items)
	}
}

func TestGetFileRecord_DownloadLink(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/file-records/FR-TWS-WHS-001", 2, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var fr fileRecordResponse
	decodeJSON(t, rec, &fr)
	if fr.FileURL != "/mock/uploads/tws/WHS_Management_Plan_2025.pdf" {
		t.Errorf("fileUrl = %q", fr.FileURL)
	}
}

// --- Процесс проверки ---

func TestSubmitApproveFlow(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/projects/P-TWS-WSR-W43/files", 2,
		`{"name":"Safety_Report_Week43.pdf","size":2048,"notes":"no incidents"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d, тело: %s", rec.Code, rec.Body.String())
	}
	var submitted fileRecordResponse
	decodeJSON(t, rec, &submitted)
	if submitted.ID != "FR-TEST-001" || submitted.Status != string(model.FileStatusPendingReview) {
		t.Errorf("запись = %s/%s", submitted.ID, submitted.Status)
	}
	if submitted.UploadedBy != 2 || submitted.FileSize != 2048 {
		t.Errorf("uploadedBy = %d, fileSize = %d", submitted.UploadedBy, submitted.FileSize)
	}

	rec = api.do(t, http.MethodPost, "/api/v1/file-records/FR-TEST-001/approve", 1, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d, тело: %s", rec.Code, rec.Body.String())
	}
	var approved fileRecordResponse
	decodeJSON(t, rec, &approved)
	if approved.Status != string(model.FileStatusApproved) || approved.ReviewedBy == nil || *approved.ReviewedBy != 1 {
		t.Errorf("после одобрения = %+v", approved)
	}

	rec = api.do(t, http.MethodGet, "/api/v1/projects/P-TWS-WSR-W43", 1, "")
	var details projectDetailsResponse
	decodeJSON(t, rec, &details)
	if details.Project.Status != string(model.ProjectApproved) {
		t.Errorf("статус проекта = %q, ожидается APPROVED", details.Project.Status)
	}
	if len(details.FileHistory) != 1 || details.FileHistory[0].Uploader == nil {
		t.Fatalf("история = %+v", details.FileHistory)
	}

	// Повторное решение по проверенной записи
	rec = api.do(t, http.MethodPost, "/api/v1/file-records/FR-TEST-001/approve", 1, "")
	if rec.Code != http.StatusConflict {
		t.Errorf("повторное одобрение: status = %d, ожидается 409", rec.Code)
	}
}

func TestSubmitFile_Validation(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name string
		body string
	}{
		{"без имени", `{"size":10}`},
		{"нулевой размер", `{"name":"a.pdf","size":0}`},
		{"отрицательный размер", `{"name":"a.pdf","size":-5}`},
		{"неизвестное поле", `{"name":"a.pdf","size":1,"extra":true}`},
		{"некорректный url", `{"name":"a.pdf","size":1,"url":"not a url"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/api/v1/projects/P-TWS-WSR-W43/files", 2, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, ожидается 400", rec.Code)
			}
		})
	}

	rec := api.do(t, http.MethodPost, "/api/v1/projects/P-NONE/files", 2, `{"name":"a.pdf","size":1}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("неизвестный проект: status = %d, ожидается 404", rec.Code)
	}
}

func TestApproveFile_AlreadyReviewed(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/file-records/FR-TWS-PLI-001/approve", 1, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, ожидается 409", rec.Code)
	}
	if code := errorCode(t, rec); code != "INVALID_TRANSITION" {
		t.Errorf("code = %q, ожидается INVALID_TRANSITION", code)
	}
}

func TestRejectFile(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/file-records/FR-SLS-PLI-001/reject", 1, `{"feedback":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("пустой комментарий: status = %d, ожидается 400", rec.Code)
	}

	rec = api.do(t, http.MethodPost, "/api/v1/file-records/FR-SLS-PLI-001/reject", 1,
		`{"feedback":"Certificate has expired"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, тело: %s", rec.Code, rec.Body.String())
	}
	var fr fileRecordResponse
	decodeJSON(t, rec, &fr)
	if fr.Status != string(model.FileStatusRejected) || fr.Feedback == nil || *fr.Feedback != "Certificate has expired" {
		t.Errorf("после отклонения = %+v", fr)
	}

	rec = api.do(t, http.MethodGet, "/api/v1/contractors/102", 1, "")
	var card model.ContractorCard
	decodeJSON(t, rec, &card)
	doc := card.ComplianceDocs[0]
	if doc.Status != model.ProjectRejected || doc.RejectionReason == nil || *doc.RejectionReason != "Certificate has expired" {
		t.Errorf("документ карточки = %+v", doc)
	}
}

// --- Отчёт ---

func TestGetComplianceReport(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/reports/compliance.xlsx", 1, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "compliance.xlsx") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	// XLSX — zip-архив
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("тело ответа не является XLSX-книгой")
	}
}

// --- Health ---

type staticChecker struct{ status, message string }

func (c staticChecker) CheckReady() (string, string) { return c.status, c.message }

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name       string
		identity   ReadinessChecker
		wantStatus int
		wantBody   string
	}{
		{"ok", staticChecker{"ok", ""}, http.StatusOK, "ok"},
		{"degraded", staticChecker{"degraded", "JWKS недоступен"}, http.StatusOK, "degraded"},
		{"fail", staticChecker{"fail", "нет ключей"}, http.StatusServiceUnavailable, "fail"},
		{"nil checker", nil, http.StatusServiceUnavailable, "fail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(staticChecker{"ok", ""}, staticChecker{"ok", ""}, tt.identity)
			rec := httptest.NewRecorder()
			h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, ожидается %d", rec.Code, tt.wantStatus)
			}
			var resp healthReadyResponse
			decodeJSON(t, rec, &resp)
			if resp.Status != tt.wantBody {
				t.Errorf("status в теле = %q, ожидается %q", resp.Status, tt.wantBody)
			}
			if resp.Service != serviceName {
				t.Errorf("service = %q", resp.Service)
			}
		})
	}
}

func TestHealthReady_DemoStack(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health/ready", 0, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, тело: %s", rec.Code, rec.Body.String())
	}
	var resp healthReadyResponse
	decodeJSON(t, rec, &resp)
	if resp.Status != "ok" || resp.Checks.Store.Status != "ok" || resp.Checks.Projection.Status != "ok" {
		t.Errorf("readiness = %+v", resp)
	}
}

func TestHealthLive(t *testing.T) {
	h := NewHealthHandler(nil, nil, nil)
	rec := httptest.NewRecorder()
	h.HealthLive(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp healthLiveResponse
	decodeJSON(t, rec, &resp)
	if resp.Status != "ok" || resp.Service != serviceName {
		t.Errorf("live = %+v", resp)
	}
}

func TestOverallStatus(t *testing.T) {
	tests := []struct {
		statuses []string
		want     string
	}{
		{[]string{"ok", "ok", "ok"}, "ok"},
		{[]string{"ok", "degraded", "ok"}, "degraded"},
		{[]string{"degraded", "fail", "ok"}, "fail"},
		{nil, "ok"},
	}
	for _, tt := range tests {
		if got := overallStatus(tt.statuses...); got != tt.want {
			t.Errorf("overallStatus(%v) = %q, ожидается %q", tt.statuses, got, tt.want)
		}
	}
}
