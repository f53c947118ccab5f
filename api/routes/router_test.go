package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/agencypulse/reporting-backend/api/controllers"
	"github.com/agencypulse/reporting-backend/internal/auditlogs"
	"github.com/agencypulse/reporting-backend/internal/auth"
	"github.com/agencypulse/reporting-backend/internal/campaigns"
	"github.com/agencypulse/reporting-backend/internal/clients"
	"github.com/agencypulse/reporting-backend/internal/dashboard"
	"github.com/agencypulse/reporting-backend/internal/dashlinks"
	"github.com/agencypulse/reporting-backend/internal/overview"
	"github.com/agencypulse/reporting-backend/internal/visibility"
	pkgauth "github.com/agencypulse/reporting-backend/pkg/auth"
	"github.com/agencypulse/reporting-backend/pkg/config"
	"github.com/agencypulse/reporting-backend/pkg/enums"
	"github.com/agencypulse/reporting-backend/pkg/logger"
	"github.com/agencypulse/reporting-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, input auth.LoginInput, remoteIP string) (*auth.LoginResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Logout(ctx context.Context, operatorID uuid.UUID) error {
	return nil
}

type stubClientsService struct{}

func (stubClientsService) ListClients(ctx context.Context, params clients.ListParams) (*pagination.Page[clients.ClientItem], error) {
	page := pagination.NewPage([]clients.ClientItem{}, 0)
	return &page, nil
}

func (stubClientsService) GetClient(ctx context.Context, id uuid.UUID) (*clients.ClientItem, error) {
	return &clients.ClientItem{ID: id}, nil
}

func (stubClientsService) CreateClient(ctx context.Context, input clients.CreateClientInput) (*clients.ClientItem, error) {
	return &clients.ClientItem{ID: uuid.New(), Name: input.Name}, nil
}

func (stubClientsService) UpdateClient(ctx context.Context, id uuid.UUID, input clients.UpdateClientInput) (*clients.ClientItem, error) {
	return &clients.ClientItem{ID: id}, nil
}

func (stubClientsService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubClientsService) ListBrands(ctx context.Context, clientID uuid.UUID) ([]clients.BrandItem, error) {
	return []clients.BrandItem{}, nil
}

func (stubClientsService) CreateBrand(ctx context.Context, clientID uuid.UUID, input clients.CreateBrandInput) (*clients.BrandItem, error) {
	return &clients.BrandItem{ID: uuid.New(), Name: input.Name}, nil
}

type stubCampaignsService struct{}

func (stubCampaignsService) ListCampaigns(ctx context.Context, params campaigns.ListParams) (*pagination.Page[campaigns.CampaignItem], error) {
	page := pagination.NewPage([]campaigns.CampaignItem{}, 0)
	return &page, nil
}

func (stubCampaignsService) GetCampaign(ctx context.Context, id uuid.UUID) (*campaigns.CampaignItem, error) {
	return &campaigns.CampaignItem{ID: id}, nil
}

func (stubCampaignsService) CreateCampaign(ctx context.Context, input campaigns.CreateCampaignInput) (*campaigns.CampaignItem, error) {
	return &campaigns.CampaignItem{ID: uuid.New()}, nil
}

func (stubCampaignsService) ListRankings(ctx context.Context, params campaigns.RankingParams) (*pagination.Page[campaigns.RankingItem], error) {
	page := pagination.NewPage([]campaigns.RankingItem{}, 0)
	return &page, nil
}

func (stubCampaignsService) ListSummaries(ctx context.Context, params campaigns.SummaryParams) ([]campaigns.SummaryItem, error) {
	return []campaigns.SummaryItem{}, nil
}

type stubAuditLogsService struct{}

func (stubAuditLogsService) ListLogs(ctx context.Context, params auditlogs.ListParams) (*pagination.Page[auditlogs.LogItem], error) {
	page := pagination.NewPage([]auditlogs.LogItem{}, 0)
	return &page, nil
}

func (stubAuditLogsService) Record(ctx context.Context, event auditlogs.Event) error {
	return nil
}

type stubLinksService struct {
	public *dashlinks.PublicLink
	err    error
}

func (s *stubLinksService) ListLinks(ctx context.Context, clientID uuid.UUID) ([]dashlinks.LinkItem, error) {
	return []dashlinks.LinkItem{}, nil
}

func (s *stubLinksService) CreateLink(ctx context.Context, clientID uuid.UUID, input dashlinks.CreateInput) (*dashlinks.LinkItem, error) {
	return &dashlinks.LinkItem{ID: uuid.New(), ClientID: clientID}, nil
}

func (s *stubLinksService) UpdateLink(ctx context.Context, id uuid.UUID, input dashlinks.UpdateInput) (*dashlinks.LinkItem, error) {
	return &dashlinks.LinkItem{ID: id}, nil
}

func (s *stubLinksService) DeleteLink(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (s *stubLinksService) GetPublicLink(ctx context.Context, slug string) (*dashlinks.PublicLink, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.public, nil
}

type stubDashboardService struct {
	payload *dashboard.Payload
}

func (s *stubDashboardService) ComposeKPIs(ctx context.Context, mode string, req dashboard.Request) (*dashboard.Payload, error) {
	if s.payload != nil {
		return s.payload, nil
	}
	return &dashboard.Payload{
		SubjectID: req.SubjectID(),
		StartDate: req.Range.StartString(),
		EndDate:   req.Range.EndString(),
		KPIs:      []dashboard.KPIValue{},
	}, nil
}

func (s *stubDashboardService) ComposeCharts(ctx context.Context, req dashboard.Request) (*dashboard.ChartsPayload, error) {
	return &dashboard.ChartsPayload{
		SubjectID: req.SubjectID(),
		StartDate: req.Range.StartString(),
		EndDate:   req.Range.EndString(),
		Charts:    []dashboard.ChartSeries{},
	}, nil
}

type stubOverviewService struct{}

func (stubOverviewService) GenerateOverview(ctx context.Context, payload *dashboard.Payload) (*overview.Overview, error) {
	return &overview.Overview{ExecutiveSummary: "steady period"}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config, links *stubLinksService) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	if links == nil {
		links = &stubLinksService{}
	}
	return NewRouter(Deps{
		Config:           cfg,
		Logger:           logg,
		Pingers:          map[string]controllers.Pinger{"database": stubPinger{}},
		AuthService:      stubAuthService{},
		ClientsService:   stubClientsService{},
		CampaignsService: stubCampaignsService{},
		AuditLogsService: stubAuditLogsService{},
		LinksService:     links,
		DashboardService: &stubDashboardService{},
		OverviewService:  stubOverviewService{},
		Catalog:          visibility.DefaultCatalog(),
		AuditPublisher:   nil,
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.OperatorRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		OperatorID: uuid.New(),
		Role:       role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig(), nil)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live probe got %d", resp.Code)
	}
}

func TestProtectedRoutesRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestProtectedRoutesAcceptJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.OperatorRoleViewer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for client list got %d", resp.Code)
	}
}

func TestAuditLogsRequireAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil)

	nonAdmin := httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs", nil)
	nonAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.OperatorRoleAnalyst))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, nonAdmin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.OperatorRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestDashboardKPIsValidateSubject(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/kpis?start=2026-01-01&end=2026-01-31", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.OperatorRoleAnalyst))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without subject got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/kpis?client_id="+uuid.NewString()+"&start=2026-01-01&end=2026-01-31", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.OperatorRoleAnalyst))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid request got %d", resp.Code)
	}
}

func TestPublicDashboardNeedsNoAuth(t *testing.T) {
	clientID := uuid.New()
	links := &stubLinksService{
		public: &dashlinks.PublicLink{
			Slug:      "abc123",
			ClientID:  clientID,
			StartDate: "2026-01-01",
			EndDate:   "2026-01-31",
		},
	}
	router := newTestRouter(testConfig(), links)

	detail := httptest.NewRequest(http.MethodGet, "/api/public/dashboard-links/abc123", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, detail)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public slug got %d", resp.Code)
	}

	kpis := httptest.NewRequest(http.MethodGet, "/api/public/dashboard-links/abc123/kpis", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, kpis)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public kpis got %d", resp.Code)
	}

	charts := httptest.NewRequest(http.MethodGet, "/api/public/dashboard-links/abc123/charts", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, charts)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public charts got %d", resp.Code)
	}
}

func TestDashboardChartsValidateSubject(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/charts?start=2026-01-01&end=2026-01-31", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.OperatorRoleAnalyst))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without subject got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/charts?client_id="+uuid.NewString()+"&start=2026-01-01&end=2026-01-31", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.OperatorRoleAnalyst))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid request got %d", resp.Code)
	}
}

func TestCatalogListsSections(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/catalog", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.OperatorRoleViewer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for catalog got %d", resp.Code)
	}
}
