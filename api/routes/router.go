package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agencypulse/reporting-backend/api/controllers"
	"github.com/agencypulse/reporting-backend/api/middleware"
	"github.com/agencypulse/reporting-backend/internal/auditlogs"
	"github.com/agencypulse/reporting-backend/internal/auth"
	"github.com/agencypulse/reporting-backend/internal/campaigns"
	"github.com/agencypulse/reporting-backend/internal/clients"
	"github.com/agencypulse/reporting-backend/internal/dashboard"
	"github.com/agencypulse/reporting-backend/internal/dashlinks"
	"github.com/agencypulse/reporting-backend/internal/overview"
	"github.com/agencypulse/reporting-backend/internal/visibility"
	"github.com/agencypulse/reporting-backend/pkg/config"
	"github.com/agencypulse/reporting-backend/pkg/enums"
	"github.com/agencypulse/reporting-backend/pkg/logger"
)

// Deps carries everything the router wires into handlers. All services are
// required; Pingers may be nil and are then skipped by the readiness probe.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	Pingers map[string]controllers.Pinger

	AuthService      auth.Service
	ClientsService   clients.Service
	CampaignsService campaigns.Service
	AuditLogsService auditlogs.Service
	LinksService     dashlinks.Service
	DashboardService dashboard.Service
	OverviewService  overview.Service

	Catalog        *visibility.Catalog
	AuditPublisher *auditlogs.Publisher
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Pingers))
	})

	r.Handle("/metrics", promhttp.Handler())

	// Anonymous slug views: wide-open CORS so reports embed anywhere.
	r.Route("/api/public", func(r chi.Router) {
		r.Use(middleware.PublicCORS())
		r.Get("/ping", controllers.PublicPing())
		r.Route("/dashboard-links/{slug}", func(r chi.Router) {
			r.Get("/", controllers.PublicLinkDetail(d.LinksService, d.AuditPublisher, logg))
			r.Get("/kpis", controllers.PublicDashboardKPIs(d.LinksService, d.DashboardService, d.Catalog, logg))
			r.Get("/charts", controllers.PublicDashboardCharts(d.LinksService, d.DashboardService, d.Catalog, logg))
		})
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(middleware.ConsoleCORS(cfg.App.CORSOrigins))
		r.Post("/login", controllers.AuthLogin(d.AuthService, d.AuditPublisher, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, logg)).Post("/logout", controllers.AuthLogout(d.AuthService, d.AuditPublisher, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ConsoleCORS(cfg.App.CORSOrigins))
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", controllers.ClientList(d.ClientsService, logg))
			r.Post("/", controllers.ClientCreate(d.ClientsService, d.AuditPublisher, logg))
			r.Route("/{clientId}", func(r chi.Router) {
				r.Get("/", controllers.ClientDetail(d.ClientsService, logg))
				r.Put("/", controllers.ClientUpdate(d.ClientsService, d.AuditPublisher, logg))
				r.Delete("/", controllers.ClientDelete(d.ClientsService, d.AuditPublisher, logg))
				r.Get("/brands", controllers.BrandList(d.ClientsService, logg))
				r.Post("/brands", controllers.BrandCreate(d.ClientsService, logg))
				r.Get("/dashboard-links", controllers.LinkList(d.LinksService, logg))
				r.Post("/dashboard-links", controllers.LinkCreate(d.LinksService, d.AuditPublisher, logg))
			})
		})

		r.Route("/dashboard-links/{linkId}", func(r chi.Router) {
			r.Put("/", controllers.LinkUpdate(d.LinksService, d.AuditPublisher, logg))
			r.Delete("/", controllers.LinkDelete(d.LinksService, d.AuditPublisher, logg))
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", controllers.CampaignList(d.CampaignsService, logg))
			r.Post("/", controllers.CampaignCreate(d.CampaignsService, logg))
			r.Route("/{campaignId}", func(r chi.Router) {
				r.Get("/", controllers.CampaignDetail(d.CampaignsService, logg))
				r.Get("/rankings", controllers.RankingList(d.CampaignsService, logg))
				r.Get("/ranking-summaries", controllers.SummaryList(d.CampaignsService, logg))
			})
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/kpis", controllers.DashboardKPIs(d.DashboardService, logg))
			r.Get("/charts", controllers.DashboardCharts(d.DashboardService, logg))
			r.Get("/catalog", controllers.DashboardCatalog(d.Catalog))
		})

		r.Post("/overview", controllers.OverviewGenerate(d.DashboardService, d.OverviewService, d.AuditPublisher, logg))

		r.With(middleware.RequireRole(string(enums.OperatorRoleAdmin), logg)).
			Get("/audit-logs", controllers.AuditLogList(d.AuditLogsService, logg))
	})

	return r
}
