package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/agencypulse/reporting-backend/api/controllers"
	"github.com/agencypulse/reporting-backend/api/routes"
	"github.com/agencypulse/reporting-backend/internal/auditlogs"
	"github.com/agencypulse/reporting-backend/internal/auth"
	"github.com/agencypulse/reporting-backend/internal/campaigns"
	"github.com/agencypulse/reporting-backend/internal/clients"
	"github.com/agencypulse/reporting-backend/internal/dashboard"
	"github.com/agencypulse/reporting-backend/internal/dashlinks"
	"github.com/agencypulse/reporting-backend/internal/overview"
	"github.com/agencypulse/reporting-backend/internal/visibility"
	"github.com/agencypulse/reporting-backend/internal/webanalytics"
	"github.com/agencypulse/reporting-backend/pkg/bigquery"
	"github.com/agencypulse/reporting-backend/pkg/config"
	"github.com/agencypulse/reporting-backend/pkg/db"
	"github.com/agencypulse/reporting-backend/pkg/logger"
	"github.com/agencypulse/reporting-backend/pkg/metrics"
	"github.com/agencypulse/reporting-backend/pkg/migrate"
	"github.com/agencypulse/reporting-backend/pkg/pubsub"
	"github.com/agencypulse/reporting-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	bqClient, err := bigquery.NewClient(context.Background(), cfg.GCP, cfg.BigQuery, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap bigquery", err)
		os.Exit(1)
	}
	defer func() {
		if err := bqClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing bigquery", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	auditPublisher, err := auditlogs.NewPublisher(pubsubClient.AuditPublisher(), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit publisher", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.NewRepository(dbClient.DB()), redisClient, cfg.JWT, cfg.AuthRateLimit, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	clientsService, err := clients.NewService(clients.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create clients service", err)
		os.Exit(1)
	}

	campaignsService, err := campaigns.NewService(campaigns.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create campaigns service", err)
		os.Exit(1)
	}

	auditLogsService, err := auditlogs.NewService(auditlogs.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create audit logs service", err)
		os.Exit(1)
	}

	linksService, err := dashlinks.NewService(dashlinks.NewRepository(dbClient.DB()), clients.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard links service", err)
		os.Exit(1)
	}

	webService, err := webanalytics.NewService(bqClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create web analytics service", err)
		os.Exit(1)
	}

	dashboardMetrics := metrics.NewDashboardMetrics(prometheus.DefaultRegisterer)
	dashboardService, err := dashboard.NewService(
		webService,
		dashboard.NewRepository(dbClient.DB()),
		redisClient,
		cfg.Dashboard,
		dashboardMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	overviewService, err := overview.NewService(cfg.OpenAI, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create overview service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config: cfg,
			Logger: logg,
			Pingers: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
				"bigquery": bqClient,
				"pubsub":   pubsubClient,
			},
			AuthService:      authService,
			ClientsService:   clientsService,
			CampaignsService: campaignsService,
			AuditLogsService: auditLogsService,
			LinksService:     linksService,
			DashboardService: dashboardService,
			OverviewService:  overviewService,
			Catalog:          visibility.DefaultCatalog(),
			AuditPublisher:   auditPublisher,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
