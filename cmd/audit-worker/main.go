package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	pubsubv2 "cloud.google.com/go/pubsub/v2"
	"github.com/joho/godotenv"

	"github.com/agencypulse/reporting-backend/internal/auditlogs"
	"github.com/agencypulse/reporting-backend/pkg/config"
	"github.com/agencypulse/reporting-backend/pkg/db"
	"github.com/agencypulse/reporting-backend/pkg/logger"
	"github.com/agencypulse/reporting-backend/pkg/migrate"
	"github.com/agencypulse/reporting-backend/pkg/pubsub"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "audit-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "audit-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	err = migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient)
	requireResource(ctx, logg, "migrations", err)

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()

	auditService, err := auditlogs.NewService(auditlogs.NewRepository(dbClient.DB()))
	requireResource(ctx, logg, "audit service", err)

	consumer, err := auditlogs.NewConsumer(auditService, logg)
	requireResource(ctx, logg, "audit consumer", err)

	subscription := pubsubClient.AuditSubscription()
	if subscription == nil {
		logg.Error(ctx, "audit subscription not configured", errors.New("missing subscription"))
		os.Exit(1)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{"env": cfg.App.Env})
	logg.Info(runCtx, "audit worker ready")

	err = subscription.Receive(runCtx, func(ctx context.Context, msg *pubsubv2.Message) {
		if err := consumer.Process(ctx, msg.Data); err != nil {
			msg.Nack()
			return
		}
		msg.Ack()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "audit worker stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
