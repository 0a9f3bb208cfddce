package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/alanwtom/travora-backend/api/routes"
	"github.com/alanwtom/travora-backend/internal/analytics"
	"github.com/alanwtom/travora-backend/internal/devices"
	"github.com/alanwtom/travora-backend/internal/notifications"
	"github.com/alanwtom/travora-backend/internal/preferences"
	"github.com/alanwtom/travora-backend/internal/profiles"
	"github.com/alanwtom/travora-backend/pkg/auth/session"
	"github.com/alanwtom/travora-backend/pkg/bigquery"
	"github.com/alanwtom/travora-backend/pkg/config"
	"github.com/alanwtom/travora-backend/pkg/db"
	"github.com/alanwtom/travora-backend/pkg/logger"
	"github.com/alanwtom/travora-backend/pkg/migrate"
	"github.com/alanwtom/travora-backend/pkg/outbox"
	"github.com/alanwtom/travora-backend/pkg/redis"
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

	sessions, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	notificationsSvc, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	devicesSvc, err := devices.NewService(dbClient, devices.NewRepository(dbClient.DB()), outboxSvc, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create devices service", err)
		os.Exit(1)
	}

	preferencesSvc, err := preferences.NewService(dbClient, preferences.NewRepository(dbClient.DB()), outboxSvc, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create preferences service", err)
		os.Exit(1)
	}

	profilesSvc, err := profiles.NewService(profiles.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create profiles service", err)
		os.Exit(1)
	}

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

	analyticsSvc, err := analytics.NewService(bqClient, cfg.GCP.ProjectID, cfg.BigQuery.Dataset, cfg.BigQuery.DeliveryFactsTable)
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
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
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			redisClient,
			bqClient,
			sessions,
			notificationsSvc,
			devicesSvc,
			preferencesSvc,
			profilesSvc,
			analyticsSvc,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
