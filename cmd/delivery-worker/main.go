package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/alanwtom/travora-backend/internal/delivery"
	"github.com/alanwtom/travora-backend/internal/devices"
	"github.com/alanwtom/travora-backend/internal/notifications"
	"github.com/alanwtom/travora-backend/pkg/config"
	"github.com/alanwtom/travora-backend/pkg/db"
	"github.com/alanwtom/travora-backend/pkg/functions"
	"github.com/alanwtom/travora-backend/pkg/logger"
	"github.com/alanwtom/travora-backend/pkg/metrics"
	"github.com/alanwtom/travora-backend/pkg/migrate"
	"github.com/alanwtom/travora-backend/pkg/outbox"
	"github.com/alanwtom/travora-backend/pkg/outbox/idempotency"
	"github.com/alanwtom/travora-backend/pkg/pubsub"
	"github.com/alanwtom/travora-backend/pkg/push"
	"github.com/alanwtom/travora-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "delivery-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "delivery-worker"

	logg = logger.New(logger.Options{
		ServiceName: "delivery-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	requireResource(ctx, logg, "dev migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "error closing pubsub client", err)
		}
	}()

	subscription := pubsubClient.DeliverySubscription()
	if subscription == nil {
		requireResource(ctx, logg, "delivery subscription", errors.New("subscription not configured"))
	}

	manager, err := idempotency.NewManager(redisClient, cfg.Eventing.OutboxIdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	notificationsRepo := notifications.NewRepository(dbClient.DB())
	devicesRepo := devices.NewRepository(dbClient.DB())
	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	pushClient, err := push.NewClient(cfg.Push, logg)
	requireResource(ctx, logg, "push client", err)

	pushSender, err := delivery.NewPushSender(devicesRepo, pushClient, logg)
	requireResource(ctx, logg, "push sender", err)

	functionsClient, err := functions.NewClient(cfg.Functions, logg)
	requireResource(ctx, logg, "functions client", err)

	emailSender, err := delivery.NewEmailSender(functionsClient)
	requireResource(ctx, logg, "email sender", err)

	senders := []delivery.Sender{pushSender, emailSender, delivery.NewInAppSender()}

	deliveryMetrics := metrics.NewDeliveryMetrics(prometheus.DefaultRegisterer)
	queue, err := delivery.NewQueue(
		cfg.Delivery,
		notificationsRepo,
		func(tx *gorm.DB) delivery.QueueRepository { return notificationsRepo.WithTx(tx) },
		dbClient,
		outboxSvc,
		senders,
		deliveryMetrics,
		logg,
	)
	requireResource(ctx, logg, "delivery queue", err)

	bridge, err := delivery.NewBridge(subscription, notificationsRepo, queue, manager, nil, cfg.Delivery.RecoverLimit, logg)
	requireResource(ctx, logg, "delivery bridge", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(runCtx, "delivery worker ready")

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error { return queue.Run(groupCtx) })
	group.Go(func() error { return bridge.Run(groupCtx) })

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "delivery worker failed", err)
		os.Exit(1)
	}

	logg.Info(runCtx, "delivery worker shutting down gracefully")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
