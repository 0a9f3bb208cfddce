package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/alanwtom/travora-backend/pkg/db/models"
	"github.com/alanwtom/travora-backend/pkg/enums"
	"github.com/alanwtom/travora-backend/pkg/logger"
	"github.com/alanwtom/travora-backend/pkg/outbox"
	"github.com/alanwtom/travora-backend/pkg/outbox/idempotency"
	"github.com/alanwtom/travora-backend/pkg/outbox/payloads"
)

const deliveryConsumer = "delivery-worker"

type notificationLoader interface {
	GetByID(ctx context.Context, notificationID uuid.UUID) (*models.Notification, error)
	ListPending(ctx context.Context, limit int) ([]models.Notification, error)
}

type enqueuer interface {
	Enqueue(notification *models.Notification)
}

// UpdateListener receives terminal status events, typically to fan them out
// to connected clients.
type UpdateListener func(ctx context.Context, event payloads.NotificationUpdatedEvent)

// Bridge connects the event stream to the in-memory queue. Created events
// become queue entries; updated events are only forwarded to the listener.
// Because the queue holds no durable state, the bridge re-reads still-pending
// rows on startup and after every reconnect.
type Bridge struct {
	subscription *pubsub.Subscriber
	repo         notificationLoader
	queue        enqueuer
	idempotency  *idempotency.Manager
	listener     UpdateListener
	recoverLimit int
	logg         *logger.Logger
}

// NewBridge builds the delivery bridge.
func NewBridge(subscription *pubsub.Subscriber, repo notificationLoader, queue enqueuer, manager *idempotency.Manager, listener UpdateListener, recoverLimit int, logg *logger.Logger) (*Bridge, error) {
	if subscription == nil {
		return nil, fmt.Errorf("delivery subscription required")
	}
	if repo == nil {
		return nil, fmt.Errorf("notification loader required")
	}
	if queue == nil {
		return nil, fmt.Errorf("queue required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if recoverLimit <= 0 {
		recoverLimit = 500
	}
	return &Bridge{
		subscription: subscription,
		repo:         repo,
		queue:        queue,
		idempotency:  manager,
		listener:     listener,
		recoverLimit: recoverLimit,
		logg:         logg,
	}, nil
}

// Run consumes the subscription until the context is canceled, reconnecting
// with exponential backoff when the stream drops. Each (re)connect starts
// with a recovery pass so inserts missed while disconnected are not lost.
func (b *Bridge) Run(ctx context.Context) error {
	backoff := retry.WithCappedDuration(30*time.Second, retry.NewExponential(time.Second))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := b.Recover(ctx); err != nil {
			b.logg.Error(ctx, "recovering pending notifications", err)
			return retry.RetryableError(err)
		}
		err := b.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
			if b.process(ctx, msg) {
				msg.Ack()
				return
			}
			msg.Nack()
		})
		if err != nil && ctx.Err() == nil {
			b.logg.Error(ctx, "delivery subscription dropped", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

// Recover re-enqueues still-pending rows. Rows that were sent but never
// reached a terminal status stay pending in the queue's view, so re-enqueue
// is safe; completed channels are skipped by their flags.
func (b *Bridge) Recover(ctx context.Context) error {
	rows, err := b.repo.ListPending(ctx, b.recoverLimit)
	if err != nil {
		return err
	}
	for i := range rows {
		b.queue.Enqueue(&rows[i])
	}
	if len(rows) > 0 {
		b.logg.Info(b.logg.WithField(ctx, "count", len(rows)), "recovered pending notifications")
	}
	return nil
}

func (b *Bridge) process(ctx context.Context, msg *pubsub.Message) bool {
	eventType := msg.Attributes["event_type"]
	logCtx := b.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	switch enums.OutboxEventType(eventType) {
	case enums.EventNotificationCreated, enums.EventNotificationUpdated:
	default:
		return true
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		b.logg.Error(logCtx, "failed to decode envelope", err)
		return true
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		b.logg.Error(logCtx, "invalid event id", err)
		return true
	}

	already, err := b.idempotency.CheckAndMarkProcessed(ctx, deliveryConsumer, eventID)
	if err != nil {
		b.logg.Error(logCtx, "idempotency check failed", err)
		return false
	}
	if already {
		b.logg.Info(logCtx, "event already processed")
		return true
	}

	if err := b.handle(ctx, enums.OutboxEventType(eventType), envelope.Data, logCtx); err != nil {
		b.logg.Error(logCtx, "event handling failed", err)
		_ = b.idempotency.Delete(ctx, deliveryConsumer, eventID)
		return false
	}
	return true
}

func (b *Bridge) handle(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.EventNotificationCreated:
		var payload payloads.NotificationCreatedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse created payload: %w", err)
		}
		notification, err := b.repo.GetByID(ctx, payload.NotificationID)
		if err != nil {
			return fmt.Errorf("load notification: %w", err)
		}
		if notification == nil {
			b.logg.Warn(logCtx, "created event for missing notification")
			return nil
		}
		b.queue.Enqueue(notification)
		b.logg.Info(b.logg.WithNotificationID(logCtx, notification.ID.String()), "notification enqueued")
		return nil

	case enums.EventNotificationUpdated:
		var payload payloads.NotificationUpdatedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse updated payload: %w", err)
		}
		if b.listener != nil {
			b.listener(ctx, payload)
		}
		return nil
	}
	return nil
}
