package router

import (
	"context"
	"fmt"

	"github.com/alanwtom/travora-backend/internal/analytics/types"
	analyticswriter "github.com/alanwtom/travora-backend/internal/analytics/writer"
	"github.com/alanwtom/travora-backend/pkg/logger"
	outboxpayloads "github.com/alanwtom/travora-backend/pkg/outbox/payloads"
)

type notificationCreatedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newNotificationCreatedHandler(writer Writer, logg *logger.Logger) Handler {
	return &notificationCreatedHandler{writer: writer, logg: logg}
}

func (h *notificationCreatedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*outboxpayloads.NotificationCreatedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for notification_created")
	}

	fields := map[string]any{
		"event_type":      envelope.EventType,
		"notification_id": event.NotificationID,
		"category":        event.Category,
		"priority":        event.Priority,
	}
	logCtx := h.logg.WithFields(ctx, fields)

	row, err := buildNotificationCreatedRow(envelope, event)
	if err != nil {
		h.logg.Error(logCtx, "failed to build delivery fact row", err)
		return err
	}

	if err := h.writer.InsertDeliveryFact(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert delivery fact row", err)
		return err
	}

	h.logg.Info(logCtx, "notification_created handler inserted delivery fact row")
	return nil
}

func buildNotificationCreatedRow(envelope types.Envelope, event *outboxpayloads.NotificationCreatedEvent) (types.DeliveryFactRow, error) {
	payloadJSON, err := analyticswriter.EncodeJSON(event)
	if err != nil {
		return types.DeliveryFactRow{}, fmt.Errorf("encode payload json: %w", err)
	}

	channels := make([]string, 0, len(event.Channels))
	for _, ch := range event.Channels {
		channels = append(channels, string(ch))
	}

	return types.DeliveryFactRow{
		EventID:        envelope.EventID,
		EventType:      string(envelope.EventType),
		OccurredAt:     envelope.OccurredAt,
		NotificationID: event.NotificationID.String(),
		UserID:         event.UserID.String(),
		Category:       stringPtr(string(event.Category)),
		Priority:       stringPtr(string(event.Priority)),
		TriggerEvent:   stringPtr(event.TriggerEvent),
		Channels:       channels,
		AttemptCount:   int64Ptr(0),
		Payload:        payloadJSON,
	}, nil
}
