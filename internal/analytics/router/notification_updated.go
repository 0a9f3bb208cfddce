package router

import (
	"context"
	"fmt"

	"github.com/alanwtom/travora-backend/internal/analytics/types"
	analyticswriter "github.com/alanwtom/travora-backend/internal/analytics/writer"
	"github.com/alanwtom/travora-backend/pkg/logger"
	outboxpayloads "github.com/alanwtom/travora-backend/pkg/outbox/payloads"
)

type notificationUpdatedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newNotificationUpdatedHandler(writer Writer, logg *logger.Logger) Handler {
	return &notificationUpdatedHandler{writer: writer, logg: logg}
}

func (h *notificationUpdatedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*outboxpayloads.NotificationUpdatedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for notification_updated")
	}

	fields := map[string]any{
		"event_type":      envelope.EventType,
		"notification_id": event.NotificationID,
		"status":          event.Status,
		"attempt_count":   event.AttemptCount,
	}
	logCtx := h.logg.WithFields(ctx, fields)

	row, err := buildNotificationUpdatedRow(envelope, event)
	if err != nil {
		h.logg.Error(logCtx, "failed to build delivery fact row", err)
		return err
	}

	if err := h.writer.InsertDeliveryFact(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert delivery fact row", err)
		return err
	}

	h.logg.Info(logCtx, "notification_updated handler inserted delivery fact row")
	return nil
}

func buildNotificationUpdatedRow(envelope types.Envelope, event *outboxpayloads.NotificationUpdatedEvent) (types.DeliveryFactRow, error) {
	payloadJSON, err := analyticswriter.EncodeJSON(event)
	if err != nil {
		return types.DeliveryFactRow{}, fmt.Errorf("encode payload json: %w", err)
	}

	return types.DeliveryFactRow{
		EventID:        envelope.EventID,
		EventType:      string(envelope.EventType),
		OccurredAt:     envelope.OccurredAt,
		NotificationID: event.NotificationID.String(),
		UserID:         event.UserID.String(),
		Status:         stringPtr(string(event.Status)),
		PushSent:       boolPtr(event.PushSent),
		EmailSent:      boolPtr(event.EmailSent),
		InAppShown:     boolPtr(event.InAppShown),
		AttemptCount:   int64Ptr(int64(event.AttemptCount)),
		Payload:        payloadJSON,
	}, nil
}
