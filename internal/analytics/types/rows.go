package types

import (
	"time"

	cbigquery "cloud.google.com/go/bigquery"
)

// DeliveryFactRow mirrors the notification_delivery_facts BigQuery schema.
// Rows are append-only; a notification contributes one row per lifecycle
// event, so downstream queries pick the latest row per notification_id.
type DeliveryFactRow struct {
	EventID        string             `bigquery:"event_id"`
	EventType      string             `bigquery:"event_type"`
	OccurredAt     time.Time          `bigquery:"occurred_at"`
	NotificationID string             `bigquery:"notification_id"`
	UserID         string             `bigquery:"user_id"`
	Category       *string            `bigquery:"category"`
	Priority       *string            `bigquery:"priority"`
	Status         *string            `bigquery:"status"`
	TriggerEvent   *string            `bigquery:"trigger_event"`
	Channels       []string           `bigquery:"channels"`
	PushSent       *bool              `bigquery:"push_sent"`
	EmailSent      *bool              `bigquery:"email_sent"`
	InAppShown     *bool              `bigquery:"in_app_shown"`
	AttemptCount   *int64             `bigquery:"attempt_count"`
	Payload        cbigquery.NullJSON `bigquery:"payload"`
}
