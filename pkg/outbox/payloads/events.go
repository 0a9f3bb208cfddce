package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/alanwtom/travora-backend/pkg/enums"
)

// NotificationCreatedEvent is emitted in the same transaction as the
// notification insert. The delivery worker consumes it to enqueue the row.
type NotificationCreatedEvent struct {
	NotificationID uuid.UUID                   `json:"notificationId"`
	UserID         uuid.UUID                   `json:"userId"`
	Category       enums.NotificationCategory  `json:"category"`
	Priority       enums.NotificationPriority  `json:"priority"`
	Channels       []enums.NotificationChannel `json:"channels"`
	TriggerEvent   string                      `json:"triggerEvent,omitempty"`
	CreatedAt      time.Time                   `json:"createdAt"`
}

// NotificationUpdatedEvent reports a delivery lifecycle change. Consumers
// forward it to listeners; it must never cause a re-enqueue.
type NotificationUpdatedEvent struct {
	NotificationID uuid.UUID                `json:"notificationId"`
	UserID         uuid.UUID                `json:"userId"`
	Status         enums.NotificationStatus `json:"status"`
	PushSent       bool                     `json:"pushSent"`
	EmailSent      bool                     `json:"emailSent"`
	InAppShown     bool                     `json:"inAppShown"`
	AttemptCount   int                      `json:"attemptCount"`
	UpdatedAt      time.Time                `json:"updatedAt"`
}

// DeviceRegisteredEvent records a new push token for a user.
type DeviceRegisteredEvent struct {
	DeviceID uuid.UUID `json:"deviceId"`
	UserID   uuid.UUID `json:"userId"`
	Platform string    `json:"platform"`
}

// DeviceRevokedEvent records a push token being retired.
type DeviceRevokedEvent struct {
	DeviceID  uuid.UUID `json:"deviceId"`
	UserID    uuid.UUID `json:"userId"`
	RevokedAt time.Time `json:"revokedAt"`
}

// PreferencesChangedEvent mirrors a per-category preference write.
type PreferencesChangedEvent struct {
	UserID       uuid.UUID                  `json:"userId"`
	Category     enums.NotificationCategory `json:"category"`
	PushEnabled  bool                       `json:"pushEnabled"`
	EmailEnabled bool                       `json:"emailEnabled"`
	InAppEnabled bool                       `json:"inAppEnabled"`
}
