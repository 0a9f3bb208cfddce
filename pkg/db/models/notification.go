package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/alanwtom/travora-backend/pkg/db/types"
	"github.com/alanwtom/travora-backend/pkg/enums"
)

// Notification is the delivery unit. The Factory inserts it once; the
// delivery queue and user read/delete actions mutate it in place.
type Notification struct {
	ID       uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID   uuid.UUID                  `gorm:"column:user_id;type:uuid;not null;index:idx_notifications_user_created"`
	Category enums.NotificationCategory `gorm:"column:category;type:notification_category;not null"`
	Priority enums.NotificationPriority `gorm:"column:priority;type:notification_priority;not null"`
	Status   enums.NotificationStatus   `gorm:"column:status;type:notification_status;not null;default:pending"`

	Title string          `gorm:"column:title;type:text;not null"`
	Body  string          `gorm:"column:body;type:text;not null"`
	Data  json.RawMessage `gorm:"column:data;type:jsonb"`

	// Channels is the resolved subset actually attempted, fixed at creation.
	Channels dbtypes.ChannelArray `gorm:"column:channels;type:jsonb;not null"`

	PushSent   bool `gorm:"column:push_sent;not null;default:false"`
	EmailSent  bool `gorm:"column:email_sent;not null;default:false"`
	InAppShown bool `gorm:"column:in_app_shown;not null;default:false"`

	ReadAt      *time.Time `gorm:"column:read_at;type:timestamptz"`
	SentAt      *time.Time `gorm:"column:sent_at;type:timestamptz"`
	DeliveredAt *time.Time `gorm:"column:delivered_at;type:timestamptz"`
	CreatedAt   time.Time  `gorm:"column:created_at;type:timestamptz;default:now();index:idx_notifications_user_created,sort:desc"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;type:timestamptz;default:now()"`
}

// ChannelDone reports whether the completion flag for the given channel is set.
func (n *Notification) ChannelDone(ch enums.NotificationChannel) bool {
	switch ch {
	case enums.ChannelPush:
		return n.PushSent
	case enums.ChannelEmail:
		return n.EmailSent
	case enums.ChannelInApp:
		return n.InAppShown
	}
	return false
}

// MarkChannelDone sets the completion flag for the given channel.
func (n *Notification) MarkChannelDone(ch enums.NotificationChannel) {
	switch ch {
	case enums.ChannelPush:
		n.PushSent = true
	case enums.ChannelEmail:
		n.EmailSent = true
	case enums.ChannelInApp:
		n.InAppShown = true
	}
}
