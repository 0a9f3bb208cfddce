package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/alanwtom/travora-backend/pkg/enums"
)

// NotificationPreference holds the per (user, category) channel toggles.
// Rows are created lazily with every channel enabled on first write; absence
// of a row means all channels enabled.
type NotificationPreference struct {
	ID           uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID                  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_notification_prefs_user_category"`
	Category     enums.NotificationCategory `gorm:"column:category;type:notification_category;not null;uniqueIndex:uq_notification_prefs_user_category"`
	PushEnabled  bool                       `gorm:"column:push_enabled;not null;default:true"`
	EmailEnabled bool                       `gorm:"column:email_enabled;not null;default:true"`
	InAppEnabled bool                       `gorm:"column:in_app_enabled;not null;default:true"`
	CreatedAt    time.Time                  `gorm:"column:created_at;type:timestamptz;default:now()"`
	UpdatedAt    time.Time                  `gorm:"column:updated_at;type:timestamptz;default:now()"`
}

// ChannelEnabled reports whether the given channel is enabled on this row.
func (p NotificationPreference) ChannelEnabled(ch enums.NotificationChannel) bool {
	switch ch {
	case enums.ChannelPush:
		return p.PushEnabled
	case enums.ChannelEmail:
		return p.EmailEnabled
	case enums.ChannelInApp:
		return p.InAppEnabled
	}
	return false
}
