package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the per-user account row, including the notification settings
// singleton. The legacy global push/email toggles predate the per-category
// preference rows and are still honored.
type Profile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email       string    `gorm:"type:text;not null;uniqueIndex"`
	Username    string    `gorm:"type:text;not null;uniqueIndex"`
	DisplayName *string   `gorm:"column:display_name"`
	AvatarURL   *string   `gorm:"column:avatar_url"`

	NotificationMuted             bool       `gorm:"column:notification_muted;not null;default:false"`
	NotificationMuteUntil         *time.Time `gorm:"column:notification_mute_until;type:timestamptz"`
	MarketingNotificationsEnabled bool       `gorm:"column:marketing_notifications_enabled;not null;default:false"`
	PushNotificationsEnabled      bool       `gorm:"column:push_notifications_enabled;not null;default:true"`
	EmailNotificationsEnabled     bool       `gorm:"column:email_notifications_enabled;not null;default:true"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectiveMuted resolves the mute flag against its optional expiry. A mute
// whose expiry has passed no longer counts, even if the stored flag is true.
func (p Profile) EffectiveMuted(now time.Time) bool {
	if !p.NotificationMuted {
		return false
	}
	if p.NotificationMuteUntil != nil && !now.Before(*p.NotificationMuteUntil) {
		return false
	}
	return true
}
