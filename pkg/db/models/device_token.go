package models

import (
	"time"

	"github.com/google/uuid"
)

// DeviceToken maps a user to an Expo push token. A user can hold several
// active tokens, one per installed device.
type DeviceToken struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index:idx_device_tokens_user"`
	Token     string     `gorm:"type:text;not null;uniqueIndex"`
	Platform  string     `gorm:"type:text;not null"`
	RevokedAt *time.Time `gorm:"column:revoked_at;type:timestamptz"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
