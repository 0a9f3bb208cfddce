package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/alanwtom/travora-backend/pkg/enums"
)

// DeliveryHistory is the append-only audit log, one row per
// (notification, channel, attempt). The queue only writes it; history and
// debug views read it.
type DeliveryHistory struct {
	ID             uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	NotificationID uuid.UUID                 `gorm:"column:notification_id;type:uuid;not null;index:idx_delivery_history_notification"`
	Channel        enums.NotificationChannel `gorm:"column:channel;type:notification_channel;not null"`
	Attempt        int                       `gorm:"column:attempt;not null"`
	Status         enums.NotificationStatus  `gorm:"column:status;type:notification_status;not null"`
	ErrorMessage   *string                   `gorm:"column:error_message;type:text"`
	CreatedAt      time.Time                 `gorm:"column:created_at;type:timestamptz;default:now()"`
}

func (DeliveryHistory) TableName() string { return "notification_delivery_history" }
