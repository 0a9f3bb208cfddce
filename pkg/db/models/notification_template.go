package models

import (
	"time"

	dbtypes "github.com/alanwtom/travora-backend/pkg/db/types"
	"github.com/alanwtom/travora-backend/pkg/enums"
)

// NotificationTemplate is one catalog entry keyed by trigger event. Rows are
// seeded by migration and treated as immutable at runtime.
type NotificationTemplate struct {
	TriggerEvent    string                      `gorm:"column:trigger_event;type:text;primaryKey"`
	Category        enums.NotificationCategory  `gorm:"column:category;type:notification_category;not null"`
	Priority        enums.NotificationPriority  `gorm:"column:priority;type:notification_priority;not null"`
	DefaultChannels dbtypes.ChannelArray        `gorm:"column:default_channels;type:jsonb;not null"`
	TitleTemplate   string                      `gorm:"column:title_template;type:text;not null"`
	BodyTemplate    string                      `gorm:"column:body_template;type:text;not null"`
	CreatedAt       time.Time                   `gorm:"column:created_at;type:timestamptz;default:now()"`
}
