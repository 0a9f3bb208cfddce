package enums

import "fmt"

// NotificationCategory maps to the notification_category enum in Postgres.
type NotificationCategory string

const (
	CategoryTripUpdates NotificationCategory = "trip_updates"
	CategoryPriceAlerts NotificationCategory = "price_alerts"
	CategoryPromotions  NotificationCategory = "promotions"
	CategorySocial      NotificationCategory = "social"
	CategorySystem      NotificationCategory = "system"
	CategoryBooking     NotificationCategory = "booking"
	CategoryReminder    NotificationCategory = "reminder"
)

var validNotificationCategories = []NotificationCategory{
	CategoryTripUpdates,
	CategoryPriceAlerts,
	CategoryPromotions,
	CategorySocial,
	CategorySystem,
	CategoryBooking,
	CategoryReminder,
}

// NotificationCategories returns the canonical category list in enum order.
func NotificationCategories() []NotificationCategory {
	out := make([]NotificationCategory, len(validNotificationCategories))
	copy(out, validNotificationCategories)
	return out
}

// IsValid checks whether the given category matches the canonical enum.
func (c NotificationCategory) IsValid() bool {
	for _, candidate := range validNotificationCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsEssential reports whether the category carries operationally critical
// information that per-category preferences cannot silence entirely.
func (c NotificationCategory) IsEssential() bool {
	switch c {
	case CategoryTripUpdates, CategorySystem, CategoryBooking:
		return true
	}
	return false
}

// ParseNotificationCategory converts raw strings into NotificationCategory.
func ParseNotificationCategory(value string) (NotificationCategory, error) {
	for _, candidate := range validNotificationCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification category %q", value)
}

// NotificationChannel maps to the notification_channel enum in Postgres.
type NotificationChannel string

const (
	ChannelPush  NotificationChannel = "push"
	ChannelEmail NotificationChannel = "email"
	ChannelInApp NotificationChannel = "in_app"
)

var validNotificationChannels = []NotificationChannel{
	ChannelPush,
	ChannelEmail,
	ChannelInApp,
}

// NotificationChannels returns the canonical channel list.
func NotificationChannels() []NotificationChannel {
	out := make([]NotificationChannel, len(validNotificationChannels))
	copy(out, validNotificationChannels)
	return out
}

// IsValid checks whether the given channel matches the canonical enum.
func (c NotificationChannel) IsValid() bool {
	for _, candidate := range validNotificationChannels {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseNotificationChannel converts raw strings into NotificationChannel.
func ParseNotificationChannel(value string) (NotificationChannel, error) {
	for _, candidate := range validNotificationChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification channel %q", value)
}

// NotificationPriority maps to the notification_priority enum in Postgres.
type NotificationPriority string

const (
	PriorityHigh   NotificationPriority = "high"
	PriorityMedium NotificationPriority = "medium"
	PriorityLow    NotificationPriority = "low"
)

var validNotificationPriorities = []NotificationPriority{
	PriorityHigh,
	PriorityMedium,
	PriorityLow,
}

// IsValid checks whether the given priority matches the canonical enum.
func (p NotificationPriority) IsValid() bool {
	for _, candidate := range validNotificationPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseNotificationPriority converts raw strings into NotificationPriority.
func ParseNotificationPriority(value string) (NotificationPriority, error) {
	for _, candidate := range validNotificationPriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification priority %q", value)
}

// NotificationStatus tracks the delivery lifecycle of a notification row.
// The read flag is orthogonal to this and lives in read_at.
type NotificationStatus string

const (
	StatusPending   NotificationStatus = "pending"
	StatusSent      NotificationStatus = "sent"
	StatusDelivered NotificationStatus = "delivered"
	StatusFailed    NotificationStatus = "failed"
)

var validNotificationStatuses = []NotificationStatus{
	StatusPending,
	StatusSent,
	StatusDelivered,
	StatusFailed,
}

// IsValid checks whether the given status matches the canonical enum.
func (s NotificationStatus) IsValid() bool {
	for _, candidate := range validNotificationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the delivery lifecycle.
func (s NotificationStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusFailed
}

// ParseNotificationStatus converts raw strings into NotificationStatus.
func ParseNotificationStatus(value string) (NotificationStatus, error) {
	for _, candidate := range validNotificationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification status %q", value)
}
