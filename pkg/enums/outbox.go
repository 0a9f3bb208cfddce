package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateNotification OutboxAggregateType = "notification"
	AggregateDevice       OutboxAggregateType = "device"
	AggregatePreference   OutboxAggregateType = "preference"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateNotification,
	AggregateDevice,
	AggregatePreference,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventNotificationCreated OutboxEventType = "notification_created"
	EventNotificationUpdated OutboxEventType = "notification_updated"
	EventDeviceRegistered    OutboxEventType = "device_registered"
	EventDeviceRevoked       OutboxEventType = "device_revoked"
	EventPreferencesChanged  OutboxEventType = "preferences_changed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventNotificationCreated,
	EventNotificationUpdated,
	EventDeviceRegistered,
	EventDeviceRevoked,
	EventPreferencesChanged,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

// OutboxDLQErrorReason explains why an event was parked in the dead letter
// table instead of being retried further.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)

var validOutboxDLQErrorReasons = []OutboxDLQErrorReason{
	OutboxDLQReasonMaxAttempts,
	OutboxDLQReasonNonRetryable,
}

func (r OutboxDLQErrorReason) IsValid() bool {
	for _, candidate := range validOutboxDLQErrorReasons {
		if candidate == r {
			return true
		}
	}
	return false
}
