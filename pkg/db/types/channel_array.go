package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/alanwtom/travora-backend/pkg/enums"
)

// ChannelArray stores a resolved channel list as a jsonb column. JSON keeps
// the column portable between Postgres and the sqlite test driver.
type ChannelArray []enums.NotificationChannel

func (a *ChannelArray) Scan(src any) error {
	if src == nil {
		*a = ChannelArray{}
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("ChannelArray: unsupported Scan type %T", src)
	}

	if len(raw) == 0 {
		*a = ChannelArray{}
		return nil
	}

	var parsed []enums.NotificationChannel
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("ChannelArray: parse %q: %w", raw, err)
	}
	for _, ch := range parsed {
		if !ch.IsValid() {
			return fmt.Errorf("ChannelArray: invalid channel %q", ch)
		}
	}
	*a = ChannelArray(parsed)
	return nil
}

func (a ChannelArray) Value() (driver.Value, error) {
	if a == nil {
		a = ChannelArray{}
	}
	raw, err := json.Marshal([]enums.NotificationChannel(a))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Contains reports whether the list includes the given channel.
func (a ChannelArray) Contains(ch enums.NotificationChannel) bool {
	for _, candidate := range a {
		if candidate == ch {
			return true
		}
	}
	return false
}
