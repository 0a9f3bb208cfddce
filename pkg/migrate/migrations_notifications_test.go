package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNotificationsMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_notifications.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no notifications migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS notifications",
		"status notification_status NOT NULL DEFAULT 'pending'",
		"push_sent BOOLEAN NOT NULL DEFAULT FALSE",
		"email_sent BOOLEAN NOT NULL DEFAULT FALSE",
		"in_app_shown BOOLEAN NOT NULL DEFAULT FALSE",
		"FOREIGN KEY (user_id) REFERENCES profiles(id) ON DELETE CASCADE",
		"CREATE INDEX IF NOT EXISTS idx_notifications_user_created",
		"WHERE status = 'pending'",
		"DROP TABLE IF EXISTS notifications",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestEnumMigrationCoversAllValues(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_notification_enums.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no enum migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE notification_category AS ENUM",
		"CREATE TYPE notification_channel AS ENUM",
		"CREATE TYPE notification_priority AS ENUM",
		"CREATE TYPE notification_status AS ENUM",
		"'trip_updates'",
		"'price_alerts'",
		"'promotions'",
		"'social'",
		"'system'",
		"'booking'",
		"'reminder'",
		"'in_app'",
		"'delivered'",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
