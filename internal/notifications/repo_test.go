package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/alanwtom/travora-backend/pkg/db/models"
	dbtypes "github.com/alanwtom/travora-backend/pkg/db/types"
	"github.com/alanwtom/travora-backend/pkg/enums"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  user_id TEXT NOT NULL,
  category TEXT NOT NULL,
  priority TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  title TEXT NOT NULL,
  body TEXT NOT NULL,
  data TEXT,
  channels TEXT NOT NULL DEFAULT '[]',
  push_sent INTEGER NOT NULL DEFAULT 0,
  email_sent INTEGER NOT NULL DEFAULT 0,
  in_app_shown INTEGER NOT NULL DEFAULT 0,
  read_at DATETIME,
  sent_at DATETIME,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS notification_delivery_history (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  notification_id TEXT NOT NULL,
  channel TEXT NOT NULL,
  attempt INTEGER NOT NULL,
  status TEXT NOT NULL,
  error_message TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedNotification(t *testing.T, db *gorm.DB, userID uuid.UUID, createdAt time.Time, mutate ...func(*models.Notification)) *models.Notification {
	t.Helper()

	n := &models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Category:  enums.CategoryTripUpdates,
		Priority:  enums.PriorityHigh,
		Status:    enums.StatusPending,
		Title:     "Booking confirmed",
		Body:      "Your trip to Kyoto is confirmed. See you soon!",
		Channels:  dbtypes.ChannelArray{enums.ChannelPush, enums.ChannelInApp},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	for _, fn := range mutate {
		fn(n)
	}
	require.NoError(t, db.Create(n).Error)
	return n
}

func TestRepoGetScopedByUser(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	n := seedNotification(t, db, userID, time.Now().UTC())

	found, err := repo.Get(ctx, userID, n.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, n.ID, found.ID)
	assert.Equal(t, dbtypes.ChannelArray{enums.ChannelPush, enums.ChannelInApp}, found.Channels)

	other, err := repo.Get(ctx, uuid.New(), n.ID)
	require.NoError(t, err)
	assert.Nil(t, other, "another user's id must not resolve the row")

	byID, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
}

func TestRepoListPaginatesNewestFirst(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	var seeded []*models.Notification
	for i := 0; i < 5; i++ {
		seeded = append(seeded, seedNotification(t, db, userID, base.Add(time.Duration(i)*time.Minute)))
	}
	seedNotification(t, db, uuid.New(), base.Add(time.Hour))

	page, cursor, err := repo.List(ctx, listNotificationsParams{UserID: userID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotNil(t, cursor)
	assert.Equal(t, seeded[4].ID, page[0].ID)
	assert.Equal(t, seeded[3].ID, page[1].ID)

	rest, next, err := repo.List(ctx, listNotificationsParams{UserID: userID, Limit: 10, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, rest, 3)
	assert.Nil(t, next)
	assert.Equal(t, seeded[2].ID, rest[0].ID)
}

func TestRepoListFilters(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	now := time.Now().UTC()
	readAt := now
	seedNotification(t, db, userID, now.Add(-time.Minute), func(n *models.Notification) {
		n.ReadAt = &readAt
	})
	promo := seedNotification(t, db, userID, now, func(n *models.Notification) {
		n.Category = enums.CategoryPromotions
	})

	unread, _, err := repo.List(ctx, listNotificationsParams{UserID: userID, Limit: 10, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, promo.ID, unread[0].ID)

	category := enums.CategoryPromotions
	promos, _, err := repo.List(ctx, listNotificationsParams{UserID: userID, Limit: 10, Category: &category})
	require.NoError(t, err)
	require.Len(t, promos, 1)
	assert.Equal(t, promo.ID, promos[0].ID)
}

func TestRepoMarkRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	n := seedNotification(t, db, userID, time.Now().UTC())
	now := time.Now().UTC()

	mark, err := repo.MarkRead(ctx, userID, n.ID, now)
	require.NoError(t, err)
	assert.True(t, mark.Found)
	assert.True(t, mark.Updated)

	// Marking again finds the row but changes nothing.
	again, err := repo.MarkRead(ctx, userID, n.ID, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, again.Found)
	assert.False(t, again.Updated)

	missing, err := repo.MarkRead(ctx, userID, uuid.New(), now)
	require.NoError(t, err)
	assert.False(t, missing.Found)
}

func TestRepoMarkAllReadAndCountUnread(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	now := time.Now().UTC()
	seedNotification(t, db, userID, now.Add(-2*time.Minute))
	seedNotification(t, db, userID, now.Add(-time.Minute))
	seedNotification(t, db, uuid.New(), now)

	count, err := repo.CountUnread(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	updated, err := repo.MarkAllRead(ctx, userID, now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated)

	count, err = repo.CountUnread(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestRepoDeleteScopedByUser(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	n := seedNotification(t, db, userID, time.Now().UTC())

	deleted, err := repo.Delete(ctx, uuid.New(), n.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = repo.Delete(ctx, userID, n.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestRepoDeleteAllForUser(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	now := time.Now().UTC()
	seedNotification(t, db, userID, now.Add(-2*time.Hour))
	seedNotification(t, db, userID, now.Add(-time.Hour))
	other := seedNotification(t, db, uuid.New(), now)

	removed, err := repo.DeleteAllForUser(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	remaining, err := repo.GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.NotNil(t, remaining)
}

func TestRepoDeleteOlderThan(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	seedNotification(t, db, uuid.New(), now.Add(-40*24*time.Hour))
	keep := seedNotification(t, db, uuid.New(), now)

	removed, err := repo.DeleteOlderThan(ctx, nil, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	remaining, err := repo.GetByID(ctx, keep.ID)
	require.NoError(t, err)
	assert.NotNil(t, remaining)
}

func TestRepoListPendingOldestFirst(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	older := seedNotification(t, db, uuid.New(), now.Add(-time.Hour))
	newer := seedNotification(t, db, uuid.New(), now)
	seedNotification(t, db, uuid.New(), now, func(n *models.Notification) {
		n.Status = enums.StatusDelivered
	})

	rows, err := repo.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, older.ID, rows[0].ID)
	assert.Equal(t, newer.ID, rows[1].ID)
}

func TestRepoUpdateDeliveryState(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	n := seedNotification(t, db, uuid.New(), time.Now().UTC())
	sentAt := time.Now().UTC()
	n.Status = enums.StatusSent
	n.PushSent = true
	n.InAppShown = true
	n.SentAt = &sentAt

	require.NoError(t, repo.UpdateDeliveryState(ctx, n))

	stored, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, enums.StatusSent, stored.Status)
	assert.True(t, stored.PushSent)
	assert.True(t, stored.InAppShown)
	assert.False(t, stored.EmailSent)
	require.NotNil(t, stored.SentAt)
}

func TestRepoDeliveryHistory(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	n := seedNotification(t, db, uuid.New(), time.Now().UTC())
	errMsg := "gateway timeout"
	entries := []models.DeliveryHistory{
		{ID: uuid.New(), NotificationID: n.ID, Channel: enums.ChannelPush, Attempt: 1, Status: enums.StatusFailed, ErrorMessage: &errMsg, CreatedAt: time.Now().UTC().Add(-time.Minute)},
		{ID: uuid.New(), NotificationID: n.ID, Channel: enums.ChannelPush, Attempt: 2, Status: enums.StatusSent, CreatedAt: time.Now().UTC()},
	}
	for i := range entries {
		require.NoError(t, repo.AppendHistory(ctx, &entries[i]))
	}

	rows, err := repo.ListHistory(ctx, n.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Attempt)
	require.NotNil(t, rows[0].ErrorMessage)
	assert.Equal(t, errMsg, *rows[0].ErrorMessage)
	assert.Equal(t, 2, rows[1].Attempt)
}
