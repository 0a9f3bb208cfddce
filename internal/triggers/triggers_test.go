package triggers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanwtom/travora-backend/internal/notifications"
	"github.com/alanwtom/travora-backend/pkg/db/models"
	"github.com/alanwtom/travora-backend/pkg/logger"
)

type fakeCreator struct {
	mu     sync.Mutex
	calls  []notifications.TriggerParams
	errFor map[uuid.UUID]error
}

func (f *fakeCreator) CreateFromTrigger(_ context.Context, params notifications.TriggerParams) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, params)
	if err, ok := f.errFor[params.UserID]; ok {
		return nil, err
	}
	return &models.Notification{ID: uuid.New(), UserID: params.UserID}, nil
}

func newTriggerService(t *testing.T) (*Service, *fakeCreator) {
	t.Helper()
	creator := &fakeCreator{}
	svc, err := NewService(creator, logger.New(logger.Options{ServiceName: "triggers-test", Level: zerolog.Disabled}))
	require.NoError(t, err)
	return svc, creator
}

func TestBookingConfirmedBuildsParams(t *testing.T) {
	svc, creator := newTriggerService(t)
	userID := uuid.New()

	n, err := svc.BookingConfirmed(context.Background(), userID, "Lisbon", "b-42")
	require.NoError(t, err)
	require.NotNil(t, n)

	require.Len(t, creator.calls, 1)
	call := creator.calls[0]
	assert.Equal(t, "booking_confirmed", call.TriggerEvent)
	assert.Equal(t, userID, call.UserID)
	assert.Equal(t, "Lisbon", call.TitleData["destination"])
	assert.Equal(t, "Lisbon", call.BodyData["destination"])
	assert.Equal(t, "b-42", call.Data["bookingId"])
}

func TestTripStartingSoonFormatsDays(t *testing.T) {
	svc, creator := newTriggerService(t)

	_, err := svc.TripStartingSoon(context.Background(), uuid.New(), "Kyoto", 3)
	require.NoError(t, err)
	assert.Equal(t, "3", creator.calls[0].TitleData["days"])
}

func TestPriceDropOmitsEmptyURL(t *testing.T) {
	svc, creator := newTriggerService(t)

	_, err := svc.PriceDrop(context.Background(), uuid.New(), "Oslo", "$199", "")
	require.NoError(t, err)
	_, hasURL := creator.calls[0].Data["url"]
	assert.False(t, hasURL)

	_, err = svc.PriceDrop(context.Background(), uuid.New(), "Oslo", "$199", "https://example.com/deal")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/deal", creator.calls[1].Data["url"])
}

func TestVideoLikedDefaultsTitle(t *testing.T) {
	svc, creator := newTriggerService(t)

	_, err := svc.VideoLiked(context.Background(), uuid.New(), "maria", "", "v-1", "liker-1")
	require.NoError(t, err)
	assert.Equal(t, "your video", creator.calls[0].TitleData["video_title"])

	_, err = svc.VideoLiked(context.Background(), uuid.New(), "maria", "Sunset in Bali", "v-2", "liker-1")
	require.NoError(t, err)
	assert.Equal(t, "Sunset in Bali", creator.calls[1].TitleData["video_title"])
}

func TestCommentReceivedTruncatesPreview(t *testing.T) {
	svc, creator := newTriggerService(t)

	long := strings.Repeat("a", 200)
	_, err := svc.CommentReceived(context.Background(), uuid.New(), "maria", long, "v-1", "c-1", "u-1")
	require.NoError(t, err)

	preview := creator.calls[0].BodyData["comment_content"]
	assert.Len(t, []rune(preview), maxCommentPreview)
	assert.True(t, strings.HasSuffix(preview, "..."))
	assert.Equal(t, preview, creator.calls[0].Data["commentContent"])
}

func TestSystemTriggersCarryNoPlaceholders(t *testing.T) {
	svc, creator := newTriggerService(t)
	userID := uuid.New()

	_, err := svc.SecurityAlert(context.Background(), userID)
	require.NoError(t, err)
	_, err = svc.PasswordChanged(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, "security_alert", creator.calls[0].TriggerEvent)
	assert.Equal(t, "password_changed", creator.calls[1].TriggerEvent)
	assert.Empty(t, creator.calls[0].TitleData)
}

func TestFlightWithin24HoursUsesNumericTrigger(t *testing.T) {
	svc, creator := newTriggerService(t)

	_, err := svc.FlightWithin24Hours(context.Background(), uuid.New(), "Reykjavik", "f-9")
	require.NoError(t, err)
	assert.Equal(t, "24_hour_flight", creator.calls[0].TriggerEvent)
}

func TestBroadcastCollectsPerUserResults(t *testing.T) {
	creator := &fakeCreator{errFor: map[uuid.UUID]error{}}
	svc, err := NewService(creator, logger.New(logger.Options{ServiceName: "triggers-test", Level: zerolog.Disabled}))
	require.NoError(t, err)

	good := uuid.New()
	bad := uuid.New()
	creator.errFor[bad] = errors.New("db down")

	results := svc.Broadcast(context.Background(), []uuid.UUID{good, bad}, "special_offer",
		map[string]string{"offer_description": "Summer escapes from $99"}, nil)

	require.Len(t, results, 2)
	assert.NoError(t, results[good])
	assert.ErrorContains(t, results[bad], "db down")
	assert.Len(t, creator.calls, 2)
}
