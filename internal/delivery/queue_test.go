package delivery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/alanwtom/travora-backend/pkg/config"
	"github.com/alanwtom/travora-backend/pkg/db/models"
	dbtypes "github.com/alanwtom/travora-backend/pkg/db/types"
	"github.com/alanwtom/travora-backend/pkg/enums"
	"github.com/alanwtom/travora-backend/pkg/logger"
	"github.com/alanwtom/travora-backend/pkg/outbox"
)

type fakeQueueRepo struct {
	mu      sync.Mutex
	updates []models.Notification
	history []models.DeliveryHistory
}

func (r *fakeQueueRepo) UpdateDeliveryState(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, *n)
	return nil
}

func (r *fakeQueueRepo) AppendHistory(_ context.Context, entry *models.DeliveryHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, *entry)
	return nil
}

func (r *fakeQueueRepo) historyFor(channel enums.NotificationChannel) []models.DeliveryHistory {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.DeliveryHistory
	for _, entry := range r.history {
		if entry.Channel == channel {
			out = append(out, entry)
		}
	}
	return out
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeTerminalEmitter struct {
	mu     sync.Mutex
	events []outbox.DomainEvent
}

func (f *fakeTerminalEmitter) EmitIfNotExists(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

type scriptedSender struct {
	channel enums.NotificationChannel
	mu      sync.Mutex
	calls   int
	errs    []error
}

func (s *scriptedSender) Channel() enums.NotificationChannel { return s.channel }

func (s *scriptedSender) Send(context.Context, *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.calls
	s.calls++
	if idx < len(s.errs) {
		return s.errs[idx]
	}
	return nil
}

func (s *scriptedSender) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type queueHarness struct {
	queue   *Queue
	repo    *fakeQueueRepo
	emitter *fakeTerminalEmitter
	clock   *time.Time
}

func newQueueHarness(t *testing.T, cfg config.DeliveryConfig, senders ...Sender) *queueHarness {
	t.Helper()

	repo := &fakeQueueRepo{}
	emitter := &fakeTerminalEmitter{}
	logg := logger.New(logger.Options{ServiceName: "delivery-test", Level: zerolog.Disabled})

	q, err := NewQueue(cfg, repo, func(*gorm.DB) QueueRepository { return repo }, fakeTxRunner{}, emitter, senders, nil, logg)
	require.NoError(t, err)

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return clock }

	return &queueHarness{queue: q, repo: repo, emitter: emitter, clock: &clock}
}

func (h *queueHarness) advance(d time.Duration) {
	*h.clock = h.clock.Add(d)
}

func defaultDeliveryConfig() config.DeliveryConfig {
	return config.DeliveryConfig{
		HighDelay:   time.Second,
		MediumDelay: 15 * time.Second,
		LowDelay:    60 * time.Second,
		MaxAttempts: 3,
	}
}

func pendingNotification(priority enums.NotificationPriority, chs ...enums.NotificationChannel) *models.Notification {
	return &models.Notification{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		Category: enums.CategorySocial,
		Priority: priority,
		Status:   enums.StatusPending,
		Title:    "maria commented",
		Body:     "maria: Great trip!",
		Channels: dbtypes.ChannelArray(chs),
	}
}

func TestQueue_PriorityDelaysGateAttempts(t *testing.T) {
	pushSender := &scriptedSender{channel: enums.ChannelPush}
	h := newQueueHarness(t, defaultDeliveryConfig(), pushSender)

	high := pendingNotification(enums.PriorityHigh, enums.ChannelPush)
	low := pendingNotification(enums.PriorityLow, enums.ChannelPush)
	h.queue.Enqueue(high)
	h.queue.Enqueue(low)
	require.Equal(t, 2, h.queue.Len())

	// Past the high delay but well before the low delay.
	h.advance(2 * time.Second)
	h.queue.Drain(context.Background())

	assert.Equal(t, 1, pushSender.callCount())
	assert.Equal(t, 1, h.queue.Len())

	require.Len(t, h.emitter.events, 1)
	assert.Equal(t, enums.EventNotificationUpdated, h.emitter.events[0].EventType)
	assert.Equal(t, high.ID, h.emitter.events[0].AggregateID)

	// The low item goes out once its delay elapses.
	h.advance(60 * time.Second)
	h.queue.Drain(context.Background())
	assert.Equal(t, 2, pushSender.callCount())
	assert.Equal(t, 0, h.queue.Len())
}

func TestQueue_DeliveredLifecycle(t *testing.T) {
	pushSender := &scriptedSender{channel: enums.ChannelPush}
	inAppSender := &scriptedSender{channel: enums.ChannelInApp}
	h := newQueueHarness(t, defaultDeliveryConfig(), pushSender, inAppSender)

	n := pendingNotification(enums.PriorityHigh, enums.ChannelPush, enums.ChannelInApp)
	h.queue.Enqueue(n)
	h.advance(2 * time.Second)
	h.queue.Drain(context.Background())

	assert.Equal(t, enums.StatusDelivered, n.Status)
	assert.True(t, n.PushSent)
	assert.True(t, n.InAppShown)
	assert.False(t, n.EmailSent)
	require.NotNil(t, n.SentAt)
	require.NotNil(t, n.DeliveredAt)
	assert.Equal(t, 0, h.queue.Len())

	// First write marks sent, the finalize write marks delivered.
	require.GreaterOrEqual(t, len(h.repo.updates), 2)
	assert.Equal(t, enums.StatusSent, h.repo.updates[0].Status)
	assert.Equal(t, enums.StatusDelivered, h.repo.updates[len(h.repo.updates)-1].Status)
}

func TestQueue_ChannelFailureRetriesOnlyIncompleteChannels(t *testing.T) {
	pushSender := &scriptedSender{channel: enums.ChannelPush, errs: []error{errors.New("gateway down")}}
	inAppSender := &scriptedSender{channel: enums.ChannelInApp}
	h := newQueueHarness(t, defaultDeliveryConfig(), pushSender, inAppSender)

	n := pendingNotification(enums.PriorityHigh, enums.ChannelPush, enums.ChannelInApp)
	h.queue.Enqueue(n)
	h.advance(2 * time.Second)
	h.queue.Drain(context.Background())

	// In-app landed, push failed, so the attempt failed overall.
	assert.True(t, n.InAppShown)
	assert.False(t, n.PushSent)
	assert.Equal(t, 1, h.queue.Len())
	assert.Empty(t, h.emitter.events)

	failures := h.repo.historyFor(enums.ChannelPush)
	require.Len(t, failures, 1)
	assert.Equal(t, enums.StatusFailed, failures[0].Status)
	require.NotNil(t, failures[0].ErrorMessage)
	assert.Contains(t, *failures[0].ErrorMessage, "gateway down")

	// Not due again until the backoff elapses.
	h.queue.Drain(context.Background())
	assert.Equal(t, 1, pushSender.callCount())

	h.advance(time.Second)
	h.queue.Drain(context.Background())

	assert.Equal(t, 2, pushSender.callCount())
	assert.Equal(t, 1, inAppSender.callCount(), "completed channel must not be re-sent")
	assert.Equal(t, enums.StatusDelivered, n.Status)
	assert.Equal(t, 0, h.queue.Len())
}

func TestQueue_ExhaustedAttemptsFailPermanently(t *testing.T) {
	pushSender := &scriptedSender{channel: enums.ChannelPush, errs: []error{
		errors.New("boom"), errors.New("boom"), errors.New("boom"),
	}}
	cfg := defaultDeliveryConfig()
	cfg.MaxAttempts = 3
	h := newQueueHarness(t, cfg, pushSender)

	n := pendingNotification(enums.PriorityHigh, enums.ChannelPush)
	h.queue.Enqueue(n)

	// Walk through every attempt, advancing past each backoff.
	for i := 0; i < 3; i++ {
		h.advance(10 * time.Second)
		h.queue.Drain(context.Background())
	}

	assert.Equal(t, 3, pushSender.callCount())
	assert.Equal(t, enums.StatusFailed, n.Status)
	assert.Equal(t, 0, h.queue.Len())

	require.Len(t, h.emitter.events, 1)
	assert.Equal(t, enums.EventNotificationUpdated, h.emitter.events[0].EventType)

	failures := h.repo.historyFor(enums.ChannelPush)
	require.Len(t, failures, 3)
	for i, entry := range failures {
		assert.Equal(t, i+1, entry.Attempt)
	}
}

func TestQueue_ReenqueueReplacesInsteadOfDuplicating(t *testing.T) {
	pushSender := &scriptedSender{channel: enums.ChannelPush}
	h := newQueueHarness(t, defaultDeliveryConfig(), pushSender)

	n := pendingNotification(enums.PriorityHigh, enums.ChannelPush)
	h.queue.Enqueue(n)
	h.queue.Enqueue(n)
	assert.Equal(t, 1, h.queue.Len())

	terminal := pendingNotification(enums.PriorityHigh, enums.ChannelPush)
	terminal.Status = enums.StatusDelivered
	h.queue.Enqueue(terminal)
	assert.Equal(t, 1, h.queue.Len(), "terminal rows are never enqueued")
}
