package delivery

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/alanwtom/travora-backend/pkg/config"
	"github.com/alanwtom/travora-backend/pkg/db/models"
	"github.com/alanwtom/travora-backend/pkg/enums"
	pkgerrors "github.com/alanwtom/travora-backend/pkg/errors"
	"github.com/alanwtom/travora-backend/pkg/logger"
	"github.com/alanwtom/travora-backend/pkg/metrics"
	"github.com/alanwtom/travora-backend/pkg/outbox"
	"github.com/alanwtom/travora-backend/pkg/outbox/payloads"
)

// QueueRepository persists delivery state transitions and attempt history.
type QueueRepository interface {
	UpdateDeliveryState(ctx context.Context, notification *models.Notification) error
	AppendHistory(ctx context.Context, entry *models.DeliveryHistory) error
}

type terminalEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type queueItem struct {
	notification *models.Notification
	attemptCount int
	nextAttempt  time.Time
}

// Queue is the in-process delivery dispatcher. Pending items are keyed by
// notification id; the enqueue path and the drain loop both take the mutex,
// so attempt state never sees concurrent writers. Only one drain pass runs at
// a time.
type Queue struct {
	cfg         config.DeliveryConfig
	repo        QueueRepository
	repoFactory func(tx *gorm.DB) QueueRepository
	db          txRunner
	outbox      terminalEmitter
	senders     map[enums.NotificationChannel]Sender
	metrics     *metrics.DeliveryMetrics
	logg        *logger.Logger

	mu       sync.Mutex
	pending  map[uuid.UUID]*queueItem
	draining bool

	wake chan struct{}
	now  func() time.Time
}

// NewQueue wires the delivery queue. repoFactory rebinds the repository to
// the finalize transaction.
func NewQueue(cfg config.DeliveryConfig, repo QueueRepository, repoFactory func(tx *gorm.DB) QueueRepository, db txRunner, outboxSvc terminalEmitter, senders []Sender, m *metrics.DeliveryMetrics, logg *logger.Logger) (*Queue, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "queue repository required")
	}
	if repoFactory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "queue repository factory required")
	}
	if db == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "tx runner required")
	}
	if outboxSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox service required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if len(senders) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "at least one sender required")
	}

	byChannel := make(map[enums.NotificationChannel]Sender, len(senders))
	for _, sender := range senders {
		byChannel[sender.Channel()] = sender
	}

	return &Queue{
		cfg:         cfg,
		repo:        repo,
		repoFactory: repoFactory,
		db:          db,
		outbox:      outboxSvc,
		senders:     byChannel,
		metrics:     m,
		logg:        logg,
		pending:     make(map[uuid.UUID]*queueItem),
		wake:        make(chan struct{}, 1),
		now:         time.Now,
	}, nil
}

func (q *Queue) priorityDelay(priority enums.NotificationPriority) time.Duration {
	switch priority {
	case enums.PriorityHigh:
		return q.cfg.HighDelay
	case enums.PriorityLow:
		return q.cfg.LowDelay
	default:
		return q.cfg.MediumDelay
	}
}

// Enqueue schedules a notification for delivery after its priority delay.
// Re-enqueueing the same id replaces the stored item, so recovery re-reads of
// still-pending rows never duplicate work.
func (q *Queue) Enqueue(notification *models.Notification) {
	if notification == nil || notification.Status.IsTerminal() {
		return
	}

	q.mu.Lock()
	q.pending[notification.ID] = &queueItem{
		notification: notification,
		nextAttempt:  q.now().Add(q.priorityDelay(notification.Priority)),
	}
	depth := len(q.pending)
	q.mu.Unlock()

	q.metrics.SetQueueDepth(depth)
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Len reports the number of pending items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Run drains the queue until the context is canceled. Drain passes are
// triggered by enqueues and by the poll ticker, whichever fires first.
func (q *Queue) Run(ctx context.Context) error {
	interval := q.cfg.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.wake:
		case <-ticker.C:
		}
		q.Drain(ctx)
	}
}

// Drain performs one pass over the due items. Re-entrant calls return
// immediately; the running pass will pick up anything enqueued meanwhile on
// the next trigger.
func (q *Queue) Drain(ctx context.Context) {
	q.mu.Lock()
	if q.draining {
		q.mu.Unlock()
		return
	}
	q.draining = true

	now := q.now()
	var due []*queueItem
	for _, item := range q.pending {
		if !item.nextAttempt.After(now) {
			due = append(due, item)
		}
	}
	q.mu.Unlock()

	// Priority is encoded in nextAttempt, so due order is schedule order.
	sort.Slice(due, func(i, j int) bool { return due[i].nextAttempt.Before(due[j].nextAttempt) })

	for _, item := range due {
		if ctx.Err() != nil {
			break
		}
		q.attempt(ctx, item)
	}

	q.mu.Lock()
	q.draining = false
	depth := len(q.pending)
	q.mu.Unlock()
	q.metrics.SetQueueDepth(depth)
}

func (q *Queue) attempt(ctx context.Context, item *queueItem) {
	n := item.notification
	logCtx := q.logg.WithNotificationID(ctx, n.ID.String())
	started := q.now()

	n.Status = enums.StatusSent
	if n.SentAt == nil {
		sentAt := started.UTC()
		n.SentAt = &sentAt
	}
	if err := q.repo.UpdateDeliveryState(ctx, n); err != nil {
		q.logg.Error(logCtx, "persisting sent status", err)
		q.reschedule(item)
		return
	}

	sendErr := q.sendAll(ctx, item)
	q.metrics.ObserveAttempt(string(n.Priority), q.now().Sub(started))

	if sendErr == nil {
		deliveredAt := q.now().UTC()
		n.Status = enums.StatusDelivered
		n.DeliveredAt = &deliveredAt
		if err := q.finalize(ctx, item); err != nil {
			q.logg.Error(logCtx, "finalizing delivered notification", err)
			q.reschedule(item)
			return
		}
		q.remove(n.ID)
		q.metrics.IncTerminal(string(enums.StatusDelivered))
		q.logg.Info(logCtx, "notification delivered")
		return
	}

	n.Status = enums.StatusFailed
	item.attemptCount++
	q.logg.Error(logCtx, fmt.Sprintf("delivery attempt %d failed", item.attemptCount), sendErr)

	if item.attemptCount >= q.cfg.MaxAttempts {
		if err := q.finalize(ctx, item); err != nil {
			q.logg.Error(logCtx, "finalizing failed notification", err)
			q.reschedule(item)
			return
		}
		q.remove(n.ID)
		q.metrics.IncTerminal(string(enums.StatusFailed))
		q.logg.Warn(logCtx, "notification failed permanently")
		return
	}

	if err := q.repo.UpdateDeliveryState(ctx, n); err != nil {
		q.logg.Error(logCtx, "persisting failed status", err)
	}
	q.reschedule(item)
}

// sendAll runs every incomplete channel of the attempt concurrently and
// settles them all; one channel's failure never cancels a sibling.
func (q *Queue) sendAll(ctx context.Context, item *queueItem) error {
	n := item.notification

	sendCtx := ctx
	if q.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, q.cfg.SendTimeout)
		defer cancel()
	}

	type outcome struct {
		channel enums.NotificationChannel
		err     error
	}

	var wg sync.WaitGroup
	results := make(chan outcome, len(n.Channels))
	for _, channel := range n.Channels {
		if n.ChannelDone(channel) {
			continue
		}
		sender, ok := q.senders[channel]
		if !ok {
			results <- outcome{channel: channel, err: fmt.Errorf("no sender for channel %s", channel)}
			continue
		}
		wg.Add(1)
		go func(ch enums.NotificationChannel, s Sender) {
			defer wg.Done()
			results <- outcome{channel: ch, err: s.Send(sendCtx, n)}
		}(channel, sender)
	}
	wg.Wait()
	close(results)

	var combined error
	for res := range results {
		q.recordOutcome(ctx, item, res.channel, res.err)
		if res.err != nil {
			combined = multierr.Append(combined, fmt.Errorf("%s: %w", res.channel, res.err))
		}
	}
	return combined
}

func (q *Queue) recordOutcome(ctx context.Context, item *queueItem, channel enums.NotificationChannel, sendErr error) {
	n := item.notification

	entry := &models.DeliveryHistory{
		ID:             uuid.New(),
		NotificationID: n.ID,
		Channel:        channel,
		Attempt:        item.attemptCount + 1,
		Status:         enums.StatusSent,
	}
	outcome := "success"
	if sendErr != nil {
		msg := sendErr.Error()
		entry.Status = enums.StatusFailed
		entry.ErrorMessage = &msg
		outcome = "failure"
	} else {
		n.MarkChannelDone(channel)
	}
	q.metrics.IncChannelSend(string(channel), outcome)

	if err := q.repo.AppendHistory(ctx, entry); err != nil {
		q.logg.Error(q.logg.WithNotificationID(ctx, n.ID.String()), "appending delivery history", err)
	}
}

// finalize persists the terminal state and queues the terminal event in one
// transaction. EmitIfNotExists keeps a recovered re-delivery from emitting a
// second terminal event for the same notification.
func (q *Queue) finalize(ctx context.Context, item *queueItem) error {
	n := item.notification
	return q.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := q.repoFactory(tx).UpdateDeliveryState(ctx, n); err != nil {
			return err
		}
		return q.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventNotificationUpdated,
			AggregateType: enums.AggregateNotification,
			AggregateID:   n.ID,
			Actor:         &outbox.ActorRef{Role: "system"},
			Data: payloads.NotificationUpdatedEvent{
				NotificationID: n.ID,
				UserID:         n.UserID,
				Status:         n.Status,
				PushSent:       n.PushSent,
				EmailSent:      n.EmailSent,
				InAppShown:     n.InAppShown,
				AttemptCount:   item.attemptCount,
				UpdatedAt:      q.now().UTC(),
			},
			Version: 1,
		})
	})
}

func (q *Queue) reschedule(item *queueItem) {
	base := q.priorityDelay(item.notification.Priority)
	backoff := base
	if item.attemptCount > 0 {
		backoff = base * (1 << uint(item.attemptCount-1))
	}
	item.nextAttempt = q.now().Add(backoff)
}

func (q *Queue) remove(id uuid.UUID) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}
