package notifications

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alanwtom/travora-backend/internal/templates"
	"github.com/alanwtom/travora-backend/pkg/db/models"
	dbtypes "github.com/alanwtom/travora-backend/pkg/db/types"
	"github.com/alanwtom/travora-backend/pkg/enums"
	pkgerrors "github.com/alanwtom/travora-backend/pkg/errors"
	"github.com/alanwtom/travora-backend/pkg/logger"
	"github.com/alanwtom/travora-backend/pkg/outbox"
	"github.com/alanwtom/travora-backend/pkg/outbox/payloads"
)

type templateResolver interface {
	Resolve(triggerEvent string) (models.NotificationTemplate, bool)
}

type preferenceReader interface {
	GetByUserCategory(ctx context.Context, userID uuid.UUID, category enums.NotificationCategory) (*models.NotificationPreference, error)
}

type profileReader interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// TriggerParams describes one notification request from application code.
type TriggerParams struct {
	UserID       uuid.UUID
	TriggerEvent string
	TitleData    map[string]string
	BodyData     map[string]string
	Data         map[string]any
}

// Factory turns trigger events into pending notification rows. Creation is
// best-effort: callers fire it as a side effect of unrelated user actions, so
// eligibility misses return nil rather than errors and only infrastructure
// failures surface.
type Factory struct {
	db        txRunner
	repo      Repository
	prefs     preferenceReader
	profiles  profileReader
	resolver  templateResolver
	outboxSvc outboxEmitter
	logg      *logger.Logger
	now       func() time.Time
}

// NewFactory wires factory dependencies.
func NewFactory(db txRunner, repo Repository, prefs preferenceReader, profiles profileReader, resolver templateResolver, outboxSvc outboxEmitter, logg *logger.Logger) (*Factory, error) {
	if db == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "tx runner required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if prefs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "preference reader required")
	}
	if profiles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "profile reader required")
	}
	if resolver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "template resolver required")
	}
	if outboxSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox service required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &Factory{
		db:        db,
		repo:      repo,
		prefs:     prefs,
		profiles:  profiles,
		resolver:  resolver,
		outboxSvc: outboxSvc,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// CreateFromTrigger resolves the template, applies eligibility, and persists
// a pending notification plus its created event. A nil notification with a
// nil error means the request was deliberately suppressed.
func (f *Factory) CreateFromTrigger(ctx context.Context, params TriggerParams) (*models.Notification, error) {
	logCtx := f.logg.WithTriggerEvent(ctx, params.TriggerEvent)
	logCtx = f.logg.WithUserID(logCtx, params.UserID.String())

	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	tmpl, ok := f.resolver.Resolve(params.TriggerEvent)
	if !ok {
		f.logg.Warn(logCtx, "unknown trigger event, skipping notification")
		return nil, nil
	}

	profile, err := f.profiles.Get(ctx, params.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	if profile == nil {
		f.logg.Warn(logCtx, "profile not found, skipping notification")
		return nil, nil
	}

	if tmpl.Category == enums.CategoryPromotions && !profile.MarketingNotificationsEnabled {
		f.logg.Info(logCtx, "marketing opt-out, skipping notification")
		return nil, nil
	}

	effective, err := f.effectiveChannels(ctx, profile, tmpl)
	if err != nil {
		return nil, err
	}

	if profile.EffectiveMuted(f.now()) {
		// A mute silences outward channels but still records the in-app
		// entry so the feed is complete when the user comes back.
		effective = intersect(effective, []enums.NotificationChannel{enums.ChannelInApp})
	}

	if len(effective) == 0 {
		f.logg.Info(logCtx, "no eligible channels, skipping notification")
		return nil, nil
	}

	title, body := templates.Render(tmpl, params.TitleData, params.BodyData)

	var data json.RawMessage
	if len(params.Data) > 0 {
		encoded, err := json.Marshal(params.Data)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encode notification data")
		}
		data = encoded
	}

	notification := &models.Notification{
		ID:       uuid.New(),
		UserID:   params.UserID,
		Category: tmpl.Category,
		Priority: tmpl.Priority,
		Status:   enums.StatusPending,
		Title:    title,
		Body:     body,
		Data:     data,
		Channels: dbtypes.ChannelArray(effective),
	}

	err = f.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := f.repo.WithTx(tx).Create(ctx, notification); err != nil {
			return err
		}
		return f.outboxSvc.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventNotificationCreated,
			AggregateType: enums.AggregateNotification,
			AggregateID:   notification.ID,
			Actor:         &outbox.ActorRef{Role: "system"},
			Data: payloads.NotificationCreatedEvent{
				NotificationID: notification.ID,
				UserID:         notification.UserID,
				Category:       notification.Category,
				Priority:       notification.Priority,
				Channels:       []enums.NotificationChannel(notification.Channels),
				TriggerEvent:   params.TriggerEvent,
				CreatedAt:      f.now().UTC(),
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}

	f.logg.Info(f.logg.WithNotificationID(logCtx, notification.ID.String()), "notification created")
	return notification, nil
}

// effectiveChannels intersects the template defaults with the per-category
// toggles and the legacy global push/email switches on the profile.
func (f *Factory) effectiveChannels(ctx context.Context, profile *models.Profile, tmpl models.NotificationTemplate) ([]enums.NotificationChannel, error) {
	pref, err := f.prefs.GetByUserCategory(ctx, profile.ID, tmpl.Category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load preference")
	}

	enabled := func(ch enums.NotificationChannel) bool {
		if pref != nil && !pref.ChannelEnabled(ch) {
			return false
		}
		switch ch {
		case enums.ChannelPush:
			return profile.PushNotificationsEnabled
		case enums.ChannelEmail:
			return profile.EmailNotificationsEnabled
		}
		return true
	}

	var out []enums.NotificationChannel
	for _, ch := range tmpl.DefaultChannels {
		if enabled(ch) {
			out = append(out, ch)
		}
	}
	return out, nil
}

func intersect(channels, keep []enums.NotificationChannel) []enums.NotificationChannel {
	var out []enums.NotificationChannel
	for _, ch := range channels {
		for _, k := range keep {
			if ch == k {
				out = append(out, ch)
				break
			}
		}
	}
	return out
}
