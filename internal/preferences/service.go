package preferences

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alanwtom/travora-backend/pkg/db/models"
	"github.com/alanwtom/travora-backend/pkg/enums"
	pkgerrors "github.com/alanwtom/travora-backend/pkg/errors"
	"github.com/alanwtom/travora-backend/pkg/logger"
	"github.com/alanwtom/travora-backend/pkg/outbox"
	"github.com/alanwtom/travora-backend/pkg/outbox/payloads"
)

// ChannelFlags carries the three per-channel toggles for one category.
type ChannelFlags struct {
	Push  bool
	Email bool
	InApp bool
}

// Service defines preference read/write operations. Reads never create rows;
// a missing row means every channel is enabled.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.NotificationPreference, error)
	Get(ctx context.Context, userID uuid.UUID, category enums.NotificationCategory) (models.NotificationPreference, error)
	Update(ctx context.Context, userID uuid.UUID, category enums.NotificationCategory, flags ChannelFlags) (models.NotificationPreference, error)
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	db     txRunner
	repo   Repository
	outbox outboxEmitter
	logg   *logger.Logger
}

// NewService wires preference dependencies.
func NewService(dbClient txRunner, repo Repository, outboxSvc outboxEmitter, logg *logger.Logger) (Service, error) {
	if dbClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "preference repository required")
	}
	if outboxSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox service required")
	}
	return &service{db: dbClient, repo: repo, outbox: outboxSvc, logg: logg}, nil
}

func defaultPreference(userID uuid.UUID, category enums.NotificationCategory) models.NotificationPreference {
	return models.NotificationPreference{
		UserID:       userID,
		Category:     category,
		PushEnabled:  true,
		EmailEnabled: true,
		InAppEnabled: true,
	}
}

// List returns one row per category, synthesizing all-enabled defaults for
// categories with no stored row.
func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.NotificationPreference, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	stored, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list preferences")
	}

	byCategory := make(map[enums.NotificationCategory]models.NotificationPreference, len(stored))
	for _, row := range stored {
		byCategory[row.Category] = row
	}

	out := make([]models.NotificationPreference, 0, len(enums.NotificationCategories()))
	for _, category := range enums.NotificationCategories() {
		if row, ok := byCategory[category]; ok {
			out = append(out, row)
			continue
		}
		out = append(out, defaultPreference(userID, category))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID, category enums.NotificationCategory) (models.NotificationPreference, error) {
	if userID == uuid.Nil {
		return models.NotificationPreference{}, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !category.IsValid() {
		return models.NotificationPreference{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}

	row, err := s.repo.GetByUserCategory(ctx, userID, category)
	if err != nil {
		return models.NotificationPreference{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get preference")
	}
	if row == nil {
		return defaultPreference(userID, category), nil
	}
	return *row, nil
}

// Update persists the toggles for one category and emits a
// preferences_changed event in the same transaction. Essential categories
// must keep at least one channel enabled; the master mute on the profile is
// the only way to silence them entirely.
func (s *service) Update(ctx context.Context, userID uuid.UUID, category enums.NotificationCategory, flags ChannelFlags) (models.NotificationPreference, error) {
	if userID == uuid.Nil {
		return models.NotificationPreference{}, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !category.IsValid() {
		return models.NotificationPreference{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}
	if category.IsEssential() && !flags.Push && !flags.Email && !flags.InApp {
		return models.NotificationPreference{}, pkgerrors.New(pkgerrors.CodeValidation, "essential category requires at least one enabled channel")
	}

	pref := models.NotificationPreference{
		UserID:       userID,
		Category:     category,
		PushEnabled:  flags.Push,
		EmailEnabled: flags.Email,
		InAppEnabled: flags.InApp,
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Upsert(ctx, &pref); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPreferencesChanged,
			AggregateType: enums.AggregatePreference,
			AggregateID:   userID,
			Actor:         &outbox.ActorRef{UserID: userID, Role: "user"},
			Data: payloads.PreferencesChangedEvent{
				UserID:       userID,
				Category:     category,
				PushEnabled:  flags.Push,
				EmailEnabled: flags.Email,
				InAppEnabled: flags.InApp,
			},
			Version: 1,
		})
	})
	if err != nil {
		return models.NotificationPreference{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update preference")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"user_id":  userID.String(),
			"category": category,
		})
		s.logg.Info(logCtx, "notification preference updated")
	}
	return pref, nil
}
