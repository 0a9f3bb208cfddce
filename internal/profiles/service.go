package profiles

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/alanwtom/travora-backend/pkg/db/models"
	pkgerrors "github.com/alanwtom/travora-backend/pkg/errors"
	"github.com/alanwtom/travora-backend/pkg/logger"
)

// MuteParams configures the master mute. A nil Until mutes indefinitely.
type MuteParams struct {
	Muted bool
	Until *time.Time
}

// GlobalToggles carries the profile-level notification switches.
type GlobalToggles struct {
	MarketingEnabled *bool
	PushEnabled      *bool
	EmailEnabled     *bool
}

// Service defines notification settings operations on the profile.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	SetMute(ctx context.Context, userID uuid.UUID, params MuteParams) (*models.Profile, error)
	SetToggles(ctx context.Context, userID uuid.UUID, toggles GlobalToggles) (*models.Profile, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService wires profile settings dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "profile repository required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	profile, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	if profile == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}
	return profile, nil
}

func (s *service) SetMute(ctx context.Context, userID uuid.UUID, params MuteParams) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if params.Until != nil && !params.Until.After(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mute expiry must be in the future")
	}
	if !params.Muted && params.Until != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mute expiry requires muted true")
	}

	columns := map[string]any{
		"notification_muted":      params.Muted,
		"notification_mute_until": nil,
	}
	if params.Until != nil {
		columns["notification_mute_until"] = params.Until.UTC()
	}

	updated, err := s.repo.UpdateSettings(ctx, userID, columns)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update mute")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}

	if s.logg != nil {
		logCtx := s.logg.WithUserID(ctx, userID.String())
		s.logg.Info(logCtx, "notification mute updated")
	}
	return s.Get(ctx, userID)
}

func (s *service) SetToggles(ctx context.Context, userID uuid.UUID, toggles GlobalToggles) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	columns := map[string]any{}
	if toggles.MarketingEnabled != nil {
		columns["marketing_notifications_enabled"] = *toggles.MarketingEnabled
	}
	if toggles.PushEnabled != nil {
		columns["push_notifications_enabled"] = *toggles.PushEnabled
	}
	if toggles.EmailEnabled != nil {
		columns["email_notifications_enabled"] = *toggles.EmailEnabled
	}
	if len(columns) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no toggles provided")
	}

	updated, err := s.repo.UpdateSettings(ctx, userID, columns)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update toggles")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}
	return s.Get(ctx, userID)
}
