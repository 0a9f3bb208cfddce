package devices

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alanwtom/travora-backend/pkg/db/models"
	"github.com/alanwtom/travora-backend/pkg/enums"
	pkgerrors "github.com/alanwtom/travora-backend/pkg/errors"
	"github.com/alanwtom/travora-backend/pkg/logger"
	"github.com/alanwtom/travora-backend/pkg/outbox"
	"github.com/alanwtom/travora-backend/pkg/outbox/payloads"
)

var validPlatforms = map[string]bool{
	"ios":     true,
	"android": true,
	"web":     true,
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RegisterParams describes one device token registration.
type RegisterParams struct {
	UserID   uuid.UUID
	Token    string
	Platform string
}

// Service defines device token operations.
type Service interface {
	Register(ctx context.Context, params RegisterParams) (*models.DeviceToken, error)
	Revoke(ctx context.Context, userID uuid.UUID, token string) error
	ListActive(ctx context.Context, userID uuid.UUID) ([]models.DeviceToken, error)
}

type service struct {
	db        txRunner
	repo      Repository
	outboxSvc outboxEmitter
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires device token dependencies.
func NewService(db txRunner, repo Repository, outboxSvc outboxEmitter, logg *logger.Logger) (Service, error) {
	if db == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "tx runner required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "device repository required")
	}
	if outboxSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox service required")
	}
	return &service{db: db, repo: repo, outboxSvc: outboxSvc, logg: logg, now: time.Now}, nil
}

func (s *service) Register(ctx context.Context, params RegisterParams) (*models.DeviceToken, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	token := strings.TrimSpace(params.Token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token required")
	}
	platform := strings.ToLower(strings.TrimSpace(params.Platform))
	if !validPlatforms[platform] {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid platform")
	}

	device := &models.DeviceToken{
		ID:       uuid.New(),
		UserID:   params.UserID,
		Token:    token,
		Platform: platform,
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Upsert(ctx, device); err != nil {
			return err
		}
		return s.outboxSvc.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDeviceRegistered,
			AggregateType: enums.AggregateDevice,
			AggregateID:   device.ID,
			Actor:         &outbox.ActorRef{UserID: params.UserID, Role: "user"},
			Data: payloads.DeviceRegisteredEvent{
				DeviceID: device.ID,
				UserID:   params.UserID,
				Platform: platform,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register device")
	}

	if s.logg != nil {
		logCtx := s.logg.WithUserID(ctx, params.UserID.String())
		s.logg.Info(logCtx, "device token registered")
	}
	return device, nil
}

func (s *service) Revoke(ctx context.Context, userID uuid.UUID, token string) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "token required")
	}

	var revoked *models.DeviceToken
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		row, err := s.repo.WithTx(tx).Revoke(ctx, userID, token, s.now().UTC())
		if err != nil {
			return err
		}
		if row == nil {
			return nil
		}
		revoked = row
		return s.outboxSvc.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDeviceRevoked,
			AggregateType: enums.AggregateDevice,
			AggregateID:   row.ID,
			Actor:         &outbox.ActorRef{UserID: userID, Role: "user"},
			Data: payloads.DeviceRevokedEvent{
				DeviceID:  row.ID,
				UserID:    userID,
				RevokedAt: *row.RevokedAt,
			},
			Version: 1,
		})
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke device")
	}
	if revoked == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "device token not found")
	}
	return nil
}

func (s *service) ListActive(ctx context.Context, userID uuid.UUID) ([]models.DeviceToken, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	rows, err := s.repo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list device tokens")
	}
	return rows, nil
}
