package devices

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alanwtom/travora-backend/pkg/db/models"
)

// Repository exposes persistence helpers for device push tokens.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, token *models.DeviceToken) error
	GetByToken(ctx context.Context, token string) (*models.DeviceToken, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]models.DeviceToken, error)
	Revoke(ctx context.Context, userID uuid.UUID, token string, now time.Time) (*models.DeviceToken, error)
	RevokeByToken(ctx context.Context, token string, now time.Time) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a device token repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// Upsert re-registers a known token in place, clearing any prior revocation.
// Tokens can move between accounts when a device changes hands, so the owner
// is overwritten too.
func (r *repositoryImpl) Upsert(ctx context.Context, token *models.DeviceToken) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "token"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"user_id", "platform", "revoked_at", "updated_at",
			}),
		}).
		Create(token).Error
}

func (r *repositoryImpl) GetByToken(ctx context.Context, token string) (*models.DeviceToken, error) {
	var row models.DeviceToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]models.DeviceToken, error) {
	var rows []models.DeviceToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) Revoke(ctx context.Context, userID uuid.UUID, token string, now time.Time) (*models.DeviceToken, error) {
	var row models.DeviceToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND token = ? AND revoked_at IS NULL", userID, token).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Model(&models.DeviceToken{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{"revoked_at": now, "updated_at": now}).Error; err != nil {
		return nil, err
	}
	row.RevokedAt = &now
	return &row, nil
}

// RevokeByToken retires a token regardless of owner. Used when the push
// gateway reports the device as no longer registered.
func (r *repositoryImpl) RevokeByToken(ctx context.Context, token string, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.DeviceToken{}).
		Where("token = ? AND revoked_at IS NULL", token).
		Updates(map[string]any{"revoked_at": now, "updated_at": now})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
