package profiles

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alanwtom/travora-backend/pkg/db/models"
)

// Repository exposes persistence helpers for profiles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateSettings(ctx context.Context, userID uuid.UUID, columns map[string]any) (bool, error)
	ClearExpiredMutes(ctx context.Context, now time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a profile repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var row models.Profile
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) UpdateSettings(ctx context.Context, userID uuid.UUID, columns map[string]any) (bool, error) {
	columns["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", userID).
		Updates(columns)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ClearExpiredMutes resets mute flags whose expiry has passed. EffectiveMuted
// already treats them as unmuted; this keeps the stored rows honest.
func (r *repositoryImpl) ClearExpiredMutes(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("notification_muted = ? AND notification_mute_until IS NOT NULL AND notification_mute_until <= ?", true, now).
		Updates(map[string]any{
			"notification_muted":      false,
			"notification_mute_until": nil,
			"updated_at":              now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
