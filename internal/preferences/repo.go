package preferences

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alanwtom/travora-backend/pkg/db/models"
	"github.com/alanwtom/travora-backend/pkg/enums"
)

// Repository exposes persistence helpers for per-category channel toggles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.NotificationPreference, error)
	GetByUserCategory(ctx context.Context, userID uuid.UUID, category enums.NotificationCategory) (*models.NotificationPreference, error)
	Upsert(ctx context.Context, pref *models.NotificationPreference) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a preference repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.NotificationPreference, error) {
	var rows []models.NotificationPreference
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("category ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) GetByUserCategory(ctx context.Context, userID uuid.UUID, category enums.NotificationCategory) (*models.NotificationPreference, error) {
	var row models.NotificationPreference
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND category = ?", userID, category).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) Upsert(ctx context.Context, pref *models.NotificationPreference) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "category"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"push_enabled", "email_enabled", "in_app_enabled", "updated_at",
			}),
		}).
		Create(pref).Error
}
