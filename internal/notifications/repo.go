package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alanwtom/travora-backend/pkg/db/models"
	"github.com/alanwtom/travora-backend/pkg/enums"
	"github.com/alanwtom/travora-backend/pkg/pagination"
)

// Repository exposes persistence helpers for notifications and their
// delivery history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) error
	Get(ctx context.Context, userID, notificationID uuid.UUID) (*models.Notification, error)
	GetByID(ctx context.Context, notificationID uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, notificationID uuid.UUID) (bool, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
	ListPending(ctx context.Context, limit int) ([]models.Notification, error)
	UpdateDeliveryState(ctx context.Context, notification *models.Notification) error
	AppendHistory(ctx context.Context, entry *models.DeliveryHistory) error
	ListHistory(ctx context.Context, notificationID uuid.UUID) ([]models.DeliveryHistory, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listNotificationsParams struct {
	UserID     uuid.UUID
	Limit      int
	Cursor     *pagination.Cursor
	UnreadOnly bool
	Category   *enums.NotificationCategory
}

type notificationMarkResult struct {
	Updated bool
	Found   bool
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *repositoryImpl) Get(ctx context.Context, userID, notificationID uuid.UUID) (*models.Notification, error) {
	var row models.Notification
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) GetByID(ctx context.Context, notificationID uuid.UUID) (*models.Notification, error) {
	var row models.Notification
	err := r.db.WithContext(ctx).
		Where("id = ?", notificationID).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", params.UserID)
	if params.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if params.Category != nil {
		query = query.Where("category = ?", *params.Category)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, nil, err
	}

	if len(notifications) > normalized {
		notifications = notifications[:normalized]
		last := notifications[normalized-1]
		return notifications, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return notifications, nil, nil
}

func (r *repositoryImpl) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", notificationID, userID).
		UpdateColumn("read_at", now)
	if result.Error != nil {
		return notificationMarkResult{}, result.Error
	}

	mark := notificationMarkResult{Updated: result.RowsAffected > 0}
	if result.RowsAffected > 0 {
		mark.Found = true
		return mark, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Count(&count).Error; err != nil {
		return notificationMarkResult{}, err
	}
	mark.Found = count > 0
	return mark, nil
}

func (r *repositoryImpl) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		UpdateColumn("read_at", now)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repositoryImpl) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) Delete(ctx context.Context, userID, notificationID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteOlderThan removes notifications past the retention window. History
// rows follow via the cascading foreign key.
func (r *repositoryImpl) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	result := conn.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListPending returns still-pending rows oldest first, used to recover
// in-flight work after a worker restart.
func (r *repositoryImpl) ListPending(ctx context.Context, limit int) ([]models.Notification, error) {
	var rows []models.Notification
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// UpdateDeliveryState writes back the columns the delivery queue owns.
func (r *repositoryImpl) UpdateDeliveryState(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", notification.ID).
		Updates(map[string]any{
			"status":       notification.Status,
			"push_sent":    notification.PushSent,
			"email_sent":   notification.EmailSent,
			"in_app_shown": notification.InAppShown,
			"sent_at":      notification.SentAt,
			"delivered_at": notification.DeliveredAt,
			"updated_at":   time.Now().UTC(),
		}).Error
}

func (r *repositoryImpl) AppendHistory(ctx context.Context, entry *models.DeliveryHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repositoryImpl) ListHistory(ctx context.Context, notificationID uuid.UUID) ([]models.DeliveryHistory, error) {
	var rows []models.DeliveryHistory
	err := r.db.WithContext(ctx).
		Where("notification_id = ?", notificationID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
