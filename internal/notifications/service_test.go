package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alanwtom/travora-backend/pkg/db/models"
	"github.com/alanwtom/travora-backend/pkg/enums"
	pkgerrors "github.com/alanwtom/travora-backend/pkg/errors"
	paginationpkg "github.com/alanwtom/travora-backend/pkg/pagination"
)

type fakeRepository struct {
	createFn      func(ctx context.Context, notification *models.Notification) error
	listFn        func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error)
	getFn         func(ctx context.Context, userID, notificationID uuid.UUID) (*models.Notification, error)
	markReadFn    func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error)
	markAllReadFn func(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
	countUnreadFn func(ctx context.Context, userID uuid.UUID) (int64, error)
	deleteFn      func(ctx context.Context, userID, notificationID uuid.UUID) (bool, error)
	deleteAllFn   func(ctx context.Context, userID uuid.UUID) (int64, error)
	listHistoryFn func(ctx context.Context, notificationID uuid.UUID) ([]models.DeliveryHistory, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, notification *models.Notification) error {
	if f.createFn != nil {
		return f.createFn(ctx, notification)
	}
	return nil
}

func (f *fakeRepository) Get(ctx context.Context, userID, notificationID uuid.UUID) (*models.Notification, error) {
	if f.getFn != nil {
		return f.getFn(ctx, userID, notificationID)
	}
	return nil, nil
}

func (f *fakeRepository) GetByID(ctx context.Context, notificationID uuid.UUID) (*models.Notification, error) {
	return nil, nil
}

func (f *fakeRepository) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil, nil
}

func (f *fakeRepository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, userID, notificationID, now)
	}
	return notificationMarkResult{}, nil
}

func (f *fakeRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	if f.markAllReadFn != nil {
		return f.markAllReadFn(ctx, userID, now)
	}
	return 0, nil
}

func (f *fakeRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	if f.countUnreadFn != nil {
		return f.countUnreadFn(ctx, userID)
	}
	return 0, nil
}

func (f *fakeRepository) Delete(ctx context.Context, userID, notificationID uuid.UUID) (bool, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, userID, notificationID)
	}
	return false, nil
}

func (f *fakeRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	if f.deleteAllFn != nil {
		return f.deleteAllFn(ctx, userID)
	}
	return 0, nil
}

func (f *fakeRepository) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeRepository) ListPending(ctx context.Context, limit int) ([]models.Notification, error) {
	return nil, nil
}

func (f *fakeRepository) UpdateDeliveryState(ctx context.Context, notification *models.Notification) error {
	return nil
}

func (f *fakeRepository) AppendHistory(ctx context.Context, entry *models.DeliveryHistory) error {
	return nil
}

func (f *fakeRepository) ListHistory(ctx context.Context, notificationID uuid.UUID) ([]models.DeliveryHistory, error) {
	if f.listHistoryFn != nil {
		return f.listHistoryFn(ctx, notificationID)
	}
	return nil, nil
}

func newServiceWithRepo(repo Repository) Service {
	svc, _ := NewService(repo)
	return svc
}

func TestService_ListNotifications(t *testing.T) {
	first := models.Notification{ID: uuid.New(), CreatedAt: time.Now()}
	next := models.Notification{ID: uuid.New(), CreatedAt: time.Now().Add(-time.Hour)}

	repo := &fakeRepository{
		listFn: func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
			if params.Limit != 1 {
				t.Fatalf("unexpected limit %d", params.Limit)
			}
			return []models.Notification{first}, &paginationpkg.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
		},
	}

	svc := newServiceWithRepo(repo)
	result, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Limit: 1})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(result.Items))
	}
	if result.Cursor == "" {
		t.Fatal("expected cursor for next page")
	}
	decoded, err := paginationpkg.ParseCursor(result.Cursor)
	if err != nil {
		t.Fatalf("invalid cursor %q: %v", result.Cursor, err)
	}
	if decoded.ID != next.ID {
		t.Fatalf("expected cursor id %s got %s", next.ID, decoded.ID)
	}
}

func TestService_ListNotificationsInvalidCursor(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{})
	_, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Cursor: "bad"})
	if err == nil {
		t.Fatal("expected error for invalid cursor")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_ListNotificationsInvalidCategory(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{})
	_, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Category: "sports"})
	if err == nil {
		t.Fatal("expected error for unknown category")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_ListNotificationsPassesCategoryFilter(t *testing.T) {
	var captured listNotificationsParams
	repo := &fakeRepository{
		listFn: func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
			captured = params
			return nil, nil, nil
		},
	}
	svc := newServiceWithRepo(repo)
	_, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Category: "promotions", UnreadOnly: true})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if captured.Category == nil || *captured.Category != enums.CategoryPromotions {
		t.Fatalf("expected promotions filter, got %v", captured.Category)
	}
	if !captured.UnreadOnly {
		t.Fatal("expected unread filter to pass through")
	}
}

func TestService_MarkRead(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
			return notificationMarkResult{Found: true, Updated: true}, nil
		},
	}
	svc := newServiceWithRepo(repo)
	if err := svc.MarkRead(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("unexpected mark read error: %v", err)
	}
}

func TestService_MarkReadNotFound(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
			return notificationMarkResult{Found: false}, nil
		},
	}
	svc := newServiceWithRepo(repo)
	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	if err == nil {
		t.Fatal("expected not found error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestService_MarkAllRead(t *testing.T) {
	repo := &fakeRepository{
		markAllReadFn: func(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
			return 3, nil
		},
	}
	svc := newServiceWithRepo(repo)
	count, err := svc.MarkAllRead(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected mark all read error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 updated rows, got %d", count)
	}
}

func TestService_MarkAllReadError(t *testing.T) {
	repo := &fakeRepository{
		markAllReadFn: func(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
			return 0, errors.New("boom")
		},
	}
	svc := newServiceWithRepo(repo)
	if _, err := svc.MarkAllRead(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error")
	}
}

func TestService_CountUnread(t *testing.T) {
	repo := &fakeRepository{
		countUnreadFn: func(ctx context.Context, userID uuid.UUID) (int64, error) {
			return 7, nil
		},
	}
	svc := newServiceWithRepo(repo)
	count, err := svc.CountUnread(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected count error: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7, got %d", count)
	}
}

func TestService_DeleteNotFound(t *testing.T) {
	repo := &fakeRepository{
		deleteFn: func(ctx context.Context, userID, notificationID uuid.UUID) (bool, error) {
			return false, nil
		},
	}
	svc := newServiceWithRepo(repo)
	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	if err == nil {
		t.Fatal("expected not found error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestService_DeleteAll(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepository{
		deleteAllFn: func(ctx context.Context, got uuid.UUID) (int64, error) {
			if got != userID {
				t.Fatalf("unexpected user id %s", got)
			}
			return 4, nil
		},
	}
	svc := newServiceWithRepo(repo)

	count, err := svc.DeleteAll(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 deletions, got %d", count)
	}

	if _, err := svc.DeleteAll(context.Background(), uuid.Nil); err == nil {
		t.Fatal("expected validation error for nil user")
	}
}

func TestService_HistoryChecksOwnership(t *testing.T) {
	owner := uuid.New()
	notificationID := uuid.New()
	repo := &fakeRepository{
		getFn: func(ctx context.Context, userID, id uuid.UUID) (*models.Notification, error) {
			if userID != owner {
				return nil, nil
			}
			return &models.Notification{ID: id, UserID: userID}, nil
		},
		listHistoryFn: func(ctx context.Context, id uuid.UUID) ([]models.DeliveryHistory, error) {
			return []models.DeliveryHistory{{NotificationID: id, Channel: enums.ChannelPush, Attempt: 1, Status: enums.StatusSent}}, nil
		},
	}
	svc := newServiceWithRepo(repo)

	rows, err := svc.History(context.Background(), owner, notificationID)
	if err != nil {
		t.Fatalf("unexpected history error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(rows))
	}

	_, err = svc.History(context.Background(), uuid.New(), notificationID)
	if err == nil {
		t.Fatal("expected not found for non-owner")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
