package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/alanwtom/travora-backend/api/middleware"
	"github.com/alanwtom/travora-backend/internal/notifications"
	"github.com/alanwtom/travora-backend/pkg/db/models"
	"github.com/alanwtom/travora-backend/pkg/logger"
)

type testNotificationsService struct {
	listFn        func(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error)
	markReadFn    func(ctx context.Context, userID, notificationID uuid.UUID) error
	markAllReadFn func(ctx context.Context, userID uuid.UUID) (int64, error)
	countUnreadFn func(ctx context.Context, userID uuid.UUID) (int64, error)
	deleteFn      func(ctx context.Context, userID, notificationID uuid.UUID) error
	deleteAllFn   func(ctx context.Context, userID uuid.UUID) (int64, error)
	historyFn     func(ctx context.Context, userID, notificationID uuid.UUID) ([]models.DeliveryHistory, error)
}

func (s *testNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params)
	}
	return &notifications.ListResult{}, nil
}

func (s *testNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if s.markReadFn != nil {
		return s.markReadFn(ctx, userID, notificationID)
	}
	return nil
}

func (s *testNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if s.markAllReadFn != nil {
		return s.markAllReadFn(ctx, userID)
	}
	return 0, nil
}

func (s *testNotificationsService) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	if s.countUnreadFn != nil {
		return s.countUnreadFn(ctx, userID)
	}
	return 0, nil
}

func (s *testNotificationsService) Delete(ctx context.Context, userID, notificationID uuid.UUID) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, userID, notificationID)
	}
	return nil
}

func (s *testNotificationsService) DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	if s.deleteAllFn != nil {
		return s.deleteAllFn(ctx, userID)
	}
	return 0, nil
}

func (s *testNotificationsService) History(ctx context.Context, userID, notificationID uuid.UUID) ([]models.DeliveryHistory, error) {
	if s.historyFn != nil {
		return s.historyFn(ctx, userID, notificationID)
	}
	return nil, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func authedRequest(method, target string, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestListNotificationsParsesQuery(t *testing.T) {
	userID := uuid.New()
	var got notifications.ListParams
	svc := &testNotificationsService{
		listFn: func(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
			got = params
			return &notifications.ListResult{}, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/notifications?limit=25&unreadOnly=true&category=booking&cursor=abc", userID)
	resp := httptest.NewRecorder()
	ListNotifications(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if got.UserID != userID {
		t.Fatalf("unexpected user %s", got.UserID)
	}
	if got.Limit != 25 || !got.UnreadOnly || got.Category != "booking" || got.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", got)
	}
}

func TestListNotificationsRejectsBadLimit(t *testing.T) {
	req := authedRequest(http.MethodGet, "/api/v1/notifications?limit=-2", uuid.New())
	resp := httptest.NewRecorder()
	ListNotifications(&testNotificationsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestMarkNotificationReadSuccess(t *testing.T) {
	userID := uuid.New()
	notificationID := uuid.New()
	called := false
	svc := &testNotificationsService{
		markReadFn: func(ctx context.Context, uid, nid uuid.UUID) error {
			called = true
			if uid != userID {
				t.Fatalf("unexpected user %s", uid)
			}
			if nid != notificationID {
				t.Fatalf("unexpected notification %s", nid)
			}
			return nil
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/notifications/"+notificationID.String()+"/read", userID)
	req = addRouteParam(req, "notificationId", notificationID.String())
	resp := httptest.NewRecorder()
	MarkNotificationRead(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["status"] != "read" {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestMarkNotificationReadMissingUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+uuid.NewString()+"/read", nil)
	req = addRouteParam(req, "notificationId", uuid.NewString())
	resp := httptest.NewRecorder()
	MarkNotificationRead(&testNotificationsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestMarkNotificationReadInvalidID(t *testing.T) {
	req := authedRequest(http.MethodPost, "/api/v1/notifications/invalid/read", uuid.New())
	req = addRouteParam(req, "notificationId", "invalid")
	resp := httptest.NewRecorder()
	MarkNotificationRead(&testNotificationsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestMarkAllNotificationsReadSuccess(t *testing.T) {
	userID := uuid.New()
	called := false
	svc := &testNotificationsService{
		markAllReadFn: func(ctx context.Context, uid uuid.UUID) (int64, error) {
			called = true
			if uid != userID {
				t.Fatalf("unexpected user %s", uid)
			}
			return 5, nil
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/notifications/read-all", userID)
	resp := httptest.NewRecorder()
	MarkAllNotificationsRead(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
	var envelope struct {
		Data map[string]float64 `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["updated"] != 5 {
		t.Fatalf("expected updated=5 got %v", envelope.Data["updated"])
	}
}

func TestUnreadNotificationCount(t *testing.T) {
	svc := &testNotificationsService{
		countUnreadFn: func(ctx context.Context, uid uuid.UUID) (int64, error) {
			return 3, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/notifications/unread-count", uuid.New())
	resp := httptest.NewRecorder()
	UnreadNotificationCount(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data map[string]float64 `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["unread"] != 3 {
		t.Fatalf("expected unread=3 got %v", envelope.Data["unread"])
	}
}

func TestDeleteAllNotifications(t *testing.T) {
	userID := uuid.New()
	svc := &testNotificationsService{
		deleteAllFn: func(ctx context.Context, uid uuid.UUID) (int64, error) {
			if uid != userID {
				t.Fatalf("unexpected user %s", uid)
			}
			return 7, nil
		},
	}

	req := authedRequest(http.MethodDelete, "/api/v1/notifications", userID)
	resp := httptest.NewRecorder()
	DeleteAllNotifications(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data map[string]float64 `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["deleted"] != 7 {
		t.Fatalf("expected deleted=7 got %v", envelope.Data["deleted"])
	}
}

func TestNotificationHistory(t *testing.T) {
	notificationID := uuid.New()
	svc := &testNotificationsService{
		historyFn: func(ctx context.Context, uid, nid uuid.UUID) ([]models.DeliveryHistory, error) {
			if nid != notificationID {
				t.Fatalf("unexpected notification %s", nid)
			}
			return []models.DeliveryHistory{{}}, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/notifications/"+notificationID.String()+"/history", uuid.New())
	req = addRouteParam(req, "notificationId", notificationID.String())
	resp := httptest.NewRecorder()
	NotificationHistory(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}
