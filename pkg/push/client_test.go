package push

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/alanwtom/travora-backend/pkg/config"
	pkgerrors "github.com/alanwtom/travora-backend/pkg/errors"
	"github.com/alanwtom/travora-backend/pkg/logger"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "push-test", Level: zerolog.ErrorLevel})
	c, err := NewClient(config.PushConfig{
		BaseURL:   baseURL,
		AuthToken: "expo-token",
		Timeout:   2 * time.Second,
	}, logg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "push-test", Level: zerolog.ErrorLevel})
	if _, err := NewClient(config.PushConfig{}, logg); err == nil {
		t.Fatalf("expected error for empty base url")
	}
	if _, err := NewClient(config.PushConfig{BaseURL: "https://exp.host/--/api/v2"}, nil); err == nil {
		t.Fatalf("expected error for nil logger")
	}
}

func TestSendReturnsTickets(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/push/send" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer expo-token" {
			t.Errorf("unexpected auth header %q", auth)
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"status":"ok","id":"t-1"},{"status":"error","message":"dead","details":{"error":"DeviceNotRegistered"}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	tickets, err := c.Send(context.Background(), Message{
		Tokens:   []string{"ExponentPushToken[a]", "ExponentPushToken[b]"},
		Title:    "Booking confirmed",
		Body:     "Your trip to Lisbon is confirmed. See you soon!",
		Priority: "high",
		Sound:    "default",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(tickets) != 2 {
		t.Fatalf("expected 2 tickets, got %d", len(tickets))
	}
	if tickets[0].Status != "ok" || tickets[0].ID != "t-1" {
		t.Fatalf("unexpected first ticket %+v", tickets[0])
	}
	if !tickets[1].DeviceNotRegistered() {
		t.Fatalf("expected second ticket to flag dead device")
	}

	to, ok := gotBody["to"].([]any)
	if !ok || len(to) != 2 {
		t.Fatalf("request body missing to list: %v", gotBody)
	}
	if gotBody["title"] != "Booking confirmed" {
		t.Fatalf("unexpected title %v", gotBody["title"])
	}
}

func TestSendRequiresTokens(t *testing.T) {
	c := newTestClient(t, "https://exp.host/--/api/v2")
	if _, err := c.Send(context.Background(), Message{Title: "x"}); err == nil {
		t.Fatalf("expected error for empty token list")
	}
}

func TestSendMapsGatewayStatus(t *testing.T) {
	tests := []struct {
		status int
		code   pkgerrors.Code
	}{
		{http.StatusUnauthorized, pkgerrors.CodeUnauthorized},
		{http.StatusTooManyRequests, pkgerrors.CodeRateLimit},
		{http.StatusBadRequest, pkgerrors.CodeValidation},
		{http.StatusInternalServerError, pkgerrors.CodeDependency},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		}))
		c := newTestClient(t, srv.URL)
		_, err := c.Send(context.Background(), Message{Tokens: []string{"tok"}, Title: "x"})
		srv.Close()
		if err == nil {
			t.Fatalf("status %d: expected error", tt.status)
		}
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != tt.code {
			t.Fatalf("status %d: expected code %s, got %v", tt.status, tt.code, err)
		}
	}
}
