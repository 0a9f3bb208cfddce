package functions

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
	"github.com/alanwtom/travora-backend/pkg/logger"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "functions-test", Level: zerolog.ErrorLevel})
	c, err := NewClient(config.FunctionsConfig{
		BaseURL:    baseURL,
		ServiceKey: "service-key",
		Timeout:    2 * time.Second,
	}, logg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestInvokePostsPayload(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	err := c.Invoke(context.Background(), "send-email-notification", map[string]any{
		"notification": map[string]any{"id": "n-1", "title": "Booking confirmed"},
	})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if gotPath != "/send-email-notification" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer service-key" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if _, ok := gotBody["notification"]; !ok {
		t.Fatalf("payload not forwarded: %v", gotBody)
	}
}

func TestInvokeRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	if err := c.Invoke(context.Background(), "send-email-notification", nil); err == nil {
		t.Fatalf("expected error for 502 response")
	}
}

func TestInvokeRequiresName(t *testing.T) {
	c := newTestClient(t, "http://functions.internal")
	if err := c.Invoke(context.Background(), "  ", nil); err == nil {
		t.Fatalf("expected error for empty function name")
	}
}
