package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/alanwtom/travora-backend/pkg/config"
	pkgerrors "github.com/alanwtom/travora-backend/pkg/errors"
	"github.com/alanwtom/travora-backend/pkg/logger"
)

var (
	errBaseURLRequired = errors.New("push base url is required")
	errLoggerRequired  = errors.New("push logger is required")
	errNoRecipients    = errors.New("push send requires at least one token")
)

// Message is one Expo push request. Tokens over the batch limit must be
// chunked by the caller; Send handles a single chunk.
type Message struct {
	Tokens   []string       `json:"-"`
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	Data     map[string]any `json:"data,omitempty"`
	Sound    string         `json:"sound,omitempty"`
	Priority string         `json:"priority,omitempty"`
}

// Ticket is Expo's per-token receipt for a push send.
type Ticket struct {
	Status  string        `json:"status"`
	ID      string        `json:"id,omitempty"`
	Message string        `json:"message,omitempty"`
	Details TicketDetails `json:"details"`
}

// TicketDetails carries the gateway's machine-readable rejection reason.
type TicketDetails struct {
	Error string `json:"error,omitempty"`
}

const ticketStatusError = "error"

// DeviceNotRegistered reports whether the ticket indicates a dead token that
// should be revoked rather than retried.
func (t Ticket) DeviceNotRegistered() bool {
	return t.Status == ticketStatusError && t.Details.Error == "DeviceNotRegistered"
}

// Client talks to the Expo push gateway with centralized auth, logging, and
// error mapping.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authToken  string
	logger     *logger.Logger
}

// NewClient validates the push gateway configuration and returns a client.
func NewClient(cfg config.PushConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    baseURL,
		authToken:  strings.TrimSpace(cfg.AuthToken),
		logger:     logg,
	}, nil
}

// Send delivers one message to the given tokens and returns one ticket per
// token, in request order.
func (c *Client) Send(ctx context.Context, msg Message) ([]Ticket, error) {
	if len(msg.Tokens) == 0 {
		return nil, errNoRecipients
	}

	payload := struct {
		To []string `json:"to"`
		Message
	}{To: msg.Tokens, Message: msg}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/push/send", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	ctx = c.logger.WithFields(ctx, map[string]any{
		"operation": "push_send",
		"tokens":    len(msg.Tokens),
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error(ctx, "push send request failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "push gateway unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read push response")
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("push gateway returned %d", resp.StatusCode)
		c.logger.Error(ctx, "push send rejected", err)
		return nil, pkgerrors.Wrap(codeForStatus(resp.StatusCode), err, "push send failed")
	}

	var parsed struct {
		Data []Ticket `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode push response")
	}

	c.logger.Info(ctx, "push send accepted")
	return parsed.Data, nil
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return pkgerrors.CodeUnauthorized
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}
