package functions

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
	errBaseURLRequired = errors.New("functions base url is required")
	errLoggerRequired  = errors.New("functions logger is required")
	errNameRequired    = errors.New("function name is required")
)

// Client invokes hosted functions over HTTP. The only caller today is the
// email sender, which delegates rendering and SMTP to the
// send-email-notification function.
type Client struct {
	httpClient *http.Client
	baseURL    string
	serviceKey string
	logger     *logger.Logger
}

// NewClient validates the function endpoint configuration and returns a client.
func NewClient(cfg config.FunctionsConfig, logg *logger.Logger) (*Client, error) {
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
		serviceKey: strings.TrimSpace(cfg.ServiceKey),
		logger:     logg,
	}, nil
}

// Invoke posts the payload to the named function. A non-2xx response is an
// error; the response body is discarded beyond error reporting.
func (c *Client) Invoke(ctx context.Context, name string, payload any) error {
	name = strings.Trim(strings.TrimSpace(name), "/")
	if name == "" {
		return errNameRequired
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal function payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+name, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build function request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.serviceKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	}

	ctx = c.logger.WithFields(ctx, map[string]any{"function": name})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error(ctx, "function invoke failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("invoke %s", name))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("function %s returned %d", name, resp.StatusCode)
		c.logger.Error(ctx, "function invoke rejected", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("invoke %s", name))
	}

	c.logger.Info(ctx, "function invoked")
	return nil
}
