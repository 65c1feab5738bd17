// Package sheets delivers intake payloads to a spreadsheet-backed web app endpoint.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"pharmintake/internal/config"
	"pharmintake/internal/logger"
	"pharmintake/internal/model"
)

// ErrMissingURL is returned by New when no endpoint URL is configured.
var ErrMissingURL = errors.New("sheet endpoint url is required")

// StatusError reports a non-success response from the endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("sheet endpoint returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("sheet endpoint returned status %d: %s", e.StatusCode, e.Body)
}

// Client posts each payload as one JSON document.
type Client struct {
	url        string
	strict     bool
	httpClient *http.Client
}

// New builds a Client from cfg.
func New(cfg config.SheetConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		url:    cfg.URL,
		strict: cfg.StrictStatus,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

// Deliver sends p in a single POST. Transport failures are always returned. A status of
// 400 or above is an error only in strict mode; otherwise it is logged and ignored.
func (c *Client) Deliver(ctx context.Context, p *model.Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	if c.strict {
		return statusErr
	}
	logger.FromContext(ctx).Warn("sheet endpoint rejected payload",
		"serial_number", p.SerialNumber,
		"status", resp.StatusCode,
	)
	return nil
}
