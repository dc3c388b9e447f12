package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/linkmind/linkmind/internal/logger"
)

// PushClient talks to the external push-delivery service over HTTP. An
// empty base URL disables it: Send becomes a logged no-op reporting zero
// deliveries, so environments without push configured still run.
type PushClient struct {
	baseURL string
	token   string
	client  *http.Client
	logger  logger.Logger
	enabled bool
}

// Options configures the push client.
type Options struct {
	BaseURL string        // delivery service API, ex: "https://push.internal"
	Token   string        // bearer token for the delivery service
	Timeout time.Duration // per-request timeout
}

func NewPushClient(opts Options, log logger.Logger) *PushClient {
	c := &PushClient{
		baseURL: opts.BaseURL,
		token:   opts.Token,
		client:  &http.Client{Timeout: opts.Timeout},
		logger:  log,
		enabled: opts.BaseURL != "",
	}
	if !c.enabled {
		log.Warn("push delivery not configured, notifications will be dropped")
	}
	return c
}

// Enabled reports whether a delivery service is configured.
func (c *PushClient) Enabled() bool {
	return c.enabled
}

type sendRequest struct {
	UserID string            `json:"user_id"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}

// Send delivers a message to all of userID's devices and returns the
// per-device counts reported by the delivery service.
func (c *PushClient) Send(ctx context.Context, userID, title, body string, data map[string]string) (Result, error) {
	if !c.enabled {
		c.logger.Debug("push delivery disabled, dropping notification",
			logger.String("user_id", userID),
			logger.String("title", title))
		return Result{Message: "push delivery disabled"}, nil
	}

	payload, err := json.Marshal(sendRequest{
		UserID: userID,
		Title:  title,
		Body:   body,
		Data:   data,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/send", bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("push delivery failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("push delivery returned %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("failed to decode push response: %w", err)
	}

	c.logger.Debug("push delivered",
		logger.String("user_id", userID),
		logger.Int("success", result.SuccessCount),
		logger.Int("failure", result.FailureCount))
	return result, nil
}
