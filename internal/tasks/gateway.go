package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/linkmind/linkmind/internal/logger"
)

// CallbackPath is the fixed path on this backend that fired tasks invoke.
const CallbackPath = "/notifications/send-bookmark-reminder"

// Outcome describes how a schedule or cancel request resolved. Idempotent
// conflicts (already exists, not found) are outcomes, not errors.
type Outcome string

const (
	OutcomeCreated       Outcome = "created"
	OutcomeAlreadyExists Outcome = "already_exists"
	OutcomeDeleted       Outcome = "deleted"
	OutcomeNotFound      Outcome = "not_found"
	OutcomeDisabled      Outcome = "disabled"
)

// Payload is the body a fired task delivers back to the callback endpoint.
type Payload struct {
	UserID     string `json:"user_id"`
	BookmarkID string `json:"bookmark_id"`
}

// Options configures the gateway. An empty BaseURL or CallbackBaseURL
// disables it: every call becomes a no-op reporting OutcomeDisabled and
// reminder delivery falls back to the due sweep.
type Options struct {
	BaseURL         string        // external named-task scheduler API, ex: "https://tasks.internal"
	Queue           string        // queue namespace, ex: "bookmark-reminders"
	CallbackBaseURL string        // public base URL of this backend
	Secret          []byte        // signs the callback credential carried by each task
	Timeout         time.Duration // per-request timeout
	Now             func() time.Time
}

// Gateway wraps the external named-task scheduler. It is an explicitly
// constructed dependency: no global client handle, no lazy init. The
// scheduler has no update primitive, so the only operations are Schedule
// and Cancel; replacing a task is cancel-then-schedule under the same name.
type Gateway struct {
	baseURL     string
	queue       string
	callbackURL string
	secret      []byte
	client      *http.Client
	logger      logger.Logger
	now         func() time.Time
	enabled     bool
}

// New builds a Gateway. The configuration check happens here, once: a
// partially configured gateway stays disabled for its whole lifetime.
func New(opts Options, log logger.Logger) *Gateway {
	g := &Gateway{
		baseURL:     opts.BaseURL,
		queue:       opts.Queue,
		callbackURL: opts.CallbackBaseURL,
		secret:      opts.Secret,
		client:      &http.Client{Timeout: opts.Timeout},
		logger:      log,
		now:         opts.Now,
		enabled:     opts.BaseURL != "" && opts.CallbackBaseURL != "" && opts.Queue != "",
	}
	if g.now == nil {
		g.now = time.Now
	}
	if !g.enabled {
		log.Warn("task scheduler not configured, reminders rely on the due sweep only")
	}
	return g
}

// Enabled reports whether the external scheduler is configured. Callers
// must have a working fallback (the sweep) when this is false.
func (g *Gateway) Enabled() bool {
	return g.enabled
}

type createTaskRequest struct {
	Name         string     `json:"name"`
	URL          string     `json:"url"`
	Payload      Payload    `json:"payload"`
	ScheduleTime *time.Time `json:"schedule_time,omitempty"`
	AuthToken    string     `json:"auth_token"`
}

// Schedule asks the scheduler to create a task firing at fireAt under the
// given dedup name. A name conflict means a previous request already
// created the task and is reported as success: creation is idempotent
// because the naming scheme is deterministic. fireAt at or before now
// means "fire as soon as possible".
func (g *Gateway) Schedule(ctx context.Context, name string, fireAt time.Time, p Payload) (Outcome, error) {
	if !g.enabled {
		return OutcomeDisabled, nil
	}
	if !ValidTaskName(name) {
		return "", fmt.Errorf("invalid task name %q", name)
	}

	credential, err := g.signCallbackCredential(p.UserID, fireAt)
	if err != nil {
		return "", fmt.Errorf("failed to sign callback credential: %w", err)
	}

	req := createTaskRequest{
		Name:      name,
		URL:       g.callbackURL + CallbackPath,
		Payload:   p,
		AuthToken: credential,
	}
	if fireAt.After(g.now()) {
		req.ScheduleTime = &fireAt
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/queues/%s/tasks", g.baseURL, url.PathEscape(g.queue))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build task request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("scheduler create failed: %w", err)
	}
	defer drainAndClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusConflict:
		// A live task with this name already exists. That is the invariant
		// we want, so report success.
		g.logger.Debug("task already exists", logger.String("task", name))
		return OutcomeAlreadyExists, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		g.logger.Info("task scheduled",
			logger.String("task", name),
			logger.Time("fire_at", fireAt))
		return OutcomeCreated, nil
	default:
		return "", fmt.Errorf("scheduler create returned %d", resp.StatusCode)
	}
}

// Cancel asks the scheduler to delete the named task. A missing task has
// either already fired or was never created; both leave the system in the
// desired state, so not-found is success.
func (g *Gateway) Cancel(ctx context.Context, name string) (Outcome, error) {
	if !g.enabled {
		return OutcomeDisabled, nil
	}
	if !ValidTaskName(name) {
		return "", fmt.Errorf("invalid task name %q", name)
	}

	endpoint := fmt.Sprintf("%s/v1/queues/%s/tasks/%s", g.baseURL, url.PathEscape(g.queue), url.PathEscape(name))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build cancel request: %w", err)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("scheduler delete failed: %w", err)
	}
	defer drainAndClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		g.logger.Debug("task not found, already fired or never created",
			logger.String("task", name))
		return OutcomeNotFound, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		g.logger.Info("task cancelled", logger.String("task", name))
		return OutcomeDeleted, nil
	default:
		return "", fmt.Errorf("scheduler delete returned %d", resp.StatusCode)
	}
}

// signCallbackCredential mints the bearer token the scheduler presents
// when it invokes the fire callback. The audience pins it to this backend
// and the expiry outlives the fire time by enough to cover retries.
func (g *Gateway) signCallbackCredential(userID string, fireAt time.Time) (string, error) {
	now := g.now()
	exp := fireAt.Add(48 * time.Hour)
	if exp.Before(now) {
		exp = now.Add(48 * time.Hour)
	}

	claims := jwt.RegisteredClaims{
		Issuer:    "linkmind-tasks",
		Subject:   userID,
		Audience:  jwt.ClaimStrings{g.callbackURL},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}

func drainAndClose(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 4096))
	_ = rc.Close()
}
