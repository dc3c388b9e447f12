package notify

import "context"

// Result reports per-device delivery counts from the push service.
type Result struct {
	SuccessCount int      `json:"success_count"`
	FailureCount int      `json:"failure_count"`
	Message      string   `json:"message,omitempty"`
	FailedTokens []string `json:"failed_tokens,omitempty"`
}

// Delivered reports whether at least one device received the message.
func (r Result) Delivered() bool {
	return r.SuccessCount > 0
}

// Sender fans a (title, body, data) message out to every device a user has
// registered. Delivery is best effort: callers log failures and move on,
// they never fail their own operation over an undelivered push.
type Sender interface {
	Send(ctx context.Context, userID, title, body string, data map[string]string) (Result, error)
}
