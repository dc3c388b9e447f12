package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/linkmind/linkmind/internal/logger"
)

func TestPushClientSend(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/send" {
			t.Errorf("path = %s, want /v1/send", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer push-token" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(Result{SuccessCount: 2, FailureCount: 1, FailedTokens: []string{"tok-dead"}})
	}))
	defer srv.Close()

	c := NewPushClient(Options{BaseURL: srv.URL, Token: "push-token", Timeout: 2 * time.Second}, logger.New("error", false))

	result, err := c.Send(context.Background(), "user-1", "Time to read!", "Check out: Foo", map[string]string{"type": "bookmark_reminder"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if result.SuccessCount != 2 || result.FailureCount != 1 {
		t.Errorf("Send() result = %+v", result)
	}
	if !result.Delivered() {
		t.Error("Delivered() = false, want true")
	}
	if got.UserID != "user-1" || got.Title != "Time to read!" {
		t.Errorf("request = %+v", got)
	}
	if got.Data["type"] != "bookmark_reminder" {
		t.Errorf("data = %v", got.Data)
	}
}

func TestPushClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewPushClient(Options{BaseURL: srv.URL, Timeout: 2 * time.Second}, logger.New("error", false))
	if _, err := c.Send(context.Background(), "user-1", "t", "b", nil); err == nil {
		t.Error("Send() error = nil, want error on 503")
	}
}

func TestPushClientDisabled(t *testing.T) {
	c := NewPushClient(Options{}, logger.New("error", false))

	if c.Enabled() {
		t.Error("Enabled() = true for unconfigured client")
	}

	result, err := c.Send(context.Background(), "user-1", "t", "b", nil)
	if err != nil {
		t.Fatalf("Send() on disabled client error = %v", err)
	}
	if result.Delivered() {
		t.Error("disabled client reported a delivery")
	}
}
