package tasks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/linkmind/linkmind/internal/logger"
)

func testGateway(t *testing.T, baseURL string, now time.Time) *Gateway {
	t.Helper()
	return New(Options{
		BaseURL:         baseURL,
		Queue:           "bookmark-reminders",
		CallbackBaseURL: "https://api.linkmind.test",
		Secret:          []byte("test-secret"),
		Timeout:         2 * time.Second,
		Now:             func() time.Time { return now },
	}, logger.New("error", false))
}

func TestGatewaySchedule(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		status      int
		fireAt      time.Time
		wantOutcome Outcome
		wantErr     bool
		wantDelayed bool // schedule_time present in request body
	}{
		{
			name:        "created",
			status:      http.StatusCreated,
			fireAt:      now.Add(24 * time.Hour),
			wantOutcome: OutcomeCreated,
			wantDelayed: true,
		},
		{
			name:        "duplicate name is success",
			status:      http.StatusConflict,
			fireAt:      now.Add(24 * time.Hour),
			wantOutcome: OutcomeAlreadyExists,
			wantDelayed: true,
		},
		{
			name:        "past fire time fires asap",
			status:      http.StatusCreated,
			fireAt:      now.Add(-time.Minute),
			wantOutcome: OutcomeCreated,
			wantDelayed: false,
		},
		{
			name:    "server error is an error",
			status:  http.StatusInternalServerError,
			fireAt:  now.Add(24 * time.Hour),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got createTaskRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("method = %s, want POST", r.Method)
				}
				if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
					t.Errorf("failed to decode request body: %v", err)
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			g := testGateway(t, srv.URL, now)
			outcome, err := g.Schedule(context.Background(), "reminder-abc-1", tt.fireAt, Payload{
				UserID:     "user-1",
				BookmarkID: "bm-1",
			})

			if tt.wantErr {
				if err == nil {
					t.Fatal("Schedule() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Schedule() error = %v", err)
			}
			if outcome != tt.wantOutcome {
				t.Errorf("Schedule() outcome = %q, want %q", outcome, tt.wantOutcome)
			}
			if got.Name != "reminder-abc-1" {
				t.Errorf("task name = %q, want reminder-abc-1", got.Name)
			}
			if got.URL != "https://api.linkmind.test"+CallbackPath {
				t.Errorf("callback url = %q", got.URL)
			}
			if got.AuthToken == "" {
				t.Error("auth token missing from task request")
			}
			if delayed := got.ScheduleTime != nil; delayed != tt.wantDelayed {
				t.Errorf("schedule_time present = %v, want %v", delayed, tt.wantDelayed)
			}
		})
	}
}

func TestGatewayCancel(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		wantOutcome Outcome
		wantErr     bool
	}{
		{"deleted", http.StatusNoContent, OutcomeDeleted, false},
		{"missing task is success", http.StatusNotFound, OutcomeNotFound, false},
		{"server error is an error", http.StatusBadGateway, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete {
					t.Errorf("method = %s, want DELETE", r.Method)
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			g := testGateway(t, srv.URL, time.Now())
			outcome, err := g.Cancel(context.Background(), "reminder-abc-1")

			if tt.wantErr {
				if err == nil {
					t.Fatal("Cancel() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Cancel() error = %v", err)
			}
			if outcome != tt.wantOutcome {
				t.Errorf("Cancel() outcome = %q, want %q", outcome, tt.wantOutcome)
			}
		})
	}
}

func TestGatewayDisabled(t *testing.T) {
	g := New(Options{}, logger.New("error", false))

	if g.Enabled() {
		t.Error("Enabled() = true for unconfigured gateway")
	}

	outcome, err := g.Schedule(context.Background(), "reminder-abc-1", time.Now(), Payload{})
	if err != nil || outcome != OutcomeDisabled {
		t.Errorf("Schedule() on disabled gateway = (%q, %v), want (disabled, nil)", outcome, err)
	}

	outcome, err = g.Cancel(context.Background(), "reminder-abc-1")
	if err != nil || outcome != OutcomeDisabled {
		t.Errorf("Cancel() on disabled gateway = (%q, %v), want (disabled, nil)", outcome, err)
	}
}

func TestGatewayInvalidName(t *testing.T) {
	g := testGateway(t, "http://scheduler.test", time.Now())

	if _, err := g.Schedule(context.Background(), "bad name!", time.Now(), Payload{}); err == nil {
		t.Error("Schedule() with invalid name: error = nil, want error")
	}
	if _, err := g.Cancel(context.Background(), "bad name!"); err == nil {
		t.Error("Cancel() with invalid name: error = nil, want error")
	}
}
