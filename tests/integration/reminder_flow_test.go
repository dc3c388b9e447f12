package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/linkmind/linkmind/internal/domain"
	"github.com/linkmind/linkmind/internal/logger"
	"github.com/linkmind/linkmind/internal/notify"
	"github.com/linkmind/linkmind/internal/reminder"
	"github.com/linkmind/linkmind/internal/tasks"
)

// fakeTaskAPI mimics the external named-task scheduler: named tasks with
// create-conflict and delete-missing semantics.
type fakeTaskAPI struct {
	mu    sync.Mutex
	tasks map[string]tasks.Payload
}

func newFakeTaskAPI() *fakeTaskAPI {
	return &fakeTaskAPI{tasks: make(map[string]tasks.Payload)}
}

func (f *fakeTaskAPI) handler() http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/queues/{queue}/tasks", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Name    string        `json:"name"`
			Payload tasks.Payload `json:"payload"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, exists := f.tasks[body.Name]; exists {
			w.WriteHeader(http.StatusConflict)
			return
		}
		f.tasks[body.Name] = body.Payload
		w.WriteHeader(http.StatusOK)
	})
	r.Delete("/v1/queues/{queue}/tasks/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, exists := f.tasks[name]; !exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(f.tasks, name)
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func (f *fakeTaskAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

func (f *fakeTaskAPI) payloadFor(name string) (tasks.Payload, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.tasks[name]
	return p, ok
}

// memStore is an in-memory reminder.Store and reminder.Locker.
type memStore struct {
	mu        sync.Mutex
	bookmarks map[string]*domain.Bookmark // userID/bookmarkID
	locks     map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		bookmarks: make(map[string]*domain.Bookmark),
		locks:     make(map[string]bool),
	}
}

func (m *memStore) key(userID, bookmarkID string) string { return userID + "/" + bookmarkID }

func (m *memStore) put(b *domain.Bookmark) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.bookmarks[m.key(b.UserID, b.ID)] = &cp
}

func (m *memStore) GetBookmark(_ context.Context, userID, bookmarkID string) (*domain.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookmarks[m.key(userID, bookmarkID)]
	if !ok {
		return nil, domain.ErrBookmarkNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) UpdateBookmark(_ context.Context, b *domain.Bookmark) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.bookmarks[m.key(b.UserID, b.ID)] = &cp
	return nil
}

func (m *memStore) ListUserIDs(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	var ids []string
	for key := range m.bookmarks {
		userID := strings.SplitN(key, "/", 2)[0]
		if !seen[userID] {
			seen[userID] = true
			ids = append(ids, userID)
		}
	}
	return ids, nil
}

func (m *memStore) DueBookmarks(_ context.Context, userID string, now time.Time) ([]*domain.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []*domain.Bookmark
	for _, b := range m.bookmarks {
		if b.UserID == userID && !b.IsRead && !b.NextReminderAt.After(now) {
			cp := *b
			due = append(due, &cp)
		}
	}
	return due, nil
}

func (m *memStore) TryLock(_ context.Context, name string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[name] {
		return false, nil
	}
	m.locks[name] = true
	return true, nil
}

func (m *memStore) Unlock(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, name)
	return nil
}

// pushRecorder mimics the push-delivery service and records what it sent.
type pushRecorder struct {
	mu   sync.Mutex
	sent []string // bodies
}

func (p *pushRecorder) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Body string `json:"body"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		p.mu.Lock()
		p.sent = append(p.sent, req.Body)
		p.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success_count":1,"failure_count":0}`))
	})
}

func (p *pushRecorder) bodies() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.sent...)
}

// TestReminderLifecycle runs the save-remind-read flow end to end against
// fake scheduler and push services: scheduling on create, delivery on
// fire, idempotent skip after read, and cancellation.
func TestReminderLifecycle(t *testing.T) {
	taskAPI := newFakeTaskAPI()
	taskSrv := httptest.NewServer(taskAPI.handler())
	defer taskSrv.Close()

	push := &pushRecorder{}
	pushSrv := httptest.NewServer(push.handler())
	defer pushSrv.Close()

	log := logger.New("error", false)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	gateway := tasks.New(tasks.Options{
		BaseURL:         taskSrv.URL,
		Queue:           "bookmark-reminders",
		CallbackBaseURL: "https://api.example.com",
		Secret:          []byte("scheduler-secret"),
		Timeout:         2 * time.Second,
		Now:             clock,
	}, log)

	sender := notify.NewPushClient(notify.Options{
		BaseURL: pushSrv.URL,
		Timeout: 2 * time.Second,
	}, log)

	store := newMemStore()
	ctrl := reminder.NewController(store, gateway, sender, log, clock)

	ctx := context.Background()
	b := &domain.Bookmark{
		ID:               "bm-1",
		UserID:           "user-1",
		URL:              "https://example.com/article",
		Title:            "A Great Article",
		ReminderInterval: domain.IntervalOneDay,
		NextReminderAt:   ctrl.NextReminder(domain.IntervalOneDay),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	store.put(b)

	// Save arms exactly one task; a retried save does not add a second.
	ctrl.BookmarkCreated(ctx, b)
	ctrl.BookmarkCreated(ctx, b)
	if got := taskAPI.count(); got != 1 {
		t.Fatalf("task count after create = %d, want 1", got)
	}

	name := tasks.TaskName("user-1", "bm-1")
	payload, ok := taskAPI.payloadFor(name)
	if !ok {
		t.Fatalf("expected task %q to exist", name)
	}
	if payload.UserID != "user-1" || payload.BookmarkID != "bm-1" {
		t.Errorf("task payload = %+v", payload)
	}

	// Fire delivers the reminder once.
	outcome, err := ctrl.HandleFire(ctx, payload.UserID, payload.BookmarkID)
	if err != nil {
		t.Fatalf("HandleFire() error = %v", err)
	}
	if outcome != reminder.FireSent {
		t.Errorf("fire outcome = %v, want sent", outcome)
	}
	bodies := push.bodies()
	if len(bodies) != 1 || bodies[0] != "Check out: A Great Article" {
		t.Errorf("push bodies = %v", bodies)
	}

	// A duplicate fire after the user read the bookmark is skipped.
	b.IsRead = true
	store.put(b)
	outcome, err = ctrl.HandleFire(ctx, payload.UserID, payload.BookmarkID)
	if err != nil {
		t.Fatalf("HandleFire() error = %v", err)
	}
	if outcome != reminder.FireSkipped {
		t.Errorf("duplicate fire outcome = %v, want skipped", outcome)
	}
	if len(push.bodies()) != 1 {
		t.Errorf("duplicate fire sent another push")
	}

	// Read cancels the task; cancelling again still succeeds.
	ctrl.BookmarkRead(ctx, "user-1", "bm-1")
	if got := taskAPI.count(); got != 0 {
		t.Fatalf("task count after read = %d, want 0", got)
	}
	ctrl.BookmarkRead(ctx, "user-1", "bm-1")
}

// TestSweepFallback exercises the sweep path with the gateway left
// disabled, the way a deployment without an external scheduler runs.
func TestSweepFallback(t *testing.T) {
	push := &pushRecorder{}
	pushSrv := httptest.NewServer(push.handler())
	defer pushSrv.Close()

	log := logger.New("error", false)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	sender := notify.NewPushClient(notify.Options{
		BaseURL: pushSrv.URL,
		Timeout: 2 * time.Second,
	}, log)

	store := newMemStore()
	store.put(&domain.Bookmark{
		ID:               "bm-due",
		UserID:           "user-1",
		URL:              "https://example.com/due",
		Title:            "Overdue",
		ReminderInterval: domain.IntervalOneDay,
		NextReminderAt:   now.Add(-time.Hour),
	})
	store.put(&domain.Bookmark{
		ID:               "bm-future",
		UserID:           "user-1",
		URL:              "https://example.com/future",
		ReminderInterval: domain.IntervalOneWeek,
		NextReminderAt:   now.Add(time.Hour),
	})

	sweeper := reminder.NewSweeper(store, sender, store, log, 9, 5*time.Minute, clock)

	result, err := sweeper.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.UsersNotified != 1 || result.BookmarksSwept != 1 {
		t.Errorf("sweep result = %+v, want 1 user / 1 bookmark", result)
	}

	bodies := push.bodies()
	if len(bodies) != 1 || bodies[0] != "Check out: Overdue" {
		t.Errorf("push bodies = %v", bodies)
	}

	// The swept bookmark is re-armed in the future; a second pass right
	// away finds nothing due.
	result, err = sweeper.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if result.BookmarksSwept != 0 {
		t.Errorf("second sweep swept %d bookmarks, want 0", result.BookmarksSwept)
	}
}
