package reminder

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/linkmind/linkmind/internal/domain"
	"github.com/linkmind/linkmind/internal/notify"
	"github.com/linkmind/linkmind/internal/tasks"
)

// fakeScheduler models the external named-task scheduler's dedup
// behavior: at most one live task per name.
type fakeScheduler struct {
	mu          sync.Mutex
	live        map[string]bool
	scheduleErr error
	cancelErr   error
	calls       []string // "schedule:<name>" / "cancel:<name>"
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{live: map[string]bool{}}
}

func (f *fakeScheduler) Enabled() bool { return true }

func (f *fakeScheduler) Schedule(_ context.Context, name string, _ time.Time, _ tasks.Payload) (tasks.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "schedule:"+name)
	if f.scheduleErr != nil {
		return "", f.scheduleErr
	}
	if f.live[name] {
		return tasks.OutcomeAlreadyExists, nil
	}
	f.live[name] = true
	return tasks.OutcomeCreated, nil
}

func (f *fakeScheduler) Cancel(_ context.Context, name string) (tasks.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "cancel:"+name)
	if f.cancelErr != nil {
		return "", f.cancelErr
	}
	if !f.live[name] {
		return tasks.OutcomeNotFound, nil
	}
	delete(f.live, name)
	return tasks.OutcomeDeleted, nil
}

func (f *fakeScheduler) liveTasks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.live))
	for name := range f.live {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type sentMessage struct {
	UserID string
	Title  string
	Body   string
	Data   map[string]string
}

// fakeSender records deliveries and reports a configurable result.
type fakeSender struct {
	mu     sync.Mutex
	sent   []sentMessage
	result notify.Result
	err    error
}

func newFakeSender() *fakeSender {
	return &fakeSender{result: notify.Result{SuccessCount: 1}}
}

func (f *fakeSender) Send(_ context.Context, userID, title, body string, data map[string]string) (notify.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return notify.Result{}, f.err
	}
	f.sent = append(f.sent, sentMessage{UserID: userID, Title: title, Body: body, Data: data})
	return f.result, nil
}

// memStore is an in-memory Store + Locker for tests. Reads hand out
// copies so mutations only land via UpdateBookmark, matching the
// document-store model.
type memStore struct {
	mu        sync.Mutex
	bookmarks map[string]map[string]domain.Bookmark // userID -> bookmarkID -> record
	locks     map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		bookmarks: map[string]map[string]domain.Bookmark{},
		locks:     map[string]bool{},
	}
}

func (m *memStore) put(b domain.Bookmark) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bookmarks[b.UserID] == nil {
		m.bookmarks[b.UserID] = map[string]domain.Bookmark{}
	}
	m.bookmarks[b.UserID][b.ID] = b
}

func (m *memStore) GetBookmark(_ context.Context, userID, bookmarkID string) (*domain.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookmarks[userID][bookmarkID]
	if !ok {
		return nil, domain.ErrBookmarkNotFound
	}
	copied := b
	return &copied, nil
}

func (m *memStore) UpdateBookmark(_ context.Context, b *domain.Bookmark) error {
	m.put(*b)
	return nil
}

func (m *memStore) ListUserIDs(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.bookmarks))
	for id := range m.bookmarks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memStore) DueBookmarks(_ context.Context, userID string, now time.Time) ([]*domain.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []*domain.Bookmark
	for _, b := range m.bookmarks[userID] {
		if !b.IsRead && !b.NextReminderAt.After(now) {
			copied := b
			due = append(due, &copied)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
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
