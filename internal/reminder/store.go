package reminder

import (
	"context"
	"time"

	"github.com/linkmind/linkmind/internal/domain"
)

// Store is the slice of the document store the reminder subsystem depends
// on. The redis store implements it; tests use an in-memory fake.
type Store interface {
	// GetBookmark returns the bookmark or domain.ErrBookmarkNotFound.
	GetBookmark(ctx context.Context, userID, bookmarkID string) (*domain.Bookmark, error)

	// UpdateBookmark persists the bookmark record.
	UpdateBookmark(ctx context.Context, b *domain.Bookmark) error

	// ListUserIDs enumerates every user with at least one bookmark.
	ListUserIDs(ctx context.Context) ([]string, error)

	// DueBookmarks returns the user's unread bookmarks whose
	// NextReminderAt is at or before now.
	DueBookmarks(ctx context.Context, userID string, now time.Time) ([]*domain.Bookmark, error)
}

// Locker is the advisory lock guarding the sweep against overlapping runs.
type Locker interface {
	// TryLock attempts to take the named lease. Returns false when another
	// holder has it.
	TryLock(ctx context.Context, name string, ttl time.Duration) (bool, error)

	// Unlock releases the named lease. Releasing an expired or missing
	// lease is harmless.
	Unlock(ctx context.Context, name string) error
}
