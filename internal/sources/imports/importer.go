package imports

import (
	"context"
	"fmt"
	"time"

	"github.com/linkmind/linkmind/internal/domain"
	"github.com/linkmind/linkmind/internal/logger"
)

// Store is the persistence surface the importer writes through.
type Store interface {
	ListBookmarks(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Bookmark, error)
	CreateBookmark(ctx context.Context, b *domain.Bookmark) error
}

// Lifecycle arms the reminder for each imported bookmark.
type Lifecycle interface {
	BookmarkCreated(ctx context.Context, b *domain.Bookmark)
}

// Importer seeds bookmarks from a YAML file once at startup. Re-running
// against the same file is idempotent: a URL the user already has is
// skipped rather than duplicated.
type Importer struct {
	loader    *Loader
	mapper    *Mapper
	store     Store
	lifecycle Lifecycle
	logger    logger.Logger
	now       func() time.Time
}

// NewImporter creates the startup importer. now is injectable for tests.
func NewImporter(filePath string, store Store, lifecycle Lifecycle, log logger.Logger, now func() time.Time) *Importer {
	if now == nil {
		now = time.Now
	}
	return &Importer{
		loader:    NewLoader(filePath),
		mapper:    NewMapper(),
		store:     store,
		lifecycle: lifecycle,
		logger:    log,
		now:       now,
	}
}

// Run loads, maps and persists the import file, arming a reminder for
// every bookmark it actually created.
func (i *Importer) Run(ctx context.Context) error {
	file, err := i.loader.Load()
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	bookmarks := i.mapper.MapBookmarks(file, i.now())
	if len(bookmarks) == 0 {
		i.logger.Info("import file contained no usable bookmarks")
		return nil
	}

	existing := make(map[string]map[string]bool) // userID -> URL set
	imported := 0

	for _, b := range bookmarks {
		urls, ok := existing[b.UserID]
		if !ok {
			current, err := i.store.ListBookmarks(ctx, b.UserID, false)
			if err != nil {
				return fmt.Errorf("failed to list existing bookmarks for import: %w", err)
			}
			urls = make(map[string]bool, len(current))
			for _, c := range current {
				urls[c.URL] = true
			}
			existing[b.UserID] = urls
		}

		if urls[b.URL] {
			i.logger.Debug("skipping already imported bookmark",
				logger.String("user_id", b.UserID),
				logger.String("url", b.URL))
			continue
		}

		if err := i.store.CreateBookmark(ctx, b); err != nil {
			i.logger.Error("failed to import bookmark",
				logger.String("url", b.URL),
				logger.Error(err))
			continue
		}
		urls[b.URL] = true
		imported++

		i.lifecycle.BookmarkCreated(ctx, b)
	}

	i.logger.Info("bookmark import finished",
		logger.Int("imported", imported),
		logger.Int("skipped", len(bookmarks)-imported))
	return nil
}
