package imports

import (
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/linkmind/linkmind/internal/domain"
)

// Mapper converts import file entries to domain.Bookmark entities
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapBookmarks converts an ImportFile to bookmarks ready for storage.
// Entries without an owner or a parseable absolute URL are skipped, not
// fatal: a half-valid import file still seeds what it can.
func (m *Mapper) MapBookmarks(file *ImportFile, now time.Time) []*domain.Bookmark {
	var bookmarks []*domain.Bookmark

	for _, user := range file.Users {
		if user.ID == "" {
			continue
		}
		for _, entry := range user.Bookmarks {
			if entry.URL == "" {
				continue
			}
			parsed, err := url.Parse(entry.URL)
			if err != nil || parsed.Scheme == "" || parsed.Host == "" {
				continue
			}

			interval := domain.Interval(entry.ReminderInterval)
			if entry.ReminderInterval == "" || !domain.ValidInterval(interval) {
				interval = domain.DefaultInterval
			}

			title := entry.Title
			if title == "" {
				title = entry.URL
			}

			bookmarks = append(bookmarks, &domain.Bookmark{
				ID:               uuid.NewString(),
				UserID:           user.ID,
				URL:              entry.URL,
				Title:            title,
				Description:      entry.Description,
				ReminderInterval: interval,
				NextReminderAt:   domain.NextFireAt(interval, now),
				IsRead:           false,
				CreatedAt:        now,
				UpdatedAt:        now,
			})
		}
	}

	return bookmarks
}
