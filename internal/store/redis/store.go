package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/linkmind/linkmind/internal/domain"
)

// Store handles Redis operations for bookmarks, device tokens and the
// sweep advisory lock. Bookmarks live as JSON records under per-user keys
// with a per-user ID set and a global user set for enumeration.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// CreateBookmark stores a new bookmark and registers its owner.
func (s *Store) CreateBookmark(ctx context.Context, b *domain.Bookmark) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal bookmark: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, BookmarkKey(b.UserID, b.ID), data, 0)
	pipe.SAdd(ctx, UserBookmarksKey(b.UserID), b.ID)
	pipe.SAdd(ctx, KeyUsers, b.UserID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save bookmark: %w", err)
	}
	return nil
}

// GetBookmark retrieves a bookmark by owner and id. Returns
// domain.ErrBookmarkNotFound when the record does not exist.
func (s *Store) GetBookmark(ctx context.Context, userID, bookmarkID string) (*domain.Bookmark, error) {
	data, err := s.client.Get(ctx, BookmarkKey(userID, bookmarkID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrBookmarkNotFound
		}
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}

	var b domain.Bookmark
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookmark: %w", err)
	}
	return &b, nil
}

// UpdateBookmark overwrites an existing bookmark record.
func (s *Store) UpdateBookmark(ctx context.Context, b *domain.Bookmark) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal bookmark: %w", err)
	}
	if err := s.client.Set(ctx, BookmarkKey(b.UserID, b.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update bookmark: %w", err)
	}
	return nil
}

// DeleteBookmark removes a bookmark record and its ID-set entry.
func (s *Store) DeleteBookmark(ctx context.Context, userID, bookmarkID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, BookmarkKey(userID, bookmarkID))
	pipe.SRem(ctx, UserBookmarksKey(userID), bookmarkID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	return nil
}

// ListBookmarks returns a user's bookmarks, newest first. unreadOnly
// filters out read bookmarks.
func (s *Store) ListBookmarks(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Bookmark, error) {
	bookmarks, err := s.userBookmarks(ctx, userID)
	if err != nil {
		return nil, err
	}

	filtered := make([]*domain.Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		if unreadOnly && b.IsRead {
			continue
		}
		filtered = append(filtered, b)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	return filtered, nil
}

// ListUserIDs enumerates every user with at least one bookmark.
func (s *Store) ListUserIDs(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, KeyUsers).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// DueBookmarks returns the user's unread bookmarks whose NextReminderAt
// is at or before now.
func (s *Store) DueBookmarks(ctx context.Context, userID string, now time.Time) ([]*domain.Bookmark, error) {
	bookmarks, err := s.userBookmarks(ctx, userID)
	if err != nil {
		return nil, err
	}

	var due []*domain.Bookmark
	for _, b := range bookmarks {
		if !b.IsRead && !b.NextReminderAt.After(now) {
			due = append(due, b)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	return due, nil
}

// userBookmarks fetches all of a user's bookmark records.
func (s *Store) userBookmarks(ctx context.Context, userID string) ([]*domain.Bookmark, error) {
	ids, err := s.client.SMembers(ctx, UserBookmarksKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark IDs: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Bookmark{}, nil
	}

	bookmarks := make([]*domain.Bookmark, 0, len(ids))
	for _, id := range ids {
		b, err := s.GetBookmark(ctx, userID, id)
		if err != nil {
			// A record can vanish between SMembers and Get; skip it.
			if errors.Is(err, domain.ErrBookmarkNotFound) {
				continue
			}
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, nil
}
