package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/linkmind/linkmind/internal/domain"
	"github.com/linkmind/linkmind/internal/httpserver/deps"
	"github.com/linkmind/linkmind/internal/httpserver/mw"
	"github.com/linkmind/linkmind/internal/logger"
)

type createBookmarkRequest struct {
	URL              string `json:"url"`
	ReminderInterval string `json:"reminder_interval"`
}

type updateBookmarkRequest struct {
	IsRead           *bool   `json:"is_read"`
	ReminderInterval *string `json:"reminder_interval"`
}

// CreateBookmark saves a URL, snapshots its page metadata and arms the
// first reminder. Metadata fetching is best effort and never blocks the
// save; reminder scheduling is a logged side effect that cannot fail the
// request either.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := mw.UserID(r.Context())

		var req createBookmarkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.URL == "" {
			writeError(w, http.StatusBadRequest, "url is required")
			return
		}
		if u, err := url.Parse(req.URL); err != nil || u.Scheme == "" || u.Host == "" {
			writeError(w, http.StatusBadRequest, "url must be absolute")
			return
		}

		interval := domain.DefaultInterval
		if req.ReminderInterval != "" {
			interval = domain.Interval(req.ReminderInterval)
			if !domain.ValidInterval(interval) {
				writeError(w, http.StatusBadRequest, "unknown reminder_interval")
				return
			}
		}

		meta := d.Metadata.Fetch(r.Context(), req.URL)
		now := d.TimeNow()

		b := &domain.Bookmark{
			ID:               uuid.NewString(),
			UserID:           userID,
			URL:              req.URL,
			Title:            meta.Title,
			Description:      meta.Description,
			Favicon:          meta.Favicon,
			ReminderInterval: interval,
			NextReminderAt:   d.Controller.NextReminder(interval),
			IsRead:           false,
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		if err := d.Store.CreateBookmark(r.Context(), b); err != nil {
			d.Logger.Error("failed to create bookmark", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to save bookmark")
			return
		}

		d.Controller.BookmarkCreated(r.Context(), b)

		writeJSON(w, http.StatusCreated, b)
	}
}

// ListBookmarks returns the caller's bookmarks, newest first.
// ?unread_only=true filters out read ones.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := mw.UserID(r.Context())
		unreadOnly := r.URL.Query().Get("unread_only") == "true"

		bookmarks, err := d.Store.ListBookmarks(r.Context(), userID, unreadOnly)
		if err != nil {
			d.Logger.Error("failed to list bookmarks", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list bookmarks")
			return
		}

		writeJSON(w, http.StatusOK, bookmarks)
	}
}

// GetBookmark returns a single bookmark by id.
func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := mw.UserID(r.Context())
		bookmarkID := chi.URLParam(r, "bookmarkID")

		b, err := d.Store.GetBookmark(r.Context(), userID, bookmarkID)
		if err != nil {
			if errors.Is(err, domain.ErrBookmarkNotFound) {
				writeError(w, http.StatusNotFound, "bookmark not found")
				return
			}
			d.Logger.Error("failed to get bookmark", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to get bookmark")
			return
		}

		writeJSON(w, http.StatusOK, b)
	}
}

// UpdateBookmark patches is_read and/or reminder_interval, then drives
// the reminder lifecycle to match: marking read cancels the pending
// reminder, marking unread re-arms it, and changing the interval on an
// unread bookmark replaces the pending task with one at the new time.
func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := mw.UserID(r.Context())
		bookmarkID := chi.URLParam(r, "bookmarkID")

		var req updateBookmarkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.IsRead == nil && req.ReminderInterval == nil {
			writeError(w, http.StatusBadRequest, "nothing to update")
			return
		}

		var newInterval domain.Interval
		if req.ReminderInterval != nil {
			newInterval = domain.Interval(*req.ReminderInterval)
			if !domain.ValidInterval(newInterval) {
				writeError(w, http.StatusBadRequest, "unknown reminder_interval")
				return
			}
		}

		b, err := d.Store.GetBookmark(r.Context(), userID, bookmarkID)
		if err != nil {
			if errors.Is(err, domain.ErrBookmarkNotFound) {
				writeError(w, http.StatusNotFound, "bookmark not found")
				return
			}
			d.Logger.Error("failed to get bookmark", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to update bookmark")
			return
		}

		wasRead := b.IsRead
		intervalChanged := false

		if req.ReminderInterval != nil && newInterval != b.ReminderInterval {
			b.ReminderInterval = newInterval
			intervalChanged = true
		}
		if req.IsRead != nil {
			b.IsRead = *req.IsRead
		}

		// Re-arm whenever the bookmark ends up unread with a reminder that
		// needs a new fire time: interval changed, or it was just un-read.
		becameUnread := wasRead && !b.IsRead
		if !b.IsRead && (intervalChanged || becameUnread) {
			b.NextReminderAt = d.Controller.NextReminder(b.ReminderInterval)
		}
		b.UpdatedAt = d.TimeNow()

		if err := d.Store.UpdateBookmark(r.Context(), b); err != nil {
			d.Logger.Error("failed to update bookmark", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to update bookmark")
			return
		}

		switch {
		case !wasRead && b.IsRead:
			d.Controller.BookmarkRead(r.Context(), userID, bookmarkID)
		case becameUnread:
			d.Controller.BookmarkCreated(r.Context(), b)
		case intervalChanged && !b.IsRead:
			d.Controller.IntervalChanged(r.Context(), b)
		}

		writeJSON(w, http.StatusOK, b)
	}
}

// DeleteBookmark removes a bookmark and cancels its pending reminder.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := mw.UserID(r.Context())
		bookmarkID := chi.URLParam(r, "bookmarkID")

		if _, err := d.Store.GetBookmark(r.Context(), userID, bookmarkID); err != nil {
			if errors.Is(err, domain.ErrBookmarkNotFound) {
				writeError(w, http.StatusNotFound, "bookmark not found")
				return
			}
			d.Logger.Error("failed to get bookmark", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to delete bookmark")
			return
		}

		if err := d.Store.DeleteBookmark(r.Context(), userID, bookmarkID); err != nil {
			d.Logger.Error("failed to delete bookmark", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to delete bookmark")
			return
		}

		d.Controller.BookmarkDeleted(r.Context(), userID, bookmarkID)

		w.WriteHeader(http.StatusNoContent)
	}
}
