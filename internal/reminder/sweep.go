package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/linkmind/linkmind/internal/domain"
	"github.com/linkmind/linkmind/internal/logger"
	"github.com/linkmind/linkmind/internal/notify"
)

// sweepLockName keys the advisory lease guarding the sweep. Fixed, so
// every instance competes for the same lock.
const sweepLockName = "due-reminder-sweep"

// Sweeper is the fallback reminder path: it scans every user for unread
// bookmarks whose fire time has passed, sends one digest notification per
// user, and re-arms each swept bookmark. It is the only delivery path when
// the task gateway is disabled and a safety net when it is not.
//
// Unlike the per-task path, the sweep has recurring-digest semantics: a
// swept bookmark that stays unread will be included again one interval
// later. The re-arm is what keeps consecutive passes from re-notifying
// the same links every time.
type Sweeper struct {
	store      Store
	sender     notify.Sender
	locker     Locker
	logger     logger.Logger
	now        func() time.Time
	digestHour int           // UTC hour anchoring re-armed fire times
	lockTTL    time.Duration // lease length for one pass
}

// Result holds the counts one sweep pass reports back to its trigger.
type Result struct {
	UsersNotified  int  `json:"users_notified"`
	BookmarksSwept int  `json:"bookmarks_swept"`
	Skipped        bool `json:"skipped,omitempty"` // another pass held the lock
}

// NewSweeper builds the sweep. now is injectable for tests.
func NewSweeper(store Store, sender notify.Sender, locker Locker, log logger.Logger, digestHour int, lockTTL time.Duration, now func() time.Time) *Sweeper {
	if now == nil {
		now = time.Now
	}
	return &Sweeper{
		store:      store,
		sender:     sender,
		locker:     locker,
		logger:     log,
		now:        now,
		digestHour: digestHour,
		lockTTL:    lockTTL,
	}
}

// Run executes one sweep pass under the advisory lock. A pass that loses
// the lock race reports Skipped instead of running concurrently.
func (s *Sweeper) Run(ctx context.Context) (Result, error) {
	acquired, err := s.locker.TryLock(ctx, sweepLockName, s.lockTTL)
	if err != nil {
		return Result{}, fmt.Errorf("failed to acquire sweep lock: %w", err)
	}
	if !acquired {
		s.logger.Info("sweep already running, skipping pass")
		return Result{Skipped: true}, nil
	}
	defer func() {
		if err := s.locker.Unlock(ctx, sweepLockName); err != nil {
			s.logger.Warn("failed to release sweep lock", logger.Error(err))
		}
	}()

	now := s.now()
	s.logger.Info("starting due-reminder sweep", logger.Time("now", now))

	userIDs, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list users: %w", err)
	}

	var result Result
	for _, userID := range userIDs {
		due, err := s.store.DueBookmarks(ctx, userID, now)
		if err != nil {
			s.logger.Error("failed to query due bookmarks",
				logger.String("user_id", userID),
				logger.Error(err))
			continue
		}
		if len(due) == 0 {
			continue
		}

		if s.notifyUser(ctx, userID, due) {
			result.UsersNotified++
		}
		result.BookmarksSwept += s.rearm(ctx, due, now)
	}

	s.logger.Info("due-reminder sweep finished",
		logger.Int("users_notified", result.UsersNotified),
		logger.Int("bookmarks_swept", result.BookmarksSwept))
	return result, nil
}

// notifyUser sends one digest per user and reports whether at least one
// device was reached.
func (s *Sweeper) notifyUser(ctx context.Context, userID string, due []*domain.Bookmark) bool {
	title, body := digestWording(due)

	result, err := s.sender.Send(ctx, userID, title, body, map[string]string{
		"type":  "reminder_digest",
		"count": fmt.Sprintf("%d", len(due)),
	})
	if err != nil {
		s.logger.Error("failed to deliver sweep digest",
			logger.String("user_id", userID),
			logger.Error(err))
		return false
	}
	return result.Delivered()
}

// digestWording picks singular wording for exactly one due bookmark and
// aggregate "N links" wording otherwise.
func digestWording(due []*domain.Bookmark) (title, body string) {
	title = "Time to read!"
	if len(due) == 1 {
		b := due[0]
		switch {
		case b.Title != "":
			body = "Check out: " + b.Title
		case b.URL != "":
			body = "Check out: " + b.URL
		default:
			body = "Check out: your saved link"
		}
		return title, body
	}
	return title, fmt.Sprintf("You have %d links waiting to be read", len(due))
}

// rearm recomputes and persists NextReminderAt for every swept bookmark.
// The new fire time is the interval added to today's digest anchor (fixed
// time-of-day), not to true now, so all re-armed reminders in one pass
// land on the same instant.
func (s *Sweeper) rearm(ctx context.Context, due []*domain.Bookmark, now time.Time) int {
	anchor := time.Date(now.Year(), now.Month(), now.Day(), s.digestHour, 0, 0, 0, time.UTC)

	swept := 0
	for _, b := range due {
		d, known := domain.DurationFor(b.ReminderInterval)
		if !known {
			s.logger.Warn("unknown reminder interval during sweep, using default",
				logger.String("bookmark_id", b.ID),
				logger.String("interval", string(b.ReminderInterval)))
		}

		b.NextReminderAt = anchor.Add(d)
		b.UpdatedAt = now
		if err := s.store.UpdateBookmark(ctx, b); err != nil {
			s.logger.Error("failed to re-arm bookmark",
				logger.String("bookmark_id", b.ID),
				logger.Error(err))
			continue
		}
		swept++
	}
	return swept
}
