package reminder

import (
	"context"
	"errors"

	"github.com/linkmind/linkmind/internal/domain"
	"github.com/linkmind/linkmind/internal/logger"
)

// FireOutcome classifies what a fire callback did. Every outcome maps to
// HTTP 200 at the endpoint; the scheduler must not retry any of them.
type FireOutcome string

const (
	FireSent     FireOutcome = "sent"
	FireSkipped  FireOutcome = "skipped"   // bookmark already read
	FireNotFound FireOutcome = "not_found" // bookmark deleted since scheduling
	FireFailed   FireOutcome = "failed"    // delivery reached no device
)

// HandleFire processes a reminder-fire callback from the external
// scheduler. Callbacks arrive at-least-once; re-checking IsRead is the
// idempotence guard against duplicate delivery.
func (c *Controller) HandleFire(ctx context.Context, userID, bookmarkID string) (FireOutcome, error) {
	b, err := c.store.GetBookmark(ctx, userID, bookmarkID)
	if err != nil {
		if errors.Is(err, domain.ErrBookmarkNotFound) {
			c.logger.Info("fired reminder for missing bookmark, likely deleted",
				logger.String("bookmark_id", bookmarkID))
			return FireNotFound, nil
		}
		return "", err
	}

	if b.IsRead {
		c.logger.Info("bookmark already read, skipping reminder",
			logger.String("bookmark_id", bookmarkID))
		return FireSkipped, nil
	}

	result, err := c.sender.Send(ctx, userID, reminderTitle, reminderBody(b), map[string]string{
		"type":        "bookmark_reminder",
		"bookmark_id": b.ID,
		"url":         b.URL,
	})
	if err != nil {
		c.logger.Error("failed to deliver reminder",
			logger.String("bookmark_id", bookmarkID),
			logger.Error(err))
		return FireFailed, nil
	}
	if !result.Delivered() {
		c.logger.Warn("reminder reached no device",
			logger.String("bookmark_id", bookmarkID),
			logger.Int("failure_count", result.FailureCount))
		return FireFailed, nil
	}

	c.logger.Info("reminder delivered",
		logger.String("bookmark_id", bookmarkID),
		logger.Int("success_count", result.SuccessCount))
	return FireSent, nil
}

const reminderTitle = "Time to read!"

func reminderBody(b *domain.Bookmark) string {
	switch {
	case b.Title != "":
		return "Check out: " + b.Title
	case b.URL != "":
		return "Check out: " + b.URL
	default:
		return "Check out: your saved link"
	}
}
