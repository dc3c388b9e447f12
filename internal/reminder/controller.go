package reminder

import (
	"context"
	"time"

	"github.com/linkmind/linkmind/internal/domain"
	"github.com/linkmind/linkmind/internal/logger"
	"github.com/linkmind/linkmind/internal/notify"
	"github.com/linkmind/linkmind/internal/tasks"
)

// Scheduler is the named-task gateway surface the controller drives.
// There is deliberately no update operation: replacing a task is
// cancel-then-schedule under the same deterministic name.
type Scheduler interface {
	Enabled() bool
	Schedule(ctx context.Context, name string, fireAt time.Time, p tasks.Payload) (tasks.Outcome, error)
	Cancel(ctx context.Context, name string) (tasks.Outcome, error)
}

// Controller owns the reminder state machine per bookmark: no-task,
// scheduled, fired-or-cancelled. It never queries task existence; the
// last two states are indistinguishable from here, which is fine because
// schedule and cancel are both idempotent.
//
// Every method is a best-effort side effect of a bookmark mutation that
// has already succeeded: scheduler faults are logged, never returned, so
// a broken scheduler can degrade reminders but cannot block saving or
// editing a bookmark.
type Controller struct {
	store  Store
	sched  Scheduler
	sender notify.Sender
	logger logger.Logger
	now    func() time.Time
}

// NewController builds the lifecycle controller. now is injectable for
// tests and defaults to time.Now.
func NewController(store Store, sched Scheduler, sender notify.Sender, log logger.Logger, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{
		store:  store,
		sched:  sched,
		sender: sender,
		logger: log,
		now:    now,
	}
}

// NextReminder computes the fire time for an interval tag from the
// controller's clock. An unrecognized tag resolves to the default
// interval; that fallback is logged here so misconfigured clients are
// visible without failing the request.
func (c *Controller) NextReminder(tag domain.Interval) time.Time {
	d, known := domain.DurationFor(tag)
	if !known {
		c.logger.Warn("unknown reminder interval, using default",
			logger.String("interval", string(tag)),
			logger.Duration("default", d))
	}
	return c.now().Add(d)
}

// BookmarkCreated schedules the first reminder for a freshly created
// bookmark at its NextReminderAt.
func (c *Controller) BookmarkCreated(ctx context.Context, b *domain.Bookmark) {
	name := tasks.TaskName(b.UserID, b.ID)
	outcome, err := c.sched.Schedule(ctx, name, b.NextReminderAt, tasks.Payload{
		UserID:     b.UserID,
		BookmarkID: b.ID,
	})
	if err != nil {
		c.logger.Error("failed to schedule reminder",
			logger.String("bookmark_id", b.ID),
			logger.Error(err))
		return
	}
	c.logger.Debug("reminder scheduled on create",
		logger.String("bookmark_id", b.ID),
		logger.String("outcome", string(outcome)),
		logger.Time("fire_at", b.NextReminderAt))
}

// BookmarkRead cancels the pending reminder. Marking an already-read
// bookmark read again cancels a task that no longer exists, which the
// gateway reports as success.
func (c *Controller) BookmarkRead(ctx context.Context, userID, bookmarkID string) {
	name := tasks.TaskName(userID, bookmarkID)
	outcome, err := c.sched.Cancel(ctx, name)
	if err != nil {
		c.logger.Error("failed to cancel reminder for read bookmark",
			logger.String("bookmark_id", bookmarkID),
			logger.Error(err))
		return
	}
	c.logger.Debug("reminder cancelled on read",
		logger.String("bookmark_id", bookmarkID),
		logger.String("outcome", string(outcome)))
}

// IntervalChanged replaces the pending reminder after the interval was
// changed on a still-unread bookmark. The external scheduler has no
// update primitive, so this is cancel-then-schedule; reusing the same
// deterministic name keeps at most one live task for the bookmark.
func (c *Controller) IntervalChanged(ctx context.Context, b *domain.Bookmark) {
	name := tasks.TaskName(b.UserID, b.ID)

	if _, err := c.sched.Cancel(ctx, name); err != nil {
		c.logger.Error("failed to cancel old reminder on interval change",
			logger.String("bookmark_id", b.ID),
			logger.Error(err))
		// Still attempt the new schedule: the dedup name means the worst
		// case is the old task firing once before NextReminderAt.
	}

	outcome, err := c.sched.Schedule(ctx, name, b.NextReminderAt, tasks.Payload{
		UserID:     b.UserID,
		BookmarkID: b.ID,
	})
	if err != nil {
		c.logger.Error("failed to reschedule reminder",
			logger.String("bookmark_id", b.ID),
			logger.Error(err))
		return
	}
	c.logger.Debug("reminder rescheduled",
		logger.String("bookmark_id", b.ID),
		logger.String("outcome", string(outcome)),
		logger.Time("fire_at", b.NextReminderAt))
}

// BookmarkDeleted cancels the pending reminder for a deleted bookmark.
func (c *Controller) BookmarkDeleted(ctx context.Context, userID, bookmarkID string) {
	name := tasks.TaskName(userID, bookmarkID)
	if _, err := c.sched.Cancel(ctx, name); err != nil {
		c.logger.Error("failed to cancel reminder for deleted bookmark",
			logger.String("bookmark_id", bookmarkID),
			logger.Error(err))
		return
	}
	c.logger.Debug("reminder cancelled on delete",
		logger.String("bookmark_id", bookmarkID))
}
