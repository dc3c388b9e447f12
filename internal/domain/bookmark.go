package domain

import "time"

// Bookmark is a saved link owned by a single user. The metadata snapshot
// (title, description, favicon) is taken once at creation and never
// refreshed afterwards.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the canonical unique identifier within the owner's collection.
	ID string `json:"id"`

	// UserID is the owning user. Bookmarks are never shared across users.
	UserID string `json:"user_id"`

	// URL is the saved link.
	URL string `json:"url"`

	// ─────────────────────────────
	// Metadata snapshot (immutable after creation)
	// ─────────────────────────────

	Title       string `json:"title"`
	Description string `json:"description"`
	Favicon     string `json:"favicon"`

	// ─────────────────────────────
	// Reminder state
	// ─────────────────────────────

	// ReminderInterval is the symbolic delay tag for the reminder.
	ReminderInterval Interval `json:"reminder_interval"`

	// NextReminderAt is when the reminder should fire. Strictly in the
	// future at the moment it is (re)computed; the due sweep recomputes
	// it from a fixed digest anchor rather than true now.
	NextReminderAt time.Time `json:"next_reminder_at"`

	// IsRead marks the bookmark as read. A read bookmark never gets
	// another reminder.
	IsRead bool `json:"is_read"`

	// ─────────────────────────────
	// Timestamps
	// ─────────────────────────────

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
