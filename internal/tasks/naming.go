package tasks

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

const (
	// taskNamePrefix namespaces reminder tasks inside the queue.
	taskNamePrefix = "reminder-"

	// userFingerprintLen is the number of hex chars of the user hash kept
	// in the task name. Enough to keep names from different users apart
	// without leaking the raw user id into the scheduler namespace.
	userFingerprintLen = 10

	// maxTaskNameLen is the scheduler's documented name length limit.
	maxTaskNameLen = 500
)

var taskNameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// TaskName derives the deterministic dedup name for a bookmark's reminder
// task. The same (user, bookmark) pair always yields the same name, which
// is what makes schedule idempotent and lets cancel reconstruct the name
// without storing a task reference on the bookmark.
func TaskName(userID, bookmarkID string) string {
	sum := sha256.Sum256([]byte(userID))
	return taskNamePrefix + hex.EncodeToString(sum[:])[:userFingerprintLen] + "-" + bookmarkID
}

// ValidTaskName reports whether name fits the scheduler's namespace
// constraints (charset and length).
func ValidTaskName(name string) bool {
	if name == "" || len(name) > maxTaskNameLen {
		return false
	}
	return taskNameRe.MatchString(name)
}
