package domain

import "errors"

var (
	// ErrBookmarkNotFound is returned when a bookmark id does not exist
	// in the owner's collection. This is the only domain error that is
	// surfaced to HTTP callers as a failure.
	ErrBookmarkNotFound = errors.New("bookmark not found")
)
