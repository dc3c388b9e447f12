package redis

const (
	// KeyUsers is the set of all user IDs that own at least one bookmark.
	KeyUsers = "lm:users"

	// KeyPrefixUser prefixes every per-user key.
	KeyPrefixUser = "lm:user:"

	// KeyPrefixLock prefixes advisory lock leases.
	KeyPrefixLock = "lm:lock:"
)

// UserBookmarksKey returns the key of the set holding a user's bookmark IDs.
func UserBookmarksKey(userID string) string {
	return KeyPrefixUser + userID + ":bookmarks"
}

// BookmarkKey returns the key of a single bookmark record.
func BookmarkKey(userID, bookmarkID string) string {
	return KeyPrefixUser + userID + ":bookmark:" + bookmarkID
}

// UserDevicesKey returns the key of the set holding a user's device tokens.
func UserDevicesKey(userID string) string {
	return KeyPrefixUser + userID + ":devices"
}

// LockKey returns the key of a named advisory lock lease.
func LockKey(name string) string {
	return KeyPrefixLock + name
}
