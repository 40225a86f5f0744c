package redis

const (
	// KeyPrefixUser is the prefix for per-user crumbs hashes
	KeyPrefixUser = "chersey:user:"

	fieldScore      = "score"
	fieldLastActive = "last_active_at"
)

// UserKey returns the Redis key for a user's crumbs hash
func UserKey(uid string) string {
	return KeyPrefixUser + uid
}
