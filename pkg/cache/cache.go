package cache

import "time"

// Entry is a cached lookup result.
type Entry struct {
	// Hosts in the order they are returned to callers, verbatim from the
	// DNS answer (trailing dot included).
	Hosts []string

	// Created is the time the lookup finished.
	Created time.Time
}

// Expired reports whether e has reached ttl of age at now. An entry is
// stale from the instant its age equals ttl.
func Expired(e *Entry, ttl time.Duration, now time.Time) bool {
	return now.Sub(e.Created) >= ttl
}

// Backend is a key → Entry store with recency-based eviction.
type Backend interface {
	// Get returns the entry under key, fresh or not, and marks it as the
	// most recently used. Freshness is the caller's decision.
	Get(key string) (e *Entry, ok bool)

	// Store inserts or replaces hosts under key, stamped with the
	// backend's current time. Empty hosts are not stored.
	Store(key string, hosts []string)

	Len() int
}
