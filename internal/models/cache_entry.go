package models

import "time"

// CacheEntry is a stored discovery result keyed by the query fingerprint.
// TTL is chosen by outcome: short for empty result sets, standard for
// non-empty ones.
type CacheEntry struct {
	Key       string        `json:"key" badgerhold:"key"`
	Places    []Place       `json:"places"`
	TTL       time.Duration `json:"ttl"`
	WrittenAt time.Time     `json:"written_at"`
}

// Fresh reports whether the entry is still within its TTL at the given time.
func (e *CacheEntry) Fresh(now time.Time) bool {
	if e.WrittenAt.IsZero() || e.TTL <= 0 {
		return false
	}
	return now.Sub(e.WrittenAt) < e.TTL
}
