package entity

import "time"

// SnapshotEntry is the debug view of a pending record. Code is empty when
// redacted.
type SnapshotEntry struct {
	Identity  Identity
	Attempts  int
	IssuedAt  time.Time
	ExpiresAt time.Time
	Code      string
}
