package entity

import "time"

// Record is one pending passcode challenge.
type Record struct {
	Identity  Identity
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Attempts  int
}

// ExpiredAt reports whether the record is past its expiry at now.
func (r Record) ExpiredAt(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// SameIssue reports whether o is the very record r was written as.
func (r Record) SameIssue(o Record) bool {
	return r.Identity == o.Identity && r.Code == o.Code && r.IssuedAt.Equal(o.IssuedAt)
}

// Mutation tells a store what to do with a record after a read-modify-write.
type Mutation int8

const (
	// MutationKeep leaves the stored record untouched.
	MutationKeep Mutation = iota
	// MutationSave writes the (modified) record back.
	MutationSave
	// MutationDelete removes the record.
	MutationDelete
)

func (m Mutation) String() string {
	switch m {
	case MutationSave:
		return "save"
	case MutationDelete:
		return "delete"
	default:
		return "keep"
	}
}
