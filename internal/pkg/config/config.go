package config

import (
	"io"
	"time"
)

// Config reads typed values by dotted key (for example
// "modules.passcode.ttl_seconds").
//
// Missing keys yield the zero value of the requested type; callers decide on
// their own defaults. Values are re-read on every call so a reloaded file is
// picked up without restarting.
type Config interface {
	io.Closer

	// GetBool returns the value as a bool.
	GetBool(key string) bool
	// GetString returns the value as a string.
	GetString(key string) string
	// GetInt returns the value as an int.
	GetInt(key string) int
	// GetFloat64 returns the value as a float64.
	GetFloat64(key string) float64

	// GetSecond interprets an integer value as seconds.
	GetSecond(key string) time.Duration
	// GetMinute interprets an integer value as minutes.
	GetMinute(key string) time.Duration

	// GetArray returns a list value given as a sequence or as "<a>,<b>,...".
	// Blank elements are dropped.
	GetArray(key string) []string
	// IsSet reports whether the key is present at all.
	IsSet(key string) bool
}
