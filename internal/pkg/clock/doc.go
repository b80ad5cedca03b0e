// Package clock provides a tiny time abstraction.
//
// Expiry and audit timestamps must come from a Clocker instead of time.Now so
// that a fake clock can drive them deterministically. Manual is that fake; it
// lives here because several packages share it in their tests.
package clock
