package usecase

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned by Issue when no mail driver is set up. It is
// detected before a code is generated or stored.
var ErrNotConfigured = errors.New("passcode: mail delivery is not configured")

// DispatchError reports that a code was stored but its delivery failed.
// Callers may retry the issuance.
type DispatchError struct {
	Err error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("passcode: dispatch failed: %v", e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
