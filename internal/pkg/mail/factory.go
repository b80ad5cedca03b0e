package mail

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DriverNone disables delivery; NewFromDriver returns a nil Mail.
	DriverNone = "none"
	// DriverSMTP selects the SMTP backend.
	DriverSMTP = "smtp"
	// DriverResend selects the Resend backend.
	DriverResend = "resend"
)

// ErrUnknownDriver indicates an unsupported mail driver.
var ErrUnknownDriver = errors.New("mail: unknown driver")

// FactoryOptions groups config for the supported backends.
type FactoryOptions struct {
	SMTP   SMTPConfig
	Resend ResendConfig
}

// NewFromDriver builds the Mail selected by driver. An empty driver or
// DriverNone yields (nil, nil).
func NewFromDriver(driver string, opts FactoryOptions) (Mail, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverNone:
		return nil, nil
	case DriverSMTP:
		m, err := NewSMTP(opts.SMTP)
		if err != nil {
			return nil, err
		}
		return m, nil
	case DriverResend:
		m, err := NewResend(opts.Resend)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
