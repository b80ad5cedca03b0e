package mail

import (
	"context"
	"io"
)

// Message is a provider-agnostic email.
type Message struct {
	// From overrides the configured default sender when set.
	From string
	// To lists required recipients.
	To []string
	// Cc lists carbon copy recipients.
	Cc []string
	// Bcc lists blind carbon copy recipients.
	Bcc []string
	// Subject is the subject line.
	Subject string
	// TextBody is the plain-text part.
	TextBody string
	// HTMLBody is the HTML part.
	HTMLBody string
	// IdempotencyKey lets providers that support it drop duplicate sends.
	IdempotencyKey string
}

// Receipt is the provider acknowledgement of an accepted message.
type Receipt struct {
	// ID is the provider message id (Message-ID header for SMTP).
	ID string
}

// Mail abstracts an email provider.
type Mail interface {
	io.Closer
	// Send hands msg to the provider and returns once it is accepted.
	Send(ctx context.Context, msg Message) (Receipt, error)
}
