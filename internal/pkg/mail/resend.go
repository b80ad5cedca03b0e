package mail

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/sethvargo/go-retry"
)

// ErrResendAPIKeyRequired is returned when the API key is empty.
var ErrResendAPIKeyRequired = errors.New("resend api key is required")

// ResendConfig configures the Resend implementation.
type ResendConfig struct {
	// APIKey is the Resend API key.
	APIKey string
	// From is the default sender.
	From string
	// BaseURL overrides the API endpoint.
	BaseURL string
	// MaxRetries bounds retries on rate limiting (default 2).
	MaxRetries uint64
}

// Resend is a Mail implementation backed by the Resend HTTP API.
type Resend struct {
	client      *resend.Client
	defaultFrom string
	maxRetries  uint64
}

// NewResend constructs a Resend sender.
func NewResend(cfg ResendConfig) (*Resend, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrResendAPIKeyRequired
	}

	client := resend.NewClient(cfg.APIKey)
	if cfg.BaseURL != "" {
		u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("resend base url: %w", err)
		}
		client.BaseURL = u
	}

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 2
	}

	return &Resend{client: client, defaultFrom: cfg.From, maxRetries: maxRetries}, nil
}

// Send submits msg to Resend. Rate-limited calls are retried while ctx allows.
func (r *Resend) Send(ctx context.Context, msg Message) (Receipt, error) {
	if len(msg.To)+len(msg.Cc)+len(msg.Bcc) == 0 {
		return Receipt{}, ErrNoRecipients
	}

	from := msg.From
	if from == "" {
		from = r.defaultFrom
	}
	if from == "" {
		return Receipt{}, ErrNoSender
	}

	params := &resend.SendEmailRequest{
		From:    from,
		To:      msg.To,
		Cc:      msg.Cc,
		Bcc:     msg.Bcc,
		Subject: msg.Subject,
		Text:    msg.TextBody,
		Html:    msg.HTMLBody,
	}
	opts := &resend.SendEmailOptions{IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey)}

	b := retry.WithMaxRetries(r.maxRetries, retry.NewExponential(200*time.Millisecond))
	b = retry.WithCappedDuration(5*time.Second, b)

	var sent *resend.SendEmailResponse
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		resp, err := r.client.Emails.SendWithOptions(ctx, params, opts)
		if err != nil {
			if wait, ok := rateLimitDelay(err); ok {
				if wait > 0 {
					select {
					case <-ctx.Done():
						return ctx.Err()
					case <-time.After(wait):
					}
				}
				return retry.RetryableError(err)
			}
			return err
		}
		sent = resp
		return nil
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("resend send: %w", err)
	}

	return Receipt{ID: sent.Id}, nil
}

// Close implements io.Closer.
func (r *Resend) Close() error {
	return nil
}

func rateLimitDelay(err error) (time.Duration, bool) {
	var rle *resend.RateLimitError
	if !errors.As(err, &rle) {
		return 0, false
	}

	seconds, convErr := strconv.Atoi(strings.TrimSpace(rle.RetryAfter))
	if convErr != nil || seconds <= 0 {
		return 0, true
	}
	return time.Duration(min(seconds, 30)) * time.Second, true
}
