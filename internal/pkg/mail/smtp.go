package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/passgate/internal/pkg/uid"
)

var (
	// ErrSMTPHostPortRequired is returned when Host/Port are missing.
	ErrSMTPHostPortRequired = errors.New("smtp host and port are required")
	// ErrNoRecipients is returned when To/Cc/Bcc are all empty.
	ErrNoRecipients = errors.New("no recipients provided")
	// ErrNoSender is returned when neither Message.From nor the default sender is set.
	ErrNoSender = errors.New("no sender provided")
)

// SMTPConfig configures the SMTP implementation.
type SMTPConfig struct {
	// Host is the SMTP server hostname.
	Host string
	// Port is the SMTP server port.
	Port int
	// Username and Password enable PLAIN auth when both are set.
	Username string
	Password string
	// From is the default sender.
	From string
	// UUID generates the local part of Message-ID headers.
	UUID uid.StringID
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTP is a Mail implementation backed by net/smtp.
type SMTP struct {
	addr        string
	host        string
	defaultFrom string
	auth        smtp.Auth
	uuid        uid.StringID
	send        sendMailFunc
	now         func() time.Time
}

// NewSMTP constructs an SMTP sender.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, ErrSMTPHostPortRequired
	}

	var auth smtp.Auth
	if cfg.Username != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	id := cfg.UUID
	if id == nil {
		id = uid.NewUUID()
	}

	return &SMTP{
		addr:        net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		host:        cfg.Host,
		defaultFrom: cfg.From,
		auth:        auth,
		uuid:        id,
		send:        smtp.SendMail,
		now:         time.Now,
	}, nil
}

// Send delivers msg over SMTP. net/smtp has no context support, so the
// exchange runs in its own goroutine and Send gives up when ctx is done.
func (s *SMTP) Send(ctx context.Context, msg Message) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	recipients := make([]string, 0, len(msg.To)+len(msg.Cc)+len(msg.Bcc))
	recipients = append(recipients, msg.To...)
	recipients = append(recipients, msg.Cc...)
	recipients = append(recipients, msg.Bcc...)
	if len(recipients) == 0 {
		return Receipt{}, ErrNoRecipients
	}

	from := msg.From
	if from == "" {
		from = s.defaultFrom
	}
	if from == "" {
		return Receipt{}, ErrNoSender
	}

	messageID := fmt.Sprintf("<%s@%s>", s.uuid.Generate(), s.host)
	raw := s.compose(from, messageID, msg)

	done := make(chan error, 1)
	go func() {
		done <- s.send(s.addr, s.auth, from, recipients, raw)
	}()

	select {
	case <-ctx.Done():
		return Receipt{}, ctx.Err()
	case err := <-done:
		if err != nil {
			return Receipt{}, fmt.Errorf("smtp send: %w", err)
		}
		return Receipt{ID: messageID}, nil
	}
}

// Close implements io.Closer.
func (s *SMTP) Close() error {
	return nil
}

func (s *SMTP) compose(from, messageID string, msg Message) []byte {
	body, contentType := buildBody(msg, s.uuid.Generate())

	headers := []string{
		"From: " + from,
		"To: " + strings.Join(msg.To, ", "),
	}
	if len(msg.Cc) > 0 {
		headers = append(headers, "Cc: "+strings.Join(msg.Cc, ", "))
	}
	headers = append(headers,
		"Subject: "+msg.Subject,
		"Message-ID: "+messageID,
		"Date: "+s.now().Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: "+contentType,
	)

	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + body)
}

func buildBody(msg Message, boundarySeed string) (body string, contentType string) {
	if msg.HTMLBody != "" && msg.TextBody != "" {
		boundary := "passgate-" + strings.ReplaceAll(boundarySeed, "-", "")

		var sb strings.Builder
		sb.WriteString("This is a multipart message in MIME format.\r\n")
		fmt.Fprintf(&sb, "--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", boundary, msg.TextBody)
		fmt.Fprintf(&sb, "--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, msg.HTMLBody)
		fmt.Fprintf(&sb, "--%s--", boundary)

		return sb.String(), "multipart/alternative; boundary=" + boundary
	}

	if msg.HTMLBody != "" {
		return msg.HTMLBody, "text/html; charset=UTF-8"
	}

	return msg.TextBody, "text/plain; charset=UTF-8"
}
