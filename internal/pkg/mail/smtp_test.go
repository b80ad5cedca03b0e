package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

func newTestSMTP(t *testing.T, send sendMailFunc) *SMTP {
	t.Helper()

	s, err := NewSMTP(SMTPConfig{Host: "mail.test", Port: 2525, From: "noreply@passgate.test", UUID: fixedID("0190-abcd")})
	if err != nil {
		t.Fatalf("new smtp: %v", err)
	}
	s.send = send
	s.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestSMTP_Send(t *testing.T) {
	// Arrange
	var gotAddr, gotFrom string
	var gotTo []string
	var gotRaw []byte
	s := newTestSMTP(t, func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotRaw = addr, from, to, msg
		return nil
	})

	// Act
	receipt, err := s.Send(context.Background(), Message{
		To:       []string{"user@acme.test"},
		Bcc:      []string{"audit@acme.test"},
		Subject:  "Your code",
		TextBody: "code 123456",
		HTMLBody: "<b>123456</b>",
	})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.ID != "<0190-abcd@mail.test>" {
		t.Fatalf("receipt id=%q", receipt.ID)
	}
	if gotAddr != "mail.test:2525" || gotFrom != "noreply@passgate.test" {
		t.Fatalf("addr=%q from=%q", gotAddr, gotFrom)
	}
	if len(gotTo) != 2 {
		t.Fatalf("recipients=%v", gotTo)
	}
	raw := string(gotRaw)
	for _, want := range []string{
		"Subject: Your code",
		"Message-ID: <0190-abcd@mail.test>",
		"multipart/alternative; boundary=passgate-0190abcd",
		"Content-Type: text/html; charset=UTF-8",
	} {
		if !strings.Contains(raw, want) {
			t.Fatalf("raw message missing %q:\n%s", want, raw)
		}
	}
	if strings.Contains(raw, "audit@acme.test") {
		t.Fatal("bcc recipient leaked into headers")
	}
}

func TestSMTP_SendErrors(t *testing.T) {
	boom := errors.New("relay refused")

	tests := []struct {
		name    string
		msg     Message
		send    sendMailFunc
		wantErr error
	}{
		{name: "no recipients", msg: Message{Subject: "x"}, wantErr: ErrNoRecipients},
		{name: "relay failure", msg: Message{To: []string{"a@b.test"}}, send: func(string, smtp.Auth, string, []string, []byte) error { return boom }, wantErr: boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			s := newTestSMTP(t, tt.send)

			// Act
			_, err := s.Send(context.Background(), tt.msg)

			// Assert
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSMTP_SendHonoursContext(t *testing.T) {
	// Arrange
	block := make(chan struct{})
	defer close(block)
	s := newTestSMTP(t, func(string, smtp.Auth, string, []string, []byte) error {
		<-block
		return nil
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Act
	_, err := s.Send(ctx, Message{To: []string{"a@b.test"}})

	// Assert
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestNewSMTP_RequiresHost(t *testing.T) {
	// Act
	_, err := NewSMTP(SMTPConfig{Port: 25})

	// Assert
	if !errors.Is(err, ErrSMTPHostPortRequired) {
		t.Fatalf("expected ErrSMTPHostPortRequired, got %v", err)
	}
}

func TestBuildBody_SinglePart(t *testing.T) {
	// Act
	body, ct := buildBody(Message{TextBody: "plain"}, "seed")

	// Assert
	if body != "plain" || ct != "text/plain; charset=UTF-8" {
		t.Fatalf("body=%q ct=%q", body, ct)
	}
}
