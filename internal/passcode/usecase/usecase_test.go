package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/passgate/internal/passcode/entity"
	"github.com/shandysiswandi/passgate/internal/passcode/outbound/store"
	"github.com/shandysiswandi/passgate/internal/pkg/clock"
	"github.com/shandysiswandi/passgate/internal/pkg/config"
	"github.com/shandysiswandi/passgate/internal/pkg/instrument"
	"github.com/shandysiswandi/passgate/internal/pkg/otp"
	"github.com/shandysiswandi/passgate/internal/pkg/validator"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// seqDigits replays digits in a loop.
type seqDigits struct {
	mu     sync.Mutex
	digits []int
	i      int
}

func (s *seqDigits) NextDigit() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.digits[s.i%len(s.digits)]
	s.i++
	return d, nil
}

type fakeMail struct {
	mu     sync.Mutex
	sent   []PasscodeMail
	err    error
	onSend func(ctx context.Context)
}

func (f *fakeMail) SendPasscode(ctx context.Context, msg PasscodeMail) (string, error) {
	if f.onSend != nil {
		f.onSend(ctx)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return fmt.Sprintf("msg-%d", len(f.sent)), nil
}

func (f *fakeMail) lastCode(t *testing.T) string {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no passcode was sent")
	}
	return f.sent[len(f.sent)-1].Code
}

type fakeEvents struct {
	mu       sync.Mutex
	issued   []PasscodeIssuedEvent
	verified []PasscodeVerifiedEvent
	rejected []PasscodeRejectedEvent
}

func (f *fakeEvents) PublishPasscodeIssued(_ context.Context, msg PasscodeIssuedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued = append(f.issued, msg)
	return nil
}

func (f *fakeEvents) PublishPasscodeVerified(_ context.Context, msg PasscodeVerifiedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verified = append(f.verified, msg)
	return nil
}

func (f *fakeEvents) PublishPasscodeRejected(_ context.Context, msg PasscodeRejectedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected = append(f.rejected, msg)
	return nil
}

type fixture struct {
	uc     *Usecase
	store  *store.Memory
	clock  *clock.Manual
	mail   *fakeMail
	events *fakeEvents
}

const baseConfig = `
app:
  env: development
modules:
  passcode:
    ttl_seconds: 300
    max_attempts: 3
    code_length: 6
`

type fixtureOption func(*fixtureOpts)

type fixtureOpts struct {
	yaml   string
	noMail bool
	digits []int
}

func withConfig(yaml string) fixtureOption { return func(o *fixtureOpts) { o.yaml = yaml } }
func withoutMail() fixtureOption          { return func(o *fixtureOpts) { o.noMail = true } }
func withDigits(d ...int) fixtureOption   { return func(o *fixtureOpts) { o.digits = d } }

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	o := fixtureOpts{yaml: baseConfig, digits: []int{1, 2, 3, 4, 5, 6}}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := config.NewViperFromBytes("yaml", []byte(o.yaml))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	f := &fixture{
		store:  store.NewMemory(instrument.NewNoop()),
		clock:  clock.NewManual(t0),
		mail:   &fakeMail{},
		events: &fakeEvents{},
	}

	dep := Dependency{
		RepoStore:     f.store,
		RepoMessaging: f.events,
		Generator:     otp.NewGenerator(&seqDigits{digits: o.digits}),
		Validator:     v,
		Config:        cfg,
		Clock:         f.clock,
		Instrument:    instrument.NewNoop(),
	}
	if !o.noMail {
		dep.RepoMail = f.mail
	}
	f.uc = New(dep)

	return f
}

func (f *fixture) record(t *testing.T, email, tenant string) *entity.Record {
	t.Helper()

	rec, err := f.store.Get(context.Background(), entity.Identity{Email: email, Tenant: tenant})
	if err != nil {
		return nil
	}
	return rec
}

func (f *fixture) issue(t *testing.T, email, tenant string) *IssueOutput {
	t.Helper()

	out, err := f.uc.Issue(context.Background(), IssueInput{Email: email, Tenant: tenant})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return out
}

func (f *fixture) verify(t *testing.T, email, code, tenant string) *VerifyOutput {
	t.Helper()

	out, err := f.uc.Verify(context.Background(), VerifyInput{Email: email, Code: code, Tenant: tenant})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	return out
}

func TestNew_DefaultsWithoutConfig(t *testing.T) {
	// Arrange
	f := newFixture(t, withConfig("app: {}"))

	// Act & Assert
	if f.uc.ttl() != DefaultTTL || f.uc.maxAttempts() != DefaultMaxAttempts || f.uc.codeLength() != otp.DefaultLength {
		t.Fatalf("ttl=%s max=%d len=%d", f.uc.ttl(), f.uc.maxAttempts(), f.uc.codeLength())
	}
	if f.uc.dispatchTimeout() != DefaultDispatchTimeout {
		t.Fatalf("dispatch timeout=%s", f.uc.dispatchTimeout())
	}
}

func TestErrors(t *testing.T) {
	// Arrange
	cause := errors.New("421 try later")
	var err error = &DispatchError{Err: cause}

	// Act & Assert
	if !errors.Is(err, cause) {
		t.Fatal("DispatchError must unwrap to its cause")
	}
	if err.Error() != "passcode: dispatch failed: 421 try later" {
		t.Fatalf("message=%q", err.Error())
	}
}
