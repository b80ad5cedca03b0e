package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/passgate/internal/passcode/entity"
	"github.com/shandysiswandi/passgate/internal/pkg/clock"
	"github.com/shandysiswandi/passgate/internal/pkg/config"
	"github.com/shandysiswandi/passgate/internal/pkg/instrument"
	"github.com/shandysiswandi/passgate/internal/pkg/otp"
	"github.com/shandysiswandi/passgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultTTL             = 5 * time.Minute
	DefaultMaxAttempts     = 3
	DefaultDispatchTimeout = 10 * time.Second
)

type PasscodeMail struct {
	Identity  entity.Identity
	Code      string
	ExpiresAt time.Time
	TTL       time.Duration
}

type PasscodeIssuedEvent struct {
	Identity  entity.Identity
	MessageID string
	ExpiresAt time.Time
}

type PasscodeVerifiedEvent struct {
	Identity   entity.Identity
	VerifiedAt time.Time
}

type PasscodeRejectedEvent struct {
	Identity entity.Identity
	Reason   entity.Reason
}

// repoStore owns every pending record. Mutate runs fn as one atomic
// read-modify-write on a single key; fn gets a copy (nil when absent) and may
// be invoked more than once if the store retries.
type repoStore interface {
	Put(ctx context.Context, rec entity.Record) error
	Entries(ctx context.Context) ([]entity.Record, error)
	Mutate(ctx context.Context, id entity.Identity, fn func(rec *entity.Record) entity.Mutation) error
}

type repoMail interface {
	SendPasscode(ctx context.Context, msg PasscodeMail) (messageID string, err error)
}

type repoMessaging interface {
	PublishPasscodeIssued(ctx context.Context, msg PasscodeIssuedEvent) error
	PublishPasscodeVerified(ctx context.Context, msg PasscodeVerifiedEvent) error
	PublishPasscodeRejected(ctx context.Context, msg PasscodeRejectedEvent) error
}

type codeGenerator interface {
	Generate(length int) (string, error)
}

type Usecase struct {
	repoStore     repoStore
	repoMail      repoMail
	repoMessaging repoMessaging
	generator     codeGenerator
	validator     validator.Validator
	cfg           config.Config
	clock         clock.Clocker
	ins           instrument.Instrumentation

	issuedCounter   metric.Int64Counter
	verifiedCounter metric.Int64Counter
	sweptCounter    metric.Int64Counter
}

type Dependency struct {
	RepoStore repoStore
	// RepoMail is nil when no mail driver is configured; Issue then fails
	// with ErrNotConfigured.
	RepoMail      repoMail
	RepoMessaging repoMessaging
	Generator     codeGenerator
	Validator     validator.Validator
	Config        config.Config
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	gen := dep.Generator
	if gen == nil {
		gen = otp.NewGenerator(nil)
	}

	uc := &Usecase{
		repoStore:     dep.RepoStore,
		repoMail:      dep.RepoMail,
		repoMessaging: dep.RepoMessaging,
		generator:     gen,
		validator:     dep.Validator,
		cfg:           dep.Config,
		clock:         dep.Clock,
		ins:           dep.Instrument,
	}
	uc.initMetrics()

	return uc
}

func (s *Usecase) initMetrics() {
	meter := s.ins.Meter("passcode.usecase")

	var err error
	if s.issuedCounter, err = meter.Int64Counter("passcode.issued",
		metric.WithDescription("Number of passcodes issued and delivered")); err != nil {
		slog.Error("failed to create passcode issued counter", "error", err)
	}
	if s.verifiedCounter, err = meter.Int64Counter("passcode.verifications",
		metric.WithDescription("Number of verification attempts by outcome")); err != nil {
		slog.Error("failed to create passcode verification counter", "error", err)
	}
	if s.sweptCounter, err = meter.Int64Counter("passcode.swept",
		metric.WithDescription("Number of expired passcodes removed by the sweeper")); err != nil {
		slog.Error("failed to create passcode swept counter", "error", err)
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("passcode.usecase").Start(ctx, name)
}

func (s *Usecase) countVerification(ctx context.Context, reason entity.Reason) {
	if s.verifiedCounter != nil {
		s.verifiedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", reason.String())))
	}
}

func (s *Usecase) identity(email, tenant string) entity.Identity {
	return entity.NewIdentity(email, tenant, s.cfg.GetString("modules.passcode.default_tenant"))
}

func (s *Usecase) ttl() time.Duration {
	if d := s.cfg.GetSecond("modules.passcode.ttl_seconds"); d > 0 {
		return d
	}
	return DefaultTTL
}

func (s *Usecase) maxAttempts() int {
	if n := s.cfg.GetInt("modules.passcode.max_attempts"); n > 0 {
		return n
	}
	return DefaultMaxAttempts
}

func (s *Usecase) codeLength() int {
	if n := s.cfg.GetInt("modules.passcode.code_length"); n > 0 {
		return n
	}
	return otp.DefaultLength
}

func (s *Usecase) dispatchTimeout() time.Duration {
	if d := s.cfg.GetSecond("modules.passcode.dispatch_timeout_seconds"); d > 0 {
		return d
	}
	return DefaultDispatchTimeout
}

func (s *Usecase) isProduction() bool {
	return s.cfg.GetString("app.env") == "production"
}
