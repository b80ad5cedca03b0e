package usecase

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"time"

	"github.com/shandysiswandi/passgate/internal/passcode/entity"
	"github.com/shandysiswandi/passgate/internal/pkg/goerror"
)

type VerifyInput struct {
	Email  string `validate:"required,email,max=254"`
	Code   string `validate:"required,max=16,passcode"`
	Tenant string `validate:"omitempty,tenant"`
}

// VerifyOutput is the discriminated result of a verification. Valid is true
// only for ReasonVerified, in which case VerifiedAt is set.
type VerifyOutput struct {
	Valid      bool
	Reason     entity.Reason
	Identity   entity.Identity
	VerifiedAt time.Time
}

// Verify evaluates the submitted code against the pending record. Checks run
// in order: existence, expiry, attempt budget, equality. The whole evaluation
// is one atomic mutation of the record.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	id := s.identity(in.Email, in.Tenant)
	if err := s.validator.Validate(VerifyInput{Email: id.Email, Code: in.Code, Tenant: id.Tenant}); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	maxAttempts := s.maxAttempts()

	var (
		reason   entity.Reason
		at       time.Time
		attempts int
	)
	err := s.repoStore.Mutate(ctx, id, func(rec *entity.Record) entity.Mutation {
		at = s.clock.Now()
		attempts = 0

		switch {
		case rec == nil:
			reason = entity.ReasonNotFound
			return entity.MutationKeep
		case rec.ExpiredAt(at):
			reason = entity.ReasonExpired
			return entity.MutationDelete
		case rec.Attempts >= maxAttempts:
			reason = entity.ReasonExhausted
			return entity.MutationDelete
		case subtle.ConstantTimeCompare([]byte(rec.Code), []byte(in.Code)) != 1:
			rec.Attempts++
			attempts = rec.Attempts
			reason = entity.ReasonMismatch
			return entity.MutationSave
		default:
			reason = entity.ReasonVerified
			return entity.MutationDelete
		}
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mutate passcode", "email", id.Email, "tenant", id.Tenant, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.countVerification(ctx, reason)

	if reason != entity.ReasonVerified {
		slog.WarnContext(ctx, "passcode rejected", "email", id.Email, "tenant", id.Tenant, "reason", reason.String(), "attempts", attempts)
		if err := s.repoMessaging.PublishPasscodeRejected(ctx, PasscodeRejectedEvent{Identity: id, Reason: reason}); err != nil {
			slog.ErrorContext(ctx, "failed to publish passcode rejected", "email", id.Email, "tenant", id.Tenant, "error", err)
		}
		return &VerifyOutput{Valid: false, Reason: reason, Identity: id}, nil
	}

	if err := s.repoMessaging.PublishPasscodeVerified(ctx, PasscodeVerifiedEvent{Identity: id, VerifiedAt: at}); err != nil {
		slog.ErrorContext(ctx, "failed to publish passcode verified", "email", id.Email, "tenant", id.Tenant, "error", err)
	}

	return &VerifyOutput{Valid: true, Reason: reason, Identity: id, VerifiedAt: at}, nil
}
