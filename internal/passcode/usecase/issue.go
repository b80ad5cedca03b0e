package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/passgate/internal/passcode/entity"
	"github.com/shandysiswandi/passgate/internal/pkg/goerror"
)

type IssueInput struct {
	Email  string `validate:"required,email,max=254"`
	Tenant string `validate:"omitempty,tenant"`
}

type IssueOutput struct {
	Identity  entity.Identity
	MessageID string
	ExpiresAt time.Time
}

// Issue generates a fresh code for the identity, replacing any pending one,
// and mails it. The stored record outlives a failed delivery unless
// modules.passcode.revoke_on_dispatch_failure is set.
func (s *Usecase) Issue(ctx context.Context, in IssueInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "Issue")
	defer span.End()

	id := s.identity(in.Email, in.Tenant)
	if err := s.validator.Validate(IssueInput{Email: id.Email, Tenant: id.Tenant}); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if s.repoMail == nil {
		slog.ErrorContext(ctx, "passcode requested but no mail driver is configured", "tenant", id.Tenant)
		return nil, goerror.NewDependency(ErrNotConfigured, "Passcode delivery is not available", goerror.CodeUnavailable)
	}

	code, err := s.generator.Generate(s.codeLength())
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate passcode", "error", err)
		return nil, goerror.NewServer(err)
	}

	ttl := s.ttl()
	now := s.clock.Now()
	rec := entity.Record{
		Identity:  id,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	if err := s.repoStore.Put(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to repo put passcode", "email", id.Email, "tenant", id.Tenant, "error", err)
		return nil, goerror.NewServer(err)
	}

	dctx, cancel := context.WithTimeout(ctx, s.dispatchTimeout())
	msgID, err := s.repoMail.SendPasscode(dctx, PasscodeMail{
		Identity:  id,
		Code:      code,
		ExpiresAt: rec.ExpiresAt,
		TTL:       ttl,
	})
	cancel()
	if err != nil {
		slog.ErrorContext(ctx, "failed to dispatch passcode", "email", id.Email, "tenant", id.Tenant, "error", err)
		if s.cfg.GetBool("modules.passcode.revoke_on_dispatch_failure") {
			s.revoke(context.WithoutCancel(ctx), rec)
		}
		return nil, goerror.NewDependency(&DispatchError{Err: err}, "Failed to deliver passcode, please try again", goerror.CodeBadGateway)
	}

	if s.issuedCounter != nil {
		s.issuedCounter.Add(ctx, 1)
	}

	if err := s.repoMessaging.PublishPasscodeIssued(ctx, PasscodeIssuedEvent{
		Identity:  id,
		MessageID: msgID,
		ExpiresAt: rec.ExpiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish passcode issued", "email", id.Email, "tenant", id.Tenant, "error", err)
	}

	return &IssueOutput{Identity: id, MessageID: msgID, ExpiresAt: rec.ExpiresAt}, nil
}

// revoke drops rec only if it is still the stored record, so a newer issue
// that raced in is left alone.
func (s *Usecase) revoke(ctx context.Context, rec entity.Record) {
	err := s.repoStore.Mutate(ctx, rec.Identity, func(cur *entity.Record) entity.Mutation {
		if cur == nil || !cur.SameIssue(rec) {
			return entity.MutationKeep
		}
		return entity.MutationDelete
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to revoke undelivered passcode", "email", rec.Identity.Email, "tenant", rec.Identity.Tenant, "error", err)
	}
}
