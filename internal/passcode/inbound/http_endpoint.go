package inbound

import (
	"log/slog"

	"github.com/samber/lo"
	"github.com/shandysiswandi/passgate/internal/passcode/entity"
	"github.com/shandysiswandi/passgate/internal/passcode/usecase"
	"github.com/shandysiswandi/passgate/internal/pkg/config"
	"github.com/shandysiswandi/passgate/internal/pkg/goerror"
	"github.com/shandysiswandi/passgate/internal/pkg/router"
)

// genericRejection is returned for every failed verification unless
// modules.passcode.reveal_failure_reason is set, so callers cannot tell an
// unknown email from a wrong code.
const genericRejection = "invalid or expired code"

// HTTPEndpoint exposes passcode issuance and verification over HTTP.
type HTTPEndpoint struct {
	uc      uc
	sweeper sweepRunner
	cfg     config.Config
}

// Issue sends a fresh sign-in code to the given email.
// @Summary Issue sign-in code
// @Description Generates a one-time code for the email/tenant pair, replacing any pending one, and emails it.
// @Tags Passcode
// @Accept json
// @Produce json
// @Param request body IssueRequest true "Issue payload"
// @Success 200 {object} router.successResponse{data=IssueResponse} "Code dispatched"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 502 {object} router.errorResponse "Mail provider failed"
// @Failure 503 {object} router.errorResponse "Mail delivery not configured"
// @Router /api/v1/passcode/issue [post]
func (h *HTTPEndpoint) Issue(r *router.Request) (any, error) {
	var req IssueRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Issue(r.Context(), usecase.IssueInput{
		Email:  req.Email,
		Tenant: req.Tenant,
	})
	if err != nil {
		return nil, err
	}

	return IssueResponse{MessageID: resp.MessageID, ExpiresAt: resp.ExpiresAt}, nil
}

// Verify checks a sign-in code.
// @Summary Verify sign-in code
// @Description Consumes the code on success. Any failure answers 401.
// @Tags Passcode
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verify payload"
// @Success 200 {object} router.successResponse{data=VerifyResponse} "Code accepted"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Code rejected"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/passcode/verify [post]
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		Email:  req.Email,
		Code:   req.Code,
		Tenant: req.Tenant,
	})
	if err != nil {
		return nil, err
	}

	if !resp.Valid {
		msg := genericRejection
		if h.cfg.GetBool("modules.passcode.reveal_failure_reason") {
			msg = resp.Reason.Message()
		}
		return nil, goerror.NewBusiness(msg, goerror.CodeUnauthorized)
	}

	return VerifyResponse{
		Valid:      true,
		Email:      resp.Identity.Email,
		Tenant:     resp.Identity.Tenant,
		VerifiedAt: resp.VerifiedAt,
	}, nil
}

// Pending lists pending codes for local debugging.
// @Summary List pending codes
// @Tags Passcode
// @Produce json
// @Success 200 {object} router.successResponse{data=PendingResponse} "Pending codes"
// @Router /api/v1/passcode/pending [get]
func (h *HTTPEndpoint) Pending(r *router.Request) (any, error) {
	entries, err := h.uc.Snapshot(r.Context())
	if err != nil {
		return nil, err
	}

	return PendingResponse{Entries: lo.Map(entries, func(e entity.SnapshotEntry, _ int) PendingEntry {
		return PendingEntry{
			Email:     e.Identity.Email,
			Tenant:    e.Identity.Tenant,
			Attempts:  e.Attempts,
			IssuedAt:  e.IssuedAt,
			ExpiresAt: e.ExpiresAt,
			Code:      e.Code,
		}
	})}, nil
}

// Sweep runs the expired-code sweep immediately.
// @Summary Sweep expired codes
// @Tags Passcode
// @Produce json
// @Success 200 {object} router.successResponse{data=SweepResponse} "Sweep result"
// @Router /api/v1/passcode/sweep [post]
func (h *HTTPEndpoint) Sweep(r *router.Request) (any, error) {
	removed, skipped, err := h.sweeper.SweepNow(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "manual sweep failed", "error", err)
		return nil, goerror.NewServer(err)
	}

	return SweepResponse{Removed: removed, Skipped: skipped}, nil
}
