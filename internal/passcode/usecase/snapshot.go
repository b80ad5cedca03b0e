package usecase

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"github.com/samber/lo"
	"github.com/shandysiswandi/passgate/internal/passcode/entity"
	"github.com/shandysiswandi/passgate/internal/pkg/goerror"
)

// Snapshot lists pending records ordered by tenant then email. Records past
// their expiry are left out even if the sweeper has not removed them yet.
// Codes are blanked when app.env is production.
func (s *Usecase) Snapshot(ctx context.Context) ([]entity.SnapshotEntry, error) {
	ctx, span := s.startSpan(ctx, "Snapshot")
	defer span.End()

	records, err := s.repoStore.Entries(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list passcodes", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	redact := s.isProduction()
	out := lo.FilterMap(records, func(rec entity.Record, _ int) (entity.SnapshotEntry, bool) {
		if rec.ExpiredAt(now) {
			return entity.SnapshotEntry{}, false
		}

		e := entity.SnapshotEntry{
			Identity:  rec.Identity,
			Attempts:  rec.Attempts,
			IssuedAt:  rec.IssuedAt,
			ExpiresAt: rec.ExpiresAt,
		}
		if !redact {
			e.Code = rec.Code
		}
		return e, true
	})

	slices.SortFunc(out, func(a, b entity.SnapshotEntry) int {
		return cmp.Or(cmp.Compare(a.Identity.Tenant, b.Identity.Tenant), cmp.Compare(a.Identity.Email, b.Identity.Email))
	})

	return out, nil
}
