package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/passgate/internal/passcode/entity"
)

// Sweep deletes every record whose expiry has passed and returns how many
// were removed. Expiry is re-checked under the key's lock, so a record
// re-issued since the listing survives.
func (s *Usecase) Sweep(ctx context.Context) (int, error) {
	ctx, span := s.startSpan(ctx, "Sweep")
	defer span.End()

	records, err := s.repoStore.Entries(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list passcodes", "error", err)
		return 0, err
	}

	var (
		removed int
		errs    error
	)
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			errs = errors.Join(errs, err)
			break
		}
		if !rec.ExpiredAt(s.clock.Now()) {
			continue
		}

		var deleted bool
		err := s.repoStore.Mutate(ctx, rec.Identity, func(cur *entity.Record) entity.Mutation {
			deleted = cur != nil && cur.ExpiredAt(s.clock.Now())
			if deleted {
				return entity.MutationDelete
			}
			return entity.MutationKeep
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to sweep passcode", "email", rec.Identity.Email, "tenant", rec.Identity.Tenant, "error", err)
			errs = errors.Join(errs, err)
			continue
		}
		if deleted {
			removed++
		}
	}

	if removed > 0 {
		if s.sweptCounter != nil {
			s.sweptCounter.Add(ctx, int64(removed))
		}
		slog.InfoContext(ctx, "expired passcodes swept", "removed", removed, "scanned", len(records))
	}

	return removed, errs
}
