package inbound

import (
	"context"

	"github.com/shandysiswandi/passgate/internal/passcode/entity"
	"github.com/shandysiswandi/passgate/internal/passcode/usecase"
	"github.com/shandysiswandi/passgate/internal/pkg/config"
	"github.com/shandysiswandi/passgate/internal/pkg/router"
)

type uc interface {
	Issue(ctx context.Context, in usecase.IssueInput) (*usecase.IssueOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)
	Snapshot(ctx context.Context) ([]entity.SnapshotEntry, error)
}

type sweepRunner interface {
	SweepNow(ctx context.Context) (removed int, skipped bool, err error)
}

// RegisterHTTPEndpoint mounts the passcode routes. The pending and sweep
// routes expose live codes and exist only outside production.
func RegisterHTTPEndpoint(r *router.Router, uc uc, sw sweepRunner, cfg config.Config) {
	end := &HTTPEndpoint{uc: uc, sweeper: sw, cfg: cfg}

	r.POST("/api/v1/passcode/issue", end.Issue)
	r.POST("/api/v1/passcode/verify", end.Verify)

	if cfg.GetString("app.env") != "production" {
		r.GET("/api/v1/passcode/pending", end.Pending)
		r.POST("/api/v1/passcode/sweep", end.Sweep)
	}
}
