package passcode

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/passgate/internal/passcode/inbound"
	"github.com/shandysiswandi/passgate/internal/passcode/outbound/email"
	"github.com/shandysiswandi/passgate/internal/passcode/outbound/mq"
	"github.com/shandysiswandi/passgate/internal/passcode/outbound/store"
	"github.com/shandysiswandi/passgate/internal/passcode/usecase"
	"github.com/shandysiswandi/passgate/internal/pkg/clock"
	"github.com/shandysiswandi/passgate/internal/pkg/config"
	"github.com/shandysiswandi/passgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/passgate/internal/pkg/instrument"
	"github.com/shandysiswandi/passgate/internal/pkg/mail"
	"github.com/shandysiswandi/passgate/internal/pkg/messaging"
	"github.com/shandysiswandi/passgate/internal/pkg/otp"
	"github.com/shandysiswandi/passgate/internal/pkg/router"
	"github.com/shandysiswandi/passgate/internal/pkg/validator"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Dependency struct {
	Ctx        context.Context            `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Publisher        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	Generator  *otp.Generator             `validate:"required"`

	// CacheConn is only needed when modules.passcode.store is "redis".
	CacheConn redis.UniversalClient
	// Mail is nil when no mail driver is configured.
	Mail mail.Mail
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	ucDep := usecase.Dependency{
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		Generator:     dep.Generator,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
	}

	switch driver := strings.ToLower(strings.TrimSpace(dep.Config.GetString("modules.passcode.store"))); driver {
	case "", StoreMemory:
		ucDep.RepoStore = store.NewMemory(dep.Instrument)
	case StoreRedis:
		if dep.CacheConn == nil {
			return fmt.Errorf("passcode: store %q needs a redis connection", driver)
		}
		ucDep.RepoStore = store.NewRedis(dep.CacheConn, dep.Instrument, store.RedisConfig{
			Prefix:     dep.Config.GetString("modules.passcode.redis.prefix"),
			Grace:      dep.Config.GetSecond("modules.passcode.redis.grace_seconds"),
			MaxRetries: uint64(max(dep.Config.GetInt("modules.passcode.redis.max_retries"), 0)),
		})
	default:
		return fmt.Errorf("passcode: unknown store %q", driver)
	}

	if dep.Mail != nil {
		repoMail, err := email.New(dep.Mail, dep.Config, dep.Instrument)
		if err != nil {
			return err
		}
		ucDep.RepoMail = repoMail
	} else {
		slog.Warn("passcode mail driver not configured, issue requests will be rejected")
	}

	uc := usecase.New(ucDep)
	sweeper := inbound.NewSweeper(uc, dep.Config)

	inbound.RegisterHTTPEndpoint(dep.Router, uc, sweeper, dep.Config)

	return sweeper.Start(dep.Ctx, dep.Goroutine)
}
