package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/passgate/internal/passcode"
)

func (a *App) initModules() {
	if err := passcode.New(passcode.Dependency{
		Ctx:        a.ctx,
		Goroutine:  a.goroutine,
		Router:     a.router,
		Messaging:  a.messaging,
		Config:     a.config,
		Instrument: a.ins,
		Clock:      a.clock,
		Validator:  a.validator,
		Generator:  a.generator,
		CacheConn:  a.cacheConn,
		Mail:       a.mail,
	}); err != nil {
		slog.Error("failed to init module passcode", "error", err)
		os.Exit(1)
	}
}
