// Package m wires together the other ambient packages (mcfg, mlog, mrun, ...)
// the way tiniredis-server expects them to be used, and drives a Component's
// full lifecycle: parameter population, Init, run-until-signal, Shutdown.
package m

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/mediocregopher/tiniredis/mcfg"
	"github.com/mediocregopher/tiniredis/mcmp"
	"github.com/mediocregopher/tiniredis/mctx"
	"github.com/mediocregopher/tiniredis/merr"
	"github.com/mediocregopher/tiniredis/mlog"
	"github.com/mediocregopher/tiniredis/mrun"
)

type cmpKey int

const (
	cmpKeyCfgSrc cmpKey = iota
)

// RootComponent returns a Component suitable for use as the root of a
// program's Component tree. It registers the "log-level" param and, on Init,
// parses every other registered param via mcfg.Populate and applies the
// chosen log level.
func RootComponent() *mcmp.Component {
	cmp := new(mcmp.Component)

	cmp.SetValue(cmpKeyCfgSrc, mcfg.Source(mcfg.SourceCLI{}))

	logger := mlog.NewLogger()
	mlog.SetLogger(cmp, logger)

	logLevelStr := mcfg.String(cmp, "log-level", "info",
		mcfg.ParamUsage("Maximum log level which will be printed (debug, info, warn, error, fatal)."))

	mrun.InitHook(cmp, func(context.Context) error {
		src, _ := cmp.Value(cmpKeyCfgSrc).(mcfg.Source)
		if src == nil {
			return merr.New("Component not sourced via m package", cmp.Context())
		}
		return merr.Wrap(mcfg.Populate(cmp, src), cmp.Context())
	})

	mrun.InitHook(cmp, func(context.Context) error {
		logLevel, ok := mlog.LevelFromString(*logLevelStr)
		if !ok {
			return merr.New("invalid log level", mctx.Annotate(cmp.Context(), "log-level", *logLevelStr))
		}
		logger.SetMaxLevel(logLevel)
		return nil
	})

	return cmp
}

// RootServerComponent extends RootComponent for a long-running server
// process which is expected to read configuration from both the environment
// and the command-line (CLI values taking precedence over the environment).
func RootServerComponent() *mcmp.Component {
	cmp := RootComponent()

	cmp.SetValue(cmpKeyCfgSrc, mcfg.Source(mcfg.Sources{
		mcfg.SourceEnv{},
		mcfg.SourceCLI{},
	}))

	return cmp
}

// MustInit runs mrun.Init on cmp, logging and exiting the process if it
// fails.
func MustInit(cmp *mcmp.Component) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mlog.From(cmp).Debug("initializing", cmp.Context())
	if err := mrun.Init(ctx, cmp); err != nil {
		mlog.From(cmp).Fatal("initialization failed", mlog.WithErr(cmp.Context(), err))
	}
	mlog.From(cmp).Debug("initialization completed successfully", cmp.Context())
}

// MustShutdown is like MustInit but runs mrun.Shutdown.
func MustShutdown(cmp *mcmp.Component) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mlog.From(cmp).Debug("shutting down", cmp.Context())
	if err := mrun.Shutdown(ctx, cmp); err != nil {
		mlog.From(cmp).Fatal("shutdown failed", mlog.WithErr(cmp.Context(), err))
	}
	mlog.From(cmp).Debug("shutdown completed successfully", cmp.Context())
}

// Exec calls MustInit on cmp, triggers mrun.Start, blocks until an interrupt
// signal is received, then calls MustShutdown and exits the process.
func Exec(cmp *mcmp.Component) {
	MustInit(cmp)

	if err := mrun.Start(context.Background(), cmp); err != nil {
		mlog.From(cmp).Fatal("start failed", mlog.WithErr(cmp.Context(), err))
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	s := <-ch
	mlog.From(cmp).Info("signal received, stopping", mctx.Annotate(cmp.Context(), "signal", s.String()))

	MustShutdown(cmp)

	mlog.From(cmp).Debug("exiting process", cmp.Context())
	os.Stdout.Sync()
	os.Stderr.Sync()
	os.Exit(0)
}
