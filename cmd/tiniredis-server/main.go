// Command tiniredis-server runs a standalone RESP server: an in-memory,
// single-database key-value store reachable over TCP, with optional
// password auth and periodic RDB snapshots.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/mediocregopher/tiniredis/internal/server"
	"github.com/mediocregopher/tiniredis/m"
	"github.com/mediocregopher/tiniredis/mcfg"
	"github.com/mediocregopher/tiniredis/mctx"
	"github.com/mediocregopher/tiniredis/mlog"
	"github.com/mediocregopher/tiniredis/mnet"
)

// saveFlag implements mcfg.CLIValue (pflag.Value) for the two-value
// "--save <seconds> <changes>" flag, which doesn't fit mcfg's single-scalar
// Param constructors (String/Int/Bool).
type saveFlag struct {
	Secs    int
	Changes int64
}

func (f *saveFlag) String() string {
	return fmt.Sprintf("%d %d", f.Secs, f.Changes)
}

func (f *saveFlag) Set(raw string) error {
	fields := strings.Fields(raw)
	if len(fields) != 2 {
		return fmt.Errorf(`expected "<seconds> <changes>", got %q`, raw)
	}
	secs, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("invalid seconds: %w", err)
	}
	changes, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid changes: %w", err)
	}
	f.Secs, f.Changes = secs, changes
	return nil
}

func (f *saveFlag) Type() string { return "save" }

// listenAddr resolves the default bind address per §6.1: 127.0.0.1:6379,
// overridable by the HOST/PORT environment variables. mnet's own
// "listen-addr" param (and its NET_LISTEN_ADDR env var / CLI flag) take
// this as their default and can still override it directly.
func listenAddr() string {
	host, hasHost := os.LookupEnv("HOST")
	port, hasPort := os.LookupEnv("PORT")
	if !hasHost && !hasPort {
		return "127.0.0.1:6379"
	}
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "6379"
	}
	return host + ":" + port
}

func main() {
	cmp := m.RootServerComponent()

	password := mcfg.String(cmp, "requirepass", "",
		mcfg.ParamUsage("Password clients must AUTH with before running other commands."))
	dir := mcfg.String(cmp, "dir", ".",
		mcfg.ParamUsage("Directory the RDB snapshot is loaded from and saved to."))
	dbFilename := mcfg.String(cmp, "dbfilename", "dump.rdb",
		mcfg.ParamUsage("RDB snapshot file name."))

	save := &saveFlag{Secs: 60, Changes: 300}
	mcfg.JSON(cmp, "save", save,
		mcfg.ParamUsage(`Persistence trigger, as "<seconds> <changes>".`))

	l := mnet.InstListener(cmp, mnet.ListenerDefaultAddr(listenAddr()))

	m.MustInit(cmp)

	srv := server.New(cmp.Child("server"), server.Config{
		Password:         *password,
		Dir:              *dir,
		DBFilename:       *dbFilename,
		SaveIntervalSecs: save.Secs,
		SaveMinChanges:   save.Changes,
	})

	if err := srv.LoadSnapshot(); err != nil {
		mlog.From(cmp).Fatal("loading snapshot failed", mlog.WithErr(cmp.Context(), err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			mlog.From(cmp).Info("signal received, stopping", mctx.Annotate(cmp.Context(), "signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	serveErr := srv.Serve(ctx, l)
	cancel()

	m.MustShutdown(cmp)

	if serveErr != nil {
		mlog.From(cmp).Error("server exited with an error", mlog.WithErr(cmp.Context(), serveErr))
		os.Stdout.Sync()
		os.Stderr.Sync()
		os.Exit(1)
	}
	os.Stdout.Sync()
	os.Stderr.Sync()
}
