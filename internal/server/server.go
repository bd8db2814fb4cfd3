// Package server wires a store and its waiter tasks to a command.Dispatcher
// and drives the accept loop plus the long-lived background tasks spec.md
// §5/§6 describe: the expiration sweep and the RDB persistence ticker.
package server

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mediocregopher/tiniredis/internal/command"
	"github.com/mediocregopher/tiniredis/internal/conn"
	"github.com/mediocregopher/tiniredis/internal/rdb"
	"github.com/mediocregopher/tiniredis/internal/store"
	"github.com/mediocregopher/tiniredis/internal/waiter"
	"github.com/mediocregopher/tiniredis/mcmp"
	"github.com/mediocregopher/tiniredis/mlog"
	"github.com/mediocregopher/tiniredis/mrun"
)

// tickInterval follows spec.md §4.11's "ticks once per 5s" for the
// persistence trigger; the expiration sweep uses the same constant since
// nothing in §5 calls for a different cadence.
const tickInterval = 5 * time.Second

// Config holds the persistence and auth tunables the CLI layer populates
// via mcfg before calling New.
type Config struct {
	Password         string
	Dir              string
	DBFilename       string
	SaveIntervalSecs int
	SaveMinChanges   int64
}

// Server owns the shared store, the waiter tasks built on top of it, and
// the Dispatcher every accepted connection runs commands through.
type Server struct {
	cmp *mcmp.Component
	log *mlog.Logger
	cfg Config

	Store      *store.Store
	Dispatcher *command.Dispatcher

	lastSaveMu sync.Mutex
	lastSave   time.Time

	shutdownOnce sync.Once
	shutdownCh   chan bool // value carried is the NOSAVE flag
}

// New builds a Server under cmp: a fresh store, its three waiter tasks, and
// a Dispatcher whose RequestShutdown hook feeds back into Serve's shutdown
// path so a client-issued SHUTDOWN runs the same sequence a SIGINT would.
func New(cmp *mcmp.Component, cfg Config) *Server {
	s := store.New()
	d := &command.Dispatcher{
		Store:      s,
		Pop:        waiter.NewPopQueue(s),
		XRead:      waiter.NewXReadQueue(s),
		Hub:        waiter.NewHub(),
		Password:   cfg.Password,
		Dir:        cfg.Dir,
		DBFilename: cfg.DBFilename,
	}
	srv := &Server{
		cmp:        cmp,
		log:        mlog.From(cmp),
		cfg:        cfg,
		Store:      s,
		Dispatcher: d,
		shutdownCh: make(chan bool, 1),
	}
	d.RequestShutdown = srv.requestShutdown
	return srv
}

func (s *Server) requestShutdown(noSave bool) {
	s.shutdownOnce.Do(func() { s.shutdownCh <- noSave })
}

func (s *Server) rdbPath() string {
	return filepath.Join(s.cfg.Dir, s.cfg.DBFilename)
}

// LoadSnapshot loads the configured RDB file into the store, if one exists.
// A missing file isn't an error: a freshly started server just begins empty.
func (s *Server) LoadSnapshot() error {
	path := s.rdbPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	s.log.Info("loading snapshot", s.cmp.Context())
	return rdb.Load(path, s.Store)
}

// Save snapshots the store to its configured path unconditionally, resetting
// the persistence trigger's "time since last save" clock.
func (s *Server) Save() error {
	s.lastSaveMu.Lock()
	s.lastSave = time.Now()
	s.lastSaveMu.Unlock()
	return rdb.Save(s.Store, s.rdbPath())
}

// Serve accepts connections off l, runs the expiration-sweep and
// persistence-ticker background tasks alongside, and blocks until ctx is
// canceled or a client issues SHUTDOWN. Either trigger runs the same exit
// sequence: stop accepting, let in-flight connections finish (bounded by a
// 5-second grace window), then perform one final save unless NOSAVE was
// requested.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var noSave atomic.Bool
	go func() {
		select {
		case v := <-s.shutdownCh:
			noSave.Store(v)
			cancel()
		case <-ctx.Done():
		}
	}()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error { return s.persistLoop(egCtx) })
	eg.Go(func() error { return s.sweepLoop(egCtx) })

	connsCmp := s.cmp.Child("conns")
	var connWG sync.WaitGroup
	acceptDone := make(chan error, 1)
	go func() { acceptDone <- s.acceptLoop(ctx, l, connsCmp, &connWG) }()

	<-ctx.Done()
	// A signal-triggered shutdown closes l via mnet's own ShutdownHook; a
	// client-issued SHUTDOWN cancels ctx directly without going through
	// mrun, so close it here too — closing an already-closed listener is a
	// harmless no-op error Accept already handles.
	l.Close()
	acceptErr := <-acceptDone

	bgErr := eg.Wait()

	graceDone := make(chan struct{})
	go func() { connWG.Wait(); close(graceDone) }()
	select {
	case <-graceDone:
	case <-time.After(5 * time.Second):
		s.log.Warn("shutdown grace window elapsed with connections still open", s.cmp.Context())
	}

	var saveErr error
	if !noSave.Load() {
		saveErr = s.Save()
	}

	switch {
	case acceptErr != nil:
		return acceptErr
	case bgErr != nil:
		return bgErr
	default:
		return saveErr
	}
}

// acceptLoop accepts connections off l until it closes or ctx is done,
// running each one on its own mrun-tracked goroutine under cmp so Serve's
// grace-window wait (via connWG) can bound how long it waits for them.
func (s *Server) acceptLoop(ctx context.Context, l net.Listener, cmp *mcmp.Component, connWG *sync.WaitGroup) error {
	for {
		nc, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Error("accept failed", mlog.WithErr(cmp.Context(), err))
			return err
		}

		connWG.Add(1)
		mrun.Thread(ctx, cmp, func(ctx context.Context) error {
			defer connWG.Done()
			c := conn.New(nc, s.Dispatcher, s.log)
			if err := c.Serve(ctx); err != nil {
				s.log.Warn("connection terminated", mlog.WithErr(cmp.Context(), err))
			}
			return nil
		})
	}
}

// persistLoop implements §4.11's persistence trigger: tick every 5s,
// accumulate the store's change counter locally (TakeChangeCount always
// resets it, so this loop is the counter's sole reader), and save once both
// thresholds are crossed.
func (s *Server) persistLoop(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	var accumulated int64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			accumulated += s.Store.TakeChangeCount()

			s.lastSaveMu.Lock()
			sinceLast := time.Since(s.lastSave)
			s.lastSaveMu.Unlock()

			if accumulated < s.cfg.SaveMinChanges {
				continue
			}
			if sinceLast < time.Duration(s.cfg.SaveIntervalSecs)*time.Second {
				continue
			}
			accumulated = 0
			if err := s.Save(); err != nil {
				s.log.Error("snapshot save failed", mlog.WithErr(s.cmp.Context(), err))
			}
		}
	}
}

// sweepLoop implements the background sweep mentioned in §3.2: periodically
// remove stale entries so dead keys don't accumulate in memory or bloat the
// next snapshot. Correctness never depends on it running.
func (s *Server) sweepLoop(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Store.CleanupExpired()
		}
	}
}
