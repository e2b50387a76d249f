package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/atomicstack/tab-popup-switcher/internal/backend"
	"github.com/atomicstack/tab-popup-switcher/internal/browser"
	"github.com/atomicstack/tab-popup-switcher/internal/capture"
	"github.com/atomicstack/tab-popup-switcher/internal/data/dispatcher"
	"github.com/atomicstack/tab-popup-switcher/internal/imaging"
	"github.com/atomicstack/tab-popup-switcher/internal/logging"
	"github.com/atomicstack/tab-popup-switcher/internal/router"
	"github.com/atomicstack/tab-popup-switcher/internal/state"
	"github.com/atomicstack/tab-popup-switcher/internal/store"
	"github.com/atomicstack/tab-popup-switcher/internal/tab"
)

const shutdownTimeout = 5 * time.Second

// Server is the coordinator process: it watches the browser, captures
// snapshots and answers overlays.
type Server struct {
	cfg Config

	mgr     *browser.Manager
	client  *browser.Client
	store   *store.Store
	gate    *capture.Gate
	watcher *backend.Watcher
	http    *http.Server
	wg      sync.WaitGroup
}

func NewServer(cfg Config) *Server {
	return &Server{cfg: cfg}
}

// Run starts the server and blocks until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.Start(ctx)
	if err != nil {
		s.Stop()
		return err
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- s.http.Serve(ln) }()
	select {
	case <-ctx.Done():
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	}
	if stopErr := s.Stop(); err == nil {
		err = stopErr
	}
	return err
}

// Start connects to Chrome, opens the store, starts capturing and binds the
// listen address.
func (s *Server) Start(ctx context.Context) (net.Listener, error) {
	st, err := OpenStore(ctx, s.cfg)
	if err != nil {
		return nil, err
	}
	s.store = st

	s.mgr = browser.NewManager(s.cfg.Browser)
	if _, err := s.mgr.Start(ctx); err != nil {
		return nil, err
	}
	s.client = browser.NewClient(s.mgr)
	lister := currentWindowLister(s.client)

	s.gate = capture.NewGate(ctx, s.client, imaging.NewResizer(s.cfg.ThumbQuality), st, captureOptions(s.cfg))
	s.watcher = backend.NewWatcher(ctx, lister, s.cfg.PollInterval)
	disp := dispatcher.New(state.NewTabStore(), s.gate)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		Pump(s.watcher.Events(), disp)
	}()

	hub := router.NewHub()
	coord := router.NewCoordinator(st, lister, s.client, s.shortcuts(), router.CoordinatorOptions{
		Limit:             s.cfg.CandidateLimit,
		IncludeUncaptured: s.cfg.IncludeUncaptured,
		Command:           browser.OpenSwitcherCommand,
	})
	s.http = &http.Server{
		Handler:           router.NewServer(coord, hub, router.NewCommands(hub, s.cfg.OpenCommand)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return ln, nil
}

// Stop shuts everything down in reverse order of Start. It is safe to call
// on a partially started server.
func (s *Server) Stop() error {
	var errs []error
	if s.http != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := s.http.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		cancel()
	}
	if s.watcher != nil {
		s.watcher.Stop()
		s.wg.Wait()
	}
	if s.gate != nil {
		s.gate.Close()
	}
	if s.mgr != nil {
		if err := s.mgr.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func captureOptions(cfg Config) capture.Options {
	retries := cfg.MaxRetries
	if retries == 0 {
		retries = -1
	}
	return capture.Options{
		Quality:    cfg.CaptureQuality,
		Width:      cfg.ThumbWidth,
		MaxRetries: retries,
		RetryDelay: cfg.RetryDelay,
	}
}

func (s *Server) shortcuts() browser.Shortcuts {
	return browser.Shortcuts{browser.OpenSwitcherCommand: s.cfg.Shortcut}
}

// OpenStore opens the configured snapshot store, clearing it first when
// ResetStore is set.
func OpenStore(ctx context.Context, cfg Config) (*store.Store, error) {
	var be store.Backend
	if cfg.StorePath == "" || cfg.StorePath == ":memory:" {
		be = store.NewMemoryBackend()
	} else {
		sq, err := store.OpenSQLite(cfg.StorePath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		be = sq
	}
	st := store.New(be, store.Options{Cap: cfg.RecencyCap, MonotonicWrites: cfg.MonotonicWrites})
	if cfg.ResetStore {
		if err := st.Clear(ctx); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("reset store: %w", err)
		}
	}
	return st, nil
}

// Pump feeds watcher events to the dispatcher until the channel closes.
func Pump(events <-chan backend.Event, disp *dispatcher.Dispatcher) {
	for evt := range events {
		if evt.Err != nil {
			logging.Error(evt.Err)
			continue
		}
		disp.Handle(evt)
	}
}

func currentWindowLister(c *browser.Client) backend.ListerFunc {
	return func(ctx context.Context) ([]tab.LiveTab, error) {
		return c.LiveTabs(ctx, browser.CurrentWindow)
	}
}
