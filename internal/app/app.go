package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/atomicstack/tab-popup-switcher/internal/browser"
	"github.com/atomicstack/tab-popup-switcher/internal/logging/events"
	"github.com/atomicstack/tab-popup-switcher/internal/router"
	"github.com/atomicstack/tab-popup-switcher/internal/switcher"
	"github.com/atomicstack/tab-popup-switcher/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

// Mode selects which side of the switcher a process runs.
type Mode string

const (
	ModeOverlay Mode = "overlay"
	ModeServe   Mode = "serve"
)

// Config describes user-provided application options.
type Config struct {
	Mode Mode
	Addr string

	Browser    browser.Config
	StorePath  string
	ResetStore bool

	CaptureQuality int
	ThumbWidth     int
	ThumbQuality   int
	MaxRetries     int
	RetryDelay     time.Duration

	RecencyCap        int
	CandidateLimit    int
	IncludeUncaptured bool
	MonotonicWrites   bool
	PollInterval      time.Duration

	Shortcut    string
	KeyRules    switcher.KeyRules
	FilterMode  switcher.FilterMode
	OpenCommand string

	Width      int
	Height     int
	ShowFooter bool
}

// Run executes the configured mode until it finishes or the process is
// interrupted.
func Run(cfg Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	var err error
	switch cfg.Mode {
	case ModeServe:
		err = NewServer(cfg).Run(ctx)
	case ModeOverlay, "":
		err = runOverlay(cfg)
	default:
		err = fmt.Errorf("unknown mode %q", cfg.Mode)
	}
	events.App.Stop(string(cfg.Mode), err)
	return err
}

var runProgram = func(model tea.Model) error {
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus())
	_, err := program.Run()
	return err
}

func runOverlay(cfg Config) error {
	model := ui.NewModel(ui.Options{
		Transport:  router.NewClient(BaseURL(cfg.Addr)),
		FilterMode: cfg.FilterMode,
		KeyRules:   cfg.KeyRules,
		Width:      cfg.Width,
		Height:     cfg.Height,
		ShowFooter: cfg.ShowFooter,
	})
	err := runProgram(model)
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// BaseURL turns a listen address into the URL overlays dial.
func BaseURL(addr string) string {
	addr = strings.TrimSpace(addr)
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimRight(addr, "/")
	}
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr
}
