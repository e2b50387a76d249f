package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/atomicstack/tab-popup-switcher/internal/assemble"
	"github.com/atomicstack/tab-popup-switcher/internal/logging"
	"github.com/atomicstack/tab-popup-switcher/internal/logging/events"
	"github.com/atomicstack/tab-popup-switcher/internal/tab"
)

var ErrUnknownType = errors.New("router: unknown message type")

// Merger joins stored snapshots with live tabs.
type Merger interface {
	MergedWithLive(ctx context.Context, live []tab.LiveTab) ([]tab.Candidate, error)
}

type TabLister interface {
	LiveTabs(ctx context.Context) ([]tab.LiveTab, error)
}

type Activator interface {
	Activate(ctx context.Context, id tab.ID) error
}

type ShortcutSource interface {
	ShortcutFor(command string) string
}

type CoordinatorOptions struct {
	Limit             int
	IncludeUncaptured bool
	// Command names the shortcut reported with tab data.
	Command string
}

// Coordinator answers overlay requests.
type Coordinator struct {
	store     Merger
	lister    TabLister
	activator Activator
	shortcuts ShortcutSource
	opts      CoordinatorOptions
}

func NewCoordinator(store Merger, lister TabLister, activator Activator, shortcuts ShortcutSource, opts CoordinatorOptions) *Coordinator {
	if opts.Limit == 0 {
		opts.Limit = assemble.DefaultLimit
	}
	return &Coordinator{store: store, lister: lister, activator: activator, shortcuts: shortcuts, opts: opts}
}

// Handle processes one envelope. A nil response means the message has none.
func (c *Coordinator) Handle(ctx context.Context, env Envelope) (interface{}, error) {
	events.Router.Request(env.Type, env.ID)
	switch env.Type {
	case TypeRequestTabData:
		data, err := c.tabData(ctx)
		if err != nil {
			events.Router.Error(env.Type, err)
			return nil, err
		}
		events.Router.Response(env.Type, env.ID, len(data.TabData))
		return data, nil
	case TypeActivateTab:
		var req ActivateTab
		if err := env.Decode(&req); err != nil {
			events.Router.Error(env.Type, err)
			return nil, err
		}
		if err := c.activator.Activate(ctx, req.ID); err != nil {
			logging.Error(err)
			events.Router.Error(env.Type, err)
			return nil, err
		}
		return nil, nil
	}
	err := fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	events.Router.Error(env.Type, err)
	return nil, err
}

func (c *Coordinator) tabData(ctx context.Context) (TabData, error) {
	live, err := c.lister.LiveTabs(ctx)
	if err != nil {
		return TabData{}, fmt.Errorf("router: live tabs: %w", err)
	}
	merged, err := c.store.MergedWithLive(ctx, live)
	if err != nil {
		return TabData{}, fmt.Errorf("router: merge: %w", err)
	}
	if c.opts.IncludeUncaptured {
		merged = assemble.WithUncaptured(live, merged)
	}
	data := TabData{
		Type:    TypeTabData,
		TabData: assemble.Assemble(assemble.ActiveID(live), merged, c.opts.Limit),
	}
	if data.TabData == nil {
		data.TabData = []tab.Candidate{}
	}
	if c.shortcuts != nil {
		data.Shortcut = c.shortcuts.ShortcutFor(c.opts.Command)
	}
	return data, nil
}
