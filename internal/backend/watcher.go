package backend

import (
	"context"
	"sync"
	"time"

	"github.com/atomicstack/tab-popup-switcher/internal/logging/events"
	"github.com/atomicstack/tab-popup-switcher/internal/tab"
)

// Kind represents the type of data emitted by the backend watcher.
type Kind int

const (
	// KindSnapshot carries the full tab list of a successful poll.
	KindSnapshot Kind = iota
	KindActivated
	KindUpdated
	KindNavigated
	KindClosed
)

func (k Kind) String() string {
	switch k {
	case KindSnapshot:
		return "snapshot"
	case KindActivated:
		return "activated"
	case KindUpdated:
		return "updated"
	case KindNavigated:
		return "navigated"
	case KindClosed:
		return "closed"
	}
	return "unknown"
}

// Event conveys a tab change or an error from a backend poll.
type Event struct {
	Kind Kind
	Tab  tab.LiveTab
	Tabs []tab.LiveTab
	Err  error
}

// Lister enumerates live tabs.
type Lister interface {
	LiveTabs(ctx context.Context) ([]tab.LiveTab, error)
}

// ListerFunc adapts a function to Lister.
type ListerFunc func(ctx context.Context) ([]tab.LiveTab, error)

func (f ListerFunc) LiveTabs(ctx context.Context) ([]tab.LiveTab, error) { return f(ctx) }

// Watcher polls the browser at a fixed interval and publishes the
// differences between successive tab lists.
type Watcher struct {
	lister   Lister
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup

	prev   map[tab.ID]tab.LiveTab
	primed bool
	active tab.ID
}

const defaultPollInterval = 500 * time.Millisecond

// NewWatcher creates a backend watcher that polls every interval.
func NewWatcher(parent context.Context, lister Lister, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ctx, cancel := context.WithCancel(parent)
	w := &Watcher{
		lister:   lister,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, 16),
	}

	w.startTabPoller()

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w
}

// Events returns a channel of backend events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop cancels the watcher. The poller exits after its current fetch
// completes; use Wait if a clean drain is required (e.g. in tests).
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until the poller has exited and the events channel is closed.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) startTabPoller() {
	throttle := newThrottle(100 * time.Millisecond)
	w.wg.Add(1)
	go w.poll(func(ctx context.Context) ([]tab.LiveTab, error) {
		if err := throttle.wait(ctx); err != nil {
			return nil, err
		}
		return w.lister.LiveTabs(ctx)
	})
}

func (w *Watcher) poll(fetch func(context.Context) ([]tab.LiveTab, error)) {
	defer w.wg.Done()

	emit := func() bool {
		tabs, err := fetch(w.ctx)
		if w.ctx.Err() != nil {
			return false
		}
		var batch []Event
		if err != nil {
			events.Browser.PollError(err)
			batch = []Event{{Kind: KindSnapshot, Err: err}}
		} else {
			batch = w.diff(tabs)
		}
		for _, evt := range batch {
			select {
			case <-w.ctx.Done():
				return false
			case w.events <- evt:
			}
		}
		return true
	}

	if !emit() {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if !emit() {
				return
			}
		}
	}
}

// diff compares tabs against the previous poll. The snapshot event always
// comes first so consumers see the new list before the changes.
func (w *Watcher) diff(tabs []tab.LiveTab) []Event {
	out := []Event{{Kind: KindSnapshot, Tabs: tabs}}
	next := make(map[tab.ID]tab.LiveTab, len(tabs))
	var active tab.LiveTab
	hasActive := false
	for _, t := range tabs {
		next[t.ID] = t
		if t.Active && !hasActive {
			active, hasActive = t, true
		}
	}

	for id, old := range w.prev {
		if _, ok := next[id]; !ok {
			out = append(out, Event{Kind: KindClosed, Tab: old})
			events.Browser.TabEvent(KindClosed.String(), int64(id), old.URL)
		}
	}
	for _, t := range tabs {
		old, seen := w.prev[t.ID]
		if !seen || !w.primed {
			continue
		}
		switch {
		case old.URL != t.URL:
			out = append(out, Event{Kind: KindNavigated, Tab: t})
			events.Browser.TabEvent(KindNavigated.String(), int64(t.ID), t.URL)
		case t.Active && hasActive && t.ID == w.active && old.Title != t.Title:
			out = append(out, Event{Kind: KindUpdated, Tab: t})
			events.Browser.TabEvent(KindUpdated.String(), int64(t.ID), t.URL)
		}
	}
	if hasActive && (active.ID != w.active || !w.primed) {
		out = append(out, Event{Kind: KindActivated, Tab: active})
		events.Browser.TabEvent(KindActivated.String(), int64(active.ID), active.URL)
	}

	w.prev = next
	w.primed = true
	if hasActive {
		w.active = active.ID
	}
	return out
}
