// Package capture takes a snapshot of a tab when it becomes active and hands
// the result to the recency store.
package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atomicstack/tab-popup-switcher/internal/imaging"
	"github.com/atomicstack/tab-popup-switcher/internal/logging"
	"github.com/atomicstack/tab-popup-switcher/internal/logging/events"
	"github.com/atomicstack/tab-popup-switcher/internal/tab"
)

const (
	DefaultQuality    = 80
	DefaultMaxRetries = 3
	DefaultRetryDelay = 200 * time.Millisecond
)

// ErrTabBusy reports that the browser refused a capture because the tab is
// mid-interaction. It is the only failure the Gate retries.
var ErrTabBusy = errors.New("capture: tab busy")

// busyMessage is the browser's wording for the same condition.
const busyMessage = "Tabs cannot be edited right now"

// Capturer grabs the visible area of a window. It returns ErrTabBusy when
// the tab on screen is not want.
type Capturer interface {
	CaptureVisibleArea(ctx context.Context, windowID int64, want tab.ID, quality int) ([]byte, error)
}

// Resizer scales a captured image to a fixed width.
type Resizer interface {
	Resize(img []byte, width int) ([]byte, error)
}

// Writer persists a finished record.
type Writer interface {
	Put(ctx context.Context, rec tab.SnapshotRecord) error
}

type Options struct {
	Quality int
	Width   int
	// MaxRetries bounds retries of busy captures. Zero uses
	// DefaultMaxRetries; a negative value disables retrying.
	MaxRetries int
	RetryDelay time.Duration
	// Now returns the current time; tests replace it.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Quality <= 0 {
		o.Quality = DefaultQuality
	}
	if o.Width <= 0 {
		o.Width = imaging.DefaultWidth
	}
	switch {
	case o.MaxRetries == 0:
		o.MaxRetries = DefaultMaxRetries
	case o.MaxRetries < 0:
		o.MaxRetries = 0
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type inflight struct {
	cancel context.CancelFunc
}

// Gate runs captures. Start may be called from any goroutine.
type Gate struct {
	capturer Capturer
	resizer  Resizer
	writer   Writer
	opts     Options

	base   context.Context
	stop   context.CancelFunc
	mu     sync.Mutex
	active map[tab.ID]*inflight
	wg     sync.WaitGroup
}

func NewGate(ctx context.Context, capturer Capturer, resizer Resizer, writer Writer, opts Options) *Gate {
	base, stop := context.WithCancel(ctx)
	return &Gate{
		capturer: capturer,
		resizer:  resizer,
		writer:   writer,
		opts:     opts.withDefaults(),
		base:     base,
		stop:     stop,
		active:   make(map[tab.ID]*inflight),
	}
}

// Start captures t in the background, cancelling any capture of the same
// tab that is still running.
func (g *Gate) Start(t tab.LiveTab) {
	ctx, cancel := context.WithCancel(g.base)
	entry := &inflight{cancel: cancel}

	g.mu.Lock()
	if prev, ok := g.active[t.ID]; ok {
		prev.cancel()
	}
	g.active[t.ID] = entry
	g.mu.Unlock()

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			g.mu.Lock()
			if g.active[t.ID] == entry {
				delete(g.active, t.ID)
			}
			g.mu.Unlock()
			cancel()
		}()
		g.Capture(ctx, t)
	}()
}

// Forget cancels in-flight work for a tab that closed or navigated away.
func (g *Gate) Forget(id tab.ID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if entry, ok := g.active[id]; ok {
		entry.cancel()
		delete(g.active, id)
	}
}

// Wait blocks until every started capture has returned.
func (g *Gate) Wait() {
	g.wg.Wait()
}

// Close cancels outstanding captures and waits for them.
func (g *Gate) Close() {
	g.stop()
	g.wg.Wait()
}

// Capture runs the pipeline for t synchronously. It reports the stored
// record and whether a write happened. Failures are logged, never returned.
func (g *Gate) Capture(ctx context.Context, t tab.LiveTab) (rec tab.SnapshotRecord, stored bool) {
	id := int64(t.ID)
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("capture: panic for tab %d: %v", id, r)
			logging.Error(err)
			events.Capture.Failure(id, events.StageCapture, err)
			rec, stored = tab.SnapshotRecord{}, false
		}
	}()

	if t.ID == 0 {
		events.Capture.Skip(id, t.URL, "no id")
		return tab.SnapshotRecord{}, false
	}
	if !tab.Capturable(t.URL) {
		events.Capture.Skip(id, t.URL, "scheme")
		return tab.SnapshotRecord{}, false
	}

	// Metadata is fixed before the first attempt; retries reuse it.
	rec = tab.SnapshotRecord{
		ID:         t.ID,
		LastActive: g.opts.Now().UnixMilli(),
		Title:      t.Title,
		FaviconURL: t.FaviconURL,
	}

	raw, ok := g.captureWithRetry(ctx, t)
	if !ok {
		return tab.SnapshotRecord{}, false
	}

	thumb, err := g.resizer.Resize(raw, g.opts.Width)
	if err != nil {
		logging.Error(fmt.Errorf("capture: resize tab %d: %w", id, err))
		events.Capture.Failure(id, events.StageResize, err)
		return tab.SnapshotRecord{}, false
	}
	if ctx.Err() != nil {
		events.Capture.Cancelled(id)
		return tab.SnapshotRecord{}, false
	}
	rec.Screenshot = imaging.EncodeDataURL(thumb)

	if err := g.writer.Put(ctx, rec); err != nil {
		logging.Error(fmt.Errorf("capture: store tab %d: %w", id, err))
		events.Capture.Failure(id, events.StageStore, err)
		return tab.SnapshotRecord{}, false
	}
	events.Capture.Stored(id, rec.LastActive, len(rec.Screenshot))
	return rec, true
}

func (g *Gate) captureWithRetry(ctx context.Context, t tab.LiveTab) ([]byte, bool) {
	id := int64(t.ID)
	attempts := g.opts.MaxRetries + 1
	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			events.Capture.Cancelled(id)
			return nil, false
		}
		events.Capture.Attempt(id, attempt)
		raw, err := g.capturer.CaptureVisibleArea(ctx, t.WindowID, t.ID, g.opts.Quality)
		if err == nil {
			return raw, true
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			events.Capture.Cancelled(id)
			return nil, false
		}
		if !IsBusy(err) {
			logging.Error(fmt.Errorf("capture: tab %d: %w", id, err))
			events.Capture.Failure(id, events.StageCapture, err)
			return nil, false
		}
		if attempt >= attempts {
			logging.Error(fmt.Errorf("capture: tab %d still busy after %d attempts: %w", id, attempt, err))
			events.Capture.Abandon(id, attempt, err)
			return nil, false
		}
		events.Capture.Retry(id, attempt, g.opts.RetryDelay, err)
		if !sleep(ctx, g.opts.RetryDelay) {
			events.Capture.Cancelled(id)
			return nil, false
		}
	}
}

// IsBusy reports whether err is the transient "tab busy" refusal.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTabBusy) || strings.Contains(err.Error(), busyMessage)
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
