// Package switcher holds the selection state of an open tab switcher.
//
// A Controller is Closed until Open is called with a candidate list. While
// Open it tracks a cursor, a search query and the set of shortcut keys that
// are still held down. Releasing the last held key commits the selection,
// which yields an Effect naming the tab to activate and closes the
// controller. Cancel and Hidden close it without an Effect.
package switcher

import (
	"strings"

	"github.com/atomicstack/tab-popup-switcher/internal/logging/events"
	"github.com/atomicstack/tab-popup-switcher/internal/tab"
)

type Phase int

const (
	Closed Phase = iota
	Open
)

func (p Phase) String() string {
	if p == Open {
		return "open"
	}
	return "closed"
}

type FilterMode string

const (
	FilterSubstring FilterMode = "substring"
	FilterFuzzy     FilterMode = "fuzzy"
)

// Effect is what a commit asks the host to do.
type Effect struct {
	Activate bool
	TabID    tab.ID
}

// Key names delivered by KeyDown/KeyUp, matching DOM KeyboardEvent.key.
const (
	KeyArrowRight = "ArrowRight"
	KeyArrowLeft  = "ArrowLeft"
	KeyEnter      = "Enter"
	KeyEscape     = "Escape"
)

type Controller struct {
	phase  Phase
	mode   FilterMode
	rules  KeyRules
	full   []tab.Candidate
	items  []tab.Candidate
	cursor int
	query  string
	// lastNonEmpty is the length of the most recent non-empty view.
	lastNonEmpty int
	held         map[string]struct{}
}

func NewController(mode FilterMode, rules KeyRules) *Controller {
	if mode == "" {
		mode = FilterSubstring
	}
	return &Controller{mode: mode, rules: rules}
}

// Open shows candidates. The cursor starts on the second entry so a single
// press-and-release switches to the previously used tab.
func (c *Controller) Open(candidates []tab.Candidate, shortcut string) {
	c.phase = Open
	c.full = tab.CloneCandidates(candidates)
	c.items = tab.CloneCandidates(candidates)
	c.query = ""
	c.cursor = 0
	if len(c.items) >= 2 {
		c.cursor = 1
	}
	c.lastNonEmpty = len(c.items)
	keys := TriggerKeys(shortcut, c.rules)
	c.held = make(map[string]struct{}, len(keys))
	for _, k := range keys {
		c.held[k] = struct{}{}
	}
	events.Switcher.Open(len(c.items), c.cursor, keys)
}

func (c *Controller) Phase() Phase                { return c.phase }
func (c *Controller) IsOpen() bool                { return c.phase == Open }
func (c *Controller) Cursor() int                 { return c.cursor }
func (c *Controller) Query() string               { return c.query }
func (c *Controller) Mode() FilterMode            { return c.mode }
func (c *Controller) Items() []tab.Candidate      { return tab.CloneCandidates(c.items) }
func (c *Controller) Candidates() []tab.Candidate { return tab.CloneCandidates(c.full) }

// Selected returns the candidate under the cursor.
func (c *Controller) Selected() (tab.Candidate, bool) {
	if c.cursor < 0 || c.cursor >= len(c.items) {
		return tab.Candidate{}, false
	}
	return c.items[c.cursor], true
}

// HeldKeys returns the shortcut keys not yet released.
func (c *Controller) HeldKeys() []string {
	out := make([]string, 0, len(c.held))
	for k := range c.held {
		out = append(out, k)
	}
	return out
}

// Advance moves the cursor by delta, wrapping at both ends.
func (c *Controller) Advance(delta int) {
	if c.phase != Open {
		return
	}
	n := len(c.items)
	if n == 0 {
		return
	}
	c.cursor = ((c.cursor+delta)%n + n) % n
	events.Switcher.Cursor(c.cursor, n)
}

// Filter narrows the view to candidates matching query.
func (c *Controller) Filter(query string) {
	if c.phase != Open {
		return
	}
	if len(c.items) > 0 {
		c.lastNonEmpty = len(c.items)
	}
	c.query = query
	c.items = filterCandidates(c.full, query, c.mode)
	n := len(c.items)
	switch {
	case n == 0:
		// Points past the empty view; Selected reports nothing.
		c.cursor = c.lastNonEmpty - 1
		if c.cursor < 0 {
			c.cursor = 0
		}
	case c.cursor >= n:
		c.cursor = n - 1
	case c.cursor < 0:
		c.cursor = 0
	}
	events.Switcher.Filter(query, n, c.cursor)
}

// Commit closes the controller, returning the tab under the cursor.
func (c *Controller) Commit() Effect {
	if c.phase != Open {
		return Effect{}
	}
	selected, ok := c.Selected()
	c.close()
	if !ok {
		events.Switcher.Commit(0, false)
		return Effect{}
	}
	events.Switcher.Commit(int64(selected.ID), true)
	return Effect{Activate: true, TabID: selected.ID}
}

// Cancel closes the controller without an effect.
func (c *Controller) Cancel() {
	c.cancel(events.ReasonExplicit)
}

// Hidden closes the controller because its surface is no longer visible.
func (c *Controller) Hidden() {
	c.cancel(events.ReasonHidden)
}

// Dispose closes the controller because it was replaced.
func (c *Controller) Dispose() {
	c.cancel(events.ReasonDisposed)
}

// KeyDown handles navigation keys. It reports whether key was consumed.
func (c *Controller) KeyDown(key string) (Effect, bool) {
	if c.phase != Open {
		return Effect{}, false
	}
	switch key {
	case KeyArrowRight:
		c.Advance(1)
	case KeyArrowLeft:
		c.Advance(-1)
	case KeyEnter:
		return c.Commit(), true
	case KeyEscape:
		c.cancel(events.ReasonEscape)
	default:
		return Effect{}, false
	}
	return Effect{}, true
}

// KeyUp records a key release. Releasing the last held shortcut key
// commits.
func (c *Controller) KeyUp(key string) (Effect, bool) {
	if c.phase != Open || len(c.held) == 0 {
		return Effect{}, false
	}
	key = NormalizeKey(key)
	if _, ok := c.held[key]; !ok {
		return Effect{}, false
	}
	delete(c.held, key)
	events.Switcher.KeyRelease(key, len(c.held))
	if len(c.held) == 0 {
		return c.Commit(), true
	}
	return Effect{}, false
}

func (c *Controller) cancel(reason events.CancelReason) {
	if c.phase != Open {
		return
	}
	c.close()
	events.Switcher.Cancel(reason)
}

func (c *Controller) close() {
	c.phase = Closed
	c.held = nil
}

func matchesSubstring(cand tab.Candidate, lower string) bool {
	return strings.Contains(strings.ToLower(cand.Title), lower) ||
		strings.Contains(strings.ToLower(cand.URL), lower)
}
