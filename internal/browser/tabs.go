package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atomicstack/tab-popup-switcher/internal/capture"
	"github.com/atomicstack/tab-popup-switcher/internal/logging/events"
	"github.com/atomicstack/tab-popup-switcher/internal/tab"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Scope limits LiveTabs.
type Scope int

const (
	// CurrentWindow returns the tabs of the window holding the active tab.
	CurrentWindow Scope = iota
	AllWindows
)

const inspectTimeout = 2 * time.Second

var ErrTabNotFound = errors.New("browser: tab not found")

const faviconScript = `() => {
	const link = document.querySelector('link[rel~="icon"]');
	if (link && link.href) return link.href;
	try { return new URL('/favicon.ico', location.href).href; } catch (e) { return ''; }
}`

const visibilityScript = `() => document.visibilityState + ':' + document.hasFocus()`

// Client implements the capture, enumeration and activation capabilities on
// top of a Manager.
type Client struct {
	mgr *Manager
}

func NewClient(mgr *Manager) *Client {
	return &Client{mgr: mgr}
}

// pageState is what one scan of a page learns.
type pageState struct {
	page    *rod.Page
	tab     tab.LiveTab
	visible bool
	focused bool
}

func (c *Client) browser(ctx context.Context) (*rod.Browser, error) {
	b := c.mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: not connected")
	}
	return b.Context(ctx), nil
}

func (c *Client) scanPages(ctx context.Context) ([]pageState, error) {
	b, err := c.browser(ctx)
	if err != nil {
		return nil, err
	}
	pages, err := b.Pages()
	if err != nil {
		return nil, fmt.Errorf("browser: list pages: %w", err)
	}
	states := make([]pageState, 0, len(pages))
	for _, page := range pages {
		info, err := page.Info()
		if err != nil || info.Type != proto.TargetTargetInfoTypePage {
			continue
		}
		st := pageState{
			page: page,
			tab: tab.LiveTab{
				ID:    TabID(info.TargetID),
				Title: info.Title,
				URL:   info.URL,
			},
		}
		if win, err := (proto.BrowserGetWindowForTarget{TargetID: info.TargetID}).Call(b); err == nil {
			st.tab.WindowID = int64(win.WindowID)
		}
		if tab.Capturable(info.URL) {
			st.visible, st.focused, st.tab.FaviconURL = inspectPage(ctx, page)
		}
		states = append(states, st)
	}
	return states, nil
}

// inspectPage reads visibility and favicon from a page under one deadline.
func inspectPage(ctx context.Context, page *rod.Page) (visible, focused bool, favicon string) {
	bounded := page.Context(ctx).Timeout(inspectTimeout)
	defer bounded.CancelTimeout()
	if res, err := bounded.Eval(visibilityScript); err == nil {
		visible, focused = parseVisibility(res.Value.Str())
	}
	if res, err := bounded.Eval(faviconScript); err == nil {
		favicon = res.Value.Str()
	}
	return visible, focused, favicon
}

func parseVisibility(v string) (visible, focused bool) {
	switch v {
	case "visible:true":
		return true, true
	case "visible:false":
		return true, false
	}
	return false, false
}

// markActive flags the active tab: the focused visible page, or failing
// that the first visible one.
func markActive(states []pageState) int {
	active := -1
	for i, st := range states {
		if st.visible && st.focused {
			active = i
			break
		}
		if st.visible && active < 0 {
			active = i
		}
	}
	if active >= 0 {
		states[active].tab.Active = true
	}
	return active
}

// visibleIn returns the index of the page showing in windowID, preferring
// a focused one, or -1.
func visibleIn(states []pageState, windowID int64) int {
	found := -1
	for i, st := range states {
		if !st.visible || st.tab.WindowID != windowID {
			continue
		}
		if st.focused {
			return i
		}
		if found < 0 {
			found = i
		}
	}
	return found
}

func scopeTabs(states []pageState, active int, scope Scope) []tab.LiveTab {
	out := make([]tab.LiveTab, 0, len(states))
	for _, st := range states {
		if scope == CurrentWindow && active >= 0 && st.tab.WindowID != states[active].tab.WindowID {
			continue
		}
		out = append(out, st.tab)
	}
	return out
}

// LiveTabs enumerates open tabs.
func (c *Client) LiveTabs(ctx context.Context, scope Scope) ([]tab.LiveTab, error) {
	states, err := c.scanPages(ctx)
	if err != nil {
		return nil, err
	}
	active := markActive(states)
	return scopeTabs(states, active, scope), nil
}

// CaptureVisibleArea screenshots the visible tab of windowID. While no tab
// in the window reports itself visible (mid-switch, minimised), or the
// visible one is not want, it returns capture.ErrTabBusy so the caller
// retries.
func (c *Client) CaptureVisibleArea(ctx context.Context, windowID int64, want tab.ID, quality int) ([]byte, error) {
	states, err := c.scanPages(ctx)
	if err != nil {
		return nil, err
	}
	idx := visibleIn(states, windowID)
	if idx < 0 || states[idx].tab.ID != want {
		return nil, capture.ErrTabBusy
	}
	target := states[idx].page
	img, err := target.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: intPtr(quality),
	})
	if err != nil {
		return nil, fmt.Errorf("browser: screenshot: %w", err)
	}
	return img, nil
}

// Activate brings the tab to the front.
func (c *Client) Activate(ctx context.Context, id tab.ID) error {
	b, err := c.browser(ctx)
	if err != nil {
		return err
	}
	pages, err := b.Pages()
	if err != nil {
		return fmt.Errorf("browser: list pages: %w", err)
	}
	for _, page := range pages {
		if TabID(page.TargetID) != id {
			continue
		}
		if _, err := page.Activate(); err != nil {
			return fmt.Errorf("browser: activate %d: %w", id, err)
		}
		events.Browser.Activate(int64(id))
		return nil
	}
	return fmt.Errorf("%w: %d", ErrTabNotFound, id)
}

func intPtr(v int) *int { return &v }
