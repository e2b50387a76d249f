// Package browser talks to Chrome over the DevTools protocol: it enumerates
// tabs, captures the visible one and activates tabs on request.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/atomicstack/tab-popup-switcher/internal/logging"
	"github.com/atomicstack/tab-popup-switcher/internal/logging/events"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

var errClosed = errors.New("browser: manager is closed")

// Config configures the Manager.
type Config struct {
	// RemoteURL is the DevTools URL of a running Chrome
	// (ws://... or http://127.0.0.1:9222). Empty launches a local Chrome.
	RemoteURL string
	// Headless only applies to a launched Chrome.
	Headless bool
}

// Manager owns the connection to Chrome.
type Manager struct {
	cfg     Config
	mu      sync.RWMutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg}
}

// Start connects to (or launches) Chrome and returns the rod handle.
func (m *Manager) Start(ctx context.Context) (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errClosed
	}
	if m.browser != nil {
		return m.browser, nil
	}

	controlURL := m.cfg.RemoteURL
	launched := false
	if controlURL == "" {
		l := launcher.New().Headless(m.cfg.Headless).Leakless(true)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		controlURL = u
		m.lnch = l
		launched = true
	} else if resolved, err := launcher.ResolveURL(controlURL); err == nil {
		controlURL = resolved
	} else {
		return nil, fmt.Errorf("browser: resolve %s: %w", controlURL, err)
	}

	b := rod.New().Context(ctx).ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		if m.lnch != nil {
			m.lnch.Cleanup()
			m.lnch = nil
		}
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	m.browser = b
	events.Browser.Connect(controlURL, launched)
	return b, nil
}

// Browser returns the connected handle, or nil before Start.
func (m *Manager) Browser() *rod.Browser {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.browser
}

// Close disconnects. A launched Chrome is shut down; a remote one is left
// running.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.lnch != nil {
		if m.browser != nil {
			if err := m.browser.Close(); err != nil {
				logging.Error(fmt.Errorf("browser: close: %w", err))
			}
		}
		m.lnch.Cleanup()
		m.lnch = nil
	}
	m.browser = nil
	return nil
}
