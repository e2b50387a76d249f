// Package overlay keeps at most one switcher mounted at a time.
package overlay

import (
	"sync"

	"github.com/atomicstack/tab-popup-switcher/internal/switcher"
)

type Host struct {
	mu      sync.Mutex
	current *switcher.Controller
	gen     uint64
}

// Mount makes ctrl the mounted controller, disposing whichever was mounted
// before. The returned func disposes ctrl if it is still mounted.
func (h *Host) Mount(ctrl *switcher.Controller) (dispose func()) {
	h.mu.Lock()
	prev := h.current
	h.current = ctrl
	h.gen++
	gen := h.gen
	h.mu.Unlock()

	if prev != nil && prev != ctrl {
		prev.Dispose()
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			if h.gen != gen {
				h.mu.Unlock()
				return
			}
			h.current = nil
			h.mu.Unlock()
			ctrl.Dispose()
		})
	}
}

// Current returns the mounted controller, or nil.
func (h *Host) Current() *switcher.Controller {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}
