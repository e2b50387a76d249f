package dispatcher

import (
	"github.com/atomicstack/tab-popup-switcher/internal/backend"
	"github.com/atomicstack/tab-popup-switcher/internal/state"
	"github.com/atomicstack/tab-popup-switcher/internal/tab"
)

// Capturer is the part of the capture gate the dispatcher drives.
type Capturer interface {
	Start(tab.LiveTab)
	Forget(tab.ID)
}

type Result struct {
	TabsUpdated      bool
	CaptureStarted   bool
	CaptureForgotten bool
}

type Dispatcher struct {
	tabs    state.TabStore
	capture Capturer
}

func New(tabs state.TabStore, capture Capturer) *Dispatcher {
	return &Dispatcher{tabs: tabs, capture: capture}
}

func (d *Dispatcher) Handle(evt backend.Event) Result {
	var res Result
	if evt.Err != nil {
		return res
	}
	switch evt.Kind {
	case backend.KindSnapshot:
		d.tabs.SetTabs(evt.Tabs)
		res.TabsUpdated = true
	case backend.KindActivated, backend.KindUpdated:
		d.capture.Start(evt.Tab)
		res.CaptureStarted = true
	case backend.KindNavigated:
		if evt.Tab.Active {
			d.capture.Start(evt.Tab)
			res.CaptureStarted = true
		} else {
			d.capture.Forget(evt.Tab.ID)
			res.CaptureForgotten = true
		}
	case backend.KindClosed:
		d.capture.Forget(evt.Tab.ID)
		res.CaptureForgotten = true
	}
	return res
}
