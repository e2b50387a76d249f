package events

import "github.com/atomicstack/tab-popup-switcher/internal/logging"

type BrowserTracer struct{}

var Browser = BrowserTracer{}

func (BrowserTracer) Connect(url string, launched bool) {
	logging.Trace("browser.connect", map[string]interface{}{"url": url, "launched": launched})
}

func (BrowserTracer) Activate(id int64) {
	logging.Trace("browser.activate", map[string]interface{}{"tab": id})
}

func (BrowserTracer) TabEvent(kind string, id int64, url string) {
	logging.Trace("browser.tab", map[string]interface{}{"kind": kind, "tab": id, "url": url})
}

func (BrowserTracer) PollError(err error) {
	if err == nil {
		return
	}
	logging.Trace("browser.poll.error", map[string]interface{}{"error": err.Error()})
}
