package events

import "github.com/atomicstack/tab-popup-switcher/internal/logging"

type SwitcherTracer struct{}

type CancelReason string

const (
	ReasonEscape   CancelReason = "escape"
	ReasonHidden   CancelReason = "hidden"
	ReasonDisposed CancelReason = "disposed"
	ReasonExplicit CancelReason = "explicit"
)

var Switcher = SwitcherTracer{}

func (SwitcherTracer) Open(count, cursor int, triggerKeys []string) {
	logging.Trace("switcher.open", map[string]interface{}{"count": count, "cursor": cursor, "keys": triggerKeys})
}

func (SwitcherTracer) Cursor(cursor, count int) {
	logging.Trace("switcher.cursor", map[string]interface{}{"cursor": cursor, "count": count})
}

func (SwitcherTracer) Filter(query string, count, cursor int) {
	logging.Trace("switcher.filter", map[string]interface{}{"query": query, "count": count, "cursor": cursor})
}

func (SwitcherTracer) Commit(id int64, ok bool) {
	logging.Trace("switcher.commit", map[string]interface{}{"tab": id, "activate": ok})
}

func (SwitcherTracer) Cancel(reason CancelReason) {
	logging.Trace("switcher.cancel", map[string]interface{}{"reason": string(reason)})
}

func (SwitcherTracer) KeyRelease(key string, remaining int) {
	logging.Trace("switcher.keyup", map[string]interface{}{"key": key, "remaining": remaining})
}
