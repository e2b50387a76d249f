package events

import "github.com/atomicstack/tab-popup-switcher/internal/logging"

type RouterTracer struct{}

var Router = RouterTracer{}

func (RouterTracer) Request(msgType, id string) {
	logging.Trace("router.request", map[string]interface{}{"type": msgType, "id": id})
}

func (RouterTracer) Response(msgType, id string, candidates int) {
	logging.Trace("router.response", map[string]interface{}{"type": msgType, "id": id, "candidates": candidates})
}

func (RouterTracer) Push(msgType string, subscribers int) {
	logging.Trace("router.push", map[string]interface{}{"type": msgType, "subscribers": subscribers})
}

func (RouterTracer) Command(name, action string) {
	logging.Trace("router.command", map[string]interface{}{"name": name, "action": action})
}

func (RouterTracer) Error(msgType string, err error) {
	if err == nil {
		return
	}
	logging.Trace("router.error", map[string]interface{}{"type": msgType, "error": err.Error()})
}
