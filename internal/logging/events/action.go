package events

import "github.com/atomicstack/tab-popup-switcher/internal/logging"

type ActionTracer struct{}

var Action = ActionTracer{}

func (ActionTracer) Queue(id, label string) {
	logging.Trace("action.queue", map[string]interface{}{"id": id, "label": label})
}

func (ActionTracer) Result(id, label string, err error) {
	payload := map[string]interface{}{"id": id, "label": label}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("action.result", payload)
}
