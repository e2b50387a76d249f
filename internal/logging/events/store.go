package events

import "github.com/atomicstack/tab-popup-switcher/internal/logging"

type StoreTracer struct{}

var Store = StoreTracer{}

func (StoreTracer) Put(key string, lastActive int64) {
	logging.Trace("store.put", map[string]interface{}{"key": key, "lastActive": lastActive})
}

func (StoreTracer) Stale(key string, existing, incoming int64) {
	logging.Trace("store.stale", map[string]interface{}{"key": key, "existing": existing, "incoming": incoming})
}

func (StoreTracer) Evict(keys []string) {
	logging.Trace("store.evict", map[string]interface{}{"keys": keys})
}

func (StoreTracer) Malformed(key string, err error) {
	logging.Trace("store.malformed", map[string]interface{}{"key": key, "error": errString(err)})
}

func (StoreTracer) Merge(stored, live, kept int) {
	logging.Trace("store.merge", map[string]interface{}{"stored": stored, "live": live, "kept": kept})
}

func (StoreTracer) Clear() {
	logging.Trace("store.clear", nil)
}
