package browser

import (
	"hash/fnv"

	"github.com/atomicstack/tab-popup-switcher/internal/tab"
	"github.com/go-rod/rod/lib/proto"
)

// TabID maps a DevTools target id onto a positive, non-zero tab id. The
// same target always maps to the same id.
func TabID(target proto.TargetTargetID) tab.ID {
	h := fnv.New64a()
	_, _ = h.Write([]byte(target))
	id := int64(h.Sum64() & 0x7fffffffffffffff)
	if id == 0 {
		id = 1
	}
	return tab.ID(id)
}
