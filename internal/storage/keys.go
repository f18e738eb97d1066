package storage

import (
	"slices"

	"github.com/kacper-wojtaszczyk/jackfruit/pairs-go/internal/model"
)

// keyCollector accumulates listed keys, dropping directory markers and
// duplicates.
type keyCollector struct {
	seen map[model.ObjectKey]struct{}
	keys model.KeySet
}

func newKeyCollector() *keyCollector {
	return &keyCollector{seen: make(map[model.ObjectKey]struct{})}
}

func (c *keyCollector) add(raw string) {
	key := model.ObjectKey(raw)
	if key.IsDirectoryMarker() {
		return
	}
	if _, dup := c.seen[key]; dup {
		return
	}
	c.seen[key] = struct{}{}
	c.keys = append(c.keys, key)
}

// KeySet returns the collected keys in lexicographic order.
func (c *keyCollector) KeySet() model.KeySet {
	out := slices.Clone(c.keys)
	if out == nil {
		out = model.KeySet{}
	}
	slices.Sort(out)
	return out
}
