package memory

import (
	"slices"
	"sync"
)

// collection is an insertion-ordered slice of entities guarded by a
// RWMutex. Values go in and come out as deep copies so callers never share
// memory with the store.
type collection[T any] struct {
	mu    sync.RWMutex
	items []T
	id    func(*T) string
	clone func(T) T
}

func newCollection[T any](id func(*T) string, clone func(T) T) *collection[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &collection[T]{id: id, clone: clone}
}

func (c *collection[T]) add(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, c.clone(v))
}

func (c *collection[T]) indexOf(id string) int {
	return slices.IndexFunc(c.items, func(v T) bool { return c.id(&v) == id })
}

func (c *collection[T]) get(id string) (*T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexOf(id)
	if i < 0 {
		return nil, false
	}
	v := c.clone(c.items[i])
	return &v, true
}

// list returns copies of the items accepted by keep (all when keep is nil).
func (c *collection[T]) list(keep func(*T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.items))
	for i := range c.items {
		if keep != nil && !keep(&c.items[i]) {
			continue
		}
		out = append(out, c.clone(c.items[i]))
	}
	return out
}

// update applies fn to the stored item in place and returns a copy.
func (c *collection[T]) update(id string, fn func(*T)) (*T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return nil, false
	}
	fn(&c.items[i])
	v := c.clone(c.items[i])
	return &v, true
}

func (c *collection[T]) delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.items = slices.Delete(c.items, i, i+1)
	return true
}
