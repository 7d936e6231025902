package viewstate

import "sync"

// CollectionState is what a view currently holds for its page.
type CollectionState[T any] struct {
	Items   []T
	Loading bool
	Error   string
}

// Collection is the observable page of items a view renders. It is the only
// place optimistic edits and fetched pages are written to.
type Collection[T any] struct {
	mu    sync.RWMutex
	state CollectionState[T]
	subs  listeners[func()]
}

func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{}
}

// Snapshot returns a copy of the current state.
func (c *Collection[T]) Snapshot() CollectionState[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.state
	s.Items = cloneItems(c.state.Items)
	return s
}

// Items returns a copy of the current items.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneItems(c.state.Items)
}

// Len is the number of items on the page.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.state.Items)
}

// SetItems replaces the page and clears loading and error.
func (c *Collection[T]) SetItems(items []T) {
	c.set(func(s *CollectionState[T]) {
		s.Items = cloneItems(items)
		s.Loading = false
		s.Error = ""
	})
}

// Restore puts a snapshot back verbatim without touching loading or error.
func (c *Collection[T]) Restore(items []T) {
	c.set(func(s *CollectionState[T]) {
		s.Items = cloneItems(items)
	})
}

// BeginLoad marks a fetch in flight and clears the previous error.
func (c *Collection[T]) BeginLoad() {
	c.set(func(s *CollectionState[T]) {
		s.Loading = true
		s.Error = ""
	})
}

// Fail records a fetch error. Items are kept.
func (c *Collection[T]) Fail(msg string) {
	c.set(func(s *CollectionState[T]) {
		s.Loading = false
		s.Error = msg
	})
}

// Subscribe registers fn and returns the function that removes it.
func (c *Collection[T]) Subscribe(fn func()) (unsubscribe func()) {
	return c.subs.add(fn)
}

func (c *Collection[T]) set(fn func(*CollectionState[T])) {
	c.mu.Lock()
	fn(&c.state)
	c.mu.Unlock()
	for _, l := range c.subs.snapshot() {
		l()
	}
}

func cloneItems[T any](items []T) []T {
	if items == nil {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
