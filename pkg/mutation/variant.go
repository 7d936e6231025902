package mutation

import "chainview/pkg/models"

// KeyFunc returns the identity of an item, e.g. its address.
type KeyFunc[T any] func(T) string

// Mutation is one kind of optimistic edit. Apply returns the next page of
// items without modifying the input slice.
type Mutation[T any] interface {
	Operation() models.Operation
	Payload() T
	Apply(items []T, keyOf KeyFunc[T]) []T
}

// Toggle flips a boolean field of one item, e.g. the deleted flag for
// delete and undelete.
type Toggle[T any] struct {
	Op   models.Operation
	Item T
	Flip func(T) T
}

func (m Toggle[T]) Operation() models.Operation { return m.Op }
func (m Toggle[T]) Payload() T                  { return m.Item }

func (m Toggle[T]) Apply(items []T, keyOf KeyFunc[T]) []T {
	return replace(items, keyOf, keyOf(m.Item), m.Flip)
}

// Remove drops one item from the page.
type Remove[T any] struct {
	Item T
}

func (m Remove[T]) Operation() models.Operation { return models.OpRemove }
func (m Remove[T]) Payload() T                  { return m.Item }

func (m Remove[T]) Apply(items []T, keyOf KeyFunc[T]) []T {
	key := keyOf(m.Item)
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keyOf(it) != key {
			out = append(out, it)
		}
	}
	return out
}

// Merge replaces one item with an edited version. It serves update and
// autoname.
type Merge[T any] struct {
	Op   models.Operation
	Item T
}

func (m Merge[T]) Operation() models.Operation {
	if m.Op == "" {
		return models.OpUpdate
	}
	return m.Op
}

func (m Merge[T]) Payload() T { return m.Item }

func (m Merge[T]) Apply(items []T, keyOf KeyFunc[T]) []T {
	return replace(items, keyOf, keyOf(m.Item), func(T) T { return m.Item })
}

// Create shows a new item at the top of the page, or replaces the row that
// already has its key.
type Create[T any] struct {
	Item T
}

func (m Create[T]) Operation() models.Operation { return models.OpCreate }
func (m Create[T]) Payload() T                  { return m.Item }

func (m Create[T]) Apply(items []T, keyOf KeyFunc[T]) []T {
	key := keyOf(m.Item)
	for _, it := range items {
		if keyOf(it) == key {
			return replace(items, keyOf, key, func(T) T { return m.Item })
		}
	}
	out := make([]T, 0, len(items)+1)
	out = append(out, m.Item)
	return append(out, items...)
}

func replace[T any](items []T, keyOf KeyFunc[T], key string, fn func(T) T) []T {
	out := make([]T, len(items))
	for i, it := range items {
		if keyOf(it) == key {
			it = fn(it)
		}
		out[i] = it
	}
	return out
}
