package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"chainview/pkg/models"
	"chainview/pkg/viewstate"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrExists      = errors.New("already exists")
	ErrUnsupported = errors.New("operation not supported")
	ErrNotDeleted  = errors.New("delete the item before removing it")
)

// opClean is the FailNext key for Clean.
const opClean models.Operation = "clean"

// MemoryOptions describes how a Memory store treats its item type.
type MemoryOptions[T any] struct {
	KeyOf func(T) string
	// Field returns the sortable value of a column.
	Field func(item T, key string) any
	// Match reports whether item passes the filter. Defaults to a
	// case-insensitive substring match on the printed item.
	Match func(item T, filter string) bool
	// InFacet restricts a fetch to one facet. Without it facets are ignored.
	InFacet func(item T, facet string) bool
	// IsDeleted and SetDeleted enable delete, undelete and guarded remove.
	IsDeleted  func(T) bool
	SetDeleted func(T, bool) T
	// Stale selects what Clean removes when given no ids. Defaults to
	// IsDeleted.
	Stale func(T) bool
	// Autoname derives a new name for an item.
	Autoname func(T) T
	// Latency is slept before every call, honoring the context.
	Latency time.Duration
}

// Memory is an in-memory Resource used by demo mode and tests.
type Memory[T any] struct {
	mu    sync.Mutex
	items []T
	opts  MemoryOptions[T]
	fail  map[models.Operation]error
}

func NewMemory[T any](items []T, opts MemoryOptions[T]) *Memory[T] {
	if opts.Match == nil {
		opts.Match = func(item T, filter string) bool {
			return strings.Contains(strings.ToLower(fmt.Sprintf("%+v", item)), strings.ToLower(filter))
		}
	}
	if opts.Stale == nil {
		opts.Stale = opts.IsDeleted
	}
	m := &Memory[T]{opts: opts, fail: make(map[models.Operation]error)}
	m.items = append(m.items, items...)
	return m
}

// FailNext makes the next call of op return err. Use "clean" for Clean.
func (m *Memory[T]) FailNext(op models.Operation, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[op] = err
}

// Len is the number of stored items.
func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// All returns a copy of every stored item.
func (m *Memory[T]) All() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]T(nil), m.items...)
}

func (m *Memory[T]) wait(ctx context.Context) error {
	if m.opts.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(m.opts.Latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (m *Memory[T]) Fetch(ctx context.Context, q models.Query) (models.Page[T], error) {
	if err := m.wait(ctx); err != nil {
		return models.Page[T]{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var rows []T
	filter := strings.TrimSpace(q.Filter)
	for _, it := range m.items {
		if q.Facet != "" && m.opts.InFacet != nil && !m.opts.InFacet(it, q.Facet) {
			continue
		}
		if filter == "" || m.opts.Match(it, filter) {
			rows = append(rows, it)
		}
	}
	if q.SortKey != "" && m.opts.Field != nil {
		dir := viewstate.Direction(q.SortDir)
		if dir == "" {
			dir = viewstate.Asc
		}
		viewstate.SortSlice(rows, &viewstate.SortSpec{Key: q.SortKey, Direction: dir}, m.opts.Field)
	}

	page := models.Page[T]{TotalItems: len(rows)}
	start := min(max(q.Offset, 0), len(rows))
	end := len(rows)
	if q.Limit > 0 {
		end = min(start+q.Limit, len(rows))
	}
	page.Items = append([]T{}, rows[start:end]...)
	return page, nil
}

func (m *Memory[T]) Mutate(ctx context.Context, op models.Operation, item T) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.fail[op]; ok {
		delete(m.fail, op)
		return err
	}

	key := m.opts.KeyOf(item)
	idx := m.indexOf(key)
	switch op {
	case models.OpCreate:
		if idx >= 0 {
			return fmt.Errorf("%s: %w", key, ErrExists)
		}
		m.items = append([]T{item}, m.items...)
		return nil
	}

	if idx < 0 {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	switch op {
	case models.OpUpdate:
		m.items[idx] = item
	case models.OpDelete, models.OpUndelete:
		if m.opts.SetDeleted == nil {
			return fmt.Errorf("%s: %w", op, ErrUnsupported)
		}
		m.items[idx] = m.opts.SetDeleted(m.items[idx], op == models.OpDelete)
	case models.OpRemove:
		if m.opts.IsDeleted != nil && !m.opts.IsDeleted(m.items[idx]) {
			return fmt.Errorf("%s: %w", key, ErrNotDeleted)
		}
		m.items = append(m.items[:idx], m.items[idx+1:]...)
	case models.OpAutoname:
		if m.opts.Autoname == nil {
			return fmt.Errorf("%s: %w", op, ErrUnsupported)
		}
		m.items[idx] = m.opts.Autoname(m.items[idx])
	default:
		return fmt.Errorf("%s: %w", op, ErrUnsupported)
	}
	return nil
}

// Clean removes the listed items, or every stale item when ids is empty.
func (m *Memory[T]) Clean(ctx context.Context, ids []string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.fail[opClean]; ok {
		delete(m.fail, opClean)
		return err
	}

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	if len(ids) == 0 && m.opts.Stale == nil {
		return fmt.Errorf("clean: %w", ErrUnsupported)
	}

	kept := m.items[:0]
	for _, it := range m.items {
		var remove bool
		if len(ids) == 0 {
			remove = m.opts.Stale(it)
		} else {
			remove = drop[m.opts.KeyOf(it)]
		}
		if !remove {
			kept = append(kept, it)
		}
	}
	m.items = kept
	return nil
}

func (m *Memory[T]) indexOf(key string) int {
	for i, it := range m.items {
		if m.opts.KeyOf(it) == key {
			return i
		}
	}
	return -1
}
