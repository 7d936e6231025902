// Package mutation applies edits to a page of items optimistically, confirms
// them with the backend and rolls them back when the backend refuses.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"io"

	"chainview/pkg/models"
	"chainview/pkg/viewstate"

	"github.com/charmbracelet/log"
)

var (
	ErrNoMutator = errors.New("no mutate function configured")
	ErrNoCleaner = errors.New("no clean function configured")
)

// Mutator sends one operation on one item to the backend.
type Mutator[T any] func(ctx context.Context, op models.Operation, item T) error

// Cleaner runs a bulk clean over ids. Empty ids means every eligible item.
type Cleaner func(ctx context.Context, ids []string) error

// StatusEmitter receives the human-readable outcome of mutations.
type StatusEmitter interface {
	Status(msg string)
	Error(msg string)
}

// Pager is the view the pipeline re-fetches after a confirmed mutation.
type Pager interface {
	Pagination() viewstate.PaginationState
	GoToPage(page int)
	Reload(ctx context.Context) error
}

type Options[T any] struct {
	Mutate     Mutator[T]
	Clean      Cleaner
	Status     StatusEmitter
	Processing *ProcessingSet
	Logger     *log.Logger
}

// Pipeline runs mutations against one view's collection.
type Pipeline[T any] struct {
	items      *viewstate.Collection[T]
	pager      Pager
	keyOf      KeyFunc[T]
	mutate     Mutator[T]
	clean      Cleaner
	status     StatusEmitter
	processing *ProcessingSet
	log        *log.Logger
}

func New[T any](items *viewstate.Collection[T], pager Pager, keyOf KeyFunc[T], opts Options[T]) *Pipeline[T] {
	p := &Pipeline[T]{
		items:      items,
		pager:      pager,
		keyOf:      keyOf,
		mutate:     opts.Mutate,
		clean:      opts.Clean,
		status:     opts.Status,
		processing: opts.Processing,
		log:        opts.Logger,
	}
	if p.status == nil {
		p.status = discardStatus{}
	}
	if p.processing == nil {
		p.processing = NewProcessingSet(DefaultGrace)
	}
	if p.log == nil {
		p.log = log.New(io.Discard)
	}
	return p
}

// Processing returns the set of keys with a mutation in flight.
func (p *Pipeline[T]) Processing() *ProcessingSet {
	return p.processing
}

// Inflight is a mutation whose optimistic step has been applied and whose
// backend call has not been made yet.
type Inflight struct {
	Key  string
	Op   models.Operation
	wait func(ctx context.Context) error
}

// Wait issues the backend call and settles the mutation. It must be called
// exactly once.
func (f *Inflight) Wait(ctx context.Context) error {
	return f.wait(ctx)
}

// Start snapshots the collection, marks the item processing and applies m
// to the collection before returning.
func (p *Pipeline[T]) Start(m Mutation[T]) *Inflight {
	item := m.Payload()
	key := p.keyOf(item)
	op := m.Operation()

	snapshot := p.items.Items()
	p.processing.Add(key)
	next := m.Apply(snapshot, p.keyOf)
	p.items.Restore(next)
	p.log.Debug("optimistic apply", "op", op, "key", key, "rows", len(next))

	emptied := len(snapshot) > 0 && len(next) == 0
	return &Inflight{
		Key: key,
		Op:  op,
		wait: func(ctx context.Context) error {
			defer p.processing.Release(key)
			return p.settle(ctx, op, key, item, snapshot, emptied)
		},
	}
}

// Do applies m and waits for the backend.
func (p *Pipeline[T]) Do(ctx context.Context, m Mutation[T]) error {
	return p.Start(m).Wait(ctx)
}

func (p *Pipeline[T]) settle(ctx context.Context, op models.Operation, key string, item T, snapshot []T, emptied bool) error {
	err := ErrNoMutator
	if p.mutate != nil {
		err = p.mutate(ctx, op, item)
	}
	if err != nil {
		p.items.Restore(snapshot)
		p.log.Warn("mutation rolled back", "op", op, "key", key, "err", err)
		p.status.Error(fmt.Sprintf("%s %s failed: %v", op, key, err))
		return fmt.Errorf("%s %s: %w", op, key, err)
	}

	p.status.Status(fmt.Sprintf("%s %s", op, key))
	from := p.pager.Pagination().CurrentPage
	if err := p.pager.Reload(ctx); err != nil {
		return fmt.Errorf("reload after %s: %w", op, err)
	}
	if emptied {
		return p.backOffEmptyPage(ctx, from)
	}
	return nil
}

// backOffEmptyPage moves off a page whose only row was just removed. A pager
// that already left page from while reloading is not moved again.
func (p *Pipeline[T]) backOffEmptyPage(ctx context.Context, from int) error {
	pg := p.pager.Pagination()
	if pg.CurrentPage == 0 || pg.CurrentPage != from {
		return nil
	}
	target := min(pg.CurrentPage-1, pg.LastPage())
	if target == pg.CurrentPage {
		return nil
	}
	p.log.Debug("page emptied", "from", pg.CurrentPage, "to", target)
	p.pager.GoToPage(target)
	if err := p.pager.Reload(ctx); err != nil {
		return fmt.Errorf("reload page %d: %w", target, err)
	}
	return nil
}

// Clean runs a bulk clean. There is no optimistic step; the page is
// re-fetched on success.
func (p *Pipeline[T]) Clean(ctx context.Context, ids []string) error {
	if p.clean == nil {
		return ErrNoCleaner
	}
	if err := p.clean(ctx, ids); err != nil {
		p.log.Warn("clean failed", "ids", len(ids), "err", err)
		p.status.Error(fmt.Sprintf("clean failed: %v", err))
		return fmt.Errorf("clean: %w", err)
	}

	if len(ids) == 0 {
		p.status.Status("cleaned")
	} else {
		p.status.Status(fmt.Sprintf("cleaned %d items", len(ids)))
	}
	if err := p.pager.Reload(ctx); err != nil {
		return fmt.Errorf("reload after clean: %w", err)
	}
	pg := p.pager.Pagination()
	if !pg.Valid() {
		p.pager.GoToPage(pg.ClampPage(pg.CurrentPage))
		if err := p.pager.Reload(ctx); err != nil {
			return fmt.Errorf("reload after clean: %w", err)
		}
	}
	return nil
}

type discardStatus struct{}

func (discardStatus) Status(string) {}
func (discardStatus) Error(string)  {}
