// Package tableview composes the per-view stores, keyboard navigation and
// the mutation pipeline into one controller per table.
package tableview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"chainview/pkg/keynav"
	"chainview/pkg/models"
	"chainview/pkg/mutation"
	"chainview/pkg/viewstate"

	"github.com/charmbracelet/log"
)

var errNoFetch = errors.New("no fetch function configured")

// DefaultSettleDelay is how long after a programmatic page change the
// table takes keyboard focus.
const DefaultSettleDelay = 50 * time.Millisecond

// Fetcher loads one page of items.
type Fetcher[T any] func(ctx context.Context, q models.Query) (models.Page[T], error)

// Preferences persists per-view choices under "view/facet/field" keys.
type Preferences interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

type Config[T any] struct {
	Key        viewstate.Key
	Stores     *Stores
	Fetch      Fetcher[T]
	Mutate     mutation.Mutator[T]
	Clean      mutation.Cleaner
	KeyOf      mutation.KeyFunc[T]
	Status     mutation.StatusEmitter
	Processing *mutation.ProcessingSet
	Prefs      Preferences
	Logger     *log.Logger

	// SettleDelay defaults to DefaultSettleDelay. AfterFunc defaults to
	// time.AfterFunc and exists so tests can run the focus change inline.
	SettleDelay time.Duration
	AfterFunc   func(d time.Duration, fn func())

	OnEnter  func(item T, index int)
	OnEscape func()

	// ClientSort, when set, orders each fetched page locally by column.
	ClientSort func(item T, key string) any
}

// Controller is the table of one view: it reads its state from the shared
// stores, owns the fetched page, and routes keys and actions.
type Controller[T any] struct {
	cfg       Config[T]
	key       viewstate.Key
	stores    *Stores
	items     *viewstate.Collection[T]
	selection *viewstate.SelectionController
	pipeline  *mutation.Pipeline[T]
	log       *log.Logger

	gen     atomic.Uint64
	applyMu sync.Mutex
	rows    atomic.Int64
	unsub   func()
}

func New[T any](cfg Config[T]) *Controller[T] {
	if cfg.Stores == nil {
		cfg.Stores = NewStores(viewstate.DefaultPageSize)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	}
	if cfg.KeyOf == nil {
		cfg.KeyOf = func(item T) string { return fmt.Sprint(item) }
	}

	c := &Controller[T]{
		cfg:       cfg,
		key:       cfg.Key,
		stores:    cfg.Stores,
		items:     viewstate.NewCollection[T](),
		selection: cfg.Stores.Selections.For(cfg.Key),
		log:       cfg.Logger.With("view", cfg.Key.String()),
	}
	c.pipeline = mutation.New(c.items, c, cfg.KeyOf, mutation.Options[T]{
		Mutate:     cfg.Mutate,
		Clean:      cfg.Clean,
		Status:     cfg.Status,
		Processing: cfg.Processing,
		Logger:     c.log,
	})
	c.unsub = c.items.Subscribe(c.clampOnResize)
	c.restorePrefs()
	return c
}

// clampOnResize keeps the selection on the page when its row count changes.
// Loading and error transitions keep the rows, so a selection placed for the
// page being fetched survives until the page arrives.
func (c *Controller[T]) clampOnResize() {
	n := int64(c.items.Len())
	if c.rows.Swap(n) != n {
		c.selection.Clamp(int(n))
	}
}

// Close detaches the controller from its collection.
func (c *Controller[T]) Close() {
	if c.unsub != nil {
		c.unsub()
	}
}

func (c *Controller[T]) Key() viewstate.Key { return c.key }

// Items returns the rendered page.
func (c *Controller[T]) Items() []T { return c.items.Items() }

// Collection exposes the page holder for subscription.
func (c *Controller[T]) Collection() *viewstate.Collection[T] { return c.items }

func (c *Controller[T]) Selection() viewstate.SelectionState { return c.selection.State() }

// Selected returns the item under the cursor.
func (c *Controller[T]) Selected() (T, bool) {
	var zero T
	idx := c.selection.State().SelectedRowIndex
	items := c.items.Items()
	if idx < 0 || idx >= len(items) {
		return zero, false
	}
	return items[idx], true
}

// Query builds the fetch request from the current stores.
func (c *Controller[T]) Query() models.Query {
	pg := c.stores.Pagination.Get(c.key)
	q := models.Query{
		Offset: pg.Offset(),
		Limit:  pg.PageSize,
		Filter: c.stores.Filters.Get(c.key),
		Facet:  c.key.Tab,
	}
	if s := c.stores.Sorts.Get(c.key); s != nil {
		q.SortKey = s.Key
		q.SortDir = string(s.Direction)
	}
	return q
}

// Load fetches the current page. A response that arrives after a newer
// Load was dispatched is dropped. When the response shows the current page
// is past the end, the page is clamped and fetched once more.
func (c *Controller[T]) Load(ctx context.Context) error {
	outOfRange, err := c.fetch(ctx)
	if err != nil || !outOfRange {
		return err
	}
	_, err = c.fetch(ctx)
	return err
}

func (c *Controller[T]) fetch(ctx context.Context) (outOfRange bool, err error) {
	gen := c.gen.Add(1)
	c.items.BeginLoad()
	q := c.Query()
	c.log.Debug("fetch", "gen", gen, "offset", q.Offset, "limit", q.Limit, "sort", q.SortKey, "filter", q.Filter)

	var page models.Page[T]
	if c.cfg.Fetch == nil {
		err = errNoFetch
	} else {
		page, err = c.cfg.Fetch(ctx, q)
	}

	c.applyMu.Lock()
	defer c.applyMu.Unlock()
	if latest := c.gen.Load(); gen != latest {
		c.log.Debug("discard stale fetch", "gen", gen, "latest", latest)
		return false, nil
	}
	if err != nil {
		c.items.Fail(err.Error())
		c.log.Error("fetch failed", "err", err)
		return false, fmt.Errorf("fetch %s: %w", c.key, err)
	}

	if c.cfg.ClientSort != nil {
		viewstate.SortSlice(page.Items, c.stores.Sorts.Get(c.key), c.cfg.ClientSort)
	}
	wasEmpty := c.items.Len() == 0
	c.stores.Pagination.SetTotalItems(c.key, page.TotalItems)
	if pg := c.stores.Pagination.Get(c.key); !pg.Valid() {
		target := pg.ClampPage(pg.CurrentPage)
		c.log.Debug("page out of range", "page", pg.CurrentPage, "total", pg.TotalItems, "to", target)
		c.stores.Pagination.GoToPage(c.key, target)
		return true, nil
	}
	c.items.SetItems(page.Items)
	if wasEmpty && len(page.Items) > 0 {
		c.selection.FocusTable()
		if c.selection.State().SelectedRowIndex < 0 {
			c.selection.SetSelectedRowIndex(0)
		}
	}
	return false, nil
}

// Reload re-fetches the page with unchanged parameters.
func (c *Controller[T]) Reload(ctx context.Context) error {
	return c.Load(ctx)
}

// Pagination is the page state of this view.
func (c *Controller[T]) Pagination() viewstate.PaginationState {
	return c.stores.Pagination.Get(c.key)
}

// Props computes the render props for the current state.
func (c *Controller[T]) Props() Props[T] {
	st := c.items.Snapshot()
	pg := c.stores.Pagination.Get(c.key)
	return Props[T]{
		Key:        c.key,
		Mode:       modeOf(st.Loading, st.Error, len(st.Items)),
		Items:      st.Items,
		Error:      st.Error,
		Pagination: pg,
		TotalPages: pg.TotalPages(),
		Sort:       c.stores.Sorts.Get(c.key),
		Filter:     c.stores.Filters.Get(c.key),
		Selection:  c.selection.State(),
		Processing: c.processingOnPage(st.Items),
	}
}

// Summary is Props without the items.
func (c *Controller[T]) Summary() Summary {
	p := c.Props()
	return Summary{
		Key:        p.Key,
		Mode:       p.Mode,
		Rows:       len(p.Items),
		Error:      p.Error,
		Pagination: p.Pagination,
		TotalPages: p.TotalPages,
		Sort:       p.Sort.String(),
		Filter:     p.Filter,
		Selection:  p.Selection,
		Processing: p.Processing,
	}
}

func (c *Controller[T]) processingOnPage(items []T) []string {
	var keys []string
	ps := c.pipeline.Processing()
	for _, it := range items {
		if k := c.cfg.KeyOf(it); ps.Has(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// IsProcessing reports whether item has a mutation in flight.
func (c *Controller[T]) IsProcessing(item T) bool {
	return c.pipeline.Processing().Has(c.cfg.KeyOf(item))
}

// Outcome tells the caller what a key press did.
type Outcome struct {
	Handled bool
	Reload  bool
}

// HandleKey routes a navigation key. Keys are ignored unless the table has
// focus. When Reload is set the caller must Load the new page.
func (c *Controller[T]) HandleKey(k keynav.Key) Outcome {
	if !c.selection.Navigable() {
		return Outcome{}
	}
	pg := c.stores.Pagination.Get(c.key)
	items := c.items.Items()
	res := keynav.Navigate(keynav.Input{
		Key:         k,
		Selected:    c.selection.State().SelectedRowIndex,
		ItemCount:   len(items),
		CurrentPage: pg.CurrentPage,
		TotalPages:  pg.TotalPages(),
		PageSize:    pg.PageSize,
		TotalItems:  pg.TotalItems,
	})
	if !res.Handled {
		return Outcome{}
	}
	if res.PageChanged {
		c.stores.Pagination.GoToPage(c.key, res.Page)
	}
	if res.Selected != c.selection.State().SelectedRowIndex {
		c.selection.SetSelectedRowIndex(res.Selected)
	}
	if res.Enter && c.cfg.OnEnter != nil && res.Selected >= 0 && res.Selected < len(items) {
		c.cfg.OnEnter(items[res.Selected], res.Selected)
	}
	if res.Escape && c.cfg.OnEscape != nil {
		c.cfg.OnEscape()
	}
	return Outcome{Handled: true, Reload: res.PageChanged}
}

// OnEnter replaces the callback HandleKey runs when Enter lands on a row.
// It is meant for wiring before the first key arrives.
func (c *Controller[T]) OnEnter(fn func(item T, index int)) { c.cfg.OnEnter = fn }

// ClickRow selects row i and gives the table focus.
func (c *Controller[T]) ClickRow(i int) {
	c.selection.FocusTable()
	c.selection.SetSelectedRowIndex(viewstate.ClampSelection(i, c.items.Len()))
}

// FocusControls hands keyboard input to the controls region.
func (c *Controller[T]) FocusControls() { c.selection.FocusControls() }

// FocusTable hands keyboard input to the rows.
func (c *Controller[T]) FocusTable() { c.selection.FocusTable() }

// GoToPage moves to page, bounded to the valid range, and gives the table
// focus once the settle delay has passed. The caller loads the page.
func (c *Controller[T]) GoToPage(page int) {
	pg := c.stores.Pagination.Get(c.key)
	if pg.TotalItems > 0 {
		page = pg.ClampPage(page)
	}
	c.stores.Pagination.GoToPage(c.key, max(page, 0))
	c.cfg.AfterFunc(c.cfg.SettleDelay, c.selection.FocusTable)
}

// SetFilter replaces the filter and returns to the first page.
func (c *Controller[T]) SetFilter(v string) {
	c.stores.Filters.Set(c.key, v)
	c.stores.Pagination.GoToPage(c.key, 0)
	c.savePref("filter", v)
}

// SetSort replaces the sort. nil restores source order.
func (c *Controller[T]) SetSort(spec *viewstate.SortSpec) {
	c.stores.Sorts.Set(c.key, spec)
	c.savePref("sort", spec.String())
}

// ToggleSort cycles the sort on a column header.
func (c *Controller[T]) ToggleSort(column string) *viewstate.SortSpec {
	next := viewstate.NextSort(c.stores.Sorts.Get(c.key), column)
	c.SetSort(next)
	return next
}

// ChangePageSize sets the rows per page and returns to the first page.
func (c *Controller[T]) ChangePageSize(size int) {
	if size <= 0 {
		return
	}
	c.stores.Pagination.ChangePageSize(c.key, size)
}

// Toggle flips a boolean field optimistically, e.g. deleted for op delete
// or undelete.
func (c *Controller[T]) Toggle(op models.Operation, item T, flip func(T) T) *mutation.Inflight {
	return c.pipeline.Start(mutation.Toggle[T]{Op: op, Item: item, Flip: flip})
}

// Remove drops item from the page and asks the backend to remove it.
func (c *Controller[T]) Remove(item T) *mutation.Inflight {
	return c.pipeline.Start(mutation.Remove[T]{Item: item})
}

// Update replaces the row with item's key.
func (c *Controller[T]) Update(item T) *mutation.Inflight {
	return c.pipeline.Start(mutation.Merge[T]{Op: models.OpUpdate, Item: item})
}

// Create shows item at the top of the page.
func (c *Controller[T]) Create(item T) *mutation.Inflight {
	return c.pipeline.Start(mutation.Create[T]{Item: item})
}

// Autoname replaces the row with the derived item.
func (c *Controller[T]) Autoname(item T) *mutation.Inflight {
	return c.pipeline.Start(mutation.Merge[T]{Op: models.OpAutoname, Item: item})
}

// Clean runs the bulk clean for ids and re-fetches.
func (c *Controller[T]) Clean(ctx context.Context, ids []string) error {
	return c.pipeline.Clean(ctx, ids)
}

func (c *Controller[T]) prefKey(field string) string {
	return c.key.View + "/" + c.key.Tab + "/" + field
}

func (c *Controller[T]) savePref(field, value string) {
	if c.cfg.Prefs != nil {
		c.cfg.Prefs.Set(c.prefKey(field), value)
	}
}

func (c *Controller[T]) restorePrefs() {
	if c.cfg.Prefs == nil {
		return
	}
	if v, ok := c.cfg.Prefs.Get(c.prefKey("sort")); ok {
		spec, err := viewstate.ParseSortSpec(v)
		if err != nil {
			c.log.Warn("ignoring saved sort", "value", v, "err", err)
		} else {
			c.stores.Sorts.Set(c.key, spec)
		}
	}
	if v, ok := c.cfg.Prefs.Get(c.prefKey("filter")); ok {
		c.stores.Filters.Set(c.key, v)
	}
}
