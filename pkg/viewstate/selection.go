package viewstate

// Focus is the zone that receives keyboard input.
type Focus string

const (
	FocusTable    Focus = "table"
	FocusControls Focus = "controls"
)

// NoSelection is the row index used when nothing is selected.
const NoSelection = -1

// SelectionState is the focus zone and selected row of one view.
type SelectionState struct {
	Focus            Focus `json:"focus"`
	SelectedRowIndex int   `json:"selectedRowIndex"`
}

// ClampSelection bounds index to a page of itemCount rows. An empty page
// yields NoSelection.
func ClampSelection(index, itemCount int) int {
	if itemCount <= 0 {
		return NoSelection
	}
	if index >= itemCount {
		return itemCount - 1
	}
	if index < NoSelection {
		return NoSelection
	}
	return index
}

// SelectionStore owns the SelectionState of every view.
type SelectionStore struct {
	buckets[SelectionState]
}

func NewSelectionStore() *SelectionStore {
	s := &SelectionStore{}
	s.init(func() SelectionState {
		return SelectionState{Focus: FocusControls, SelectedRowIndex: NoSelection}
	})
	return s
}

// Get returns the selection for key.
func (s *SelectionStore) Get(key Key) SelectionState {
	return s.get(key)
}

// For binds the store to one view.
func (s *SelectionStore) For(key Key) *SelectionController {
	return &SelectionController{store: s, key: key}
}

// SelectionController is the selection state machine of one view. Keyboard
// navigation only applies while the focus is FocusTable.
type SelectionController struct {
	store *SelectionStore
	key   Key
}

func (c *SelectionController) State() SelectionState {
	return c.store.Get(c.key)
}

// FocusTable moves keyboard input to the rows.
func (c *SelectionController) FocusTable() {
	c.setFocus(FocusTable)
}

// FocusControls moves keyboard input to the controls region.
func (c *SelectionController) FocusControls() {
	c.setFocus(FocusControls)
}

func (c *SelectionController) setFocus(f Focus) {
	c.store.update(c.key, func(s SelectionState) SelectionState {
		s.Focus = f
		return s
	})
}

// SetSelectedRowIndex selects row i of the rendered page.
func (c *SelectionController) SetSelectedRowIndex(i int) {
	c.store.update(c.key, func(s SelectionState) SelectionState {
		s.SelectedRowIndex = i
		return s
	})
}

// Clamp re-bounds the selection after the page changed to itemCount rows
// and returns the resulting index. Subscribers are only notified on change.
func (c *SelectionController) Clamp(itemCount int) int {
	cur := c.State()
	next := ClampSelection(cur.SelectedRowIndex, itemCount)
	if next == cur.SelectedRowIndex {
		return next
	}
	c.SetSelectedRowIndex(next)
	return next
}

// Navigable reports whether keyboard navigation applies.
func (c *SelectionController) Navigable() bool {
	return c.State().Focus == FocusTable
}
