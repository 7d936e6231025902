package tableview

import "chainview/pkg/viewstate"

// Stores is the per-view state shared by every controller of an app. Views
// with different keys never see each other's buckets.
type Stores struct {
	Pagination *viewstate.PaginationStore
	Sorts      *viewstate.SortStore
	Filters    *viewstate.FilterStore
	Selections *viewstate.SelectionStore
}

// NewStores builds empty stores whose pages default to pageSize rows.
func NewStores(pageSize int) *Stores {
	return &Stores{
		Pagination: viewstate.NewPaginationStore(pageSize),
		Sorts:      viewstate.NewSortStore(),
		Filters:    viewstate.NewFilterStore(),
		Selections: viewstate.NewSelectionStore(),
	}
}

// Subscribe registers fn with every store and returns one function that
// removes all the registrations.
func (s *Stores) Subscribe(fn viewstate.Listener) (unsubscribe func()) {
	unsubs := []func(){
		s.Pagination.Subscribe(fn),
		s.Sorts.Subscribe(fn),
		s.Filters.Subscribe(fn),
		s.Selections.Subscribe(fn),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
