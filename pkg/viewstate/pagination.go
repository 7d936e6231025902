package viewstate

// DefaultPageSize is used when a store is built without an explicit size.
const DefaultPageSize = 10

// PaginationState is the paging position of one view.
type PaginationState struct {
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalItems  int `json:"totalItems"`
}

// TotalPages is ceil(TotalItems / PageSize), zero when there is nothing to show.
func (p PaginationState) TotalPages() int {
	if p.PageSize <= 0 || p.TotalItems <= 0 {
		return 0
	}
	return (p.TotalItems + p.PageSize - 1) / p.PageSize
}

// LastPage is the highest valid page index.
func (p PaginationState) LastPage() int {
	return max(0, p.TotalPages()-1)
}

// ClampPage bounds page to [0, LastPage].
func (p PaginationState) ClampPage(page int) int {
	return min(max(page, 0), p.LastPage())
}

// Offset is the index of the first item on the current page.
func (p PaginationState) Offset() int {
	return p.CurrentPage * p.PageSize
}

// RowsOnPage is the number of items page holds given TotalItems.
func (p PaginationState) RowsOnPage(page int) int {
	if page < 0 || page >= p.TotalPages() {
		return 0
	}
	return min(p.PageSize, p.TotalItems-page*p.PageSize)
}

// Valid reports whether the page invariant holds.
func (p PaginationState) Valid() bool {
	if p.TotalItems == 0 {
		return p.CurrentPage == 0
	}
	return p.CurrentPage >= 0 && p.CurrentPage < p.TotalPages()
}

// PaginationStore owns the PaginationState of every view. It never clamps;
// callers bound pages with ClampPage before calling GoToPage.
type PaginationStore struct {
	buckets[PaginationState]
}

// NewPaginationStore builds a store whose new buckets use pageSize.
func NewPaginationStore(pageSize int) *PaginationStore {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	s := &PaginationStore{}
	s.init(func() PaginationState {
		return PaginationState{PageSize: pageSize}
	})
	return s
}

// Get returns the state for key, creating the default bucket if absent.
func (s *PaginationStore) Get(key Key) PaginationState {
	return s.get(key)
}

// GoToPage sets the current page.
func (s *PaginationStore) GoToPage(key Key, page int) {
	s.update(key, func(p PaginationState) PaginationState {
		p.CurrentPage = page
		return p
	})
}

// ChangePageSize sets the page size and resets to the first page.
func (s *PaginationStore) ChangePageSize(key Key, size int) {
	s.update(key, func(p PaginationState) PaginationState {
		p.PageSize = size
		p.CurrentPage = 0
		return p
	})
}

// SetTotalItems records the total reported by the backend.
func (s *PaginationStore) SetTotalItems(key Key, total int) {
	s.update(key, func(p PaginationState) PaginationState {
		p.TotalItems = total
		return p
	})
}
