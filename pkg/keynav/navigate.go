package keynav

import "chainview/pkg/viewstate"

// Input is everything the table decision needs about the current view.
type Input struct {
	Key         Key
	Selected    int
	ItemCount   int
	CurrentPage int
	TotalPages  int
	PageSize    int
	TotalItems  int
}

// Result is the transition to apply. Page always holds the target page and
// Selected the target row on that page.
type Result struct {
	Handled     bool
	Page        int
	PageChanged bool
	Selected    int
	Enter       bool
	Escape      bool
}

// Navigate applies the paged-table key rules. Recognised keys are always
// Handled, including moves that hit a boundary and change nothing.
func Navigate(in Input) Result {
	res := Result{Page: in.CurrentPage, Selected: in.Selected}
	if in.Key == KeyNone {
		return res
	}
	res.Handled = true

	switch in.Key {
	case KeyDown:
		switch {
		case in.Selected < in.ItemCount-1:
			res.Selected = in.Selected + 1
		case in.CurrentPage < in.TotalPages-1:
			res.goTo(in.CurrentPage + 1)
			res.Selected = 0
		}

	case KeyUp:
		switch {
		case in.Selected > 0:
			res.Selected = in.Selected - 1
		case in.CurrentPage > 0:
			res.goTo(in.CurrentPage - 1)
			res.Selected = in.rowsOn(res.Page) - 1
		}

	case KeyLeft, KeyPageUp:
		if in.CurrentPage > 0 {
			res.goTo(in.CurrentPage - 1)
			res.Selected = landOn(in.Selected, in.rowsOn(res.Page))
		}

	case KeyRight, KeyPageDown:
		if in.CurrentPage < in.TotalPages-1 {
			res.goTo(in.CurrentPage + 1)
			res.Selected = landOn(in.Selected, in.rowsOn(res.Page))
		}

	case KeyHome:
		res.goTo(0)
		res.Selected = 0
		if in.TotalItems == 0 && in.ItemCount == 0 {
			res.Selected = viewstate.NoSelection
		}

	case KeyEnd:
		res.goTo(max(0, in.TotalPages-1))
		res.Selected = in.rowsOn(res.Page) - 1

	case KeyEnter:
		res.Enter = true

	case KeyEscape:
		res.Escape = true
	}
	return res
}

func (r *Result) goTo(page int) {
	r.PageChanged = page != r.Page
	r.Page = page
}

// rowsOn is the number of rows the target page will render. The current
// page uses the rendered count; other pages are derived from the totals.
func (in Input) rowsOn(page int) int {
	if page == in.CurrentPage {
		return in.ItemCount
	}
	if in.PageSize <= 0 {
		return in.ItemCount
	}
	p := viewstate.PaginationState{PageSize: in.PageSize, TotalItems: in.TotalItems}
	return p.RowsOnPage(page)
}

// landOn keeps the row position across a page jump, bounded by the target
// page's rows. An unselected table lands on the first row.
func landOn(selected, rows int) int {
	if rows <= 0 {
		return viewstate.NoSelection
	}
	return min(max(selected, 0), rows-1)
}
