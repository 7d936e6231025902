package tableview

import "chainview/pkg/viewstate"

// Mode is what the table body shows.
type Mode int

const (
	ModeRows Mode = iota
	ModeEmpty
	ModeLoading
	ModeError
)

func (m Mode) String() string {
	switch m {
	case ModeRows:
		return "rows"
	case ModeEmpty:
		return "empty"
	case ModeLoading:
		return "loading"
	case ModeError:
		return "error"
	}
	return "unknown"
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Props is everything needed to render one page of a table.
type Props[T any] struct {
	Key        viewstate.Key
	Mode       Mode
	Items      []T
	Error      string
	Pagination viewstate.PaginationState
	TotalPages int
	Sort       *viewstate.SortSpec
	Filter     string
	Selection  viewstate.SelectionState
	Processing []string
}

// Summary is the type-erased view of Props that the state server publishes.
type Summary struct {
	Key        viewstate.Key             `json:"key"`
	Mode       Mode                      `json:"mode"`
	Rows       int                       `json:"rows"`
	Error      string                    `json:"error,omitempty"`
	Pagination viewstate.PaginationState `json:"pagination"`
	TotalPages int                       `json:"totalPages"`
	Sort       string                    `json:"sort,omitempty"`
	Filter     string                    `json:"filter,omitempty"`
	Selection  viewstate.SelectionState  `json:"selection"`
	Processing []string                  `json:"processing,omitempty"`
}

// Summarizer is implemented by every Controller regardless of item type.
type Summarizer interface {
	Summary() Summary
}

// modeOf picks the body: loading wins over an error, an error wins over rows.
func modeOf(loading bool, errMsg string, n int) Mode {
	switch {
	case loading:
		return ModeLoading
	case errMsg != "":
		return ModeError
	case n == 0:
		return ModeEmpty
	}
	return ModeRows
}
