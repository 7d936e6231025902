package keynav

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNavigateTable(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want Result
	}{
		{
			name: "down inside page",
			in:   Input{Key: KeyDown, Selected: 0, ItemCount: 3, CurrentPage: 0, TotalPages: 2, PageSize: 3, TotalItems: 5},
			want: Result{Handled: true, Page: 0, Selected: 1},
		},
		{
			name: "down from unselected",
			in:   Input{Key: KeyDown, Selected: -1, ItemCount: 3, TotalPages: 1, PageSize: 10, TotalItems: 3},
			want: Result{Handled: true, Page: 0, Selected: 0},
		},
		{
			name: "down at last row goes to next page",
			in:   Input{Key: KeyDown, Selected: 2, ItemCount: 3, CurrentPage: 0, TotalPages: 2, PageSize: 3, TotalItems: 5},
			want: Result{Handled: true, Page: 1, PageChanged: true, Selected: 0},
		},
		{
			name: "down at last row of last page",
			in:   Input{Key: KeyDown, Selected: 1, ItemCount: 2, CurrentPage: 1, TotalPages: 2, PageSize: 3, TotalItems: 5},
			want: Result{Handled: true, Page: 1, Selected: 1},
		},
		{
			name: "up inside page",
			in:   Input{Key: KeyUp, Selected: 2, ItemCount: 3, CurrentPage: 0, TotalPages: 2, PageSize: 3, TotalItems: 5},
			want: Result{Handled: true, Page: 0, Selected: 1},
		},
		{
			name: "up at first row selects last row of previous page",
			in:   Input{Key: KeyUp, Selected: 0, ItemCount: 2, CurrentPage: 1, TotalPages: 2, PageSize: 3, TotalItems: 5},
			want: Result{Handled: true, Page: 0, PageChanged: true, Selected: 2},
		},
		{
			name: "up at first row of first page",
			in:   Input{Key: KeyUp, Selected: 0, ItemCount: 3, CurrentPage: 0, TotalPages: 2, PageSize: 3, TotalItems: 5},
			want: Result{Handled: true, Page: 0, Selected: 0},
		},
		{
			name: "left goes to previous page keeping row",
			in:   Input{Key: KeyLeft, Selected: 1, ItemCount: 2, CurrentPage: 1, TotalPages: 2, PageSize: 3, TotalItems: 5},
			want: Result{Handled: true, Page: 0, PageChanged: true, Selected: 1},
		},
		{
			name: "page up from unselected lands on first row",
			in:   Input{Key: KeyPageUp, Selected: -1, ItemCount: 2, CurrentPage: 1, TotalPages: 2, PageSize: 3, TotalItems: 5},
			want: Result{Handled: true, Page: 0, PageChanged: true, Selected: 0},
		},
		{
			name: "left on first page",
			in:   Input{Key: KeyLeft, Selected: 1, ItemCount: 3, CurrentPage: 0, TotalPages: 2, PageSize: 3, TotalItems: 5},
			want: Result{Handled: true, Page: 0, Selected: 1},
		},
		{
			name: "right clamps row to shorter last page",
			in:   Input{Key: KeyRight, Selected: 2, ItemCount: 3, CurrentPage: 0, TotalPages: 2, PageSize: 3, TotalItems: 5},
			want: Result{Handled: true, Page: 1, PageChanged: true, Selected: 1},
		},
		{
			name: "page down on last page",
			in:   Input{Key: KeyPageDown, Selected: 0, ItemCount: 2, CurrentPage: 1, TotalPages: 2, PageSize: 3, TotalItems: 5},
			want: Result{Handled: true, Page: 1, Selected: 0},
		},
		{
			name: "home",
			in:   Input{Key: KeyHome, Selected: 1, ItemCount: 2, CurrentPage: 1, TotalPages: 2, PageSize: 3, TotalItems: 5},
			want: Result{Handled: true, Page: 0, PageChanged: true, Selected: 0},
		},
		{
			name: "home on empty table",
			in:   Input{Key: KeyHome, Selected: -1},
			want: Result{Handled: true, Page: 0, Selected: -1},
		},
		{
			name: "end",
			in:   Input{Key: KeyEnd, Selected: 0, ItemCount: 3, CurrentPage: 0, TotalPages: 2, PageSize: 3, TotalItems: 5},
			want: Result{Handled: true, Page: 1, PageChanged: true, Selected: 1},
		},
		{
			name: "end on single page",
			in:   Input{Key: KeyEnd, Selected: 0, ItemCount: 4, CurrentPage: 0, TotalPages: 1, PageSize: 10, TotalItems: 4},
			want: Result{Handled: true, Page: 0, Selected: 3},
		},
		{
			name: "enter",
			in:   Input{Key: KeyEnter, Selected: 1, ItemCount: 3, TotalPages: 1, PageSize: 10, TotalItems: 3},
			want: Result{Handled: true, Page: 0, Selected: 1, Enter: true},
		},
		{
			name: "escape",
			in:   Input{Key: KeyEscape, Selected: 1, ItemCount: 3, TotalPages: 1, PageSize: 10, TotalItems: 3},
			want: Result{Handled: true, Page: 0, Selected: 1, Escape: true},
		},
		{
			name: "unknown key",
			in:   Input{Key: KeyNone, Selected: 1, ItemCount: 3},
			want: Result{Page: 0, Selected: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Navigate(tt.in))
		})
	}
}

// Two full pages plus one row; ArrowDown on the last row of page 0 moves to
// page 1 row 0.
func TestNavigateDownCrossesPage(t *testing.T) {
	res := Navigate(Input{Key: KeyDown, Selected: 2, ItemCount: 3, CurrentPage: 0, TotalPages: 2, PageSize: 3, TotalItems: 6})
	assert.True(t, res.PageChanged)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 0, res.Selected)
}

func TestParseKey(t *testing.T) {
	cases := map[string]Key{
		"up": KeyUp, "k": KeyUp,
		"down": KeyDown, "j": KeyDown,
		"left": KeyLeft, "h": KeyLeft,
		"right": KeyRight, "l": KeyRight,
		"pgup": KeyPageUp, "pgdown": KeyPageDown,
		"home": KeyHome, "g": KeyHome,
		"end": KeyEnd, "G": KeyEnd,
		"enter": KeyEnter, "esc": KeyEscape,
		"x": KeyNone, "": KeyNone,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseKey(in), in)
	}
	assert.Equal(t, "pgdown", KeyPageDown.String())
}
