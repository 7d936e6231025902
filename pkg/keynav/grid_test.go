package keynav

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// groups of 5 and 3 at 3 columns:
//
//	g0: 0 1 2
//	    3 4
//	g1: 5 6 7
func newTestGrid() *Grid {
	return NewGrid([]int{5, 3}, 3)
}

func TestGridCoord(t *testing.T) {
	g := newTestGrid()
	assert.Equal(t, Coord{Group: 0, Row: 1, Col: 1}, g.Coord(4))
	assert.Equal(t, Coord{Group: 1, Row: 0, Col: 2}, g.Coord(7))
	assert.Equal(t, 7, g.Index(Coord{Group: 1, Row: 0, Col: 2}))
	assert.Equal(t, 8, g.Len())
}

func TestGridDownWrapsGroupKeepingColumn(t *testing.T) {
	g := newTestGrid()
	g.Select(2)

	assert.True(t, g.Move(KeyDown))
	assert.Equal(t, 4, g.Selected())

	assert.True(t, g.Move(KeyDown))
	assert.Equal(t, 7, g.Selected())

	// circular: back to the first group
	g.Move(KeyDown)
	assert.Equal(t, 2, g.Selected())
}

func TestGridUpWrapsToLastGroup(t *testing.T) {
	g := newTestGrid()
	g.Select(1)

	g.Move(KeyUp)
	assert.Equal(t, 6, g.Selected())

	g.Move(KeyUp)
	assert.Equal(t, 4, g.Selected())

	g.Move(KeyUp)
	assert.Equal(t, 1, g.Selected())
}

func TestGridHorizontalWrapsAndResetsPreferredColumn(t *testing.T) {
	g := newTestGrid()
	g.Select(2)
	g.Move(KeyDown)
	assert.Equal(t, 4, g.Selected())

	g.Move(KeyLeft)
	assert.Equal(t, 3, g.Selected())
	g.Move(KeyUp)
	assert.Equal(t, 0, g.Selected())

	g.Move(KeyLeft)
	assert.Equal(t, 7, g.Selected())
	g.Move(KeyRight)
	assert.Equal(t, 0, g.Selected())
}

func TestGridHomeEndEnter(t *testing.T) {
	g := newTestGrid()
	var activated []int
	g.OnActivate(func(i int) { activated = append(activated, i) })

	g.Move(KeyEnd)
	assert.Equal(t, 7, g.Selected())
	g.Move(KeyEnter)
	assert.Equal(t, 7, g.Selected())
	g.Move(KeyHome)
	assert.Equal(t, 0, g.Selected())

	assert.Equal(t, []int{7}, activated)
	assert.False(t, g.Move(KeyPageDown))
}

func TestGridSkipsEmptyGroups(t *testing.T) {
	g := NewGrid([]int{2, 0, 1}, 4)
	g.Select(1)
	g.Move(KeyDown)
	assert.Equal(t, 2, g.Selected())
	g.Move(KeyUp)
	assert.Equal(t, 1, g.Selected())
}

func TestGridEmpty(t *testing.T) {
	g := NewGrid(nil, 3)
	assert.Equal(t, -1, g.Selected())
	assert.False(t, g.Move(KeyDown))

	g.Layout([]int{2}, 3)
	assert.Equal(t, 0, g.Selected())
}
