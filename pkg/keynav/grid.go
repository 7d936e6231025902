package keynav

// Coord locates an item inside a Grid.
type Coord struct {
	Group int
	Row   int
	Col   int
}

// Grid navigates items laid out group by group, each group wrapped into
// rows of a fixed column count. The selection is an index into the
// flattened order: group-major, then row, then column.
type Grid struct {
	groups     []int
	offsets    []int
	columns    int
	total      int
	selected   int
	preferred  int
	onActivate func(index int)
}

// NewGrid lays out groups of the given sizes. columns below 1 is treated as 1.
func NewGrid(groupSizes []int, columns int) *Grid {
	g := &Grid{preferred: -1}
	g.Layout(groupSizes, columns)
	return g
}

// Layout replaces the group sizes and column count, keeping the selection
// inside the new bounds. It is called when the data or terminal width changes.
func (g *Grid) Layout(groupSizes []int, columns int) {
	g.columns = max(columns, 1)
	g.groups = make([]int, len(groupSizes))
	g.offsets = make([]int, len(groupSizes))
	g.total = 0
	for i, n := range groupSizes {
		n = max(n, 0)
		g.groups[i] = n
		g.offsets[i] = g.total
		g.total += n
	}
	g.preferred = -1
	g.selected = min(max(g.selected, 0), max(g.total-1, 0))
}

// OnActivate sets the callback Enter invokes with the selected index.
func (g *Grid) OnActivate(fn func(index int)) {
	g.onActivate = fn
}

// Len is the number of items across all groups.
func (g *Grid) Len() int { return g.total }

// Columns is the current row width.
func (g *Grid) Columns() int { return g.columns }

// Selected is the flattened index of the selection, -1 when the grid is empty.
func (g *Grid) Selected() int {
	if g.total == 0 {
		return -1
	}
	return g.selected
}

// Select moves the selection to a flattened index and forgets the
// preferred column.
func (g *Grid) Select(index int) {
	if g.total == 0 {
		return
	}
	g.selected = min(max(index, 0), g.total-1)
	g.preferred = -1
}

// Coord converts a flattened index to its grid position.
func (g *Grid) Coord(index int) Coord {
	for gi, n := range g.groups {
		if index < g.offsets[gi]+n {
			local := index - g.offsets[gi]
			return Coord{Group: gi, Row: local / g.columns, Col: local % g.columns}
		}
	}
	return Coord{}
}

// Index is the inverse of Coord.
func (g *Grid) Index(c Coord) int {
	return g.offsets[c.Group] + c.Row*g.columns + c.Col
}

func (g *Grid) rows(group int) int {
	return (g.groups[group] + g.columns - 1) / g.columns
}

func (g *Grid) rowLen(group, row int) int {
	return min(g.columns, g.groups[group]-row*g.columns)
}

// Move applies key to the selection and reports whether the key was used.
func (g *Grid) Move(key Key) bool {
	if g.total == 0 {
		return false
	}
	switch key {
	case KeyLeft:
		g.Select((g.selected - 1 + g.total) % g.total)
	case KeyRight:
		g.Select((g.selected + 1) % g.total)
	case KeyHome:
		g.Select(0)
	case KeyEnd:
		g.Select(g.total - 1)
	case KeyUp:
		g.vertical(-1)
	case KeyDown:
		g.vertical(1)
	case KeyEnter:
		if g.onActivate != nil {
			g.onActivate(g.selected)
		}
	default:
		return false
	}
	return true
}

func (g *Grid) vertical(step int) {
	cur := g.Coord(g.selected)
	if g.preferred < 0 {
		g.preferred = cur.Col
	}

	group, row := cur.Group, cur.Row+step
	if row < 0 || row >= g.rows(group) {
		group = g.nextGroup(group, step)
		row = 0
		if step < 0 {
			row = g.rows(group) - 1
		}
	}
	col := min(g.preferred, g.rowLen(group, row)-1)
	g.selected = g.Index(Coord{Group: group, Row: row, Col: col})
}

// nextGroup walks circularly to the next non-empty group. There is always
// at least one because the grid is not empty.
func (g *Grid) nextGroup(from, step int) int {
	n := len(g.groups)
	for i := 1; i <= n; i++ {
		gi := ((from+step*i)%n + n) % n
		if g.groups[gi] > 0 {
			return gi
		}
	}
	return from
}
