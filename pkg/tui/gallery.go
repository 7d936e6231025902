package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"chainview/pkg/keynav"
	"chainview/pkg/models"
	"chainview/pkg/tableview"
	"chainview/pkg/utils"
	"chainview/pkg/viewstate"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const cardWidth = 26

// gallery shows the names of one page as cards grouped by tag.
type gallery struct {
	ctrl  *tableview.Controller[models.Name]
	grid  *keynav.Grid
	width int

	groups []tagGroup
	order  []int
	sizes  []int
}

func newGallery(ctrl *tableview.Controller[models.Name]) *gallery {
	return &gallery{ctrl: ctrl, grid: keynav.NewGrid(nil, 1), width: 80}
}

func (g *gallery) Key() viewstate.Key { return g.ctrl.Key() }

func (g *gallery) Summary() tableview.Summary { return g.ctrl.Summary() }

func (g *gallery) Focus() viewstate.Focus { return g.ctrl.Selection().Focus }

func (g *gallery) FocusControls() { g.ctrl.FocusControls() }

func (g *gallery) FocusTable() { g.ctrl.FocusTable() }

func (g *gallery) SetFilter(v string) { g.ctrl.SetFilter(v) }

func (g *gallery) load(ctx context.Context) tea.Cmd {
	key := g.ctrl.Key()
	return func() tea.Msg {
		return loadedMsg{key: key, err: g.ctrl.Load(ctx)}
	}
}

func (g *gallery) selectedAddress() string {
	n, ok := g.current()
	if !ok {
		return ""
	}
	return n.Address
}

func (g *gallery) columns() int {
	return max((g.width-4)/cardWidth, 1)
}

// sync rebuilds the layout from the loaded page and keeps the grid and the
// stored selection pointing at the same item.
func (g *gallery) sync() {
	items := g.ctrl.Items()
	g.groups, g.order = groupByTag(items)
	sizes := make([]int, len(g.groups))
	for i, grp := range g.groups {
		sizes[i] = len(grp.items)
	}
	if !slices.Equal(sizes, g.sizes) || g.columns() != g.grid.Columns() {
		g.sizes = sizes
		g.grid.Layout(sizes, g.columns())
	}
	sel := g.ctrl.Selection().SelectedRowIndex
	if cur := g.grid.Selected(); sel >= 0 && (cur < 0 || cur >= len(g.order) || g.order[cur] != sel) {
		for flat, idx := range g.order {
			if idx == sel {
				g.grid.Select(flat)
				break
			}
		}
	}
}

func (g *gallery) current() (models.Name, bool) {
	return g.ctrl.Selected()
}

func (g *gallery) handleKey(ctx context.Context, msg tea.KeyMsg) (bool, tea.Cmd) {
	if msg.String() == "r" {
		return true, g.load(ctx)
	}
	k := keynav.ParseKey(msg.String())
	if k == keynav.KeyNone || k == keynav.KeyEscape || g.Focus() != viewstate.FocusTable {
		return false, nil
	}
	g.sync()

	var cmd tea.Cmd
	g.grid.OnActivate(func(flat int) {
		n, ok := g.current()
		if !ok {
			return
		}
		cmd = func() tea.Msg { return detailMsg{title: n.Name, body: nameDetail(n)} }
	})
	if !g.grid.Move(k) {
		return false, nil
	}
	if flat := g.grid.Selected(); flat >= 0 && flat < len(g.order) {
		g.ctrl.ClickRow(g.order[flat])
	}
	return true, cmd
}

func nameDetail(n models.Name) string {
	lines := []string{
		fmt.Sprintf("Address:  %s", n.Address),
		fmt.Sprintf("Tags:     %s", n.Tags),
		fmt.Sprintf("Source:   %s", n.Source),
	}
	if n.Symbol != "" {
		lines = append(lines, fmt.Sprintf("Symbol:   %s (%d decimals)", n.Symbol, n.Decimals))
	}
	lines = append(lines, fmt.Sprintf("Contract: %t", n.IsContract))
	return strings.Join(lines, "\n")
}

func (g *gallery) render(width int, spin string) string {
	g.width = width
	p := g.ctrl.Props()
	switch p.Mode {
	case tableview.ModeLoading:
		return fmt.Sprintf("%s Loading...", spin)
	case tableview.ModeError:
		return errStyle.Render("Error: " + p.Error)
	case tableview.ModeEmpty:
		return subtleStyle.Render("No names")
	}

	g.sync()
	selected := g.grid.Selected()
	focused := p.Selection.Focus == viewstate.FocusTable
	cols := g.grid.Columns()

	var sections []string
	flat := 0
	for _, grp := range g.groups {
		var rows []string
		for start := 0; start < len(grp.items); start += cols {
			end := min(start+cols, len(grp.items))
			cards := make([]string, 0, end-start)
			for _, n := range grp.items[start:end] {
				style := cardStyle
				if flat == selected && focused {
					style = selectedCardStyle
				}
				cards = append(cards, style.Render(utils.TruncateString(n.Name, cardWidth-2)+"\n"+
					subtleStyle.Render(utils.ShortenAddr(n.Address))))
				flat++
			}
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
		}
		sections = append(sections, tableHeaderStyle.Render(fmt.Sprintf("%s (%d)", grp.tag, len(grp.items))))
		sections = append(sections, rows...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
