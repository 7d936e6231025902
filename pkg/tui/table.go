package tui

import (
	"context"
	"fmt"
	"strings"

	"chainview/pkg/keynav"
	"chainview/pkg/models"
	"chainview/pkg/mutation"
	"chainview/pkg/tableview"
	"chainview/pkg/utils"
	"chainview/pkg/viewstate"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const pageSizeStep = 5

// pane is one tab of a view: a table or the gallery.
type pane interface {
	Key() viewstate.Key
	Summary() tableview.Summary
	Focus() viewstate.Focus
	FocusControls()
	FocusTable()
	SetFilter(v string)
	load(ctx context.Context) tea.Cmd
	handleKey(ctx context.Context, msg tea.KeyMsg) (bool, tea.Cmd)
	render(width int, spin string) string
	selectedAddress() string
}

// column is one rendered column. key is the sort key; columns without one
// cannot be sorted.
type column[T any] struct {
	title string
	key   string
	width int
	cell  func(T) string
}

type (
	loadedMsg struct {
		key viewstate.Key
		err error
	}
	mutatedMsg struct {
		key viewstate.Key
		op  models.Operation
		err error
	}
	// openFormMsg asks the model to show an edit form.
	openFormMsg struct {
		form *entryForm
	}
)

// table adapts a Controller to the pane interface. The optional funcs turn
// on the matching actions.
type table[T any] struct {
	ctrl    *tableview.Controller[T]
	cols    []column[T]
	sortCol int

	address   func(T) string
	deleted   func(T) bool
	flip      func(T) T
	autoname  func(T) T
	cleanable bool
	onEdit    func(item T) *entryForm
	onNew     func() *entryForm
	chart     func(items []T, width int) string

	// keyCtx and entered carry the Enter callback's command out of
	// Controller.HandleKey for the key being handled.
	keyCtx  context.Context
	entered tea.Cmd
}

// openWith makes Enter on a row run fn through the controller's Enter
// callback.
func (t *table[T]) openWith(fn func(ctx context.Context, item T) tea.Cmd) *table[T] {
	t.ctrl.OnEnter(func(item T, _ int) {
		t.entered = fn(t.keyCtx, item)
	})
	return t
}

func (t *table[T]) Key() viewstate.Key { return t.ctrl.Key() }

func (t *table[T]) Summary() tableview.Summary { return t.ctrl.Summary() }

func (t *table[T]) Focus() viewstate.Focus { return t.ctrl.Selection().Focus }

func (t *table[T]) FocusControls() { t.ctrl.FocusControls() }

func (t *table[T]) FocusTable() { t.ctrl.FocusTable() }

func (t *table[T]) SetFilter(v string) { t.ctrl.SetFilter(v) }

func (t *table[T]) selectedAddress() string {
	item, ok := t.ctrl.Selected()
	if !ok || t.address == nil {
		return ""
	}
	return t.address(item)
}

func (t *table[T]) load(ctx context.Context) tea.Cmd {
	key := t.ctrl.Key()
	return func() tea.Msg {
		return loadedMsg{key: key, err: t.ctrl.Load(ctx)}
	}
}

func settle(ctx context.Context, key viewstate.Key, f *mutation.Inflight) tea.Cmd {
	return func() tea.Msg {
		return mutatedMsg{key: key, op: f.Op, err: f.Wait(ctx)}
	}
}

func (t *table[T]) handleKey(ctx context.Context, msg tea.KeyMsg) (bool, tea.Cmd) {
	if k := keynav.ParseKey(msg.String()); k != keynav.KeyNone && k != keynav.KeyEscape {
		t.keyCtx, t.entered = ctx, nil
		out := t.ctrl.HandleKey(k)
		entered := t.entered
		t.keyCtx, t.entered = nil, nil
		if !out.Handled {
			return false, nil
		}
		var cmds []tea.Cmd
		if out.Reload {
			cmds = append(cmds, t.load(ctx))
		}
		if entered != nil {
			cmds = append(cmds, entered)
		}
		return true, tea.Batch(cmds...)
	}

	item, ok := t.ctrl.Selected()
	busy := ok && t.ctrl.IsProcessing(item)
	key := t.ctrl.Key()

	switch msg.String() {
	case "r":
		return true, t.load(ctx)
	case "s":
		if col := t.cols[t.sortCol]; col.key != "" {
			t.ctrl.ToggleSort(col.key)
			return true, t.load(ctx)
		}
	case "S":
		t.sortCol = nextSortable(t.cols, t.sortCol)
		return true, nil
	case "+":
		t.ctrl.ChangePageSize(t.ctrl.Pagination().PageSize + pageSizeStep)
		return true, t.load(ctx)
	case "-":
		t.ctrl.ChangePageSize(t.ctrl.Pagination().PageSize - pageSizeStep)
		return true, t.load(ctx)
	case "d":
		if t.flip == nil || !ok || busy {
			return false, nil
		}
		op := models.OpDelete
		if t.deleted(item) {
			op = models.OpUndelete
		}
		return true, settle(ctx, key, t.ctrl.Toggle(op, item, t.flip))
	case "x":
		if t.deleted == nil || !ok || busy {
			return false, nil
		}
		return true, settle(ctx, key, t.ctrl.Remove(item))
	case "a":
		if t.autoname == nil || !ok || busy {
			return false, nil
		}
		return true, settle(ctx, key, t.ctrl.Autoname(t.autoname(item)))
	case "C":
		if !t.cleanable {
			return false, nil
		}
		return true, func() tea.Msg {
			return mutatedMsg{key: key, op: "clean", err: t.ctrl.Clean(ctx, nil)}
		}
	case "e":
		if t.onEdit == nil || !ok || busy {
			return false, nil
		}
		f := t.onEdit(item)
		return true, func() tea.Msg { return openFormMsg{form: f} }
	case "n":
		if t.onNew == nil {
			return false, nil
		}
		f := t.onNew()
		return true, func() tea.Msg { return openFormMsg{form: f} }
	}
	return false, nil
}

func nextSortable[T any](cols []column[T], cur int) int {
	for i := 1; i <= len(cols); i++ {
		j := (cur + i) % len(cols)
		if cols[j].key != "" {
			return j
		}
	}
	return cur
}

func pad(s string, width int) string {
	s = utils.TruncateString(s, width)
	if n := lipgloss.Width(s); n < width {
		s += strings.Repeat(" ", width-n)
	}
	return s
}

func (t *table[T]) header(sort *viewstate.SortSpec) string {
	cells := make([]string, 0, len(t.cols))
	for i, c := range t.cols {
		title := c.title
		if sort != nil && c.key != "" && sort.Key == c.key {
			if sort.Direction == viewstate.Desc {
				title += " ▼"
			} else {
				title += " ▲"
			}
		}
		style := tableHeaderStyle
		if i == t.sortCol {
			style = sortColStyle
		}
		cells = append(cells, style.Render(pad(title, c.width)))
	}
	return strings.Join(cells, " ")
}

func (t *table[T]) row(item T) string {
	cells := make([]string, 0, len(t.cols))
	for _, c := range t.cols {
		cells = append(cells, pad(c.cell(item), c.width))
	}
	return strings.Join(cells, " ")
}

func (t *table[T]) render(width int, spin string) string {
	p := t.ctrl.Props()

	var body string
	switch p.Mode {
	case tableview.ModeLoading:
		body = fmt.Sprintf("%s Loading...", spin)
	case tableview.ModeError:
		body = errStyle.Render("Error: " + p.Error)
	case tableview.ModeEmpty:
		body = subtleStyle.Render("No rows")
	default:
		rows := make([]string, 0, len(p.Items))
		for i, item := range p.Items {
			line := t.row(item)
			switch {
			case t.ctrl.IsProcessing(item):
				line = processingStyle.Render(line)
			case t.deleted != nil && t.deleted(item):
				line = deletedStyle.Render(line)
			}
			if i == p.Selection.SelectedRowIndex {
				if p.Selection.Focus == viewstate.FocusTable {
					line = selectedRowStyle.Render(line)
				} else {
					line = unfocusedRowStyle.Render(line)
				}
			}
			rows = append(rows, line)
		}
		body = strings.Join(rows, "\n")
	}

	footer := pageFooter(p.Pagination, p.TotalPages, p.Sort, p.Filter)
	parts := []string{t.header(p.Sort), body, "", subtleStyle.Render(footer)}
	if t.chart != nil && p.Mode == tableview.ModeRows {
		parts = append(parts, "", t.chart(p.Items, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
