package tui

import (
	"context"
	"testing"

	"chainview/pkg/models"
	"chainview/pkg/tableview"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// messages runs cmd and flattens batches.
func messages(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, messages(c)...)
	}
	return out
}

func TestActionsIgnoredWhileRowProcessing(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, runes("r"))
	tbl, ok := m.pane().(*table[models.Name])
	require.True(t, ok)

	first, ok := tbl.ctrl.Selected()
	require.True(t, ok)
	require.True(t, first.Deleted, "Account 00 starts deleted")

	next, pending := m.Update(runes("d"))
	m = next.(model)
	require.NotNil(t, pending)

	row, _ := tbl.ctrl.Selected()
	assert.False(t, row.Deleted)
	assert.True(t, tbl.ctrl.IsProcessing(row))

	next, cmd := m.Update(runes("d"))
	m = next.(model)
	assert.Nil(t, cmd)
	for _, key := range []string{"x", "a", "e"} {
		handled, cmd := tbl.handleKey(m.ctx, runes(key))
		assert.False(t, handled, key)
		assert.Nil(t, cmd, key)
	}
	row, _ = tbl.ctrl.Selected()
	assert.False(t, row.Deleted, "second toggle left the row alone")

	msgs := messages(pending)
	require.Len(t, msgs, 1)
	settled, ok := msgs[0].(mutatedMsg)
	require.True(t, ok)
	require.NoError(t, settled.err)
	assert.Equal(t, models.OpUndelete, settled.op)

	row, _ = tbl.ctrl.Selected()
	assert.Equal(t, first.Address, row.Address)
	assert.False(t, row.Deleted)
}

func TestEnterRunsControllerCallback(t *testing.T) {
	rows := []models.Name{
		{Address: "0x01", Name: "one"},
		{Address: "0x02", Name: "two"},
	}
	ctrl := tableview.New(tableview.Config[models.Name]{
		KeyOf: models.NameKey,
		Fetch: func(ctx context.Context, q models.Query) (models.Page[models.Name], error) {
			return models.Page[models.Name]{Items: rows, TotalItems: len(rows)}, nil
		},
	})
	t.Cleanup(ctrl.Close)
	require.NoError(t, ctrl.Load(context.Background()))

	type opened struct{ name string }
	tbl := (&table[models.Name]{ctrl: ctrl}).openWith(func(ctx context.Context, n models.Name) tea.Cmd {
		require.NotNil(t, ctx)
		return func() tea.Msg { return opened{name: n.Name} }
	})

	handled, cmd := tbl.handleKey(context.Background(), tea.KeyMsg{Type: tea.KeyDown})
	require.True(t, handled)
	assert.Empty(t, messages(cmd))

	handled, cmd = tbl.handleKey(context.Background(), tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, handled)
	assert.Equal(t, []tea.Msg{opened{name: "two"}}, messages(cmd))

	// no Enter, no leftover command
	handled, cmd = tbl.handleKey(context.Background(), tea.KeyMsg{Type: tea.KeyUp})
	require.True(t, handled)
	assert.Empty(t, messages(cmd))
}
