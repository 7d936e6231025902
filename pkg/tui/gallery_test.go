package tui

import (
	"slices"
	"testing"

	"chainview/pkg/app"
	"chainview/pkg/models"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cards lists the gallery's names in on-screen order.
func cards(g *gallery) []models.Name {
	var out []models.Name
	for _, grp := range g.groups {
		out = append(out, grp.items...)
	}
	return out
}

func TestGalleryKeysSelectTheCardShown(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, runes("6"))
	require.Equal(t, app.ViewGallery, m.currentView().name)
	g, ok := m.pane().(*gallery)
	require.True(t, ok)

	for _, key := range []tea.KeyMsg{
		runes("l"),
		runes("j"),
		runes("l"),
		runes("j"),
		{Type: tea.KeyDown},
		runes("h"),
	} {
		next, _ := m.Update(key)
		m = next.(model)

		flat := g.grid.Selected()
		require.GreaterOrEqual(t, flat, 0, key.String())
		require.Less(t, flat, len(g.order), key.String())
		assert.Equal(t, g.order[flat], g.ctrl.Selection().SelectedRowIndex, key.String())
		assert.Equal(t, cards(g)[flat].Address, g.selectedAddress(), key.String())
	}
	assert.False(t, slices.IsSorted(g.order), "tag groups reorder the page")

	want := cards(g)[g.grid.Selected()]
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	detail, ok := cmd().(detailMsg)
	require.True(t, ok)
	assert.Equal(t, want.Name, detail.title)
	assert.Contains(t, detail.body, want.Address)
}
