package tui

import (
	"fmt"
	"strings"
	"time"

	"chainview/pkg/utils"
	"chainview/pkg/viewstate"

	"github.com/charmbracelet/lipgloss"
)

func (m model) View() string {
	if m.form != nil {
		return lipgloss.Place(
			m.width,
			m.height,
			lipgloss.Center,
			lipgloss.Center,
			boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
				titleStyle.Render(m.form.title),
				"",
				m.form.form.View(),
			)),
		)
	}

	if m.showHelp {
		return m.viewHelp()
	}

	if m.showDetail {
		return m.viewDetail()
	}

	v := m.currentView()
	p := v.active()
	width := max(m.width-4, 40)

	sections := []string{m.viewTopBar()}
	if len(v.facets) > 1 {
		sections = append(sections, m.viewFacets(v))
	}
	if line := m.viewFilter(p); line != "" {
		sections = append(sections, line)
	}
	sections = append(sections, "", p.render(width, m.spinner.View()), "")

	if m.statusMessage != "" {
		style := infoStyle
		if m.statusIsErr {
			style = errStyle
		}
		sections = append(sections, style.Render(m.statusMessage))
	}
	sections = append(sections, subtleStyle.Render(keyHints(p.Focus())))

	return lipgloss.NewStyle().Padding(0, 1).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m model) viewTopBar() string {
	tabs := make([]string, 0, len(m.views))
	for i, v := range m.views {
		label := fmt.Sprintf("%d %s", i+1, v.title)
		if i == m.active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	var head string
	switch {
	case len(m.rpcURLs) == 0:
		head = subtleStyle.Render("no RPC")
	case !m.hasHead:
		head = subtleStyle.Render(m.spinner.View() + " connecting")
	default:
		head = infoStyle.Render(fmt.Sprintf("#%s", utils.AddCommas(fmt.Sprint(m.head.Number)))) +
			subtleStyle.Render(fmt.Sprintf(" • chain %d • %s • %s ago",
				m.head.ChainID,
				m.head.Latency.Round(time.Millisecond),
				utils.FormatAge(m.head.Time, time.Now()),
			))
	}

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(head)-2, 1)
	return left + strings.Repeat(" ", gap) + head
}

func (m model) viewFacets(v *view) string {
	parts := make([]string, 0, len(v.facets))
	for _, f := range v.facets {
		if f == v.tab {
			parts = append(parts, activeTabStyle.Render(f))
		} else {
			parts = append(parts, tabStyle.Render(f))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...) + subtleStyle.Render("  [ / ] to switch")
}

func (m model) viewFilter(p pane) string {
	if m.filter.Focused() {
		return m.filter.View()
	}
	if f := p.Summary().Filter; f != "" {
		return subtleStyle.Render("filter: ") + f
	}
	return ""
}

func (m model) viewDetail() string {
	header := titleStyle.Render(m.detailTitle)
	content := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", m.viewport.View()))
	footer := subtleStyle.Render(fmt.Sprintf("↑/↓ scroll • %3.f%% • esc/q/enter close", m.viewport.ScrollPercent()*100))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, lipgloss.JoinVertical(lipgloss.Center, content, "\n", footer))
}

func keyHints(focus viewstate.Focus) string {
	if focus == viewstate.FocusControls {
		return "enter: apply filter • esc: back to table"
	}
	return "↑/↓ move • ←/→ page • enter open • / filter • s sort • d delete • ? help • q quit"
}

func (m model) viewHelp() string {
	title := m.currentView().title
	shortcuts := []string{
		"↑/k ↓/j: Move",
		"←/h →/l: Previous/Next Page",
		"PgUp PgDn: Previous/Next Page",
		"Home/g End/G: First/Last",
		"enter: Open",
		"/: Filter",
		"esc: Cancel Requests",
		"s: Toggle Sort",
		"S: Next Sort Column",
		"+/-: Page Size",
		"r: Reload",
		"d: Delete/Undelete",
		"x: Remove",
		"a: Autoname",
		"C: Clean",
		"e: Edit",
		"n: New",
		"c: Copy Address",
		"Tab/S-Tab 1-6: Switch View",
		"[ ]: Switch Facet",
		"q: Quit",
		"?: Toggle Help",
	}

	header := titleStyle.Render(fmt.Sprintf("Help: %s", title))
	content := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, "\n", strings.Join(shortcuts, "\n")))
	footer := subtleStyle.Render("Press '?' or 'esc' to close")

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, lipgloss.JoinVertical(lipgloss.Center, content, "\n", footer))
}
