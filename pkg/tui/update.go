package tui

import (
	"context"
	"errors"
	"time"

	"chainview/pkg/app"
	"chainview/pkg/models"
	"chainview/pkg/tableview"
	"chainview/pkg/watcher"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = max(msg.Width-8, 20)
		m.viewport.Height = max(msg.Height-10, 5)

	case watcher.Event:
		cmds = append(cmds, listenForWatcher(m.sub))
		switch msg.Type {
		case watcher.EventHeadUpdated:
			if head, ok := msg.Data.(models.ChainHead); ok {
				m.head, m.hasHead = head, true
			}
		case watcher.EventStatus, watcher.EventError:
			text, _ := msg.Data.(string)
			cmds = append(cmds, m.setStatus(text, msg.Type == watcher.EventError))
		}

	case loadedMsg:
		if msg.err != nil && errors.Is(msg.err, context.Canceled) {
			cmds = append(cmds, m.setStatus("fetch cancelled", false))
		}

	case mutatedMsg:
		if msg.err != nil {
			m.logger.Debug("mutation settled with error", "view", msg.key.String(), "op", msg.op, "err", msg.err)
		}

	case enrichedMsg:
		if msg.err != nil {
			cmds = append(cmds, m.setStatus("lookup failed: "+msg.err.Error(), true))
			break
		}
		ctrl := m.app.Gallery
		if msg.key.View == app.ViewNames {
			ctrl = m.app.Names[msg.key.Tab]
		}
		if ctrl != nil {
			cmds = append(cmds, settle(m.ctx, msg.key, ctrl.Update(msg.name)))
		}

	case scanMsg:
		if msg.err != nil {
			cmds = append(cmds, m.setStatus("scan failed: "+msg.err.Error(), true))
			break
		}
		m.openDetail("Recent transactions of "+msg.address, scanDetail(msg))

	case detailMsg:
		m.openDetail(msg.title, msg.body)

	case openFormMsg:
		m.form = msg.form
		return m, m.form.form.Init()

	case clearStatusMsg:
		if msg.at.Equal(m.statusAt) {
			m.statusMessage = ""
			m.statusIsErr = false
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.form != nil {
		next, cmd := m.updateForm(msg)
		return next, tea.Batch(append(cmds, cmd)...)
	}
	return m, tea.Batch(cmds...)
}

func (m *model) setStatus(text string, isErr bool) tea.Cmd {
	at := time.Now()
	m.statusMessage, m.statusIsErr, m.statusAt = text, isErr, at
	return tea.Tick(statusTTL, func(time.Time) tea.Msg { return clearStatusMsg{at: at} })
}

func (m *model) openDetail(title, body string) {
	m.detailTitle = title
	m.viewport.SetContent(body)
	m.viewport.GotoTop()
	m.showDetail = true
}

func (m model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	f := m.form
	updated, cmd := f.form.Update(msg)
	if hf, ok := updated.(*huh.Form); ok {
		f.form = hf
	}
	switch f.form.State {
	case huh.StateCompleted:
		m.form = nil
		return m, f.submit(m.ctx, f)
	case huh.StateAborted:
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.form != nil {
		return m.updateForm(msg)
	}
	if m.showHelp {
		switch msg.String() {
		case "q", "esc", "?":
			m.showHelp = false
		}
		return m, nil
	}
	if m.showDetail {
		switch msg.String() {
		case "q", "esc", "enter":
			m.showDetail = false
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	p := m.pane()
	if m.filter.Focused() {
		return m.handleFilterKey(p, msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
		return m, nil
	case "/":
		p.FocusControls()
		m.filter.SetValue(p.Summary().Filter)
		m.filter.CursorEnd()
		return m, tea.Batch(m.filter.Focus(), textinput.Blink)
	case "esc":
		m.cancel()
		m.ctx, m.cancel = context.WithCancel(context.Background())
		return m, m.setStatus("cancelled pending requests", false)
	case "tab":
		return m, m.switchView((m.active + 1) % len(m.views))
	case "shift+tab":
		return m, m.switchView((m.active - 1 + len(m.views)) % len(m.views))
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if i := int(msg.String()[0] - '1'); i < len(m.views) {
			return m, m.switchView(i)
		}
		return m, nil
	case "]":
		return m, m.switchTab(tableview.NextFacet)
	case "[":
		return m, m.switchTab(tableview.PrevFacet)
	case "c":
		addr := p.selectedAddress()
		if addr == "" {
			return m, nil
		}
		if err := clipboard.WriteAll(addr); err != nil {
			return m, m.setStatus("Failed to copy to clipboard", true)
		}
		return m, m.setStatus("Copied "+addr, false)
	}

	handled, cmd := p.handleKey(m.ctx, msg)
	if handled && m.prefs != nil && (msg.String() == "+" || msg.String() == "-") {
		m.prefs.SetPageSize(p.Summary().Pagination.PageSize)
	}
	return m, cmd
}

// handleFilterKey edits the filter while the controls zone has focus.
func (m model) handleFilterKey(p pane, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		p.SetFilter(m.filter.Value())
		m.filter.Blur()
		p.FocusTable()
		return m, p.load(m.ctx)
	case "esc":
		m.filter.Blur()
		m.filter.SetValue(p.Summary().Filter)
		p.FocusTable()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

func (m *model) switchView(i int) tea.Cmd {
	m.active = i
	v := m.currentView()
	if m.prefs != nil {
		m.prefs.SetLastView(v.name)
	}
	return v.active().load(m.ctx)
}

func (m *model) switchTab(step func([]string, string) string) tea.Cmd {
	v := m.currentView()
	if len(v.facets) < 2 {
		return nil
	}
	v.tab = step(v.facets, v.tab)
	if m.prefs != nil {
		m.prefs.SetLastTab(v.name, v.tab)
	}
	return v.active().load(m.ctx)
}
