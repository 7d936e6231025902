package tui

import (
	"context"
	"io"
	"slices"
	"time"

	"chainview/pkg/app"
	"chainview/pkg/models"
	"chainview/pkg/prefs"
	"chainview/pkg/watcher"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Version is set by Start()
var Version = "dev"

const statusTTL = 3 * time.Second

// --- Messages ---

type clearStatusMsg struct{ at time.Time }

// Options is everything the terminal UI runs on.
type Options struct {
	App     *app.App
	Watcher *watcher.Watcher
	Prefs   *prefs.Store
	RPCURLs []string
	Logger  *log.Logger
}

// --- Model ---

type model struct {
	app     *app.App
	watcher *watcher.Watcher
	sub     watcher.Subscriber
	prefs   *prefs.Store
	rpcURLs []string
	logger  *log.Logger

	views  []*view
	active int

	// ctx is shared by every fetch and mutation; esc on the root cancels it.
	ctx    context.Context
	cancel context.CancelFunc

	filter   textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	form        *entryForm
	showDetail  bool
	detailTitle string
	showHelp    bool

	head          models.ChainHead
	hasHead       bool
	statusMessage string
	statusIsErr   bool
	statusAt      time.Time

	width  int
	height int
}

func initialModel(opts Options) model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "filter (enter to apply, esc to cancel)"
	ti.Prompt = "/ "
	ti.Width = 40

	ctx, cancel := context.WithCancel(context.Background())
	m := model{
		app:      opts.App,
		watcher:  opts.Watcher,
		prefs:    opts.Prefs,
		rpcURLs:  opts.RPCURLs,
		logger:   logger,
		views:    buildViews(opts.App, opts.RPCURLs),
		ctx:      ctx,
		cancel:   cancel,
		filter:   ti,
		spinner:  s,
		viewport: viewport.New(0, 0),
		width:    100,
		height:   30,
	}
	if m.watcher != nil {
		m.sub = m.watcher.Subscribe()
	}
	m.restoreLastView()
	return m
}

func (m *model) restoreLastView() {
	if m.prefs == nil {
		return
	}
	last := m.prefs.LastView()
	for i, v := range m.views {
		if tab := m.prefs.LastTab(v.name); tab != "" && slices.Contains(v.facets, tab) {
			v.tab = tab
		}
		if v.name == last {
			m.active = i
		}
	}
}

func (m model) currentView() *view { return m.views[m.active] }

func (m model) pane() pane { return m.currentView().active() }

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.pane().load(m.ctx)}
	if m.sub != nil {
		cmds = append(cmds, listenForWatcher(m.sub))
	}
	return tea.Batch(cmds...)
}
