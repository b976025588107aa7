// Package tui is an interactive terminal view over the presenter.
package tui

import (
	"context"
	"fmt"

	"github.com/Veraticus/bookkeeper/internal/common"
	"github.com/Veraticus/bookkeeper/internal/presenter"
	"github.com/Veraticus/bookkeeper/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// Tab is one of the lists the UI shows.
type Tab int

const (
	TabExpenses Tab = iota
	TabCategories
	TabBudgets
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabExpenses:
		return "Expenses"
	case TabCategories:
		return "Categories"
	case TabBudgets:
		return "Budgets"
	default:
		return "Unknown"
	}
}

// Model holds the main TUI state.
type Model struct {
	ctx      context.Context
	lastErr  error
	board    *Board
	handlers presenter.Handlers
	theme    themes.Theme
	help     help.Model
	keymap   KeyMap
	snapshot Snapshot
	status   string
	tables   [tabCount]table.Model
	// ids holds the primary key of each table row, by tab.
	ids      [tabCount][]int64
	active   Tab
	width    int
	height   int
	quitting bool
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, handlers presenter.Handlers, board *Board, cfg Config) Model {
	m := Model{
		ctx:      ctx,
		board:    board,
		handlers: handlers,
		theme:    cfg.Theme,
		help:     help.New(),
		keymap:   DefaultKeyMap(),
		width:    cfg.Width,
		height:   cfg.Height,
	}
	for i := range m.tables {
		m.tables[i] = newTable(Tab(i), cfg.Theme)
	}
	m.tables[m.active].Focus()
	m.handleResize()
	m.sync()
	return m
}

// Init asks the presenter to republish everything.
func (m Model) Init() tea.Cmd {
	return m.call("", m.handlers.Refresh)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case changedMsg:
		m.lastErr = nil
		m.status = msg.status
		m.sync()
		return m, nil

	case errorMsg:
		m.lastErr = msg.err
		m.status = common.Describe(msg.err)
		return m, nil
	}

	var cmd tea.Cmd
	m.tables[m.active], cmd = m.tables[m.active].Update(msg)
	return m, cmd
}

// handleKey processes application keys; navigation falls through to the table.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return tea.Quit, true

	case key.Matches(msg, m.keymap.NextTab):
		m.switchTab((m.active + 1) % tabCount)
		return nil, true

	case key.Matches(msg, m.keymap.PrevTab):
		m.switchTab((m.active + tabCount - 1) % tabCount)
		return nil, true

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil, true

	case key.Matches(msg, m.keymap.Refresh):
		return m.call("refreshed", m.handlers.Refresh), true

	case key.Matches(msg, m.keymap.Delete):
		return m.deleteSelected(), true
	}
	return nil, false
}

func (m *Model) switchTab(tab Tab) {
	m.tables[m.active].Blur()
	m.active = tab
	m.tables[m.active].Focus()
}

func (m *Model) deleteSelected() tea.Cmd {
	pk, ok := m.selected()
	if !ok {
		m.status = "nothing selected"
		return nil
	}

	switch m.active {
	case TabExpenses:
		return m.call(fmt.Sprintf("deleted expense %d", pk), func(ctx context.Context) error {
			return m.handlers.DeleteExpense(ctx, pk)
		})
	case TabCategories:
		return m.call(fmt.Sprintf("deleted category %d", pk), func(ctx context.Context) error {
			return m.handlers.DeleteCategory(ctx, pk)
		})
	default:
		m.status = "budgets cannot be deleted, set the total to 0 instead"
		return nil
	}
}

// selected returns the primary key under the cursor of the active table.
func (m Model) selected() (int64, bool) {
	ids := m.ids[m.active]
	cursor := m.tables[m.active].Cursor()
	if cursor < 0 || cursor >= len(ids) {
		return 0, false
	}
	return ids[cursor], true
}

// call runs fn off the UI loop and reports the outcome as a message.
func (m Model) call(status string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			return errorMsg{err: err}
		}
		return changedMsg{status: status}
	}
}

// sync copies the board into the tables.
func (m *Model) sync() {
	m.snapshot = m.board.Snapshot()
	for i := range m.tables {
		rows, ids := buildRows(Tab(i), m.snapshot)
		m.tables[i].SetRows(rows)
		m.ids[i] = ids
		if cursor := m.tables[i].Cursor(); cursor >= len(rows) && len(rows) > 0 {
			m.tables[i].SetCursor(len(rows) - 1)
		}
	}
}

// handleResize adjusts table sizes when the terminal resizes.
func (m *Model) handleResize() {
	// Tabs, summary, status and help take the remaining lines.
	height := max(m.height-10, 3)
	for i := range m.tables {
		m.tables[i].SetHeight(height)
		m.tables[i].SetWidth(max(m.width-2, 20))
	}
	m.help.Width = m.width
}
