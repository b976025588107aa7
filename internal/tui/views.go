package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/bookkeeper/internal/model"
	"github.com/Veraticus/bookkeeper/internal/tui/themes"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

const dateLayout = "2006-01-02"

func columnsFor(tab Tab) []table.Column {
	switch tab {
	case TabExpenses:
		return []table.Column{
			{Title: "ID", Width: 5},
			{Title: "Date", Width: 10},
			{Title: "Amount", Width: 8},
			{Title: "Category", Width: 20},
			{Title: "Comment", Width: 30},
		}
	case TabCategories:
		return []table.Column{
			{Title: "ID", Width: 5},
			{Title: "Name", Width: 20},
			{Title: "Parent", Width: 20},
		}
	default:
		return []table.Column{
			{Title: "Period", Width: 8},
			{Title: "Budget", Width: 10},
			{Title: "Spent", Width: 10},
			{Title: "Remaining", Width: 10},
		}
	}
}

func newTable(tab Tab, theme themes.Theme) table.Model {
	t := table.New(table.WithColumns(columnsFor(tab)))

	styles := table.DefaultStyles()
	styles.Header = theme.Header
	styles.Selected = theme.Selected
	t.SetStyles(styles)
	return t
}

// buildRows renders the rows of a tab and the primary key behind each.
func buildRows(tab Tab, s Snapshot) ([]table.Row, []int64) {
	switch tab {
	case TabExpenses:
		rows := make([]table.Row, 0, len(s.Expenses))
		ids := make([]int64, 0, len(s.Expenses))
		for _, e := range s.Expenses {
			rows = append(rows, table.Row{
				strconv.FormatInt(e.PK, 10),
				e.ExpenseDate.Local().Format(dateLayout),
				strconv.FormatInt(e.Amount, 10),
				s.CategoryName(e.Category),
				e.Comment,
			})
			ids = append(ids, e.PK)
		}
		return rows, ids

	case TabCategories:
		rows := make([]table.Row, 0, len(s.Categories))
		ids := make([]int64, 0, len(s.Categories))
		for _, c := range s.Categories {
			rows = append(rows, table.Row{
				strconv.FormatInt(c.PK, 10),
				c.Name,
				s.CategoryName(c.Parent),
			})
			ids = append(ids, c.PK)
		}
		return rows, ids

	default:
		rows := make([]table.Row, 0, len(s.Budgets))
		ids := make([]int64, 0, len(s.Budgets))
		for _, b := range s.Budgets {
			rows = append(rows, table.Row{
				b.Period.Label(),
				strconv.FormatInt(b.TotalAmount, 10),
				strconv.FormatInt(b.ConsumedAmount, 10),
				strconv.FormatInt(b.Remaining(), 10),
			})
			ids = append(ids, b.PK)
		}
		return rows, ids
	}
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.theme.Title.Render("Bookkeeper"),
		m.renderTabs(),
		m.theme.Box.Render(m.tables[m.active].View()),
		m.renderSummary(),
	}
	if warnings := m.renderWarnings(); warnings != "" {
		sections = append(sections, warnings)
	}
	if status := m.renderStatus(); status != "" {
		sections = append(sections, status)
	}
	sections = append(sections, m.help.View(m.keymap))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, tabCount)
	for t := Tab(0); t < tabCount; t++ {
		style := m.theme.InactiveTab
		if t == m.active {
			style = m.theme.ActiveTab
		}
		tabs = append(tabs, style.Render(t.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderSummary() string {
	parts := make([]string, 0, len(model.Periods()))
	for _, p := range model.Periods() {
		parts = append(parts, fmt.Sprintf("%s: %d", p.Label(), m.snapshot.Consumption.For(p)))
	}
	return m.theme.Subtitle.Render("Spent  " + strings.Join(parts, "  "))
}

func (m Model) renderWarnings() string {
	if len(m.snapshot.Overspent) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.snapshot.Overspent))
	for _, o := range m.snapshot.Overspent {
		lines = append(lines, m.theme.StatusWarning.Render("⚠ "+o.String()))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStatus() string {
	if m.lastErr != nil {
		return m.theme.StatusError.Render("✗ " + m.status)
	}
	if m.status == "" {
		return ""
	}
	return m.theme.StatusInfo.Render(m.status)
}
