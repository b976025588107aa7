// Package cli provides styled terminal output and prompts for the command line.
package cli

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// Ledger palette.
var (
	ledgerGreen = lipgloss.Color("#2E8B57")
	teal        = lipgloss.Color("#4ECDC4")
	amber       = lipgloss.Color("#FFE66D")
	red         = lipgloss.Color("#FF6B6B")
	paleTeal    = lipgloss.Color("#95E1D3")
	gray        = lipgloss.Color("#666666")
	ruleGray    = lipgloss.Color("#333")
)

var (
	// InfoStyle renders hints such as empty-list notices.
	InfoStyle = lipgloss.NewStyle().Foreground(paleTeal)

	// SubtleStyle renders secondary columns: parents, comments, totals.
	SubtleStyle = lipgloss.NewStyle().Foreground(gray)

	// TableHeaderStyle renders column names above tabwriter tables. It stays
	// on one line so tabwriter can align it.
	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ledgerGreen)

	// ProgressStyle renders the description in front of a progress bar.
	ProgressStyle = lipgloss.NewStyle().Bold(true).Foreground(ledgerGreen)

	overspentStyle = lipgloss.NewStyle().Bold(true).Foreground(red)
	promptStyle    = lipgloss.NewStyle().Bold(true).Foreground(ledgerGreen)
	boxTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ledgerGreen)
	boxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ruleGray).Padding(1, 2)
)

// Message prefixes.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	ChartIcon   = "📊"
)

func tagged(color lipgloss.Color, icon, message string) string {
	return lipgloss.NewStyle().Foreground(color).Render(icon + " " + message)
}

// FormatSuccess reports a mutation that was applied.
func FormatSuccess(message string) string { return tagged(teal, SuccessIcon, message) }

// FormatError reports a command that failed.
func FormatError(message string) string { return tagged(red, ErrorIcon, message) }

// FormatWarning reports overspending and interrupted work.
func FormatWarning(message string) string { return tagged(amber, WarningIcon, message) }

// FormatInfo reports progress and hints.
func FormatInfo(message string) string { return tagged(paleTeal, InfoIcon, message) }

// FormatAmount renders a whole-unit amount, highlighted when it exceeds
// limit. A negative limit disables the check.
func FormatAmount(amount, limit int64) string {
	text := strconv.FormatInt(amount, 10)
	if limit >= 0 && amount > limit {
		return overspentStyle.Render(text)
	}
	return text
}

// FormatPrompt renders a question waiting for input.
func FormatPrompt(prompt string) string {
	return promptStyle.Render(prompt + " → ")
}

// RenderBox frames content under a title.
func RenderBox(title, content string) string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, boxTitleStyle.Render(title), content))
}
