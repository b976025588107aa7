package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/bookkeeper/internal/presenter"
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive UI and blocks until the user quits or ctx is
// canceled. board must be the View the presenter behind handlers publishes to.
func Run(ctx context.Context, handlers presenter.Handlers, board *Board, opts ...Option) error {
	if board == nil {
		return fmt.Errorf("board is required")
	}
	if handlers.Refresh == nil || handlers.DeleteExpense == nil || handlers.DeleteCategory == nil {
		return fmt.Errorf("refresh and delete handlers are required")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	program := tea.NewProgram(newModel(ctx, handlers, board, cfg), programOpts...)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
