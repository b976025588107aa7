package tui

import (
	"slices"
	"sync"

	"github.com/Veraticus/bookkeeper/internal/consumption"
	"github.com/Veraticus/bookkeeper/internal/model"
	"github.com/Veraticus/bookkeeper/internal/presenter"
)

var _ presenter.View = (*Board)(nil)

// Snapshot is the state last published by the presenter.
type Snapshot struct {
	Categories  []model.Category
	Expenses    []model.Expense
	Budgets     []model.Budget
	Overspent   []consumption.Overflow
	Consumption consumption.Consumption
}

// CategoryName resolves a category reference against the snapshot.
func (s Snapshot) CategoryName(ref *int64) string {
	if ref == nil {
		return "-"
	}
	for _, c := range s.Categories {
		if c.PK == *ref {
			return c.Name
		}
	}
	return "-"
}

// Board collects presenter pushes. The presenter may publish from any
// goroutine, so the model reads it through Snapshot.
type Board struct {
	state Snapshot
	mu    sync.Mutex
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{}
}

// SetCategoryList implements presenter.View.
func (b *Board) SetCategoryList(categories []model.Category) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Categories = slices.Clone(categories)
}

// SetExpenseList implements presenter.View.
func (b *Board) SetExpenseList(expenses []model.Expense) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Expenses = slices.Clone(expenses)
}

// SetBudgetList implements presenter.View.
func (b *Board) SetBudgetList(budgets []model.Budget) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Budgets = slices.Clone(budgets)
}

// UpdateConsumptions implements presenter.View.
func (b *Board) UpdateConsumptions(totals consumption.Consumption) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Consumption = totals
}

// WarnOverspent implements presenter.View.
func (b *Board) WarnOverspent(overflows []consumption.Overflow) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Overspent = slices.Clone(overflows)
}

// Snapshot returns a copy of the current state.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		Categories:  slices.Clone(b.state.Categories),
		Expenses:    slices.Clone(b.state.Expenses),
		Budgets:     slices.Clone(b.state.Budgets),
		Overspent:   slices.Clone(b.state.Overspent),
		Consumption: b.state.Consumption,
	}
}
