package presenter

import (
	"context"

	"github.com/Veraticus/bookkeeper/internal/model"
)

// Handlers is the set of callbacks a user interface invokes. It is built
// from a fully constructed Presenter, so the interface never wires handlers
// after the fact.
type Handlers struct {
	CreateCategory func(ctx context.Context, name string, parent *int64) (int64, error)
	UpdateCategory func(ctx context.Context, cat model.Category) error
	DeleteCategory func(ctx context.Context, pk int64) error
	CreateExpense  func(ctx context.Context, e model.Expense) (int64, error)
	UpdateExpense  func(ctx context.Context, e model.Expense) error
	DeleteExpense  func(ctx context.Context, pk int64) error
	GetExpense     func(ctx context.Context, pk int64) (*model.Expense, error)
	UpdateBudget   func(ctx context.Context, b model.Budget) error
	Refresh        func(ctx context.Context) error
}

// Handlers returns the presenter's callbacks.
func (p *Presenter) Handlers() Handlers {
	return Handlers{
		CreateCategory: p.CreateCategory,
		UpdateCategory: p.UpdateCategory,
		DeleteCategory: p.DeleteCategory,
		CreateExpense:  p.CreateExpense,
		UpdateExpense:  p.UpdateExpense,
		DeleteExpense:  p.DeleteExpense,
		GetExpense:     p.GetExpense,
		UpdateBudget:   p.UpdateBudget,
		Refresh:        p.Refresh,
	}
}
