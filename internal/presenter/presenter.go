// Package presenter mediates between a user interface and the repositories.
// Every mutating call applies the change, then pushes refreshed state back to
// the View so the interface can redraw.
package presenter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Veraticus/bookkeeper/internal/categorytree"
	"github.com/Veraticus/bookkeeper/internal/common"
	"github.com/Veraticus/bookkeeper/internal/consumption"
	"github.com/Veraticus/bookkeeper/internal/model"
	"github.com/Veraticus/bookkeeper/internal/service"
)

// View receives refreshed state after every change.
type View interface {
	SetCategoryList(categories []model.Category)
	SetExpenseList(expenses []model.Expense)
	SetBudgetList(budgets []model.Budget)
	UpdateConsumptions(totals consumption.Consumption)
	// WarnOverspent is called after every recalculation; an empty slice
	// means no budget is exceeded.
	WarnOverspent(overflows []consumption.Overflow)
}

// Seed is the data written on first run.
type Seed struct {
	Budgets map[model.Period]int64
	Outline string
}

// DefaultSeed returns the default category tree and budgets.
func DefaultSeed() Seed {
	return Seed{
		Outline: categorytree.DefaultOutline,
		Budgets: map[model.Period]int64{
			model.Day:   1000,
			model.Week:  7000,
			model.Month: 30000,
		},
	}
}

// Deps are the presenter's collaborators.
type Deps struct {
	Categories service.Repository[model.Category]
	Expenses   service.Repository[model.Expense]
	Budgets    service.Repository[model.Budget]
	Engine     *consumption.Engine
	View       View
	Seed       Seed
}

// Presenter applies user commands and republishes state.
type Presenter struct {
	categories service.Repository[model.Category]
	expenses   service.Repository[model.Expense]
	budgets    service.Repository[model.Budget]
	engine     *consumption.Engine
	view       View
	// categoryNames is rebuilt whenever the category list is published.
	categoryNames map[int64]string
	seed          Seed
}

// New builds a presenter. All dependencies are required.
func New(d Deps) (*Presenter, error) {
	switch {
	case d.Categories == nil:
		return nil, fmt.Errorf("category repository is required")
	case d.Expenses == nil:
		return nil, fmt.Errorf("expense repository is required")
	case d.Budgets == nil:
		return nil, fmt.Errorf("budget repository is required")
	case d.Engine == nil:
		return nil, fmt.Errorf("consumption engine is required")
	case d.View == nil:
		return nil, fmt.Errorf("view is required")
	}

	return &Presenter{
		categories:    d.Categories,
		expenses:      d.Expenses,
		budgets:       d.Budgets,
		engine:        d.Engine,
		view:          d.View,
		seed:          d.Seed,
		categoryNames: make(map[int64]string),
	}, nil
}

// Bootstrap seeds the default categories and budgets when the store holds
// neither. It reports whether anything was written.
func (p *Presenter) Bootstrap(ctx context.Context) (bool, error) {
	cats, err := p.categories.Count(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to count categories: %w", err)
	}
	buds, err := p.budgets.Count(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to count budgets: %w", err)
	}
	if cats > 0 || buds > 0 {
		return false, nil
	}

	var seeded []model.Category
	if strings.TrimSpace(p.seed.Outline) != "" {
		pairs, err := categorytree.ParseLines(strings.Split(p.seed.Outline, "\n"))
		if err != nil {
			return false, fmt.Errorf("default categories: %w", err)
		}
		if seeded, err = categorytree.Import(ctx, p.categories, pairs, nil); err != nil {
			return false, fmt.Errorf("failed to seed categories: %w", err)
		}
	}

	budgets := 0
	for _, period := range model.Periods() {
		total, ok := p.seed.Budgets[period]
		if !ok {
			continue
		}
		b := model.NewBudget(period, total)
		if err := b.Validate(); err != nil {
			return false, fmt.Errorf("default %s budget: %w", period.Label(), err)
		}
		if _, err := p.budgets.Add(ctx, &b); err != nil {
			return false, fmt.Errorf("failed to seed %s budget: %w", period.Label(), err)
		}
		budgets++
	}

	common.LogInfo("seeded default categories and budgets", common.Fields{
		"categories": len(seeded),
		"budgets":    budgets,
	})
	return true, nil
}

// Refresh publishes every list and the current consumption.
func (p *Presenter) Refresh(ctx context.Context) error {
	if err := p.publishCategories(ctx); err != nil {
		return err
	}
	if err := p.publishExpenses(ctx); err != nil {
		return err
	}
	_, err := p.Recalculate(ctx)
	return err
}

// CategoryName returns the cached name of the referenced category, or "" for
// none. The cache reflects the last published category list.
func (p *Presenter) CategoryName(ref *int64) string {
	if ref == nil {
		return ""
	}
	return p.categoryNames[*ref]
}

// CreateCategory adds a category under parent (nil for top level).
func (p *Presenter) CreateCategory(ctx context.Context, name string, parent *int64) (int64, error) {
	cat := model.NewCategory(strings.TrimSpace(name), parent)
	if err := cat.Validate(); err != nil {
		return 0, err
	}
	if parent != nil {
		if _, err := p.categories.Get(ctx, *parent); err != nil {
			return 0, fmt.Errorf("parent category: %w", err)
		}
	}

	pk, err := p.categories.Add(ctx, &cat)
	if err != nil {
		return 0, fmt.Errorf("failed to create category %q: %w", cat.Name, err)
	}

	slog.Info("created category", "name", cat.Name, "pk", pk)
	return pk, p.publishCategories(ctx)
}

// UpdateCategory renames or re-parents a category. A parent chain that
// would loop back to the category is rejected.
func (p *Presenter) UpdateCategory(ctx context.Context, cat model.Category) error {
	cat.Name = strings.TrimSpace(cat.Name)
	if err := cat.Validate(); err != nil {
		return err
	}
	if err := p.checkAcyclic(ctx, cat); err != nil {
		return err
	}

	if err := p.categories.Update(ctx, &cat); err != nil {
		return fmt.Errorf("failed to update category %d: %w", cat.PK, err)
	}

	slog.Info("updated category", "name", cat.Name, "pk", cat.PK)
	return p.publishCategories(ctx)
}

func (p *Presenter) checkAcyclic(ctx context.Context, cat model.Category) error {
	seen := map[int64]bool{cat.PK: true}
	for ref := cat.Parent; ref != nil; {
		if seen[*ref] {
			return fmt.Errorf("%w: category %q cannot be its own ancestor", common.ErrValidationFailed, cat.Name)
		}
		seen[*ref] = true

		parent, err := p.categories.Get(ctx, *ref)
		if err != nil {
			return fmt.Errorf("parent category: %w", err)
		}
		ref = parent.Parent
	}
	return nil
}

// DeleteCategory removes a category. Expenses and child categories that
// referenced it lose the reference.
func (p *Presenter) DeleteCategory(ctx context.Context, pk int64) error {
	if err := p.categories.Delete(ctx, pk); err != nil {
		return fmt.Errorf("failed to delete category %d: %w", pk, err)
	}

	slog.Info("deleted category", "pk", pk)
	if err := p.publishCategories(ctx); err != nil {
		return err
	}
	return p.publishExpenses(ctx)
}

// ImportCategories reads an indented outline and adds its categories.
func (p *Presenter) ImportCategories(ctx context.Context, r io.Reader, progress func()) ([]model.Category, error) {
	pairs, err := categorytree.Parse(r)
	if err != nil {
		return nil, err
	}

	cats, err := categorytree.Import(ctx, p.categories, pairs, progress)
	if err != nil {
		return cats, err
	}
	return cats, p.publishCategories(ctx)
}

// CreateExpense stores a new expense and returns its pk.
func (p *Presenter) CreateExpense(ctx context.Context, e model.Expense) (int64, error) {
	if e.AddedDate.IsZero() {
		e.AddedDate = p.engine.Now()
	}
	if err := e.Validate(); err != nil {
		return 0, err
	}

	pk, err := p.expenses.Add(ctx, &e)
	if err != nil {
		return 0, fmt.Errorf("failed to create expense: %w", err)
	}

	slog.Info("created expense", "pk", pk, "amount", e.Amount)
	return pk, p.afterExpenseChange(ctx)
}

// UpdateExpense overwrites a stored expense.
func (p *Presenter) UpdateExpense(ctx context.Context, e model.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := p.expenses.Update(ctx, &e); err != nil {
		return fmt.Errorf("failed to update expense %d: %w", e.PK, err)
	}

	slog.Info("updated expense", "pk", e.PK, "amount", e.Amount)
	return p.afterExpenseChange(ctx)
}

// SetExpenseAttr changes a single expense field from its textual form.
func (p *Presenter) SetExpenseAttr(ctx context.Context, pk int64, attr, value string) error {
	e, err := p.GetExpense(ctx, pk)
	if err != nil {
		return err
	}
	if err := e.SetAttr(attr, value); err != nil {
		return err
	}
	return p.UpdateExpense(ctx, *e)
}

// DeleteExpense removes an expense.
func (p *Presenter) DeleteExpense(ctx context.Context, pk int64) error {
	if err := p.expenses.Delete(ctx, pk); err != nil {
		return fmt.Errorf("failed to delete expense %d: %w", pk, err)
	}

	slog.Info("deleted expense", "pk", pk)
	return p.afterExpenseChange(ctx)
}

// GetExpense returns one expense or an error wrapping common.ErrNotFound.
func (p *Presenter) GetExpense(ctx context.Context, pk int64) (*model.Expense, error) {
	return p.expenses.Get(ctx, pk)
}

// UpdateBudget sets the total of the budget matching b's pk, or its period
// when b has no pk or the pk is unknown. Only the total changes. When nothing
// matches, b is stored as a new budget and must then carry a valid period.
func (p *Presenter) UpdateBudget(ctx context.Context, b model.Budget) error {
	if b.TotalAmount < 0 {
		return fmt.Errorf("%w: budget cannot be negative", common.ErrValidationFailed)
	}

	key := "period"
	if b.PK != 0 {
		_, err := p.budgets.Get(ctx, b.PK)
		switch {
		case err == nil:
			key = "pk"
		case errors.Is(err, common.ErrNotFound):
			slog.Debug("budget pk not found, matching by period", "pk", b.PK, "period", b.Period)
			b.PK = 0
		default:
			return fmt.Errorf("failed to load budget: %w", err)
		}
	}
	if key == "period" || b.Period != "" {
		if err := b.Validate(); err != nil {
			return err
		}
	}

	pk, err := p.budgets.Upsert(ctx, &b, func(existing *model.Budget, incoming *model.Budget) {
		existing.TotalAmount = incoming.TotalAmount
	}, key)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}

	slog.Info("updated budget", "pk", pk, "period", b.Period, "total", b.TotalAmount)
	_, err = p.Recalculate(ctx)
	return err
}

// Recalculate rescans all expenses, stores the consumed amount on each
// budget, and publishes budgets, totals and overspend warnings.
func (p *Presenter) Recalculate(ctx context.Context) (consumption.Consumption, error) {
	expenses, err := p.expenses.GetAll(ctx, nil)
	if err != nil {
		return consumption.Consumption{}, fmt.Errorf("failed to load expenses: %w", err)
	}
	totals := p.engine.Totals(expenses)

	budgets, err := p.budgets.GetAll(ctx, nil)
	if err != nil {
		return totals, fmt.Errorf("failed to load budgets: %w", err)
	}

	for i := range budgets {
		consumed := totals.For(budgets[i].Period)
		if budgets[i].ConsumedAmount == consumed {
			continue
		}
		budgets[i].ConsumedAmount = consumed
		if err := p.budgets.Update(ctx, &budgets[i]); err != nil {
			return totals, fmt.Errorf("failed to store consumption for budget %d: %w", budgets[i].PK, err)
		}
	}

	overflows := consumption.Overspent(totals, budgets)
	for _, o := range overflows {
		slog.Warn("budget exceeded", "period", o.Period, "consumed", o.Consumed, "budget", o.Budget)
	}

	p.view.SetBudgetList(budgets)
	p.view.UpdateConsumptions(totals)
	p.view.WarnOverspent(overflows)
	return totals, nil
}

func (p *Presenter) afterExpenseChange(ctx context.Context) error {
	if err := p.publishExpenses(ctx); err != nil {
		return err
	}
	_, err := p.Recalculate(ctx)
	return err
}

func (p *Presenter) publishCategories(ctx context.Context) error {
	cats, err := p.categories.GetAll(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	names := make(map[int64]string, len(cats))
	for _, c := range cats {
		names[c.PK] = c.Name
	}
	p.categoryNames = names

	p.view.SetCategoryList(cats)
	return nil
}

func (p *Presenter) publishExpenses(ctx context.Context) error {
	expenses, err := p.expenses.GetAll(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to load expenses: %w", err)
	}
	p.view.SetExpenseList(expenses)
	return nil
}
