package presenter

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/bookkeeper/internal/common"
	"github.com/Veraticus/bookkeeper/internal/consumption"
	"github.com/Veraticus/bookkeeper/internal/model"
	"github.com/Veraticus/bookkeeper/internal/storage"
	"github.com/Veraticus/bookkeeper/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)

type recordingView struct {
	categories     []model.Category
	expenses       []model.Expense
	budgets        []model.Budget
	overflows      []consumption.Overflow
	consumptions   []consumption.Consumption
	categoryPushes int
}

func (v *recordingView) SetCategoryList(c []model.Category) {
	v.categories = c
	v.categoryPushes++
}

func (v *recordingView) SetExpenseList(e []model.Expense) { v.expenses = e }

func (v *recordingView) SetBudgetList(b []model.Budget) { v.budgets = b }

func (v *recordingView) UpdateConsumptions(c consumption.Consumption) {
	v.consumptions = append(v.consumptions, c)
}

func (v *recordingView) WarnOverspent(o []consumption.Overflow) { v.overflows = o }

func (v *recordingView) lastConsumption() consumption.Consumption {
	if len(v.consumptions) == 0 {
		return consumption.Consumption{}
	}
	return v.consumptions[len(v.consumptions)-1]
}

func newTestPresenter(t *testing.T) (*Presenter, *recordingView, *testutil.TestDB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	engine := consumption.NewEngine(consumption.DefaultWindows())
	engine.Now = func() time.Time { return fixedNow }
	view := &recordingView{}

	p, err := New(Deps{
		Categories: db.Categories,
		Expenses:   db.Expenses,
		Budgets:    db.Budgets,
		Engine:     engine,
		View:       view,
		Seed:       DefaultSeed(),
	})
	require.NoError(t, err)
	return p, view, db
}

func spentAgo(amount int64, ago time.Duration) model.Expense {
	return model.Expense{Amount: amount, ExpenseDate: fixedNow.Add(-ago), AddedDate: fixedNow}
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Deps{})
	assert.Error(t, err)
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	p, view, db := newTestPresenter(t)

	seeded, err := p.Bootstrap(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	cats, err := db.Categories.GetAll(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, cats, 7)

	budgets, err := db.Budgets.GetAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, budgets, 3)
	assert.Equal(t, model.Day, budgets[0].Period)
	assert.Equal(t, int64(1000), budgets[0].TotalAmount)
	assert.Equal(t, int64(30000), budgets[2].TotalAmount)
	for _, b := range budgets {
		assert.Zero(t, b.ConsumedAmount)
	}

	seeded, err = p.Bootstrap(ctx)
	require.NoError(t, err)
	assert.False(t, seeded, "second run leaves existing data alone")

	require.NoError(t, p.Refresh(ctx))
	assert.Len(t, view.categories, 7)
	assert.Len(t, view.budgets, 3)
	assert.Empty(t, view.expenses)
}

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	p, view, _ := newTestPresenter(t)

	produce, err := p.CreateCategory(ctx, "produce", nil)
	require.NoError(t, err)
	meat, err := p.CreateCategory(ctx, " meat ", model.Ref(produce))
	require.NoError(t, err)

	require.Len(t, view.categories, 2)
	assert.Equal(t, "meat", view.categories[1].Name)
	assert.Equal(t, "meat", p.CategoryName(model.Ref(meat)))
	assert.Equal(t, "", p.CategoryName(nil))

	require.NoError(t, p.UpdateCategory(ctx, model.Category{PK: meat, Name: "poultry", Parent: model.Ref(produce)}))
	assert.Equal(t, "poultry", view.categories[1].Name)

	err = p.UpdateCategory(ctx, model.Category{PK: produce, Name: "produce", Parent: model.Ref(meat)})
	assert.ErrorIs(t, err, common.ErrValidationFailed, "a category cannot become its own grandchild")

	err = p.UpdateCategory(ctx, model.Category{PK: produce, Name: "produce", Parent: model.Ref(produce)})
	assert.ErrorIs(t, err, common.ErrValidationFailed)

	_, err = p.CreateCategory(ctx, "", nil)
	assert.ErrorIs(t, err, common.ErrValidationFailed)

	_, err = p.CreateCategory(ctx, "orphan", model.Ref(999))
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = p.UpdateCategory(ctx, model.Category{PK: 999, Name: "ghost"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteCategory_ClearsExpenseReference(t *testing.T) {
	ctx := context.Background()
	p, view, _ := newTestPresenter(t)

	books, err := p.CreateCategory(ctx, "books", nil)
	require.NoError(t, err)

	e := spentAgo(300, time.Hour)
	e.Category = model.Ref(books)
	pk, err := p.CreateExpense(ctx, e)
	require.NoError(t, err)

	require.NoError(t, p.DeleteCategory(ctx, books))
	assert.Empty(t, view.categories)
	require.Len(t, view.expenses, 1)
	assert.Nil(t, view.expenses[0].Category)

	got, err := p.GetExpense(ctx, pk)
	require.NoError(t, err)
	assert.Nil(t, got.Category)
	assert.Equal(t, int64(300), got.Amount, "the expense itself survives")

	assert.ErrorIs(t, p.DeleteCategory(ctx, books), common.ErrNotFound)
}

func TestExpenseLifecycle_RecalculatesConsumption(t *testing.T) {
	ctx := context.Background()
	p, view, db := newTestPresenter(t)
	_, err := p.Bootstrap(ctx)
	require.NoError(t, err)

	today, err := p.CreateExpense(ctx, spentAgo(100, time.Hour))
	require.NoError(t, err)
	assert.Equal(t, consumption.Consumption{Day: 100, Week: 100, Month: 100}, view.lastConsumption())
	require.Len(t, view.expenses, 1)

	_, err = p.CreateExpense(ctx, spentAgo(50, 10*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, consumption.Consumption{Day: 100, Week: 100, Month: 150}, view.lastConsumption())

	_, err = p.CreateExpense(ctx, spentAgo(999, 40*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, consumption.Consumption{Day: 100, Week: 100, Month: 150}, view.lastConsumption())

	updated := spentAgo(120, time.Hour)
	updated.PK = today
	require.NoError(t, p.UpdateExpense(ctx, updated))
	assert.Equal(t, consumption.Consumption{Day: 120, Week: 120, Month: 170}, view.lastConsumption(),
		"a full rescan does not double count the updated expense")

	require.NoError(t, p.DeleteExpense(ctx, today))
	assert.Equal(t, consumption.Consumption{Day: 0, Week: 0, Month: 50}, view.lastConsumption())
	assert.Len(t, view.expenses, 2)

	budgets, err := db.Budgets.GetAll(ctx, storage.Filter{"period": string(model.Month)})
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, int64(50), budgets[0].ConsumedAmount, "consumption is stored on the budget")

	_, err = p.GetExpense(ctx, today)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, p.DeleteExpense(ctx, today), common.ErrNotFound)
}

func TestCreateExpense_Validation(t *testing.T) {
	ctx := context.Background()
	p, view, db := newTestPresenter(t)

	_, err := p.CreateExpense(ctx, spentAgo(-5, time.Hour))
	assert.ErrorIs(t, err, common.ErrValidationFailed)

	persisted := spentAgo(5, time.Hour)
	persisted.PK = 12
	_, err = p.CreateExpense(ctx, persisted)
	assert.ErrorIs(t, err, common.ErrAlreadyPersisted)

	n, err := db.Expenses.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, view.consumptions, "failed operations publish nothing")

	e := spentAgo(5, time.Hour)
	e.AddedDate = time.Time{}
	pk, err := p.CreateExpense(ctx, e)
	require.NoError(t, err)
	got, err := p.GetExpense(ctx, pk)
	require.NoError(t, err)
	assert.True(t, fixedNow.Equal(got.AddedDate), "added date defaults to now")
}

func TestUpdateExpense_MissingKey(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newTestPresenter(t)

	assert.ErrorIs(t, p.UpdateExpense(ctx, spentAgo(5, time.Hour)), common.ErrMissingKey)

	ghost := spentAgo(5, time.Hour)
	ghost.PK = 77
	assert.ErrorIs(t, p.UpdateExpense(ctx, ghost), common.ErrNotFound)
}

func TestSetExpenseAttr(t *testing.T) {
	ctx := context.Background()
	p, view, _ := newTestPresenter(t)

	pk, err := p.CreateExpense(ctx, spentAgo(10, time.Hour))
	require.NoError(t, err)

	require.NoError(t, p.SetExpenseAttr(ctx, pk, "amount", "45"))
	require.NoError(t, p.SetExpenseAttr(ctx, pk, "comment", "coffee"))
	assert.Equal(t, int64(45), view.lastConsumption().Day)

	got, err := p.GetExpense(ctx, pk)
	require.NoError(t, err)
	assert.Equal(t, int64(45), got.Amount)
	assert.Equal(t, "coffee", got.Comment)

	assert.ErrorIs(t, p.SetExpenseAttr(ctx, pk, "amount", "lots"), common.ErrValidationFailed)
	assert.ErrorIs(t, p.SetExpenseAttr(ctx, 404, "amount", "1"), common.ErrNotFound)
}

func TestUpdateBudget(t *testing.T) {
	ctx := context.Background()
	p, view, db := newTestPresenter(t)

	require.NoError(t, p.UpdateBudget(ctx, model.NewBudget(model.Week, 500)))
	budgets, err := db.Budgets.GetAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, budgets, 1, "no budget for the period yet, so one is inserted")
	week := budgets[0]

	require.NoError(t, p.UpdateBudget(ctx, model.Budget{Period: model.Week, TotalAmount: 800, ConsumedAmount: 42}))
	got, err := db.Budgets.Get(ctx, week.PK)
	require.NoError(t, err)
	assert.Equal(t, int64(800), got.TotalAmount)
	assert.Zero(t, got.ConsumedAmount, "only the total is overwritten")

	require.NoError(t, p.UpdateBudget(ctx, model.Budget{PK: week.PK, TotalAmount: 900}))
	got, err = db.Budgets.Get(ctx, week.PK)
	require.NoError(t, err)
	assert.Equal(t, int64(900), got.TotalAmount)
	assert.Equal(t, model.Week, got.Period)

	require.NoError(t, p.UpdateBudget(ctx, model.NewBudget(model.Day, 100)))
	n, err := db.Budgets.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, view.budgets, 2)

	assert.ErrorIs(t, p.UpdateBudget(ctx, model.NewBudget(model.Day, -1)), common.ErrValidationFailed)
	assert.ErrorIs(t, p.UpdateBudget(ctx, model.Budget{TotalAmount: 5}), common.ErrValidationFailed)
}

func TestUpdateBudget_UnknownPKMatchesByPeriod(t *testing.T) {
	ctx := context.Background()
	p, view, db := newTestPresenter(t)

	require.NoError(t, p.UpdateBudget(ctx, model.NewBudget(model.Day, 100)))
	require.NoError(t, p.UpdateBudget(ctx, model.Budget{PK: 99, Period: model.Day, TotalAmount: 5}))
	require.NoError(t, p.UpdateBudget(ctx, model.NewBudget(model.Day, 10)))

	budgets, err := db.Budgets.GetAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, budgets, 1, "a stale pk must not add a second budget for the period")
	assert.Equal(t, model.Day, budgets[0].Period)
	assert.Equal(t, int64(10), budgets[0].TotalAmount)
	assert.Len(t, view.budgets, 1)

	dup := model.NewBudget(model.Day, 1)
	_, err = db.Budgets.Add(ctx, &dup)
	assert.Error(t, err, "the period column is unique")
}

func TestUpdateBudget_UnknownPKWithoutPeriod(t *testing.T) {
	ctx := context.Background()
	p, _, db := newTestPresenter(t)

	err := p.UpdateBudget(ctx, model.Budget{PK: 99, TotalAmount: 5})
	require.ErrorIs(t, err, common.ErrValidationFailed)

	n, err := db.Budgets.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOverspentWarning(t *testing.T) {
	ctx := context.Background()
	p, view, _ := newTestPresenter(t)

	require.NoError(t, p.UpdateBudget(ctx, model.NewBudget(model.Day, 100)))
	require.NoError(t, p.UpdateBudget(ctx, model.NewBudget(model.Week, 1000)))

	_, err := p.CreateExpense(ctx, spentAgo(150, time.Hour))
	require.NoError(t, err, "exceeding a budget never blocks the operation")

	require.Len(t, view.overflows, 1)
	assert.Equal(t, model.Day, view.overflows[0].Period)
	assert.Equal(t, int64(150), view.overflows[0].Consumed)

	require.NoError(t, p.UpdateBudget(ctx, model.NewBudget(model.Day, 200)))
	assert.Empty(t, view.overflows, "raising the budget clears the warning")
}

func TestImportCategories(t *testing.T) {
	ctx := context.Background()
	p, view, _ := newTestPresenter(t)

	cats, err := p.ImportCategories(ctx, strings.NewReader("home\n  rent\n  power\n"), nil)
	require.NoError(t, err)
	assert.Len(t, cats, 3)
	assert.Len(t, view.categories, 3)

	_, err = p.ImportCategories(ctx, strings.NewReader("a\n    b\n  c\n"), nil)
	assert.ErrorIs(t, err, common.ErrIndentationMismatch)
}

func TestHandlers(t *testing.T) {
	ctx := context.Background()
	p, view, _ := newTestPresenter(t)
	h := p.Handlers()

	pk, err := h.CreateCategory(ctx, "travel", nil)
	require.NoError(t, err)
	require.NoError(t, h.DeleteCategory(ctx, pk))

	epk, err := h.CreateExpense(ctx, spentAgo(30, time.Hour))
	require.NoError(t, err)
	e, err := h.GetExpense(ctx, epk)
	require.NoError(t, err)
	assert.Equal(t, int64(30), e.Amount)

	require.NoError(t, h.Refresh(ctx))
	assert.Equal(t, 3, view.categoryPushes, "create and delete each republish categories, refresh adds one")
}
