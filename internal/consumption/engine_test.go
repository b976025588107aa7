package consumption

import (
	"testing"
	"time"

	"github.com/Veraticus/bookkeeper/internal/common"
	"github.com/Veraticus/bookkeeper/internal/model"
	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	e := NewEngine(DefaultWindows())
	e.Now = func() time.Time { return fixedNow }
	return e
}

func expenseAt(amount int64, ago time.Duration) model.Expense {
	return model.Expense{Amount: amount, ExpenseDate: fixedNow.Add(-ago), AddedDate: fixedNow}
}

func TestEngine_Delta(t *testing.T) {
	day := 24 * time.Hour
	tests := []struct {
		name    string
		expense model.Expense
		op      Op
		want    Consumption
	}{
		{name: "created today", expense: expenseAt(100, time.Hour), op: Created, want: Consumption{100, 100, 100}},
		{name: "created ten days ago", expense: expenseAt(100, 10*day), op: Created, want: Consumption{0, 0, 100}},
		{name: "created forty days ago", expense: expenseAt(100, 40*day), op: Created, want: Consumption{0, 0, 0}},
		{name: "created three days ago", expense: expenseAt(100, 3*day), op: Created, want: Consumption{0, 100, 100}},
		{name: "updated today", expense: expenseAt(70, time.Minute), op: Updated, want: Consumption{70, 70, 70}},
		{name: "deleted today", expense: expenseAt(100, time.Hour), op: Deleted, want: Consumption{-100, -100, -100}},
		{name: "deleted ten days ago", expense: expenseAt(100, 10*day), op: Deleted, want: Consumption{0, 0, -100}},
		{name: "window edge is inclusive", expense: expenseAt(5, day), op: Created, want: Consumption{5, 5, 5}},
		{name: "future expenses are outside every window", expense: expenseAt(5, -time.Hour), op: Created, want: Consumption{}},
	}

	e := newTestEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Delta(tt.expense, tt.op))
		})
	}
}

func TestEngine_DeleteDoesNotMutateExpense(t *testing.T) {
	e := newTestEngine()
	exp := expenseAt(100, time.Hour)
	e.Delta(exp, Deleted)
	assert.Equal(t, int64(100), exp.Amount)
}

func TestEngine_Totals(t *testing.T) {
	day := 24 * time.Hour
	e := newTestEngine()

	got := e.Totals([]model.Expense{
		expenseAt(100, time.Hour),
		expenseAt(50, 2*day),
		expenseAt(25, 20*day),
		expenseAt(1000, 60*day),
	})
	assert.Equal(t, Consumption{Day: 100, Week: 150, Month: 175}, got)
	assert.Equal(t, Consumption{}, e.Totals(nil))
}

func TestEngine_CustomWindows(t *testing.T) {
	e := newTestEngine()
	e.Windows = Windows{Day: time.Hour, Week: 24 * time.Hour, Month: 7 * 24 * time.Hour}

	assert.Equal(t, Consumption{0, 10, 10}, e.Delta(expenseAt(10, 2*time.Hour), Created))
}

func TestWindows_Validate(t *testing.T) {
	assert.NoError(t, DefaultWindows().Validate())
	assert.ErrorIs(t, Windows{Day: time.Hour}.Validate(), common.ErrInvalidConfig)
	assert.Equal(t, 7*24*time.Hour, DefaultWindows().For(model.Week))
}

func TestConsumption_ForAndAdd(t *testing.T) {
	c := Consumption{Day: 1, Week: 2, Month: 3}
	assert.Equal(t, int64(1), c.For(model.Day))
	assert.Equal(t, int64(2), c.For(model.Week))
	assert.Equal(t, int64(3), c.For(model.Month))
	assert.Equal(t, Consumption{2, 4, 6}, c.Add(c))
}

func TestOverspent(t *testing.T) {
	budgets := []model.Budget{
		model.NewBudget(model.Day, 100),
		model.NewBudget(model.Week, 700),
		model.NewBudget(model.Month, 3000),
	}

	assert.Empty(t, Overspent(Consumption{100, 700, 3000}, budgets), "reaching the budget is not exceeding it")

	got := Overspent(Consumption{150, 800, 900}, budgets)
	assert.Equal(t, []Overflow{
		{Period: model.Day, Consumed: 150, Budget: 100},
		{Period: model.Week, Consumed: 800, Budget: 700},
	}, got)
	assert.Equal(t, "budget for the day exceeded: spent 150 of 100", got[0].String())
}
