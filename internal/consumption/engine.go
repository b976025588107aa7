// Package consumption computes how much was spent inside the trailing day,
// week and month windows and which budgets that spending exceeds.
package consumption

import (
	"fmt"
	"time"

	"github.com/Veraticus/bookkeeper/internal/common"
	"github.com/Veraticus/bookkeeper/internal/model"
)

// Op is the kind of change an expense went through.
type Op int

// Expense changes reported to Delta.
const (
	Created Op = iota
	Updated
	Deleted
)

// Windows are the trailing window lengths per period.
type Windows struct {
	Day   time.Duration
	Week  time.Duration
	Month time.Duration
}

// DefaultWindows returns 1, 7 and 30 days.
func DefaultWindows() Windows {
	return Windows{
		Day:   24 * time.Hour,
		Week:  7 * 24 * time.Hour,
		Month: 30 * 24 * time.Hour,
	}
}

// Validate rejects non-positive windows.
func (w Windows) Validate() error {
	if w.Day <= 0 || w.Week <= 0 || w.Month <= 0 {
		return fmt.Errorf("%w: consumption windows must be positive", common.ErrInvalidConfig)
	}
	return nil
}

// For returns the window length for period p.
func (w Windows) For(p model.Period) time.Duration {
	switch p {
	case model.Day:
		return w.Day
	case model.Week:
		return w.Week
	default:
		return w.Month
	}
}

// Consumption is an amount per period.
type Consumption struct {
	Day   int64
	Week  int64
	Month int64
}

// For returns the amount for period p.
func (c Consumption) For(p model.Period) int64 {
	switch p {
	case model.Day:
		return c.Day
	case model.Week:
		return c.Week
	default:
		return c.Month
	}
}

// Add returns the element-wise sum of c and o.
func (c Consumption) Add(o Consumption) Consumption {
	return Consumption{Day: c.Day + o.Day, Week: c.Week + o.Week, Month: c.Month + o.Month}
}

// Overflow reports a period whose spending exceeds its budget.
type Overflow struct {
	Period   model.Period
	Consumed int64
	Budget   int64
}

func (o Overflow) String() string {
	return fmt.Sprintf("budget for the %s exceeded: spent %d of %d", o.Period.Label(), o.Consumed, o.Budget)
}

// Engine computes consumption relative to Now.
type Engine struct {
	Now     func() time.Time
	Windows Windows
}

// NewEngine returns an engine using the wall clock.
func NewEngine(w Windows) *Engine {
	return &Engine{Windows: w, Now: time.Now}
}

// Delta is the contribution of a single changed expense to each window.
// Created and updated expenses count positively, deleted ones negatively.
// It does not diff an update against the previous value of the expense.
func (e *Engine) Delta(exp model.Expense, op Op) Consumption {
	amount := exp.Amount
	if op == Deleted {
		amount = -amount
	}
	return e.windowed(e.Now(), exp.ExpenseDate, amount)
}

// Totals sums every expense into the windows ending now.
func (e *Engine) Totals(expenses []model.Expense) Consumption {
	now := e.Now()

	var total Consumption
	for _, exp := range expenses {
		total = total.Add(e.windowed(now, exp.ExpenseDate, exp.Amount))
	}
	return total
}

func (e *Engine) windowed(now, at time.Time, amount int64) Consumption {
	var c Consumption
	if within(now, at, e.Windows.Day) {
		c.Day = amount
	}
	if within(now, at, e.Windows.Week) {
		c.Week = amount
	}
	if within(now, at, e.Windows.Month) {
		c.Month = amount
	}
	return c
}

// within reports whether at lies in [now-window, now].
func within(now, at time.Time, window time.Duration) bool {
	return !at.Before(now.Add(-window)) && !at.After(now)
}

// Overspent lists the budgets whose period consumption exceeds the total.
// It is informational and never blocks an operation.
func Overspent(totals Consumption, budgets []model.Budget) []Overflow {
	var overflows []Overflow
	for _, b := range budgets {
		consumed := totals.For(b.Period)
		if consumed > b.TotalAmount {
			overflows = append(overflows, Overflow{Period: b.Period, Consumed: consumed, Budget: b.TotalAmount})
		}
	}
	return overflows
}
