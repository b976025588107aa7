package model

import (
	"fmt"
	"strings"

	"github.com/Veraticus/bookkeeper/internal/common"
	"github.com/Veraticus/bookkeeper/internal/storage"
)

// Period is the trailing window a budget applies to.
type Period string

// Supported periods. Adding one is a schema change.
const (
	Day   Period = "DAY"
	Week  Period = "WEEK"
	Month Period = "MONTH"
)

// Periods returns every period, shortest first.
func Periods() []Period {
	return []Period{Day, Week, Month}
}

// ParsePeriod accepts a period name in any case.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: unknown period %q (want day, week or month)", common.ErrValidationFailed, s)
	}
	return p, nil
}

// Valid reports whether p is one of the supported periods.
func (p Period) Valid() bool {
	switch p {
	case Day, Week, Month:
		return true
	}
	return false
}

// Label is the lower-case name used in messages.
func (p Period) Label() string {
	return strings.ToLower(string(p))
}

// Budget caps spending within one period.
type Budget struct {
	Period         Period `validate:"budget_period"`
	TotalAmount    int64  `validate:"gte=0"`
	ConsumedAmount int64  `validate:"gte=0"`
	PK             int64
}

// NewBudget returns an unsaved budget with nothing consumed.
func NewBudget(period Period, total int64) Budget {
	return Budget{Period: period, TotalAmount: total}
}

// Validate checks the budget before it is written.
func (b Budget) Validate() error {
	return validateStruct(b)
}

// Remaining is what is left to spend; negative once the budget is exceeded.
func (b Budget) Remaining() int64 {
	return b.TotalAmount - b.ConsumedAmount
}

// BudgetSchema maps Budget onto the budget table.
var BudgetSchema = storage.Schema[Budget]{
	Table: "budget",
	Columns: []storage.Column{
		{Name: "total_amount", Type: storage.Integer, Constraint: "NOT NULL CHECK(total_amount >= 0)"},
		{Name: "consumed_amount", Type: storage.Integer, Constraint: "NOT NULL CHECK(consumed_amount >= 0)"},
		{Name: "period", Type: storage.Enum, Constraint: "NOT NULL UNIQUE CHECK(period IN ('DAY', 'WEEK', 'MONTH'))"},
	},
	Key: func(b *Budget) *int64 { return &b.PK },
	Values: func(b *Budget) []any {
		return []any{b.TotalAmount, b.ConsumedAmount, string(b.Period)}
	},
	Targets: func(b *Budget) []any {
		return []any{&b.TotalAmount, &b.ConsumedAmount, &b.Period}
	},
}
