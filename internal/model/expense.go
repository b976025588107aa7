package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/bookkeeper/internal/common"
	"github.com/Veraticus/bookkeeper/internal/storage"
)

// MaxComment is the longest expense comment accepted, in characters.
const MaxComment = 100

// Date layouts accepted by SetAttr for expense_date.
const (
	CompactDateLayout = "02012006"
	ISODateLayout     = "2006-01-02"
)

// Expense is a single spending record. Dates are stored in UTC at
// microsecond precision and read back in time.Local.
type Expense struct {
	ExpenseDate time.Time `validate:"required"`
	AddedDate   time.Time `validate:"required"`
	Category    *int64
	Comment     string `validate:"max=100"`
	Amount      int64  `validate:"gte=0"`
	PK          int64
}

// NewExpense returns an unsaved expense added now. A zero expenseDate means now.
func NewExpense(amount int64, category *int64, expenseDate time.Time, comment string) Expense {
	now := time.Now()
	if expenseDate.IsZero() {
		expenseDate = now
	}
	return Expense{
		Amount:      amount,
		Category:    category,
		ExpenseDate: expenseDate,
		AddedDate:   now,
		Comment:     comment,
	}
}

// Validate checks the expense before it is written.
func (e Expense) Validate() error {
	return validateStruct(e)
}

// SetAttr changes one field from its textual form.
func (e *Expense) SetAttr(attr, value string) error {
	value = strings.TrimSpace(value)

	switch attr {
	case "amount":
		amount, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: amount %q is not a whole number", common.ErrValidationFailed, value)
		}
		if amount < 0 {
			return fmt.Errorf("%w: amount cannot be negative", common.ErrValidationFailed)
		}
		e.Amount = amount
	case "category":
		if value == "" {
			e.Category = nil
			return nil
		}
		pk, err := strconv.ParseInt(value, 10, 64)
		if err != nil || pk <= 0 {
			return fmt.Errorf("%w: category %q is not an identifier", common.ErrValidationFailed, value)
		}
		e.Category = &pk
	case "expense_date":
		date, err := parseDate(value)
		if err != nil {
			return err
		}
		e.ExpenseDate = date
	case "comment":
		e.Comment = value
	default:
		return fmt.Errorf("%w: unknown expense attribute %q", common.ErrValidationFailed, attr)
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{CompactDateLayout, ISODateLayout} {
		if date, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q must be DDMMYYYY or YYYY-MM-DD", common.ErrValidationFailed, value)
}

// ExpenseSchema maps Expense onto the expense table.
var ExpenseSchema = storage.Schema[Expense]{
	Table: "expense",
	Columns: []storage.Column{
		{Name: "amount", Type: storage.Integer, Constraint: "NOT NULL CHECK(amount >= 0)"},
		{Name: "category", Type: storage.Reference, References: "category"},
		{Name: "expense_date", Type: storage.Timestamp, Constraint: "NOT NULL"},
		{Name: "added_date", Type: storage.Timestamp, Constraint: "NOT NULL"},
		{Name: "comment", Type: storage.Text, Constraint: "CHECK(length(comment) <= 100)"},
	},
	Key: func(e *Expense) *int64 { return &e.PK },
	Values: func(e *Expense) []any {
		return []any{e.Amount, refValue(e.Category), e.ExpenseDate, e.AddedDate, e.Comment}
	},
	Targets: func(e *Expense) []any {
		return []any{&e.Amount, &e.Category, &e.ExpenseDate, &e.AddedDate, &e.Comment}
	},
}
