// Package testutil provides test helpers shared across packages.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/bookkeeper/internal/model"
	"github.com/Veraticus/bookkeeper/internal/storage"
)

// TestDB is a throwaway database with a repository per record type.
type TestDB struct {
	DB         *storage.DB
	Categories *storage.Repository[model.Category]
	Expenses   *storage.Repository[model.Expense]
	Budgets    *storage.Repository[model.Budget]
	t          *testing.T
}

// SetupTestDB creates a database file under t.TempDir with all tables and
// closes it when the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	db.MustAddCategory("books", nil)
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()
	db, err := storage.Open(filepath.Join(t.TempDir(), "bookkeeper.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	categories, err := storage.NewRepository(ctx, db, model.CategorySchema)
	if err != nil {
		t.Fatalf("failed to create category table: %v", err)
	}
	expenses, err := storage.NewRepository(ctx, db, model.ExpenseSchema)
	if err != nil {
		t.Fatalf("failed to create expense table: %v", err)
	}
	budgets, err := storage.NewRepository(ctx, db, model.BudgetSchema)
	if err != nil {
		t.Fatalf("failed to create budget table: %v", err)
	}

	return &TestDB{
		DB:         db,
		Categories: categories,
		Expenses:   expenses,
		Budgets:    budgets,
		t:          t,
	}
}

// MustAddCategory inserts a category or fails the test.
func (db *TestDB) MustAddCategory(name string, parent *int64) model.Category {
	db.t.Helper()

	cat := model.NewCategory(name, parent)
	if _, err := db.Categories.Add(context.Background(), &cat); err != nil {
		db.t.Fatalf("failed to seed category %q: %v", name, err)
	}
	return cat
}

// MustAddExpense inserts an expense or fails the test.
func (db *TestDB) MustAddExpense(e model.Expense) model.Expense {
	db.t.Helper()

	if _, err := db.Expenses.Add(context.Background(), &e); err != nil {
		db.t.Fatalf("failed to seed expense: %v", err)
	}
	return e
}

// MustAddBudget inserts a budget or fails the test.
func (db *TestDB) MustAddBudget(b model.Budget) model.Budget {
	db.t.Helper()

	if _, err := db.Budgets.Add(context.Background(), &b); err != nil {
		db.t.Fatalf("failed to seed budget: %v", err)
	}
	return b
}
