// Package model holds the records the bookkeeper persists and their table schemas.
package model

import (
	"github.com/Veraticus/bookkeeper/internal/storage"
)

// MaxCategoryName is the longest category name accepted, in characters.
const MaxCategoryName = 20

// Category is a node in the expense category tree.
type Category struct {
	Parent *int64
	Name   string `validate:"required,notblank,max=20"`
	PK     int64
}

// NewCategory returns an unsaved category.
func NewCategory(name string, parent *int64) Category {
	return Category{Name: name, Parent: parent}
}

// Validate checks the category before it is written.
func (c Category) Validate() error {
	return validateStruct(c)
}

// CategorySchema maps Category onto the category table.
var CategorySchema = storage.Schema[Category]{
	Table: "category",
	Columns: []storage.Column{
		{Name: "name", Type: storage.Text, Constraint: "UNIQUE NOT NULL CHECK(length(name) <= 20)"},
		{Name: "parent", Type: storage.Reference, References: "category"},
	},
	Key: func(c *Category) *int64 { return &c.PK },
	Values: func(c *Category) []any {
		return []any{c.Name, refValue(c.Parent)}
	},
	Targets: func(c *Category) []any {
		return []any{&c.Name, &c.Parent}
	},
}

// Ref returns a reference to the record with the given pk.
func Ref(pk int64) *int64 {
	return &pk
}

func refValue(ref *int64) any {
	if ref == nil {
		return nil
	}
	return *ref
}
