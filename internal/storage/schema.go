package storage

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the textual form timestamps are stored in.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// FieldType is the semantic type of a record field.
type FieldType int

// Semantic field types understood by the repository.
const (
	Text FieldType = iota
	Integer
	Real
	Timestamp
	// Reference is a nullable integer pointing at another table's pk.
	Reference
	// Enum is a closed set of string values.
	Enum
)

// SQLType maps a semantic field type to its SQLite column type.
func SQLType(t FieldType) string {
	switch t {
	case Text:
		return "TEXT"
	case Integer, Reference:
		return "INTEGER"
	case Real:
		return "REAL"
	case Timestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// Column describes one non-key column of a table.
type Column struct {
	Name string
	// Constraint is appended verbatim to the column definition, e.g. "NOT NULL".
	Constraint string
	// References names the table a Reference column points at. Deleting the
	// referenced row sets the column to NULL.
	References string
	Type       FieldType
}

func (c Column) definition() string {
	parts := []string{c.Name, SQLType(c.Type)}
	if c.Constraint != "" {
		parts = append(parts, c.Constraint)
	}
	if c.References != "" {
		parts = append(parts, fmt.Sprintf("REFERENCES %s (pk) ON DELETE SET NULL", c.References))
	}
	return strings.Join(parts, " ")
}

// Schema declares how a record type maps onto a table. It is written once per
// record type and replaces any run-time inspection of the type.
//
// Values and Targets must list the columns in the same order as Columns.
type Schema[T any] struct {
	// Key returns a pointer to the record's primary key.
	Key func(*T) *int64
	// Values returns the column values to write.
	Values func(*T) []any
	// Targets returns scan destinations for the columns. Timestamp columns
	// must be *time.Time.
	Targets func(*T) []any
	Table   string
	Columns []Column
}

// CreateTableSQL renders the CREATE TABLE statement for the schema.
func (s Schema[T]) CreateTableSQL() string {
	defs := make([]string, 0, len(s.Columns)+1)
	defs = append(defs, "pk INTEGER PRIMARY KEY AUTOINCREMENT")
	for _, c := range s.Columns {
		defs = append(defs, c.definition())
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", s.Table, strings.Join(defs, ", "))
}

func (s Schema[T]) columnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

func (s Schema[T]) validate() error {
	if err := validateIdentifier(s.Table, "table"); err != nil {
		return err
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("%w: schema %s has no columns", ErrInvalidSchema, s.Table)
	}
	if s.Key == nil || s.Values == nil || s.Targets == nil {
		return fmt.Errorf("%w: schema %s is missing accessors", ErrInvalidSchema, s.Table)
	}

	seen := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		if err := validateIdentifier(c.Name, "column"); err != nil {
			return err
		}
		if c.Name == "pk" || seen[c.Name] {
			return fmt.Errorf("%w: duplicate column %s.%s", ErrInvalidSchema, s.Table, c.Name)
		}
		if c.Type == Reference && c.References != "" {
			if err := validateIdentifier(c.References, "references"); err != nil {
				return err
			}
		}
		seen[c.Name] = true
	}
	return nil
}

// encodeValue converts a Go value into what is written for column c.
func encodeValue(c Column, v any) any {
	if c.Type != Timestamp {
		return v
	}
	switch ts := v.(type) {
	case time.Time:
		return ts.UTC().Format(TimestampLayout)
	case *time.Time:
		if ts == nil {
			return nil
		}
		return ts.UTC().Format(TimestampLayout)
	default:
		return v
	}
}

// decodeTimestamp parses a stored timestamp into the local zone. The driver
// may already have turned the column into a time.Time because of its
// declared type.
func decodeTimestamp(v any) (time.Time, error) {
	var (
		ts  time.Time
		err error
	)
	switch raw := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		ts = raw
	case string:
		ts, err = time.ParseInLocation(TimestampLayout, raw, time.UTC)
	case []byte:
		ts, err = time.ParseInLocation(TimestampLayout, string(raw), time.UTC)
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp value of type %T", v)
	}
	if err != nil {
		return time.Time{}, err
	}
	return ts.In(time.Local), nil
}
