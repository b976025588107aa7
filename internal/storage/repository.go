package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/bookkeeper/internal/common"
)

// Filter selects rows whose columns equal the given values. All clauses must
// match. A nil value matches NULL.
type Filter map[string]any

// querier is satisfied by *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Repository persists one record type in one table.
type Repository[T any] struct {
	db      *DB
	columns map[string]Column
	queries repositoryQueries
	schema  Schema[T]
}

type repositoryQueries struct {
	insert    string
	selectAll string
	update    string
	delete    string
	count     string
}

// NewRepository prepares a repository for schema and creates its table when
// it does not exist yet.
func NewRepository[T any](ctx context.Context, db *DB, schema Schema[T]) (*Repository[T], error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if db == nil {
		return nil, fmt.Errorf("%w: db", ErrNilParameter)
	}
	if err := schema.validate(); err != nil {
		return nil, err
	}

	names := schema.columnNames()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	assignments := make([]string, len(names))
	for i, name := range names {
		assignments[i] = name + " = ?"
	}

	r := &Repository[T]{
		db:      db,
		schema:  schema,
		columns: make(map[string]Column, len(schema.Columns)+1),
		queries: repositoryQueries{
			insert:    fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", schema.Table, strings.Join(names, ", "), placeholders),
			selectAll: fmt.Sprintf("SELECT pk, %s FROM %s", strings.Join(names, ", "), schema.Table),
			update:    fmt.Sprintf("UPDATE %s SET %s WHERE pk = ?", schema.Table, strings.Join(assignments, ", ")),
			delete:    fmt.Sprintf("DELETE FROM %s WHERE pk = ?", schema.Table),
			count:     fmt.Sprintf("SELECT COUNT(*) FROM %s", schema.Table),
		},
	}
	r.columns["pk"] = Column{Name: "pk", Type: Integer}
	for _, c := range schema.Columns {
		r.columns[c.Name] = c
	}

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, schema.CreateTableSQL())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", schema.Table, err)
	}

	return r, nil
}

// Table returns the name of the backing table.
func (r *Repository[T]) Table() string {
	return r.schema.Table
}

// Add inserts rec and writes the generated primary key back into it.
func (r *Repository[T]) Add(ctx context.Context, rec *T) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateRecord(rec); err != nil {
		return 0, err
	}

	key := r.schema.Key(rec)
	if *key != 0 {
		return 0, fmt.Errorf("add to %s with pk %d: %w", r.schema.Table, *key, common.ErrAlreadyPersisted)
	}

	var pk int64
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		pk, err = r.insert(ctx, tx, rec)
		return err
	})
	if err != nil {
		return 0, err
	}

	*key = pk
	slog.Debug("added record", "table", r.schema.Table, "pk", pk)
	return pk, nil
}

// Get returns the record with the given primary key, or common.ErrNotFound.
func (r *Repository[T]) Get(ctx context.Context, pk int64) (*T, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var found []T
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		found, err = r.query(ctx, tx, Filter{"pk": pk})
		return err
	})
	if err != nil {
		return nil, err
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%s with pk %d: %w", r.schema.Table, pk, common.ErrNotFound)
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("%w: %s pk %d", common.ErrMultipleMatches, r.schema.Table, pk)
	}
}

// GetAll returns every record matching filter in insertion order. A nil or
// empty filter returns all rows.
func (r *Repository[T]) GetAll(ctx context.Context, filter Filter) ([]T, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var found []T
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		found, err = r.query(ctx, tx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("retrieved records", "table", r.schema.Table, "count", len(found))
	return found, nil
}

// Count returns the number of records matching filter.
func (r *Repository[T]) Count(ctx context.Context, filter Filter) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	where, args, err := r.where(filter)
	if err != nil {
		return 0, err
	}

	var n int
	err = r.db.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, r.queries.count+where, args...)
		if err != nil {
			return fmt.Errorf("failed to count %s: %w", r.schema.Table, err)
		}
		defer rows.Close()
		if rows.Next() {
			if err := rows.Scan(&n); err != nil {
				return fmt.Errorf("failed to scan count: %w", err)
			}
		}
		return rows.Err()
	})
	return n, err
}

// Update overwrites every non-key column of the row matching rec's primary key.
func (r *Repository[T]) Update(ctx context.Context, rec *T) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecord(rec); err != nil {
		return err
	}

	pk := *r.schema.Key(rec)
	if pk <= 0 {
		return fmt.Errorf("update %s: %w", r.schema.Table, common.ErrMissingKey)
	}

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		return r.update(ctx, tx, rec)
	})
	if err != nil {
		return err
	}

	slog.Debug("updated record", "table", r.schema.Table, "pk", pk)
	return nil
}

// Delete removes the row with the given primary key.
func (r *Repository[T]) Delete(ctx context.Context, pk int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, r.queries.delete, pk)
		if err != nil {
			return fmt.Errorf("failed to delete from %s: %w", r.schema.Table, err)
		}
		return requireAffected(result, r.schema.Table, pk)
	})
	if err != nil {
		return err
	}

	slog.Debug("deleted record", "table", r.schema.Table, "pk", pk)
	return nil
}

// Upsert looks up the row whose key columns equal rec's. When none exists rec
// is inserted as a new row. When one exists, merge folds rec into it and the
// merged row is written back. Either way rec's primary key is set to the
// affected row and returned.
func (r *Repository[T]) Upsert(ctx context.Context, rec *T, merge func(existing *T, incoming *T), keys ...string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateRecord(rec); err != nil {
		return 0, err
	}
	if merge == nil {
		return 0, fmt.Errorf("%w: merge", ErrNilParameter)
	}
	if len(keys) == 0 {
		return 0, fmt.Errorf("%w: upsert keys", ErrNilParameter)
	}

	filter, err := r.keyFilter(rec, keys)
	if err != nil {
		return 0, err
	}

	var pk int64
	err = r.db.withTx(ctx, func(tx *sql.Tx) error {
		found, err := r.query(ctx, tx, filter)
		if err != nil {
			return err
		}

		switch len(found) {
		case 0:
			*r.schema.Key(rec) = 0
			pk, err = r.insert(ctx, tx, rec)
			return err
		case 1:
			existing := &found[0]
			pk = *r.schema.Key(existing)
			merge(existing, rec)
			*r.schema.Key(existing) = pk
			return r.update(ctx, tx, existing)
		default:
			return fmt.Errorf("%w: %d %s rows have the same %s", common.ErrMultipleMatches, len(found), r.schema.Table, strings.Join(keys, ", "))
		}
	})
	if err != nil {
		return 0, err
	}

	*r.schema.Key(rec) = pk
	slog.Debug("upserted record", "table", r.schema.Table, "pk", pk, "keys", keys)
	return pk, nil
}

func (r *Repository[T]) keyFilter(rec *T, keys []string) (Filter, error) {
	values := r.schema.Values(rec)
	index := make(map[string]int, len(r.schema.Columns))
	for i, c := range r.schema.Columns {
		index[c.Name] = i
	}

	filter := make(Filter, len(keys))
	for _, key := range keys {
		if key == "pk" {
			filter[key] = *r.schema.Key(rec)
			continue
		}
		i, ok := index[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", common.ErrUnknownColumn, r.schema.Table, key)
		}
		filter[key] = values[i]
	}
	return filter, nil
}

func (r *Repository[T]) insert(ctx context.Context, q querier, rec *T) (int64, error) {
	result, err := q.ExecContext(ctx, r.queries.insert, r.encode(rec)...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", r.schema.Table, err)
	}

	pk, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get %s pk: %w", r.schema.Table, err)
	}
	return pk, nil
}

func (r *Repository[T]) update(ctx context.Context, q querier, rec *T) error {
	pk := *r.schema.Key(rec)
	args := append(r.encode(rec), pk)

	result, err := q.ExecContext(ctx, r.queries.update, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", r.schema.Table, err)
	}
	return requireAffected(result, r.schema.Table, pk)
}

func (r *Repository[T]) query(ctx context.Context, q querier, filter Filter) ([]T, error) {
	where, args, err := r.where(filter)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, r.queries.selectAll+where+" ORDER BY pk", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.schema.Table, err)
	}
	defer rows.Close()

	var records []T
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", r.schema.Table, err)
	}
	return records, nil
}

func (r *Repository[T]) where(filter Filter) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}

	names := make([]string, 0, len(filter))
	for name := range filter {
		names = append(names, name)
	}
	sort.Strings(names)

	clauses := make([]string, 0, len(names))
	args := make([]any, 0, len(names))
	for _, name := range names {
		col, ok := r.columns[name]
		if !ok {
			return "", nil, fmt.Errorf("%w: %s.%s", common.ErrUnknownColumn, r.schema.Table, name)
		}

		value := encodeValue(col, filter[name])
		if isNull(value) {
			clauses = append(clauses, name+" IS NULL")
			continue
		}
		clauses = append(clauses, name+" = ?")
		args = append(args, value)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func (r *Repository[T]) encode(rec *T) []any {
	values := r.schema.Values(rec)
	for i, c := range r.schema.Columns {
		values[i] = encodeValue(c, values[i])
	}
	return values
}

func (r *Repository[T]) scan(rows *sql.Rows) (T, error) {
	var rec T
	targets := r.schema.Targets(&rec)

	dest := make([]any, 0, len(targets)+1)
	dest = append(dest, r.schema.Key(&rec))

	stamps := make(map[int]*any)
	for i, c := range r.schema.Columns {
		if c.Type == Timestamp {
			var raw any
			stamps[i] = &raw
			dest = append(dest, &raw)
			continue
		}
		dest = append(dest, targets[i])
	}

	if err := rows.Scan(dest...); err != nil {
		return rec, fmt.Errorf("failed to scan %s: %w", r.schema.Table, err)
	}

	for i, raw := range stamps {
		target, ok := targets[i].(*time.Time)
		if !ok {
			return rec, fmt.Errorf("%w: %s.%s target must be *time.Time", ErrInvalidSchema, r.schema.Table, r.schema.Columns[i].Name)
		}
		ts, err := decodeTimestamp(*raw)
		if err != nil {
			return rec, fmt.Errorf("failed to parse %s.%s: %w", r.schema.Table, r.schema.Columns[i].Name, err)
		}
		*target = ts
	}

	return rec, nil
}

func requireAffected(result sql.Result, table string, pk int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s with pk %d: %w", table, pk, common.ErrNotFound)
	}
	return nil
}

func isNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case *int64:
		return x == nil
	case *string:
		return x == nil
	default:
		return false
	}
}
