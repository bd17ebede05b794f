package schema

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/vathes-labs/pipedash/internal/adapter"
)

// Row is one fetched row, formatted as strings aligned with the
// table's column order.
type Row []string

// Record is a GUI-space record: raw string values keyed by column name.
type Record map[string]string

// Column is the schema-level view of one table column.
type Column struct {
	Name       string
	Type       string
	Kind       Kind
	PrimaryKey bool
	Nullable   bool
	Default    string
	EnumValues []string
}

// Required reports whether an edit form must supply a value: part of
// the primary key, or non-nullable without a default.
func (c Column) Required() bool {
	return c.PrimaryKey || (!c.Nullable && c.Default == "")
}

// FieldChange records the outcome of updating one field of a record.
type FieldChange struct {
	Field string
	Old   string
	New   string
	Err   error
}

// Table is a handle over one relational table: its ordered column
// schema plus filtered fetch and record editing. The handle borrows the
// adapter's connection; it owns no pooling or locking of its own.
type Table struct {
	ad      adapter.Adapter
	name    string
	columns []Column
	parents map[string]adapter.ParentRef
	qb      squirrel.StatementBuilderType
}

// NewTable introspects a table and returns a handle for it. An
// introspection failure or an empty column list aborts construction.
func NewTable(ctx context.Context, ad adapter.Adapter, name string) (*Table, error) {
	meta, err := ad.TableMetadata(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("schema introspection failed for %s: %w", name, err)
	}
	if len(meta.Columns) == 0 {
		return nil, fmt.Errorf("table %s has no columns", name)
	}

	refs, err := ad.ParentRefs(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("schema introspection failed for %s: %w", name, err)
	}
	parents := make(map[string]adapter.ParentRef, len(refs))
	for _, r := range refs {
		parents[r.Column] = r
	}

	columns := make([]Column, len(meta.Columns))
	for i, c := range meta.Columns {
		columns[i] = Column{
			Name:       c.Name,
			Type:       c.Type,
			Kind:       KindOf(c),
			PrimaryKey: c.PrimaryKey,
			Nullable:   c.Nullable,
			Default:    c.Default,
			EnumValues: c.EnumValues,
		}
	}

	return &Table{
		ad:      ad,
		name:    name,
		columns: columns,
		parents: parents,
		qb:      squirrel.StatementBuilder.PlaceholderFormat(ad.Placeholder()),
	}, nil
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// Columns returns the ordered column schema.
func (t *Table) Columns() []Column {
	return t.columns
}

// ColumnNames returns the column names in schema order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// PrimaryKey returns the primary key column names in schema order.
func (t *Table) PrimaryKey() []string {
	var pk []string
	for _, c := range t.columns {
		if c.PrimaryKey {
			pk = append(pk, c.Name)
		}
	}
	return pk
}

// DropdownColumns returns the columns presented as dropdowns in edit
// forms: enum columns plus columns covered by a foreign key.
func (t *Table) DropdownColumns() []string {
	var names []string
	for _, c := range t.columns {
		if c.Kind == KindEnum {
			names = append(names, c.Name)
			continue
		}
		if _, ok := t.parents[c.Name]; ok {
			names = append(names, c.Name)
		}
	}
	return names
}

// Options returns the allowed values for a column: enum literals for
// enum columns, distinct parent values for foreign-key columns, nil
// otherwise.
func (t *Table) Options(ctx context.Context, name string) ([]string, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	if col.Kind == KindEnum {
		return col.EnumValues, nil
	}

	ref, ok := t.parents[name]
	if !ok {
		return nil, nil
	}

	query, args, err := t.qb.
		Select(ref.ParentColumn).
		Distinct().
		From(ref.ParentTable).
		OrderBy(ref.ParentColumn).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := t.ad.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch options for %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	var options []string
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		options = append(options, formatValue(v, col.Kind))
	}
	return options, rows.Err()
}

// Fetch returns the rows matching the filter, ordered by primary key.
// A limit of 0 means no limit.
func (t *Table) Fetch(ctx context.Context, f Filter, limit uint64) ([]Row, error) {
	sel := t.qb.Select(t.ColumnNames()...).From(t.name)

	for _, name := range f.columns() {
		col, ok := t.Column(name)
		if !ok {
			continue
		}
		for _, cond := range f[name].conditions(col) {
			sel = sel.Where(cond)
		}
	}

	if pk := t.PrimaryKey(); len(pk) > 0 {
		sel = sel.OrderBy(pk...)
	}
	if limit > 0 {
		sel = sel.Limit(limit)
	}

	query, args, err := sel.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := t.ad.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch from %s failed: %w", t.name, err)
	}
	defer func() { _ = rows.Close() }()

	var result []Row
	for rows.Next() {
		values := make([]any, len(t.columns))
		ptrs := make([]any, len(t.columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(t.columns))
		for i, v := range values {
			row[i] = formatValue(v, t.columns[i].Kind)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// Fetch1 returns the single record identified by the primary key.
func (t *Table) Fetch1(ctx context.Context, pk Record) (Record, error) {
	eq, err := t.pkEq(pk)
	if err != nil {
		return nil, err
	}

	query, args, err := t.qb.Select(t.ColumnNames()...).From(t.name).Where(eq).ToSql()
	if err != nil {
		return nil, err
	}

	values := make([]any, len(t.columns))
	ptrs := make([]any, len(t.columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := t.ad.DB().QueryRowContext(ctx, query, args...).Scan(ptrs...); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("record %v not found in %s", pk, t.name)
		}
		return nil, err
	}

	rec := make(Record, len(t.columns))
	for i, v := range values {
		rec[t.columns[i].Name] = formatValue(v, t.columns[i].Kind)
	}
	return rec, nil
}

// Exists reports whether a record with the given primary key exists.
func (t *Table) Exists(ctx context.Context, pk Record) (bool, error) {
	eq, err := t.pkEq(pk)
	if err != nil {
		return false, err
	}

	query, args, err := t.qb.Select("COUNT(*)").From(t.name).Where(eq).ToSql()
	if err != nil {
		return false, err
	}

	var n int64
	if err := t.ad.DB().QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Insert inserts one GUI record after coercing its values.
func (t *Table) Insert(ctx context.Context, rec Record) error {
	typed, err := CoerceRecord(t.columns, rec)
	if err != nil {
		return err
	}

	cols := make([]string, 0, len(typed))
	vals := make([]any, 0, len(typed))
	for _, c := range t.columns {
		v, ok := typed[c.Name]
		if !ok {
			continue
		}
		cols = append(cols, c.Name)
		vals = append(vals, v)
	}

	query, args, err := t.qb.Insert(t.name).Columns(cols...).Values(vals...).ToSql()
	if err != nil {
		return err
	}
	if _, err := t.ad.DB().ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s failed: %w", t.name, err)
	}
	return nil
}

// Update compares a GUI record against the stored one and updates each
// changed secondary field individually, reporting per-field outcomes.
// Primary key fields are never updated.
func (t *Table) Update(ctx context.Context, pk Record, rec Record) ([]FieldChange, error) {
	old, err := t.Fetch1(ctx, pk)
	if err != nil {
		return nil, err
	}

	eq, err := t.pkEq(pk)
	if err != nil {
		return nil, err
	}

	var changes []FieldChange
	for _, c := range t.columns {
		if c.PrimaryKey {
			continue
		}
		newVal, ok := rec[c.Name]
		if !ok || newVal == old[c.Name] {
			continue
		}

		change := FieldChange{Field: c.Name, Old: old[c.Name], New: newVal}
		typed, err := CoerceValue(c, newVal)
		if err != nil {
			change.Err = err
			changes = append(changes, change)
			continue
		}

		query, args, err := t.qb.Update(t.name).Set(c.Name, typed).Where(eq).ToSql()
		if err != nil {
			change.Err = err
			changes = append(changes, change)
			continue
		}
		if _, err := t.ad.DB().ExecContext(ctx, query, args...); err != nil {
			change.Err = err
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// Delete removes the record identified by the primary key.
func (t *Table) Delete(ctx context.Context, pk Record) error {
	eq, err := t.pkEq(pk)
	if err != nil {
		return err
	}

	query, args, err := t.qb.Delete(t.name).Where(eq).ToSql()
	if err != nil {
		return err
	}
	if _, err := t.ad.DB().ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete from %s failed: %w", t.name, err)
	}
	return nil
}

// pkEq builds the primary key equality predicate from a GUI record.
func (t *Table) pkEq(pk Record) (squirrel.Eq, error) {
	names := t.PrimaryKey()
	if len(names) == 0 {
		return nil, fmt.Errorf("table %s has no primary key", t.name)
	}

	eq := make(squirrel.Eq, len(names))
	for _, name := range names {
		v, ok := pk[name]
		if !ok || v == "" {
			return nil, fmt.Errorf("missing primary key value for %s", name)
		}
		col, _ := t.Column(name)
		typed, err := CoerceValue(col, v)
		if err != nil {
			return nil, err
		}
		eq[name] = typed
	}
	return eq, nil
}

// formatValue renders a scanned database value for display.
func formatValue(v any, kind Kind) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case time.Time:
		if kind == KindDate {
			return val.Format(DateLayout)
		}
		return val.Format(TimeLayout)
	default:
		return fmt.Sprintf("%v", val)
	}
}
