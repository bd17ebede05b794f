package adapter

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

func init() {
	Register("duckdb", func() Adapter { return NewDuckDBAdapter() })
}

// DuckDBAdapter implements the Adapter interface for DuckDB, used for
// analytics-side pipeline databases.
type DuckDBAdapter struct {
	BaseSQLAdapter
}

// NewDuckDBAdapter creates a new DuckDB adapter instance.
func NewDuckDBAdapter() *DuckDBAdapter {
	return &DuckDBAdapter{}
}

// DialectName returns the SQL dialect for this adapter.
func (a *DuckDBAdapter) DialectName() string {
	return "duckdb"
}

// Placeholder returns the placeholder format for DuckDB.
func (a *DuckDBAdapter) Placeholder() squirrel.PlaceholderFormat {
	return squirrel.Question
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (a *DuckDBAdapter) Connect(ctx context.Context, cfg Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	if path == ":memory:" {
		path = ""
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.Conn = db
	a.Cfg = cfg
	return nil
}

func (a *DuckDBAdapter) schemaName() string {
	if a.Cfg.Schema != "" {
		return a.Cfg.Schema
	}
	return "main"
}

// TableNames lists the tables in the configured schema.
func (a *DuckDBAdapter) TableNames(ctx context.Context) ([]string, error) {
	if a.Conn == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := a.Conn.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ?
		ORDER BY table_name
	`, a.schemaName())
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// TableMetadata retrieves the ordered column schema for a table.
// Primary keys come from duckdb_constraints().
func (a *DuckDBAdapter) TableMetadata(ctx context.Context, table string) (*Metadata, error) {
	if a.Conn == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := a.Conn.QueryContext(ctx, `
		SELECT column_name, data_type, is_nullable,
		       COALESCE(column_default, ''), ordinal_position
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`, a.schemaName(), table)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	meta := &Metadata{Schema: a.schemaName(), Name: table}
	for rows.Next() {
		var col Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Default, &col.Position); err != nil {
			return nil, err
		}
		col.Nullable = nullable == "YES"
		col.EnumValues = parseEnumValues(col.Type)
		meta.Columns = append(meta.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pk, err := a.primaryKeyColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	for i := range meta.Columns {
		meta.Columns[i].PrimaryKey = pk[meta.Columns[i].Name]
	}
	return meta, nil
}

func (a *DuckDBAdapter) primaryKeyColumns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := a.Conn.QueryContext(ctx, `
		SELECT unnest(constraint_column_names)
		FROM duckdb_constraints()
		WHERE schema_name = ? AND table_name = ?
		  AND constraint_type = 'PRIMARY KEY'
	`, a.schemaName(), table)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	pk := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		pk[name] = true
	}
	return pk, rows.Err()
}

// ParentRefs retrieves the foreign keys of a table.
func (a *DuckDBAdapter) ParentRefs(ctx context.Context, table string) ([]ParentRef, error) {
	if a.Conn == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := a.Conn.QueryContext(ctx, `
		SELECT unnest(constraint_column_names),
		       referenced_table,
		       unnest(referenced_column_names)
		FROM duckdb_constraints()
		WHERE schema_name = ? AND table_name = ?
		  AND constraint_type = 'FOREIGN KEY'
	`, a.schemaName(), table)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect foreign keys of %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var refs []ParentRef
	for rows.Next() {
		var ref ParentRef
		if err := rows.Scan(&ref.Column, &ref.ParentTable, &ref.ParentColumn); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
