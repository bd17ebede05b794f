package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	_ "modernc.org/sqlite" // sqlite driver (pure Go)
)

func init() {
	Register("sqlite", func() Adapter { return NewSQLiteAdapter() })
}

// SQLiteAdapter implements the Adapter interface for SQLite. It is the
// default backend for tests and local demos.
type SQLiteAdapter struct {
	BaseSQLAdapter
}

// NewSQLiteAdapter creates a new SQLite adapter instance.
func NewSQLiteAdapter() *SQLiteAdapter {
	return &SQLiteAdapter{}
}

// DialectName returns the SQL dialect for this adapter.
func (a *SQLiteAdapter) DialectName() string {
	return "sqlite"
}

// Placeholder returns the placeholder format for SQLite.
func (a *SQLiteAdapter) Placeholder() squirrel.PlaceholderFormat {
	return squirrel.Question
}

// Connect establishes a connection to SQLite.
// Use ":memory:" as the path for an in-memory database.
func (a *SQLiteAdapter) Connect(ctx context.Context, cfg Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// PRAGMA introspection and in-memory databases require a single
	// connection; pooled connections would each see their own :memory: db.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	a.Conn = db
	a.Cfg = cfg
	return nil
}

// TableNames lists the tables in the database.
func (a *SQLiteAdapter) TableNames(ctx context.Context) ([]string, error) {
	if a.Conn == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := a.Conn.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
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
// SQLite PRAGMA statements do not accept bound parameters, so the table
// name is validated against sqlite_master first.
func (a *SQLiteAdapter) TableMetadata(ctx context.Context, table string) (*Metadata, error) {
	if a.Conn == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	if err := a.validateTable(ctx, table); err != nil {
		return nil, err
	}

	rows, err := a.Conn.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("failed to introspect %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	meta := &Metadata{Schema: "main", Name: table}
	for rows.Next() {
		var cid, notNull, pk int
		var name, colType string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		meta.Columns = append(meta.Columns, Column{
			Name:       name,
			Type:       colType,
			Nullable:   notNull == 0 && pk == 0,
			PrimaryKey: pk > 0,
			Default:    strings.Trim(dflt.String, "'"),
			Position:   cid + 1,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return meta, nil
}

// ParentRefs retrieves the foreign keys of a table.
func (a *SQLiteAdapter) ParentRefs(ctx context.Context, table string) ([]ParentRef, error) {
	if a.Conn == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	if err := a.validateTable(ctx, table); err != nil {
		return nil, err
	}

	rows, err := a.Conn.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("failed to introspect foreign keys of %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var refs []ParentRef
	for rows.Next() {
		var id, seq int
		var parentTable, from string
		var to sql.NullString
		var onUpdate, onDelete, match string
		if err := rows.Scan(&id, &seq, &parentTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}
		parentColumn := to.String
		if parentColumn == "" {
			// Implicit reference to the parent's primary key column.
			parentColumn = from
		}
		refs = append(refs, ParentRef{
			Column:       from,
			ParentTable:  parentTable,
			ParentColumn: parentColumn,
		})
	}
	return refs, rows.Err()
}

func (a *SQLiteAdapter) validateTable(ctx context.Context, table string) error {
	var name string
	err := a.Conn.QueryRowContext(ctx, `
		SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?
	`, table).Scan(&name)
	if err != nil {
		return fmt.Errorf("table not found: %s", table)
	}
	return nil
}
