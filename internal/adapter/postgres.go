package adapter

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver via database/sql
)

func init() {
	Register("postgres", func() Adapter { return NewPostgresAdapter() })
}

// PostgresAdapter implements the Adapter interface for PostgreSQL.
type PostgresAdapter struct {
	BaseSQLAdapter
}

// NewPostgresAdapter creates a new PostgreSQL adapter instance.
func NewPostgresAdapter() *PostgresAdapter {
	return &PostgresAdapter{}
}

// DialectName returns the SQL dialect for this adapter.
func (a *PostgresAdapter) DialectName() string {
	return "postgres"
}

// Placeholder returns the placeholder format for PostgreSQL.
func (a *PostgresAdapter) Placeholder() squirrel.PlaceholderFormat {
	return squirrel.Dollar
}

// Connect establishes a connection to PostgreSQL.
func (a *PostgresAdapter) Connect(ctx context.Context, cfg Config) error {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.Username, cfg.Password, cfg.Host, port, cfg.Database)
	if cfg.Options["sslmode"] != "" {
		dsn += "?sslmode=" + cfg.Options["sslmode"]
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.Conn = db
	a.Cfg = cfg
	return nil
}

func (a *PostgresAdapter) schemaName() string {
	if a.Cfg.Schema != "" {
		return a.Cfg.Schema
	}
	return "public"
}

// TableNames lists the tables in the configured schema.
func (a *PostgresAdapter) TableNames(ctx context.Context) ([]string, error) {
	if a.Conn == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := a.Conn.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
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
// Enum values are resolved through pg_enum for user-defined enum types.
func (a *PostgresAdapter) TableMetadata(ctx context.Context, table string) (*Metadata, error) {
	if a.Conn == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := a.Conn.QueryContext(ctx, `
		SELECT c.column_name,
		       CASE WHEN c.data_type = 'USER-DEFINED' THEN c.udt_name ELSE c.data_type END,
		       c.is_nullable,
		       COALESCE(c.column_default, ''),
		       c.ordinal_position,
		       c.data_type = 'USER-DEFINED'
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`, a.schemaName(), table)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	meta := &Metadata{Schema: a.schemaName(), Name: table}
	var userDefined []int
	for rows.Next() {
		var col Column
		var nullable string
		var isUDT bool
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Default, &col.Position, &isUDT); err != nil {
			return nil, err
		}
		col.Nullable = nullable == "YES"
		if isUDT {
			userDefined = append(userDefined, len(meta.Columns))
		}
		meta.Columns = append(meta.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, i := range userDefined {
		values, err := a.enumValues(ctx, meta.Columns[i].Type)
		if err != nil {
			return nil, err
		}
		meta.Columns[i].EnumValues = values
	}

	if err := a.markPrimaryKeys(ctx, table, meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func (a *PostgresAdapter) enumValues(ctx context.Context, typeName string) ([]string, error) {
	rows, err := a.Conn.QueryContext(ctx, `
		SELECT e.enumlabel
		FROM pg_type t
		JOIN pg_enum e ON t.oid = e.enumtypid
		WHERE t.typname = $1
		ORDER BY e.enumsortorder
	`, typeName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (a *PostgresAdapter) markPrimaryKeys(ctx context.Context, table string, meta *Metadata) error {
	rows, err := a.Conn.QueryContext(ctx, `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema = kcu.table_schema
		WHERE tc.table_schema = $1 AND tc.table_name = $2
		  AND tc.constraint_type = 'PRIMARY KEY'
	`, a.schemaName(), table)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	pk := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		pk[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range meta.Columns {
		meta.Columns[i].PrimaryKey = pk[meta.Columns[i].Name]
	}
	return nil
}

// ParentRefs retrieves the foreign keys of a table.
func (a *PostgresAdapter) ParentRefs(ctx context.Context, table string) ([]ParentRef, error) {
	if a.Conn == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := a.Conn.QueryContext(ctx, `
		SELECT kcu.column_name, ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
		  ON tc.constraint_name = ccu.constraint_name
		 AND tc.table_schema = ccu.table_schema
		WHERE tc.table_schema = $1 AND tc.table_name = $2
		  AND tc.constraint_type = 'FOREIGN KEY'
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
