package adapter

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	_ "github.com/go-sql-driver/mysql" // mysql driver
)

func init() {
	Register("mysql", func() Adapter { return NewMySQLAdapter() })
}

// MySQLAdapter implements the Adapter interface for MySQL, the most
// common backend for scientific pipeline databases.
type MySQLAdapter struct {
	BaseSQLAdapter
}

// NewMySQLAdapter creates a new MySQL adapter instance.
func NewMySQLAdapter() *MySQLAdapter {
	return &MySQLAdapter{}
}

// DialectName returns the SQL dialect for this adapter.
func (a *MySQLAdapter) DialectName() string {
	return "mysql"
}

// Placeholder returns the placeholder format for MySQL.
func (a *MySQLAdapter) Placeholder() squirrel.PlaceholderFormat {
	return squirrel.Question
}

// Connect establishes a connection to MySQL.
func (a *MySQLAdapter) Connect(ctx context.Context, cfg Config) error {
	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.Username, cfg.Password, cfg.Host, port, cfg.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open mysql connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping mysql: %w", err)
	}

	a.Conn = db
	a.Cfg = cfg
	return nil
}

// schemaName returns the schema to introspect, defaulting to the
// connected database.
func (a *MySQLAdapter) schemaName() string {
	if a.Cfg.Schema != "" {
		return a.Cfg.Schema
	}
	return a.Cfg.Database
}

// TableNames lists the tables in the configured schema.
func (a *MySQLAdapter) TableNames(ctx context.Context) ([]string, error) {
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
func (a *MySQLAdapter) TableMetadata(ctx context.Context, table string) (*Metadata, error) {
	if a.Conn == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := a.Conn.QueryContext(ctx, `
		SELECT column_name, column_type, is_nullable, column_key,
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
		var nullable, key string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &key, &col.Default, &col.Position); err != nil {
			return nil, err
		}
		col.Nullable = nullable == "YES"
		col.PrimaryKey = key == "PRI"
		col.EnumValues = parseEnumValues(col.Type)
		meta.Columns = append(meta.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return meta, nil
}

// ParentRefs retrieves the foreign keys of a table.
func (a *MySQLAdapter) ParentRefs(ctx context.Context, table string) ([]ParentRef, error) {
	if a.Conn == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := a.Conn.QueryContext(ctx, `
		SELECT column_name, referenced_table_name, referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ? AND table_name = ?
		  AND referenced_table_name IS NOT NULL
		ORDER BY ordinal_position
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
