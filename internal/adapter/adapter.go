// Package adapter provides database adapters for the pipeline databases
// pipedash mounts dashboards on.
package adapter

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
)

// Config holds the configuration for connecting to a database.
type Config struct {
	// Type specifies the database type (e.g., "mysql", "sqlite")
	Type string `koanf:"type"`

	// Path is the file path for file-based databases (SQLite, DuckDB).
	// Use ":memory:" for an in-memory database.
	Path string `koanf:"path"`

	// Host is the hostname for network-based databases
	Host string `koanf:"host"`

	// Port is the port number for network-based databases
	Port int `koanf:"port"`

	// Database is the database name
	Database string `koanf:"database"`

	// Username for authentication
	Username string `koanf:"username"`

	// Password for authentication
	Password string `koanf:"password"`

	// Schema is the default schema to introspect
	Schema string `koanf:"schema"`

	// Options contains additional driver-specific options
	Options map[string]string `koanf:"options"`
}

// Column describes one column of a pipeline table.
type Column struct {
	// Name is the column name
	Name string

	// Type is the raw database type, e.g. "varchar(16)" or "enum('M','F','U')"
	Type string

	// Nullable indicates whether the column allows NULL values
	Nullable bool

	// PrimaryKey indicates whether the column is part of the primary key
	PrimaryKey bool

	// Default is the textual default value, empty if none
	Default string

	// EnumValues holds the allowed values for enum columns
	EnumValues []string

	// Position is the ordinal position of the column in the table
	Position int
}

// Metadata holds the introspected schema of one table.
type Metadata struct {
	Schema  string
	Name    string
	Columns []Column
}

// ParentRef describes a foreign key from one column of a table to a
// column of a parent table.
type ParentRef struct {
	// Column is the referencing column in the child table
	Column string

	// ParentTable is the referenced table
	ParentTable string

	// ParentColumn is the referenced column in the parent table
	ParentColumn string
}

// Rows wraps sql.Rows to provide a consistent interface across adapters.
type Rows struct {
	*sql.Rows
}

// Adapter defines the interface that all database adapters must implement.
// It provides connection handling and the schema introspection the table
// binder depends on.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// DB returns the underlying connection for query building.
	DB() *sql.DB

	// Placeholder returns the placeholder format for parameterized queries.
	Placeholder() squirrel.PlaceholderFormat

	// TableNames lists the tables visible in the configured schema.
	TableNames(ctx context.Context) ([]string, error)

	// TableMetadata retrieves the ordered column schema for a table.
	TableMetadata(ctx context.Context, table string) (*Metadata, error)

	// ParentRefs retrieves the foreign keys of a table.
	ParentRefs(ctx context.Context, table string) ([]ParentRef, error)

	// DialectName returns the SQL dialect name for this adapter.
	DialectName() string
}
