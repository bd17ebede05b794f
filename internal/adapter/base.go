package adapter

import (
	"database/sql"
	"regexp"
	"strings"
)

// BaseSQLAdapter holds the fields shared by all database/sql backed
// adapters and implements the trivial parts of the Adapter interface.
type BaseSQLAdapter struct {
	Conn *sql.DB
	Cfg  Config
}

// DB returns the underlying connection.
func (b *BaseSQLAdapter) DB() *sql.DB {
	return b.Conn
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.Conn != nil {
		return b.Conn.Close()
	}
	return nil
}

var enumLiteralRe = regexp.MustCompile(`'((?:[^']|'')*)'`)

// parseEnumValues extracts the allowed values from a raw enum column
// type such as "enum('M','F','U')". Returns nil for non-enum types.
func parseEnumValues(rawType string) []string {
	lower := strings.ToLower(rawType)
	if !strings.HasPrefix(lower, "enum(") {
		return nil
	}

	matches := enumLiteralRe.FindAllStringSubmatch(rawType, -1)
	if len(matches) == 0 {
		return nil
	}

	values := make([]string, 0, len(matches))
	for _, m := range matches {
		values = append(values, strings.ReplaceAll(m[1], "''", "'"))
	}
	return values
}
