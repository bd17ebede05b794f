// Package schema provides the table handle pipedash binds dashboards to:
// an introspected column schema plus filtered row retrieval and record
// editing over a database adapter.
package schema

import (
	"strings"

	"github.com/vathes-labs/pipedash/internal/adapter"
)

// Kind classifies a column into the closed set of variants the binder
// dispatches widgets on. Runtime type inspection is replaced by this
// explicit classification at introspection time.
type Kind int

const (
	// KindString covers text columns; filterable by a text box.
	KindString Kind = iota
	// KindNumber covers integer and floating point columns; filterable
	// by a numeric range.
	KindNumber
	// KindDate covers calendar date columns; filterable by a date picker.
	KindDate
	// KindTime covers datetime and timestamp columns.
	KindTime
	// KindEnum covers columns with a closed value set; filterable by a
	// dropdown.
	KindEnum
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindEnum:
		return "enum"
	default:
		return "string"
	}
}

// KindOf classifies a raw adapter column.
func KindOf(col adapter.Column) Kind {
	if len(col.EnumValues) > 0 {
		return KindEnum
	}

	t := strings.ToLower(col.Type)
	switch {
	case strings.Contains(t, "int") && !strings.Contains(t, "interval"),
		strings.Contains(t, "decimal"),
		strings.Contains(t, "numeric"),
		strings.Contains(t, "float"),
		strings.Contains(t, "double"),
		strings.Contains(t, "real"):
		return KindNumber
	case strings.Contains(t, "timestamp"), strings.Contains(t, "datetime"):
		return KindTime
	case strings.Contains(t, "date"):
		return KindDate
	default:
		return KindString
	}
}
