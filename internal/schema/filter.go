package schema

import (
	"sort"

	"github.com/Masterminds/squirrel"
)

// Constraint restricts the values of one column. Eq matches exactly;
// Min and Max bound numeric and temporal columns inclusively. Fields
// hold the raw GUI input; coercion happens when the constraint is
// applied, and malformed input simply contributes nothing.
type Constraint struct {
	Eq  string `json:"eq"`
	Min string `json:"min"`
	Max string `json:"max"`
}

// IsZero reports whether the constraint restricts anything.
func (c Constraint) IsZero() bool {
	return c.Eq == "" && c.Min == "" && c.Max == ""
}

// Filter maps column names to constraints. Its lifecycle is one browser
// session; nothing here is persisted server-side.
type Filter map[string]Constraint

// columns returns the constrained column names in stable order.
func (f Filter) columns() []string {
	names := make([]string, 0, len(f))
	for name, c := range f {
		if !c.IsZero() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// conditions translates a constraint on the given column into squirrel
// predicates. Malformed typed input is skipped rather than failed: an
// interactive filter form must accept partial input.
func (c Constraint) conditions(col Column) []squirrel.Sqlizer {
	var conds []squirrel.Sqlizer

	if c.Eq != "" {
		if v, ok := coerceFilterValue(col, c.Eq); ok {
			conds = append(conds, squirrel.Eq{col.Name: v})
		}
	}
	if c.Min != "" {
		if v, ok := coerceFilterValue(col, c.Min); ok {
			conds = append(conds, squirrel.GtOrEq{col.Name: v})
		}
	}
	if c.Max != "" {
		if v, ok := coerceFilterValue(col, c.Max); ok {
			conds = append(conds, squirrel.LtOrEq{col.Name: v})
		}
	}
	return conds
}
