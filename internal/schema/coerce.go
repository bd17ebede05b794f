package schema

import (
	"fmt"
	"strconv"
	"time"
)

// Input layouts accepted from GUI fields.
const (
	DateLayout  = "2006-01-02"
	TimeLayout  = "2006-01-02 15:04:05"
	timeLayoutT = "2006-01-02T15:04:05"
)

// CoerceValue converts a GUI string into the typed value for a column.
// An empty string becomes NULL for non-string columns. Invalid input
// returns an error naming the problem, suitable for edit messages.
func CoerceValue(col Column, v string) (any, error) {
	if v == "" {
		if col.Kind == KindString || col.Kind == KindEnum {
			return "", nil
		}
		return nil, nil
	}

	switch col.Kind {
	case KindNumber:
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid numeric value %q for %s", v, col.Name)
		}
		return f, nil

	case KindDate:
		d, err := time.Parse(DateLayout, v)
		if err != nil {
			return nil, fmt.Errorf("invalid date value %q for %s", v, col.Name)
		}
		return d, nil

	case KindTime:
		if ts, err := time.Parse(TimeLayout, v); err == nil {
			return ts, nil
		}
		ts, err := time.Parse(timeLayoutT, v)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp value %q for %s", v, col.Name)
		}
		return ts, nil

	default:
		return v, nil
	}
}

// CoerceRecord converts all fields of a GUI record into typed values.
func CoerceRecord(cols []Column, rec Record) (map[string]any, error) {
	byName := make(map[string]Column, len(cols))
	for _, c := range cols {
		byName[c.Name] = c
	}

	out := make(map[string]any, len(rec))
	for name, v := range rec {
		col, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", name)
		}
		typed, err := CoerceValue(col, v)
		if err != nil {
			return nil, err
		}
		out[name] = typed
	}
	return out, nil
}

// coerceFilterValue is the lenient variant used for filter constraints:
// malformed input means "no constraint", never an error. Temporal
// values bind as their canonical string layouts rather than time.Time:
// text-affinity backends store dates as text, and a driver-formatted
// timestamp never equals a '2006-01-02' cell.
func coerceFilterValue(col Column, v string) (any, bool) {
	typed, err := CoerceValue(col, v)
	if err != nil || typed == nil {
		return nil, false
	}
	if ts, ok := typed.(time.Time); ok {
		if col.Kind == KindDate {
			return ts.Format(DateLayout), true
		}
		return ts.Format(TimeLayout), true
	}
	return typed, true
}
