package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceValue(t *testing.T) {
	strCol := Column{Name: "subject_id", Kind: KindString}
	numCol := Column{Name: "weight", Kind: KindNumber}
	dateCol := Column{Name: "dob", Kind: KindDate}
	timeCol := Column{Name: "session_time", Kind: KindTime}
	enumCol := Column{Name: "sex", Kind: KindEnum, EnumValues: []string{"M", "F", "U"}}

	t.Run("string passthrough", func(t *testing.T) {
		v, err := CoerceValue(strCol, "S001")
		require.NoError(t, err)
		assert.Equal(t, "S001", v)
	})

	t.Run("empty string stays empty for string columns", func(t *testing.T) {
		v, err := CoerceValue(strCol, "")
		require.NoError(t, err)
		assert.Equal(t, "", v)
	})

	t.Run("empty becomes null for typed columns", func(t *testing.T) {
		v, err := CoerceValue(numCol, "")
		require.NoError(t, err)
		assert.Nil(t, v)

		v, err = CoerceValue(dateCol, "")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("integer", func(t *testing.T) {
		v, err := CoerceValue(numCol, "42")
		require.NoError(t, err)
		assert.Equal(t, int64(42), v)
	})

	t.Run("float", func(t *testing.T) {
		v, err := CoerceValue(numCol, "21.5")
		require.NoError(t, err)
		assert.Equal(t, 21.5, v)
	})

	t.Run("invalid number", func(t *testing.T) {
		_, err := CoerceValue(numCol, "heavy")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "weight")
	})

	t.Run("date", func(t *testing.T) {
		v, err := CoerceValue(dateCol, "2023-04-01")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), v)
	})

	t.Run("invalid date", func(t *testing.T) {
		_, err := CoerceValue(dateCol, "04/01/2023")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dob")
	})

	t.Run("timestamp with space", func(t *testing.T) {
		v, err := CoerceValue(timeCol, "2023-04-01 12:30:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2023, 4, 1, 12, 30, 0, 0, time.UTC), v)
	})

	t.Run("timestamp with T separator", func(t *testing.T) {
		v, err := CoerceValue(timeCol, "2023-04-01T12:30:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2023, 4, 1, 12, 30, 0, 0, time.UTC), v)
	})

	t.Run("enum passthrough", func(t *testing.T) {
		v, err := CoerceValue(enumCol, "F")
		require.NoError(t, err)
		assert.Equal(t, "F", v)
	})
}

func TestCoerceRecord(t *testing.T) {
	cols := []Column{
		{Name: "subject_id", Kind: KindString},
		{Name: "weight", Kind: KindNumber},
		{Name: "dob", Kind: KindDate},
	}

	t.Run("mixed fields", func(t *testing.T) {
		out, err := CoerceRecord(cols, Record{
			"subject_id": "S001",
			"weight":     "21.5",
			"dob":        "",
		})
		require.NoError(t, err)
		assert.Equal(t, "S001", out["subject_id"])
		assert.Equal(t, 21.5, out["weight"])
		assert.Nil(t, out["dob"])
	})

	t.Run("unknown column rejected", func(t *testing.T) {
		_, err := CoerceRecord(cols, Record{"species": "mouse"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "species")
	})

	t.Run("invalid value surfaces the field", func(t *testing.T) {
		_, err := CoerceRecord(cols, Record{"weight": "heavy"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "weight")
	})
}

func TestFilterConditions(t *testing.T) {
	numCol := Column{Name: "weight", Kind: KindNumber}
	strCol := Column{Name: "subject_id", Kind: KindString}

	t.Run("eq min max all present", func(t *testing.T) {
		c := Constraint{Eq: "20", Min: "10", Max: "30"}
		assert.Len(t, c.conditions(numCol), 3)
	})

	t.Run("malformed input contributes nothing", func(t *testing.T) {
		c := Constraint{Min: "light"}
		assert.Empty(t, c.conditions(numCol))
	})

	t.Run("partial malformed keeps the rest", func(t *testing.T) {
		c := Constraint{Eq: "20", Max: "heavy"}
		assert.Len(t, c.conditions(numCol), 1)
	})

	t.Run("string equality", func(t *testing.T) {
		c := Constraint{Eq: "S001"}
		conds := c.conditions(strCol)
		require.Len(t, conds, 1)
		sql, args, err := conds[0].ToSql()
		require.NoError(t, err)
		assert.Equal(t, "subject_id = ?", sql)
		assert.Equal(t, []any{"S001"}, args)
	})

	t.Run("date equality binds the canonical layout", func(t *testing.T) {
		dateCol := Column{Name: "dob", Kind: KindDate}
		c := Constraint{Eq: "2022-11-03"}
		conds := c.conditions(dateCol)
		require.Len(t, conds, 1)
		sql, args, err := conds[0].ToSql()
		require.NoError(t, err)
		assert.Equal(t, "dob = ?", sql)
		assert.Equal(t, []any{"2022-11-03"}, args)
	})

	t.Run("timestamp range binds canonical layouts", func(t *testing.T) {
		tsCol := Column{Name: "session_start", Kind: KindTime}
		c := Constraint{Min: "2023-01-01T08:30:00", Max: "2023-01-01 17:00:00"}
		conds := c.conditions(tsCol)
		require.Len(t, conds, 2)
		_, args, err := conds[0].ToSql()
		require.NoError(t, err)
		assert.Equal(t, []any{"2023-01-01 08:30:00"}, args)
	})

	t.Run("zero constraint excluded from filter columns", func(t *testing.T) {
		f := Filter{
			"weight":     {Min: "10"},
			"subject_id": {},
		}
		assert.Equal(t, []string{"weight"}, f.columns())
	})
}
