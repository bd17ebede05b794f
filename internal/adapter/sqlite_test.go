package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLite(t *testing.T) *SQLiteAdapter {
	t.Helper()

	a := NewSQLiteAdapter()
	require.NoError(t, a.Connect(context.Background(), Config{Type: "sqlite", Path: ":memory:"}))
	t.Cleanup(func() { _ = a.Close() })

	ddl := []string{
		`CREATE TABLE lab (lab_name TEXT PRIMARY KEY, institution TEXT)`,
		`CREATE TABLE subject (
			subject_id TEXT PRIMARY KEY,
			sex TEXT NOT NULL DEFAULT 'U',
			dob DATE,
			lab_name TEXT REFERENCES lab(lab_name)
		)`,
	}
	for _, stmt := range ddl {
		_, err := a.DB().ExecContext(context.Background(), stmt)
		require.NoError(t, err)
	}
	return a
}

func TestSQLiteAdapter_TableNames(t *testing.T) {
	a := setupSQLite(t)

	names, err := a.TableNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"lab", "subject"}, names)
}

func TestSQLiteAdapter_TableMetadata(t *testing.T) {
	a := setupSQLite(t)

	meta, err := a.TableMetadata(context.Background(), "subject")
	require.NoError(t, err)

	require.Len(t, meta.Columns, 4)
	assert.Equal(t, "subject_id", meta.Columns[0].Name)
	assert.True(t, meta.Columns[0].PrimaryKey)
	assert.False(t, meta.Columns[0].Nullable)

	assert.Equal(t, "sex", meta.Columns[1].Name)
	assert.Equal(t, "U", meta.Columns[1].Default)
	assert.False(t, meta.Columns[1].Nullable)

	assert.Equal(t, "dob", meta.Columns[2].Name)
	assert.Equal(t, "DATE", meta.Columns[2].Type)
	assert.True(t, meta.Columns[2].Nullable)
}

func TestSQLiteAdapter_TableMetadata_Unknown(t *testing.T) {
	a := setupSQLite(t)

	_, err := a.TableMetadata(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table not found")
}

func TestSQLiteAdapter_ParentRefs(t *testing.T) {
	a := setupSQLite(t)

	refs, err := a.ParentRefs(context.Background(), "subject")
	require.NoError(t, err)

	require.Len(t, refs, 1)
	assert.Equal(t, "lab_name", refs[0].Column)
	assert.Equal(t, "lab", refs[0].ParentTable)
	assert.Equal(t, "lab_name", refs[0].ParentColumn)

	refs, err = a.ParentRefs(context.Background(), "lab")
	require.NoError(t, err)
	assert.Empty(t, refs)
}
