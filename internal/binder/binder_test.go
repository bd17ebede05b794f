package binder

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vathes-labs/pipedash/internal/adapter"
	"github.com/vathes-labs/pipedash/internal/schema"
)

// recordingHost captures what a binder registers without rendering.
type recordingHost struct {
	trees    []*DisplayTree
	bindings map[string]CallbackBinding
}

func newRecordingHost() *recordingHost {
	return &recordingHost{bindings: make(map[string]CallbackBinding)}
}

func (h *recordingHost) Register(tree *DisplayTree) error {
	h.trees = append(h.trees, tree)
	return nil
}

func (h *recordingHost) BindCallback(_ *DisplayTree, b CallbackBinding) error {
	h.bindings[b.Name] = b
	return nil
}

func setupSubjectBinder(t *testing.T, opts Options) (*Binder, *schema.Table) {
	t.Helper()

	ad, err := adapter.New("sqlite")
	require.NoError(t, err)
	require.NoError(t, ad.Connect(context.Background(), adapter.Config{Type: "sqlite", Path: ":memory:"}))
	t.Cleanup(func() { _ = ad.Close() })

	ddl := []string{
		`CREATE TABLE subject (
			subject_id TEXT PRIMARY KEY,
			sex TEXT NOT NULL DEFAULT 'U',
			dob DATE
		)`,
		`INSERT INTO subject VALUES
			('S001', 'F', '2022-11-03'),
			('S002', 'M', '2023-01-15'),
			('S003', 'U', NULL)`,
	}
	for _, stmt := range ddl {
		_, err := ad.DB().ExecContext(context.Background(), stmt)
		require.NoError(t, err)
	}

	table, err := schema.NewTable(context.Background(), ad, "subject")
	require.NoError(t, err)
	return New(table, opts), table
}

func TestBinder_Build(t *testing.T) {
	b, _ := setupSubjectBinder(t, Options{})
	host := newRecordingHost()

	tree, err := b.Build(context.Background(), host)
	require.NoError(t, err)
	require.Len(t, host.trees, 1)

	t.Run("header matches column order", func(t *testing.T) {
		grid := tree.Find(tree.ID("grid"))
		require.NotNil(t, grid)
		assert.Equal(t, NodeGrid, grid.Kind)
		assert.Equal(t, []string{"subject_id", "sex", "dob"}, grid.Header)
	})

	t.Run("initial grid is the unfiltered fetch", func(t *testing.T) {
		grid := tree.Find(tree.ID("grid"))
		require.Len(t, grid.Rows, 3)
		assert.Equal(t, "S001", grid.Rows[0][0])
		assert.Empty(t, grid.Message)
	})

	t.Run("one filter widget per column", func(t *testing.T) {
		filters := tree.Find(tree.ID("filters"))
		require.NotNil(t, filters)
		require.Len(t, filters.Children, 3)
		assert.Equal(t, NodeTextInput, filters.Children[0].Kind)
		assert.Equal(t, NodeDateInput, filters.Children[2].Kind)
	})

	t.Run("rows callback is registered", func(t *testing.T) {
		binding, ok := host.bindings["rows"]
		require.True(t, ok)
		assert.Equal(t, tree.ID("grid"), binding.Target)
		assert.Contains(t, binding.Triggers, tree.ID("filter-subject_id"))
	})
}

func TestBinder_FilterCallback(t *testing.T) {
	b, table := setupSubjectBinder(t, Options{})
	host := newRecordingHost()
	ctx := context.Background()

	tree, err := b.Build(ctx, host)
	require.NoError(t, err)
	rows := host.bindings["rows"]

	t.Run("grid equals fetch under the same filter", func(t *testing.T) {
		f := schema.Filter{"subject_id": {Eq: "S001"}}

		node, err := rows.Handler(ctx, Input{Filters: f})
		require.NoError(t, err)
		assert.Equal(t, tree.ID("grid"), node.ID)

		fetched, err := table.Fetch(ctx, f, 0)
		require.NoError(t, err)
		require.Len(t, node.Rows, len(fetched))
		for i := range fetched {
			assert.Equal(t, []string(fetched[i]), node.Rows[i])
		}
	})

	t.Run("idempotent for the same filter state", func(t *testing.T) {
		f := schema.Filter{"sex": {Eq: "F"}}

		first, err := rows.Handler(ctx, Input{Filters: f})
		require.NoError(t, err)
		second, err := rows.Handler(ctx, Input{Filters: f})
		require.NoError(t, err)
		assert.Equal(t, first.Rows, second.Rows)
	})

	t.Run("empty result is an empty grid, not an error", func(t *testing.T) {
		node, err := rows.Handler(ctx, Input{Filters: schema.Filter{"subject_id": {Eq: "S999"}}})
		require.NoError(t, err)
		assert.Empty(t, node.Rows)
		assert.Empty(t, node.Message)
	})
}

func TestBinder_NamespaceUniqueness(t *testing.T) {
	b1, table := setupSubjectBinder(t, Options{})
	b2 := New(table, Options{})

	assert.NotEqual(t, b1.Namespace(), b2.Namespace())

	host := newRecordingHost()
	t1, err := b1.Build(context.Background(), host)
	require.NoError(t, err)
	t2, err := b2.Build(context.Background(), host)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, id := range t1.NodeIDs() {
		seen[id] = true
	}
	for _, id := range t2.NodeIDs() {
		assert.False(t, seen[id], "id %s collides across binders", id)
	}
}

func TestBinder_Options(t *testing.T) {
	t.Run("exclude hides column from header and filters", func(t *testing.T) {
		b, _ := setupSubjectBinder(t, Options{Exclude: []string{"dob"}})
		host := newRecordingHost()

		tree, err := b.Build(context.Background(), host)
		require.NoError(t, err)

		grid := tree.Find(tree.ID("grid"))
		assert.Equal(t, []string{"subject_id", "sex"}, grid.Header)
		require.Len(t, grid.Rows, 3)
		assert.Len(t, grid.Rows[0], 2)
		assert.Nil(t, tree.Find(tree.ID("filter-dob")))
	})

	t.Run("filter columns restrict widgets but not the grid", func(t *testing.T) {
		b, _ := setupSubjectBinder(t, Options{FilterColumns: []string{"sex"}})
		host := newRecordingHost()

		tree, err := b.Build(context.Background(), host)
		require.NoError(t, err)

		filters := tree.Find(tree.ID("filters"))
		require.Len(t, filters.Children, 1)
		assert.Equal(t, "sex", filters.Children[0].Column)
		assert.Len(t, tree.Find(tree.ID("grid")).Header, 3)
	})

	t.Run("editable adds action buttons and mutation callbacks", func(t *testing.T) {
		b, _ := setupSubjectBinder(t, Options{Editable: true})
		host := newRecordingHost()

		tree, err := b.Build(context.Background(), host)
		require.NoError(t, err)

		actions := tree.Find(tree.ID("actions"))
		require.Len(t, actions.Children, 4)
		for _, name := range []string{"add", "update", "delete"} {
			_, ok := host.bindings[name]
			assert.True(t, ok, "missing %s callback", name)
		}
	})

	t.Run("delete is gated behind a confirmation prompt", func(t *testing.T) {
		b, _ := setupSubjectBinder(t, Options{Editable: true})
		host := newRecordingHost()

		tree, err := b.Build(context.Background(), host)
		require.NoError(t, err)

		confirm := tree.Find(tree.ID("confirm-delete"))
		require.NotNil(t, confirm)
		assert.Equal(t, NodeConfirm, confirm.Kind)
		assert.Equal(t, "delete", confirm.Callback)
		assert.NotEmpty(t, confirm.Message)

		// No node triggers the delete callback directly
		assert.Equal(t, []string{tree.ID("confirm-delete")}, host.bindings["delete"].Triggers)
		assert.Nil(t, tree.Find(tree.ID("delete-button")))
	})

	t.Run("limit caps the grid", func(t *testing.T) {
		b, _ := setupSubjectBinder(t, Options{Limit: 1})
		host := newRecordingHost()

		tree, err := b.Build(context.Background(), host)
		require.NoError(t, err)
		assert.Len(t, tree.Find(tree.ID("grid")).Rows, 1)
	})
}

func TestBinder_Mutations(t *testing.T) {
	b, table := setupSubjectBinder(t, Options{Editable: true})
	host := newRecordingHost()
	ctx := context.Background()

	_, err := b.Build(ctx, host)
	require.NoError(t, err)

	t.Run("add", func(t *testing.T) {
		node, err := host.bindings["add"].Handler(ctx, Input{
			Record: schema.Record{"subject_id": "S004", "sex": "M", "dob": "2024-02-01"},
		})
		require.NoError(t, err)
		assert.Equal(t, "record added", node.Message)

		ok, err := table.Exists(ctx, schema.Record{"subject_id": "S004"})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("add failure is a message, not an error", func(t *testing.T) {
		node, err := host.bindings["add"].Handler(ctx, Input{
			Record: schema.Record{"subject_id": "S001"},
		})
		require.NoError(t, err)
		assert.Contains(t, node.Message, "insert failed")
	})

	t.Run("update reports per-field changes", func(t *testing.T) {
		node, err := host.bindings["update"].Handler(ctx, Input{
			Selected: schema.Record{"subject_id": "S002"},
			Record:   schema.Record{"sex": "F"},
		})
		require.NoError(t, err)
		assert.Contains(t, node.Message, "sex: M -> F")
	})

	t.Run("delete", func(t *testing.T) {
		node, err := host.bindings["delete"].Handler(ctx, Input{
			Selected: schema.Record{"subject_id": "S003"},
		})
		require.NoError(t, err)
		assert.Equal(t, "record deleted", node.Message)

		ok, err := table.Exists(ctx, schema.Record{"subject_id": "S003"})
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

// stubAdapter wraps a sqlmock connection behind the adapter interface
// so fetch failures can be simulated.
type stubAdapter struct {
	db   *sql.DB
	meta *adapter.Metadata
}

func (s *stubAdapter) Connect(context.Context, adapter.Config) error { return nil }
func (s *stubAdapter) Close() error                                  { return nil }
func (s *stubAdapter) DB() *sql.DB                                   { return s.db }
func (s *stubAdapter) Placeholder() squirrel.PlaceholderFormat       { return squirrel.Question }
func (s *stubAdapter) DialectName() string                           { return "mock" }

func (s *stubAdapter) TableNames(context.Context) ([]string, error) {
	return []string{s.meta.Name}, nil
}

func (s *stubAdapter) TableMetadata(_ context.Context, table string) (*adapter.Metadata, error) {
	return s.meta, nil
}

func (s *stubAdapter) ParentRefs(context.Context, string) ([]adapter.ParentRef, error) {
	return nil, nil
}

func TestBinder_FetchFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	stub := &stubAdapter{
		db: db,
		meta: &adapter.Metadata{
			Name: "subject",
			Columns: []adapter.Column{
				{Name: "subject_id", Type: "varchar(16)", PrimaryKey: true},
				{Name: "sex", Type: "enum('M','F','U')", EnumValues: []string{"M", "F", "U"}},
				{Name: "dob", Type: "date", Nullable: true},
			},
		},
	}

	table, err := schema.NewTable(context.Background(), stub, "subject")
	require.NoError(t, err)

	// Every SELECT against the grid fails, as a dropped connection would.
	mock.ExpectQuery("SELECT subject_id, sex, dob FROM subject").
		WillReturnError(sql.ErrConnDone)

	b := New(table, Options{})
	host := newRecordingHost()

	tree, err := b.Build(context.Background(), host)
	require.NoError(t, err, "a failed fetch must not abort the build")

	grid := tree.Find(tree.ID("grid"))
	require.NotNil(t, grid)
	assert.Empty(t, grid.Rows)
	assert.Contains(t, grid.Message, "failed to load subject")

	// The filter callback degrades the same way instead of erroring.
	mock.ExpectQuery("SELECT subject_id, sex, dob FROM subject").
		WillReturnError(sql.ErrConnDone)

	node, err := host.bindings["rows"].Handler(context.Background(), Input{
		Filters: schema.Filter{"subject_id": {Eq: "S001"}},
	})
	require.NoError(t, err)
	assert.Equal(t, tree.ID("grid"), node.ID)
	assert.Contains(t, node.Message, "failed to load subject")
}

func TestBinder_NoColumns(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	stub := &stubAdapter{db: db, meta: &adapter.Metadata{Name: "empty"}}

	_, err = schema.NewTable(context.Background(), stub, "empty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns")
}
