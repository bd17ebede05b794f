package home

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vathes-labs/pipedash/internal/config"
	"github.com/vathes-labs/pipedash/internal/schema"
	"github.com/vathes-labs/pipedash/internal/testutil"
	"github.com/vathes-labs/pipedash/internal/ui/features"
	"github.com/vathes-labs/pipedash/internal/ui/features/tables"
)

func setupTestHandlers(t *testing.T) (*Handlers, *features.TestFixture) {
	t.Helper()

	fixture := features.SetupTestFixture(t, features.SubjectSchema...)

	var mounts []*tables.Mount
	for _, tc := range []config.TableConfig{
		{Table: "subject", Title: "Subjects"},
		{Table: "lab", Title: "Labs"},
	} {
		table, err := schema.NewTable(context.Background(), fixture.Adapter, tc.Table)
		require.NoError(t, err)
		m, err := tables.NewMount(context.Background(), table, tc)
		require.NoError(t, err)
		mounts = append(mounts, m)
	}

	tablesHandlers := tables.NewHandlers(
		mounts, fixture.SessionStore, fixture.Notifier, testutil.NewTestLogger(t), true)

	return NewHandlers(tablesHandlers, fixture.Notifier, true), fixture
}

func TestHomePage(t *testing.T) {
	h, _ := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.HomePage(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "<!doctype html>")
	assert.Contains(t, body, "<title>Tables - pipedash</title>")
	assert.Contains(t, body, `href="/t/subject"`)
	assert.Contains(t, body, `href="/t/lab"`)
	assert.Contains(t, body, "Subjects")
	assert.Contains(t, body, "Labs")
}
