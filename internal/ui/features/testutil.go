// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/vathes-labs/pipedash/internal/adapter"
	"github.com/vathes-labs/pipedash/internal/ui/notifier"
)

// TestFixture holds the dependencies UI handler tests need: an
// in-memory database seeded with a small pipeline schema, plus the
// notifier and session store the handlers take.
type TestFixture struct {
	Adapter      adapter.Adapter
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
}

// SetupTestFixture creates an in-memory SQLite database, runs the
// given statements against it, and wires up the surrounding handler
// dependencies.
func SetupTestFixture(t *testing.T, statements ...string) *TestFixture {
	t.Helper()

	ad, err := adapter.New("sqlite")
	require.NoError(t, err)
	require.NoError(t, ad.Connect(context.Background(), adapter.Config{Type: "sqlite", Path: ":memory:"}))
	t.Cleanup(func() { _ = ad.Close() })

	for _, stmt := range statements {
		_, err := ad.DB().ExecContext(context.Background(), stmt)
		require.NoError(t, err)
	}

	return &TestFixture{
		Adapter:      ad,
		Notifier:     notifier.New(),
		SessionStore: sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!")),
	}
}

// SubjectSchema is a small pipeline schema shared by feature tests.
var SubjectSchema = []string{
	`CREATE TABLE lab (lab_name TEXT PRIMARY KEY, institution TEXT)`,
	`CREATE TABLE subject (
		subject_id TEXT PRIMARY KEY,
		sex TEXT NOT NULL DEFAULT 'U',
		dob DATE,
		lab_name TEXT REFERENCES lab(lab_name)
	)`,
	`INSERT INTO lab VALUES ('cajal', 'UCL')`,
	`INSERT INTO subject VALUES
		('S001', 'F', '2022-11-03', 'cajal'),
		('S002', 'M', '2023-01-15', 'cajal')`,
}
