package components

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vathes-labs/pipedash/internal/binder"
	"github.com/vathes-labs/pipedash/internal/schema"
)

func subjectView() View {
	return View{
		SigNS:    "subject_ab12cd34",
		BasePath: "/t/subject",
		Columns: []schema.Column{
			{Name: "subject_id", Kind: schema.KindString, PrimaryKey: true},
			{Name: "sex", Kind: schema.KindEnum, EnumValues: []string{"M", "F", "U"}},
			{Name: "dob", Kind: schema.KindDate, Nullable: true},
		},
		PrimaryKey: []string{"subject_id"},
	}
}

func TestInitialSignals_ValidJSON(t *testing.T) {
	v := subjectView()

	// Raw inputs straight from a session cookie, including characters
	// Go quoting and JSON quoting disagree on.
	f := schema.Filter{
		"subject_id": {Eq: "O'Brien \"S001\" \x7f"},
		"dob":        {Min: "2022-01-01"},
	}

	raw := initialSignals(v, f)

	var decoded map[string]struct {
		Filters map[string]schema.Constraint `json:"filters"`
		Record  map[string]string            `json:"record"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded), "seed must be valid JSON: %s", raw)

	seed, ok := decoded[v.SigNS]
	require.True(t, ok)
	assert.Equal(t, "O'Brien \"S001\" \x7f", seed.Filters["subject_id"].Eq)
	assert.Equal(t, "2022-01-01", seed.Filters["dob"].Min)
	assert.Equal(t, "", seed.Record["sex"])
}

func TestConfirmPrompt(t *testing.T) {
	v := subjectView()
	n := &binder.Node{
		ID:       "subject-ab12cd34-confirm-delete",
		Kind:     binder.NodeConfirm,
		Label:    "Delete",
		Message:  "Delete the selected record?",
		Callback: "delete",
	}

	var b strings.Builder
	require.NoError(t, Node(n, v).Render(context.Background(), &b))
	html := b.String()

	// The trigger button only opens the prompt
	assert.Contains(t, html, `data-on-click="$subject_ab12cd34.confirm_delete = true">Delete</button>`)
	assert.Contains(t, html, `data-show="$subject_ab12cd34.confirm_delete"`)
	assert.Contains(t, html, "Delete the selected record?")

	// Only the Confirm button posts the gated callback
	assert.Equal(t, 1, strings.Count(html, "@post('/t/subject/cb/delete')"))
	assert.Contains(t, html, `$subject_ab12cd34.confirm_delete = false; @post('/t/subject/cb/delete')`)
	assert.Contains(t, html, `data-on-click="$subject_ab12cd34.confirm_delete = false">Cancel</button>`)
}
