// Package tables serves the table dashboards: one mount per
// configured table, each backed by a binder whose callbacks are routed
// over SSE.
package tables

import (
	"github.com/vathes-labs/pipedash/internal/binder"
	"github.com/vathes-labs/pipedash/internal/schema"
	"github.com/vathes-labs/pipedash/internal/ui/features/tables/components"
)

// filterSignal mirrors one column's constraint inputs in the browser.
type filterSignal struct {
	Eq  string `json:"eq"`
	Min string `json:"min"`
	Max string `json:"max"`
}

// tableSignals is the signal subtree one mounted table owns in the
// browser: filter inputs, the edit form record, and the selected row's
// primary key.
type tableSignals struct {
	Filters  map[string]filterSignal `json:"filters"`
	Record   map[string]string       `json:"record"`
	Selected map[string]string       `json:"selected"`
}

// filter converts the signal state into a fetch filter.
func (s tableSignals) filter() schema.Filter {
	f := make(schema.Filter, len(s.Filters))
	for name, fs := range s.Filters {
		c := schema.Constraint{Eq: fs.Eq, Min: fs.Min, Max: fs.Max}
		if !c.IsZero() {
			f[name] = c
		}
	}
	return f
}

// input converts the signal state into a callback input.
func (s tableSignals) input() binder.Input {
	in := binder.Input{
		Filters:  s.filter(),
		Record:   make(schema.Record, len(s.Record)),
		Selected: make(schema.Record, len(s.Selected)),
	}
	for name, v := range s.Record {
		in.Record[name] = v
	}
	for name, v := range s.Selected {
		in.Selected[name] = v
	}
	return in
}

// Mount is one table dashboard: its binder, the registered display
// tree, and the callbacks keyed by name.
type Mount struct {
	Name     string
	Binder   *binder.Binder
	Tree     *binder.DisplayTree
	Bindings map[string]binder.CallbackBinding
	View     components.View
}

// BasePath returns the mount's URL prefix.
func (m *Mount) BasePath() string {
	return "/t/" + m.Name
}
