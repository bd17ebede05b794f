// Package components renders a table binder's display tree as HTML
// wired to datastar signals. Every node renders with its tree ID so
// callback responses can patch it in place.
package components

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/vathes-labs/pipedash/internal/binder"
	"github.com/vathes-labs/pipedash/internal/schema"
)

// View carries everything the renderers need beyond the node itself:
// the signal namespace the inputs bind to, the mount's callback URL
// prefix, and the column schema for edit forms.
type View struct {
	// SigNS is the signal namespace, the tree namespace with dashes
	// replaced so it is a valid signal path segment.
	SigNS string
	// BasePath is the mount's URL prefix, e.g. "/t/subject".
	BasePath string
	// Columns is the table's column schema in order.
	Columns []schema.Column
	// Dropdowns maps dropdown columns to their option lists.
	Dropdowns map[string][]string
	// PrimaryKey is the primary key column subset.
	PrimaryKey []string
	// Overrides substitutes freshly built nodes for stored tree nodes
	// by ID, so a page render can show the current fetch instead of
	// the mount-time one.
	Overrides map[string]*binder.Node
}

// SignalNamespace derives the signal path segment for a tree
// namespace.
func SignalNamespace(ns string) string {
	return strings.ReplaceAll(ns, "-", "_")
}

func (v View) callback(name string) string {
	return fmt.Sprintf("@post('%s/cb/%s')", v.BasePath, name)
}

func (v View) signal(parts ...string) string {
	return v.SigNS + "." + strings.Join(parts, ".")
}

// Tree renders a full display tree.
func Tree(tree *binder.DisplayTree, v View, f schema.Filter) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<div id="%s" class="table-binder" data-signals='%s'><h2>%s</h2>`,
			templ.EscapeString(tree.Root.ID),
			templ.EscapeString(initialSignals(v, f)),
			templ.EscapeString(tree.Title)); err != nil {
			return err
		}
		for _, child := range tree.Root.Children {
			if err := Node(child, v).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

// signalSeed is the initial signal subtree one mounted table owns in
// the browser.
type signalSeed struct {
	Filters       map[string]schema.Constraint `json:"filters"`
	Record        map[string]string            `json:"record"`
	Selected      map[string]string            `json:"selected"`
	ConfirmDelete bool                         `json:"confirm_delete"`
}

// initialSignals seeds the signal tree so inputs reflect the session's
// filter state on first paint.
func initialSignals(v View, f schema.Filter) string {
	seed := signalSeed{
		Filters:  make(map[string]schema.Constraint, len(v.Columns)),
		Record:   make(map[string]string, len(v.Columns)),
		Selected: make(map[string]string, len(v.PrimaryKey)),
	}
	for _, c := range v.Columns {
		seed.Filters[c.Name] = f[c.Name]
		seed.Record[c.Name] = ""
	}
	for _, name := range v.PrimaryKey {
		seed.Selected[name] = ""
	}

	raw, err := json.Marshal(map[string]signalSeed{v.SigNS: seed})
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// Node dispatches a display node to its renderer.
func Node(n *binder.Node, v View) templ.Component {
	if o, ok := v.Overrides[n.ID]; ok {
		n = o
	}
	switch n.Kind {
	case binder.NodeRegion:
		return region(n, v)
	case binder.NodeTextInput:
		return textInput(n, v)
	case binder.NodeNumberRange:
		return numberRange(n, v)
	case binder.NodeDateInput:
		return dateInput(n, v)
	case binder.NodeSelect:
		return selectInput(n, v)
	case binder.NodeGrid:
		return Grid(n, v)
	case binder.NodeButton:
		return button(n, v)
	case binder.NodeModal:
		return editModal(n, v)
	case binder.NodeConfirm:
		return confirmPrompt(n, v)
	case binder.NodeMessage:
		return Message(n)
	case binder.NodeLabel:
		return label(n)
	default:
		return templ.ComponentFunc(func(context.Context, io.Writer) error { return nil })
	}
}

func region(n *binder.Node, v View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div id="%s" class="region">`, templ.EscapeString(n.ID)); err != nil {
			return err
		}
		for _, child := range n.Children {
			if err := Node(child, v).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func label(n *binder.Node) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<span id="%s" class="label">%s</span>`,
			templ.EscapeString(n.ID), templ.EscapeString(n.Label))
		return err
	})
}

func textInput(n *binder.Node, v View) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<label id="%s" class="filter">%s`+
				`<input type="text" data-bind="%s" data-on-input__debounce.300ms="%s">`+
				`</label>`,
			templ.EscapeString(n.ID), templ.EscapeString(n.Label),
			v.signal("filters", n.Column, "eq"), v.callback("rows"))
		return err
	})
}

func numberRange(n *binder.Node, v View) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<label id="%s" class="filter">%s`+
				`<input type="number" placeholder="min" data-bind="%s" data-on-input__debounce.300ms="%s">`+
				`<input type="number" placeholder="max" data-bind="%s" data-on-input__debounce.300ms="%s">`+
				`</label>`,
			templ.EscapeString(n.ID), templ.EscapeString(n.Label),
			v.signal("filters", n.Column, "min"), v.callback("rows"),
			v.signal("filters", n.Column, "max"), v.callback("rows"))
		return err
	})
}

func dateInput(n *binder.Node, v View) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<label id="%s" class="filter">%s`+
				`<input type="date" data-bind="%s" data-on-change="%s">`+
				`</label>`,
			templ.EscapeString(n.ID), templ.EscapeString(n.Label),
			v.signal("filters", n.Column, "eq"), v.callback("rows"))
		return err
	})
}

func selectInput(n *binder.Node, v View) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<label id="%s" class="filter">%s<select data-bind="%s" data-on-change="%s">`+
				`<option value=""></option>`,
			templ.EscapeString(n.ID), templ.EscapeString(n.Label),
			v.signal("filters", n.Column, "eq"), v.callback("rows")); err != nil {
			return err
		}
		for _, opt := range n.Options {
			if _, err := fmt.Fprintf(w, `<option value="%s">%s</option>`,
				templ.EscapeString(opt), templ.EscapeString(opt)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</select></label>`)
		return err
	})
}

// Grid renders the row grid, or its error placeholder when the fetch
// behind it failed.
func Grid(n *binder.Node, v View) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div id="%s" class="grid"><table><thead><tr>`,
			templ.EscapeString(n.ID)); err != nil {
			return err
		}
		for _, name := range n.Header {
			if _, err := fmt.Fprintf(w, `<th>%s</th>`, templ.EscapeString(name)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</tr></thead><tbody>`); err != nil {
			return err
		}

		if n.Message != "" {
			if _, err := fmt.Fprintf(w,
				`<tr class="error-row"><td colspan="%d">%s</td></tr>`,
				len(n.Header), templ.EscapeString(n.Message)); err != nil {
				return err
			}
		}

		colIndex := make(map[string]int, len(n.Header))
		for i, name := range n.Header {
			colIndex[name] = i
		}

		for _, row := range n.Rows {
			if _, err := fmt.Fprintf(w, `<tr data-on-click="%s">`,
				templ.EscapeString(selectRowExpr(v, n.Header, row, colIndex))); err != nil {
				return err
			}
			for _, cell := range row {
				if _, err := fmt.Fprintf(w, `<td>%s</td>`, templ.EscapeString(cell)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</tr>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</tbody></table></div>`)
		return err
	})
}

// selectRowExpr builds the click expression that copies a row's
// primary key values into the selected signals.
func selectRowExpr(v View, header []string, row []string, colIndex map[string]int) string {
	var parts []string
	for _, name := range v.PrimaryKey {
		i, ok := colIndex[name]
		if !ok || i >= len(row) {
			continue
		}
		parts = append(parts, fmt.Sprintf("$%s = '%s'",
			v.signal("selected", name), strings.ReplaceAll(row[i], "'", "\\'")))
	}
	return strings.Join(parts, "; ")
}

func button(n *binder.Node, v View) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<button id="%s" type="button" data-on-click="%s">%s</button>`,
			templ.EscapeString(n.ID), v.callback(n.Callback), templ.EscapeString(n.Label))
		return err
	})
}

// confirmPrompt renders a destructive action behind a confirmation
// step: the trigger button only reveals the prompt, and the gated
// callback fires from the Confirm button inside it.
func confirmPrompt(n *binder.Node, v View) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		sig := "$" + v.signal("confirm_delete")
		_, err := fmt.Fprintf(w,
			`<div id="%s" class="confirm">`+
				`<button type="button" data-on-click="%s = true">%s</button>`+
				`<div class="confirm-prompt" data-show="%s">`+
				`<span>%s</span>`+
				`<button type="button" data-on-click="%s = false; %s">Confirm</button>`+
				`<button type="button" data-on-click="%s = false">Cancel</button>`+
				`</div></div>`,
			templ.EscapeString(n.ID),
			sig, templ.EscapeString(n.Label),
			sig,
			templ.EscapeString(n.Message),
			sig, v.callback(n.Callback),
			sig)
		return err
	})
}

// editModal renders the record form: one field per column, dropdowns
// where the schema offers a closed option set.
func editModal(n *binder.Node, v View) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div id="%s" class="edit-form"><h3>%s</h3>`,
			templ.EscapeString(n.ID), templ.EscapeString(n.Label)); err != nil {
			return err
		}
		for _, c := range v.Columns {
			if err := recordField(w, c, v); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func recordField(w io.Writer, c schema.Column, v View) error {
	required := ""
	if c.Required() {
		required = ` <em>*</em>`
	}

	if opts, ok := v.Dropdowns[c.Name]; ok {
		if _, err := fmt.Fprintf(w,
			`<label class="field">%s%s<select data-bind="%s"><option value=""></option>`,
			templ.EscapeString(c.Name), required, v.signal("record", c.Name)); err != nil {
			return err
		}
		for _, opt := range opts {
			if _, err := fmt.Fprintf(w, `<option value="%s">%s</option>`,
				templ.EscapeString(opt), templ.EscapeString(opt)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</select></label>`)
		return err
	}

	inputType := "text"
	switch c.Kind {
	case schema.KindNumber:
		inputType = "number"
	case schema.KindDate:
		inputType = "date"
	}
	_, err := fmt.Fprintf(w,
		`<label class="field">%s%s<input type="%s" data-bind="%s" placeholder="%s"></label>`,
		templ.EscapeString(c.Name), required, inputType,
		v.signal("record", c.Name), templ.EscapeString(c.Type))
	return err
}

// Message renders the status message area.
func Message(n *binder.Node) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div id="%s" class="message">%s</div>`,
			templ.EscapeString(n.ID), templ.EscapeString(n.Message))
		return err
	})
}
