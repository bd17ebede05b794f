package binder

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vathes-labs/pipedash/internal/schema"
)

// Options configures a table binder.
type Options struct {
	// Title overrides the table name as the display caption.
	Title string
	// FilterColumns restricts which columns get filter widgets. Empty
	// means every column.
	FilterColumns []string
	// Exclude hides columns from the grid and filter region entirely.
	Exclude []string
	// Editable enables the add/update/delete actions and their modals.
	Editable bool
	// Limit caps fetched rows. Zero means unlimited.
	Limit uint64
}

// Binder binds one table handle to a host application. Each instance
// owns a unique namespace so several binders for the same table can be
// mounted side by side without their element IDs or callbacks
// colliding.
type Binder struct {
	table *schema.Table
	opts  Options
	ns    string
}

// New creates a binder for the table. The namespace is the table name
// plus a short random suffix.
func New(table *schema.Table, opts Options) *Binder {
	ns := fmt.Sprintf("%s-%s", table.Name(), uuid.NewString()[:8])
	if opts.Title == "" {
		opts.Title = table.Name()
	}
	return &Binder{table: table, opts: opts, ns: ns}
}

// Namespace returns the binder's unique element-ID prefix.
func (b *Binder) Namespace() string {
	return b.ns
}

// Table returns the bound table handle.
func (b *Binder) Table() *schema.Table {
	return b.table
}

// Options returns the binder's configuration.
func (b *Binder) Options() Options {
	return b.opts
}

// visibleColumns returns the columns shown in the grid, in schema
// order, minus exclusions.
func (b *Binder) visibleColumns() []schema.Column {
	var cols []schema.Column
	for _, c := range b.table.Columns() {
		if b.excluded(c.Name) {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

func (b *Binder) excluded(name string) bool {
	for _, e := range b.opts.Exclude {
		if e == name {
			return true
		}
	}
	return false
}

// filterable reports whether a column gets a filter widget.
func (b *Binder) filterable(name string) bool {
	if b.excluded(name) {
		return false
	}
	if len(b.opts.FilterColumns) == 0 {
		return true
	}
	for _, f := range b.opts.FilterColumns {
		if f == name {
			return true
		}
	}
	return false
}

// Header returns the grid header: visible column names in schema order.
func (b *Binder) Header() []string {
	var names []string
	for _, c := range b.visibleColumns() {
		names = append(names, c.Name)
	}
	return names
}

// Build constructs the display tree, performs the initial unfiltered
// fetch, and registers the callbacks with the host. A schema with no
// columns or a host registration failure aborts the build; a failed
// initial fetch does not, it renders as the grid's error placeholder.
func (b *Binder) Build(ctx context.Context, app HostApp) (*DisplayTree, error) {
	if len(b.table.Columns()) == 0 {
		return nil, fmt.Errorf("table %s exposes no columns", b.table.Name())
	}

	tree := &DisplayTree{Namespace: b.ns, Title: b.opts.Title}
	tree.Root = &Node{
		ID:   tree.ID("root"),
		Kind: NodeRegion,
		Children: []*Node{
			b.buildFilterRegion(ctx, tree),
			b.gridNode(ctx, tree, nil),
			b.buildActionRegion(tree),
			{ID: tree.ID("message"), Kind: NodeMessage},
		},
	}

	if err := app.Register(tree); err != nil {
		return nil, fmt.Errorf("host registration failed: %w", err)
	}

	for _, binding := range b.bindings(tree) {
		if err := app.BindCallback(tree, binding); err != nil {
			return nil, fmt.Errorf("callback binding %s failed: %w", binding.Name, err)
		}
	}
	return tree, nil
}

// buildFilterRegion emits one type-appropriate input widget per
// filterable column.
func (b *Binder) buildFilterRegion(ctx context.Context, tree *DisplayTree) *Node {
	region := &Node{ID: tree.ID("filters"), Kind: NodeRegion}

	for _, c := range b.visibleColumns() {
		if !b.filterable(c.Name) {
			continue
		}
		region.Children = append(region.Children, b.filterWidget(ctx, tree, c))
	}
	return region
}

// filterWidget dispatches a column to its widget over the closed kind
// set: text for strings, min/max range for numbers, date picker for
// dates and timestamps, dropdown for enums.
func (b *Binder) filterWidget(ctx context.Context, tree *DisplayTree, c schema.Column) *Node {
	id := tree.ID("filter-" + c.Name)

	switch c.Kind {
	case schema.KindNumber:
		return &Node{ID: id, Kind: NodeNumberRange, Label: c.Name, Column: c.Name}
	case schema.KindDate, schema.KindTime:
		return &Node{ID: id, Kind: NodeDateInput, Label: c.Name, Column: c.Name}
	case schema.KindEnum:
		return &Node{ID: id, Kind: NodeSelect, Label: c.Name, Column: c.Name, Options: c.EnumValues}
	default:
		opts, err := b.table.Options(ctx, c.Name)
		if err == nil && len(opts) > 0 {
			return &Node{ID: id, Kind: NodeSelect, Label: c.Name, Column: c.Name, Options: opts}
		}
		return &Node{ID: id, Kind: NodeTextInput, Label: c.Name, Column: c.Name}
	}
}

// buildActionRegion emits the add/update/delete buttons and their
// modals when editing is enabled.
func (b *Binder) buildActionRegion(tree *DisplayTree) *Node {
	region := &Node{ID: tree.ID("actions"), Kind: NodeRegion}
	if !b.opts.Editable {
		return region
	}

	region.Children = append(region.Children,
		&Node{ID: tree.ID("add-button"), Kind: NodeButton, Label: "Add", Callback: "add"},
		&Node{ID: tree.ID("update-button"), Kind: NodeButton, Label: "Update", Callback: "update"},
		&Node{
			ID:       tree.ID("confirm-delete"),
			Kind:     NodeConfirm,
			Label:    "Delete",
			Message:  "Delete the selected record?",
			Callback: "delete",
		},
		&Node{ID: tree.ID("edit-modal"), Kind: NodeModal, Label: b.opts.Title},
	)
	return region
}

// gridNode fetches rows under the filter and wraps them in a grid
// node. A fetch failure yields the same node ID carrying an inert
// error row instead of data; it never propagates.
func (b *Binder) gridNode(ctx context.Context, tree *DisplayTree, f schema.Filter) *Node {
	node := &Node{
		ID:     tree.ID("grid"),
		Kind:   NodeGrid,
		Header: b.Header(),
	}

	rows, err := b.table.Fetch(ctx, f, b.opts.Limit)
	if err != nil {
		node.Message = fmt.Sprintf("failed to load %s: %v", b.table.Name(), err)
		return node
	}

	visible := b.visibleColumns()
	all := b.table.ColumnNames()
	for _, row := range rows {
		out := make([]string, 0, len(visible))
		for i, name := range all {
			if !b.excluded(name) {
				out = append(out, row[i])
			}
		}
		node.Rows = append(node.Rows, out)
	}
	return node
}

// bindings returns the callback set for the tree: the filter-change
// refresh plus, when editable, the record mutations. Every handler
// returns a replacement node and never an error that could escape the
// host's event dispatch.
func (b *Binder) bindings(tree *DisplayTree) []CallbackBinding {
	var triggers []string
	for _, c := range b.visibleColumns() {
		if b.filterable(c.Name) {
			triggers = append(triggers, tree.ID("filter-"+c.Name))
		}
	}

	bindings := []CallbackBinding{{
		Name:     "rows",
		Triggers: triggers,
		Target:   tree.ID("grid"),
		Handler: func(ctx context.Context, in Input) (*Node, error) {
			return b.gridNode(ctx, tree, in.Filters), nil
		},
	}}

	if !b.opts.Editable {
		return bindings
	}

	bindings = append(bindings,
		CallbackBinding{
			Name:     "add",
			Triggers: []string{tree.ID("add-button")},
			Target:   tree.ID("message"),
			Handler: func(ctx context.Context, in Input) (*Node, error) {
				return b.messageNode(tree, b.addRecord(ctx, in)), nil
			},
		},
		CallbackBinding{
			Name:     "update",
			Triggers: []string{tree.ID("update-button")},
			Target:   tree.ID("message"),
			Handler: func(ctx context.Context, in Input) (*Node, error) {
				return b.messageNode(tree, b.updateRecord(ctx, in)), nil
			},
		},
		CallbackBinding{
			Name:     "delete",
			Triggers: []string{tree.ID("confirm-delete")},
			Target:   tree.ID("message"),
			Handler: func(ctx context.Context, in Input) (*Node, error) {
				return b.messageNode(tree, b.deleteRecord(ctx, in)), nil
			},
		},
	)
	return bindings
}

// messageNode wraps a mutation outcome in the message node.
func (b *Binder) messageNode(tree *DisplayTree, msg string) *Node {
	return &Node{ID: tree.ID("message"), Kind: NodeMessage, Message: msg}
}

func (b *Binder) addRecord(ctx context.Context, in Input) string {
	if err := b.table.Insert(ctx, in.Record); err != nil {
		return fmt.Sprintf("insert failed: %v", err)
	}
	return "record added"
}

func (b *Binder) updateRecord(ctx context.Context, in Input) string {
	changes, err := b.table.Update(ctx, in.Selected, in.Record)
	if err != nil {
		return fmt.Sprintf("update failed: %v", err)
	}
	if len(changes) == 0 {
		return "no fields changed"
	}

	var parts []string
	for _, ch := range changes {
		if ch.Err != nil {
			parts = append(parts, fmt.Sprintf("%s: %v", ch.Field, ch.Err))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s -> %s", ch.Field, ch.Old, ch.New))
	}
	return "updated " + strings.Join(parts, "; ")
}

func (b *Binder) deleteRecord(ctx context.Context, in Input) string {
	if err := b.table.Delete(ctx, in.Selected); err != nil {
		return fmt.Sprintf("delete failed: %v", err)
	}
	return "record deleted"
}
