package tables

import (
	"context"
	"fmt"

	"github.com/vathes-labs/pipedash/internal/binder"
	"github.com/vathes-labs/pipedash/internal/config"
	"github.com/vathes-labs/pipedash/internal/schema"
	"github.com/vathes-labs/pipedash/internal/ui/features/tables/components"
)

// mountHost implements binder.HostApp by capturing what the binder
// registers into a Mount.
type mountHost struct {
	mount *Mount
}

func (h *mountHost) Register(tree *binder.DisplayTree) error {
	if h.mount.Tree != nil {
		return fmt.Errorf("mount %s already has a tree", h.mount.Name)
	}
	h.mount.Tree = tree
	return nil
}

func (h *mountHost) BindCallback(_ *binder.DisplayTree, b binder.CallbackBinding) error {
	if _, exists := h.mount.Bindings[b.Name]; exists {
		return fmt.Errorf("duplicate callback %s on mount %s", b.Name, h.mount.Name)
	}
	h.mount.Bindings[b.Name] = b
	return nil
}

// NewMount binds one configured table and captures its tree and
// callbacks.
func NewMount(ctx context.Context, table *schema.Table, cfg config.TableConfig) (*Mount, error) {
	b := binder.New(table, binder.Options{
		Title:         cfg.Title,
		FilterColumns: cfg.Filters,
		Exclude:       cfg.Exclude,
		Editable:      cfg.Editable,
		Limit:         cfg.Limit,
	})

	m := &Mount{
		Name:     cfg.MountName(),
		Binder:   b,
		Bindings: make(map[string]binder.CallbackBinding),
	}

	tree, err := b.Build(ctx, &mountHost{mount: m})
	if err != nil {
		return nil, fmt.Errorf("failed to mount %s: %w", m.Name, err)
	}

	dropdowns := make(map[string][]string)
	for _, name := range table.DropdownColumns() {
		opts, err := table.Options(ctx, name)
		if err != nil {
			// Options come from a parent fetch; treat failure like an
			// empty list rather than refusing the mount.
			continue
		}
		dropdowns[name] = opts
	}

	m.View = components.View{
		SigNS:      components.SignalNamespace(tree.Namespace),
		BasePath:   m.BasePath(),
		Columns:    table.Columns(),
		Dropdowns:  dropdowns,
		PrimaryKey: table.PrimaryKey(),
	}
	return m, nil
}
