package binder

import (
	"context"

	"github.com/vathes-labs/pipedash/internal/schema"
)

// Input carries the interaction state a callback runs against: the
// session's filter state, the edit form record, and the selected row's
// primary key values.
type Input struct {
	Filters  schema.Filter
	Record   schema.Record
	Selected schema.Record
}

// Handler computes the replacement node for a callback's target. The
// returned node always carries the target's ID so the host can patch
// it in place.
type Handler func(ctx context.Context, in Input) (*Node, error)

// CallbackBinding wires interaction events to a handler. Triggers are
// the IDs of nodes whose changes fire the callback; Target is the ID of
// the node the handler's output replaces.
type CallbackBinding struct {
	Name     string
	Triggers []string
	Target   string
	Handler  Handler
}

// HostApp is the surface a binder attaches to. The host owns routing,
// sessions, and rendering; the binder hands it a tree and bindings.
type HostApp interface {
	// Register mounts a display tree under the host's layout.
	Register(tree *DisplayTree) error
	// BindCallback attaches a callback binding for a registered tree.
	BindCallback(tree *DisplayTree, binding CallbackBinding) error
}
