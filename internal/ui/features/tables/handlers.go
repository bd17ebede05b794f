package tables

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/vathes-labs/pipedash/internal/binder"
	"github.com/vathes-labs/pipedash/internal/schema"
	commonComponents "github.com/vathes-labs/pipedash/internal/ui/features/common/components"
	"github.com/vathes-labs/pipedash/internal/ui/features/tables/components"
	"github.com/vathes-labs/pipedash/internal/ui/notifier"
)

const sessionName = "pipedash"

// Handlers provides HTTP handlers for the table dashboards. The mount
// set can be swapped at runtime when the configuration reloads.
type Handlers struct {
	mu           sync.RWMutex
	mounts       map[string]*Mount
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	logger       *slog.Logger
	isDev        bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(mounts []*Mount, sessionStore sessions.Store, notify *notifier.Notifier, logger *slog.Logger, isDev bool) *Handlers {
	h := &Handlers{
		sessionStore: sessionStore,
		notifier:     notify,
		logger:       logger,
		isDev:        isDev,
	}
	h.SetMounts(mounts)
	return h
}

// SetMounts replaces the mount set, e.g. after a config reload.
func (h *Handlers) SetMounts(mounts []*Mount) {
	byName := make(map[string]*Mount, len(mounts))
	for _, m := range mounts {
		byName[m.Name] = m
	}
	h.mu.Lock()
	h.mounts = byName
	h.mu.Unlock()
}

// Mounts returns the mounted dashboards keyed by name.
func (h *Handlers) Mounts() map[string]*Mount {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.mounts
}

func (h *Handlers) mount(r *http.Request) *Mount {
	return h.Mounts()[chi.URLParam(r, "mount")]
}

// navLinks builds the top navigation from the mounted tables.
func (h *Handlers) navLinks() []commonComponents.NavLink {
	mounts := h.Mounts()
	names := make([]string, 0, len(mounts))
	for name := range mounts {
		names = append(names, name)
	}
	sort.Strings(names)

	var links []commonComponents.NavLink
	for _, name := range names {
		m := mounts[name]
		links = append(links, commonComponents.NavLink{Href: m.BasePath(), Label: m.Binder.Options().Title})
	}
	return links
}

// TablePage renders a mount's full page. The grid reflects the
// session's saved filter state, not the mount-time fetch.
func (h *Handlers) TablePage(w http.ResponseWriter, r *http.Request) {
	m := h.mount(r)
	if m == nil {
		http.NotFound(w, r)
		return
	}

	f := h.sessionFilter(r, m)
	grid := h.freshGrid(r.Context(), m, f)

	view := m.View
	view.Overrides = map[string]*binder.Node{grid.ID: grid}

	page := commonComponents.Page(
		m.Binder.Options().Title,
		h.isDev,
		h.navLinks(),
		components.Tree(m.Tree, view, f),
	)
	if err := page.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CallbackSSE dispatches one of a mount's registered callbacks: it
// reads the browser's signals, runs the handler, and patches the
// target node. Mutation callbacks additionally refresh the grid and
// notify other sessions.
func (h *Handlers) CallbackSSE(w http.ResponseWriter, r *http.Request) {
	m := h.mount(r)
	if m == nil {
		http.NotFound(w, r)
		return
	}

	binding, ok := m.Bindings[chi.URLParam(r, "name")]
	if !ok {
		http.NotFound(w, r)
		return
	}

	// Read signals before creating the SSE stream; it consumes the body.
	var signals map[string]tableSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(err)
		return
	}
	in := signals[m.View.SigNS].input()

	// Save before the SSE stream starts; its headers close the cookie
	// window.
	if binding.Name == "rows" {
		h.saveSessionFilter(w, r, m, in.Filters)
	}

	sse := datastar.NewSSE(w, r)

	node, err := binding.Handler(r.Context(), in)
	if err != nil {
		h.logger.Error("callback failed", "mount", m.Name, "callback", binding.Name, "error", err)
		_ = sse.ConsoleError(err)
		return
	}

	if err := sse.PatchElementTempl(components.Node(node, m.View)); err != nil {
		_ = sse.ConsoleError(err)
		return
	}

	if binding.Name != "rows" {
		// A mutation changed the rows under everyone's feet: refresh
		// this session's grid and ping the others.
		grid := h.freshGrid(r.Context(), m, in.Filters)
		if err := sse.PatchElementTempl(components.Grid(grid, m.View)); err != nil {
			_ = sse.ConsoleError(err)
		}
		h.notifier.Broadcast()
	}
}

// UpdatesSSE is the long-lived stream that re-sends a mount's grid
// whenever another session mutates the table.
func (h *Handlers) UpdatesSSE(w http.ResponseWriter, r *http.Request) {
	m := h.mount(r)
	if m == nil {
		http.NotFound(w, r)
		return
	}

	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			f := h.sessionFilter(r, m)
			grid := h.freshGrid(ctx, m, f)
			if err := sse.PatchElementTempl(components.Grid(grid, m.View)); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// freshGrid runs the mount's rows callback to build a grid node for
// the given filter state.
func (h *Handlers) freshGrid(ctx context.Context, m *Mount, f schema.Filter) *binder.Node {
	node, _ := m.Bindings["rows"].Handler(ctx, binder.Input{Filters: f})
	return node
}

// sessionFilter loads the filter state this session last applied to
// the mount.
func (h *Handlers) sessionFilter(r *http.Request, m *Mount) schema.Filter {
	session, err := h.sessionStore.Get(r, sessionName)
	if err != nil {
		return nil
	}

	raw, ok := session.Values["filters:"+m.Name].(string)
	if !ok || raw == "" {
		return nil
	}

	var f schema.Filter
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return nil
	}
	return f
}

// saveSessionFilter persists the filter state in the session cookie so
// page reloads keep the grid consistent with the inputs.
func (h *Handlers) saveSessionFilter(w http.ResponseWriter, r *http.Request, m *Mount, f schema.Filter) {
	session, err := h.sessionStore.Get(r, sessionName)
	if err != nil {
		return
	}

	raw, err := json.Marshal(f)
	if err != nil {
		return
	}
	session.Values["filters:"+m.Name] = string(raw)

	if err := session.Save(r, w); err != nil {
		h.logger.Debug("failed to save session", "error", err)
	}
}
