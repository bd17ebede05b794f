// Package home provides the landing page listing the mounted table
// dashboards.
package home

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	commonComponents "github.com/vathes-labs/pipedash/internal/ui/features/common/components"
	"github.com/vathes-labs/pipedash/internal/ui/features/tables"
	"github.com/vathes-labs/pipedash/internal/ui/notifier"
)

// Handlers provides HTTP handlers for the home feature.
type Handlers struct {
	tables   *tables.Handlers
	notifier *notifier.Notifier
	isDev    bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(tablesHandlers *tables.Handlers, notify *notifier.Notifier, isDev bool) *Handlers {
	return &Handlers{
		tables:   tablesHandlers,
		notifier: notify,
		isDev:    isDev,
	}
}

// HomePage renders the landing page with the mounted dashboards.
func (h *Handlers) HomePage(w http.ResponseWriter, r *http.Request) {
	page := commonComponents.Page("Tables", h.isDev, nil, h.mountList())
	if err := page.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HomeUpdates re-sends the mount list when the configuration reloads.
func (h *Handlers) HomeUpdates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := sse.PatchElementTempl(h.mountList()); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// mountList renders the dashboard index.
func (h *Handlers) mountList() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := io.WriteString(w,
			`<div id="mount-list" class="mount-list"><h1>Tables</h1><ul>`); err != nil {
			return err
		}

		mounts := h.tables.Mounts()
		names := make([]string, 0, len(mounts))
		for name := range mounts {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			m := mounts[name]
			if _, err := fmt.Fprintf(w,
				`<li><a href="%s">%s</a> <span class="table-name">%s</span></li>`,
				templ.EscapeString(m.BasePath()),
				templ.EscapeString(m.Binder.Options().Title),
				templ.EscapeString(m.Binder.Table().Name())); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul></div>`)
		return err
	})
}
