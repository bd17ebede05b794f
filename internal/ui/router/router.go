// Package router sets up HTTP routes for the dashboard server.
package router

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	homeFeature "github.com/vathes-labs/pipedash/internal/ui/features/home"
	tablesFeature "github.com/vathes-labs/pipedash/internal/ui/features/tables"
	"github.com/vathes-labs/pipedash/internal/ui/notifier"
	"github.com/vathes-labs/pipedash/internal/ui/resources"
)

// SetupRoutes configures all routes for the dashboard server and
// returns the tables handlers so the caller can swap mounts on config
// reloads.
func SetupRoutes(
	router chi.Router,
	mounts []*tablesFeature.Mount,
	sessionStore *sessions.CookieStore,
	notify *notifier.Notifier,
	logger *slog.Logger,
	isDev bool,
) (*tablesFeature.Handlers, error) {
	// Hot reload endpoint for dev mode
	if isDev {
		setupReload(router)
	}

	// Static assets
	router.Handle("/static/*", resources.Handler())

	// Feature routes
	tablesHandlers, err := tablesFeature.SetupRoutes(router, mounts, sessionStore, notify, logger, isDev)
	if err != nil {
		return nil, err
	}

	if err := homeFeature.SetupRoutes(router, tablesHandlers, notify, isDev); err != nil {
		return nil, err
	}
	return tablesHandlers, nil
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
