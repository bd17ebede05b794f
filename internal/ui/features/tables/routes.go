package tables

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/vathes-labs/pipedash/internal/ui/notifier"
)

// SetupRoutes registers the table dashboard routes.
func SetupRoutes(
	router chi.Router,
	mounts []*Mount,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	logger *slog.Logger,
	isDev bool,
) (*Handlers, error) {
	handlers := NewHandlers(mounts, sessionStore, notify, logger, isDev)

	router.Route("/t/{mount}", func(r chi.Router) {
		r.Get("/", handlers.TablePage)
		r.Post("/cb/{name}", handlers.CallbackSSE)
		r.Get("/updates", handlers.UpdatesSSE)
	})

	return handlers, nil
}
