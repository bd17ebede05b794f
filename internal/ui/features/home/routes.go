package home

import (
	"github.com/go-chi/chi/v5"

	"github.com/vathes-labs/pipedash/internal/ui/features/tables"
	"github.com/vathes-labs/pipedash/internal/ui/notifier"
)

// SetupRoutes configures routes for the home feature.
func SetupRoutes(
	router chi.Router,
	tablesHandlers *tables.Handlers,
	notify *notifier.Notifier,
	isDev bool,
) error {
	handlers := NewHandlers(tablesHandlers, notify, isDev)

	router.Get("/", handlers.HomePage)
	router.Get("/updates", handlers.HomeUpdates)

	return nil
}
