// Package ui provides the web dashboard server for pipedash.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/vathes-labs/pipedash/internal/adapter"
	"github.com/vathes-labs/pipedash/internal/config"
	"github.com/vathes-labs/pipedash/internal/schema"
	tablesFeature "github.com/vathes-labs/pipedash/internal/ui/features/tables"
	"github.com/vathes-labs/pipedash/internal/ui/notifier"
	"github.com/vathes-labs/pipedash/internal/ui/router"
)

// Server is the dashboard server: it binds the configured tables and
// serves their pages, callbacks, and update streams.
type Server struct {
	adapter      adapter.Adapter
	cfg          *config.Config
	configPath   string
	sessionStore *sessions.CookieStore
	logger       *slog.Logger
	notifier     *notifier.Notifier
	tables       *tablesFeature.Handlers
}

// Config holds configuration for the dashboard server.
type Config struct {
	Adapter    adapter.Adapter
	Cfg        *config.Config
	ConfigPath string
	Logger     *slog.Logger
}

// NewServer creates a new dashboard server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.Cfg.Server.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		adapter:      cfg.Adapter,
		cfg:          cfg.Cfg,
		configPath:   cfg.ConfigPath,
		sessionStore: sessionStore,
		logger:       cfg.Logger,
		notifier:     notifier.New(),
	}
}

// Serve binds the configured tables, starts the HTTP server, and
// blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	mounts, err := s.buildMounts(ctx, s.cfg.Tables)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	s.logger.Info("starting dashboard server",
		"addr", fmt.Sprintf("http://localhost:%d", s.cfg.Server.Port),
		"tables", len(mounts))

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	tablesHandlers, err := router.SetupRoutes(r, mounts, s.sessionStore, s.notifier, s.logger, s.IsDev())
	if err != nil {
		return fmt.Errorf("failed to setup routes: %w", err)
	}
	s.tables = tablesHandlers

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start config watcher if enabled
	if s.cfg.Server.Watch && s.configPath != "" {
		eg.Go(func() error {
			return s.watchConfig(egctx)
		})
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down dashboard server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// IsDev returns true if running in development mode.
func (s *Server) IsDev() bool {
	return true
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// buildMounts binds every configured table.
func (s *Server) buildMounts(ctx context.Context, tableCfgs []config.TableConfig) ([]*tablesFeature.Mount, error) {
	var mounts []*tablesFeature.Mount
	for _, tc := range tableCfgs {
		table, err := schema.NewTable(ctx, s.adapter, tc.Table)
		if err != nil {
			return nil, err
		}
		m, err := tablesFeature.NewMount(ctx, table, tc)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("mounted table", "mount", m.Name, "table", tc.Table)
		mounts = append(mounts, m)
	}
	return mounts, nil
}

// watchConfig watches the config file and remounts tables on change.
func (s *Server) watchConfig(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(s.configPath); err != nil {
		s.logger.Error("failed to watch config file", "path", s.configPath, "error", err)
		// Don't fail - continue without watching
		<-ctx.Done()
		return nil
	}

	// Debounce timer
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("config changed, remounting tables", "file", event.Name)
				s.remount(ctx)
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// remount reloads the config file, rebinds the tables, and pings all
// SSE clients.
func (s *Server) remount(ctx context.Context) {
	cfg, err := config.Load(s.configPath, true, nil)
	if err != nil {
		s.logger.Error("config reload failed", "error", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		s.logger.Error("config reload failed", "error", err)
		return
	}

	mounts, err := s.buildMounts(ctx, cfg.Tables)
	if err != nil {
		s.logger.Error("remount failed", "error", err)
		return
	}

	s.cfg.Tables = cfg.Tables
	s.tables.SetMounts(mounts)
	s.notifier.Broadcast()
}
