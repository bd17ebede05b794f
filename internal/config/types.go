// Package config loads pipedash configuration from defaults, the
// pipedash.yaml project file, PIPEDASH_ environment variables, and
// command-line flags, in that order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/vathes-labs/pipedash/internal/adapter"
)

// ServerConfig holds the dashboard server settings.
type ServerConfig struct {
	Port          int    `koanf:"port"`
	SessionSecret string `koanf:"session_secret"`
	// Watch reloads mounted tables when the config file changes.
	Watch bool `koanf:"watch"`
}

// TableConfig describes one dashboard mount: which table it shows and
// how.
type TableConfig struct {
	// Name is the mount name used in URLs. Defaults to Table.
	Name string `koanf:"name"`
	// Table is the database table to bind.
	Table string `koanf:"table"`
	// Title overrides the page caption.
	Title string `koanf:"title"`
	// Filters restricts which columns get filter widgets.
	Filters []string `koanf:"filters"`
	// Exclude hides columns entirely.
	Exclude []string `koanf:"exclude"`
	// Editable enables add/update/delete actions.
	Editable bool `koanf:"editable"`
	// Limit caps fetched rows per grid render.
	Limit uint64 `koanf:"limit"`
}

// MountName returns the URL mount name for this table.
func (t TableConfig) MountName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Table
}

// Config is the full pipedash configuration.
type Config struct {
	Server ServerConfig   `koanf:"server"`
	Target adapter.Config `koanf:"target"`
	Tables []TableConfig  `koanf:"tables"`
}

// Validate checks the configuration for mistakes a user can fix.
func (c *Config) Validate() error {
	if c.Target.Type == "" {
		return fmt.Errorf("target type is required")
	}
	if !adapter.IsRegistered(strings.ToLower(c.Target.Type)) {
		return fmt.Errorf("unknown target type %q (available: %v)",
			c.Target.Type, adapter.List())
	}

	seen := make(map[string]bool, len(c.Tables))
	for _, t := range c.Tables {
		if t.Table == "" {
			return fmt.Errorf("every tables entry needs a table name")
		}
		mount := t.MountName()
		if seen[mount] {
			return fmt.Errorf("duplicate table mount %q", mount)
		}
		seen[mount] = true
	}
	return nil
}
