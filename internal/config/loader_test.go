package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vathes-labs/pipedash/internal/adapter"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), ConfigFileName), false, nil)
	require.NoError(t, err)

	assert.Equal(t, 8610, cfg.Server.Port)
	assert.True(t, cfg.Server.Watch)
	assert.Equal(t, "sqlite", cfg.Target.Type)
	assert.Empty(t, cfg.Tables)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  watch: false
target:
  type: mysql
  host: db.example.org
  port: 3306
  database: pipeline
  username: dj
tables:
  - table: subject
    title: Subjects
    editable: true
    exclude: [notes]
  - table: session
    name: sessions
    limit: 500
`)

	cfg, err := Load(path, true, nil)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.False(t, cfg.Server.Watch)
	assert.Equal(t, "mysql", cfg.Target.Type)
	assert.Equal(t, "db.example.org", cfg.Target.Host)

	require.Len(t, cfg.Tables, 2)
	assert.Equal(t, "subject", cfg.Tables[0].MountName())
	assert.True(t, cfg.Tables[0].Editable)
	assert.Equal(t, []string{"notes"}, cfg.Tables[0].Exclude)
	assert.Equal(t, "sessions", cfg.Tables[1].MountName())
	assert.Equal(t, uint64(500), cfg.Tables[1].Limit)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
target:
  type: mysql
`)
	t.Setenv("PIPEDASH_SERVER_PORT", "9100")
	t.Setenv("PIPEDASH_TARGET_PASSWORD", "s3cret")

	cfg, err := Load(path, true, nil)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Target.Password)
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
`)
	t.Setenv("PIPEDASH_SERVER_PORT", "9100")

	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.Int("port", 0, "")
	flags.Bool("watch", true, "")
	require.NoError(t, flags.Parse([]string{"--port=9200"}))

	cfg, err := Load(path, true, flags)
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.Server.Port)
	// Unchanged flags do not clobber lower layers
	assert.True(t, cfg.Server.Watch)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), true, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Target: adapter.Config{Type: "sqlite"},
			Tables: []TableConfig{{Table: "subject"}},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("missing target type", func(t *testing.T) {
		cfg := base()
		cfg.Target.Type = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown target type", func(t *testing.T) {
		cfg := base()
		cfg.Target.Type = "oracle"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "oracle")
	})

	t.Run("table without name", func(t *testing.T) {
		cfg := base()
		cfg.Tables = append(cfg.Tables, TableConfig{})
		assert.Error(t, cfg.Validate())
	})

	t.Run("duplicate mounts", func(t *testing.T) {
		cfg := base()
		cfg.Tables = append(cfg.Tables, TableConfig{Table: "subject"})
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.port", envKey("PIPEDASH_SERVER_PORT"))
	assert.Equal(t, "server.session_secret", envKey("PIPEDASH_SERVER_SESSION_SECRET"))
	assert.Equal(t, "target.password", envKey("PIPEDASH_TARGET_PASSWORD"))
}
