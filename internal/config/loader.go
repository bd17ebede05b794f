package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "pipedash.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "pipedash.yml"

// EnvPrefix is the prefix for environment variable overrides, e.g.
// PIPEDASH_SERVER_PORT or PIPEDASH_TARGET_PASSWORD.
const EnvPrefix = "PIPEDASH_"

// defaults are the base layer every load starts from.
var defaults = map[string]any{
	"server.port":           8610,
	"server.session_secret": "pipedash-dev-secret",
	"server.watch":          true,
	"target.type":           "sqlite",
}

// Load builds the configuration by layering, lowest precedence first:
// built-in defaults, the config file at path (skipped when it does not
// exist and the path was not explicitly requested), PIPEDASH_
// environment variables, and finally command-line flags. flags may be
// nil.
func Load(path string, explicit bool, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s not found", path)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey(flags)), nil); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// serveFlags maps command-line flag names to config keys. Flags not
// listed here do not override configuration.
var serveFlags = map[string]string{
	"port":   "server.port",
	"watch":  "server.watch",
	"secret": "server.session_secret",
}

// flagKey translates a changed flag into its config key and value.
func flagKey(flags *pflag.FlagSet) func(f *pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		key, ok := serveFlags[f.Name]
		if !ok || !f.Changed {
			return "", nil
		}
		return key, posflag.FlagVal(flags, f)
	}
}

// envKey maps PIPEDASH_SERVER_PORT to server.port. Only the first
// underscore becomes a separator so server.session_secret style keys
// survive.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

// FindConfigFile looks for pipedash.yaml or pipedash.yml in the given
// directory. Returns empty string if not found.
func FindConfigFile(dir string) string {
	yamlPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(yamlPath); err == nil {
		return yamlPath
	}

	ymlPath := filepath.Join(dir, ConfigFileNameAlt)
	if _, err := os.Stat(ymlPath); err == nil {
		return ymlPath
	}

	return ""
}
