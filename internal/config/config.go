// Package config loads uniterm settings from a config file, UNITERM_*
// environment variables and built-in defaults, in increasing order of
// precedence below command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. UNITERM_DATABASE_PATH.
const EnvPrefix = "UNITERM"

// DefaultDatabasePath is used when nothing else names a database.
const DefaultDatabasePath = "uniterm.sqlite3"

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Output   OutputConfig   `mapstructure:"output"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
	// LegacySchema allows records without alternate terms.
	LegacySchema bool `mapstructure:"legacy_schema"`
}

// OutputConfig holds presentation settings.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	// RenderOperator draws the stored operator instead of the canonical ";".
	RenderOperator bool `mapstructure:"render_operator"`
}

// Load reads configuration. If path is empty, config.{toml,yaml,json} is
// looked up in the working directory and then $HOME/.config/uniterm; a
// missing file is not an error. An explicit path must exist.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("database.legacy_schema", false)
	v.SetDefault("output.format", "text")
	v.SetDefault("output.render_operator", false)

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "uniterm"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
