// Package config loads CLI settings from defaults, an optional TOML file
// and TABLEWRAP_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvConfigPath names an explicit config file.
const EnvConfigPath = "TABLEWRAP_CONFIG"

// Config holds application configuration.
type Config struct {
	Output OutputConfig `mapstructure:"output" toml:"output"`
	Import ImportConfig `mapstructure:"import" toml:"import"`
	Log    LogConfig    `mapstructure:"log" toml:"log"`
}

// OutputConfig controls how elements are printed.
type OutputConfig struct {
	Format string `mapstructure:"format" toml:"format"` // json, markdown, csv or html
	Indent bool   `mapstructure:"indent" toml:"indent"` // pretty-print JSON
}

// ImportConfig controls the document importers.
type ImportConfig struct {
	Strict bool `mapstructure:"strict" toml:"strict"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" toml:"level"`
}

// Formats lists the accepted output formats.
var Formats = []string{"json", "markdown", "csv", "html"}

// Load reads configuration from file and env. Env var overrides use prefix
// TABLEWRAP_, e.g. TABLEWRAP_OUTPUT_FORMAT=csv.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("output.format", "json")
	v.SetDefault("output.indent", true)
	v.SetDefault("import.strict", false)
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	if cfgPath := os.Getenv(EnvConfigPath); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "tablewrap"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("TABLEWRAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit path that cannot be read is an error; a missing
		// default file is not.
		if os.Getenv(EnvConfigPath) != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks that enumerated settings hold known values.
func (c Config) Validate() error {
	if !ValidFormat(c.Output.Format) {
		return fmt.Errorf("output.format %q: must be one of %s", c.Output.Format, strings.Join(Formats, ", "))
	}
	return nil
}

// ValidFormat reports whether name is an accepted output format.
func ValidFormat(name string) bool {
	for _, f := range Formats {
		if f == name {
			return true
		}
	}
	return false
}
