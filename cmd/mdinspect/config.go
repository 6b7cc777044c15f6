package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/clrmeta/builder"
)

// Config holds defaults read from an mdinspect.toml file. Flags given on
// the command line take precedence.
type Config struct {
	Output  OutputConfig  `toml:"output"`
	Log     LogConfig     `toml:"log"`
	Rebuild RebuildConfig `toml:"rebuild"`
}

// OutputConfig selects what is printed and how.
type OutputConfig struct {
	Format string   `toml:"format"` // text, styled or msgpack
	Tables []string `toml:"tables"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// RebuildConfig configures metadata write-back.
type RebuildConfig struct {
	Version           string `toml:"version"`
	CodeBase          uint32 `toml:"code-base"`
	DataBase          uint32 `toml:"data-base"`
	ForceLargeIndices bool   `toml:"force-large-indices"`
}

func defaultConfig() *Config {
	opts := builder.DefaultOptions()
	return &Config{
		Output: OutputConfig{Format: "auto"},
		Log:    LogConfig{Level: "warn"},
		Rebuild: RebuildConfig{
			Version:  opts.Version,
			CodeBase: opts.CodeBase,
			DataBase: opts.DataBase,
		},
	}
}

// loadConfig reads path over the defaults. An empty path yields the
// defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) builderOptions() builder.Options {
	return builder.Options{
		Version:           c.Rebuild.Version,
		CodeBase:          c.Rebuild.CodeBase,
		DataBase:          c.Rebuild.DataBase,
		ForceLargeIndices: c.Rebuild.ForceLargeIndices,
	}
}
