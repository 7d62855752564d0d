// Package config loads host configuration from a TOML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig indicates a structurally valid file with unusable values.
var ErrInvalidConfig = errors.New("invalid configuration")

// VT configures the terminal bridge: the two launcher-created pipes
// and the protocol mode string handed to the bridge unparsed.
type VT struct {
	InPipe  string `toml:"in_pipe"`
	OutPipe string `toml:"out_pipe"`
	Mode    string `toml:"mode"`
}

// Logging configures log output.
type Logging struct {
	Level string `toml:"level"`
}

// Config is the full host configuration.
type Config struct {
	VT      VT      `toml:"vt"`
	Logging Logging `toml:"logging"`

	// Palette optionally points at a JSON file overriding the
	// built-in 16-color table used by the indexed engines.
	Palette string `toml:"palette"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		VT:      VT{Mode: "default"},
		Logging: Logging{Level: "info"},
	}
}

// Load reads the TOML file at path, then applies VTBRIDGE_* environment
// overrides. An empty path skips the file and starts from defaults; a
// non-empty path that cannot be read is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides fields from VTBRIDGE_* variables. Set variables
// win over the file; unset ones leave it alone.
func applyEnv(cfg *Config) {
	overrides := []struct {
		env string
		dst *string
	}{
		{"VTBRIDGE_VT_IN_PIPE", &cfg.VT.InPipe},
		{"VTBRIDGE_VT_OUT_PIPE", &cfg.VT.OutPipe},
		{"VTBRIDGE_VT_MODE", &cfg.VT.Mode},
		{"VTBRIDGE_LOG_LEVEL", &cfg.Logging.Level},
		{"VTBRIDGE_PALETTE", &cfg.Palette},
	}
	for _, o := range overrides {
		if val, ok := os.LookupEnv(o.env); ok {
			*o.dst = val
		}
	}
}

func (c Config) validate() error {
	// The pipes come as a pair or not at all.
	if (c.VT.InPipe == "") != (c.VT.OutPipe == "") {
		return fmt.Errorf("%w: vt.in_pipe and vt.out_pipe must be set together", ErrInvalidConfig)
	}
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Logging.Level)
	}
	return nil
}

// BridgeConfigured reports whether the VT pipe pair is set.
func (c Config) BridgeConfigured() bool {
	return c.VT.InPipe != "" && c.VT.OutPipe != ""
}
