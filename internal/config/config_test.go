package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vtbridge.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.VT.Mode != "default" {
		t.Errorf("VT.Mode = %q, want %q", cfg.VT.Mode, "default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.BridgeConfigured() {
		t.Error("defaults should not configure the bridge")
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
palette = "/etc/vtbridge/palette.json"

[vt]
in_pipe = "/run/vt-in"
out_pipe = "/run/vt-out"
mode = "xterm"

[logging]
level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.VT.InPipe != "/run/vt-in" || cfg.VT.OutPipe != "/run/vt-out" {
		t.Errorf("pipes = %q, %q", cfg.VT.InPipe, cfg.VT.OutPipe)
	}
	if cfg.VT.Mode != "xterm" {
		t.Errorf("VT.Mode = %q, want %q", cfg.VT.Mode, "xterm")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Palette != "/etc/vtbridge/palette.json" {
		t.Errorf("Palette = %q", cfg.Palette)
	}
	if !cfg.BridgeConfigured() {
		t.Error("BridgeConfigured() should be true with both pipes set")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("Load should fail for an explicit missing path")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, "[vt\nbroken")
	if _, err := Load(path); err == nil {
		t.Fatal("Load should fail for malformed TOML")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[vt]
in_pipe = "/run/file-in"
out_pipe = "/run/file-out"
mode = "xterm"
`)
	t.Setenv("VTBRIDGE_VT_MODE", "win-telnet")
	t.Setenv("VTBRIDGE_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.VT.Mode != "win-telnet" {
		t.Errorf("VT.Mode = %q, want env override", cfg.VT.Mode)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want env override", cfg.Logging.Level)
	}
	// Untouched fields keep file values.
	if cfg.VT.InPipe != "/run/file-in" {
		t.Errorf("VT.InPipe = %q, want file value", cfg.VT.InPipe)
	}
}

func TestEnvConfiguresPipes(t *testing.T) {
	t.Setenv("VTBRIDGE_VT_IN_PIPE", "/run/env-in")
	t.Setenv("VTBRIDGE_VT_OUT_PIPE", "/run/env-out")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.BridgeConfigured() {
		t.Error("env-supplied pipes should configure the bridge")
	}
}

func TestValidateRejectsLonePipe(t *testing.T) {
	path := writeConfig(t, `
[vt]
in_pipe = "/run/vt-in"
`)
	_, err := Load(path)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Load = %v, want ErrInvalidConfig", err)
	}
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("VTBRIDGE_LOG_LEVEL", "loud")
	_, err := Load("")
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Load = %v, want ErrInvalidConfig", err)
	}
}
