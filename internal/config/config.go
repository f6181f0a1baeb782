// Package config locates and decodes runtime.toml, the optional file
// tuning the runtime's reservations and diagnostics.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the config file searched for upward from the start directory.
const FileName = "runtime.toml"

// Config is the decoded runtime.toml.
type Config struct {
	Runtime RuntimeConfig `toml:"runtime"`
	Trace   TraceConfig   `toml:"trace"`
}

// RuntimeConfig tunes the runtime's reservations and checks.
type RuntimeConfig struct {
	SegmentSlots int  `toml:"segment_slots"`
	ArenaCells   int  `toml:"arena_cells"`
	LeakCheck    bool `toml:"leak_check"`
}

// TraceConfig tunes diagnostics output.
type TraceConfig struct {
	Level string `toml:"level"` // off|run|control|debug
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Runtime: RuntimeConfig{LeakCheck: true},
		Trace:   TraceConfig{Level: "off"},
	}
}

// Find walks upward from startDir looking for runtime.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadFile decodes the config at path over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if cfg.Runtime.SegmentSlots < 0 {
		return Config{}, fmt.Errorf("%s: segment_slots must not be negative", path)
	}
	if cfg.Runtime.ArenaCells < 0 {
		return Config{}, fmt.Errorf("%s: arena_cells must not be negative", path)
	}
	return cfg, nil
}

// Load finds and decodes runtime.toml upward from startDir, falling back
// to defaults when no file exists.
func Load(startDir string) (Config, string, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err := LoadFile(path)
	return cfg, path, err
}
