package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultWhenNoFile(t *testing.T) {
	dir := t.TempDir()
	cfg, path, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if path != "" {
		t.Fatalf("found unexpected config at %q", path)
	}
	if !cfg.Runtime.LeakCheck {
		t.Fatalf("default leak_check should be on")
	}
	if cfg.Trace.Level != "off" {
		t.Fatalf("default trace level = %q, want off", cfg.Trace.Level)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	content := `
[runtime]
segment_slots = 1024
leak_check = false

[trace]
level = "control"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, found, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found != path {
		t.Fatalf("found %q, want %q", found, path)
	}
	if cfg.Runtime.SegmentSlots != 1024 {
		t.Fatalf("segment_slots = %d, want 1024", cfg.Runtime.SegmentSlots)
	}
	if cfg.Runtime.LeakCheck {
		t.Fatalf("leak_check should be off")
	}
	if cfg.Runtime.ArenaCells != 0 {
		t.Fatalf("arena_cells = %d, want 0 (unset)", cfg.Runtime.ArenaCells)
	}
	if cfg.Trace.Level != "control" {
		t.Fatalf("trace level = %q, want control", cfg.Trace.Level)
	}
}

func TestFindWalksUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(root, FileName)
	if err := os.WriteFile(path, []byte("[runtime]\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	found, ok, err := Find(nested)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !ok || found != path {
		t.Fatalf("found %q ok=%v, want %q", found, ok, path)
	}
}

func TestLoadFileRejectsBadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("not toml ["), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
