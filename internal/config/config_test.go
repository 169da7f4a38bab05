package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SampleMaxChars != 20000 {
		t.Errorf("SampleMaxChars = %d, want 20000", cfg.SampleMaxChars)
	}
	if cfg.WatchDebounceMs != 200 {
		t.Errorf("WatchDebounceMs = %d, want 200", cfg.WatchDebounceMs)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `{"sample_max_chars": 5000, "db_max_open_conns": 1}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SampleMaxChars != 5000 {
		t.Errorf("SampleMaxChars = %d, want 5000", cfg.SampleMaxChars)
	}
	if cfg.DBMaxOpenConns != 1 {
		t.Errorf("DBMaxOpenConns = %d, want 1", cfg.DBMaxOpenConns)
	}
	// Untouched fields keep defaults.
	if cfg.WatchDebounceMs != 200 {
		t.Errorf("WatchDebounceMs = %d, want 200", cfg.WatchDebounceMs)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := `{"sample_max_chars": 5000}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("HALO_SAMPLE_MAX_CHARS", "123")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SampleMaxChars != 123 {
		t.Errorf("SampleMaxChars = %d, want env override 123", cfg.SampleMaxChars)
	}
}

func TestLoad_EnvDisabledToolsList(t *testing.T) {
	t.Setenv("HALO_DISABLED_TOOLS", "content_ingest,bubble_clear")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.DisabledTools) != 2 || cfg.DisabledTools[0] != "content_ingest" {
		t.Errorf("DisabledTools = %v", cfg.DisabledTools)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{nope"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("Load should fail on malformed JSON")
	}
}

func TestMerge_SlicesDeduplicated(t *testing.T) {
	base := &Config{DisabledTools: []string{"a", "b"}}
	overlay := &Config{DisabledTools: []string{"b", "c", ""}}

	merged := Merge(base, overlay)
	want := []string{"a", "b", "c"}
	if len(merged.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", merged.DisabledTools, want)
	}
	for i, w := range want {
		if merged.DisabledTools[i] != w {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, merged.DisabledTools[i], w)
		}
	}
}
