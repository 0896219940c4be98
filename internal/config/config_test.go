package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.FollowSymlinks {
		t.Error("FollowSymlinks should default to false")
	}
	if cfg.SkipHidden {
		t.Error("SkipHidden should default to false")
	}
	if !reflect.DeepEqual(cfg.Exclude, []string{".git", "node_modules"}) {
		t.Errorf("Exclude = %v, want default excludes", cfg.Exclude)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled should default to true")
	}
	if cfg.History.Keep != 500 {
		t.Errorf("History.Keep = %d, want 500", cfg.History.Keep)
	}
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `log_level: debug
follow_symlinks: true
skip_hidden: true
exclude: [".svn", "vendor"]
history:
  enabled: true
  db_path: /tmp/findr-test/history.db
  keep: 50
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if !cfg.FollowSymlinks {
		t.Error("FollowSymlinks = false, want true")
	}
	if !cfg.SkipHidden {
		t.Error("SkipHidden = false, want true")
	}
	if !reflect.DeepEqual(cfg.Exclude, []string{".svn", "vendor"}) {
		t.Errorf("Exclude = %v, want file values", cfg.Exclude)
	}
	if cfg.History.DBPath != "/tmp/findr-test/history.db" {
		t.Errorf("History.DBPath = %q, want file value", cfg.History.DBPath)
	}
	if cfg.History.Keep != 50 {
		t.Errorf("History.Keep = %d, want 50", cfg.History.Keep)
	}
}

// TestLoadConfigMissingFile returns defaults without error
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() on missing file error = %v, want nil", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("LoadConfig() = %+v, want defaults", cfg)
	}
}

// TestLoadConfigMalformed returns an error for broken YAML
func TestLoadConfigMalformed(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(configPath, []byte("log_level: [unterminated"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Fatal("LoadConfig() on malformed file should return an error")
	}
}

// TestLoadConfigPartial keeps defaults for omitted keys
func TestLoadConfigPartial(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(configPath, []byte("log_level: warn\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	// Omitted history section keeps every default.
	if !cfg.History.Enabled {
		t.Error("History.Enabled should keep its default when section omitted")
	}
	if cfg.History.Keep != 500 {
		t.Errorf("History.Keep = %d, want default 500", cfg.History.Keep)
	}
	if !reflect.DeepEqual(cfg.Exclude, []string{".git", "node_modules"}) {
		t.Errorf("Exclude = %v, want defaults", cfg.Exclude)
	}
}

// TestLoadConfigHistoryDisabled honors an explicit enabled: false
func TestLoadConfigHistoryDisabled(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nohist.yaml")
	content := "history:\n  enabled: false\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want false from file")
	}
	// Unspecified history fields still fall back to defaults.
	if cfg.History.DBPath != "~/.findr/history.db" {
		t.Errorf("History.DBPath = %q, want default", cfg.History.DBPath)
	}
}

// TestLoadConfigEmptyExcludeList allows clearing the default excludes
func TestLoadConfigEmptyExcludeList(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "noexclude.yaml")
	if err := os.WriteFile(configPath, []byte("exclude: []\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(cfg.Exclude) != 0 {
		t.Errorf("Exclude = %v, want empty list", cfg.Exclude)
	}
}

func TestExpandedDBPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	cfg := DefaultConfig()
	cfg.History.DBPath = "~/custom/history.db"
	want := filepath.Join(home, "custom", "history.db")
	if got := cfg.ExpandedDBPath(); got != want {
		t.Errorf("ExpandedDBPath() = %q, want %q", got, want)
	}

	cfg.History.DBPath = "/absolute/history.db"
	if got := cfg.ExpandedDBPath(); got != "/absolute/history.db" {
		t.Errorf("ExpandedDBPath() = %q, want absolute path unchanged", got)
	}
}
