package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/mutronic/marcaroni/internal/config"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "marcaroni", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "marcaroni", "output") {
		t.Fatalf("unexpected output dir %q", cfg.Paths.OutputDir)
	}
	if cfg.Data.SourcesFile != filepath.Join(tempHome, ".config", "marcaroni", "sources.csv") {
		t.Fatalf("unexpected sources file %q", cfg.Data.SourcesFile)
	}
	if cfg.Matching.IdentifierField != "020" || strings.Join(cfg.Matching.IdentifierSubfields, "") != "az" {
		t.Fatalf("unexpected identifier defaults: %+v", cfg.Matching)
	}
	if cfg.Matching.TiePolicy != config.TiePolicyUpdate || cfg.Matching.MissingFieldPolicy != config.MissingFieldAbort {
		t.Fatalf("unexpected policy defaults: %+v", cfg.Matching)
	}
	if cfg.MaxAge() != 24*time.Hour {
		t.Fatalf("unexpected max age %s", cfg.MaxAge())
	}
	if cfg.UsesSQLiteSnapshot() {
		t.Fatal("expected csv snapshot backend by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.LogDir, cfg.Paths.DataDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist", dir)
		}
	}
}

func TestLoadCustomFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
output_dir = "` + filepath.Join(dir, "out") + `"

[data]
sources_file = "` + filepath.Join(dir, "sources.csv") + `"
snapshot_backend = "SQLite"
max_age_hours = 0

[matching]
identifier_field = "035"
identifier_subfields = ["a", " a ", ""]
tie_policy = " Ambiguous "
missing_field_policy = "skip"
required_field = "856"

[matching.field_overrides]
" 50 " = "020"

[[matching.exceptions]]
source = "42"
contains = "University Press"
reason = "already licensed"

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if !cfg.UsesSQLiteSnapshot() || cfg.MaxAge() != 0 {
		t.Fatalf("unexpected data config: %+v", cfg.Data)
	}
	if cfg.Matching.TiePolicy != config.TiePolicyAmbiguous || cfg.Matching.MissingFieldPolicy != config.MissingFieldSkip {
		t.Fatalf("unexpected policies: %+v", cfg.Matching)
	}
	if len(cfg.Matching.IdentifierSubfields) != 1 || cfg.Matching.IdentifierSubfields[0] != "a" {
		t.Fatalf("expected subfields to be deduplicated, got %q", cfg.Matching.IdentifierSubfields)
	}
	if cfg.Matching.FieldOverrides["50"] != "020" {
		t.Fatalf("expected trimmed override key, got %v", cfg.Matching.FieldOverrides)
	}
	ex := cfg.Matching.Exceptions[0]
	if ex.Tag != "264" || ex.Subfield != "b" {
		t.Fatalf("expected exception defaults, got %+v", ex)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[matching]\ntie_polcy = \"update\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "tie_polcy") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestEnvOverridesOutputDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	out := filepath.Join(t.TempDir(), "elsewhere")
	t.Setenv("MARCARONI_OUTPUT_DIR", out)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.OutputDir != out {
		t.Fatalf("expected env output dir %q, got %q", out, cfg.Paths.OutputDir)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"bad tie policy", func(c *config.Config) { c.Matching.TiePolicy = "coin" }, "matching.tie_policy"},
		{"bad missing policy", func(c *config.Config) { c.Matching.MissingFieldPolicy = "ignore" }, "matching.missing_field_policy"},
		{"bad identifier tag", func(c *config.Config) { c.Matching.IdentifierField = "20" }, "matching.identifier_field"},
		{"bad override tag", func(c *config.Config) { c.Matching.FieldOverrides = map[string]string{"5": "x35"} }, "matching.field_overrides.5"},
		{"bad backend", func(c *config.Config) { c.Data.SnapshotBackend = "postgres" }, "data.snapshot_backend"},
		{"bad stale policy", func(c *config.Config) { c.Data.StalePolicy = "ignore" }, "data.stale_policy"},
		{"missing sources", func(c *config.Config) { c.Data.SourcesFile = "" }, "data.sources_file"},
		{"exception without needle", func(c *config.Config) {
			c.Matching.Exceptions = []config.Exception{{Source: "1", Tag: "264", Subfield: "b"}}
		}, "matching.exceptions[0].contains"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSampleConfigDecodes(t *testing.T) {
	var cfg config.Config
	if err := toml.Unmarshal([]byte(config.SampleConfig()), &cfg); err != nil {
		t.Fatalf("sample config does not decode: %v", err)
	}
	if cfg.Matching.TiePolicy != config.TiePolicyUpdate {
		t.Fatalf("unexpected sample tie policy %q", cfg.Matching.TiePolicy)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	t.Setenv("HOME", t.TempDir())
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("expected sample to load, exists=%v err=%v", exists, err)
	}
}
