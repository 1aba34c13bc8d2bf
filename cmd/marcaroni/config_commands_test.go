package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Tie policy: update")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidateRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[matching]\nfuzzy = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, []string{"config", "validate"}, path); err == nil {
		t.Fatal("expected unknown key to fail validation")
	}
}

func TestVersionSkipsConfig(t *testing.T) {
	out, _, err := runCLI(t, []string{"version"}, filepath.Join(t.TempDir(), "missing", "dir", "nope.toml"))
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "marcaroni ")
}
