package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	DataDir   string `toml:"data_dir"`
}

// Data locates the source registry and the catalog snapshot.
type Data struct {
	SourcesFile     string `toml:"sources_file"`
	BibDataFile     string `toml:"bib_data_file"`
	SnapshotDB      string `toml:"snapshot_db"`
	SnapshotBackend string `toml:"snapshot_backend"`
	MaxAgeHours     int    `toml:"max_age_hours"`
	StalePolicy     string `toml:"stale_policy"`
	RecordRuns      bool   `toml:"record_runs"`
}

// Exception forces records from one source into the already-satisfied
// disposition when a descriptive field contains a given string.
type Exception struct {
	Source   string `toml:"source"`
	Tag      string `toml:"tag"`
	Subfield string `toml:"subfield"`
	Contains string `toml:"contains"`
	Reason   string `toml:"reason"`
}

// Matching controls identifier extraction and rule behaviour.
type Matching struct {
	IdentifierField     string            `toml:"identifier_field"`
	IdentifierSubfields []string          `toml:"identifier_subfields"`
	FieldOverrides      map[string]string `toml:"field_overrides"`
	RequiredField       string            `toml:"required_field"`
	MissingFieldPolicy  string            `toml:"missing_field_policy"`
	TiePolicy           string            `toml:"tie_policy"`
	Exceptions          []Exception       `toml:"exceptions"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for marcaroni.
//
// Configuration sections:
//   - Paths: output, log and data directories
//   - Data: source registry CSV, catalog snapshot (CSV or SQLite), freshness
//   - Matching: identifier field, per-source overrides, tie and missing-field policies, exceptions
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Data     Data     `toml:"data"`
	Matching Matching `toml:"matching"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and policy names normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the output, log and data directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir, c.Paths.DataDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// MaxAge returns the snapshot freshness threshold. Zero disables the check.
func (c *Config) MaxAge() time.Duration {
	if c.Data.MaxAgeHours <= 0 {
		return 0
	}
	return time.Duration(c.Data.MaxAgeHours) * time.Hour
}

// UsesSQLiteSnapshot reports whether matching reads the snapshot from the
// SQLite store rather than the CSV file.
func (c *Config) UsesSQLiteSnapshot() bool {
	return c.Data.SnapshotBackend == SnapshotBackendSQLite
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}
