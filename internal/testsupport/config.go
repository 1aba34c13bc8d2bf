package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/mutronic/marcaroni/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Data files point at the base directory but are not created; use
// WithSources and WithBibData to write fixtures.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Data.SourcesFile = filepath.Join(base, "data", "sources.csv")
	cfgVal.Data.BibDataFile = filepath.Join(base, "data", "bib-data.csv")
	cfgVal.Data.SnapshotDB = filepath.Join(base, "data", "snapshot.db")
	cfgVal.Data.MaxAgeHours = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSources writes the default source fixture to the configured sources
// file.
func WithSources() ConfigOption {
	return func(b *configBuilder) {
		WriteSourcesCSV(b.t, b.cfg.Data.SourcesFile, DefaultSources...)
	}
}

// WithBibData writes rows to the configured bib-data file.
func WithBibData(rows ...BibRow) ConfigOption {
	return func(b *configBuilder) {
		WriteBibDataCSV(b.t, b.cfg.Data.BibDataFile, rows...)
	}
}

// WithSQLiteBackend switches matching to the SQLite snapshot store.
func WithSQLiteBackend() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Data.SnapshotBackend = config.SnapshotBackendSQLite
	}
}

// WithTiePolicy overrides matching.tie_policy.
func WithTiePolicy(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Matching.TiePolicy = policy
	}
}

// WithRequiredField sets matching.required_field and its policy.
func WithRequiredField(tag, policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Matching.RequiredField = tag
		b.cfg.Matching.MissingFieldPolicy = policy
	}
}

// WithFieldOverride matches records from sourceID on tag instead of the
// default identifier field.
func WithFieldOverride(sourceID, tag string) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Matching.FieldOverrides == nil {
			b.cfg.Matching.FieldOverrides = make(map[string]string)
		}
		b.cfg.Matching.FieldOverrides[sourceID] = tag
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
