package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.applyEnv()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeData()
	c.normalizeMatching()
	c.normalizeLogging()
	return nil
}

func (c *Config) applyEnv() {
	if value, ok := os.LookupEnv("MARCARONI_OUTPUT_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.OutputDir = value
	}
	if value, ok := os.LookupEnv("MARCARONI_SOURCES_FILE"); ok && strings.TrimSpace(value) != "" {
		c.Data.SourcesFile = value
	}
	if value, ok := os.LookupEnv("MARCARONI_BIB_DATA_FILE"); ok && strings.TrimSpace(value) != "" {
		c.Data.BibDataFile = value
	}
}

func (c *Config) normalizePaths() error {
	targets := []struct {
		key   string
		value *string
		def   string
	}{
		{"paths.output_dir", &c.Paths.OutputDir, defaultOutputDir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
		{"paths.data_dir", &c.Paths.DataDir, defaultDataDir},
		{"data.sources_file", &c.Data.SourcesFile, ""},
		{"data.bib_data_file", &c.Data.BibDataFile, ""},
		{"data.snapshot_db", &c.Data.SnapshotDB, defaultSnapshotDB},
	}
	for _, target := range targets {
		value := strings.TrimSpace(*target.value)
		if value == "" {
			value = target.def
		}
		expanded, err := expandPath(value)
		if err != nil {
			return fmt.Errorf("%s: %w", target.key, err)
		}
		*target.value = expanded
	}
	return nil
}

func (c *Config) normalizeData() {
	c.Data.SnapshotBackend = lowerTrim(c.Data.SnapshotBackend)
	if c.Data.SnapshotBackend == "" {
		c.Data.SnapshotBackend = SnapshotBackendCSV
	}
	c.Data.StalePolicy = lowerTrim(c.Data.StalePolicy)
	if c.Data.StalePolicy == "" {
		c.Data.StalePolicy = StalePolicyWarn
	}
}

func (c *Config) normalizeMatching() {
	m := &c.Matching
	m.IdentifierField = strings.TrimSpace(m.IdentifierField)
	if m.IdentifierField == "" {
		m.IdentifierField = defaultIdentifierField
	}
	m.IdentifierSubfields = normalizeCodes(m.IdentifierSubfields)
	if len(m.IdentifierSubfields) == 0 {
		m.IdentifierSubfields = []string{"a", "z"}
	}
	if len(m.FieldOverrides) > 0 {
		overrides := make(map[string]string, len(m.FieldOverrides))
		for source, tag := range m.FieldOverrides {
			overrides[strings.TrimSpace(source)] = strings.TrimSpace(tag)
		}
		m.FieldOverrides = overrides
	}
	m.RequiredField = strings.TrimSpace(m.RequiredField)
	m.MissingFieldPolicy = lowerTrim(m.MissingFieldPolicy)
	if m.MissingFieldPolicy == "" {
		m.MissingFieldPolicy = MissingFieldAbort
	}
	m.TiePolicy = lowerTrim(m.TiePolicy)
	if m.TiePolicy == "" {
		m.TiePolicy = TiePolicyUpdate
	}
	for i := range m.Exceptions {
		ex := &m.Exceptions[i]
		ex.Source = strings.TrimSpace(ex.Source)
		ex.Tag = strings.TrimSpace(ex.Tag)
		if ex.Tag == "" {
			ex.Tag = defaultExceptionTag
		}
		ex.Subfield = strings.TrimSpace(ex.Subfield)
		if ex.Subfield == "" {
			ex.Subfield = defaultExceptionCode
		}
		ex.Contains = strings.TrimSpace(ex.Contains)
		ex.Reason = strings.TrimSpace(ex.Reason)
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = lowerTrim(c.Logging.Format)
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = lowerTrim(c.Logging.Level)
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func normalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

func lowerTrim(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
