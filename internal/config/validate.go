package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateData(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateData() error {
	if c.Data.SourcesFile == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("data.sources_file is required. Set MARCARONI_SOURCES_FILE or edit %s (create with 'marcaroni config init')", defaultPath)
	}
	switch c.Data.SnapshotBackend {
	case SnapshotBackendCSV:
		if c.Data.BibDataFile == "" {
			return errors.New("data.bib_data_file must be set when data.snapshot_backend is \"csv\"")
		}
	case SnapshotBackendSQLite:
		if c.Data.SnapshotDB == "" {
			return errors.New("data.snapshot_db must be set when data.snapshot_backend is \"sqlite\"")
		}
	default:
		return fmt.Errorf("data.snapshot_backend must be %q or %q", SnapshotBackendCSV, SnapshotBackendSQLite)
	}
	if c.Data.MaxAgeHours < 0 {
		return errors.New("data.max_age_hours must be zero or positive")
	}
	if c.Data.StalePolicy != StalePolicyWarn && c.Data.StalePolicy != StalePolicyFail {
		return fmt.Errorf("data.stale_policy must be %q or %q", StalePolicyWarn, StalePolicyFail)
	}
	return nil
}

func (c *Config) validateMatching() error {
	m := c.Matching
	if !validTag(m.IdentifierField) {
		return fmt.Errorf("matching.identifier_field must be a three-digit tag, got %q", m.IdentifierField)
	}
	for _, code := range m.IdentifierSubfields {
		if len(code) != 1 {
			return fmt.Errorf("matching.identifier_subfields entries must be single characters, got %q", code)
		}
	}
	for source, tag := range m.FieldOverrides {
		if source == "" {
			return errors.New("matching.field_overrides keys must be source ids")
		}
		if !validTag(tag) {
			return fmt.Errorf("matching.field_overrides.%s must be a three-digit tag, got %q", source, tag)
		}
	}
	if m.RequiredField != "" && !validTag(m.RequiredField) {
		return fmt.Errorf("matching.required_field must be a three-digit tag, got %q", m.RequiredField)
	}
	if m.MissingFieldPolicy != MissingFieldAbort && m.MissingFieldPolicy != MissingFieldSkip {
		return fmt.Errorf("matching.missing_field_policy must be %q or %q", MissingFieldAbort, MissingFieldSkip)
	}
	if m.TiePolicy != TiePolicyUpdate && m.TiePolicy != TiePolicyAmbiguous {
		return fmt.Errorf("matching.tie_policy must be %q or %q", TiePolicyUpdate, TiePolicyAmbiguous)
	}
	for i, ex := range m.Exceptions {
		if ex.Source == "" {
			return fmt.Errorf("matching.exceptions[%d].source must be set", i)
		}
		if ex.Contains == "" {
			return fmt.Errorf("matching.exceptions[%d].contains must be set", i)
		}
		if !validTag(ex.Tag) {
			return fmt.Errorf("matching.exceptions[%d].tag must be a three-digit tag, got %q", i, ex.Tag)
		}
		if len(ex.Subfield) != 1 {
			return fmt.Errorf("matching.exceptions[%d].subfield must be a single character", i)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

func validTag(tag string) bool {
	if len(tag) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if tag[i] < '0' || tag[i] > '9' {
			return false
		}
	}
	return true
}
