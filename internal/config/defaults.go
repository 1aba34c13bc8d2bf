package config

const (
	defaultConfigPath      = "~/.config/marcaroni/config.toml"
	projectConfigName      = "marcaroni.toml"
	defaultOutputDir       = "~/marcaroni/output"
	defaultLogDir          = "~/.local/share/marcaroni/logs"
	defaultDataDir         = "~/.local/share/marcaroni"
	defaultSourcesFile     = "~/.config/marcaroni/sources.csv"
	defaultBibDataFile     = "~/.local/share/marcaroni/bib-data.csv"
	defaultSnapshotDB      = "~/.local/share/marcaroni/snapshot.db"
	defaultMaxAgeHours     = 24
	defaultIdentifierField = "020"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultExceptionTag    = "264"
	defaultExceptionCode   = "b"
)

// Policy and backend names accepted in configuration.
const (
	SnapshotBackendCSV    = "csv"
	SnapshotBackendSQLite = "sqlite"

	StalePolicyWarn = "warn"
	StalePolicyFail = "fail"

	MissingFieldAbort = "abort"
	MissingFieldSkip  = "skip"

	TiePolicyUpdate    = "update"
	TiePolicyAmbiguous = "ambiguous"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			DataDir:   defaultDataDir,
		},
		Data: Data{
			SourcesFile:     defaultSourcesFile,
			BibDataFile:     defaultBibDataFile,
			SnapshotDB:      defaultSnapshotDB,
			SnapshotBackend: SnapshotBackendCSV,
			MaxAgeHours:     defaultMaxAgeHours,
			StalePolicy:     StalePolicyWarn,
			RecordRuns:      true,
		},
		Matching: Matching{
			IdentifierField:     defaultIdentifierField,
			IdentifierSubfields: []string{"a", "z"},
			MissingFieldPolicy:  MissingFieldAbort,
			TiePolicy:           TiePolicyUpdate,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
