package preflight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mutronic/marcaroni/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name    string
	Passed  bool
	Warning bool
	Detail  string
}

// RunAll executes every preflight check for cfg.
func RunAll(ctx context.Context, cfg *config.Config, now time.Time) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	results = append(results, CheckFileReadable("Sources file", cfg.Data.SourcesFile))

	failOnStale := cfg.Data.StalePolicy == config.StalePolicyFail
	if cfg.UsesSQLiteSnapshot() {
		results = append(results, CheckSnapshotStore(ctx, cfg.Data.SnapshotDB, cfg.MaxAge(), failOnStale, now))
	} else {
		results = append(results, CheckSnapshotFile(cfg.Data.BibDataFile, cfg.MaxAge(), failOnStale, now))
	}
	return results
}

// Err joins the failed results into one error, or returns nil when every
// check passed.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return errors.New("preflight failed: " + strings.Join(failed, "; "))
}

// Warnings returns the results that passed with a warning.
func Warnings(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Passed && r.Warning {
			out = append(out, r)
		}
	}
	return out
}
