package preflight

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/mutronic/marcaroni/internal/catalog"
	"github.com/mutronic/marcaroni/internal/snapshot"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFileReadable verifies that path is a regular file the process can read.
func CheckFileReadable(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (readable)", path)}
}

// CheckSnapshotFile checks that the bib-data CSV exists and was modified
// within maxAge.
func CheckSnapshotFile(path string, maxAge time.Duration, failOnStale bool, now time.Time) Result {
	const name = "Catalog snapshot"
	readable := CheckFileReadable(name, path)
	if !readable.Passed {
		return readable
	}
	fresh, err := catalog.FileFreshness(path, now, maxAge)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return freshnessResult(name, path, fresh, failOnStale)
}

// CheckSnapshotStore checks that the SQLite snapshot holds an import made
// within maxAge.
func CheckSnapshotStore(ctx context.Context, path string, maxAge time.Duration, failOnStale bool, now time.Time) Result {
	const name = "Catalog snapshot"
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist; run 'marcaroni snapshot import')", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	store, err := snapshot.Open(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer store.Close()

	imp, err := store.LatestImport(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return freshnessResult(name, path, catalog.CheckFreshness(imp.ImportedAt, now, maxAge), failOnStale)
}

func freshnessResult(name, path string, fresh catalog.Freshness, failOnStale bool) Result {
	if err := fresh.Err(); err != nil {
		return Result{Name: name, Passed: !failOnStale, Warning: !failOnStale, Detail: err.Error()}
	}
	detail := fmt.Sprintf("%s (updated %s)", path, fresh.UpdatedAt.Format(time.RFC3339))
	return Result{Name: name, Passed: true, Detail: detail}
}
