package catalog

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrStaleSnapshot reports a snapshot older than the configured maximum age.
var ErrStaleSnapshot = errors.New("catalog snapshot is stale")

// Freshness describes how old a snapshot is relative to a threshold.
type Freshness struct {
	UpdatedAt time.Time
	Age       time.Duration
	MaxAge    time.Duration
	Stale     bool
}

// CheckFreshness compares updatedAt with now. A zero maxAge disables the
// check.
func CheckFreshness(updatedAt, now time.Time, maxAge time.Duration) Freshness {
	f := Freshness{UpdatedAt: updatedAt, MaxAge: maxAge}
	if updatedAt.IsZero() {
		return f
	}
	f.Age = now.Sub(updatedAt)
	if maxAge > 0 && f.Age > maxAge {
		f.Stale = true
	}
	return f
}

// Err returns ErrStaleSnapshot when the snapshot is stale.
func (f Freshness) Err() error {
	if !f.Stale {
		return nil
	}
	return fmt.Errorf("%w: last updated %s (%s ago, limit %s)",
		ErrStaleSnapshot, f.UpdatedAt.Format(time.RFC3339), f.Age.Round(time.Minute), f.MaxAge)
}

// FileFreshness stats path and checks its modification time.
func FileFreshness(path string, now time.Time, maxAge time.Duration) (Freshness, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Freshness{}, fmt.Errorf("stat bib data file: %w", err)
	}
	return CheckFreshness(info.ModTime(), now, maxAge), nil
}
