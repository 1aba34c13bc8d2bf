package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mutronic/marcaroni/internal/catalog"
)

// ErrNoImport reports a store that has never received a snapshot import.
var ErrNoImport = errors.New("snapshot store has no import; run 'marcaroni snapshot import'")

// Store manages snapshot persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Import describes one snapshot import.
type Import struct {
	ID         int64
	SourceFile string
	ImportedAt time.Time
	Stats      catalog.LoadStats
}

// Open initializes or connects to the database at path and applies
// migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ReplaceIdentifiers swaps the stored snapshot for rows in one transaction
// and records the import.
func (s *Store) ReplaceIdentifiers(ctx context.Context, sourceFile string, rows []catalog.Row, stats catalog.LoadStats) (*Import, error) {
	if len(rows) == 0 {
		return nil, catalog.ErrEmptySnapshot
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM identifiers"); err != nil {
		return nil, fmt.Errorf("clear identifiers: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO identifiers (identifier, entry_id, source_id, tag, subfield) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := stmt.ExecContext(ctx, row.Identifier, row.Ref.EntryID, row.Ref.SourceID, row.Tag, row.Subfield); err != nil {
			return nil, fmt.Errorf("insert identifier row %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO imports (source_file, imported_at, rows_read, rows_kept, rows_filtered, rows_invalid)
         VALUES (?, ?, ?, ?, ?, ?)`,
		sourceFile, now.Format(time.RFC3339Nano), stats.Read, stats.Kept, stats.Filtered, stats.Invalid,
	)
	if err != nil {
		return nil, fmt.Errorf("insert import: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}
	return &Import{ID: id, SourceFile: sourceFile, ImportedAt: now, Stats: stats}, nil
}

// LatestImport returns the most recent import, or ErrNoImport.
func (s *Store) LatestImport(ctx context.Context) (*Import, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_file, imported_at, rows_read, rows_kept, rows_filtered, rows_invalid
         FROM imports ORDER BY id DESC LIMIT 1`)
	var (
		imp        Import
		importedAt string
	)
	err := row.Scan(&imp.ID, &imp.SourceFile, &importedAt,
		&imp.Stats.Read, &imp.Stats.Kept, &imp.Stats.Filtered, &imp.Stats.Invalid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoImport
	}
	if err != nil {
		return nil, fmt.Errorf("latest import: %w", err)
	}
	imp.ImportedAt = parseTime(importedAt)
	return &imp, nil
}

// Rows returns stored snapshot rows. A non-empty tag restricts rows to that
// tag.
func (s *Store) Rows(ctx context.Context, tag string) ([]catalog.Row, error) {
	query := `SELECT identifier, entry_id, source_id, tag, subfield FROM identifiers`
	var args []any
	if tag != "" {
		query += ` WHERE tag = ? OR tag = ''`
		args = append(args, tag)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query identifiers: %w", err)
	}
	defer rows.Close()

	var out []catalog.Row
	for rows.Next() {
		var r catalog.Row
		if err := rows.Scan(&r.Identifier, &r.Ref.EntryID, &r.Ref.SourceID, &r.Tag, &r.Subfield); err != nil {
			return nil, fmt.Errorf("scan identifier: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identifiers: %w", err)
	}
	return out, nil
}

// Count returns the number of stored identifier rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM identifiers").Scan(&n); err != nil {
		return 0, fmt.Errorf("count identifiers: %w", err)
	}
	return n, nil
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	return time.Time{}
}

func nullableString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
