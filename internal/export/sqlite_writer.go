// Package export writes a resolved dataset into a SQLite database, one table
// per seed type.
package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"github.com/agentic-research/appseeds/api"
	"github.com/agentic-research/appseeds/internal/dataset"
)

// MetadataTable records which dataset a database was exported from.
const MetadataTable = "application_seeds"

// ErrLocked means another process holds the export lock.
var ErrLocked = errors.New("export database is locked")

// reserved columns every seed table carries ahead of its attributes.
var reserved = map[string]bool{"id": true, "label": true}

// Writer exports datasets to a SQLite file at Path.
type Writer struct {
	Path string
	// BatchSize is the number of rows inserted per transaction.
	BatchSize int
	// LockRetry is the polling interval while waiting for the lock file.
	LockRetry time.Duration
	Logger    *slog.Logger
	Now       func() time.Time
}

// NewWriter returns a Writer for path with default settings.
func NewWriter(path string) *Writer {
	return &Writer{
		Path:      path,
		BatchSize: 10000,
		LockRetry: 50 * time.Millisecond,
		Logger:    slog.Default(),
		Now:       time.Now,
	}
}

// Write replaces the database at w.Path with the contents of d. The database
// is built next to the target and renamed into place, so readers never see a
// partial export. Concurrent writers serialize on "<path>.lock".
func (w *Writer) Write(ctx context.Context, d *dataset.Dataset) error {
	fp, err := d.Fingerprint()
	if err != nil {
		return err
	}
	types, err := d.SeedTypes()
	if err != nil {
		return err
	}

	lock := flock.New(w.Path + ".lock")
	locked, err := lock.TryLockContext(ctx, w.LockRetry)
	if err != nil {
		return fmt.Errorf("lock %s: %w", w.Path, err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrLocked, w.Path)
	}
	defer func() { _ = lock.Unlock() }()

	tmp := w.Path + ".tmp"
	_ = os.Remove(tmp)
	if err := w.writeFile(ctx, tmp, d, types, fp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, w.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("install %s: %w", w.Path, err)
	}
	w.Logger.Info("dataset exported", "dataset", d.Name(), "path", w.Path, "seed_types", len(types))
	return nil
}

func (w *Writer) writeFile(ctx context.Context, path string, d *dataset.Dataset, types []string, fp string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	// Performance tuning for bulk insert
	for _, pragma := range []string{"PRAGMA synchronous = OFF", "PRAGMA journal_mode = MEMORY"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return err
		}
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE %s (dataset TEXT NOT NULL, fingerprint TEXT NOT NULL, exported_at TEXT NOT NULL)`,
		quoteIdent(MetadataTable))); err != nil {
		return fmt.Errorf("create metadata table: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (dataset, fingerprint, exported_at) VALUES (?, ?, ?)`, quoteIdent(MetadataTable)),
		d.Name(), fp, w.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	policy := d.Policy()
	for _, seedType := range types {
		recs, err := d.All(seedType)
		if err != nil {
			return err
		}
		if err := w.writeTable(ctx, db, seedType, policy.For(seedType), recs); err != nil {
			return fmt.Errorf("export %s: %w", seedType, err)
		}
	}
	return nil
}

// columns returns the sorted union of attribute names across recs, excluding
// the reserved columns.
func (w *Writer) columns(seedType string, recs dataset.Records) []string {
	seen := map[string]bool{}
	shadowed := false
	for _, r := range recs {
		for k := range r.Attributes {
			switch {
			case k == "label":
				shadowed = true
			case !reserved[k]:
				seen[k] = true
			}
		}
	}
	if shadowed {
		w.Logger.Warn("label attribute shadowed by label column", "seed_type", seedType)
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

func (w *Writer) writeTable(ctx context.Context, db *sql.DB, seedType string, form api.IDType, recs dataset.Records) error {
	cols := w.columns(seedType, recs)

	idType := "INTEGER"
	if form == api.IDUUID {
		idType = "TEXT"
	}
	defs := []string{"id " + idType + " PRIMARY KEY", "label TEXT NOT NULL UNIQUE"}
	names := []string{"id", "label"}
	for _, c := range cols {
		defs = append(defs, quoteIdent(c))
		names = append(names, quoteIdent(c))
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(seedType), strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(seedType), strings.Join(names, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", "))

	batch := w.BatchSize
	if batch <= 0 {
		batch = len(recs) + 1
	}
	for start := 0; start < len(recs); start += batch {
		end := min(start+batch, len(recs))
		if err := insertBatch(ctx, db, insert, cols, recs[start:end]); err != nil {
			return err
		}
	}
	w.Logger.Debug("seed table exported", "seed_type", seedType, "rows", len(recs), "columns", len(cols))
	return nil
}

func insertBatch(ctx context.Context, db *sql.DB, insert string, cols []string, recs dataset.Records) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()

	args := make([]any, 2+len(cols))
	for _, r := range recs {
		args[0] = r.ID
		args[1] = r.Label
		for i, c := range cols {
			v, err := column(r.Attributes[c])
			if err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("%s.%s: %w", r.Label, c, err)
			}
			args[2+i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert %s: %w", r.Label, err)
		}
	}
	return tx.Commit()
}

// column converts an attribute value into something the driver stores.
// Sequences and mappings become JSON text.
func column(v any) (any, error) {
	switch t := v.(type) {
	case nil, string, bool, int, int64, float64:
		return t, nil
	case uint64:
		return int64(t), nil
	case time.Time:
		return t.UTC().Format(time.RFC3339), nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
