package bridge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/KaramelBytes/sheetql-cli/internal/dataset"
	"github.com/KaramelBytes/sheetql-cli/internal/store"
	"github.com/KaramelBytes/sheetql-cli/internal/utils"
)

// LoadDatasets reads the source document and populates the original and
// modified maps as independent copies.
func (b *Bridge) LoadDatasets() (*dataset.Set, error) {
	if b.state == Closed {
		return nil, ErrClosed
	}
	if _, err := os.Stat(b.source); err != nil {
		b.logger.Error("source document not readable", slog.Any("error", err))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Kind: "document", Name: b.source, Err: err}
		}
		return nil, &IOError{Op: "load", Path: b.source, Err: err}
	}
	set, err := store.Read(b.source)
	if err != nil {
		b.logger.Error("loading document failed", slog.Any("error", err))
		return nil, &IOError{Op: "load", Path: b.source, Err: err}
	}
	b.original = set.Clone()
	b.modified = set.Clone()
	if b.state < Loaded {
		b.advance(Loaded)
	}
	b.logger.Info("document loaded", slog.Any("sheets", set.Names()))
	return set, nil
}

// Materialize creates or replaces one table per requested dataset (all
// datasets when names is empty). Table contents always come from the
// original datasets. Datasets are loaded first when nothing is loaded yet.
func (b *Bridge) Materialize(ctx context.Context, names ...string) error {
	db, err := b.conn()
	if err != nil {
		return err
	}
	if b.original == nil {
		if _, err := b.LoadDatasets(); err != nil {
			return err
		}
	}
	if len(names) == 0 {
		names = b.original.Names()
	}
	for _, name := range names {
		ds, ok := b.original.Get(name)
		if !ok {
			b.logger.Error("dataset not found in document", slog.String("dataset", name))
			return &NotFoundError{Kind: "dataset", Name: name}
		}
		table := SanitizeTableName(name)
		if len(ds.Columns) == 0 {
			b.logger.Warn("dataset has no columns, table not created", slog.String("dataset", name))
			continue
		}
		if err := createTable(ctx, db, table, ds); err != nil {
			b.logger.Error("materializing dataset failed", slog.String("dataset", name), slog.String("table", table), slog.Any("error", err))
			return err
		}
		b.logger.Info("dataset materialized", slog.String("dataset", name), slog.String("table", table), slog.Int("rows", ds.Len()))
	}
	b.advance(TablesReady)
	return nil
}

// ReplaceDataset runs query and stores its full result as the modified
// dataset name. The original dataset and the live tables are untouched.
func (b *Bridge) ReplaceDataset(ctx context.Context, name, query string) error {
	if b.modified == nil {
		if b.state == Closed {
			return ErrClosed
		}
		return ErrNotLoaded
	}
	result, err := b.RunQuery(ctx, query)
	if err != nil {
		b.logger.Error("updating dataset failed", slog.String("dataset", name), slog.Any("error", err))
		return err
	}
	b.modified.Put(name, result)
	b.advance(Updated)
	b.logger.Info("dataset updated", slog.String("dataset", name), slog.Int("rows", result.Len()))
	return nil
}

// SetDataset stores a copy of ds as the modified dataset name, appending a
// new sheet when the name is unknown.
func (b *Bridge) SetDataset(name string, ds *dataset.Dataset) error {
	if b.state == Closed {
		return ErrClosed
	}
	if b.modified == nil {
		return ErrNotLoaded
	}
	b.modified.Put(name, ds.Clone())
	b.advance(Updated)
	return nil
}

// Original returns a copy of the load-time dataset.
func (b *Bridge) Original(name string) (*dataset.Dataset, bool) {
	ds, ok := b.original.Get(name)
	return ds.Clone(), ok
}

// Modified returns a copy of the current modified dataset.
func (b *Bridge) Modified(name string) (*dataset.Dataset, bool) {
	ds, ok := b.modified.Get(name)
	return ds.Clone(), ok
}

// DatasetNames returns the modified map's names, in output sheet order.
func (b *Bridge) DatasetNames() []string {
	return b.modified.Names()
}

// Persist writes every modified dataset to path, one sheet per entry in map
// order. An empty path overwrites the source document.
func (b *Bridge) Persist(path string) error {
	if b.state == Closed {
		return ErrClosed
	}
	if b.modified == nil {
		return ErrNotLoaded
	}
	if path == "" {
		path = b.source
	}
	if err := store.Write(path, b.modified); err != nil {
		b.logger.Error("saving document failed", slog.String("path", path), slog.Any("error", err))
		return &IOError{Op: "persist", Path: path, Err: err}
	}
	b.logger.Info("document saved", slog.String("path", path), slog.Any("sheets", b.modified.Names()))
	return nil
}

// Snapshot copies the source document to path, by default
// "<stem>_backup<ext>" next to the source, and returns the backup path.
func (b *Bridge) Snapshot(path string) (string, error) {
	if b.state == Closed {
		return "", ErrClosed
	}
	if path == "" {
		path = utils.BackupPath(b.source)
	}
	n, err := utils.CopyFile(b.source, path)
	if err != nil {
		b.logger.Error("creating backup failed", slog.String("backup", path), slog.Any("error", err))
		return "", &IOError{Op: "backup", Path: path, Err: err}
	}
	b.logger.Info("backup created", slog.String("backup", path), slog.Int64("bytes", n))
	return path, nil
}

// sqlType maps the non-null values of a column to INTEGER, REAL or TEXT.
func sqlType(ds *dataset.Dataset, col int) string {
	kind := ""
	for _, row := range ds.Rows {
		switch row[col].(type) {
		case nil:
			continue
		case int64, int, int32, bool:
			if kind == "" {
				kind = "INTEGER"
			}
		case float64, float32:
			if kind == "" || kind == "INTEGER" {
				kind = "REAL"
			}
		default:
			return "TEXT"
		}
	}
	if kind == "" {
		return "TEXT"
	}
	return kind
}

// engineValue converts a dataset value for binding.
func engineValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Format(store.TimeLayout)
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	default:
		return v
	}
}

// createTable drops and recreates table from ds inside one transaction.
func createTable(ctx context.Context, db *sql.DB, table string, ds *dataset.Dataset) error {
	defs := make([]string, len(ds.Columns))
	marks := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		defs[i] = quoteIdent(c) + " " + sqlType(ds, i)
		marks[i] = "?"
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(table), strings.Join(marks, ", "))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &QueryError{Query: create, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
		return &QueryError{Query: "DROP TABLE " + table, Err: err}
	}
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return &QueryError{Query: create, Err: err}
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return &QueryError{Query: insert, Err: err}
	}
	defer stmt.Close()
	args := make([]any, len(ds.Columns))
	for _, row := range ds.Rows {
		for i := range args {
			args[i] = nil
			if i < len(row) {
				args[i] = engineValue(row[i])
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return &QueryError{Query: insert, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &QueryError{Query: create, Err: err}
	}
	return nil
}
