package bridge

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/sheetql-cli/internal/dataset"
)

// ResultName is the name given to datasets returned by RunQuery.
const ResultName = "result"

// ColumnInfo describes one declared table column.
type ColumnInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	Position   int    `json:"position"`
	PrimaryKey bool   `json:"primary_key"`
}

// TableInfo is the declared schema and row count of a live table.
type TableInfo struct {
	Name     string       `json:"name"`
	Columns  []ColumnInfo `json:"columns"`
	RowCount int64        `json:"row_count"`
}

// ColumnNames returns the declared column names in position order.
func (t *TableInfo) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// RunQuery executes a read query and returns its full result.
func (b *Bridge) RunQuery(ctx context.Context, query string) (*dataset.Dataset, error) {
	db, err := b.conn()
	if err != nil {
		return nil, err
	}
	b.logger.Debug("running query", slog.String("query", query))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		b.logger.Error("query failed", slog.String("query", query), slog.Any("error", err))
		return nil, &QueryError{Query: query, Err: err}
	}
	defer rows.Close()
	ds, err := scanRows(ResultName, rows)
	if err != nil {
		b.logger.Error("reading query result failed", slog.String("query", query), slog.Any("error", err))
		return nil, &QueryError{Query: query, Err: err}
	}
	b.advance(Queried)
	b.logger.Info("query executed", slog.Int("rows", ds.Len()), slog.Int("columns", len(ds.Columns)))
	return ds, nil
}

// RunMutation executes mutation text in its own transaction and returns the
// number of affected rows. On failure the transaction is rolled back.
func (b *Bridge) RunMutation(ctx context.Context, query string) (int64, error) {
	db, err := b.conn()
	if err != nil {
		return 0, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		b.logger.Error("begin transaction failed", slog.Any("error", err))
		return 0, &QueryError{Query: query, Err: err}
	}
	res, err := tx.ExecContext(ctx, query)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			b.logger.Warn("rollback failed", slog.Any("error", rbErr))
		}
		b.logger.Error("mutation failed, rolled back", slog.String("query", query), slog.Any("error", err))
		return 0, &QueryError{Query: query, Err: err}
	}
	if err := tx.Commit(); err != nil {
		b.logger.Error("commit failed", slog.String("query", query), slog.Any("error", err))
		return 0, &QueryError{Query: query, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		n = 0
	}
	b.advance(Updated)
	b.logger.Info("mutation committed", slog.Int64("rows_affected", n))
	return n, nil
}

// TableMetadata returns the declared columns and row count of a table.
func (b *Bridge) TableMetadata(ctx context.Context, table string) (*TableInfo, error) {
	db, err := b.conn()
	if err != nil {
		return nil, err
	}
	var found int
	err = db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&found)
	if err != nil {
		return nil, &QueryError{Query: "sqlite_master lookup", Err: err}
	}
	if found == 0 {
		b.logger.Error("table not found", slog.String("table", table))
		return nil, &NotFoundError{Kind: "table", Name: table}
	}

	pragma := fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table))
	rows, err := db.QueryContext(ctx, pragma)
	if err != nil {
		return nil, &QueryError{Query: pragma, Err: err}
	}
	info := &TableInfo{Name: table}
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			rows.Close()
			return nil, &QueryError{Query: pragma, Err: err}
		}
		info.Columns = append(info.Columns, ColumnInfo{
			Name:       name,
			Type:       ctype,
			Nullable:   notNull == 0,
			Position:   cid,
			PrimaryKey: pk > 0,
		})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, &QueryError{Query: pragma, Err: err}
	}
	rows.Close()

	count := "SELECT COUNT(*) FROM " + quoteIdent(table)
	if err := db.QueryRowContext(ctx, count).Scan(&info.RowCount); err != nil {
		return nil, &QueryError{Query: count, Err: err}
	}
	return info, nil
}

// ListTables returns the user tables of the engine in catalog order.
func (b *Bridge) ListTables(ctx context.Context) ([]string, error) {
	db, err := b.conn()
	if err != nil {
		return nil, err
	}
	const q = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY rowid"
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, &QueryError{Query: q, Err: err}
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, &QueryError{Query: q, Err: err}
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: q, Err: err}
	}
	return names, nil
}

// DefaultPreviewLimit is used by Preview when limit is not positive.
const DefaultPreviewLimit = 5

// Preview returns the first limit rows of a table.
func (b *Bridge) Preview(ctx context.Context, table string, limit int) (*dataset.Dataset, error) {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	ds, err := b.RunQuery(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", quoteIdent(table), limit))
	if err != nil {
		return nil, err
	}
	ds.Name = table
	return ds, nil
}

// scanRows drains rows into a dataset. Text returned as bytes is converted
// to string.
func scanRows(name string, rows *sql.Rows) (*dataset.Dataset, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	ds := dataset.New(name, cols...)
	ds.Rows = [][]any{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		ds.Rows = append(ds.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ds, nil
}
