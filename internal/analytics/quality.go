package analytics

import (
	"context"
	"fmt"
	"strings"
)

// ColumnQuality holds the completeness statistics of one column.
type ColumnQuality struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	NonNull      int64   `json:"non_null_count"`
	Null         int64   `json:"null_count"`
	Distinct     int64   `json:"unique_count"`
	Completeness float64 `json:"completeness"`
}

// QualityReport describes the completeness of every declared column of a table.
type QualityReport struct {
	Table    string          `json:"table"`
	RowCount int64           `json:"row_count"`
	Columns  []ColumnQuality `json:"columns"`
}

// Completeness returns the percentage of populated values rounded to two
// decimals, or 0 for an empty table.
func Completeness(nonNull, rows int64) float64 {
	if rows <= 0 {
		return 0
	}
	return round2(100 * float64(nonNull) / float64(rows))
}

// BuildQualityReport profiles every column of table. A value counts as
// populated when it is neither NULL nor the empty string; the null count is
// the row count minus the populated count.
func BuildQualityReport(ctx context.Context, q Querier, table string) (*QualityReport, error) {
	info, err := q.TableMetadata(ctx, table)
	if err != nil {
		return nil, err
	}
	r := &QualityReport{Table: table, RowCount: info.RowCount}
	for _, col := range info.Columns {
		c := quote(col.Name)
		nonNull, err := scalar(ctx, q, fmt.Sprintf("SELECT COUNT(%[1]s) FROM %[2]s WHERE %[1]s IS NOT NULL AND %[1]s != ''", c, quote(table)))
		if err != nil {
			return nil, fmt.Errorf("quality of %s.%s: %w", table, col.Name, err)
		}
		distinct, err := scalar(ctx, q, fmt.Sprintf("SELECT COUNT(DISTINCT %s) FROM %s", c, quote(table)))
		if err != nil {
			return nil, fmt.Errorf("quality of %s.%s: %w", table, col.Name, err)
		}
		r.Columns = append(r.Columns, ColumnQuality{
			Name:         col.Name,
			Type:         col.Type,
			NonNull:      nonNull,
			Null:         info.RowCount - nonNull,
			Distinct:     distinct,
			Completeness: Completeness(nonNull, info.RowCount),
		})
	}
	return r, nil
}

// Column returns the statistics of the named column.
func (r *QualityReport) Column(name string) (ColumnQuality, bool) {
	for _, c := range r.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnQuality{}, false
}

// Markdown renders the report as a compact text summary.
func (r *QualityReport) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATA QUALITY]\n")
	b.WriteString(fmt.Sprintf("Table: %s\n", r.Table))
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.RowCount))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Columns)))

	b.WriteString("[COLUMNS]\n")
	var incomplete []string
	for _, c := range r.Columns {
		typ := c.Type
		if typ == "" {
			typ = "untyped"
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, null %d, unique %d, completeness %.2f%%)\n",
			safeName(c.Name), typ, c.NonNull, c.Null, c.Distinct, c.Completeness))
		if r.RowCount > 0 && c.Completeness < 100 {
			incomplete = append(incomplete, fmt.Sprintf("%s is missing %d of %d values", safeName(c.Name), c.Null, r.RowCount))
		}
	}
	if len(incomplete) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range incomplete {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
