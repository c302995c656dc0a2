// Package query generates SQL text for common relational operations on
// materialized sheets.
//
// Values are interpolated as literals (strings single-quoted, without
// escaping) and identifiers are interpolated verbatim. Callers must pass
// trusted input. Checked offers the same templates with validation for
// callers that cannot guarantee that.
package query

import (
	"fmt"
	"strings"
)

// JoinType selects the join flavor used by Join.
type JoinType string

const (
	InnerJoin JoinType = "INNER"
	LeftJoin  JoinType = "LEFT"
	RightJoin JoinType = "RIGHT"
)

// Literal renders a value as SQL literal text.
func Literal(v any) string {
	if s, ok := v.(string); ok {
		return "'" + s + "'"
	}
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

func SelectAll(table string) string {
	return fmt.Sprintf("SELECT * FROM %s", table)
}

func SelectColumns(table string, columns []string) string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), table)
}

// FilterByValue selects rows where column <operator> value. An empty
// operator means "=".
func FilterByValue(table, column string, value any, operator string) string {
	if operator == "" {
		operator = "="
	}
	return fmt.Sprintf("SELECT * FROM %s WHERE %s %s %s", table, column, operator, Literal(value))
}

// FilterByValues builds an IN filter. Values are quoted only when every
// value is a string.
func FilterByValues(table, column string, values []any) string {
	allStrings := true
	for _, v := range values {
		if _, ok := v.(string); !ok {
			allStrings = false
			break
		}
	}
	parts := make([]string, len(values))
	for i, v := range values {
		if allStrings {
			parts[i] = Literal(v)
		} else {
			parts[i] = fmt.Sprintf("%v", v)
		}
	}
	return fmt.Sprintf("SELECT * FROM %s WHERE %s IN (%s)", table, column, strings.Join(parts, ", "))
}

// FilterByRange uses BETWEEN with both bounds rendered verbatim.
func FilterByRange(table, column string, min, max any) string {
	return fmt.Sprintf("SELECT * FROM %s WHERE %s BETWEEN %v AND %v", table, column, min, max)
}

func FilterByDateRange(table, dateColumn, start, end string) string {
	return fmt.Sprintf("SELECT * FROM %s\nWHERE %s BETWEEN '%s' AND '%s'", table, dateColumn, start, end)
}

func GroupByCount(table, column string, orderByCount bool) string {
	q := fmt.Sprintf("SELECT %s, COUNT(*) as count\nFROM %s\nGROUP BY %s", column, table, column)
	if orderByCount {
		q += "\nORDER BY count DESC"
	}
	return q
}

func GroupBySum(table, groupColumn, sumColumn string) string {
	return fmt.Sprintf("SELECT %s, SUM(%s) as total\nFROM %s\nGROUP BY %s\nORDER BY total DESC",
		groupColumn, sumColumn, table, groupColumn)
}

func GroupByAvg(table, groupColumn, avgColumn string) string {
	return fmt.Sprintf("SELECT %s, AVG(%s) as average\nFROM %s\nGROUP BY %s\nORDER BY average DESC",
		groupColumn, avgColumn, table, groupColumn)
}

// TopN returns the first n rows ordered by column, descending unless
// ascending is set.
func TopN(table, orderColumn string, n int, ascending bool) string {
	dir := "DESC"
	if ascending {
		dir = "ASC"
	}
	return fmt.Sprintf("SELECT * FROM %s\nORDER BY %s %s\nLIMIT %d", table, orderColumn, dir, n)
}

// FindDuplicates groups by the key columns and keeps groups seen more than once.
func FindDuplicates(table string, columns []string) string {
	cols := strings.Join(columns, ", ")
	return fmt.Sprintf("SELECT %s, COUNT(*) as duplicate_count\nFROM %s\nGROUP BY %s\nHAVING COUNT(*) > 1\nORDER BY duplicate_count DESC",
		cols, table, cols)
}

// FindMissing selects rows whose column is NULL or the empty string.
func FindMissing(table, column string) string {
	return fmt.Sprintf("SELECT * FROM %s\nWHERE %s IS NULL OR %s = ''", table, column, column)
}

// BasicStats computes count, min, max, average and sum over non-null values.
func BasicStats(table, column string) string {
	return fmt.Sprintf(`SELECT
    COUNT(%[2]s) as count,
    MIN(%[2]s) as minimum,
    MAX(%[2]s) as maximum,
    AVG(%[2]s) as average,
    SUM(%[2]s) as total
FROM %[1]s
WHERE %[2]s IS NOT NULL`, table, column)
}

// Join joins two tables on a column both share. An empty join type is INNER.
func Join(left, right, column string, joinType JoinType) string {
	if joinType == "" {
		joinType = InnerJoin
	}
	return fmt.Sprintf("SELECT t1.*, t2.*\nFROM %s t1\n%s JOIN %s t2 ON t1.%s = t2.%s",
		left, joinType, right, column, column)
}

// PivotSummary spreads valueColumn into two buckets of bucketColumn using
// conditional aggregation. Empty buckets default to "value1" and "value2";
// an empty aggregation defaults to SUM.
func PivotSummary(table, rowColumn, bucketColumn, valueColumn string, buckets [2]string, aggregation string) string {
	if buckets[0] == "" {
		buckets[0] = "value1"
	}
	if buckets[1] == "" {
		buckets[1] = "value2"
	}
	if aggregation == "" {
		aggregation = "SUM"
	}
	return fmt.Sprintf(`SELECT %[2]s,
       %[6]s(CASE WHEN %[3]s = '%[5]s' THEN %[4]s END) as "%[5]s",
       %[6]s(CASE WHEN %[3]s = '%[7]s' THEN %[4]s END) as "%[7]s"
FROM %[1]s
GROUP BY %[2]s`, table, rowColumn, bucketColumn, valueColumn, buckets[0], aggregation, buckets[1])
}
