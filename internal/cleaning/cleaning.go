// Package cleaning generates mutation statements that clean a materialized
// table in place. Like package query, identifiers and values are
// interpolated verbatim.
package cleaning

import (
	"fmt"
	"strings"
)

// TextMode selects a StandardizeText transformation.
type TextMode string

const (
	Upper TextMode = "upper"
	Lower TextMode = "lower"
	Trim  TextMode = "trim"
	// Title upper-cases only the first character of the trimmed string and
	// lower-cases the rest; words after the first are not capitalized.
	Title TextMode = "title"
)

// Modes lists the supported text modes.
func Modes() []TextMode {
	return []TextMode{Upper, Lower, Trim, Title}
}

// UnsupportedModeError is returned for an unknown TextMode.
type UnsupportedModeError struct {
	Mode TextMode
}

func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("operation %q not supported, use one of %v", string(e.Mode), Modes())
}

// RemoveDuplicates deletes every row except the one with the lowest rowid
// in each group of key columns.
func RemoveDuplicates(table string, keyColumns []string) string {
	return fmt.Sprintf(`DELETE FROM %[1]s
WHERE rowid NOT IN (
    SELECT MIN(rowid)
    FROM %[1]s
    GROUP BY %[2]s
)`, table, strings.Join(keyColumns, ", "))
}

// FillNulls replaces NULL and empty values of column with def. Text
// defaults are single-quoted.
func FillNulls(table, column string, def any) string {
	value := fmt.Sprintf("%v", def)
	if s, ok := def.(string); ok {
		value = "'" + s + "'"
	}
	return fmt.Sprintf("UPDATE %[1]s\nSET %[2]s = %[3]s\nWHERE %[2]s IS NULL OR %[2]s = ''", table, column, value)
}

// StandardizeText rewrites the non-null values of column with mode.
func StandardizeText(table, column string, mode TextMode) (string, error) {
	var expr string
	switch mode {
	case Upper:
		expr = fmt.Sprintf("UPPER(TRIM(%s))", column)
	case Lower:
		expr = fmt.Sprintf("LOWER(TRIM(%s))", column)
	case Trim:
		expr = fmt.Sprintf("TRIM(%s)", column)
	case Title:
		expr = fmt.Sprintf("UPPER(SUBSTR(TRIM(%[1]s), 1, 1)) || LOWER(SUBSTR(TRIM(%[1]s), 2))", column)
	default:
		return "", &UnsupportedModeError{Mode: mode}
	}
	return fmt.Sprintf("UPDATE %[1]s\nSET %[2]s = %[3]s\nWHERE %[2]s IS NOT NULL", table, column, expr), nil
}

// SpecialCharacters are stripped by RemoveSpecialCharacters, in order.
var SpecialCharacters = []string{"!", "@", "#", "$", "%"}

// RemoveSpecialCharacters strips SpecialCharacters from column with one
// nested REPLACE per character.
func RemoveSpecialCharacters(table, column string) string {
	expr := column
	for _, ch := range SpecialCharacters {
		expr = fmt.Sprintf("REPLACE(%s, '%s', '')", expr, ch)
	}
	return fmt.Sprintf("UPDATE %[1]s\nSET %[2]s = %[3]s\nWHERE %[2]s IS NOT NULL", table, column, expr)
}
