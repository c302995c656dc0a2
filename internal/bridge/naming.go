package bridge

import (
	"strings"
	"unicode"
)

// DefaultTableName is used when a dataset name sanitizes to nothing.
const DefaultTableName = "unnamed_table"

// SanitizeTableName derives the table identifier for a dataset name: every
// non-word character becomes an underscore and a leading character that is
// neither a letter nor an underscore gets an underscore prefix.
func SanitizeTableName(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 1)
	for _, r := range name {
		if isWordRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return DefaultTableName
	}
	first := []rune(cleaned)[0]
	if !unicode.IsLetter(first) && first != '_' {
		cleaned = "_" + cleaned
	}
	return cleaned
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// quoteIdent double-quotes an identifier for generated DDL and DML.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
