package store

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the text form of time.Time values in CSV documents and
// engine tables.
const TimeLayout = "2006-01-02 15:04:05"

// ParseCell converts cell text to a typed value: empty text is nil, integers
// become int64, other numbers float64, everything else stays a string.
// Integers with a leading zero or an explicit plus sign are kept as text so
// identifiers such as "007" survive a round trip.
func ParseCell(s string) any {
	if s == "" {
		return nil
	}
	if looksLikeCode(s) {
		return s
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return s
}

// FormatCell renders a value as document text, the inverse of ParseCell.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(TimeLayout)
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

// cellValue converts a dataset value for a spreadsheet cell. Times pass
// through so excelize stores them as date serials with a date format.
func cellValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	default:
		return v
	}
}

// looksLikeCode reports numeric-looking text that must stay textual.
func looksLikeCode(s string) bool {
	if strings.HasPrefix(s, "+") {
		return true
	}
	t := strings.TrimPrefix(s, "-")
	return len(t) > 1 && t[0] == '0' && t[1] != '.'
}

// headerNames fills blank headers with "Unnamed: <i>" and suffixes repeated
// names with ".1", ".2", ... so every column name is unique.
func headerNames(raw []string, width int) []string {
	out := make([]string, width)
	used := make(map[string]bool, width)
	counts := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(raw) {
			name = strings.TrimSpace(raw[i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		candidate := name
		for used[candidate] {
			counts[name]++
			candidate = fmt.Sprintf("%s.%d", name, counts[name])
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out
}
