package query

import (
	"fmt"
	"regexp"
	"strings"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var allowedOperators = map[string]bool{
	"=": true, "!=": true, "<>": true, "<": true, "<=": true, ">": true, ">=": true,
	"LIKE": true, "NOT LIKE": true,
}

// InvalidInputError reports an identifier or operator rejected by Checked.
type InvalidInputError struct {
	Kind  string
	Value string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Kind, e.Value)
}

// ValidateIdentifier accepts plain SQL identifiers only.
func ValidateIdentifier(name string) error {
	if !identRe.MatchString(name) {
		return &InvalidInputError{Kind: "identifier", Value: name}
	}
	return nil
}

// Checked builds the same queries as the package functions after validating
// identifiers and operators, and escapes quotes inside string literals.
type Checked struct{}

func (Checked) idents(names ...string) error {
	for _, n := range names {
		if err := ValidateIdentifier(n); err != nil {
			return err
		}
	}
	return nil
}

func escape(v any) any {
	if s, ok := v.(string); ok {
		return strings.ReplaceAll(s, "'", "''")
	}
	return v
}

func (c Checked) SelectAll(table string) (string, error) {
	if err := c.idents(table); err != nil {
		return "", err
	}
	return SelectAll(table), nil
}

func (c Checked) SelectColumns(table string, columns []string) (string, error) {
	if err := c.idents(append([]string{table}, columns...)...); err != nil {
		return "", err
	}
	return SelectColumns(table, columns), nil
}

func (c Checked) FilterByValue(table, column string, value any, operator string) (string, error) {
	if err := c.idents(table, column); err != nil {
		return "", err
	}
	op := strings.ToUpper(strings.TrimSpace(operator))
	if op != "" && !allowedOperators[op] {
		return "", &InvalidInputError{Kind: "operator", Value: operator}
	}
	return FilterByValue(table, column, escape(value), op), nil
}

func (c Checked) FilterByValues(table, column string, values []any) (string, error) {
	if err := c.idents(table, column); err != nil {
		return "", err
	}
	escaped := make([]any, len(values))
	for i, v := range values {
		switch v.(type) {
		case string:
			escaped[i] = escape(v)
		case int, int32, int64, float32, float64:
			escaped[i] = v
		default:
			return "", &InvalidInputError{Kind: "value", Value: fmt.Sprintf("%v", v)}
		}
	}
	return FilterByValues(table, column, escaped), nil
}

func (c Checked) GroupByCount(table, column string, orderByCount bool) (string, error) {
	if err := c.idents(table, column); err != nil {
		return "", err
	}
	return GroupByCount(table, column, orderByCount), nil
}

func (c Checked) TopN(table, orderColumn string, n int, ascending bool) (string, error) {
	if err := c.idents(table, orderColumn); err != nil {
		return "", err
	}
	if n < 0 {
		return "", &InvalidInputError{Kind: "limit", Value: fmt.Sprint(n)}
	}
	return TopN(table, orderColumn, n, ascending), nil
}

func (c Checked) FindMissing(table, column string) (string, error) {
	if err := c.idents(table, column); err != nil {
		return "", err
	}
	return FindMissing(table, column), nil
}

func (c Checked) FindDuplicates(table string, columns []string) (string, error) {
	if err := c.idents(append([]string{table}, columns...)...); err != nil {
		return "", err
	}
	return FindDuplicates(table, columns), nil
}
