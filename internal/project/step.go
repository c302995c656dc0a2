package project

import (
	"fmt"
	"strings"
	"time"
)

// StepKind selects how a step's query is applied to the workbook.
type StepKind string

const (
	// KindReplace replaces Sheet with the query result.
	KindReplace StepKind = "replace"
	// KindMutate runs the query as a mutation against the live tables.
	KindMutate StepKind = "mutate"
	// KindQuery runs the query and stores the result under Sheet.
	KindQuery StepKind = "query"
)

// ParseKind validates a step kind given on the command line.
func ParseKind(s string) (StepKind, error) {
	switch k := StepKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindReplace, KindMutate, KindQuery:
		return k, nil
	default:
		return "", fmt.Errorf("unknown step kind %q (use replace, mutate or query)", s)
	}
}

// Step is one recorded workbook update.
type Step struct {
	ID          string    `json:"id"`
	Kind        StepKind  `json:"kind"`
	Sheet       string    `json:"sheet,omitempty"`
	Query       string    `json:"query"`
	Description string    `json:"description,omitempty"`
	AddedAt     time.Time `json:"added_at"`
}
