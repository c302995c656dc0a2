package bridge

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by every operation on a closed bridge.
var ErrClosed = errors.New("bridge is closed")

// ErrNotLoaded indicates an operation that needs loaded datasets ran before LoadDatasets.
var ErrNotLoaded = errors.New("datasets not loaded")

var errNotConnected = errors.New("database connection not established")

// NotFoundError indicates a missing source document, dataset or table.
type NotFoundError struct {
	Kind string // "document", "dataset" or "table"
	Name string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %q not found: %v", e.Kind, e.Name, e.Err)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// QueryError wraps an engine failure for malformed text, an unknown table
// or column, or a type mismatch.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// ConnectionError indicates the relational engine could not be reached.
type ConnectionError struct {
	DSN string
	Err error
}

func (e *ConnectionError) Error() string {
	if e.DSN != "" {
		return fmt.Sprintf("engine unreachable at %s: %v", e.DSN, e.Err)
	}
	return fmt.Sprintf("engine unreachable: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IOError reports a failed load, persist or backup of a document.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
