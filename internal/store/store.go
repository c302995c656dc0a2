// Package store reads and writes named tabular datasets from and to
// documents. Each implementation handles one file format and is selected
// by file extension.
package store

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/sheetql-cli/internal/dataset"
)

// Store defines a tabular document format.
type Store interface {
	CanHandle(path string) bool
	// Read loads every sheet of the document, preserving sheet and column order.
	Read(path string) (*dataset.Set, error)
	// Write creates one sheet per entry, in set order, with a header row and
	// no index column.
	Write(path string, set *dataset.Set) error
}

var registry []Store

// Register adds a store implementation to the registry.
func Register(s Store) {
	registry = append(registry, s)
}

// ErrUnsupported indicates no registered store handles the file extension.
var ErrUnsupported = errors.New("unsupported document format")

// ForPath returns the store registered for the path's extension.
func ForPath(path string) (Store, error) {
	for _, s := range registry {
		if s.CanHandle(path) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, filepath.Ext(path))
}

// Read loads the document at path with the matching store.
func Read(path string) (*dataset.Set, error) {
	s, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	return s.Read(path)
}

// Write saves set to path with the matching store.
func Write(path string, set *dataset.Set) error {
	s, err := ForPath(path)
	if err != nil {
		return err
	}
	return s.Write(path, set)
}

func init() {
	Register(xlsxStore{})
	Register(csvStore{})
}
