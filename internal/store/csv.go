package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/sheetql-cli/internal/dataset"
	"github.com/KaramelBytes/sheetql-cli/internal/utils"
)

// csvStore holds exactly one dataset, named after the file stem.
type csvStore struct{}

func (csvStore) CanHandle(path string) bool {
	name := strings.ToLower(path)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func delimiterFor(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func (csvStore) Read(path string) (*dataset.Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.Comma = delimiterFor(path)

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, rec)
	}
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	set := dataset.NewSet()
	set.Put(name, sheetDataset(name, rows))
	return set, nil
}

func (csvStore) Write(path string, set *dataset.Set) error {
	if set.Len() != 1 {
		return fmt.Errorf("write csv: a csv file holds exactly one dataset, got %d", set.Len())
	}
	ds, _ := set.Get(set.Names()[0])

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = delimiterFor(path)
	if err := w.Write(ds.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	rec := make([]string, len(ds.Columns))
	for _, r := range ds.Rows {
		for j := range rec {
			rec[j] = ""
			if j < len(r) {
				rec[j] = FormatCell(r[j])
			}
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}
