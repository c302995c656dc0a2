package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/sheetql-cli/internal/dataset"
	"github.com/KaramelBytes/sheetql-cli/internal/store"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

// outputFormat returns the flag value, else the configured default.
func outputFormat(flag string) string {
	if flag != "" {
		return flag
	}
	if cfg != nil && cfg.OutputFormat != "" {
		return cfg.OutputFormat
	}
	return "table"
}

func renderDataset(w io.Writer, ds *dataset.Dataset, format string) error {
	switch strings.ToLower(format) {
	case "json":
		return renderJSON(w, ds)
	case "csv":
		return renderCSV(w, ds)
	case "md", "markdown":
		return renderMarkdown(w, ds)
	case "table", "":
		return renderTable(w, ds)
	default:
		return fmt.Errorf("unsupported --format: %s (use table, csv, json or markdown)", format)
	}
}

func renderTable(w io.Writer, ds *dataset.Dataset) error {
	if ds.Len() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(ds.Columns))
	for i, c := range ds.Columns {
		header[i] = c
	}
	t.AppendHeader(header)
	for _, r := range ds.Rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = formatValue(v)
		}
		t.AppendRow(row)
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%s rows)\n", humanize.Comma(int64(ds.Len())))
	return nil
}

func renderJSON(w io.Writer, ds *dataset.Dataset) error {
	results := make([]map[string]any, 0, ds.Len())
	for _, r := range ds.Rows {
		row := make(map[string]any, len(ds.Columns))
		for i, c := range ds.Columns {
			row[c] = r[i]
		}
		results = append(results, row)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func renderCSV(w io.Writer, ds *dataset.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Columns); err != nil {
		return err
	}
	rec := make([]string, len(ds.Columns))
	for _, r := range ds.Rows {
		for i, v := range r {
			rec[i] = store.FormatCell(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func renderMarkdown(w io.Writer, ds *dataset.Dataset) error {
	if ds.Len() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(ds.Columns, " | "))
	seps := make([]string, len(ds.Columns))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))
	for _, r := range ds.Rows {
		values := make([]string, len(r))
		for i, v := range r {
			values[i] = strings.ReplaceAll(formatValue(v), "|", "/")
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return store.FormatCell(v)
}
