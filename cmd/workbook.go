package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/KaramelBytes/sheetql-cli/internal/bridge"
	"github.com/KaramelBytes/sheetql-cli/internal/query"
	"github.com/dustin/go-humanize"
)

// openWorkbook connects a bridge to path and materializes the requested
// sheets (all when none are given). Callers must Close the bridge.
func openWorkbook(ctx context.Context, path string, sheets ...string) (*bridge.Bridge, error) {
	b := bridge.New(path, bridgeOptions())
	if err := b.Connect(ctx); err != nil {
		return nil, err
	}
	if err := b.Materialize(ctx, sheets...); err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, nil
}

// sheetForTable returns the sheet whose table name is table, or table
// itself when no loaded sheet maps to it.
func sheetForTable(b *bridge.Bridge, table string) string {
	for _, name := range b.DatasetNames() {
		if name == table || bridge.SanitizeTableName(name) == table {
			return name
		}
	}
	return table
}

// backupEnabled reports whether the configured backup policy applies.
func backupEnabled(noBackup bool) bool {
	if noBackup {
		return false
	}
	return cfg == nil || cfg.Backup
}

// fileSize formats the size of path for success lines.
func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "?"
	}
	return humanize.Bytes(uint64(info.Size()))
}

// saveTarget returns the output path, defaulting to the source document.
func saveTarget(output, source string) string {
	if output != "" {
		return output
	}
	return source
}

func printSaved(b *bridge.Bridge, path string) {
	fmt.Printf("✓ Saved %d sheet(s) to %s (%s)\n", len(b.DatasetNames()), path, fileSize(path))
}

// checkColumns rejects column flags that are not plain identifiers before
// they reach a query template.
func checkColumns(columns ...string) error {
	for _, c := range columns {
		if err := query.ValidateIdentifier(c); err != nil {
			return fmt.Errorf("column %q: %w", c, err)
		}
	}
	return nil
}
