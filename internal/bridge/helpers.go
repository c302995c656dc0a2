package bridge

import (
	"context"

	"github.com/KaramelBytes/sheetql-cli/internal/dataset"
)

// QuickQuery opens path, materializes the named sheets (all when none are
// given), runs query and releases every resource before returning.
func QuickQuery(ctx context.Context, path, query string, opt Options, sheets ...string) (*dataset.Dataset, error) {
	b := New(path, opt)
	defer b.Close()
	if err := b.Connect(ctx); err != nil {
		return nil, err
	}
	if err := b.Materialize(ctx, sheets...); err != nil {
		return nil, err
	}
	return b.RunQuery(ctx, query)
}

// UpdateWithQuery replaces sheet with the result of query and writes the
// workbook to output (the source when empty). With backup set the source is
// copied next to itself first.
func UpdateWithQuery(ctx context.Context, path, sheet, query, output string, backup bool, opt Options) error {
	b := New(path, opt)
	defer b.Close()
	if err := b.Connect(ctx); err != nil {
		return err
	}
	if _, err := b.LoadDatasets(); err != nil {
		return err
	}
	if backup {
		if _, err := b.Snapshot(""); err != nil {
			return err
		}
	}
	if err := b.Materialize(ctx); err != nil {
		return err
	}
	if err := b.ReplaceDataset(ctx, sheet, query); err != nil {
		return err
	}
	return b.Persist(output)
}
