package analytics

import (
	"context"
	"fmt"

	"github.com/KaramelBytes/sheetql-cli/internal/query"
)

// Suggestion is a described query worth running against a table.
type Suggestion struct {
	Description string `json:"description"`
	Query       string `json:"query"`
}

// Suggestions proposes an overview of the table, then a value distribution
// and a missing-value check per column, then a duplicate search across all
// columns.
func Suggestions(ctx context.Context, q Querier, table string) ([]Suggestion, error) {
	info, err := q.TableMetadata(ctx, table)
	if err != nil {
		return nil, err
	}
	columns := info.ColumnNames()
	out := make([]Suggestion, 0, 2*len(columns)+2)
	out = append(out, Suggestion{
		Description: "Data overview",
		Query:       query.SelectAll(table) + " LIMIT 10",
	})
	for _, col := range columns {
		out = append(out,
			Suggestion{
				Description: fmt.Sprintf("Value distribution for %s", col),
				Query:       query.GroupByCount(table, col, true),
			},
			Suggestion{
				Description: fmt.Sprintf("Missing values in %s", col),
				Query:       query.FindMissing(table, col),
			})
	}
	out = append(out, Suggestion{
		Description: "Full-row duplicates",
		Query:       query.FindDuplicates(table, columns),
	})
	return out, nil
}
