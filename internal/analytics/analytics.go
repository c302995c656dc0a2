// Package analytics generates and runs analytical queries over materialized
// sheets: Pareto ranking, z-score outlier detection, per-column data
// quality, query suggestions and period trends.
//
// Query generators return text only. The functions taking a Querier run the
// text and decode the result.
package analytics

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/sheetql-cli/internal/bridge"
	"github.com/KaramelBytes/sheetql-cli/internal/dataset"
)

// Querier runs read queries and describes tables. *bridge.Bridge satisfies it.
type Querier interface {
	RunQuery(ctx context.Context, query string) (*dataset.Dataset, error)
	TableMetadata(ctx context.Context, table string) (*bridge.TableInfo, error)
}

// quote double-quotes an identifier taken from table metadata.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// round2 rounds half away from zero to two decimals.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// scalar runs a single-value query and returns it as an integer.
func scalar(ctx context.Context, q Querier, query string) (int64, error) {
	ds, err := q.RunQuery(ctx, query)
	if err != nil {
		return 0, err
	}
	if ds.Len() == 0 || len(ds.Columns) == 0 {
		return 0, fmt.Errorf("query returned no value: %s", query)
	}
	v := ds.Rows[0][0]
	if v == nil {
		return 0, nil
	}
	n, ok := dataset.AsInt(v)
	if !ok {
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
	return n, nil
}

func floatAt(ds *dataset.Dataset, r int, col string) float64 {
	v, _ := ds.Value(r, col)
	f, _ := dataset.AsFloat(v)
	return f
}

func textAt(ds *dataset.Dataset, r int, col string) string {
	v, _ := ds.Value(r, col)
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
