package analytics

import (
	"context"
	"fmt"
)

// Pareto labels.
const (
	ParetoTop    = "Top 80%"
	ParetoBottom = "Bottom 20%"
)

// ParetoEntry is one category of a Pareto ranking.
type ParetoEntry struct {
	Category             string  `json:"category"`
	Total                float64 `json:"total_value"`
	Cumulative           float64 `json:"cumulative_value"`
	CumulativePercentage float64 `json:"cumulative_percentage"`
	Label                string  `json:"pareto_category"`
}

// Top reports whether the category belongs to the leading 80%.
func (e ParetoEntry) Top() bool { return e.Label == ParetoTop }

// ParetoQuery aggregates value per category and ranks the categories by
// total, largest first. Ties are broken by category ascending and each row
// accumulates only the rows ranked before it, so tied totals never share a
// cumulative value. A category whose rounded cumulative percentage is at
// most 80 is labelled "Top 80%", every other one "Bottom 20%".
func ParetoQuery(table, categoryColumn, valueColumn string) string {
	return fmt.Sprintf(`WITH ranked_data AS (
    SELECT %[2]s, SUM(%[3]s) AS total_value
    FROM %[1]s
    GROUP BY %[2]s
),
cumulative_data AS (
    SELECT %[2]s, total_value,
        SUM(total_value) OVER (ORDER BY total_value DESC, %[2]s ASC ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW) AS cumulative_value,
        SUM(total_value) OVER () AS grand_total
    FROM ranked_data
)
SELECT %[2]s, total_value, cumulative_value,
    ROUND(100.0 * cumulative_value / grand_total, 2) AS cumulative_percentage,
    CASE WHEN ROUND(100.0 * cumulative_value / grand_total, 2) <= 80 THEN '%[4]s' ELSE '%[5]s' END AS pareto_category
FROM cumulative_data
ORDER BY total_value DESC, %[2]s ASC`, table, categoryColumn, valueColumn, ParetoTop, ParetoBottom)
}

// Pareto runs ParetoQuery and decodes the ranking.
func Pareto(ctx context.Context, q Querier, table, categoryColumn, valueColumn string) ([]ParetoEntry, error) {
	ds, err := q.RunQuery(ctx, ParetoQuery(table, categoryColumn, valueColumn))
	if err != nil {
		return nil, fmt.Errorf("pareto on %s.%s: %w", table, valueColumn, err)
	}
	out := make([]ParetoEntry, ds.Len())
	for i := range ds.Rows {
		out[i] = ParetoEntry{
			Category:             textAt(ds, i, ds.Columns[0]),
			Total:                floatAt(ds, i, "total_value"),
			Cumulative:           floatAt(ds, i, "cumulative_value"),
			CumulativePercentage: floatAt(ds, i, "cumulative_percentage"),
			Label:                textAt(ds, i, "pareto_category"),
		}
	}
	return out, nil
}
