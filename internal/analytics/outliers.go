package analytics

import (
	"context"
	"fmt"
	"strconv"

	"github.com/KaramelBytes/sheetql-cli/internal/dataset"
)

// DefaultOutlierThreshold is the z-score above which a row is an outlier.
const DefaultOutlierThreshold = 2.0

// varianceEpsilon is the relative variance below which a column counts as
// constant.
const varianceEpsilon = "1e-12"

// Outlier labels.
const (
	OutlierLabel = "Outlier"
	NormalLabel  = "Normal"
)

// OutlierQuery scores every non-null row of column by its absolute z-score
// against the population mean and variance (E[x²]−E[x]²). When the variance
// is not above rounding noise (1e-12 of the squared mean) every row scores 0
// and is Normal. The result keeps all table columns and adds mean_value,
// std_dev, z_score and outlier_status, highest score first. A threshold <= 0 means DefaultOutlierThreshold.
func OutlierQuery(table, column string, threshold float64) string {
	if threshold <= 0 {
		threshold = DefaultOutlierThreshold
	}
	return fmt.Sprintf(`WITH stats AS (
    SELECT AVG(%[2]s) AS mean_value,
        AVG(%[2]s * %[2]s) - AVG(%[2]s) * AVG(%[2]s) AS variance
    FROM %[1]s
    WHERE %[2]s IS NOT NULL
),
scored AS (
    SELECT t.*, s.mean_value,
        CASE WHEN s.variance > %[6]s * s.mean_value * s.mean_value AND s.variance > 0
            THEN SQRT(s.variance) ELSE 0 END AS std_dev,
        CASE WHEN s.variance > %[6]s * s.mean_value * s.mean_value AND s.variance > 0
            THEN ABS(t.%[2]s - s.mean_value) / SQRT(s.variance) ELSE 0 END AS z_score
    FROM %[1]s t, stats s
    WHERE t.%[2]s IS NOT NULL
)
SELECT *, CASE WHEN z_score > %[3]s THEN '%[4]s' ELSE '%[5]s' END AS outlier_status
FROM scored
ORDER BY z_score DESC`, table, column, strconv.FormatFloat(threshold, 'f', -1, 64), OutlierLabel, NormalLabel, varianceEpsilon)
}

// Outliers runs OutlierQuery and returns the scored rows.
func Outliers(ctx context.Context, q Querier, table, column string, threshold float64) (*dataset.Dataset, error) {
	ds, err := q.RunQuery(ctx, OutlierQuery(table, column, threshold))
	if err != nil {
		return nil, fmt.Errorf("outliers on %s.%s: %w", table, column, err)
	}
	ds.Name = table + "_outliers"
	return ds, nil
}

// CountOutliers returns how many scored rows are labelled Outlier.
func CountOutliers(ds *dataset.Dataset) int {
	n := 0
	for i := range ds.Rows {
		if textAt(ds, i, "outlier_status") == OutlierLabel {
			n++
		}
	}
	return n
}
