package analytics

import "fmt"

// MonthlyTrend counts, sums and averages valueColumn per calendar month of
// dateColumn. Dates must be stored as ISO text ("2006-01-02...").
func MonthlyTrend(table, dateColumn, valueColumn string) string {
	return fmt.Sprintf(`SELECT strftime('%%Y-%%m', %[2]s) AS month,
    COUNT(*) AS count,
    SUM(%[3]s) AS total,
    AVG(%[3]s) AS average
FROM %[1]s
WHERE %[2]s IS NOT NULL
GROUP BY strftime('%%Y-%%m', %[2]s)
ORDER BY month`, table, dateColumn, valueColumn)
}

// QuarterlyAnalysis sums valueColumn per year and quarter of dateColumn.
func QuarterlyAnalysis(table, dateColumn, valueColumn string) string {
	return fmt.Sprintf(`SELECT strftime('%%Y', %[2]s) AS year,
    CASE
        WHEN CAST(strftime('%%m', %[2]s) AS INTEGER) BETWEEN 1 AND 3 THEN 'Q1'
        WHEN CAST(strftime('%%m', %[2]s) AS INTEGER) BETWEEN 4 AND 6 THEN 'Q2'
        WHEN CAST(strftime('%%m', %[2]s) AS INTEGER) BETWEEN 7 AND 9 THEN 'Q3'
        ELSE 'Q4'
    END AS quarter,
    SUM(%[3]s) AS total
FROM %[1]s
WHERE %[2]s IS NOT NULL
GROUP BY year, quarter
ORDER BY year, quarter`, table, dateColumn, valueColumn)
}
