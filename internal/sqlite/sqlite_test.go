package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMathFunctions(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Ping())

	var root float64
	require.NoError(t, db.QueryRow("SELECT SQRT(16.0)").Scan(&root))
	assert.Equal(t, 4.0, root)

	// window functions back the cumulative Pareto query
	var total int64
	require.NoError(t, db.QueryRow(
		"SELECT SUM(x) OVER (ORDER BY x ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW) FROM (SELECT 1 AS x UNION ALL SELECT 2) ORDER BY 1 DESC LIMIT 1",
	).Scan(&total))
	assert.Equal(t, int64(3), total)
}

func TestGetInfo(t *testing.T) {
	info := GetInfo()
	assert.Equal(t, DriverName(), info.DriverName)
	assert.Equal(t, IsCGO(), info.IsCGO)
	assert.NotEmpty(t, info.Package)
}
