// Package sqlite opens the embedded relational engine. It supports both the
// pure Go (modernc.org/sqlite) and the CGO (mattn/go-sqlite3) drivers.
//
// Build modes:
//   - Default: pure Go modernc.org/sqlite
//   - -tags cgo_sqlite (CGO_ENABLED=1): mattn/go-sqlite3. Add the
//     sqlite_math_functions tag as well so SQRT is available to the outlier
//     queries.
//
// Use Open instead of sql.Open so the right driver name is used.
package sqlite

import (
	"database/sql"
	"fmt"
)

// DriverName returns the registered database/sql driver name.
func DriverName() string {
	return driverName
}

// DriverType returns "cgo" for mattn/go-sqlite3 and "purego" for modernc.org/sqlite.
func DriverType() string {
	return driverType
}

// IsCGO returns true if the CGO implementation is being used.
func IsCGO() bool {
	return driverType == "cgo"
}

// Open opens a database file. The pool is limited to one connection: the
// bridge is single threaded and temp-table or pragma state must not be
// spread across connections.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open %s sqlite: %w", driverType, err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// Info describes the active driver configuration.
type Info struct {
	DriverName string `json:"driver_name"`
	DriverType string `json:"driver_type"`
	IsCGO      bool   `json:"is_cgo"`
	Package    string `json:"package"`
}

// GetInfo returns information about the current SQLite configuration.
func GetInfo() Info {
	return Info{
		DriverName: driverName,
		DriverType: driverType,
		IsCGO:      IsCGO(),
		Package:    driverPackage,
	}
}
