//go:build !sqlite_cgo

package store

import (
	_ "modernc.org/sqlite" // Pure-Go SQLite driver (default build)
)

// driverName selects the registered database/sql driver.
// The default build uses the cgo-free modernc driver; build with
// -tags sqlite_cgo to use mattn/go-sqlite3 instead.
const driverName = "sqlite"
