//go:build sqlite_cgo

package store

import (
	_ "github.com/mattn/go-sqlite3" // cgo SQLite driver
)

// driverName selects the registered database/sql driver.
// Built with -tags sqlite_cgo this uses mattn/go-sqlite3, which links
// against the system SQLite and is faster on large bulk reads.
const driverName = "sqlite3"
