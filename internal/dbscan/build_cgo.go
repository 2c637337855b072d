//go:build sqlite_cgo

package dbscan

// Compiled with the sqlite_cgo tag. Uses the C SQLite driver, which is
// faster on large corpora but needs CGO.
//
// Build command:
//   CGO_ENABLED=1 go build -tags "sqlite_cgo" ./...

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver to use.
	DriverName = "sqlite3"

	// BuildMode describes the current build configuration.
	BuildMode = "cgo"
)
