//go:build !sqlite_cgo

package dbscan

// Compiled by default and with the purego toolchain. Uses the pure Go SQLite
// implementation, so cross-compilation needs no C compiler.
//
// Build command:
//   CGO_ENABLED=0 go build ./...

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use.
	DriverName = "sqlite"

	// BuildMode describes the current build configuration.
	BuildMode = "purego"
)
