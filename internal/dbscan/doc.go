// Package dbscan enumerates and scans the relational corpus.
//
// Enumeration inspects every relation (or a caller-supplied subset), finds
// its primary-key column and its text-bearing columns, and snapshots a row
// count for progress estimation. Relations without a single primary key are
// skipped entirely — safe cross-batch pagination needs a stable ordering
// key — as are relations with no textual columns.
//
// Scanning reads rows in primary-key order, page by page, and applies the
// match engine to every text cell. Cells holding serialized composites are
// decoded and their scalar leaves matched individually (see internal/match).
// Database scanning runs under tighter caps than file scanning because row
// cells can be large and numerous: rows per batch, records per batch,
// matches kept per column, and an absolute cell-size ceiling.
//
// # Drivers
//
// Corpus access uses database/sql with the SQLite driver selected by build
// tags:
//
//   - default / purego: modernc.org/sqlite (no C compiler)
//   - sqlite_cgo: github.com/mattn/go-sqlite3
package dbscan
