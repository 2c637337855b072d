// Package store persists session records, unit-list pages and result chunks
// in a key-value store with per-key TTL. Search state is a time-boxed cache,
// not permanent storage: everything written here expires after the retention
// window and cleanup merely accelerates that.
//
// Both the unit list and the result set are chunked into fixed-size pages so
// no single read or write grows with the size of the corpus or the result
// volume. The session record carries the page counters; readers never scan
// the keyspace.
package store

import (
	"fmt"

	"github.com/otw-tahir/otw-string-finder/pkg/types"
)

// Store is the persistence contract consumed by the session manager. Write
// failures are fatal for the session issuing them.
type Store interface {
	// SaveSession persists the full session record under its id.
	SaveSession(sess *types.Session) error
	// Session retrieves a session by id; types.ErrSessionNotFound when the
	// id is unknown or the record has expired.
	Session(id string) (*types.Session, error)

	// SaveUnitPage persists one fixed-size page of the unit list.
	SaveUnitPage(id string, page int, units []string) error
	// UnitPage retrieves one page of the unit list.
	UnitPage(id string, page int) ([]string, error)

	// SaveResultChunk appends one batch's match records as a new chunk.
	// Chunks are append-only and never rewritten.
	SaveResultChunk(id string, chunk int, records []types.MatchRecord) error
	// ResultChunk retrieves one result chunk; a missing (expired) chunk
	// returns an empty slice, not an error.
	ResultChunk(id string, chunk int) ([]types.MatchRecord, error)

	// Purge removes the session record and every page and chunk associated
	// with it. Safe to call for ids that were never stored.
	Purge(id string, unitPages, resultChunks int)
}

func sessionKey(id string) string            { return "session:" + id }
func unitsKey(id string, page int) string    { return fmt.Sprintf("units:%s:%d", id, page) }
func resultsKey(id string, chunk int) string { return fmt.Sprintf("results:%s:%d", id, chunk) }
