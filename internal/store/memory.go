package store

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/otw-tahir/otw-string-finder/pkg/types"
)

const (
	// DefaultRetention is the retention window for session state.
	DefaultRetention = time.Hour

	// DefaultCleanupInterval controls how often expired keys are reaped.
	DefaultCleanupInterval = 10 * time.Minute
)

// Memory is an in-process Store backed by go-cache. Every key carries the
// retention TTL; expiry is the implicit cleanup path when callers never
// issue an explicit one.
type Memory struct {
	cache *gocache.Cache
}

// NewMemory creates a Memory store with the given retention window. A zero
// retention falls back to DefaultRetention.
func NewMemory(retention time.Duration) *Memory {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Memory{cache: gocache.New(retention, DefaultCleanupInterval)}
}

func (m *Memory) SaveSession(sess *types.Session) error {
	// Store a copy so callers mutating their session between batches cannot
	// bypass the read-modify-write path.
	cp := *sess
	cp.Tables = append([]types.TableDescriptor(nil), sess.Tables...)
	m.cache.Set(sessionKey(sess.ID), &cp, gocache.DefaultExpiration)

	// Set slides the session key's expiry, so slide the session's pages and
	// chunks with it: a live session must never outlast its own unit list or
	// early result chunks.
	for p := 0; p < sess.UnitPages; p++ {
		m.refresh(unitsKey(sess.ID, p))
	}
	for c := 0; c < sess.ResultChunks; c++ {
		m.refresh(resultsKey(sess.ID, c))
	}
	return nil
}

// refresh re-sets an existing key so its TTL restarts alongside the session
// record's.
func (m *Memory) refresh(key string) {
	if v, found := m.cache.Get(key); found {
		m.cache.Set(key, v, gocache.DefaultExpiration)
	}
}

func (m *Memory) Session(id string) (*types.Session, error) {
	v, found := m.cache.Get(sessionKey(id))
	if !found {
		return nil, types.ErrSessionNotFound
	}
	sess, ok := v.(*types.Session)
	if !ok {
		return nil, types.ErrSessionNotFound
	}
	cp := *sess
	cp.Tables = append([]types.TableDescriptor(nil), sess.Tables...)
	return &cp, nil
}

func (m *Memory) SaveUnitPage(id string, page int, units []string) error {
	m.cache.Set(unitsKey(id, page), units, gocache.DefaultExpiration)
	return nil
}

func (m *Memory) UnitPage(id string, page int) ([]string, error) {
	v, found := m.cache.Get(unitsKey(id, page))
	if !found {
		return nil, types.ErrSessionNotFound
	}
	units, _ := v.([]string)
	return units, nil
}

func (m *Memory) SaveResultChunk(id string, chunk int, records []types.MatchRecord) error {
	m.cache.Set(resultsKey(id, chunk), records, gocache.DefaultExpiration)
	return nil
}

func (m *Memory) ResultChunk(id string, chunk int) ([]types.MatchRecord, error) {
	v, found := m.cache.Get(resultsKey(id, chunk))
	if !found {
		return nil, nil
	}
	records, _ := v.([]types.MatchRecord)
	return records, nil
}

func (m *Memory) Purge(id string, unitPages, resultChunks int) {
	m.cache.Delete(sessionKey(id))
	for p := 0; p < unitPages; p++ {
		m.cache.Delete(unitsKey(id, p))
	}
	for c := 0; c < resultChunks; c++ {
		m.cache.Delete(resultsKey(id, c))
	}
}
