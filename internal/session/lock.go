package session

import "sync"

// batchLock guards one session's batch processing. TryAcquire is the batch
// path: the loser of a duplicate-request race fails fast instead of queueing.
// Acquire is the control path (cancel, cleanup), which must wait for any
// in-flight batch so its write is not overwritten by the batch's stale copy
// of the session record.
type batchLock struct {
	mu sync.Mutex
}

// TryAcquire attempts to acquire the lock without blocking.
// Returns true if the lock was successfully acquired, false otherwise.
func (l *batchLock) TryAcquire() bool {
	return l.mu.TryLock()
}

// Acquire blocks until the lock is held.
func (l *batchLock) Acquire() {
	l.mu.Lock()
}

// Release releases the lock.
// Must only be called after a successful TryAcquire or Acquire.
func (l *batchLock) Release() {
	l.mu.Unlock()
}

// lockRegistry hands out one batchLock per session id so concurrent batch
// calls for the same session contend while distinct sessions never do.
type lockRegistry struct {
	mu    sync.Mutex
	locks map[string]*batchLock
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{locks: make(map[string]*batchLock)}
}

func (r *lockRegistry) get(id string) *batchLock {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[id]
	if !ok {
		l = &batchLock{}
		r.locks[id] = l
	}
	return l
}

// forget drops the lock for a session that no longer exists.
func (r *lockRegistry) forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locks, id)
}
