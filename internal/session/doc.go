// Package session implements the search session lifecycle: creation,
// incremental batch processing, cancellation, result retrieval and cleanup.
//
// A session is created by enumerating the corpus up front (files or tables),
// then advanced one batch at a time. Each batch runs under a fresh resource
// governor and processes at least one unit before consulting it, so every
// call makes forward progress even with an exhausted budget. The session
// record, unit list and result chunks all live in the store; the manager
// itself is stateless apart from the per-session batch locks.
//
// Concurrency model: one batch per session at a time. A second processBatch
// call for the same id fails fast with types.ErrBatchInFlight instead of
// queueing. Different sessions proceed independently.
package session
