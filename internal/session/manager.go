package session

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/otw-tahir/otw-string-finder/internal/budget"
	"github.com/otw-tahir/otw-string-finder/internal/dbscan"
	"github.com/otw-tahir/otw-string-finder/internal/filescan"
	"github.com/otw-tahir/otw-string-finder/internal/match"
	"github.com/otw-tahir/otw-string-finder/internal/store"
	"github.com/otw-tahir/otw-string-finder/pkg/types"
)

// Config carries the per-batch resource and volume limits.
type Config struct {
	// TimeBudget bounds each batch's wall-clock time.
	TimeBudget time.Duration
	// MemoryLimit bounds heap usage during a batch; 0 means unlimited.
	MemoryLimit uint64
	// UnitPageSize is the file-mode unit-list page size.
	UnitPageSize int
	// RowPageSize is the database-mode rows-per-query page size.
	RowPageSize int
	// MaxResultsPerBatch caps match records returned by one batch.
	MaxResultsPerBatch int
	// MaxMatchesPerColumn caps records kept per scanned cell.
	MaxMatchesPerColumn int
	// MaxCellBytes skips database cells above this size.
	MaxCellBytes int64
}

// Manager owns the session lifecycle. All durable state lives in the store;
// the manager holds only configuration, corpus handles and batch locks.
type Manager struct {
	cfg   Config
	store store.Store
	files *filescan.Enumerator
	db    *sql.DB // nil when no corpus database is configured
	locks *lockRegistry
}

// NewManager creates a Manager. files may be nil when no file corpus is
// configured, db may be nil when no corpus database is configured; the
// corresponding init calls then fail.
func NewManager(cfg Config, st store.Store, files *filescan.Enumerator, db *sql.DB) *Manager {
	if cfg.UnitPageSize <= 0 {
		cfg.UnitPageSize = 500
	}
	if cfg.RowPageSize <= 0 {
		cfg.RowPageSize = 100
	}
	return &Manager{
		cfg:   cfg,
		store: st,
		files: files,
		db:    db,
		locks: newLockRegistry(),
	}
}

func (m *Manager) governor() *budget.Governor {
	return budget.New(m.cfg.TimeBudget, m.cfg.MemoryLimit)
}

// InitFileSearch creates a file-corpus session: validates the pattern,
// enumerates the scoped tree under the resource budget and persists the
// session with its chunked unit list.
func (m *Manager) InitFileSearch(scope, term string, mode types.MatchMode) (*types.Session, error) {
	if m.files == nil {
		return nil, fmt.Errorf("no file corpus configured")
	}
	if _, err := match.NewEngine(term, mode); err != nil {
		return nil, err
	}

	paths, truncated, err := m.files.Enumerate(scope, m.governor())
	if err != nil {
		return nil, err
	}

	sess := &types.Session{
		ID:         uuid.NewString(),
		Kind:       types.KindFile,
		Term:       term,
		Mode:       mode,
		Scope:      scope,
		TotalUnits: len(paths),
		Status:     types.StatusRunning,
		Truncated:  truncated,
		CreatedAt:  time.Now().UTC(),
	}
	if len(paths) == 0 {
		sess.Status = types.StatusCompleted
	}

	for start := 0; start < len(paths); start += m.cfg.UnitPageSize {
		end := start + m.cfg.UnitPageSize
		if end > len(paths) {
			end = len(paths)
		}
		if err := m.store.SaveUnitPage(sess.ID, sess.UnitPages, paths[start:end]); err != nil {
			return nil, fmt.Errorf("%w: saving unit page: %v", types.ErrStoreFailure, err)
		}
		sess.UnitPages++
	}

	if err := m.store.SaveSession(sess); err != nil {
		return nil, fmt.Errorf("%w: saving session: %v", types.ErrStoreFailure, err)
	}
	return sess, nil
}

// InitDBSearch creates a database-corpus session: validates the pattern,
// enumerates eligible tables under the resource budget and persists the
// session. tables, when non-empty, restricts the scan to the named relations.
func (m *Manager) InitDBSearch(ctx context.Context, term string, mode types.MatchMode, tables []string) (*types.Session, error) {
	if m.db == nil {
		return nil, fmt.Errorf("no corpus database configured")
	}
	if _, err := match.NewEngine(term, mode); err != nil {
		return nil, err
	}

	descs, truncated, err := dbscan.EnumerateTables(ctx, m.db, tables, m.governor())
	if err != nil {
		return nil, err
	}

	var total int64
	for _, td := range descs {
		total += td.RowCount
	}

	sess := &types.Session{
		ID:         uuid.NewString(),
		Kind:       types.KindDatabase,
		Term:       term,
		Mode:       mode,
		Tables:     descs,
		TotalUnits: int(total),
		Status:     types.StatusRunning,
		Truncated:  truncated,
		CreatedAt:  time.Now().UTC(),
	}
	if len(descs) == 0 {
		sess.Status = types.StatusCompleted
	}

	if err := m.store.SaveSession(sess); err != nil {
		return nil, fmt.Errorf("%w: saving session: %v", types.ErrStoreFailure, err)
	}
	return sess, nil
}

// ProcessFileBatch advances a file session by one batch. At least one unit is
// processed per call regardless of budget, so progress is monotone.
func (m *Manager) ProcessFileBatch(id string) (*types.BatchResult, error) {
	lock := m.locks.get(id)
	if !lock.TryAcquire() {
		return nil, types.ErrBatchInFlight
	}
	defer lock.Release()

	sess, err := m.store.Session(id)
	if err != nil {
		return nil, err
	}
	if sess.Kind != types.KindFile {
		return nil, fmt.Errorf("session %s is not a file search", id)
	}
	if sess.Status.Terminal() {
		return m.batchResult(sess, nil), nil
	}

	eng, err := m.sessionEngine(sess)
	if err != nil {
		return nil, err
	}

	gov := m.governor()
	units := &unitReader{store: m.store, id: id, pageSize: m.cfg.UnitPageSize, pageNo: -1}

	var records []types.MatchRecord
	for sess.Cursor < sess.TotalUnits {
		relPath, err := units.at(sess.Cursor)
		if err != nil {
			return nil, err
		}

		recs, scanErr := filescan.ScanFile(m.files.Root(), relPath, eng)
		if scanErr != nil {
			// Unscannable unit: log, count it processed, move on.
			log.Printf("skipping unscannable file %s: %v", relPath, scanErr)
		}
		// A unit's records are never split across batches: the result
		// ceiling below stops the batch at the next unit boundary instead.
		records = append(records, recs...)

		sess.Cursor++
		sess.ProcessedUnits++

		if gov.ShouldYield() {
			break
		}
		if m.cfg.MaxResultsPerBatch > 0 && len(records) >= m.cfg.MaxResultsPerBatch {
			break
		}
	}

	if sess.Cursor >= sess.TotalUnits {
		sess.Status = types.StatusCompleted
	}
	if err := m.finishBatch(sess, records); err != nil {
		return nil, err
	}
	return m.batchResult(sess, records), nil
}

// ProcessDBBatch advances a database session by one batch. At least one row
// page is scanned per call regardless of budget.
func (m *Manager) ProcessDBBatch(ctx context.Context, id string) (*types.BatchResult, error) {
	lock := m.locks.get(id)
	if !lock.TryAcquire() {
		return nil, types.ErrBatchInFlight
	}
	defer lock.Release()

	sess, err := m.store.Session(id)
	if err != nil {
		return nil, err
	}
	if sess.Kind != types.KindDatabase {
		return nil, fmt.Errorf("session %s is not a database search", id)
	}
	if sess.Status.Terminal() {
		return m.batchResult(sess, nil), nil
	}

	eng, err := m.sessionEngine(sess)
	if err != nil {
		return nil, err
	}

	gov := m.governor()
	caps := dbscan.Caps{
		MaxMatchesPerColumn: m.cfg.MaxMatchesPerColumn,
		MaxCellBytes:        m.cfg.MaxCellBytes,
	}

	var records []types.MatchRecord
	for sess.Cursor < len(sess.Tables) {
		td := sess.Tables[sess.Cursor]

		caps.MaxRecords = 0
		if m.cfg.MaxResultsPerBatch > 0 {
			caps.MaxRecords = m.cfg.MaxResultsPerBatch - len(records)
		}

		rowsSeen, recs, capped, scanErr := dbscan.ScanRows(ctx, m.db, td, sess.RowOffset, m.cfg.RowPageSize, eng, caps)
		if scanErr != nil {
			// Unscannable relation: log, account its remaining rows as
			// processed and move to the next table.
			log.Printf("skipping unscannable table %s: %v", td.Name, scanErr)
			if remaining := td.RowCount - sess.RowOffset; remaining > 0 {
				sess.ProcessedUnits += int(remaining)
			}
			sess.Cursor++
			sess.RowOffset = 0
		} else {
			records = append(records, recs...)
			sess.ProcessedUnits += rowsSeen
			sess.RowOffset += int64(rowsSeen)
			if !capped && rowsSeen < m.cfg.RowPageSize {
				// Short page: the relation is exhausted. A capped page is
				// short too, but its remaining rows are still unscanned and
				// the next batch resumes at the advanced offset.
				sess.Cursor++
				sess.RowOffset = 0
			}
		}

		// The row-count snapshot may drift while the session runs; progress
		// never overshoots.
		if sess.ProcessedUnits > sess.TotalUnits {
			sess.ProcessedUnits = sess.TotalUnits
		}

		if gov.ShouldYield() {
			break
		}
		if m.cfg.MaxResultsPerBatch > 0 && len(records) >= m.cfg.MaxResultsPerBatch {
			break
		}
	}

	if sess.Cursor >= len(sess.Tables) {
		sess.Status = types.StatusCompleted
		sess.ProcessedUnits = sess.TotalUnits
	}
	if err := m.finishBatch(sess, records); err != nil {
		return nil, err
	}
	return m.batchResult(sess, records), nil
}

// Cancel marks a session cancelled and returns its resulting status.
// Cancellation is best-effort and idempotent: unknown or expired ids are
// acknowledged as cancelled, terminal sessions keep their status. Results
// accumulated so far stay retrievable until cleanup or expiry.
//
// Cancel waits for any in-flight batch: writing concurrently would let the
// batch's closing save overwrite the cancellation with its stale copy of the
// session record.
func (m *Manager) Cancel(id string) (types.SessionStatus, error) {
	lock := m.locks.get(id)
	lock.Acquire()
	defer lock.Release()

	sess, err := m.store.Session(id)
	if err != nil {
		return types.StatusCancelled, nil
	}
	if !sess.Status.Terminal() {
		sess.Status = types.StatusCancelled
		if err := m.store.SaveSession(sess); err != nil {
			return "", fmt.Errorf("%w: saving session: %v", types.ErrStoreFailure, err)
		}
	}
	return sess.Status, nil
}

// GetResults returns every match record accumulated so far, in discovery
// order, along with the owning session.
func (m *Manager) GetResults(id string) (*types.Session, []types.MatchRecord, error) {
	sess, err := m.store.Session(id)
	if err != nil {
		return nil, nil, err
	}

	var records []types.MatchRecord
	for chunk := 0; chunk < sess.ResultChunks; chunk++ {
		recs, err := m.store.ResultChunk(id, chunk)
		if err != nil {
			return nil, nil, err
		}
		records = append(records, recs...)
	}
	return sess, records, nil
}

// Cleanup removes all stored state for a session. Unknown ids are a no-op:
// expiry may have beaten the caller to it. Like Cancel, it waits for any
// in-flight batch so the purged record is not resurrected by the batch's
// closing save.
func (m *Manager) Cleanup(id string) error {
	lock := m.locks.get(id)
	lock.Acquire()
	defer lock.Release()

	if sess, err := m.store.Session(id); err == nil {
		m.store.Purge(id, sess.UnitPages, sess.ResultChunks)
	}
	m.locks.forget(id)
	return nil
}

// sessionEngine rebuilds the match engine from a stored session record. A
// record that no longer compiles is corrupt; the session is marked errored so
// callers stop retrying it.
func (m *Manager) sessionEngine(sess *types.Session) (*match.Engine, error) {
	eng, err := match.NewEngine(sess.Term, sess.Mode)
	if err != nil {
		sess.Status = types.StatusError
		_ = m.store.SaveSession(sess)
		return nil, err
	}
	return eng, nil
}

// finishBatch persists the batch's records as a new result chunk and the
// updated session record. Store failures abort the batch and mark the
// session errored, best effort: the store that just failed may refuse the
// status write too.
func (m *Manager) finishBatch(sess *types.Session, records []types.MatchRecord) error {
	if len(records) > 0 {
		if err := m.store.SaveResultChunk(sess.ID, sess.ResultChunks, records); err != nil {
			sess.Status = types.StatusError
			_ = m.store.SaveSession(sess)
			return fmt.Errorf("%w: saving result chunk: %v", types.ErrStoreFailure, err)
		}
		sess.ResultChunks++
	}
	if err := m.store.SaveSession(sess); err != nil {
		return fmt.Errorf("%w: saving session: %v", types.ErrStoreFailure, err)
	}
	return nil
}

func (m *Manager) batchResult(sess *types.Session, records []types.MatchRecord) *types.BatchResult {
	current := "completed"
	if !sess.Status.Terminal() {
		if sess.Kind == types.KindDatabase {
			current = sess.CurrentTable()
		} else if sess.Scope != "" {
			current = sess.Scope
		} else {
			current = "."
		}
	}
	return &types.BatchResult{
		SessionID: sess.ID,
		Status:    sess.Status,
		Processed: sess.ProcessedUnits,
		Total:     sess.TotalUnits,
		Progress:  sess.Progress(),
		Current:   current,
		Records:   records,
	}
}

// unitReader reads units from the chunked unit list, caching the page the
// cursor currently sits in.
type unitReader struct {
	store    store.Store
	id       string
	pageSize int
	pageNo   int
	page     []string
}

func (u *unitReader) at(cursor int) (string, error) {
	pageNo := cursor / u.pageSize
	if pageNo != u.pageNo {
		page, err := u.store.UnitPage(u.id, pageNo)
		if err != nil {
			return "", err
		}
		u.pageNo = pageNo
		u.page = page
	}
	idx := cursor % u.pageSize
	if idx >= len(u.page) {
		return "", fmt.Errorf("unit cursor %d out of range for session %s", cursor, u.id)
	}
	return u.page[idx], nil
}
