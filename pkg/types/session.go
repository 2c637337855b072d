package types

import (
	"errors"
	"math"
	"time"
)

// SearchKind identifies which corpus a session scans.
type SearchKind string

const (
	KindFile     SearchKind = "file"
	KindDatabase SearchKind = "database"
)

// MatchMode selects how the search term is interpreted.
type MatchMode string

const (
	ModeLiteral MatchMode = "literal" // case-insensitive substring
	ModeRegex   MatchMode = "regex"
)

// Validate checks that the match mode is one of the supported values.
func (m MatchMode) Validate() error {
	switch m {
	case ModeLiteral, ModeRegex:
		return nil
	default:
		return errors.New("invalid match mode")
	}
}

// SessionStatus represents the lifecycle state of a search session.
type SessionStatus string

const (
	StatusRunning   SessionStatus = "running"
	StatusCompleted SessionStatus = "completed"
	StatusCancelled SessionStatus = "cancelled"
	StatusError     SessionStatus = "error"
)

// Terminal reports whether the status permits no further batch processing.
func (s SessionStatus) Terminal() bool {
	return s != StatusRunning
}

// PKKind is the value kind of a table's primary-key column.
type PKKind string

const (
	PKInteger PKKind = "integer"
	PKString  PKKind = "string"
)

// TableDescriptor describes one relation selected for scanning. Tables
// without a primary key are never described: safe cross-batch pagination
// requires a stable ordering key.
type TableDescriptor struct {
	Name        string   `json:"name"`
	PKColumn    string   `json:"pk_column"`
	PKKind      PKKind   `json:"pk_kind"`
	TextColumns []string `json:"text_columns"`
	// RowCount is a point-in-time estimate taken at scan start; the corpus
	// may drift while the session runs.
	RowCount int64 `json:"row_count"`
}

// Session is the durable record of one search. It is keyed by an opaque
// generated id and owned by the session manager; batch processing is the
// only writer while the session is running.
type Session struct {
	ID   string     `json:"id"`
	Kind SearchKind `json:"kind"`
	Term string     `json:"term"`
	Mode MatchMode  `json:"mode"`

	// Scope is the file-mode target selector: a path relative to the corpus
	// root, or empty for the whole corpus.
	Scope string `json:"scope,omitempty"`

	// Tables holds the enumerated relations for database mode, in scan order.
	Tables []TableDescriptor `json:"tables,omitempty"`

	// Cursor indexes the next unprocessed unit: a position in the unit list
	// for file mode, a position in Tables for database mode. It only moves
	// forward.
	Cursor int `json:"cursor"`
	// RowOffset is the intra-table row offset for database mode.
	RowOffset int64 `json:"row_offset,omitempty"`

	TotalUnits     int `json:"total_units"`
	ProcessedUnits int `json:"processed_units"`

	// UnitPages and ResultChunks count the store pages written for this
	// session, so reads never have to scan the keyspace.
	UnitPages    int `json:"unit_pages"`
	ResultChunks int `json:"result_chunks"`

	Status SessionStatus `json:"status"`

	// Truncated marks a session whose enumeration hit the resource budget
	// before completing; the unit list is partial, not wrong.
	Truncated bool `json:"truncated,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Progress returns the completion percentage rounded to one decimal place.
// A session with no units reports 0.
func (s *Session) Progress() float64 {
	if s.TotalUnits == 0 {
		return 0
	}
	pct := float64(s.ProcessedUnits) / float64(s.TotalUnits) * 100
	return math.Round(pct*10) / 10
}

// CurrentTable returns the name of the relation the cursor points at, or
// "completed" when every table has been exhausted.
func (s *Session) CurrentTable() string {
	if s.Cursor >= len(s.Tables) {
		return "completed"
	}
	return s.Tables[s.Cursor].Name
}

// BatchResult is the outcome of one processBatch call: the session's view of
// progress plus the match records discovered during this batch only.
type BatchResult struct {
	SessionID string        `json:"session_id"`
	Status    SessionStatus `json:"status"`
	Processed int           `json:"processed"`
	Total     int           `json:"total"`
	Progress  float64       `json:"progress"`
	// Current names the relation being scanned (database mode) or the scan
	// scope (file mode); "completed" once the session finishes.
	Current string        `json:"current"`
	Records []MatchRecord `json:"records"`
}
