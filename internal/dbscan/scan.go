package dbscan

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/otw-tahir/otw-string-finder/internal/match"
	"github.com/otw-tahir/otw-string-finder/pkg/types"
)

// Caps bounds the work one row page may produce. Row cells can be large and
// numerous, so database scanning is disciplined more tightly than file
// scanning.
type Caps struct {
	// MaxRecords is a soft ceiling on match records emitted by this page.
	// Once reached, scanning stops at the next row boundary; rows past it
	// are left for the following page, never dropped.
	MaxRecords int
	// MaxMatchesPerColumn caps records kept per scanned column of one row.
	MaxMatchesPerColumn int
	// MaxCellBytes skips cell values above this size entirely.
	MaxCellBytes int64
}

// ScanRows reads up to limit rows of td starting at offset, in primary-key
// order, and matches every text cell. rowsSeen counts fully scanned rows, so
// the caller's next offset is offset+rowsSeen. capped reports that the record
// ceiling stopped the page early; only a short page with capped=false means
// the relation is exhausted.
func ScanRows(ctx context.Context, db *sql.DB, td types.TableDescriptor, offset int64, limit int, eng *match.Engine, caps Caps) (rowsSeen int, records []types.MatchRecord, capped bool, err error) {
	cols := make([]string, 0, len(td.TextColumns)+1)
	cols = append(cols, quoteIdent(td.PKColumn))
	for _, c := range td.TextColumns {
		cols = append(cols, quoteIdent(c))
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s LIMIT %d OFFSET %d",
		strings.Join(cols, ", "), quoteIdent(td.Name), quoteIdent(td.PKColumn), limit, offset)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return 0, nil, false, fmt.Errorf("reading %s: %w", td.Name, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		if caps.MaxRecords > 0 && len(records) >= caps.MaxRecords {
			// Ceiling reached: stop at the row boundary. A row is either
			// fully scanned or left for the next page, never half-done.
			capped = true
			break
		}

		pk := new(sql.NullString)
		dest := make([]any, 0, len(td.TextColumns)+1)
		dest = append(dest, pk)
		cells := make([]sql.NullString, len(td.TextColumns))
		for i := range cells {
			dest = append(dest, &cells[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return rowsSeen, records, false, fmt.Errorf("scanning row of %s: %w", td.Name, err)
		}
		rowsSeen++

		for i, cell := range cells {
			if !cell.Valid {
				continue
			}
			if caps.MaxCellBytes > 0 && int64(len(cell.String)) > caps.MaxCellBytes {
				// Oversized blobs are not scanned.
				continue
			}
			records = append(records, scanCell(eng, td, td.TextColumns[i], pk.String, cell.String, caps.MaxMatchesPerColumn)...)
		}
	}
	if err := rows.Err(); err != nil {
		return rowsSeen, records, capped, fmt.Errorf("reading %s: %w", td.Name, err)
	}
	return rowsSeen, records, capped, nil
}

// scanCell matches one cell value, trying the structured-value walker first.
// At most maxPerColumn records are kept; further matches in the same cell
// are discarded, since the preview already shows representative context.
func scanCell(eng *match.Engine, td types.TableDescriptor, column, pkValue, value string, maxPerColumn int) []types.MatchRecord {
	loc := func() *types.DBLocation {
		return &types.DBLocation{
			Table:    td.Name,
			Column:   column,
			PKColumn: td.PKColumn,
			PKValue:  pkValue,
		}
	}

	leaves, structured := match.Walk(value)
	if !structured {
		if !eng.Match(value) {
			return nil
		}
		return []types.MatchRecord{{
			Kind:    types.KindDatabase,
			DB:      loc(),
			Preview: eng.Preview(value),
		}}
	}

	var records []types.MatchRecord
	for _, leaf := range leaves {
		if maxPerColumn > 0 && len(records) >= maxPerColumn {
			break
		}
		if !eng.Match(leaf.Value) {
			continue
		}
		records = append(records, types.MatchRecord{
			Kind:           types.KindDatabase,
			DB:             loc(),
			Preview:        eng.Preview(leaf.Value),
			FromStructured: true,
			StructPath:     leaf.Path,
		})
	}
	return records
}
