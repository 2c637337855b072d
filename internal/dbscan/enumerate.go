package dbscan

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/otw-tahir/otw-string-finder/internal/budget"
	"github.com/otw-tahir/otw-string-finder/pkg/types"
)

// textTypeFragments identify declared column types that can carry searchable
// text: character, text, blob and structured-document types.
var textTypeFragments = []string{"CHAR", "TEXT", "CLOB", "BLOB", "JSON"}

// EnumerateTables lists the corpus relations eligible for scanning, in name
// order. filter, when non-empty, restricts enumeration to the named subset.
// The listing is budget-guarded against very large corpora: once at least one
// relation has been described, gov may stop enumeration with a partial
// descriptor list and truncated=true. The first eligible relation is always
// admitted so a new session has something to scan.
func EnumerateTables(ctx context.Context, db *sql.DB, filter []string, gov *budget.Governor) (descs []types.TableDescriptor, truncated bool, err error) {
	names, err := listTables(ctx, db)
	if err != nil {
		return nil, false, err
	}

	var wanted map[string]struct{}
	if len(filter) > 0 {
		wanted = make(map[string]struct{}, len(filter))
		for _, name := range filter {
			wanted[name] = struct{}{}
		}
	}

	for _, name := range names {
		if len(descs) > 0 && gov.ShouldYield() {
			return descs, true, nil
		}
		if wanted != nil {
			if _, ok := wanted[name]; !ok {
				continue
			}
		}

		td, ok, err := describeTable(ctx, db, name)
		if err != nil {
			// A relation that cannot be described is skipped, not fatal.
			continue
		}
		if !ok {
			continue
		}
		descs = append(descs, td)
	}
	return descs, false, nil
}

// listTables returns all user relation names in name order.
func listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing relations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// describeTable inspects column metadata for one relation. ok is false when
// the relation cannot be scanned safely: no single primary-key column, or no
// text-bearing columns.
func describeTable(ctx context.Context, db *sql.DB, name string) (types.TableDescriptor, bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(name)))
	if err != nil {
		return types.TableDescriptor{}, false, fmt.Errorf("describing %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	td := types.TableDescriptor{Name: name}
	pkCount := 0
	for rows.Next() {
		var (
			cid        int
			colName    string
			colType    string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &defaultVal, &pk); err != nil {
			return types.TableDescriptor{}, false, err
		}

		upper := strings.ToUpper(colType)
		if pk > 0 {
			pkCount++
			td.PKColumn = colName
			if strings.Contains(upper, "INT") {
				td.PKKind = types.PKInteger
			} else {
				td.PKKind = types.PKString
			}
			continue
		}

		for _, fragment := range textTypeFragments {
			if strings.Contains(upper, fragment) {
				td.TextColumns = append(td.TextColumns, colName)
				break
			}
		}
	}
	if err := rows.Err(); err != nil {
		return types.TableDescriptor{}, false, err
	}

	// Composite keys offer no single stable cursor; keyless tables offer
	// none at all. Either way the relation is skipped.
	if pkCount != 1 || len(td.TextColumns) == 0 {
		return types.TableDescriptor{}, false, nil
	}

	if err := db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(name))).Scan(&td.RowCount); err != nil {
		return types.TableDescriptor{}, false, fmt.Errorf("counting %s: %w", name, err)
	}
	return td, true, nil
}
