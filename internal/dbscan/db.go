package dbscan

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/otw-tahir/otw-string-finder/pkg/types"
)

// Open opens the corpus database with appropriate settings.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening corpus database: %w", err)
	}

	// SQLite benefits from a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return db, nil
}

// quoteIdent quotes an identifier for embedding in SQL. Identifier names
// come from database introspection, not from callers, but quoting keeps odd
// names (spaces, keywords) working.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// GetCell reads a single cell by primary key. The column must be one of the
// descriptor's text columns — the same metadata the enumerator recorded — so
// a downstream editor can only touch locations the scan could have reported.
func GetCell(ctx context.Context, db *sql.DB, td types.TableDescriptor, column, pkValue string) (string, error) {
	if err := validateColumn(td, column); err != nil {
		return "", err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		quoteIdent(column), quoteIdent(td.Name), quoteIdent(td.PKColumn))

	var value sql.NullString
	if err := db.QueryRowContext(ctx, query, pkValue).Scan(&value); err != nil {
		return "", fmt.Errorf("reading %s.%s: %w", td.Name, column, err)
	}
	return value.String, nil
}

// UpdateCell writes a single cell by primary key, validated against the same
// descriptor metadata as GetCell.
func UpdateCell(ctx context.Context, db *sql.DB, td types.TableDescriptor, column, pkValue, newValue string) error {
	if err := validateColumn(td, column); err != nil {
		return err
	}
	query := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?",
		quoteIdent(td.Name), quoteIdent(column), quoteIdent(td.PKColumn))

	if _, err := db.ExecContext(ctx, query, newValue, pkValue); err != nil {
		return fmt.Errorf("updating %s.%s: %w", td.Name, column, err)
	}
	return nil
}

func validateColumn(td types.TableDescriptor, column string) error {
	for _, c := range td.TextColumns {
		if c == column {
			return nil
		}
	}
	return fmt.Errorf("column %s is not a scanned text column of %s", column, td.Name)
}
