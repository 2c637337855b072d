package dbscan

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otw-tahir/otw-string-finder/internal/budget"
	"github.com/otw-tahir/otw-string-finder/internal/match"
	"github.com/otw-tahir/otw-string-finder/pkg/types"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustExec(t *testing.T, db *sql.DB, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
}

func literalEngine(t *testing.T, term string) *match.Engine {
	t.Helper()
	eng, err := match.NewEngine(term, types.ModeLiteral)
	require.NoError(t, err)
	return eng
}

func TestEnumerateTables(t *testing.T) {
	db := openTestDB(t)
	mustExec(t, db,
		`CREATE TABLE users (id INTEGER PRIMARY KEY, bio TEXT, age INTEGER)`,
		`CREATE TABLE no_pk (a TEXT)`,
		`CREATE TABLE no_text (id INTEGER PRIMARY KEY, n INTEGER)`,
		`CREATE TABLE composite (a INTEGER, b INTEGER, v TEXT, PRIMARY KEY (a, b))`,
		`CREATE TABLE pages (slug VARCHAR(64) PRIMARY KEY, body TEXT, meta JSON)`,
		`INSERT INTO users (id, bio) VALUES (1, 'x'), (2, 'y')`,
	)

	descs, truncated, err := EnumerateTables(context.Background(), db, nil, budget.Disabled())
	require.NoError(t, err)
	assert.False(t, truncated)
	require.Len(t, descs, 2)

	// Name order: pages, users.
	pages := descs[0]
	assert.Equal(t, "pages", pages.Name)
	assert.Equal(t, "slug", pages.PKColumn)
	assert.Equal(t, types.PKString, pages.PKKind)
	assert.Equal(t, []string{"body", "meta"}, pages.TextColumns)

	users := descs[1]
	assert.Equal(t, "users", users.Name)
	assert.Equal(t, "id", users.PKColumn)
	assert.Equal(t, types.PKInteger, users.PKKind)
	assert.Equal(t, []string{"bio"}, users.TextColumns)
	assert.EqualValues(t, 2, users.RowCount)
}

func TestEnumerateTables_Filter(t *testing.T) {
	db := openTestDB(t)
	mustExec(t, db,
		`CREATE TABLE users (id INTEGER PRIMARY KEY, bio TEXT)`,
		`CREATE TABLE posts (id INTEGER PRIMARY KEY, body TEXT)`,
	)

	descs, _, err := EnumerateTables(context.Background(), db, []string{"posts"}, budget.Disabled())
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, "posts", descs[0].Name)
}

func TestEnumerateTables_BudgetTruncates(t *testing.T) {
	db := openTestDB(t)
	mustExec(t, db,
		`CREATE TABLE posts (id INTEGER PRIMARY KEY, body TEXT)`,
		`CREATE TABLE users (id INTEGER PRIMARY KEY, bio TEXT)`,
	)

	// A budget at the slack margin yields as soon as one relation has been
	// admitted: the listing is partial, never empty.
	descs, truncated, err := EnumerateTables(context.Background(), db, nil, budget.New(time.Second, 0))
	require.NoError(t, err)
	assert.True(t, truncated)
	require.Len(t, descs, 1)
	assert.Equal(t, "posts", descs[0].Name)
}

func TestScanRows_BasicMatch(t *testing.T) {
	// users(id PK, bio TEXT) with one row id=7, bio="call me foo":
	// searching "foo" yields one record with full cell identity.
	db := openTestDB(t)
	mustExec(t, db,
		`CREATE TABLE users (id INTEGER PRIMARY KEY, bio TEXT)`,
		`INSERT INTO users (id, bio) VALUES (7, 'call me foo')`,
	)
	td := describeForTest(t, db, "users")

	rowsSeen, records, capped, err := ScanRows(context.Background(), db, td, 0, 10, literalEngine(t, "foo"), Caps{})
	require.NoError(t, err)
	assert.Equal(t, 1, rowsSeen)
	assert.False(t, capped)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, types.KindDatabase, rec.Kind)
	require.NotNil(t, rec.DB)
	assert.Equal(t, "users", rec.DB.Table)
	assert.Equal(t, "bio", rec.DB.Column)
	assert.Equal(t, "id", rec.DB.PKColumn)
	assert.Equal(t, "7", rec.DB.PKValue)
	assert.Equal(t, "call me <mark>foo</mark>", rec.Preview)
	assert.False(t, rec.FromStructured)
}

func TestScanRows_StructuredValue(t *testing.T) {
	// A scalar leaf three levels deep produces one record whose structural
	// path names all three levels and whose preview highlights the needle.
	db := openTestDB(t)
	mustExec(t, db,
		`CREATE TABLE options (id INTEGER PRIMARY KEY, value TEXT)`,
		`INSERT INTO options (id, value) VALUES (1, '{"a": [null, null, {"field": "needle-bearing string"}]}')`,
	)
	td := describeForTest(t, db, "options")

	_, records, _, err := ScanRows(context.Background(), db, td, 0, 10, literalEngine(t, "needle"), Caps{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.True(t, rec.FromStructured)
	assert.Equal(t, "->a[2]->field", rec.StructPath)
	assert.Contains(t, rec.Preview, "<mark>needle</mark>")
}

func TestScanRows_StructuredNoRawFallbackMatch(t *testing.T) {
	// The encoded form contains the term only inside a key; leaves do not
	// match, and the raw encoded string is not searched once decoding
	// succeeds.
	db := openTestDB(t)
	mustExec(t, db,
		`CREATE TABLE options (id INTEGER PRIMARY KEY, value TEXT)`,
		`INSERT INTO options (id, value) VALUES (1, '{"needle": "hay"}')`,
	)
	td := describeForTest(t, db, "options")

	_, records, _, err := ScanRows(context.Background(), db, td, 0, 10, literalEngine(t, "needle"), Caps{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestScanRows_PerColumnCap(t *testing.T) {
	db := openTestDB(t)
	mustExec(t, db,
		`CREATE TABLE options (id INTEGER PRIMARY KEY, value TEXT)`,
		`INSERT INTO options (id, value) VALUES (1, '["foo1", "foo2", "foo3", "foo4"]')`,
	)
	td := describeForTest(t, db, "options")

	_, records, _, err := ScanRows(context.Background(), db, td, 0, 10, literalEngine(t, "foo"),
		Caps{MaxMatchesPerColumn: 2})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestScanRows_RecordCeilingStopsAtRowBoundary(t *testing.T) {
	// Once the ceiling is reached the page stops before the next row, so
	// rowsSeen counts only fully scanned rows and a resumed page picks up
	// the remainder with nothing lost.
	db := openTestDB(t)
	mustExec(t, db, `CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)`)
	for i := 1; i <= 5; i++ {
		mustExec(t, db, fmt.Sprintf(`INSERT INTO notes (id, body) VALUES (%d, 'foo %d')`, i, i))
	}
	td := describeForTest(t, db, "notes")
	eng := literalEngine(t, "foo")

	rowsSeen, records, capped, err := ScanRows(context.Background(), db, td, 0, 10, eng,
		Caps{MaxRecords: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, rowsSeen)
	assert.True(t, capped)
	require.Len(t, records, 2)
	assert.Equal(t, "2", records[1].DB.PKValue)

	rowsSeen, records, capped, err = ScanRows(context.Background(), db, td, int64(rowsSeen), 10, eng, Caps{})
	require.NoError(t, err)
	assert.Equal(t, 3, rowsSeen)
	assert.False(t, capped)
	require.Len(t, records, 3)
	assert.Equal(t, "3", records[0].DB.PKValue)
	assert.Equal(t, "5", records[2].DB.PKValue)
}

func TestScanRows_OversizedCellSkipped(t *testing.T) {
	db := openTestDB(t)
	mustExec(t, db,
		`CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)`,
		`INSERT INTO notes (id, body) VALUES (1, 'foo ' || printf('%.*c', 2000, 'x'))`,
		`INSERT INTO notes (id, body) VALUES (2, 'small foo')`,
	)
	td := describeForTest(t, db, "notes")

	rowsSeen, records, _, err := ScanRows(context.Background(), db, td, 0, 10, literalEngine(t, "foo"),
		Caps{MaxCellBytes: 100})
	require.NoError(t, err)
	assert.Equal(t, 2, rowsSeen)
	require.Len(t, records, 1)
	assert.Equal(t, "2", records[0].DB.PKValue)
}

func TestScanRows_Pagination(t *testing.T) {
	db := openTestDB(t)
	mustExec(t, db, `CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)`)
	for i := 1; i <= 7; i++ {
		mustExec(t, db, fmt.Sprintf(`INSERT INTO notes (id, body) VALUES (%d, 'foo %d')`, i, i))
	}
	td := describeForTest(t, db, "notes")
	eng := literalEngine(t, "foo")

	var all []types.MatchRecord
	offset := int64(0)
	for {
		rowsSeen, records, _, err := ScanRows(context.Background(), db, td, offset, 3, eng, Caps{})
		require.NoError(t, err)
		all = append(all, records...)
		offset += int64(rowsSeen)
		if rowsSeen < 3 {
			break
		}
	}

	require.Len(t, all, 7)
	for i, rec := range all {
		assert.Equal(t, fmt.Sprintf("%d", i+1), rec.DB.PKValue)
	}
}

func TestGetCell_UpdateCell(t *testing.T) {
	db := openTestDB(t)
	mustExec(t, db,
		`CREATE TABLE users (id INTEGER PRIMARY KEY, bio TEXT)`,
		`INSERT INTO users (id, bio) VALUES (7, 'call me foo')`,
	)
	td := describeForTest(t, db, "users")
	ctx := context.Background()

	value, err := GetCell(ctx, db, td, "bio", "7")
	require.NoError(t, err)
	assert.Equal(t, "call me foo", value)

	require.NoError(t, UpdateCell(ctx, db, td, "bio", "7", "call me bar"))

	value, err = GetCell(ctx, db, td, "bio", "7")
	require.NoError(t, err)
	assert.Equal(t, "call me bar", value)

	// Columns outside the recorded metadata are rejected.
	_, err = GetCell(ctx, db, td, "id", "7")
	assert.Error(t, err)
	assert.Error(t, UpdateCell(ctx, db, td, "nope", "7", "x"))
}

func describeForTest(t *testing.T, db *sql.DB, name string) types.TableDescriptor {
	t.Helper()
	descs, _, err := EnumerateTables(context.Background(), db, []string{name}, budget.Disabled())
	require.NoError(t, err)
	require.Len(t, descs, 1)
	return descs[0]
}
