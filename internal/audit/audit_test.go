package audit

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupLogger points the audit database at a temp directory and opens it.
func setupLogger(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "log.db")
	orig := dbPathFunc
	dbPathFunc = func() string { return path }
	t.Cleanup(func() {
		Close()
		dbPathFunc = orig
	})

	require.NoError(t, Open())
	return path
}

type logRow struct {
	source  string
	action  string
	tbl     sql.NullString
	success int
	errText sql.NullString
	detail  sql.NullString
	dataset string
}

func readRows(t *testing.T, path string) []logRow {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query(`SELECT source, action, tbl, success, error, detail, dataset FROM log ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	var out []logRow
	for rows.Next() {
		var r logRow
		require.NoError(t, rows.Scan(&r.source, &r.action, &r.tbl, &r.success, &r.errText, &r.detail, &r.dataset))
		out = append(out, r)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestEventWrite(t *testing.T) {
	path := setupLogger(t)

	Event("mcp:run_sql", "read").Detail("rows", 3).Write(nil)
	Event("cli:exec", "write").Write(errors.New("boom"))
	Event("mcp:get_table_info", "schema").Table("customers").Write(nil)
	Close()

	rows := readRows(t, path)
	require.Len(t, rows, 3)

	assert.Equal(t, "mcp:run_sql", rows[0].source)
	assert.Equal(t, "read", rows[0].action)
	assert.Equal(t, 1, rows[0].success)
	assert.Contains(t, rows[0].detail.String, `"rows":3`)

	assert.Equal(t, 0, rows[1].success)
	assert.Equal(t, "boom", rows[1].errText.String)

	assert.Equal(t, "customers", rows[2].tbl.String)
}

func TestSetDataset(t *testing.T) {
	path := setupLogger(t)

	SetDataset("/srv/data/chinook.work.db")
	Event("cli:query", "read").Write(nil)
	Close()

	rows := readRows(t, path)
	require.Len(t, rows, 1)
	// Dataset is a 64-bit hash, hex-encoded, never the raw path.
	assert.Len(t, rows[0].dataset, 16)
	assert.NotContains(t, rows[0].dataset, "/")
}

func TestLogWithoutOpen(t *testing.T) {
	// Must not panic when the logger was never opened.
	Close()
	Event("cli:query", "read").Write(nil)
}
