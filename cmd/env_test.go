// Testing Strategy Design Decision:
//
// The cmd/ package contains CLI integration tests that exercise the full
// stack: command parsing -> working-copy seeding -> store layer -> SQLite.
// Each test environment gets its own base database, working directory and
// HOME, so tests never touch a developer's real config or audit log.

package cmd

import (
	"database/sql"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	binaryPath string
	buildOnce  sync.Once
	buildErr   error
)

// buildBinary compiles the chinookd binary once for all tests.
func buildBinary(t *testing.T) string {
	t.Helper()

	buildOnce.Do(func() {
		tmpDir, err := os.MkdirTemp("", "chinookd-test-bin-*")
		if err != nil {
			buildErr = err
			return
		}

		binaryName := "chinookd"
		if os.PathSeparator == '\\' {
			binaryName = "chinookd.exe"
		}
		binaryPath = filepath.Join(tmpDir, binaryName)

		// Find project root (parent of cmd/)
		wd := mustGetwd()
		projectRoot := filepath.Dir(wd)

		cmd := exec.Command("go", "build", "-o", binaryPath, ".")
		cmd.Dir = projectRoot
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = &buildError{err: err, output: string(out)}
			return
		}
	})

	if buildErr != nil {
		t.Fatalf("failed to build binary: %v", buildErr)
	}
	return binaryPath
}

type buildError struct {
	err    error
	output string
}

func (e *buildError) Error() string {
	return e.err.Error() + "\n" + e.output
}

func mustGetwd() string {
	dir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return dir
}

// testEnv holds test environment state.
type testEnv struct {
	t      *testing.T
	dir    string
	binary string
}

// newTestEnv creates a temporary directory holding a miniature base
// database named chinook.db. Commands run with the directory as both cwd
// and HOME.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	binary := buildBinary(t)
	dir := t.TempDir()

	createBaseDB(t, filepath.Join(dir, "chinook.db"))

	return &testEnv{t: t, dir: dir, binary: binary}
}

// createBaseDB writes the base fixture the working copy is seeded from.
func createBaseDB(t *testing.T, path string) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	stmts := []string{
		`CREATE TABLE customers (
			CustomerId INTEGER PRIMARY KEY AUTOINCREMENT,
			FirstName NVARCHAR(40) NOT NULL,
			LastName NVARCHAR(20) NOT NULL,
			City NVARCHAR(40),
			Country NVARCHAR(40),
			Email NVARCHAR(60) NOT NULL
		)`,
		`CREATE TABLE invoices (
			InvoiceId INTEGER PRIMARY KEY AUTOINCREMENT,
			CustomerId INTEGER NOT NULL,
			InvoiceDate DATETIME NOT NULL,
			BillingAddress NVARCHAR(70),
			BillingCity NVARCHAR(40),
			BillingState NVARCHAR(40),
			BillingCountry NVARCHAR(40),
			BillingPostalCode NVARCHAR(10),
			Total NUMERIC(10,2) NOT NULL
		)`,
		`CREATE TABLE tracks (
			TrackId INTEGER PRIMARY KEY AUTOINCREMENT,
			Name NVARCHAR(200) NOT NULL,
			UnitPrice NUMERIC(10,2) NOT NULL
		)`,
		`CREATE TABLE invoice_items (
			InvoiceLineId INTEGER PRIMARY KEY AUTOINCREMENT,
			InvoiceId INTEGER NOT NULL,
			TrackId INTEGER NOT NULL,
			UnitPrice NUMERIC(10,2) NOT NULL,
			Quantity INTEGER NOT NULL
		)`,
		`INSERT INTO customers (FirstName, LastName, Country, Email) VALUES
			('Luis', 'Goncalves', 'Brazil', 'luis@example.com'),
			('Helena', 'Holy', 'Czech Republic', 'helena@example.com')`,
		`INSERT INTO invoices (CustomerId, InvoiceDate, Total) VALUES
			(1, '2024-01-02 00:00:00', 9.90)`,
		`INSERT INTO tracks (Name, UnitPrice) VALUES ('For Those About To Rock', 0.99)`,
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}

// run executes chinookd with the given args and returns combined output.
func (e *testEnv) run(args ...string) string {
	e.t.Helper()
	out, err := e.runErr(args...)
	if err != nil {
		e.t.Fatalf("chinookd %v failed: %v\noutput: %s", args, err, out)
	}
	return out
}

// runErr executes chinookd and returns combined output and any error.
func (e *testEnv) runErr(args ...string) (string, error) {
	e.t.Helper()

	cmd := exec.Command(e.binary, args...)
	cmd.Dir = e.dir
	cmd.Env = append(os.Environ(), "HOME="+e.dir)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// contains checks if output contains expected string.
func (e *testEnv) contains(output, expected string) {
	e.t.Helper()
	assert.Contains(e.t, output, expected)
}

// notContains checks if output does not contain the string.
func (e *testEnv) notContains(output, unexpected string) {
	e.t.Helper()
	assert.NotContains(e.t, output, unexpected)
}
