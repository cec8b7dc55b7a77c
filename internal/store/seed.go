// seed.go implements the working-copy lifecycle: seeding the mutable
// working database from the immutable base file, and verifying it before
// the server starts taking requests.
//
// Design: the base file is never opened for writing. All mutations target
// the working copy, so a restart with persistence disabled discards every
// change by re-copying the base. With persistence enabled an existing
// working copy is reused and only seeded when absent.

package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// EnsureWorkingCopy guarantees a working database exists under workingDir
// and returns its path. When persist is false the working file is always
// overwritten with a fresh copy of base; when true an existing working file
// is reused. The working directory is created if missing. A missing or
// unreadable base file is fatal - the server cannot start without it.
func EnsureWorkingCopy(base, workingDir string, persist bool) (string, error) {
	if err := os.MkdirAll(workingDir, 0755); err != nil {
		return "", fmt.Errorf("create working directory %s: %w", workingDir, err)
	}

	working := filepath.Join(workingDir, workingName(base))

	if persist {
		if _, err := os.Stat(working); err == nil {
			return working, nil
		}
	}

	if err := copyFile(base, working); err != nil {
		return "", fmt.Errorf("seed working copy from %s: %w", base, err)
	}
	return working, nil
}

// workingName derives the working file name from the base file name:
// chinook.db becomes chinook.work.db.
func workingName(base string) string {
	name := filepath.Base(base)
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".work" + ext
}

// copyFile copies src to dst, truncating dst if it exists. Stale WAL and
// shm files from a previous session are removed so the fresh copy is not
// recovered against an old journal.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	for _, sidecar := range []string{dst + "-wal", dst + "-shm"} {
		if err := os.Remove(sidecar); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale %s: %w", sidecar, err)
		}
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// IntegrityCheck verifies the working copy is structurally sound before the
// server accepts requests. Runs PRAGMA integrity_check and a smoke query
// over sqlite_master; any result other than "ok" is fatal at startup.
func (s *Store) IntegrityCheck(ctx context.Context) error {
	var result string
	if err := s.db.QueryRowContext(ctx, `PRAGMA integrity_check`).Scan(&result); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}

	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`).Scan(&n)
	if err != nil {
		return fmt.Errorf("count tables: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("working copy contains no tables")
	}
	return nil
}
