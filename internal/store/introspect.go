// introspect.go implements schema introspection over the working copy.
//
// Separated from the query paths because introspection is pure read-only
// metadata access - it never touches table data through user-supplied SQL,
// only through PRAGMA calls with identifiers quoted by us.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Tables enumerates every user table in the working copy with its current
// row count, ordered by name. Internal sqlite_% tables are excluded.
func (s *Store) Tables(ctx context.Context) ([]TableCount, error) {
	return tableCounts(ctx, s.db)
}

// TableCountsOf reads table row counts from an arbitrary database file
// without going through a Store. The file is opened read-only so status
// can compare against the base without risk of mutating it.
func TableCountsOf(ctx context.Context, path string) ([]TableCount, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open %s read-only: %w", path, err)
	}
	defer db.Close()
	return tableCounts(ctx, db)
}

func tableCounts(ctx context.Context, db *sql.DB) ([]TableCount, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]TableCount, 0, len(names))
	for _, name := range names {
		// Identifier comes from sqlite_master, not user input; quoting
		// guards against exotic table names only.
		var count int64
		q := fmt.Sprintf(`SELECT COUNT(*) FROM %q`, name)
		if err := db.QueryRowContext(ctx, q).Scan(&count); err != nil {
			return nil, fmt.Errorf("count rows in %s: %w", name, err)
		}
		out = append(out, TableCount{Name: name, RowCount: count})
	}
	return out, nil
}

// TableInfo returns column metadata and foreign keys for a single table.
// An unknown table name yields ErrTableNotFound rather than an empty result,
// so tool callers can report "not found" distinctly.
func (s *Store) TableInfo(ctx context.Context, table string) (*TableInfo, error) {
	exists, err := s.hasTable(ctx, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}

	info := &TableInfo{Name: table}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%q)`, table))
	if err != nil {
		return nil, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			col     Column
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan column of %s: %w", table, err)
		}
		col.NotNull = notNull != 0
		col.PK = pk != 0
		if dflt.Valid {
			col.Default = &dflt.String
		}
		info.Columns = append(info.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	fks, err := s.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA foreign_key_list(%q)`, table))
	if err != nil {
		return nil, fmt.Errorf("foreign_key_list %s: %w", table, err)
	}
	defer fks.Close()

	for fks.Next() {
		var (
			id, seq                    int
			fk                         ForeignKey
			toColumn                   sql.NullString
			onUpdate, onDelete, match string
		)
		if err := fks.Scan(&id, &seq, &fk.ToTable, &fk.From, &toColumn, &onUpdate, &onDelete, &match); err != nil {
			return nil, fmt.Errorf("scan foreign key of %s: %w", table, err)
		}
		if toColumn.Valid {
			fk.ToColumn = toColumn.String
		}
		info.ForeignKeys = append(info.ForeignKeys, fk)
	}
	if err := fks.Err(); err != nil {
		return nil, err
	}

	return info, nil
}

// SchemaSnapshot returns the introspection result for every user table.
// Served to MCP clients as the schema://current resource so an agent can
// load the whole schema into context in one read.
func (s *Store) SchemaSnapshot(ctx context.Context) (*Schema, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return nil, err
	}

	schema := &Schema{Tables: make([]TableInfo, 0, len(tables))}
	for _, t := range tables {
		info, err := s.TableInfo(ctx, t.Name)
		if err != nil {
			return nil, err
		}
		schema.Tables = append(schema.Tables, *info)
	}
	return schema, nil
}

// SchemaSQL returns the concatenated CREATE statements of every user table
// and index, in sqlite_master order. Used by the status command to diff the
// working copy's schema against the base file.
func (s *Store) SchemaSQL(ctx context.Context) (string, error) {
	return schemaSQL(ctx, s.db)
}

// SchemaSQLOf reads the schema text of an arbitrary database file without
// going through a Store. The base file is opened read-only so status can
// never mutate it.
func SchemaSQLOf(ctx context.Context, path string) (string, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return "", fmt.Errorf("open %s read-only: %w", path, err)
	}
	defer db.Close()
	return schemaSQL(ctx, db)
}

func schemaSQL(ctx context.Context, db *sql.DB) (string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT sql FROM sqlite_master WHERE sql IS NOT NULL AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return "", fmt.Errorf("read schema: %w", err)
	}
	defer rows.Close()

	var out string
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", fmt.Errorf("scan schema row: %w", err)
		}
		out += stmt + ";\n"
	}
	return out, rows.Err()
}

// hasTable checks table existence, case-insensitively as a fallback so that
// agents typing "customer" still find "Customer".
func (s *Store) hasTable(ctx context.Context, name string) (bool, error) {
	return hasTable(ctx, s.db, name)
}

func hasTable(ctx context.Context, q queryer, name string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT 1 FROM sqlite_master WHERE type = 'table' AND lower(name) = lower(?) LIMIT 1`, name).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return true, nil
}

// queryer abstracts *sql.DB and *sql.Tx for helpers used in both contexts.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
