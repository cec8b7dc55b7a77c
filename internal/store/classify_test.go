package store_test

import (
	"testing"

	"github.com/jpl-au/chinookd/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want store.Kind
	}{
		// Reads
		{"plain select", "SELECT * FROM customers", store.Read},
		{"lowercase select", "select 1", store.Read},
		{"leading whitespace", "   \n\t SELECT 1", store.Read},
		{"trailing semicolon", "SELECT 1;", store.Read},
		{"trailing semicolon and space", "SELECT 1 ; ", store.Read},
		{"line comment before select", "-- hello\nSELECT 1", store.Read},
		{"block comment before select", "/* hello */ SELECT 1", store.Read},
		{"stacked comments", "-- a\n/* b */\nSELECT 1", store.Read},

		// Writes
		{"insert", "INSERT INTO customers (FirstName) VALUES ('x')", store.Write},
		{"update", "UPDATE customers SET City = 'x'", store.Write},
		{"delete", "DELETE FROM customers WHERE CustomerId = 1", store.Write},
		{"replace", "REPLACE INTO customers (CustomerId, FirstName) VALUES (1, 'x')", store.Write},
		{"comment before write", "/* audit */ DELETE FROM invoices WHERE InvoiceId = 1", store.Write},

		// Forbidden
		{"empty", "", store.Forbidden},
		{"whitespace only", "   ", store.Forbidden},
		{"comment only", "-- nothing here", store.Forbidden},
		{"unterminated block comment", "/* SELECT 1", store.Forbidden},
		{"ddl create", "CREATE TABLE t (x)", store.Forbidden},
		{"ddl drop", "DROP TABLE customers", store.Forbidden},
		{"ddl alter", "ALTER TABLE customers ADD COLUMN x", store.Forbidden},
		{"pragma", "PRAGMA foreign_keys=OFF", store.Forbidden},
		{"attach", "ATTACH DATABASE 'x.db' AS x", store.Forbidden},
		{"vacuum", "VACUUM", store.Forbidden},
		{"cte", "WITH x AS (SELECT 1) SELECT * FROM x", store.Forbidden},
		{"multi-statement select", "SELECT 1; SELECT 2", store.Forbidden},
		{"chained write after read", "SELECT 1; DROP TABLE customers", store.Forbidden},
		{"chained write after write", "DELETE FROM t; DELETE FROM u", store.Forbidden},
		{"comment hiding a chain", "-- x\nSELECT 1; DELETE FROM t", store.Forbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, store.Classify(tc.sql), "sql: %q", tc.sql)
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "read", store.Read.String())
	assert.Equal(t, "write", store.Write.String())
	assert.Equal(t, "forbidden", store.Forbidden.String())
}
