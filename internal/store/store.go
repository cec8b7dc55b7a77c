// Package store implements the guarded data-access layer for chinookd.
// It owns the working copy of the reference database and exposes a small,
// closed set of operations: schema introspection, a read-only query path,
// a guarded transactional write path, and fixed domain helpers for the
// customer/invoice tables. Consumers (CLI and MCP server) never touch the
// database directly.
package store

import (
	"encoding/json"
	"errors"
)

// Sentinel errors returned by the guarded paths. Callers should check these
// to distinguish rejected input (client errors) from execution failures.
var (
	// ErrNotRead indicates input to the read path that is not a single
	// SELECT statement. The query was not executed.
	ErrNotRead = errors.New("only a single SELECT statement is permitted on the read path")
	// ErrNotWrite indicates input to the write path that is not a single
	// INSERT, UPDATE, DELETE or REPLACE statement. DDL and multi-statement
	// input are rejected before any transaction opens.
	ErrNotWrite = errors.New("only a single INSERT, UPDATE, DELETE or REPLACE statement is permitted on the write path")
	// ErrTableNotFound indicates an introspection request for a table that
	// does not exist in the working copy.
	ErrTableNotFound = errors.New("table not found")
	// ErrTooManyRows aborts a write whose affected-row count exceeds the
	// configured ceiling. The enclosing transaction is rolled back.
	ErrTooManyRows = errors.New("write affects too many rows")
	// ErrEmptyInvoice rejects invoice creation with no line items.
	ErrEmptyInvoice = errors.New("invoice requires at least one line item")
	// ErrInvalidItem rejects an invoice line item with a non-positive
	// quantity or missing track reference.
	ErrInvalidItem = errors.New("invalid line item")
	// ErrMissingField rejects a domain operation with a required field left
	// empty.
	ErrMissingField = errors.New("required field missing")
	// ErrInvalidEmail rejects an email value that fails format validation.
	// Validation can be disabled via Options.ValidateEmail.
	ErrInvalidEmail = errors.New("invalid email format")
)

// TableCount pairs a table name with its current row count.
type TableCount struct {
	Name     string `json:"name"`
	RowCount int64  `json:"row_count"`
}

// Column describes one column of a table as reported by PRAGMA table_info.
type Column struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	PK      bool    `json:"pk"`
	NotNull bool    `json:"not_null"`
	Default *string `json:"default"`
}

// ForeignKey describes one outgoing foreign-key edge of a table.
type ForeignKey struct {
	From     string `json:"from"`
	ToTable  string `json:"to_table"`
	ToColumn string `json:"to_column"`
}

// TableInfo is the full introspection result for a single table.
type TableInfo struct {
	Name        string       `json:"name"`
	Columns     []Column     `json:"columns"`
	ForeignKeys []ForeignKey `json:"foreign_keys"`
}

// Schema is a snapshot of every user table in the working copy. Served to
// MCP clients as the schema://current resource.
type Schema struct {
	Tables []TableInfo `json:"tables"`
}

// QueryResult holds the outcome of a read-only query: column names plus rows
// in column order. Blob cells are rendered as "<N bytes>" placeholders so the
// result is always JSON-representable.
type QueryResult struct {
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
	RowCount int      `json:"row_count"`
}

// CustomerInput carries the fields for creating a customer. FirstName,
// LastName and Email are required; City and Country are optional and stored
// as NULL when empty.
type CustomerInput struct {
	FirstName string
	LastName  string
	Email     string
	City      string
	Country   string
}

// CustomerSpend is one row of the top-customers ranking.
type CustomerSpend struct {
	CustomerID int64   `json:"customer_id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	TotalSpent float64 `json:"total_spent"`
}

// InvoiceItem is one line of an invoice to be created.
type InvoiceItem struct {
	TrackID   int64   `json:"track_id"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int64   `json:"quantity"`
}

// InvoiceReceipt is returned after an invoice has been created atomically
// with all of its line items.
type InvoiceReceipt struct {
	InvoiceID int64   `json:"invoice_id"`
	Total     float64 `json:"total"`
}

// MarshalJSON encodes a value with indentation for human-readable output.
// Use this instead of json.Marshal when the output will be displayed to
// users or returned to an LLM client.
func MarshalJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
