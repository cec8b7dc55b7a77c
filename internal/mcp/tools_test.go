package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/jpl-au/chinookd/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupHandlers opens a store over a miniature database and returns the
// handler set the server would register.
func setupHandlers(t *testing.T) *handlers {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)

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
		`CREATE TABLE invoice_items (
			InvoiceLineId INTEGER PRIMARY KEY AUTOINCREMENT,
			InvoiceId INTEGER NOT NULL,
			TrackId INTEGER NOT NULL,
			UnitPrice NUMERIC(10,2) NOT NULL,
			Quantity INTEGER NOT NULL
		)`,
		`INSERT INTO customers (FirstName, LastName, Country, Email) VALUES
			('Luis', 'Goncalves', 'Brazil', 'luis@example.com')`,
		`INSERT INTO invoices (CustomerId, InvoiceDate, Total) VALUES
			(1, '2024-01-02 00:00:00', 9.90)`,
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	s, err := store.Open(path, store.NewOptions())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return &handlers{st: s}
}

// textOf extracts the text payload of a tool result.
func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func TestListTablesTool(t *testing.T) {
	h := setupHandlers(t)

	res, err := h.listTables(context.Background(), toolRequest(nil))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out struct {
		Tables []store.TableCount `json:"tables"`
	}
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &out))
	assert.Len(t, out.Tables, 3)
}

func TestGetTableInfoTool(t *testing.T) {
	h := setupHandlers(t)
	ctx := context.Background()

	t.Run("known table", func(t *testing.T) {
		res, err := h.getTableInfo(ctx, toolRequest(map[string]any{"table": "customers"}))
		require.NoError(t, err)
		require.False(t, res.IsError)
		assert.Contains(t, textOf(t, res), "CustomerId")
	})

	t.Run("unknown table is a tool error", func(t *testing.T) {
		res, err := h.getTableInfo(ctx, toolRequest(map[string]any{"table": "nope"}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})
}

func TestRunSQLTool(t *testing.T) {
	h := setupHandlers(t)
	ctx := context.Background()

	t.Run("select with params", func(t *testing.T) {
		res, err := h.runSQL(ctx, toolRequest(map[string]any{
			"query":  "SELECT FirstName FROM customers WHERE Country = ?",
			"params": []any{"Brazil"},
		}))
		require.NoError(t, err)
		require.False(t, res.IsError)
		assert.Contains(t, textOf(t, res), "Luis")
	})

	t.Run("write is rejected as a tool error", func(t *testing.T) {
		res, err := h.runSQL(ctx, toolRequest(map[string]any{
			"query": "DELETE FROM customers",
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})

	t.Run("missing query", func(t *testing.T) {
		res, err := h.runSQL(ctx, toolRequest(map[string]any{}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})
}

func TestRunSQLWriteTool(t *testing.T) {
	h := setupHandlers(t)
	ctx := context.Background()

	t.Run("update reports affected rows", func(t *testing.T) {
		res, err := h.runSQLWrite(ctx, toolRequest(map[string]any{
			"query":  "UPDATE customers SET City = ? WHERE CustomerId = ?",
			"params": []any{"Rio", float64(1)},
		}))
		require.NoError(t, err)
		require.False(t, res.IsError)

		var out map[string]int64
		require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &out))
		assert.EqualValues(t, 1, out["affected_rows"])
	})

	t.Run("select is rejected", func(t *testing.T) {
		res, err := h.runSQLWrite(ctx, toolRequest(map[string]any{
			"query": "SELECT 1",
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})
}

func TestCreateInvoiceTool(t *testing.T) {
	h := setupHandlers(t)
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		res, err := h.createInvoice(ctx, toolRequest(map[string]any{
			"customer_id": float64(1),
			"items": []any{
				map[string]any{"track_id": float64(1), "unit_price": 0.99, "quantity": float64(2)},
			},
		}))
		require.NoError(t, err)
		require.False(t, res.IsError)

		var receipt store.InvoiceReceipt
		require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &receipt))
		assert.InDelta(t, 1.98, receipt.Total, 0.001)
		assert.Positive(t, receipt.InvoiceID)
	})

	t.Run("missing items", func(t *testing.T) {
		res, err := h.createInvoice(ctx, toolRequest(map[string]any{
			"customer_id": float64(1),
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})
}

func TestReadSchemaResource(t *testing.T) {
	h := setupHandlers(t)

	contents, err := h.readSchema(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, schemaURI, text.URI)
	assert.Equal(t, "application/json", text.MIMEType)

	var schema store.Schema
	require.NoError(t, json.Unmarshal([]byte(text.Text), &schema))
	assert.Len(t, schema.Tables, 3)
}
