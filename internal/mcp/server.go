// Package mcp implements the Model Context Protocol server, exposing the
// guarded Chinook tool surface to LLM agents. Agents call the tools by
// name; everything they can do is bounded by the store's classification
// and transaction rules, never by trust in the agent.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jpl-au/chinookd/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is advertised to clients for capability negotiation.
const Version = "1.0.0"

// handlers provides MCP request handlers with access to the store.
type handlers struct {
	st *store.Store
}

// NewServer builds the MCP server with every tool, resource and prompt
// registered. Both transports (stdio and Streamable HTTP) serve the same
// instance, so an agent sees an identical surface either way.
func NewServer(st *store.Store) *server.MCPServer {
	h := &handlers{st: st}

	s := server.NewMCPServer(
		"chinookd",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	registerTools(s, h)
	registerResources(s, h)
	registerPrompts(s)

	return s
}

// ServeStdio runs the MCP server over stdio for subprocess clients.
// Logs go to stderr; stdout is reserved for MCP JSON-RPC messages.
func ServeStdio(st *store.Store) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	s := NewServer(st)
	slog.Info("chinookd MCP server ready", "version", Version, "transport", "stdio")

	err := server.ServeStdio(s)
	if errors.Is(err, context.Canceled) {
		slog.Info("server stopped")
		return nil
	}
	return err
}

// HTTPOptions configures Streamable HTTP serving.
type HTTPOptions struct {
	// Addr is the listen address, e.g. ":8787".
	Addr string
	// Path is the mount path for the MCP endpoint, e.g. "/mcp".
	Path string
	// Token enables bearer authentication when non-empty. Requests under
	// Path without a matching Authorization header are rejected with 401
	// before any tool runs.
	Token string
}

// ServeHTTP runs the MCP server over Streamable HTTP, blocking until ctx is
// cancelled, then shutting down gracefully. The MCP handler is mounted at
// opts.Path behind the bearer middleware; no other routes are exposed.
func ServeHTTP(ctx context.Context, st *store.Store, opts HTTPOptions) error {
	s := NewServer(st)
	streamable := server.NewStreamableHTTPServer(s, server.WithEndpointPath(opts.Path))

	mux := http.NewServeMux()
	mux.Handle(opts.Path, bearerAuth(opts.Token)(streamable))

	httpServer := &http.Server{
		Addr:              opts.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	slog.Info("chinookd MCP server ready",
		"version", Version, "transport", "streamable-http",
		"addr", opts.Addr, "path", opts.Path, "auth", opts.Token != "")

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		slog.Info("server stopped")
		return nil
	}
	return err
}

// registerTools exposes the guarded tool surface for agent invocation.
func registerTools(s *server.MCPServer, h *handlers) {
	// Schema introspection
	s.AddTool(
		mcp.NewTool("list_tables",
			mcp.WithDescription("List tables in the working database with their row counts"),
		),
		h.listTables,
	)

	s.AddTool(
		mcp.NewTool("get_table_info",
			mcp.WithDescription("Get column metadata and foreign keys for a table"),
			mcp.WithString("table", mcp.Required(), mcp.Description("Table name")),
		),
		h.getTableInfo,
	)

	// Raw SQL, read and write paths
	s.AddTool(
		mcp.NewTool("run_sql",
			mcp.WithDescription("Execute a single SELECT statement (read-only). Any other statement kind is rejected."),
			mcp.WithString("query", mcp.Required(), mcp.Description("A single SELECT statement")),
			mcp.WithObject("params", mcp.Description("Bind parameters: an object for :name placeholders or an array for ? placeholders")),
		),
		h.runSQL,
	)

	s.AddTool(
		mcp.NewTool("run_sql_write",
			mcp.WithDescription("Execute a single INSERT/UPDATE/DELETE/REPLACE statement inside a transaction. DDL and multi-statement input are rejected."),
			mcp.WithString("query", mcp.Required(), mcp.Description("A single INSERT, UPDATE, DELETE or REPLACE statement")),
			mcp.WithObject("params", mcp.Description("Bind parameters: an object for :name placeholders or an array for ? placeholders")),
		),
		h.runSQLWrite,
	)

	// Customers and sales
	s.AddTool(
		mcp.NewTool("top_customers",
			mcp.WithDescription("Top N customers ranked by total invoice amount"),
			mcp.WithNumber("limit", mcp.Description("Number of customers to return, 1-100 (default 5)")),
		),
		h.topCustomers,
	)

	s.AddTool(
		mcp.NewTool("insert_customer",
			mcp.WithDescription("Insert a new customer and return its id"),
			mcp.WithString("first_name", mcp.Required(), mcp.Description("Customer first name")),
			mcp.WithString("last_name", mcp.Required(), mcp.Description("Customer last name")),
			mcp.WithString("email", mcp.Required(), mcp.Description("Customer email address")),
			mcp.WithString("city", mcp.Description("Optional city")),
			mcp.WithString("country", mcp.Description("Optional country")),
		),
		h.insertCustomer,
	)

	s.AddTool(
		mcp.NewTool("update_customer_email",
			mcp.WithDescription("Update a customer's email. Returns affected_rows: 0 means the customer was not found."),
			mcp.WithNumber("customer_id", mcp.Required(), mcp.Description("Customer id")),
			mcp.WithString("new_email", mcp.Required(), mcp.Description("New email address")),
		),
		h.updateCustomerEmail,
	)

	s.AddTool(
		mcp.NewTool("create_invoice",
			mcp.WithDescription("Create an invoice with one or more line items atomically. Each item: {track_id, unit_price, quantity > 0}."),
			mcp.WithNumber("customer_id", mcp.Required(), mcp.Description("Customer id the invoice belongs to")),
			mcp.WithArray("items", mcp.Required(), mcp.Description("Line items, each {track_id, unit_price, quantity}")),
		),
		h.createInvoice,
	)
}
