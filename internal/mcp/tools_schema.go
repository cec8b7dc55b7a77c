// tools_schema.go implements the MCP tools for schema introspection.
//
// These tools are pure reads over catalogue metadata - they never touch
// table data through user-supplied SQL, so they sit outside the guarded
// query paths.

package mcp

import (
	"context"

	"github.com/jpl-au/chinookd/internal/audit"
	"github.com/mark3labs/mcp-go/mcp"
)

// listTables handles list_tables tool calls.
func (h *handlers) listTables(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var err error
	l := audit.Event("mcp:list_tables", "schema")
	defer func() { l.Write(err) }()

	tables, err := h.st.Tables(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	l.Detail("count", len(tables))
	return jsonResult(map[string]any{"tables": tables})
}

// getTableInfo handles get_table_info tool calls. An unknown table is a
// "not found" tool error, not a protocol failure.
func (h *handlers) getTableInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table, err := req.RequireString("table")
	if err != nil {
		return mcp.NewToolResultError("table is required"), nil
	}

	l := audit.Event("mcp:get_table_info", "schema").Table(table)
	defer func() { l.Write(err) }()

	info, err := h.st.TableInfo(ctx, table)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(info)
}
