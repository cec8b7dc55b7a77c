// tools_sql.go implements the raw SQL tools: run_sql (read path) and
// run_sql_write (guarded write path).
//
// Design principles:
//
//  1. Errors return MCP tool error results rather than Go errors. The agent
//     receives actionable feedback it can parse and correct, instead of the
//     tool call failing at the protocol level.
//
//  2. Statement gating lives in the store, not here. The handlers only
//     translate between MCP arguments and store calls, so the CLI and the
//     MCP surface cannot drift apart in what they accept.

package mcp

import (
	"context"

	"github.com/jpl-au/chinookd/internal/audit"
	"github.com/mark3labs/mcp-go/mcp"
)

// runSQL handles run_sql tool calls. Anything other than a single SELECT
// fails before execution and can never mutate the working copy.
func (h *handlers) runSQL(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required"), nil
	}

	args, err := getParams(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	l := audit.Event("mcp:run_sql", "read")
	defer func() { l.Write(err) }()

	result, err := h.st.Query(ctx, query, args...)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	l.Detail("rows", result.RowCount)
	return jsonResult(result)
}

// runSQLWrite handles run_sql_write tool calls. The statement runs inside
// its own transaction; on any error nothing is committed.
func (h *handlers) runSQLWrite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required"), nil
	}

	args, err := getParams(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	l := audit.Event("mcp:run_sql_write", "write")
	defer func() { l.Write(err) }()

	affected, err := h.st.Exec(ctx, query, args...)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	l.Detail("affected", affected)
	return jsonResult(map[string]int64{"affected_rows": affected})
}
