// prompts.go implements the explain_query_purpose prompt.
//
// The explanation is deterministic and built from the same classification
// function the guarded paths use, so what the prompt says a statement will
// do always matches what the executor would decide.

package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/jpl-au/chinookd/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerPrompts adds the SQL explanation prompt.
func registerPrompts(s *server.MCPServer) {
	s.AddPrompt(
		mcp.NewPrompt("explain_query_purpose",
			mcp.WithPromptDescription("Deterministic explanation of what a SQL statement appears to do and how the server would classify it"),
			mcp.WithArgument("sql",
				mcp.ArgumentDescription("The SQL statement to explain"),
				mcp.RequiredArgument(),
			),
		),
		explainQueryPurpose,
	)
}

// explainQueryPurpose handles prompt requests.
func explainQueryPurpose(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	sql := req.Params.Arguments["sql"]

	return mcp.NewGetPromptResult(
		"SQL statement explanation",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(explain(sql))),
		},
	), nil
}

// explain renders a short statement description from its leading tokens and
// classification.
func explain(sql string) string {
	s := strings.TrimSpace(sql)
	if s == "" {
		return "Empty SQL."
	}

	head := strings.Join(strings.Fields(s)[:min(6, len(strings.Fields(s)))], " ")

	switch store.Classify(s) {
	case store.Read:
		return fmt.Sprintf("This appears to be a SELECT query (starts with: %q). It reads data without modifying the database and would be accepted by run_sql.", head)
	case store.Write:
		return fmt.Sprintf("This appears to be a WRITE statement (starts with: %q). It modifies data and would be accepted by run_sql_write inside a transaction.", head)
	default:
		return fmt.Sprintf("This looks like a SQL statement (starts with: %q), but it is neither a single SELECT nor a single INSERT/UPDATE/DELETE/REPLACE, so both guarded paths would reject it.", head)
	}
}
