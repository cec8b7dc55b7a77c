// tools_util.go provides helper functions for MCP tool parameter extraction.
//
// Separated to centralise the boilerplate of extracting typed parameters
// from MCP's generic argument map. Extraction is permissive for optional
// parameters (return the default on error) because an LLM omitting an
// optional parameter should not cause a cryptic type failure, but bind
// parameters that are present in the wrong shape are reported as errors
// rather than silently dropped - a query run with missing binds would
// return misleading results.

package mcp

import (
	"database/sql"
	"fmt"

	"github.com/jpl-au/chinookd/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// getString extracts a string parameter, returning the provided default if
// the parameter is missing or not a string.
func getString(req mcp.CallToolRequest, name, def string) string {
	if v, err := req.RequireString(name); err == nil {
		return v
	}
	return def
}

// getInt extracts an integer parameter. JSON numbers decode as float64, so
// we type assert to float64 and convert. Returns the default when missing
// or not a number.
func getInt(req mcp.CallToolRequest, name string, def int) int {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return def
	}
	if v, ok := args[name].(float64); ok {
		return int(v)
	}
	return def
}

// requireInt64 extracts a required integer parameter, reporting an error
// when it is missing or not a number.
func requireInt64(req mcp.CallToolRequest, name string) (int64, error) {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, ok := args[name].(float64)
	if !ok {
		return 0, fmt.Errorf("%s is required and must be a number", name)
	}
	return int64(v), nil
}

// getParams converts the optional "params" argument into database/sql bind
// arguments. A JSON array maps to positional ? placeholders; a JSON object
// maps to named :name placeholders. Absent params yield nil. Any other
// shape is an error.
func getParams(req mcp.CallToolRequest) ([]any, error) {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return nil, nil
	}
	raw, present := args["params"]
	if !present || raw == nil {
		return nil, nil
	}

	switch p := raw.(type) {
	case []any:
		return p, nil
	case map[string]any:
		out := make([]any, 0, len(p))
		for k, v := range p {
			out = append(out, sql.Named(k, v))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("params must be an array (positional) or object (named), got %T", raw)
	}
}

// jsonResult serialises any value as pretty-printed JSON and wraps it in an
// MCP text result. Errors during marshalling become MCP error results so
// every failure reaches the agent through the same channel.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := store.MarshalJSON(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
