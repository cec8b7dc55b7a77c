// resources.go implements MCP resource handlers for schema access.
//
// The schema://current resource lets an agent load the entire working-copy
// schema into context in a single read, instead of issuing one
// get_table_info call per table. Resources are read-only at the protocol
// level, which matches the introspection accessor beneath them.

package mcp

import (
	"context"

	"github.com/jpl-au/chinookd/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const schemaURI = "schema://current"

// registerResources adds the schema snapshot resource.
func registerResources(s *server.MCPServer, h *handlers) {
	s.AddResource(
		mcp.NewResource(
			schemaURI,
			"Database Schema",
			mcp.WithResourceDescription("JSON snapshot of every table: columns, types, primary keys and foreign keys"),
			mcp.WithMIMEType("application/json"),
		),
		h.readSchema,
	)
}

// readSchema handles schema://current resource requests.
func (h *handlers) readSchema(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	schema, err := h.st.SchemaSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	data, err := store.MarshalJSON(schema)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      schemaURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
