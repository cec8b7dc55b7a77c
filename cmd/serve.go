// serve.go implements the "chinookd serve" command.
//
// Unlike other commands that run and exit, serve blocks handling MCP
// requests until the process is signalled. HTTP is the default transport;
// --stdio switches to a stdio session owned by the calling agent.

package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jpl-au/chinookd/internal/audit"
	"github.com/jpl-au/chinookd/internal/mcp"
	"github.com/spf13/cobra"
)

var (
	serveStdio bool
	servePort  int
	servePath  string
	serveToken string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server over Streamable HTTP (default) or stdio.

  chinookd serve                  # HTTP on :8787 at /mcp
  chinookd serve --port 9000
  chinookd serve --stdio          # stdio transport for subprocess clients

Set server.token (or CHINOOKD_TOKEN) to require bearer authentication on
the HTTP endpoint.`,
	RunE: runServe,
}

func runServe(c *cobra.Command, _ []string) error {
	if serveStdio {
		audit.Event("cli:serve", "serve").Detail("transport", "stdio").Write(nil)
		return mcp.ServeStdio(st)
	}

	port := cfg.Port()
	if c.Flags().Changed("port") {
		port = servePort
	}
	path := cfg.MCPPath()
	if c.Flags().Changed("path") {
		path = servePath
	}
	token := cfg.Token()
	if c.Flags().Changed("token") {
		token = serveToken
	}

	ctx, stop := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	audit.Event("cli:serve", "serve").
		Detail("transport", "streamable-http").
		Detail("port", port).
		Detail("auth", token != "").
		Write(nil)

	return mcp.ServeHTTP(ctx, st, mcp.HTTPOptions{
		Addr:  fmt.Sprintf(":%d", port),
		Path:  path,
		Token: token,
	})
}

func init() {
	serveCmd.Flags().BoolVar(&serveStdio, "stdio", false, "Serve over stdio instead of HTTP")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP listen port (overrides config)")
	serveCmd.Flags().StringVar(&servePath, "path", "", "HTTP mount path for the MCP endpoint (overrides config)")
	serveCmd.Flags().StringVar(&serveToken, "token", "", "Bearer token for HTTP authentication (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
