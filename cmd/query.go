// query.go implements the "chinookd query" and "chinookd exec" commands,
// the CLI faces of the guarded read and write paths. Statement gating
// lives in the store, so these accept exactly what the MCP tools accept.

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/jpl-au/chinookd/internal/audit"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <sql> [param...]",
	Short: "Run a single SELECT against the working copy",
	Long: `Run a single SELECT statement. Additional arguments bind to ?
placeholders in order:

  chinookd query "SELECT * FROM customers WHERE Country = ?" Brazil`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

var execCmd = &cobra.Command{
	Use:   "exec <sql> [param...]",
	Short: "Run a single INSERT/UPDATE/DELETE/REPLACE in a transaction",
	Long: `Run a single write statement inside a transaction. The statement is
rolled back when it affects more rows than limits.max_write_rows.
Additional arguments bind to ? placeholders in order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func runQuery(c *cobra.Command, args []string) error {
	result, err := st.Query(c.Context(), args[0], bindArgs(args[1:])...)

	l := audit.Event("cli:query", "read")
	if result != nil {
		l.Detail("rows", result.RowCount)
	}
	l.Write(err)

	if err != nil {
		return PrintJSONError(fmt.Errorf("query: %w", err))
	}

	if JSON() {
		return PrintJSON(result)
	}

	w := tabwriter.NewWriter(Out(), 0, 4, 2, ' ', 0)
	for i, col := range result.Columns {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, col)
	}
	fmt.Fprintln(w)
	for _, row := range result.Rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprintf(w, "%v", cell)
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(Out(), "(%d rows)\n", result.RowCount)
	return nil
}

func runExec(c *cobra.Command, args []string) error {
	affected, err := st.Exec(c.Context(), args[0], bindArgs(args[1:])...)

	audit.Event("cli:exec", "write").Detail("affected", affected).Write(err)

	if err != nil {
		return PrintJSONError(fmt.Errorf("exec: %w", err))
	}

	if JSON() {
		return PrintJSON(map[string]int64{"affected_rows": affected})
	}
	fmt.Fprintf(Out(), "%d row(s) affected\n", affected)
	return nil
}

// bindArgs converts positional CLI strings to driver arguments. SQLite
// coerces text to the column's affinity, so strings bind fine against
// numeric columns.
func bindArgs(params []string) []any {
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p
	}
	return args
}

func init() {
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(execCmd)
}
