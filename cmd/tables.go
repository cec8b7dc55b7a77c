// tables.go implements the "chinookd tables" and "chinookd info" commands
// for schema introspection from the terminal. They mirror the list_tables
// and get_table_info MCP tools over the same store calls.

package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jpl-au/chinookd/internal/audit"
	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List tables with row counts",
	Args:  cobra.NoArgs,
	RunE:  runTables,
}

var infoCmd = &cobra.Command{
	Use:   "info <table>",
	Short: "Show columns and foreign keys for a table",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func runTables(c *cobra.Command, _ []string) error {
	tables, err := st.Tables(c.Context())

	audit.Event("cli:tables", "schema").Write(err)

	if err != nil {
		return PrintJSONError(fmt.Errorf("tables: %w", err))
	}

	if JSON() {
		return PrintJSON(map[string]any{"tables": tables})
	}

	w := tabwriter.NewWriter(Out(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tROWS")
	for _, t := range tables {
		fmt.Fprintf(w, "%s\t%d\n", t.Name, t.RowCount)
	}
	return w.Flush()
}

func runInfo(c *cobra.Command, args []string) error {
	table := args[0]
	info, err := st.TableInfo(c.Context(), table)

	audit.Event("cli:info", "schema").Table(table).Write(err)

	if err != nil {
		return PrintJSONError(fmt.Errorf("info %q: %w", table, err))
	}

	if JSON() {
		return PrintJSON(info)
	}

	w := tabwriter.NewWriter(Out(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Table: %s\n\n", info.Name)
	fmt.Fprintln(w, "COLUMN\tTYPE\tFLAGS\tDEFAULT")
	for _, col := range info.Columns {
		var flags []string
		if col.PK {
			flags = append(flags, "pk")
		}
		if col.NotNull {
			flags = append(flags, "not null")
		}
		def := ""
		if col.Default != nil {
			def = *col.Default
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", col.Name, col.Type, strings.Join(flags, ","), def)
	}
	if len(info.ForeignKeys) > 0 {
		fmt.Fprintln(w, "\nFOREIGN KEY\tREFERENCES")
		for _, fk := range info.ForeignKeys {
			fmt.Fprintf(w, "%s\t%s(%s)\n", fk.From, fk.ToTable, fk.ToColumn)
		}
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(infoCmd)
}
