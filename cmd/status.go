// status.go implements the "chinookd status" command, reporting how far
// the working copy has drifted from the base file: per-table row count
// deltas plus a schema diff. The base is opened read-only for the
// comparison and never modified.

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/jpl-au/chinookd/internal/audit"
	"github.com/jpl-au/chinookd/internal/diff"
	"github.com/jpl-au/chinookd/internal/store"
	"github.com/spf13/cobra"
)

// tableDelta is one row of the status report.
type tableDelta struct {
	Name        string `json:"name"`
	BaseRows    int64  `json:"base_rows"`
	WorkingRows int64  `json:"working_rows"`
	Delta       int64  `json:"delta"`
}

// statusReport is the full drift summary.
type statusReport struct {
	Base       string       `json:"base"`
	Working    string       `json:"working"`
	Tables     []tableDelta `json:"tables"`
	SchemaDiff string       `json:"schema_diff,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show working-copy drift from the base database",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(c *cobra.Command, _ []string) error {
	report, err := buildStatus(c)

	audit.Event("cli:status", "report").Write(err)

	if err != nil {
		return PrintJSONError(fmt.Errorf("status: %w", err))
	}

	if JSON() {
		return PrintJSON(report)
	}

	fmt.Fprintf(Out(), "base:    %s\nworking: %s\n\n", report.Base, report.Working)

	w := tabwriter.NewWriter(Out(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tBASE\tWORKING\tDELTA")
	for _, t := range report.Tables {
		fmt.Fprintf(w, "%s\t%d\t%d\t%+d\n", t.Name, t.BaseRows, t.WorkingRows, t.Delta)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if report.SchemaDiff != "" {
		fmt.Fprintf(Out(), "\nschema drift:\n%s", report.SchemaDiff)
	} else {
		fmt.Fprintln(Out(), "\nschema: identical")
	}
	return nil
}

func buildStatus(c *cobra.Command) (*statusReport, error) {
	ctx := c.Context()

	workingTables, err := st.Tables(ctx)
	if err != nil {
		return nil, err
	}

	baseTables, err := store.TableCountsOf(ctx, resolvedBase)
	if err != nil {
		return nil, err
	}
	baseCounts := make(map[string]int64, len(baseTables))
	for _, t := range baseTables {
		baseCounts[t.Name] = t.RowCount
	}

	report := &statusReport{Base: resolvedBase, Working: st.Path()}
	seen := make(map[string]bool, len(workingTables))
	for _, t := range workingTables {
		seen[t.Name] = true
		base := baseCounts[t.Name]
		report.Tables = append(report.Tables, tableDelta{
			Name:        t.Name,
			BaseRows:    base,
			WorkingRows: t.RowCount,
			Delta:       t.RowCount - base,
		})
	}
	// Tables dropped from the working copy still show in the report.
	for _, t := range baseTables {
		if !seen[t.Name] {
			report.Tables = append(report.Tables, tableDelta{
				Name:     t.Name,
				BaseRows: t.RowCount,
				Delta:    -t.RowCount,
			})
		}
	}

	baseSQL, err := store.SchemaSQLOf(ctx, resolvedBase)
	if err != nil {
		return nil, err
	}
	workingSQL, err := st.SchemaSQL(ctx)
	if err != nil {
		return nil, err
	}

	d := diff.Compute(baseSQL, workingSQL, resolvedBase, st.Path())
	report.SchemaDiff = d.Format()
	return report, nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
