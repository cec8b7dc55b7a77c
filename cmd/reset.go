// reset.go implements the "chinookd reset" command, which discards the
// working copy and re-seeds it from the base file. Useful with
// database.persist enabled, where restarts alone no longer reset state.
//
// The open store is closed before the file swap so the copy never races a
// live connection, then reopened so the integrity of the fresh copy is
// verified before the command reports success.

package cmd

import (
	"fmt"

	"github.com/jpl-au/chinookd/internal/audit"
	"github.com/jpl-au/chinookd/internal/store"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the working copy and re-seed from the base database",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func runReset(c *cobra.Command, _ []string) error {
	err := resetWorkingCopy(c)

	audit.Event("cli:reset", "seed").Detail("base", resolvedBase).Write(err)

	if err != nil {
		return PrintJSONError(fmt.Errorf("reset: %w", err))
	}

	if JSON() {
		return PrintJSON(map[string]string{"working": st.Path(), "seeded_from": resolvedBase})
	}
	fmt.Fprintf(Out(), "working copy re-seeded from %s\n", resolvedBase)
	return nil
}

func resetWorkingCopy(c *cobra.Command) error {
	if err := st.Close(); err != nil {
		return fmt.Errorf("close working copy: %w", err)
	}
	st = nil

	working, err := store.EnsureWorkingCopy(resolvedBase, resolvedWorkingDir, false)
	if err != nil {
		return err
	}

	opts := store.NewOptions()
	opts.MaxWriteRows = cfg.MaxWriteRows()
	opts.ValidateEmail = cfg.EmailValidation()

	s, err := store.Open(working, opts)
	if err != nil {
		return err
	}
	if err := s.IntegrityCheck(c.Context()); err != nil {
		_ = s.Close()
		return err
	}

	st = s
	return nil
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
