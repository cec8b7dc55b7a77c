// root.go defines the root command and CLI execution entry point.
//
// Design: PersistentPreRunE handles store initialisation lazily - only
// commands that touch the database seed the working copy and open it. This
// lets bootstrap commands (guide, config, version) run without a base
// database existing. The noStoreCommands map controls which commands skip
// initialisation.

package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/jpl-au/chinookd/internal/audit"
	"github.com/jpl-au/chinookd/internal/config"
	"github.com/jpl-au/chinookd/internal/store"
	"github.com/spf13/cobra"
)

// Shared state for database-backed commands, populated by initStore.
var (
	cfg *config.Config
	st  *store.Store

	// Resolved dataset paths, for commands that compare against or
	// re-seed from the base file.
	resolvedBase       string
	resolvedWorkingDir string
)

// noStoreCommands run without seeding or opening the working copy. The
// bare root invocation only prints help, so it skips too.
var noStoreCommands = map[string]bool{
	"chinookd":   true,
	"guide":      true,
	"config":     true,
	"version":    true,
	"help":       true,
	"completion": true,
}

var rootCmd = &cobra.Command{
	Use:   "chinookd",
	Short: "Guarded MCP tool server for the Chinook sample database",
	Long: `An MCP (Model Context Protocol) tool server over a disposable working
copy of the Chinook database. Agents read and write the copy through
guarded SQL and fixed domain operations; the base file is never touched.`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if output != "" && !slices.Contains(validOutputFormats, output) {
			return fmt.Errorf("invalid output format: %s (valid: %v)", output, validOutputFormats)
		}

		if !noStoreCommands[topLevelCmdName(cmd)] {
			if err := initStore(cmd); err != nil {
				if JSON() {
					_ = PrintJSON(map[string]string{"error": err.Error()})
					cmd.SilenceErrors = true
					cmd.SilenceUsage = true
				}
				return fmt.Errorf("initialise database: %w", err)
			}
		}

		return nil
	},
}

// topLevelCmdName returns the name of the top-level command (direct child of root).
// For "chinookd customer add ...", returns "customer".
func topLevelCmdName(cmd *cobra.Command) string {
	for cmd.HasParent() && cmd.Parent().HasParent() {
		cmd = cmd.Parent()
	}
	return cmd.Name()
}

// initStore loads config, seeds the working copy and opens it. The base
// file must exist and the seeded copy must pass an integrity check before
// any command sees the store.
func initStore(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}

	base := cfg.BasePath()
	if baseFlag != "" {
		base = baseFlag
	}
	workingDir := cfg.WorkingDir()
	if dirFlag != "" {
		workingDir = dirFlag
	}
	persist := cfg.Persist()
	if cmd.Flags().Changed("persist") {
		persist = persistFlag
	}

	setLogLevel(cfg.Level())

	working, err := store.EnsureWorkingCopy(base, workingDir, persist)
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

	if err := s.IntegrityCheck(cmd.Context()); err != nil {
		_ = s.Close()
		return err
	}

	st = s
	resolvedBase = base
	resolvedWorkingDir = workingDir
	audit.SetDataset(working)
	slog.Debug("working copy ready", "base", base, "working", working, "persist", persist)
	return nil
}

// setLogLevel configures the default slog logger on stderr. Stdout stays
// clean for command output and the stdio MCP transport.
func setLogLevel(level string) {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}

// Execute runs the root command and handles process lifecycle.
// Opens audit logging, executes the command, and closes the store before
// exit. Exit code 1 indicates error.
func Execute() {
	// Initialise audit logger (warn if it fails, but continue)
	if err := audit.Open(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: audit log unavailable: %v\n", err)
	}
	defer audit.Close()

	err := rootCmd.Execute()

	if st != nil {
		if closeErr := st.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", closeErr)
		}
	}

	if err != nil {
		os.Exit(1)
	}
}

// RootCmd returns the root command for testing.
func RootCmd() *cobra.Command {
	return rootCmd
}
