// config.go implements the "chinookd config" command for configuration
// management.
//
// Design: Config follows a cascade model similar to git: local config
// (.chinookd/config.yaml) takes precedence over global
// (~/.chinookd/config.yaml). The --local flag forces use of local config
// even if it doesn't exist yet.

package cmd

import (
	"fmt"
	"sort"

	"github.com/jpl-au/chinookd/internal/audit"
	"github.com/jpl-au/chinookd/internal/config"
	"github.com/spf13/cobra"
)

var configLocal bool

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "View or set config values",
	Long: `View or set config values.

  chinookd config                    # show config
  chinookd config server.port        # show server.port value
  chinookd config server.port 9000   # set server.port

Configuration locations:
  Global: ~/.chinookd/config.yaml
  Local:  .chinookd/config.yaml

Uses local config if it exists, otherwise global.
Writes go to the same place reads come from.
Use --local to use local config instead.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(_ *cobra.Command, args []string) error {
	// Load config: local if exists, otherwise global
	// --local flag forces local even if it doesn't exist yet
	var c *config.Config
	var err error
	if configLocal {
		c, err = config.LoadScope(config.ScopeLocal)
	} else {
		c, err = config.Load()
	}
	if err != nil {
		return PrintJSONError(fmt.Errorf("config load: %w", err))
	}

	scopeName := "global"
	if c.Scope() == config.ScopeLocal {
		scopeName = "local"
	}

	switch len(args) {
	case 0:
		all := c.All()
		if JSON() {
			audit.Event("cli:config", "list").Write(nil)
			return PrintJSON(all)
		}
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(Out(), "%s: %s\n", k, all[k])
		}
		audit.Event("cli:config", "list").Write(nil)

	case 1:
		v, err := c.Get(args[0])
		audit.Event("cli:config", "get").Detail("key", args[0]).Write(err)
		if err != nil {
			return PrintJSONError(fmt.Errorf("config get %q: %w", args[0], err))
		}
		if JSON() {
			return PrintJSON(map[string]string{args[0]: v})
		}
		fmt.Fprintln(Out(), v)

	case 2:
		// Set value - write to same place we read from
		if err := c.Set(args[0], args[1]); err != nil {
			audit.Event("cli:config", "set").Detail("key", args[0]).Write(err)
			return PrintJSONError(fmt.Errorf("config set %q: %w", args[0], err))
		}

		saveErr := c.Save()
		// Value intentionally not logged: it may be the bearer token.
		audit.Event("cli:config", "set").Detail("key", args[0]).Detail("scope", scopeName).Write(saveErr)
		if saveErr != nil {
			return PrintJSONError(fmt.Errorf("config save: %w", saveErr))
		}
		if JSON() {
			return PrintJSON(map[string]string{"key": args[0], "scope": scopeName})
		}
		fmt.Fprintf(Out(), "%s = %s (%s)\n", args[0], args[1], scopeName)
	}
	return nil
}

func init() {
	configCmd.Flags().BoolVar(&configLocal, "local", false, "Use local config (.chinookd/config.yaml)")
	rootCmd.AddCommand(configCmd)
}
