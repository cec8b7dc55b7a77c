// guide.go implements the "chinookd guide" command for documentation access.
//
// Design: Guides are embedded in the binary via the guide package, ensuring
// documentation is always available without external files. Terminal output
// gets glamour rendering for readability; pipe/redirect gets raw markdown
// for machine consumption and LLM context loading.

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/jpl-au/chinookd/guide"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var guideCmd = &cobra.Command{
	Use:   "guide [page]",
	Short: "Show the chinookd usage guide",
	Long: `Outputs the chinookd guide for LLMs and humans.

  chinookd guide          # main guide
  chinookd guide serve    # transports and authentication
  chinookd guide tools    # the MCP tool surface
  chinookd guide agent    # one-page orientation for agents`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGuide,
}

func runGuide(_ *cobra.Command, args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	content, err := guide.Get(name)
	if err != nil {
		available, listErr := guide.List()
		if listErr != nil {
			return listErr
		}
		return PrintJSONError(fmt.Errorf("guide %q not found. Available: %s", name, strings.Join(available, ", ")))
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		rendered, err := glamour.Render(content, "dark")
		if err == nil {
			fmt.Fprint(Out(), rendered)
			return nil
		}
	}

	fmt.Fprint(Out(), content)
	return nil
}

func init() {
	rootCmd.AddCommand(guideCmd)
}
