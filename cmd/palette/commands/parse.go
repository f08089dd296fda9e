package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/palette/display"
	"github.com/teranos/palette/intent"
)

// ParseCmd shows how an input is understood, without touching the database
var ParseCmd = &cobra.Command{
	Use:   "parse <input...>",
	Short: "Parse palette input into a structured command",
	Long: `Parse palette input into a structured command.

Examples:
  palette parse "show my urgent tickets"
  palette parse '#123'
  palette parse "create invoice for this client" --client 4 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmdOut := intent.Parse(strings.Join(args, " "), callerContext())
		if display.ShouldOutputJSON(cmd) {
			return display.WriteJSON(cmd.OutOrStdout(), cmdOut)
		}
		printCommand(cmd, cmdOut)
		return nil
	},
}

func printCommand(cmd *cobra.Command, c *intent.Command) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Intent:      %s\n", c.Intent())
	fmt.Fprintf(w, "Normalized:  %s\n", c.Normalized())
	fmt.Fprintf(w, "Entities:    %s\n", joinTypes(c.Entities()))
	mods := make([]string, 0, len(c.Modifiers()))
	for _, m := range c.Modifiers() {
		mods = append(mods, string(m))
	}
	fmt.Fprintf(w, "Modifiers:   %s\n", dash(strings.Join(mods, ", ")))
	if ref := c.Reference(); ref != nil {
		fmt.Fprintf(w, "Reference:   %s %s=%s\n", dash(string(ref.Type)), ref.Kind, ref.Value)
	}
	if q := c.SearchQuery(); q != "" {
		fmt.Fprintf(w, "Search:      %s\n", q)
	}
	fmt.Fprintf(w, "Confidence:  %.2f\n", c.Confidence())
	if c.IsShortcut() {
		fmt.Fprintln(w, "Shortcut:    yes")
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
