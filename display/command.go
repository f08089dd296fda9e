// Package display renders CLI output: JSON when asked for, pterm tables
// otherwise.
package display

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// ShouldOutputJSON reports whether --json was given to cmd or inherited
// from a parent command
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	if f := cmd.Flags().Lookup("json"); f != nil {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		return jsonFlag
	}
	jsonFlag, _ := cmd.Root().PersistentFlags().GetBool("json")
	return jsonFlag
}

// Table renders rows as a pterm table whose first row is the header
func Table(w io.Writer, rows pterm.TableData) error {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
