package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/palette/errors"
)

// RecordCmd feeds command outcomes to the learning engine
var RecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record command outcomes for learning",
	Long: `Record that a palette command ran, so later suggestions can learn from it.

Examples:
  palette record success "create invoice for this client" --user 7 --client 4
  palette record failure "go to ticket 999" --reason "not found" --user 7`,
}

var recordSuccessCmd = &cobra.Command{
	Use:   "success <input...>",
	Short: "Record a successful command",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecord(cmd, strings.Join(args, " "), true)
	},
}

var recordFailureCmd = &cobra.Command{
	Use:   "failure <input...>",
	Short: "Record a failed command",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecord(cmd, strings.Join(args, " "), false)
	},
}

var failureReason string

func init() {
	recordFailureCmd.Flags().StringVar(&failureReason, "reason", "unknown", "Why the command failed")

	RecordCmd.AddCommand(recordSuccessCmd)
	RecordCmd.AddCommand(recordFailureCmd)
}

func runRecord(cmd *cobra.Command, input string, success bool) error {
	rctx := callerContext()
	if !rctx.HasUser() {
		return errors.WithHint(errors.ErrNoIdentity, "pass --user to record outcomes")
	}

	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	if success {
		svc.RecordSuccess(cmd.Context(), input, rctx)
		fmt.Fprintln(cmd.OutOrStdout(), pterm.Success.Sprintf("Recorded success: %s", input))
		return nil
	}
	svc.RecordFailure(cmd.Context(), input, rctx, failureReason)
	fmt.Fprintln(cmd.OutOrStdout(), pterm.Info.Sprintf("Recorded failure: %s (%s)", input, failureReason))
	return nil
}
