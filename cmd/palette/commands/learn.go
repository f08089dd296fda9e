package commands

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/palette/display"
	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/errors"
	"github.com/teranos/palette/internal/util"
	"github.com/teranos/palette/learn"
)

// LearnCmd inspects and resets learning state
var LearnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Inspect or reset learned usage",
	Long: `Inspect or reset what the palette learned from recorded outcomes.

Examples:
  palette learn insights --user 7
  palette learn clear --user 7
  palette learn clear --all`,
}

var learnInsightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show top patterns, failing commands and entity access",
	RunE:  runLearnInsights,
}

var learnClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget learned usage for --user, or everyone with --all",
	RunE:  runLearnClear,
}

var clearAll bool

func init() {
	learnClearCmd.Flags().BoolVar(&clearAll, "all", false, "Forget learning state for every user")

	LearnCmd.AddCommand(learnInsightsCmd)
	LearnCmd.AddCommand(learnClearCmd)
}

func runLearnInsights(cmd *cobra.Command, args []string) error {
	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	ins := svc.Insights(cmd.Context(), callerContext())
	w := cmd.OutOrStdout()
	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(w, ins)
	}

	if len(ins.TopPatterns) > 0 {
		data := pterm.TableData{{"Command", "Successes", "Failures", "Rate"}}
		for _, p := range ins.TopPatterns {
			data = append(data, []string{
				learn.Render(p.Intent, p.Entities, p.Modifiers),
				strconv.Itoa(p.SuccessCount),
				strconv.Itoa(p.FailureCount),
				fmt.Sprintf("%.0f%%", p.SuccessRate()*100),
			})
		}
		if err := display.Table(w, data); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(w, pterm.Info.Sprint("No patterns learned"))
	}

	if len(ins.FailingCommands) > 0 {
		data := pterm.TableData{{"Failing command", "Reason", "Count"}}
		for _, f := range ins.FailingCommands {
			data = append(data, []string{util.Truncate(f.Command, 60), util.Truncate(f.Reason, 40), strconv.Itoa(f.Count)})
		}
		if err := display.Table(w, data); err != nil {
			return err
		}
	}

	if len(ins.EntityAccess) > 0 {
		types := make([]entity.Type, 0, len(ins.EntityAccess))
		for t := range ins.EntityAccess {
			types = append(types, t)
		}
		sort.Slice(types, func(i, j int) bool {
			a, b := ins.EntityAccess[types[i]], ins.EntityAccess[types[j]]
			if a != b {
				return a > b
			}
			return types[i] < types[j]
		})
		data := pterm.TableData{{"Entity", "Accesses"}}
		for _, t := range types {
			data = append(data, []string{string(t), strconv.Itoa(ins.EntityAccess[t])})
		}
		return display.Table(w, data)
	}
	return nil
}

func runLearnClear(cmd *cobra.Command, args []string) error {
	rctx := callerContext()
	if !clearAll && !rctx.HasUser() {
		return errors.WithHint(errors.ErrNoIdentity, "pass --user or --all")
	}

	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	var target int64
	if !clearAll {
		target = rctx.UserID
	}
	svc.ClearLearning(cmd.Context(), target)
	if target == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), pterm.Success.Sprint("Cleared all learning state"))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), pterm.Success.Sprintf("Cleared learning state for user %d", target))
	}
	return nil
}
