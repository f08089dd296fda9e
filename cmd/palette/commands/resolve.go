package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/palette/display"
	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/errors"
)

// ResolveCmd resolves an identifier of one entity type
var ResolveCmd = &cobra.Command{
	Use:   "resolve <type> <identifier...>",
	Short: "Resolve an identifier to a record",
	Long: `Resolve an id, code or name to a single record of the given type.

Types are given singular or plural: ticket, client, invoice, quote,
project, asset, user, contact, contract, expense, payment, product,
article, location, vendor.

Examples:
  palette resolve invoice INV-1001
  palette resolve ticket 42
  palette resolve client acme --candidates`,
	Args: cobra.MinimumNArgs(2),
	RunE: runResolve,
}

var showCandidates bool

func init() {
	ResolveCmd.Flags().BoolVar(&showCandidates, "candidates", false, "List ranked fuzzy matches instead of the best one")
}

func runResolve(cmd *cobra.Command, args []string) error {
	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := cmd.Context()
	rctx := callerContext()
	identifier := strings.Join(args[1:], " ")
	w := cmd.OutOrStdout()

	if showCandidates {
		t, ok := entity.ParseType(args[0])
		if !ok {
			return errors.NewInvalidRequestError("unknown entity type %q", args[0])
		}
		items, err := svc.Candidates(ctx, t, identifier, rctx)
		if err != nil {
			return errors.Wrapf(err, "failed to rank %s candidates", t)
		}
		if display.ShouldOutputJSON(cmd) {
			return display.WriteJSON(w, items)
		}
		if len(items) == 0 {
			fmt.Fprintln(w, pterm.Warning.Sprintf("No %s matching %q", t, identifier))
			return nil
		}
		return printCandidates(w, items)
	}

	e, err := svc.Resolve(ctx, args[0], identifier, rctx)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve %s %q", args[0], identifier)
	}
	if e == nil {
		return errors.Wrapf(errors.ErrNotFound, "no %s matching %q", args[0], identifier)
	}
	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(w, e)
	}
	printEntity(w, e)
	return nil
}
