package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/palette/display"
	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/errors"
)

// SearchCmd runs a fuzzy search across entity types
var SearchCmd = &cobra.Command{
	Use:   "search <term...>",
	Short: "Search records across entity types",
	Long: `Search every entity type, or only the ones given with --type, and
rank the matches by similarity and type priority.

Examples:
  palette search acme
  palette search "laptop fleet" --type quote --type invoice`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var searchTypes []string

func init() {
	SearchCmd.Flags().StringSliceVarP(&searchTypes, "type", "t", nil, "Restrict the search to these entity types")
}

func runSearch(cmd *cobra.Command, args []string) error {
	types, err := parseTypes(searchTypes)
	if err != nil {
		return err
	}

	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	res := svc.Search(cmd.Context(), strings.Join(args, " "), types, callerContext())
	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(cmd.OutOrStdout(), res)
	}
	return printSearch(cmd.OutOrStdout(), res)
}

func parseTypes(tags []string) ([]entity.Type, error) {
	var types []entity.Type
	for _, tag := range tags {
		t, ok := entity.ParseType(tag)
		if !ok {
			return nil, errors.WithHintf(
				errors.NewInvalidRequestError("unknown entity type %q", tag),
				"use one of: %s", joinTypes(entity.All()))
		}
		types = append(types, t)
	}
	return types, nil
}
