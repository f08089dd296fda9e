package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/palette/display"
	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/learn"
	"github.com/teranos/palette/palette"
	"github.com/teranos/palette/resolve"
)

func joinTypes(ts []entity.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = string(t)
	}
	return dash(strings.Join(parts, ", "))
}

func printEntity(w io.Writer, e *entity.Entity) {
	fmt.Fprintln(w, pterm.Success.Sprintf("%s #%d %s", e.Type, e.ID, e.Label()))
	if e.Code != "" {
		fmt.Fprintf(w, "  Code:    %s\n", e.Code)
	}
	if e.Status != "" {
		fmt.Fprintf(w, "  Status:  %s\n", e.Status)
	}
	if e.ClientID != 0 {
		fmt.Fprintf(w, "  Client:  %d\n", e.ClientID)
	}
	if e.Description != "" {
		fmt.Fprintf(w, "  Details: %s\n", e.Description)
	}
}

func printCandidates(w io.Writer, items []resolve.Candidate) error {
	data := pterm.TableData{{"Type", "ID", "Label", "Similarity", "Score"}}
	for _, c := range items {
		data = append(data, []string{
			string(c.Entity.Type),
			strconv.FormatInt(c.Entity.ID, 10),
			c.Entity.Label(),
			fmt.Sprintf("%.2f", c.Similarity),
			fmt.Sprintf("%.2f", c.Score),
		})
	}
	return display.Table(w, data)
}

func printSearch(w io.Writer, res *resolve.SearchResults) error {
	if res.Empty() {
		fmt.Fprintln(w, pterm.Warning.Sprint(dash(res.Message)))
		return nil
	}
	return printCandidates(w, res.Items)
}

func printSuggestions(w io.Writer, items []learn.Suggestion) error {
	if len(items) == 0 {
		fmt.Fprintln(w, pterm.Info.Sprint("No suggestions yet"))
		return nil
	}
	data := pterm.TableData{{"Command", "Source", "Score", "Uses"}}
	for _, s := range items {
		data = append(data, []string{
			s.Command,
			string(s.Source),
			fmt.Sprintf("%.2f", s.Score),
			strconv.Itoa(s.UsageCount),
		})
	}
	return display.Table(w, data)
}

// printResult renders what Handle produced for one input.
func printResult(w io.Writer, res *palette.Result) error {
	fmt.Fprintf(w, "%s (%.2f)\n", res.Command.Intent(), res.Command.Confidence())
	switch {
	case res.Entity != nil:
		printEntity(w, res.Entity)
	case res.Search != nil:
		return printSearch(w, res.Search)
	case res.Message != "":
		fmt.Fprintln(w, pterm.Warning.Sprint(res.Message))
	}
	return nil
}
