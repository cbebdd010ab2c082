package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fairyhunter13/project-planner/internal/model"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printIdeas(w io.Writer, title string, ideas []model.Idea) {
	fmt.Fprintf(w, "%s\n", title)
	if len(ideas) == 0 {
		fmt.Fprintln(w, "  (no ideas)")
		return
	}
	for i, idea := range ideas {
		fmt.Fprintf(w, "%d. %s\n", i+1, idea.Name)
		if idea.Description != "" {
			fmt.Fprintf(w, "   %s\n", idea.Description)
		}
	}
}

func printCreations(w io.Writer, creations []model.Creation) error {
	if len(creations) == 0 {
		fmt.Fprintln(w, "No creations yet. Run 'planner generate' to make one.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tIDEAS")
	for _, c := range creations {
		fmt.Fprintf(tw, "%s\t%d\n", c.Name, len(c.Ideas))
	}
	return tw.Flush()
}
