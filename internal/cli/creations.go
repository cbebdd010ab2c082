package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCreationsCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "creations",
		Aliases: []string{"dashboard"},
		Short:   "List your saved creations",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.start(cmd.Context())
			if err != nil {
				return err
			}
			data, err := s.Dashboard.Load(cmd.Context())
			if err != nil {
				return err
			}
			if o.json() {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"tokenCount": data.Balance,
					"creations":  data.Creations,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tokens: %d\n\n", data.Balance)
			return printCreations(cmd.OutOrStdout(), data.Creations)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Show the ideas of a saved creation (free)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.start(cmd.Context())
			if err != nil {
				return err
			}
			view, err := s.Dashboard.Replay(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return o.printResults(cmd.OutOrStdout(), view, s.Ledger.Balance())
		},
	})

	return cmd
}
