package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBalanceCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show your token balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.start(cmd.Context())
			if err != nil {
				return err
			}
			balance := s.Ledger.Balance()
			if o.json() {
				return printJSON(cmd.OutOrStdout(), map[string]int{"tokenCount": balance})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tokens: %d\n", balance)
			return nil
		},
	}
}

func newRedeemCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "redeem <code>",
		Short: "Redeem a coupon code for tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.start(cmd.Context())
			if err != nil {
				return err
			}
			r, err := s.Redemption.Redeem(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if o.json() {
				return printJSON(cmd.OutOrStdout(), map[string]any{"success": r.Message, "tokenCount": r.NewBalance})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", r.Message)
			fmt.Fprintf(cmd.OutOrStdout(), "Tokens: %d\n", s.Ledger.Balance())
			return nil
		},
	}
}
