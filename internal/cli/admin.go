package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/project-planner/internal/model"
)

func newAdminCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Coupon administration (requires PLANNER_ADMIN_KEY)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := o.load(); err != nil {
				return err
			}
			if o.cfg.AdminKey == "" {
				return errors.New("PLANNER_ADMIN_KEY is not set")
			}
			return nil
		},
	}

	coupon := &cobra.Command{
		Use:   "coupon",
		Short: "Create and inspect coupons",
	}
	coupon.AddCommand(newCouponCreateCmd(o))
	coupon.AddCommand(newCouponGetCmd(o))
	cmd.AddCommand(coupon)

	return cmd
}

func newCouponCreateCmd(o *options) *cobra.Command {
	var (
		amount  int
		credit  int
		expires string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a coupon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expiresAt, err := parseExpiry(expires, time.Now())
			if err != nil {
				return err
			}
			req := model.CreateCouponRequest{
				Name:      args[0],
				Amount:    &amount,
				Credit:    &credit,
				ExpiresAt: expiresAt,
			}
			if err := o.adminClient().CreateCoupon(cmd.Context(), req); err != nil {
				return err
			}
			if o.json() {
				return printJSON(cmd.OutOrStdout(), req)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ coupon %q created: %d redemptions of %d tokens\n", req.Name, amount, credit)
			return nil
		},
	}

	cmd.Flags().IntVar(&amount, "amount", 1, "number of redemptions the coupon allows")
	cmd.Flags().IntVar(&credit, "credit", 5, "tokens granted per redemption")
	cmd.Flags().StringVar(&expires, "expires", "", "expiry as RFC3339 time or duration from now (e.g. 72h)")

	return cmd
}

func newCouponGetCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show a coupon and who redeemed it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coupon, err := o.adminClient().GetCoupon(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if o.json() {
				return printJSON(cmd.OutOrStdout(), coupon)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:        %s\n", coupon.Name)
			fmt.Fprintf(out, "Credit:      %d\n", coupon.Credit)
			fmt.Fprintf(out, "Remaining:   %d of %d\n", coupon.RemainingAmount, coupon.Amount)
			if coupon.ExpiresAt != nil {
				fmt.Fprintf(out, "Expires:     %s\n", coupon.ExpiresAt.Format(time.RFC3339))
			}
			redeemers := "-"
			if len(coupon.RedeemedBy) > 0 {
				redeemers = strings.Join(coupon.RedeemedBy, ", ")
			}
			fmt.Fprintf(out, "Redeemed by: %s\n", redeemers)
			return nil
		},
	}
}

// parseExpiry accepts an RFC3339 timestamp or a duration relative to now.
func parseExpiry(s string, now time.Time) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return nil, fmt.Errorf("invalid expiry %q: use RFC3339 or a duration like 72h", s)
	}
	if d <= 0 {
		return nil, fmt.Errorf("invalid expiry %q: duration must be positive", s)
	}
	t := now.Add(d).UTC()
	return &t, nil
}
