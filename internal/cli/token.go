package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/project-planner/internal/auth"
)

func newTokenCmd(o *options) *cobra.Command {
	var (
		user  string
		email string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token from PLANNER_JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.cfg.JWTSecret == "" {
				return errors.New("PLANNER_JWT_SECRET is not set")
			}
			if user == "" {
				user = o.cfg.UserID
			}
			if user == "" {
				return errors.New("no user: pass --user or set PLANNER_USER")
			}
			token, err := auth.GenerateJWT(user, email, ttl, []byte(o.cfg.JWTSecret))
			if err != nil {
				return err
			}
			if o.json() {
				return printJSON(cmd.OutOrStdout(), map[string]string{"token": token})
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user id (default $PLANNER_USER)")
	cmd.Flags().StringVar(&email, "email", "", "optional email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", devTokenTTL, "token lifetime")

	return cmd
}
