// Package cli implements the planner command line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fairyhunter13/project-planner/internal/auth"
	"github.com/fairyhunter13/project-planner/internal/config"
	"github.com/fairyhunter13/project-planner/internal/logging"
	"github.com/fairyhunter13/project-planner/internal/session"
	"github.com/fairyhunter13/project-planner/pkg/plannerclient"
)

const devTokenTTL = 24 * time.Hour

type options struct {
	url     string
	token   string
	output  string
	verbose bool

	cfg *config.ClientConfig
}

// NewRootCmd returns the root command for the planner CLI.
func NewRootCmd() *cobra.Command {
	o := &options{}

	rootCmd := &cobra.Command{
		Use:           "planner",
		Short:         "Project Planner CLI",
		Long:          "Generate project ideas, manage your token balance and browse saved creations.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.load()
		},
	}

	rootCmd.PersistentFlags().StringVar(&o.url, "url", "", "planner API base URL (default $PLANNER_URL)")
	rootCmd.PersistentFlags().StringVar(&o.token, "token", "", "bearer token (default $PLANNER_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&o.output, "output", "text", "output format: json|text")
	rootCmd.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newBalanceCmd(o))
	rootCmd.AddCommand(newRedeemCmd(o))
	rootCmd.AddCommand(newGenerateCmd(o))
	rootCmd.AddCommand(newWizardCmd(o))
	rootCmd.AddCommand(newCreationsCmd(o))
	rootCmd.AddCommand(newAdminCmd(o))
	rootCmd.AddCommand(newTokenCmd(o))

	return rootCmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", describe(err))
		return 1
	}
	return 0
}

func (o *options) load() error {
	if o.output != "text" && o.output != "json" {
		return fmt.Errorf("invalid output format %q: must be 'json' or 'text'", o.output)
	}

	cfg, err := config.LoadClient()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if o.url != "" {
		cfg.URL = o.url
	}
	if o.token != "" {
		cfg.Token = o.token
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}
	o.cfg = cfg

	logging.InitTo(os.Stderr, cfg.Log)
	return nil
}

// bearer returns the configured token, minting a development token from
// PLANNER_JWT_SECRET and PLANNER_USER when none is set.
func (o *options) bearer() (string, error) {
	if o.cfg.Token != "" {
		return o.cfg.Token, nil
	}
	if o.cfg.JWTSecret == "" || o.cfg.UserID == "" {
		return "", errors.New("no token: set PLANNER_TOKEN, or PLANNER_JWT_SECRET and PLANNER_USER")
	}
	log.Debug().Str("user_id", o.cfg.UserID).Msg("minting development token")
	return auth.GenerateJWT(o.cfg.UserID, "", devTokenTTL, []byte(o.cfg.JWTSecret))
}

func (o *options) client() (*plannerclient.Client, error) {
	token, err := o.bearer()
	if err != nil {
		return nil, err
	}
	return plannerclient.New(o.cfg.URL, token,
		plannerclient.WithTimeout(o.cfg.Timeout),
		plannerclient.WithAdminKey(o.cfg.AdminKey),
	), nil
}

func (o *options) adminClient() *plannerclient.Client {
	return plannerclient.New(o.cfg.URL, "",
		plannerclient.WithTimeout(o.cfg.Timeout),
		plannerclient.WithAdminKey(o.cfg.AdminKey),
	)
}

// start opens a session for the signed-in user.
func (o *options) start(ctx context.Context) (*session.Session, error) {
	c, err := o.client()
	if err != nil {
		return nil, err
	}
	return session.Start(ctx, c, log.Logger.With().Str("component", "session").Logger())
}

func (o *options) json() bool { return o.output == "json" }

// describe renders session errors as their user-facing notice.
func describe(err error) string {
	var se *session.Error
	if errors.As(err, &se) {
		return session.Notice(err)
	}
	return err.Error()
}
