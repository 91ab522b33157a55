package main

import (
	"context"
	"log/slog"

	"github.com/aretw0/mdninja"
	"github.com/spf13/cobra"
)

// app is the state shared by every command of one invocation.
type app struct {
	verbose bool
	cfg     Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "mdninja",
		Short: "Edit the pages and files of an mdninja site from the terminal",
		Long: `mdninja signs in to an mdninja backend and manages the markdown pages
and uploaded files of your site. Pages can be mirrored into a local
directory, pushed back, or watched so that every save is published.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if a.verbose {
				level = slog.LevelDebug
			}

			opts := &slog.HandlerOptions{
				Level: level,
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
			slog.SetDefault(a.logger)

			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.String("url", DefaultURL, "Backend base URL")
	flags.String("session", "", "Session file (default: user config dir)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newSignupCmd(a),
		newDomainCmd(a),
		newAccountCmd(a),
		newPageCmd(a),
		newFileCmd(a),
		newPullCmd(a),
		newPushCmd(a),
		newWatchCmd(a),
	)
	return rootCmd
}

// open starts a service for the configured backend and session file.
func (a *app) open(ctx context.Context) (*mdninja.Service, error) {
	opts := []mdninja.Option{mdninja.WithLogger(a.logger)}
	if a.cfg.Session != "" {
		opts = append(opts, mdninja.WithSessionFile(a.cfg.Session))
	}
	return mdninja.Open(ctx, a.cfg.URL, opts...)
}

// withService runs fn against a started service and closes it afterwards.
func (a *app) withService(cmd *cobra.Command, fn func(ctx context.Context, svc *mdninja.Service) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(ctx, svc)
}

// password returns the configured password, or the first line of stdin.
func (a *app) password(cmd *cobra.Command) (string, error) {
	if a.cfg.Password != "" {
		return a.cfg.Password, nil
	}
	return readLine(cmd.InOrStdin())
}
