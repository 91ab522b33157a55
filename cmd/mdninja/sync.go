package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/mdninja"
	"github.com/spf13/cobra"
)

func mirrorFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("dir", "C", ".", "Mirror directory")
	cmd.Flags().String("pattern", "*.md", "Doublestar pattern of mirrored pages")
}

func (a *app) mirrorOptions(autoInit bool) []mdninja.Option {
	return []mdninja.Option{
		mdninja.WithLogger(a.logger),
		mdninja.WithPattern(a.cfg.Pattern),
		mdninja.WithAutoInit(autoInit),
	}
}

func newPullCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Write every page into the mirror directory",
		Long: `Write every page of your site into the mirror directory. The directory is
marked as a mirror on first use.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.signedIn(cmd, func(ctx context.Context, svc *mdninja.Service) error {
				names, err := mdninja.Pull(ctx, a.cfg.Dir, svc, a.mirrorOptions(true)...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pulled %d page(s)\n", len(names))
				return nil
			})
		},
	}
	mirrorFlags(cmd)
	return cmd
}

func newPushCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Send changed local pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.signedIn(cmd, func(ctx context.Context, svc *mdninja.Service) error {
				names, err := mdninja.Push(ctx, a.cfg.Dir, svc, a.mirrorOptions(false)...)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, n := range names {
					fmt.Fprintf(out, "pushed %s\n", n)
				}
				fmt.Fprintf(out, "Pushed %d page(s)\n", len(names))
				return nil
			})
		},
	}
	mirrorFlags(cmd)
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Publish local edits as they are saved",
		Long: `Watch the mirror directory and save every edited page through the editor
until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			opts := append(a.mirrorOptions(false), mdninja.WithWatcherErrorHandler(func(err error) {
				a.logger.Error("watch error", "error", err)
			}))

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", a.cfg.Dir)
			err = mdninja.Watch(ctx, a.cfg.Dir, svc, opts...)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	mirrorFlags(cmd)
	return cmd
}
