package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/aretw0/mdninja"
	"github.com/aretw0/mdninja/pkg/validate"
	"github.com/spf13/cobra"
)

func newFileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file",
		Short: "Manage uploaded files",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List uploaded files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.signedIn(cmd, func(ctx context.Context, svc *mdninja.Service) error {
				files, err := svc.Files(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				for _, f := range files {
					fmt.Fprintf(w, "%s\t%d bytes\n", f.Name, f.Size)
				}
				return w.Flush()
			})
		},
	})

	var as string
	upload := &cobra.Command{
		Use:   "upload [path]",
		Short: "Upload a file",
		Long:  `Upload a local file. It is stored under --as, or a safe version of its base name.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := as
			if name == "" {
				name = validate.SafeName(filepath.Base(args[0]))
			}
			if err := validate.Filename(name); err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return a.signedIn(cmd, func(ctx context.Context, svc *mdninja.Service) error {
				progress := func(percent float64) {
					a.logger.Debug("upload progress", "name", name, "percent", int(percent))
				}
				if err := svc.UploadFile(ctx, name, f, progress); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s\n", name)
				return nil
			})
		},
	}
	upload.Flags().StringVar(&as, "as", "", "Remote file name")
	cmd.AddCommand(upload)

	cmd.AddCommand(&cobra.Command{
		Use:   "rename [old] [new]",
		Short: "Rename a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.signedIn(cmd, func(ctx context.Context, svc *mdninja.Service) error {
				if err := svc.RenameFile(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", args[0], args[1])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.signedIn(cmd, func(ctx context.Context, svc *mdninja.Service) error {
				if err := svc.DeleteFile(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	})
	return cmd
}
