package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/aretw0/mdninja"
	"github.com/aretw0/mdninja/pkg/core"
	"github.com/aretw0/mdninja/pkg/render"
	"github.com/spf13/cobra"
)

func newPageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Manage the pages of your site",
	}
	cmd.AddCommand(
		newPageListCmd(a),
		newPageReadCmd(a),
		newPageWriteCmd(a),
		newPageImportCmd(a),
		newPageRenameCmd(a),
		newPageDeleteCmd(a),
	)
	return cmd
}

func newPageListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.signedIn(cmd, func(ctx context.Context, svc *mdninja.Service) error {
				pages, err := svc.Pages(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				for _, p := range pages {
					fmt.Fprintf(w, "%s\t%d bytes\n", p.Name, len(p.Markdown))
				}
				return w.Flush()
			})
		},
	}
}

func newPageReadCmd(a *app) *cobra.Command {
	var asJSON, asHTML bool
	cmd := &cobra.Command{
		Use:   "read [name]",
		Short: "Print a page",
		Long:  `Print the markdown of a page, its HTML with --html, or the whole record with --json.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.signedIn(cmd, func(ctx context.Context, svc *mdninja.Service) error {
				p, err := svc.GetPage(ctx, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				switch {
				case asJSON:
					encoder := json.NewEncoder(out)
					encoder.SetIndent("", "  ")
					return encoder.Encode(p)
				case asHTML:
					_, err = fmt.Fprintln(out, p.HTML)
				default:
					_, err = fmt.Fprint(out, p.Markdown)
				}
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the page as JSON")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Output the rendered HTML")
	return cmd
}

func newPageWriteCmd(a *app) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "write [name]",
		Short: "Create or replace a page",
		Long:  `Write markdown from --file (or stdin) to a page, creating it when missing.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			markdown, err := readInput(cmd, from)
			if err != nil {
				return err
			}
			return a.signedIn(cmd, func(ctx context.Context, svc *mdninja.Service) error {
				return savePage(ctx, cmd, svc, args[0], markdown)
			})
		},
	}
	cmd.Flags().StringVarP(&from, "file", "f", "", "Read markdown from this file instead of stdin")
	return cmd
}

func newPageImportCmd(a *app) *cobra.Command {
	var from, domain string
	cmd := &cobra.Command{
		Use:   "import [name]",
		Short: "Convert HTML into a page",
		Long: `Convert an HTML document from --file (or stdin) to markdown and write it
to a page. Relative links are resolved against --domain.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			html, err := readInput(cmd, from)
			if err != nil {
				return err
			}
			markdown, err := render.NewImporter().Import(html, domain)
			if err != nil {
				return err
			}
			return a.signedIn(cmd, func(ctx context.Context, svc *mdninja.Service) error {
				return savePage(ctx, cmd, svc, args[0], markdown)
			})
		},
	}
	cmd.Flags().StringVarP(&from, "file", "f", "", "Read HTML from this file instead of stdin")
	cmd.Flags().StringVar(&domain, "domain", "", "Base domain for relative links")
	return cmd
}

func newPageRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename [old] [new]",
		Short: "Rename a page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.signedIn(cmd, func(ctx context.Context, svc *mdninja.Service) error {
				if err := svc.RenamePage(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", args[0], args[1])
				return nil
			})
		},
	}
}

func newPageDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.signedIn(cmd, func(ctx context.Context, svc *mdninja.Service) error {
				if err := svc.DeletePage(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

// savePage edits name, or creates it when the backend does not know it.
func savePage(ctx context.Context, cmd *cobra.Command, svc *mdninja.Service, name, markdown string) error {
	html, err := mdninja.Render(markdown)
	if err != nil {
		return err
	}
	p := core.Page{Name: name, Markdown: markdown, HTML: html}

	if _, err := svc.GetPage(ctx, name); err == nil {
		if err := svc.EditPage(ctx, p); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", name)
		return nil
	} else if core.StatusCode(err) != http.StatusNotFound {
		return err
	}

	if _, err := svc.CreatePage(ctx, p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", name)
	return nil
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
