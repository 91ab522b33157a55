package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/mdninja"
	"github.com/aretw0/mdninja/pkg/core"
	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login [domain]",
		Short: "Sign in to your site",
		Long: `Sign in with the domain of your site. The password is taken from
--password, MDNINJA_PASSWORD or the first line of stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := a.password(cmd)
			if err != nil {
				return err
			}
			return a.withService(cmd, func(ctx context.Context, svc *mdninja.Service) error {
				ok, err := svc.Login(ctx, args[0], password)
				if err != nil {
					return err
				}
				if !ok {
					return core.ErrLoginFailed
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", describe(svc.User()))
				return nil
			})
		},
	}
	cmd.Flags().String("password", "", "Account password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *mdninja.Service) error {
				if err := svc.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
				return nil
			})
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *mdninja.Service) error {
				if !svc.Authenticated() {
					return core.ErrNotAuthenticated
				}
				u := svc.User()
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, describe(u))
				if u != nil && u.Email != "" {
					fmt.Fprintf(out, "email: %s\n", u.Email)
				}
				if u != nil && u.ExternalDomain != "" {
					fmt.Fprintf(out, "custom domain: %s\n", u.ExternalDomain)
				}
				return nil
			})
		},
	}
}

func newSignupCmd(a *app) *cobra.Command {
	var name, domain, email string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Long: `Create an account. Without --domain one is suggested from --name.
The password is read like in login.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if domain == "" {
				domain = mdninja.SuggestDomain(name)
			}
			password, err := a.password(cmd)
			if err != nil {
				return err
			}
			return a.withService(cmd, func(ctx context.Context, svc *mdninja.Service) error {
				resp, err := svc.Signup(ctx, core.SignupParams{
					Name:     name,
					Domain:   domain,
					Email:    email,
					Password: password,
				})
				if err != nil {
					return err
				}
				if resp.Error {
					return fmt.Errorf("signup rejected: %s", firstNonEmpty(resp.Message, resp.Result))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", domain)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&domain, "domain", "", "Site domain")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().String("password", "", "Account password")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newDomainCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domain",
		Short: "Site domain helpers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check [domain]",
		Short: "Check whether a domain is available",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *mdninja.Service) error {
				free, err := svc.CheckDomain(ctx, args[0])
				if err != nil {
					return err
				}
				if free {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is available\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is taken\n", args[0])
				}
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "suggest [name]",
		Short: "Suggest a domain for a display name",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), mdninja.SuggestDomain(strings.Join(args, " ")))
		},
	})
	return cmd
}

func newAccountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Change account settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "email [address]",
		Short: "Change the account email (blank clears it)",
		Args:  cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := ""
			if len(args) == 1 {
				email = args[0]
			}
			return a.signedIn(cmd, func(ctx context.Context, svc *mdninja.Service) error {
				if err := svc.UpdateEmail(ctx, email); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Email updated")
				return nil
			})
		},
	})

	passwordCmd := &cobra.Command{
		Use:   "password",
		Short: "Change the account password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := a.password(cmd)
			if err != nil {
				return err
			}
			return a.signedIn(cmd, func(ctx context.Context, svc *mdninja.Service) error {
				if err := svc.UpdatePassword(ctx, password, password); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Password updated")
				return nil
			})
		},
	}
	passwordCmd.Flags().String("password", "", "New password")
	cmd.AddCommand(passwordCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "domain [domain]",
		Short: "Point a custom domain at your site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.signedIn(cmd, func(ctx context.Context, svc *mdninja.Service) error {
				err := svc.UpdateCustomDomain(ctx, args[0])
				if errors.Is(err, core.ErrDomainTaken) {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Custom domain set to %s\n", args[0])
				return nil
			})
		},
	})
	return cmd
}

// signedIn is withService for commands that need a session.
func (a *app) signedIn(cmd *cobra.Command, fn func(ctx context.Context, svc *mdninja.Service) error) error {
	return a.withService(cmd, func(ctx context.Context, svc *mdninja.Service) error {
		if !svc.Authenticated() {
			return core.ErrNotAuthenticated
		}
		return fn(ctx, svc)
	})
}

func describe(u *core.User) string {
	if u == nil {
		return "(unknown)"
	}
	if u.Name == "" {
		return u.Domain
	}
	return fmt.Sprintf("%s (%s)", u.Name, u.Domain)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("no password given")
	}
	return line, nil
}
