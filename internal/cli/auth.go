package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"notes-frontend/internal/accounts"
	"notes-frontend/internal/api"
	"notes-frontend/internal/forms"
	"notes-frontend/internal/model"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var email, password, account string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session for later commands",
		Example: strings.TrimSpace(`
# Use the first demo account (see: notes accounts)
notes login --account 0

# Explicit credentials
notes login --email admin@acme.test --password password
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := forms.NewLoginForm()
			if account != "" {
				a, err := demoAccount(account)
				if err != nil {
					return writeErr(cmd, err)
				}
				f.Fill(a)
			}
			if email != "" {
				f.Change(forms.FieldEmail, email)
			}
			if password != "" {
				f.Change(forms.FieldPassword, password)
			}
			if (strings.TrimSpace(f.Email()) == "" || f.Password() == "") && interactive(cmd) {
				if err := promptLogin(f); err != nil {
					return writeErr(cmd, err)
				}
			}

			ctx := cmd.Context()
			err := withBackend(ctx, app, func(b *backend) error {
				if err := f.Submit(ctx, b.client.Login); err != nil {
					if msg := f.Error(); msg != "" {
						return errors.New(msg)
					}
					return err
				}
				s := b.sess.Refetch(ctx)
				if !s.Authenticated() {
					return errors.New("Login failed. Please try again.")
				}
				return writeOut(cmd, app, s.User, "notes notes list", "notes whoami")
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().StringVar(&account, "account", "", "Demo account to use (index or email from `notes accounts`)")
	return cmd
}

func demoAccount(sel string) (accounts.Account, error) {
	demo := accounts.Demo()
	sel = strings.TrimSpace(sel)
	if i, err := strconv.Atoi(sel); err == nil {
		if i < 0 || i >= len(demo) {
			return accounts.Account{}, fmt.Errorf("demo account index out of range: %d (have %d)", i, len(demo))
		}
		return demo[i], nil
	}
	for _, a := range demo {
		if strings.EqualFold(a.Email, sel) {
			return a, nil
		}
	}
	return accounts.Account{}, errNotFound("demo account", sel)
}

func interactive(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// promptLogin offers the demo accounts first, then asks for credentials if
// none was picked.
func promptLogin(f *forms.LoginForm) error {
	demo := accounts.Demo()
	choice := -1
	opts := []huh.Option[int]{huh.NewOption("Enter email and password", -1)}
	for i, a := range demo {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s  %s", a.Label(), a.Email), i))
	}
	pick := huh.NewForm(huh.NewGroup(
		huh.NewSelect[int]().
			Title("Test Accounts").
			Description("Pick an account to auto-fill the form").
			Options(opts...).
			Value(&choice),
	))
	if err := pick.Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	if choice >= 0 {
		f.Fill(demo[choice])
		return nil
	}

	email, password := f.Email(), f.Password()
	creds := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Email").Placeholder("you@company.test").Value(&email),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
	))
	if err := creds.Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	f.Change(forms.FieldEmail, email)
	f.Change(forms.FieldPassword, password)
	return nil
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			err := withBackend(ctx, app, func(b *backend) error {
				if err := b.client.Logout(ctx); err != nil && !api.IsUnauthorized(err) {
					app.log.Warn().Err(err).Msg("backend logout failed; clearing local session anyway")
				}
				b.sess.Clear()
				if err := b.jar.Clear(ctx); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"signedOut": true}, "notes login")
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
}

type whoami struct {
	User    *model.User   `json:"user"`
	Tenant  *model.Tenant `json:"tenant,omitempty"`
	Plan    model.Plan    `json:"plan"`
	IsAdmin bool          `json:"isAdmin"`
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and their tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			err := withBackend(ctx, app, func(b *backend) error {
				d, err := mountDashboard(ctx, app, b)
				if err != nil {
					return err
				}
				v := d.View()
				out := whoami{User: v.User, Tenant: v.Tenant, Plan: model.PlanFree, IsAdmin: v.User.IsAdmin()}
				if v.Tenant != nil {
					out.Plan = v.Tenant.PlanOrFree()
				}
				return writeOut(cmd, app, out)
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
}

func newAccountsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List the demo accounts (all use password \"password\")",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOut(cmd, app, accounts.Demo(), "notes login --account <index>")
		},
	}
}
