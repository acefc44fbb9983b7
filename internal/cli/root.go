// Package cli is the notes command line: scriptable commands that print a
// JSON (or EDN) envelope, plus the web and tui front ends.
package cli

import (
	"fmt"
	"os"
	"strings"

	"notes-frontend/internal/config"
	"notes-frontend/internal/format"
	"notes-frontend/internal/logging"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type App struct {
	EnvFile    string
	BackendURL string
	CookieDB   string
	LogLevel   string
	PrettyJSON bool
	Format     string

	cfg config.Config
	log zerolog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "notes",
		Short:        "Multi-tenant notes: CLI, terminal UI and web front end",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  notes

  # Sign in with a demo account, then script against the backend
  notes login --account 0
  notes notes list
  notes notes create --title "Groceries" --content "milk"

  # Serve the browser front end
  notes web --open
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runTUI(cmd, app, "")
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if !format.Valid(app.Format) {
			return writeErr(cmd, fmt.Errorf("unknown --format %q (want json or edn)", app.Format))
		}
		cfg, err := config.Load(app.EnvFile)
		if err != nil {
			return writeErr(cmd, err)
		}
		if v := strings.TrimSpace(app.BackendURL); v != "" {
			cfg.BackendURL = v
		}
		if v := strings.TrimSpace(app.CookieDB); v != "" {
			cfg.CookieDB = v
		}
		if v := strings.TrimSpace(app.LogLevel); v != "" {
			cfg.LogLevel = strings.ToLower(v)
		}
		app.cfg = cfg
		app.log = logging.New(cfg.LogLevel, cmd.ErrOrStderr())
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.EnvFile, "env-file", envOr("NOTES_ENV_FILE", ".env"), "Dotenv file to load before reading NOTES_* variables")
	cmd.PersistentFlags().StringVar(&app.BackendURL, "backend", "", "Backend base URL (overrides NOTES_BACKEND_URL)")
	cmd.PersistentFlags().StringVar(&app.CookieDB, "cookie-db", "", "Session cookie database (overrides NOTES_COOKIE_DB)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides NOTES_LOG_LEVEL)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("NOTES_FORMAT", "json"), "Output format (json|edn)")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newAccountsCmd(app))
	cmd.AddCommand(newNotesCmd(app))
	cmd.AddCommand(newTenantCmd(app))
	cmd.AddCommand(newInviteCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newTUICmd(app))
	cmd.AddCommand(newWebCmd(app))

	return cmd
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, data any, hints ...string) error {
	return format.Write(cmd.OutOrStdout(), format.Envelope{Data: data, Hints: hints}, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
