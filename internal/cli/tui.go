package cli

import (
	"os"
	"strings"

	"notes-frontend/internal/logging"
	"notes-frontend/internal/tui"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newTUICmd(app *App) *cobra.Command {
	var logFile, theme string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive terminal UI (default when no command is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if theme != "" {
				app.cfg.TUITheme = theme
			}
			return runTUI(cmd, app, logFile)
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file while the TUI owns the terminal")
	cmd.Flags().StringVar(&theme, "theme", "", "Color theme: light, dark or auto (default NOTES_TUI_THEME)")
	return cmd
}

// runTUI starts the terminal client. The screen belongs to the TUI, so logs
// go to logFile or nowhere.
func runTUI(cmd *cobra.Command, app *App, logFile string) error {
	app.log = zerolog.Nop()
	if p := strings.TrimSpace(logFile); p != "" {
		f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return writeErr(cmd, err)
		}
		defer f.Close()
		app.log = logging.New(app.cfg.LogLevel, f)
	}

	ctx := cmd.Context()
	b, err := openBackend(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer b.Close()

	return tui.Run(ctx, tui.Options{
		Client:  b.client,
		Session: b.sess,
		Logger:  app.log,
		Theme:   app.cfg.TUITheme,
	})
}
