// Package tui is the terminal client: a login screen, then the notes
// dashboard with the same modals and gating as the web front end.
package tui

import (
	"context"
	"errors"

	"notes-frontend/internal/api"
	"notes-frontend/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

type Options struct {
	Client  *api.Client
	Session *session.Store
	Logger  zerolog.Logger
	// Theme is light, dark or auto.
	Theme string
}

func Run(ctx context.Context, opts Options) error {
	if opts.Client == nil || opts.Session == nil {
		return errors.New("tui: client and session are required")
	}
	applyThemePreference(opts.Theme)
	applyColorProfilePreference()

	m := newAppModel(ctx, opts)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if fm, ok := final.(appModel); ok && fm.dash != nil {
		fm.dash.Unmount()
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
