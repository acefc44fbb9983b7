package cli

import (
	"context"
	"errors"
	"strings"

	"notes-frontend/internal/dashboard"
	"notes-frontend/internal/toast"
)

// mountDashboard loads the state the dashboard page starts from. Commands
// then drive the same flows the pages do, gating included.
func mountDashboard(ctx context.Context, app *App, b *backend) (*dashboard.Dashboard, error) {
	if _, err := b.user(ctx); err != nil {
		return nil, err
	}
	d := dashboard.New(b.client, b.sess, app.log)
	if err := d.Mount(ctx); err != nil {
		return nil, err
	}
	v := d.View()
	if v.Redirect != "" {
		return nil, errNotSignedIn
	}
	if v.Error != "" {
		return nil, errors.New(v.Error)
	}
	for _, t := range d.Toasts().Drain() {
		app.log.Warn().Str("toast", t.Message).Msg("dashboard")
	}
	return d, nil
}

// actionError prefers the message the dashboard showed for a failed action.
func actionError(d *dashboard.Dashboard, err error) error {
	if t, ok := d.Toasts().Last(); ok && t.Kind == toast.KindError {
		return errors.New(t.Message)
	}
	return err
}

func noteFormError(v dashboard.View) error {
	f := v.NoteForm
	if f == nil {
		return errors.New("invalid note")
	}
	var msgs []string
	for _, m := range []string{f.TitleError, f.ContentError} {
		if m != "" {
			msgs = append(msgs, m)
		}
	}
	if len(msgs) == 0 {
		return errors.New("invalid note")
	}
	return errors.New(strings.Join(msgs, "; "))
}
