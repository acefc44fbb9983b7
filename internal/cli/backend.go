package cli

import (
	"context"

	"notes-frontend/internal/api"
	"notes-frontend/internal/cookiejar"
	"notes-frontend/internal/model"
	"notes-frontend/internal/session"
)

// backend is one CLI invocation's connection to the notes API. The session
// cookie lives in the sqlite cookie jar so it survives between commands.
type backend struct {
	client *api.Client
	jar    *cookiejar.Jar
	sess   *session.Store
}

func openBackend(ctx context.Context, app *App) (*backend, error) {
	jar, err := cookiejar.Open(ctx, app.cfg.CookieDB, app.log)
	if err != nil {
		return nil, err
	}
	client, err := api.New(api.Options{
		BaseURL: app.cfg.BackendURL,
		Jar:     jar,
		Logger:  app.log,
	})
	if err != nil {
		_ = jar.Close()
		return nil, err
	}
	return &backend{client: client, jar: jar, sess: session.New(client, app.log)}, nil
}

func (b *backend) Close() error { return b.jar.Close() }

// user returns the signed-in user or errNotSignedIn.
func (b *backend) user(ctx context.Context) (*model.User, error) {
	s := b.sess.EnsureLoaded(ctx)
	if !s.Authenticated() {
		return nil, errNotSignedIn
	}
	return s.User, nil
}

func (b *backend) findNote(ctx context.Context, id string) (model.Note, error) {
	notes, err := b.client.ListNotes(ctx)
	if err != nil {
		return model.Note{}, err
	}
	for _, n := range notes {
		if n.ID == id {
			return n, nil
		}
	}
	return model.Note{}, errNotFound("note", id)
}

// withBackend opens the backend for the duration of fn.
func withBackend(ctx context.Context, app *App, fn func(*backend) error) error {
	b, err := openBackend(ctx, app)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(b)
}
