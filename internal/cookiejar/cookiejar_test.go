package cookiejar

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var backendURL = &url.URL{Scheme: "https", Host: "notes.example.com", Path: "/"}

func cookieNames(cs []*http.Cookie) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}

func TestJar_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "cookies.sqlite")

	j, err := Open(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	j.SetCookies(backendURL, []*http.Cookie{
		{Name: "token", Value: "abc", Path: "/", HttpOnly: true},
		{Name: "pref", Value: "dark", Path: "/", MaxAge: 3600},
	})
	require.NoError(t, j.Close())

	j, err = Open(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	defer j.Close()

	got := j.Cookies(backendURL)
	assert.ElementsMatch(t, []string{"token", "pref"}, cookieNames(got))
	for _, c := range got {
		if c.Name == "token" {
			assert.Equal(t, "abc", c.Value)
		}
	}
}

func TestJar_PathlessCookieKeepsRequestDirectory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cookies.sqlite")
	login := &url.URL{Scheme: "https", Host: "notes.example.com", Path: "/auth/login"}

	j, err := Open(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	j.SetCookies(login, []*http.Cookie{{Name: "token", Value: "abc"}})
	require.NoError(t, j.Close())

	j, err = Open(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	defer j.Close()

	profile := &url.URL{Scheme: "https", Host: "notes.example.com", Path: "/auth/profile"}
	notes := &url.URL{Scheme: "https", Host: "notes.example.com", Path: "/notes"}
	assert.Equal(t, []string{"token"}, cookieNames(j.Cookies(profile)))
	assert.Empty(t, j.Cookies(notes))
}

func TestDefaultPath(t *testing.T) {
	cases := map[string]string{
		"":            "/",
		"/":           "/",
		"/login":      "/",
		"/auth/login": "/auth",
		"/a/b/":       "/a/b",
		"rel":         "/",
	}
	for in, want := range cases {
		assert.Equal(t, want, defaultPath(in), in)
	}
}

func TestJar_DeletesExpiredAndClears(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cookies.sqlite")

	j, err := Open(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	j.SetCookies(backendURL, []*http.Cookie{{Name: "token", Value: "abc", Path: "/"}})
	j.SetCookies(backendURL, []*http.Cookie{{Name: "token", Value: "", Path: "/", MaxAge: -1}})
	assert.Empty(t, j.Cookies(backendURL))

	j.SetCookies(backendURL, []*http.Cookie{{Name: "token", Value: "again", Path: "/"}})
	require.NoError(t, j.Clear(ctx))
	assert.Empty(t, j.Cookies(backendURL))
	require.NoError(t, j.Close())

	j, err = Open(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	defer j.Close()
	assert.Empty(t, j.Cookies(backendURL))
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(context.Background(), " ", zerolog.Nop())
	require.Error(t, err)
}

func TestNew_MigrateFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS cookies").WillReturnError(errors.New("disk full"))

	_, err = New(context.Background(), db, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNew_LoadsUnexpiredRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS cookies").WillReturnResult(sqlmock.NewResult(0, 0))
	rows := sqlmock.NewRows([]string{"host", "name", "path", "value", "domain", "secure", "http_only", "expires_unixms"}).
		AddRow("notes.example.com", "token", "/", "abc", "", true, true, int64(0))
	mock.ExpectQuery("SELECT host, name, path, value").WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)

	j, err := New(context.Background(), db, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"token"}, cookieNames(j.Cookies(backendURL)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetCookies_WriteFailureKeepsMemoryCopy(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS cookies").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT host, name, path, value").
		WillReturnRows(sqlmock.NewRows([]string{"host", "name", "path", "value", "domain", "secure", "http_only", "expires_unixms"}))
	j, err := New(context.Background(), db, zerolog.Nop())
	require.NoError(t, err)
	j.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	mock.ExpectExec("INSERT OR REPLACE INTO cookies").
		WithArgs("notes.example.com", "token", "/", "abc", "", true, false, int64(0)).
		WillReturnError(errors.New("readonly database"))

	j.SetCookies(backendURL, []*http.Cookie{{Name: "token", Value: "abc"}})
	assert.Equal(t, []string{"token"}, cookieNames(j.Cookies(backendURL)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
