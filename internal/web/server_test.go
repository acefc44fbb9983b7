package web

import (
	"bytes"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"notes-frontend/internal/api/apitest"
	"notes-frontend/internal/metrics"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type browser struct {
	t    *testing.T
	base string
	c    *http.Client
}

func newTestServer(t *testing.T, b *apitest.Backend, m *metrics.Metrics) *httptest.Server {
	t.Helper()
	srv, err := NewServer(ServerConfig{
		Addr:          "127.0.0.1:0",
		BackendURL:    b.URL(),
		SessionSecret: "test-secret",
		Logger:        zerolog.Nop(),
		Metrics:       m,
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return ts
}

func newBrowser(t *testing.T, ts *httptest.Server) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, base: ts.URL, c: &http.Client{
		Jar:     jar,
		Timeout: 10 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

func (b *browser) do(method, path string, body io.Reader, contentType string) (*http.Response, string) {
	b.t.Helper()
	req, err := http.NewRequest(method, b.base+path, body)
	require.NoError(b.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	res, err := b.c.Do(req)
	require.NoError(b.t, err)
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(b.t, err)
	return res, string(raw)
}

func (b *browser) get(path string) (*http.Response, string) {
	return b.do(http.MethodGet, path, nil, "")
}

func (b *browser) postForm(path string, v url.Values) (*http.Response, string) {
	return b.do(http.MethodPost, path, strings.NewReader(v.Encode()), "application/x-www-form-urlencoded")
}

// action posts datastar signals to a dashboard endpoint.
func (b *browser) action(path, signals string) (*http.Response, string) {
	if signals == "" {
		signals = "{}"
	}
	return b.do(http.MethodPost, path, bytes.NewBufferString(signals), "application/json")
}

func (b *browser) login(email string) {
	b.t.Helper()
	res, _ := b.get("/")
	require.Equal(b.t, http.StatusOK, res.StatusCode)
	res, body := b.postForm("/login", url.Values{"email": {email}, "password": {"password"}})
	require.Equal(b.t, http.StatusSeeOther, res.StatusCode, body)
	require.Equal(b.t, "/dashboard", res.Header.Get("Location"))
}

func TestNewServer_ValidatesConfig(t *testing.T) {
	_, err := NewServer(ServerConfig{BackendURL: "http://x"})
	assert.Error(t, err)
	_, err = NewServer(ServerConfig{Addr: ":0", BackendURL: "ftp://x"})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, apitest.NewSeeded(t), nil)
	res, body := newBrowser(t, ts).get("/health")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok\n", body)
}

func TestLoginPage_ListsDemoAccounts(t *testing.T) {
	ts := newTestServer(t, apitest.NewSeeded(t), nil)
	br := newBrowser(t, ts)

	res, body := br.get("/")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Welcome Back!")
	assert.Contains(t, body, "Test Accounts")
	assert.Contains(t, body, `All accounts use password: "password"`)

	res, body = br.postForm("/login", url.Values{"fill": {"0"}})
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `value="admin@acme.test"`)
}

func TestLogin_BadCredentialsShowError(t *testing.T) {
	ts := newTestServer(t, apitest.NewSeeded(t), nil)
	br := newBrowser(t, ts)

	res, body := br.postForm("/login", url.Values{"email": {"admin@acme.test"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, body, "Login Failed")
	assert.Contains(t, body, `value="admin@acme.test"`, "email is kept")

	res, _ = br.postForm("/login", url.Values{"email": {""}, "password": {""}})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestDashboard_RequiresSignIn(t *testing.T) {
	ts := newTestServer(t, apitest.NewSeeded(t), nil)
	res, _ := newBrowser(t, ts).get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/", res.Header.Get("Location"))
}

func TestDashboard_RendersPlanAndNotes(t *testing.T) {
	b := apitest.NewSeeded(t)
	b.SeedNotes("acme", "Groceries", "Standup")
	ts := newTestServer(t, b, nil)
	br := newBrowser(t, ts)
	br.login("admin@acme.test")

	res, body := br.get("/dashboard")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Welcome back!")
	assert.Contains(t, body, "FREE Plan")
	assert.Contains(t, body, "1 of 3 notes remaining")
	assert.Contains(t, body, "Upgrade to Pro")
	assert.Contains(t, body, "Admin Dashboard")
	assert.Contains(t, body, "Groceries")
	assert.Contains(t, body, "Standup")

	res, _ = br.get("/")
	assert.Equal(t, http.StatusSeeOther, res.StatusCode, "signed-in users skip the login page")
}

func TestDashboard_MemberOnProPlan(t *testing.T) {
	ts := newTestServer(t, apitest.NewSeeded(t), nil)
	br := newBrowser(t, ts)
	br.login("user@globex.test")

	_, body := br.get("/dashboard")
	assert.Contains(t, body, "PRO Plan")
	assert.Contains(t, body, "Unlimited notes available")
	assert.NotContains(t, body, "Admin Dashboard")
	assert.NotContains(t, body, "Upgrade to Pro")
	assert.Contains(t, body, "No notes yet")
}

func TestDashboardActions_CreateNote(t *testing.T) {
	b := apitest.NewSeeded(t)
	ts := newTestServer(t, b, nil)
	br := newBrowser(t, ts)
	br.login("admin@acme.test")
	br.get("/dashboard")

	res, body := br.action("/dashboard/notes/new", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/event-stream")
	assert.Contains(t, body, "datastar-patch-elements")
	assert.Contains(t, body, `id="note-title"`)
	assert.Contains(t, body, "scroll-lock")

	_, body = br.action("/dashboard/note-form/validate?blur=title", `{"noteTitle":"Hi"}`)
	assert.Contains(t, body, "Title must be at least 3 characters long")

	_, body = br.action("/dashboard/note-form/submit", `{"noteTitle":"  Groceries ","noteContent":"milk"}`)
	assert.Contains(t, body, "Note created successfully!")
	assert.NotContains(t, body, "scroll-lock", "modal closes on success")

	notes := b.Notes("acme")
	require.Len(t, notes, 1)
	assert.Equal(t, "Groceries", notes[0].Title)
}

func TestDashboardActions_DeleteNote(t *testing.T) {
	b := apitest.NewSeeded(t)
	b.SeedNotes("acme", "Old")
	ts := newTestServer(t, b, nil)
	br := newBrowser(t, ts)
	br.login("user@acme.test")
	br.get("/dashboard")

	id := b.Notes("acme")[0].ID
	_, body := br.action("/dashboard/notes/"+id+"/delete", "")
	assert.Contains(t, body, "Keep Note")

	_, body = br.action("/dashboard/delete/confirm", "")
	assert.Contains(t, body, "Note deleted successfully!")
	assert.Empty(t, b.Notes("acme"))
}

func TestDashboardActions_EscapeClosesModal(t *testing.T) {
	ts := newTestServer(t, apitest.NewSeeded(t), nil)
	br := newBrowser(t, ts)
	br.login("admin@acme.test")
	br.get("/dashboard")

	_, body := br.action("/dashboard/invite/open", "")
	assert.Contains(t, body, "Invite New User")

	_, body = br.action("/dashboard/modal/close?key=esc", "")
	assert.NotContains(t, body, "Invite New User")
}

func TestDashboardActions_InviteSendsRole(t *testing.T) {
	b := apitest.NewSeeded(t)
	ts := newTestServer(t, b, nil)
	br := newBrowser(t, ts)
	br.login("admin@acme.test")
	br.get("/dashboard")

	br.action("/dashboard/invite/open", "")
	_, body := br.action("/dashboard/invite/submit", `{"inviteEmail":"new@acme.test","inviteRole":"admin"}`)
	assert.Contains(t, body, "Invitation sent successfully!")

	invites := b.Invites()
	require.Len(t, invites, 1)
	assert.Equal(t, "new@acme.test", invites[0].Email)
	assert.EqualValues(t, "admin", invites[0].Role)
}

func TestDashboardActions_SignedOutRedirects(t *testing.T) {
	ts := newTestServer(t, apitest.NewSeeded(t), nil)
	res, body := newBrowser(t, ts).action("/dashboard/upgrade", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "window.location")
}

func TestDashboard_ExpiredBackendSessionSignsOut(t *testing.T) {
	b := apitest.NewSeeded(t)
	ts := newTestServer(t, b, nil)
	br := newBrowser(t, ts)
	br.login("admin@acme.test")
	br.get("/dashboard")

	b.ExpireSessions()
	res, _ := br.get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/", res.Header.Get("Location"))
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t, apitest.NewSeeded(t), nil)
	br := newBrowser(t, ts)
	br.login("admin@acme.test")

	res, _ := br.postForm("/logout", nil)
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/", res.Header.Get("Location"))

	res, _ = br.get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	ts := newTestServer(t, apitest.NewSeeded(t), m)
	br := newBrowser(t, ts)
	br.login("admin@acme.test")

	res, body := br.get("/metrics")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "notes_http_requests_total")
	assert.Contains(t, body, "notes_backend_requests_total")
	assert.Contains(t, body, "notes_web_client_states 1")
}

func TestStatic(t *testing.T) {
	ts := newTestServer(t, apitest.NewSeeded(t), nil)
	res, body := newBrowser(t, ts).get("/static/app.js")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "data-toast")
}
