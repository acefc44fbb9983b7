package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"notes-frontend/internal/api"
	"notes-frontend/internal/api/apitest"
	"notes-frontend/internal/metrics"
	"notes-frontend/internal/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, b *apitest.Backend) (*api.Client, *metrics.Metrics) {
	t.Helper()
	m := metrics.New()
	c, err := api.New(api.Options{BaseURL: b.URL(), Logger: zerolog.Nop(), Metrics: m})
	require.NoError(t, err)
	return c, m
}

func TestNew_RejectsNonHTTPBaseURL(t *testing.T) {
	_, err := api.New(api.Options{BaseURL: "ftp://example.com"})
	require.Error(t, err)
}

func TestNew_DefaultsBaseURL(t *testing.T) {
	c, err := api.New(api.Options{})
	require.NoError(t, err)
	assert.Equal(t, api.DefaultBaseURL, c.BaseURL())
}

func TestLogin_SetsCookieAndProfileResolvesUser(t *testing.T) {
	b := apitest.NewSeeded(t)
	c, _ := newClient(t, b)
	ctx := context.Background()

	_, err := c.Profile(ctx)
	require.True(t, api.IsUnauthorized(err), "expected 401 before login, got %v", err)

	require.NoError(t, c.Login(ctx, "admin@acme.test", "password"))
	require.NotEmpty(t, c.Cookies())

	u, err := c.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin@acme.test", u.Email)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.NotEmpty(t, u.ID, "_id should decode into ID")
}

func TestLogin_BadPasswordSurfacesBackendMessage(t *testing.T) {
	b := apitest.NewSeeded(t)
	c, _ := newClient(t, b)

	err := c.Login(context.Background(), "admin@acme.test", "nope")
	require.Error(t, err)

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", api.MessageOr(err, "Login failed. Please try again."))
}

func TestNotesCRUD(t *testing.T) {
	b := apitest.NewSeeded(t)
	c, _ := newClient(t, b)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "user@globex.test", "password"))

	notes, err := c.ListNotes(ctx)
	require.NoError(t, err)
	assert.NotNil(t, notes)
	assert.Empty(t, notes)

	require.NoError(t, c.CreateNote(ctx, model.NoteInput{Title: "Groceries", Content: "milk"}))
	notes, err = c.ListNotes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	id := notes[0].ID
	require.NotEmpty(t, id)

	require.NoError(t, c.UpdateNote(ctx, id, model.NoteInput{Title: "Groceries v2", Content: ""}))
	notes, err = c.ListNotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Groceries v2", notes[0].Title)

	require.NoError(t, c.DeleteNote(ctx, id))
	notes, err = c.ListNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)

	err = c.DeleteNote(ctx, id)
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestTenantUpgradeAndInvite(t *testing.T) {
	b := apitest.NewSeeded(t)
	c, _ := newClient(t, b)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "admin@acme.test", "password"))

	tn, err := c.CurrentTenant(ctx)
	require.NoError(t, err)
	assert.Equal(t, "acme", tn.Slug)
	assert.Equal(t, model.PlanFree, tn.SubscriptionPlan)

	require.NoError(t, c.UpgradeTenant(ctx, tn.Slug))
	assert.Equal(t, model.PlanPro, b.Tenant("acme").SubscriptionPlan)

	require.NoError(t, c.Invite(ctx, "new@acme.test", model.RoleAdmin))
	invites := b.Invites()
	require.Len(t, invites, 1)
	assert.Equal(t, model.RoleAdmin, invites[0].Role)
}

func TestUpgradeTenant_RequiresSlugWithoutNetworkCall(t *testing.T) {
	b := apitest.NewSeeded(t)
	c, _ := newClient(t, b)
	require.Error(t, c.UpgradeTenant(context.Background(), "  "))
	assert.Zero(t, b.Calls(http.MethodPost, "/tenants//upgrade"))
}

func TestLogout_ClearsSession(t *testing.T) {
	b := apitest.NewSeeded(t)
	c, _ := newClient(t, b)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "user@acme.test", "password"))
	require.NoError(t, c.Logout(ctx))

	_, err := c.ListNotes(ctx)
	assert.True(t, api.IsUnauthorized(err))
}

func TestBackendCallsAreCounted(t *testing.T) {
	b := apitest.NewSeeded(t)
	c, m := newClient(t, b)
	_, _ = c.Profile(context.Background())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackendRequests.WithLabelValues("auth.profile", "401")))
}

func TestMessageOr_FallsBackForTransportErrors(t *testing.T) {
	assert.Equal(t, "fallback", api.MessageOr(errors.New("dial tcp: refused"), "fallback"))
	assert.Equal(t, "fallback", api.MessageOr(&api.Error{Status: 500}, "fallback"))
}
