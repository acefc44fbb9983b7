package dashboard_test

import (
	"context"
	"net/http"
	"testing"

	"notes-frontend/internal/api"
	"notes-frontend/internal/api/apitest"
	"notes-frontend/internal/dashboard"
	"notes-frontend/internal/forms"
	"notes-frontend/internal/model"
	"notes-frontend/internal/session"
	"notes-frontend/internal/toast"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mounted logs in as email against b and returns a mounted dashboard.
func mounted(t *testing.T, b *apitest.Backend, email string) *dashboard.Dashboard {
	t.Helper()
	ctx := context.Background()
	c, err := api.New(api.Options{BaseURL: b.URL(), Logger: zerolog.Nop()})
	require.NoError(t, err)
	if email != "" {
		require.NoError(t, c.Login(ctx, email, "password"))
	}
	s := session.New(c, zerolog.Nop())
	s.Fetch(ctx)

	d := dashboard.New(c, s, zerolog.Nop())
	require.NoError(t, d.Mount(ctx))
	return d
}

func lastToast(t *testing.T, d *dashboard.Dashboard) toast.Toast {
	t.Helper()
	got := d.Toasts().Drain()
	require.NotEmpty(t, got, "expected a toast")
	return got[len(got)-1]
}

func TestMount_UnauthenticatedRedirects(t *testing.T) {
	b := apitest.NewSeeded(t)
	d := mounted(t, b, "")

	v := d.View()
	assert.Equal(t, "/", v.Redirect)
	assert.Zero(t, b.Calls(http.MethodGet, "/notes"), "no data fetch without a user")
}

func TestMount_LoadsNotesAndTenant(t *testing.T) {
	b := apitest.NewSeeded(t)
	b.SeedNotes("acme", "One", "Two")
	d := mounted(t, b, "admin@acme.test")

	v := d.View()
	assert.Empty(t, v.Redirect)
	assert.Len(t, v.Notes, 2)
	require.NotNil(t, v.Tenant)
	assert.Equal(t, "acme", v.Tenant.Slug)
	assert.True(t, v.IsFreePlan())
	assert.Equal(t, 1, v.RemainingNotes())
	assert.Equal(t, 66, v.UsagePercent())
	assert.False(t, v.CreateDisabled())
	assert.True(t, v.CanUpgrade())
	assert.True(t, v.CanInvite())
	assert.False(t, v.LoadingNotes)
}

func TestFreePlanAtLimitDisablesCreate(t *testing.T) {
	b := apitest.NewSeeded(t)
	b.SeedNotes("acme", "a1", "a2", "a3")
	d := mounted(t, b, "user@acme.test")

	v := d.View()
	assert.Zero(t, v.RemainingNotes())
	assert.True(t, v.CreateDisabled())
	assert.False(t, v.CanUpgrade(), "members cannot upgrade")
	assert.False(t, v.CanInvite())
	assert.ErrorIs(t, d.OpenCreate(), dashboard.ErrNoteLimit)
	assert.Equal(t, dashboard.ModalNone, d.View().Modal)
}

func TestProPlanIgnoresLimit(t *testing.T) {
	b := apitest.NewSeeded(t)
	b.SeedNotes("globex", "g1", "g2", "g3", "g4")
	d := mounted(t, b, "user@globex.test")

	v := d.View()
	assert.True(t, v.IsProPlan())
	assert.False(t, v.CreateDisabled())
	require.NoError(t, d.OpenCreate())
}

func TestFetchNotes_UnauthorizedRedirects(t *testing.T) {
	b := apitest.NewSeeded(t)
	d := mounted(t, b, "user@acme.test")

	b.ExpireSessions()
	err := d.FetchNotes(context.Background())
	require.Error(t, err)

	v := d.View()
	assert.Equal(t, "Failed to fetch notes.", v.Error)
	assert.Equal(t, "/", v.Redirect)
}

func TestFetchNotes_ServerErrorKeepsStaleList(t *testing.T) {
	b := apitest.NewSeeded(t)
	b.SeedNotes("acme", "Keep")
	d := mounted(t, b, "user@acme.test")

	b.FailNext(http.MethodGet, "/notes", http.StatusInternalServerError, "boom")
	require.Error(t, d.FetchNotes(context.Background()))

	v := d.View()
	assert.Equal(t, "Failed to fetch notes.", v.Error)
	assert.Empty(t, v.Redirect)
	assert.Len(t, v.Notes, 1)
}

func TestFetchTenant_FailureToasts(t *testing.T) {
	b := apitest.NewSeeded(t)
	d := mounted(t, b, "user@acme.test")
	d.Toasts().Drain()

	b.FailNext(http.MethodGet, "/tenants/tenant", http.StatusInternalServerError, "")
	require.Error(t, d.FetchTenant(context.Background()))
	tt := lastToast(t, d)
	assert.Equal(t, toast.KindError, tt.Kind)
	assert.Equal(t, "failed to fetch tenant info", tt.Message)
}

func TestCreateNote_SuccessClosesModalAndRefetches(t *testing.T) {
	b := apitest.NewSeeded(t)
	d := mounted(t, b, "user@acme.test")
	ctx := context.Background()
	before := b.Calls(http.MethodGet, "/notes")

	require.NoError(t, d.OpenCreate())
	v := d.View()
	assert.Equal(t, dashboard.ModalNote, v.Modal)
	assert.True(t, v.ScrollLocked)
	require.NotNil(t, v.NoteForm)
	assert.Equal(t, "Create New Note", v.NoteForm.Heading)

	d.ChangeNote(forms.FieldTitle, "  Groceries ")
	d.ChangeNote(forms.FieldContent, "milk")
	require.NoError(t, d.SubmitNote(ctx))

	v = d.View()
	assert.Equal(t, dashboard.ModalNone, v.Modal)
	assert.False(t, v.ScrollLocked)
	assert.False(t, v.ModalLoading)
	require.Len(t, v.Notes, 1)
	assert.Equal(t, "Groceries", v.Notes[0].Title)
	assert.Equal(t, before+1, b.Calls(http.MethodGet, "/notes"))
	assert.Equal(t, "Note created successfully!", lastToast(t, d).Message)
}

func TestCreateNote_InvalidTitleMakesNoCall(t *testing.T) {
	b := apitest.NewSeeded(t)
	d := mounted(t, b, "user@acme.test")

	require.NoError(t, d.OpenCreate())
	d.ChangeNote(forms.FieldTitle, "Hi")
	err := d.SubmitNote(context.Background())
	require.ErrorIs(t, err, forms.ErrInvalid)

	assert.Zero(t, b.Calls(http.MethodPost, "/notes"))
	v := d.View()
	assert.Equal(t, dashboard.ModalNote, v.Modal)
	assert.Equal(t, "Title must be at least 3 characters long", v.NoteForm.TitleError)
}

func TestCreateNote_LimitFromBackendToasts(t *testing.T) {
	b := apitest.NewSeeded(t)
	b.SeedNotes("acme", "a1", "a2")
	d := mounted(t, b, "user@acme.test")
	b.SeedNotes("acme", "sneaked in")

	require.NoError(t, d.OpenCreate())
	d.ChangeNote(forms.FieldTitle, "Fourth")
	require.Error(t, d.SubmitNote(context.Background()))

	tt := lastToast(t, d)
	assert.Equal(t, toast.KindError, tt.Kind)
	assert.Equal(t, "Free plan limit reached. Upgrade to Pro.", tt.Message)
	assert.Equal(t, dashboard.ModalNote, d.View().Modal, "modal stays open on failure")
}

func TestEditNote_UpdatesAndToasts(t *testing.T) {
	b := apitest.NewSeeded(t)
	b.SeedNotes("acme", "Draft")
	d := mounted(t, b, "user@acme.test")
	id := d.View().Notes[0].ID

	require.ErrorIs(t, d.OpenEdit("missing"), dashboard.ErrNotFound)
	require.NoError(t, d.OpenEdit(id))
	v := d.View()
	assert.Equal(t, "Edit Note", v.NoteForm.Heading)
	assert.Equal(t, "Draft", v.NoteForm.Title)
	assert.Equal(t, "Update Note", v.NoteForm.SubmitLabel)

	d.ChangeNote(forms.FieldTitle, "Final")
	require.NoError(t, d.SubmitNote(context.Background()))

	assert.Equal(t, "Final", b.Notes("acme")[0].Title)
	assert.Equal(t, "Final", d.View().Notes[0].Title)
	assert.Equal(t, "Note updated successfully!", lastToast(t, d).Message)
}

func TestEditNote_FailureFallback(t *testing.T) {
	b := apitest.NewSeeded(t)
	b.SeedNotes("acme", "Draft")
	d := mounted(t, b, "user@acme.test")
	id := d.View().Notes[0].ID

	require.NoError(t, d.OpenEdit(id))
	b.FailNext(http.MethodPut, "/notes/"+id, http.StatusInternalServerError, "")
	require.Error(t, d.SubmitNote(context.Background()))
	assert.Equal(t, "Failed to update note.", lastToast(t, d).Message)
}

func TestCloseModalClearsEditing(t *testing.T) {
	b := apitest.NewSeeded(t)
	b.SeedNotes("acme", "Draft")
	d := mounted(t, b, "user@acme.test")

	require.NoError(t, d.OpenEdit(d.View().Notes[0].ID))
	assert.True(t, d.HandleKey("esc"))
	v := d.View()
	assert.Equal(t, dashboard.ModalNone, v.Modal)
	assert.Nil(t, v.NoteForm)
	assert.Zero(t, d.Host().EscapeListeners())

	require.NoError(t, d.OpenCreate())
	assert.Equal(t, "Create New Note", d.View().NoteForm.Heading, "editing was cleared")
	assert.True(t, d.ClickOverlay())
	assert.False(t, d.View().ScrollLocked)
}

func TestDelete_ConfirmDeletesAndRefetches(t *testing.T) {
	b := apitest.NewSeeded(t)
	b.SeedNotes("acme", "Trash")
	d := mounted(t, b, "user@acme.test")
	id := d.View().Notes[0].ID

	require.NoError(t, d.RequestDelete(id))
	v := d.View()
	assert.Equal(t, dashboard.ModalDelete, v.Modal)
	require.NotNil(t, v.Confirm)
	assert.Equal(t, "Delete Note", v.Confirm.Title)
	assert.Equal(t, id, v.Confirm.Note.ID)

	require.NoError(t, d.ConfirmDelete(context.Background()))
	v = d.View()
	assert.Empty(t, v.Notes)
	assert.Equal(t, dashboard.ModalNone, v.Modal)
	assert.Nil(t, v.Confirm)
	assert.Empty(t, v.DeletingID)
	assert.Equal(t, "Note deleted successfully!", lastToast(t, d).Message)
}

func TestDelete_FailureStillClearsPending(t *testing.T) {
	b := apitest.NewSeeded(t)
	b.SeedNotes("acme", "Trash")
	d := mounted(t, b, "user@acme.test")
	id := d.View().Notes[0].ID
	before := b.Calls(http.MethodGet, "/notes")

	require.NoError(t, d.RequestDelete(id))
	b.FailNext(http.MethodDelete, "/notes/"+id, http.StatusForbidden, "Not allowed")
	require.Error(t, d.ConfirmDelete(context.Background()))

	v := d.View()
	assert.Equal(t, dashboard.ModalNone, v.Modal)
	assert.Len(t, v.Notes, 1)
	assert.Equal(t, before+1, b.Calls(http.MethodGet, "/notes"))
	assert.Equal(t, "Not allowed", lastToast(t, d).Message)
	assert.ErrorIs(t, d.ConfirmDelete(context.Background()), dashboard.ErrNoDeleteSet)
}

func TestDelete_Cancel(t *testing.T) {
	b := apitest.NewSeeded(t)
	b.SeedNotes("acme", "Keep")
	d := mounted(t, b, "user@acme.test")

	require.NoError(t, d.RequestDelete(d.View().Notes[0].ID))
	d.CancelDelete()
	assert.Equal(t, dashboard.ModalNone, d.View().Modal)
	assert.Zero(t, b.Calls(http.MethodDelete, "/notes/"+d.View().Notes[0].ID))
}

func TestInvite_SuccessClosesModal(t *testing.T) {
	b := apitest.NewSeeded(t)
	d := mounted(t, b, "admin@acme.test")

	require.NoError(t, d.OpenInvite())
	d.ChangeInviteEmail("new@acme.test")
	require.NoError(t, d.SetInviteRole(model.RoleAdmin))
	require.NoError(t, d.SubmitInvite(context.Background()))

	assert.Equal(t, dashboard.ModalNone, d.View().Modal)
	invites := b.Invites()
	require.Len(t, invites, 1)
	assert.Equal(t, "new@acme.test", invites[0].Email)
	assert.Equal(t, model.RoleAdmin, invites[0].Role)
	assert.Equal(t, "Invitation sent successfully!", lastToast(t, d).Message)
}

func TestInvite_FailureKeepsModalOpen(t *testing.T) {
	b := apitest.NewSeeded(t)
	d := mounted(t, b, "admin@acme.test")

	require.NoError(t, d.OpenInvite())
	d.ChangeInviteEmail("user@acme.test")
	require.Error(t, d.SubmitInvite(context.Background()))

	v := d.View()
	assert.Equal(t, dashboard.ModalInvite, v.Modal)
	require.NotNil(t, v.InviteForm)
	assert.Equal(t, "User already exists", v.InviteForm.SubmitError)
	assert.Equal(t, "User already exists", lastToast(t, d).Message)
}

func TestInvite_MemberForbidden(t *testing.T) {
	b := apitest.NewSeeded(t)
	d := mounted(t, b, "user@acme.test")
	assert.ErrorIs(t, d.OpenInvite(), dashboard.ErrForbidden)
}

func TestUpgrade_RefetchesOnce(t *testing.T) {
	b := apitest.NewSeeded(t)
	d := mounted(t, b, "admin@acme.test")
	tenantBefore := b.Calls(http.MethodGet, "/tenants/tenant")
	notesBefore := b.Calls(http.MethodGet, "/notes")

	require.NoError(t, d.Upgrade(context.Background()))

	assert.Equal(t, tenantBefore+1, b.Calls(http.MethodGet, "/tenants/tenant"))
	assert.Equal(t, notesBefore+1, b.Calls(http.MethodGet, "/notes"))
	v := d.View()
	assert.True(t, v.IsProPlan())
	assert.False(t, v.CanUpgrade())
	assert.Equal(t, "Subscription upgraded to Pro!", lastToast(t, d).Message)
	assert.ErrorIs(t, d.Upgrade(context.Background()), dashboard.ErrForbidden)
}

func TestUpgrade_FailureToasts(t *testing.T) {
	b := apitest.NewSeeded(t)
	d := mounted(t, b, "admin@acme.test")

	b.FailNext(http.MethodPost, "/tenants/acme/upgrade", http.StatusInternalServerError, "")
	require.Error(t, d.Upgrade(context.Background()))
	assert.Equal(t, "Upgrade failed.", lastToast(t, d).Message)
	assert.True(t, d.View().IsFreePlan())
}

func TestLogout(t *testing.T) {
	b := apitest.NewSeeded(t)
	d := mounted(t, b, "user@acme.test")

	b.FailNext(http.MethodPost, "/auth/logout", http.StatusInternalServerError, "")
	require.Error(t, d.Logout(context.Background()))
	assert.Empty(t, d.View().Redirect)
	assert.Equal(t, "Logout failed", lastToast(t, d).Message)

	require.NoError(t, d.Logout(context.Background()))
	v := d.View()
	assert.Equal(t, "/", v.Redirect)
	assert.Nil(t, v.User)
}

func TestVersionChangesWithState(t *testing.T) {
	b := apitest.NewSeeded(t)
	d := mounted(t, b, "user@acme.test")

	v1, err := d.Version()
	require.NoError(t, err)
	v2, err := d.Version()
	require.NoError(t, err)
	assert.Equal(t, v1, v2)

	require.NoError(t, d.OpenCreate())
	v3, err := d.Version()
	require.NoError(t, err)
	assert.NotEqual(t, v1, v3)
}

func TestRequestDelete_NamesTheNote(t *testing.T) {
	b := apitest.NewSeeded(t)
	b.SeedNotes("acme", "Groceries")
	d := mounted(t, b, "user@acme.test")

	require.NoError(t, d.RequestDelete(d.View().Notes[0].ID))
	c := d.View().Confirm
	require.NotNil(t, c)
	assert.Equal(t, `Are you sure you want to delete "Groceries"? This action cannot be undone and the note will be permanently removed.`, c.Message)
	assert.Equal(t, "Keep Note", c.CancelLabel)
	assert.Equal(t, "Delete Note", c.ConfirmLabel)
}
