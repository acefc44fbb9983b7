package tui

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"notes-frontend/internal/api"
	"notes-frontend/internal/api/apitest"
	"notes-frontend/internal/dashboard"
	"notes-frontend/internal/model"
	"notes-frontend/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

func newTestApp(t *testing.T, b *apitest.Backend) appModel {
	t.Helper()
	c, err := api.New(api.Options{BaseURL: b.URL(), Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	m := newAppModel(context.Background(), Options{
		Client:  c,
		Session: session.New(c, zerolog.Nop()),
		Logger:  zerolog.Nop(),
	})
	return drain(t, m, m.loadSession(), 0)
}

// step feeds msg to the model and runs any resulting commands to completion.
func step(t *testing.T, m appModel, msg tea.Msg) appModel {
	t.Helper()
	mm, cmd := m.Update(msg)
	return drain(t, mm.(appModel), cmd, 0)
}

func drain(t *testing.T, m appModel, cmd tea.Cmd, depth int) appModel {
	t.Helper()
	if cmd == nil {
		return m
	}
	if depth > 8 {
		t.Fatalf("command chain too deep")
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			m = drain(t, m, c, depth+1)
		}
		return m
	}
	if msg == nil {
		return m
	}
	mm, next := m.Update(msg)
	return drain(t, mm.(appModel), next, depth+1)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "f1":
		return tea.KeyMsg{Type: tea.KeyF1}
	case "f2":
		return tea.KeyMsg{Type: tea.KeyF2}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m appModel, keys ...string) appModel {
	t.Helper()
	for _, k := range keys {
		m = step(t, m, key(k))
	}
	return m
}

func loggedIn(t *testing.T, b *apitest.Backend, fill string) appModel {
	t.Helper()
	m := newTestApp(t, b)
	m = press(t, m, fill, "enter")
	if m.screen != screenDashboard {
		t.Fatalf("expected dashboard after login, got screen %v (view:\n%s)", m.screen, m.View())
	}
	return m
}

func TestStartsOnLoginScreen(t *testing.T) {
	m := newTestApp(t, apitest.NewSeeded(t))
	if m.screen != screenLogin {
		t.Fatalf("expected login screen, got %v", m.screen)
	}
	out := m.View()
	for _, want := range []string{"Welcome Back!", "Test Accounts", `All accounts use password: "password"`, "admin@acme.test"} {
		if !strings.Contains(out, want) {
			t.Fatalf("login view missing %q:\n%s", want, out)
		}
	}
}

func TestLogin_BadPasswordShowsError(t *testing.T) {
	m := newTestApp(t, apitest.NewSeeded(t))
	m = press(t, m, "admin@acme.test", "tab", "wrong", "enter")
	if m.screen != screenLogin {
		t.Fatalf("expected to stay on login")
	}
	if !strings.Contains(m.View(), "Login Failed") {
		t.Fatalf("expected Login Failed in view:\n%s", m.View())
	}
}

func TestLogin_FillAndSubmitShowsDashboard(t *testing.T) {
	b := apitest.NewSeeded(t)
	b.SeedNotes("acme", "Groceries")
	m := loggedIn(t, b, "f1")

	out := m.View()
	for _, want := range []string{"Welcome back!", "FREE Plan", "2 of 3 notes remaining", "Admin Dashboard", "Groceries"} {
		if !strings.Contains(out, want) {
			t.Fatalf("dashboard view missing %q:\n%s", want, out)
		}
	}
}

func TestCreateNote_ShortTitleMakesNoCall(t *testing.T) {
	b := apitest.NewSeeded(t)
	m := loggedIn(t, b, "f1")

	m = press(t, m, "n")
	if m.modalSeen != dashboard.ModalNote {
		t.Fatalf("expected note modal, got %q", m.modalSeen)
	}
	m = press(t, m, "Hi", "ctrl+s")
	if got := b.Calls(http.MethodPost, "/notes"); got != 0 {
		t.Fatalf("expected no create call, got %d", got)
	}
	if !strings.Contains(m.View(), "Title must be at least 3 characters long") {
		t.Fatalf("expected title error:\n%s", m.View())
	}
}

func TestCreateNote_Saves(t *testing.T) {
	b := apitest.NewSeeded(t)
	m := loggedIn(t, b, "f1")

	m = press(t, m, "n", "Groceries", "tab", "milk and eggs", "ctrl+s")
	notes := b.Notes("acme")
	if len(notes) != 1 || notes[0].Title != "Groceries" || notes[0].Content != "milk and eggs" {
		t.Fatalf("unexpected notes: %+v", notes)
	}
	if m.modalSeen != dashboard.ModalNone {
		t.Fatalf("expected modal closed, got %q", m.modalSeen)
	}
	if !strings.Contains(m.View(), "Note created successfully!") {
		t.Fatalf("expected success toast:\n%s", m.View())
	}
}

func TestCreateNote_BlockedAtFreeLimit(t *testing.T) {
	b := apitest.NewSeeded(t)
	b.SeedNotes("acme", "One", "Two", "Three")
	m := loggedIn(t, b, "f2")

	m = press(t, m, "n")
	if m.modalSeen != dashboard.ModalNone {
		t.Fatalf("expected no modal at the limit")
	}
	if !strings.Contains(m.View(), "You've reached your Free plan limit!") {
		t.Fatalf("expected limit notice:\n%s", m.View())
	}
}

func TestEditNote_Prefills(t *testing.T) {
	b := apitest.NewSeeded(t)
	b.SeedNotes("acme", "Old title")
	m := loggedIn(t, b, "f1")

	m = press(t, m, "e")
	if got := m.noteTitle.Value(); got != "Old title" {
		t.Fatalf("expected prefilled title, got %q", got)
	}
	m = press(t, m, "!", "ctrl+s")
	if got := b.Notes("acme")[0].Title; got != "Old title!" {
		t.Fatalf("expected updated title, got %q", got)
	}
}

func TestDeleteNote_ConfirmAndCancel(t *testing.T) {
	b := apitest.NewSeeded(t)
	b.SeedNotes("acme", "Keep", "Drop")
	m := loggedIn(t, b, "f1")

	m = press(t, m, "d")
	if m.modalSeen != dashboard.ModalDelete {
		t.Fatalf("expected delete modal")
	}
	if !strings.Contains(m.View(), "Keep Note") {
		t.Fatalf("expected Keep Note button:\n%s", m.View())
	}
	m = press(t, m, "n")
	if len(b.Notes("acme")) != 2 {
		t.Fatalf("cancel must not delete")
	}

	m = press(t, m, "d", "y")
	if len(b.Notes("acme")) != 1 {
		t.Fatalf("expected one note left, got %d", len(b.Notes("acme")))
	}
	if !strings.Contains(m.View(), "Note deleted successfully!") {
		t.Fatalf("expected delete toast:\n%s", m.View())
	}
}

func TestInvite_SendsSelectedRole(t *testing.T) {
	b := apitest.NewSeeded(t)
	m := loggedIn(t, b, "f1")

	m = press(t, m, "i")
	if m.modalSeen != dashboard.ModalInvite {
		t.Fatalf("expected invite modal")
	}
	m = press(t, m, "new@acme.test", "tab", "right", "enter")

	inv := b.Invites()
	if len(inv) != 1 || inv[0].Email != "new@acme.test" || inv[0].Role != model.RoleAdmin {
		t.Fatalf("unexpected invites: %+v", inv)
	}
	if m.modalSeen != dashboard.ModalNone {
		t.Fatalf("expected invite modal to close")
	}
}

func TestInvite_MemberCannotOpen(t *testing.T) {
	m := loggedIn(t, apitest.NewSeeded(t), "f2")
	m = press(t, m, "i")
	if m.modalSeen != dashboard.ModalNone {
		t.Fatalf("members must not see the invite modal")
	}
	if strings.Contains(m.View(), "Admin Dashboard") {
		t.Fatalf("members must not see the admin section")
	}
}

func TestUpgrade(t *testing.T) {
	b := apitest.NewSeeded(t)
	m := loggedIn(t, b, "f1")

	m = press(t, m, "u")
	if got := b.Tenant("acme").SubscriptionPlan; got != model.PlanPro {
		t.Fatalf("expected pro plan, got %q", got)
	}
	out := m.View()
	if !strings.Contains(out, "PRO Plan") || !strings.Contains(out, "Unlimited notes available") {
		t.Fatalf("expected pro banner:\n%s", out)
	}
}

func TestEscapeClosesModal(t *testing.T) {
	m := loggedIn(t, apitest.NewSeeded(t), "f1")
	m = press(t, m, "n", "esc")
	if m.modalSeen != dashboard.ModalNone {
		t.Fatalf("expected esc to close the modal")
	}
	if m.dash.Host().ScrollLocked() {
		t.Fatalf("closing must release the scroll lock")
	}
}

func TestLogout_ReturnsToLogin(t *testing.T) {
	m := loggedIn(t, apitest.NewSeeded(t), "f1")
	m = press(t, m, "L")
	if m.screen != screenLogin {
		t.Fatalf("expected login screen after logout")
	}
	if m.notice != "" {
		t.Fatalf("logout is not a session expiry, got notice %q", m.notice)
	}
}

func TestExpiredSession_ReturnsToLoginWithNotice(t *testing.T) {
	b := apitest.NewSeeded(t)
	m := loggedIn(t, b, "f1")

	b.ExpireSessions()
	m = press(t, m, "r")
	if m.screen != screenLogin {
		t.Fatalf("expected login screen after expiry")
	}
	if !strings.Contains(m.View(), "Your session has ended") {
		t.Fatalf("expected expiry notice:\n%s", m.View())
	}
}
