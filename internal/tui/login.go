package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"notes-frontend/internal/accounts"
	"notes-frontend/internal/api"
	"notes-frontend/internal/forms"
	"notes-frontend/internal/session"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var errNoSession = errors.New("tui: login did not establish a session")

type loginDoneMsg struct{ err error }

type loginModel struct {
	form     *forms.LoginForm
	email    textinput.Model
	password textinput.Model
	focus    forms.Field
	accounts []accounts.Account
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = ""
	_ = ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func newLoginModel() loginModel {
	l := loginModel{
		form:     forms.NewLoginForm(),
		email:    newInput("you@company.com", 254),
		password: newInput("Enter your password", 128),
		accounts: accounts.Demo(),
	}
	l.password.EchoMode = textinput.EchoPassword
	l.password.EchoCharacter = '•'
	l.focusField(forms.FieldEmail)
	return l
}

func (l *loginModel) focusField(f forms.Field) {
	l.focus = f
	if f == forms.FieldPassword {
		l.email.Blur()
		_ = l.password.Focus()
		return
	}
	l.password.Blur()
	_ = l.email.Focus()
}

// fill copies demo account i into the form and the inputs.
func (l *loginModel) fill(i int) bool {
	if i < 0 || i >= len(l.accounts) {
		return false
	}
	l.form.Fill(l.accounts[i])
	l.email.SetValue(l.form.Email())
	l.password.SetValue(l.form.Password())
	l.focusField(forms.FieldPassword)
	return true
}

func loginCmd(ctx context.Context, client *api.Client, sess *session.Store, email, password string) tea.Cmd {
	return func() tea.Msg {
		if err := client.Login(ctx, email, password); err != nil {
			return loginDoneMsg{err: err}
		}
		if !sess.Refetch(ctx).Authenticated() {
			return loginDoneMsg{err: errNoSession}
		}
		return loginDoneMsg{}
	}
}

func (m appModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.form.Pending() {
		return m, nil
	}
	switch key := msg.String(); key {
	case "tab", "shift+tab", "up", "down":
		if m.login.focus == forms.FieldEmail {
			m.login.focusField(forms.FieldPassword)
		} else {
			m.login.focusField(forms.FieldEmail)
		}
		return m, nil
	case "f1", "f2", "f3", "f4":
		m.login.fill(int(key[1] - '1'))
		m.notice = ""
		return m, nil
	case "enter":
		m.notice = ""
		email, password, err := m.login.form.Begin()
		if err != nil {
			return m, nil
		}
		return m, loginCmd(m.ctx, m.client, m.session, email, password)
	}

	var cmd tea.Cmd
	if m.login.focus == forms.FieldPassword {
		before := m.login.password.Value()
		m.login.password, cmd = m.login.password.Update(msg)
		if v := m.login.password.Value(); v != before {
			m.login.form.Change(forms.FieldPassword, v)
			m.notice = ""
		}
		return m, cmd
	}
	before := m.login.email.Value()
	m.login.email, cmd = m.login.email.Update(msg)
	if v := m.login.email.Value(); v != before {
		m.login.form.Change(forms.FieldEmail, v)
		m.notice = ""
	}
	return m, cmd
}

func (m appModel) viewLogin() string {
	w := modalBoxWidth(m.screenWidth(), 60)
	bodyW := modalBodyWidth(w)
	l := m.login

	label := lipgloss.NewStyle().Bold(true)
	field := func(name string, in textinput.Model) string {
		in.Width = bodyW - 2
		return label.Render(name) + "\n" + lipgloss.NewStyle().
			Background(colorControlBg).
			Width(bodyW).
			Render(in.View())
	}

	lines := []string{
		styleMuted().Render("Sign in to continue to your dashboard"),
		"",
	}
	if m.notice != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorWarn).Width(bodyW).Render(m.notice), "")
	}
	if e := l.form.Error(); e != "" {
		lines = append(lines,
			styleError().Bold(true).Render("Login Failed"),
			styleError().Width(bodyW).Render(e),
			"",
		)
	}
	submit := "enter: Sign In"
	if l.form.Pending() {
		submit = "Signing in..."
	}
	lines = append(lines,
		field("Email", l.email),
		"",
		field("Password", l.password),
		"",
		lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render(submit),
		"",
		label.Render("Test Accounts"),
		styleMuted().Render("Press F1-F4 to auto-fill the form"),
	)
	for i, a := range l.accounts {
		if i >= 4 {
			break
		}
		lines = append(lines, fmt.Sprintf(" F%d  %-20s %s", i+1, a.Label(), styleMuted().Render(a.Email)))
	}
	lines = append(lines,
		styleMuted().Render(`All accounts use password: "password"`),
		"",
		styleMuted().Render("tab: switch field   ctrl+c: quit"),
	)
	box := renderModalBox(w, "Welcome Back!", strings.Join(lines, "\n"))
	return placeCenter(m.screenWidth(), m.screenHeight(), box)
}
