package tui

import (
	"fmt"
	"strings"

	"notes-frontend/internal/dashboard"
	"notes-frontend/internal/forms"
	"notes-frontend/internal/model"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func newTextarea() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "Write your note here... (Markdown supported)"
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(60)
	ta.SetHeight(8)
	_ = ta.Cursor.SetMode(cursor.CursorStatic)
	return ta
}

func (m *appModel) focusNote(f forms.Field) {
	m.noteFocus = f
	if f == forms.FieldContent {
		m.noteTitle.Blur()
		_ = m.noteBody.Focus()
		return
	}
	m.noteBody.Blur()
	_ = m.noteTitle.Focus()
}

func (m appModel) updateNoteModal(msg tea.KeyMsg, v dashboard.View) (tea.Model, tea.Cmd) {
	pending := v.NoteForm != nil && v.NoteForm.Pending
	key := msg.String()
	switch {
	case key == "esc":
		if !pending {
			m.dash.HandleKey("esc")
		}
		return m.syncDashboard(""), nil
	case forms.IsSubmitShortcut(key):
		if pending {
			return m, nil
		}
		m.dash.ChangeNote(forms.FieldTitle, m.noteTitle.Value())
		m.dash.ChangeNote(forms.FieldContent, m.noteBody.Value())
		return m, m.run("note", m.dash.SubmitNote)
	case key == "tab" || key == "shift+tab":
		m.dash.BlurNote(m.noteFocus)
		if m.noteFocus == forms.FieldTitle {
			m.focusNote(forms.FieldContent)
		} else {
			m.focusNote(forms.FieldTitle)
		}
		return m, nil
	}
	if pending {
		return m, nil
	}

	var cmd tea.Cmd
	if m.noteFocus == forms.FieldContent {
		m.noteBody, cmd = m.noteBody.Update(msg)
		m.dash.ChangeNote(forms.FieldContent, m.noteBody.Value())
		return m, cmd
	}
	if key == "enter" {
		m.dash.BlurNote(forms.FieldTitle)
		m.focusNote(forms.FieldContent)
		return m, nil
	}
	m.noteTitle, cmd = m.noteTitle.Update(msg)
	m.dash.ChangeNote(forms.FieldTitle, m.noteTitle.Value())
	return m, cmd
}

func (m appModel) updateInviteModal(msg tea.KeyMsg, v dashboard.View) (tea.Model, tea.Cmd) {
	f := v.InviteForm
	if f == nil {
		return m, nil
	}
	key := msg.String()
	switch key {
	case "esc":
		m.dash.HandleKey("esc")
		return m.syncDashboard(""), nil
	case "tab", "shift+tab":
		if m.inviteFocus == inviteFocusEmail {
			m.dash.BlurInviteEmail()
			m.inviteEmail.Blur()
			m.inviteFocus = inviteFocusRole
		} else {
			_ = m.inviteEmail.Focus()
			m.inviteFocus = inviteFocusEmail
		}
		return m, nil
	case "enter":
		if f.CanSubmit {
			return m, m.run("invite", m.dash.SubmitInvite)
		}
		m.dash.BlurInviteEmail()
		return m, nil
	}
	if f.Pending {
		return m, nil
	}

	if m.inviteFocus == inviteFocusRole {
		switch key {
		case "left", "right", "up", "down", "h", "l", "j", "k", " ":
			next := model.RoleAdmin
			if f.Role == model.RoleAdmin {
				next = model.RoleMember
			}
			_ = m.dash.SetInviteRole(next)
		}
		return m, nil
	}

	var cmd tea.Cmd
	before := m.inviteEmail.Value()
	m.inviteEmail, cmd = m.inviteEmail.Update(msg)
	if after := m.inviteEmail.Value(); after != before {
		m.dash.ChangeInviteEmail(after)
	}
	return m, cmd
}

func (m appModel) updateDeleteModal(msg tea.KeyMsg, v dashboard.View) (tea.Model, tea.Cmd) {
	if v.Confirm == nil || v.Confirm.Busy {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.dash.HandleKey("esc")
	case "tab", "shift+tab", "left", "right", "h", "l":
		m.confirmFocus = m.confirmFocus.next()
		return m, nil
	case "y":
		return m, m.run("delete", m.dash.ConfirmDelete)
	case "n":
		m.dash.CancelDelete()
	case "enter":
		if m.confirmFocus == confirmFocusConfirm {
			return m, m.run("delete", m.dash.ConfirmDelete)
		}
		m.dash.CancelDelete()
	}
	return m.syncDashboard(""), nil
}

func (m appModel) viewModal(v dashboard.View) string {
	boxW := modalBoxWidth(m.screenWidth(), v.ModalSize.Columns())
	var box string
	switch v.Modal {
	case dashboard.ModalNote:
		box = m.viewNoteModal(boxW, v.NoteForm)
	case dashboard.ModalInvite:
		box = m.viewInviteModal(boxW, v.InviteForm)
	case dashboard.ModalDelete:
		if v.Confirm != nil {
			box = renderConfirmModal(boxW, *v.Confirm, m.confirmFocus)
		}
	}
	return placeCenter(m.screenWidth(), m.screenHeight(), box)
}

func renderButton(label string, primary, disabled bool) string {
	st := lipgloss.NewStyle().Padding(0, 1).Foreground(colorSurfaceFg).Background(colorControlBg)
	switch {
	case disabled:
		st = st.Foreground(colorMuted)
	case primary:
		st = st.Foreground(colorAccentFg).Background(colorAccent).Bold(true)
	}
	return st.Render(label)
}

func fieldFooter(bodyW int, errMsg, count string, warn bool) string {
	countSt := styleMuted()
	if warn {
		countSt = lipgloss.NewStyle().Foreground(colorWarn)
	}
	right := countSt.Render(count)
	left := ""
	if errMsg != "" {
		left = styleError().Render(errMsg)
	}
	gap := max(1, bodyW-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

func (m appModel) viewNoteModal(boxW int, f *dashboard.NoteFormView) string {
	if f == nil {
		return ""
	}
	bodyW := modalBodyWidth(boxW)
	label := lipgloss.NewStyle().Bold(true)

	title := m.noteTitle
	title.Width = bodyW - 2
	body := m.noteBody
	body.SetWidth(bodyW)

	input := lipgloss.NewStyle().Background(colorControlBg).Width(bodyW)
	lines := []string{
		label.Render("Title"),
		input.Render(title.View()),
		fieldFooter(bodyW, f.TitleError, fmt.Sprintf("%d/%d", f.TitleCount, model.TitleMaxLen), false),
		"",
		label.Render("Content"),
		body.View(),
		fieldFooter(bodyW, f.ContentError, fmt.Sprintf("%d/%d", f.ContentCount, model.ContentMaxLen), f.ContentNearLimit),
		"",
		renderButton("Cancel", false, f.Pending) + " " + renderButton(f.SubmitLabel, true, !f.CanSubmit),
		"",
		styleMuted().Width(bodyW).Render("tab: next field   ctrl+s: save   esc: cancel"),
	}
	return renderModalBox(boxW, f.Heading, strings.Join(lines, "\n"))
}

func (m appModel) viewInviteModal(boxW int, f *dashboard.InviteFormView) string {
	if f == nil {
		return ""
	}
	bodyW := modalBodyWidth(boxW)
	label := lipgloss.NewStyle().Bold(true)

	email := m.inviteEmail
	email.Width = bodyW - 2

	var lines []string
	if f.Success != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorSuccess).Width(bodyW).Render(f.Success), "")
	}
	if f.SubmitError != "" {
		lines = append(lines, styleError().Width(bodyW).Render(f.SubmitError), "")
	}
	lines = append(lines,
		label.Render("Email Address"),
		lipgloss.NewStyle().Background(colorControlBg).Width(bodyW).Render(email.View()),
	)
	if f.Error != "" {
		lines = append(lines, styleError().Render(f.Error))
	}
	lines = append(lines, "", label.Render("Role"))
	for _, opt := range forms.RoleOptions() {
		mark := "( )"
		if opt.Value == f.Role {
			mark = "(•)"
		}
		row := fmt.Sprintf("%s %s  %s", mark, opt.Label, styleMuted().Render(opt.Description))
		if m.inviteFocus == inviteFocusRole && opt.Value == f.Role {
			row = lipgloss.NewStyle().Foreground(colorAccent).Render(mark+" "+opt.Label) + "  " + styleMuted().Render(opt.Description)
		}
		lines = append(lines, truncateToWidth(row, bodyW))
	}
	lines = append(lines,
		"",
		renderButton("Cancel", false, f.Pending)+" "+renderButton(f.SubmitLabel, true, !f.CanSubmit),
		"",
		styleMuted().Width(bodyW).Render("tab: email/role   ←/→: change role   enter: send   esc: cancel"),
	)
	return renderModalBox(boxW, "Invite New User", strings.Join(lines, "\n"))
}
