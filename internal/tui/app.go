package tui

import (
	"context"
	"errors"
	"time"

	"notes-frontend/internal/api"
	"notes-frontend/internal/dashboard"
	"notes-frontend/internal/forms"
	"notes-frontend/internal/session"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

type screen int

const (
	screenLoading screen = iota
	screenLogin
	screenDashboard
)

const (
	defaultWidth  = 100
	defaultHeight = 30
)

type (
	sessionMsg  struct{ s session.Session }
	dashDoneMsg struct {
		op  string
		err error
	}
	toastTickMsg struct{}
)

type inviteFocus int

const (
	inviteFocusEmail inviteFocus = iota
	inviteFocusRole
)

type appModel struct {
	ctx     context.Context
	client  *api.Client
	session *session.Store
	log     zerolog.Logger
	now     func() time.Time

	width  int
	height int
	screen screen
	notice string

	login loginModel

	dash         *dashboard.Dashboard
	notes        list.Model
	modalSeen    dashboard.ModalKind
	noteTitle    textinput.Model
	noteBody     textarea.Model
	noteFocus    forms.Field
	inviteEmail  textinput.Model
	inviteFocus  inviteFocus
	confirmFocus confirmModalFocus
}

func newAppModel(ctx context.Context, opts Options) appModel {
	m := appModel{
		ctx:         ctx,
		client:      opts.Client,
		session:     opts.Session,
		log:         opts.Logger,
		now:         time.Now,
		screen:      screenLoading,
		login:       newLoginModel(),
		notes:       newList(nil),
		noteTitle:   newInput("Enter note title...", 200),
		noteBody:    newTextarea(),
		inviteEmail: newInput("colleague@company.com", 254),
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.loadSession(), tickToasts())
}

func (m appModel) loadSession() tea.Cmd {
	ctx, s := m.ctx, m.session
	return func() tea.Msg { return sessionMsg{s: s.EnsureLoaded(ctx)} }
}

func tickToasts() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return toastTickMsg{} })
}

// run executes a blocking dashboard operation off the update loop.
func (m appModel) run(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg { return dashDoneMsg{op: op, err: fn(ctx)} }
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case toastTickMsg:
		return m, tickToasts()

	case sessionMsg:
		if msg.s.Authenticated() {
			return m.enterDashboard()
		}
		m.screen = screenLogin
		return m, nil

	case loginDoneMsg:
		m.login.form.Finish(msg.err)
		if msg.err != nil {
			m.log.Debug().Err(msg.err).Msg("login failed")
			return m, nil
		}
		return m.enterDashboard()

	case dashDoneMsg:
		if msg.err != nil {
			m.log.Debug().Err(msg.err).Str("op", msg.op).Msg("dashboard operation failed")
		}
		return m.syncDashboard(msg.op), nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenLogin:
			return m.updateLogin(msg)
		case screenDashboard:
			return m.updateDashboard(msg)
		}
	}
	return m, nil
}

func (m appModel) enterDashboard() (tea.Model, tea.Cmd) {
	if m.dash != nil {
		m.dash.Unmount()
	}
	m.dash = dashboard.New(m.client, m.session, m.log)
	m.screen = screenDashboard
	m.login = newLoginModel()
	m.notice = ""
	m.modalSeen = dashboard.ModalNone
	return m, m.run("mount", m.dash.Mount)
}

// syncDashboard pulls a fresh snapshot into the widgets and follows a
// redirect back to the login screen.
func (m appModel) syncDashboard(op string) appModel {
	if m.dash == nil {
		return m
	}
	v := m.dash.View()
	if v.Redirect != "" {
		m.dash.Unmount()
		m.dash = nil
		m.session.Clear()
		m.screen = screenLogin
		m.login = newLoginModel()
		m.modalSeen = dashboard.ModalNone
		if op != "logout" {
			m.notice = "Your session has ended. Please sign in again."
		}
		return m
	}
	setNotes(&m.notes, v.Notes, v.DeletingID)
	if v.Modal != m.modalSeen {
		m.modalSeen = v.Modal
		m.modalOpened(v)
	}
	return m
}

// modalOpened loads the newly opened modal's draft into the inputs.
func (m *appModel) modalOpened(v dashboard.View) {
	m.noteTitle.Blur()
	m.noteBody.Blur()
	m.inviteEmail.Blur()
	switch v.Modal {
	case dashboard.ModalNote:
		if f := v.NoteForm; f != nil {
			m.noteTitle.SetValue(f.Title)
			m.noteTitle.CursorEnd()
			m.noteBody.SetValue(f.Content)
		}
		m.focusNote(forms.FieldTitle)
	case dashboard.ModalInvite:
		if f := v.InviteForm; f != nil {
			m.inviteEmail.SetValue(f.Email)
			m.inviteEmail.CursorEnd()
		}
		m.inviteFocus = inviteFocusEmail
		_ = m.inviteEmail.Focus()
	case dashboard.ModalDelete:
		m.confirmFocus = confirmFocusCancel
	}
}

func (m appModel) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.dash.View()
	switch v.Modal {
	case dashboard.ModalNote:
		return m.updateNoteModal(msg, v)
	case dashboard.ModalInvite:
		return m.updateInviteModal(msg, v)
	case dashboard.ModalDelete:
		return m.updateDeleteModal(msg, v)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "n":
		if err := m.dash.OpenCreate(); err != nil && v.LimitReached() {
			m.dash.Toasts().Error("You've reached your Free plan limit! Upgrade to Pro to create unlimited notes.")
		}
	case "e", "enter":
		if n, ok := selectedNote(m.notes); ok {
			_ = m.dash.OpenEdit(n.ID)
		}
	case "d", "delete":
		if n, ok := selectedNote(m.notes); ok {
			_ = m.dash.RequestDelete(n.ID)
		}
	case "i":
		if err := m.dash.OpenInvite(); errors.Is(err, dashboard.ErrForbidden) {
			m.dash.Toasts().Error("Only admins can invite users.")
		}
	case "u":
		if v.CanUpgrade() && !v.Upgrading {
			return m, m.run("upgrade", m.dash.Upgrade)
		}
	case "r":
		return m, m.run("refresh", m.dash.Mount)
	case "L":
		return m, m.run("logout", m.dash.Logout)
	default:
		var cmd tea.Cmd
		m.notes, cmd = m.notes.Update(msg)
		return m, cmd
	}
	return m.syncDashboard(""), nil
}

func (m *appModel) resize() {
	listW, _ := m.paneWidths()
	m.notes.SetSize(listW, max(5, m.screenHeight()-bannerHeight))
}

func (m appModel) screenWidth() int {
	if m.width <= 0 {
		return defaultWidth
	}
	return m.width
}

func (m appModel) screenHeight() int {
	if m.height <= 0 {
		return defaultHeight
	}
	return m.height
}

// paneWidths splits the screen between the note list and the preview.
func (m appModel) paneWidths() (listW, previewW int) {
	w := m.screenWidth()
	listW = max(30, w*2/5)
	previewW = max(20, w-listW-1)
	return listW, previewW
}
