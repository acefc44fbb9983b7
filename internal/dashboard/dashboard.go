// Package dashboard orchestrates the signed-in page: the note list, the tenant
// plan, and the create/edit, delete, invite and upgrade flows.
//
// A Dashboard is the only writer of its state. Every method is safe for
// concurrent use; backend calls run without the lock held, so overlapping
// requests behave as "last fetch wins". Renderers read immutable View
// snapshots.
package dashboard

import (
	"context"
	"errors"
	"sync"

	"notes-frontend/internal/api"
	"notes-frontend/internal/forms"
	"notes-frontend/internal/modal"
	"notes-frontend/internal/model"
	"notes-frontend/internal/session"
	"notes-frontend/internal/toast"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// LoginPath is where an unauthenticated visitor is sent.
const LoginPath = "/"

var (
	ErrNoteLimit   = errors.New("dashboard: free plan note limit reached")
	ErrNotFound    = errors.New("dashboard: note not found")
	ErrForbidden   = errors.New("dashboard: action requires an admin")
	ErrNoModal     = errors.New("dashboard: no matching modal is open")
	ErrBusy        = errors.New("dashboard: request already in flight")
	ErrNoDeleteSet = errors.New("dashboard: no note pending delete")
)

// Backend is the subset of the API client the dashboard drives.
type Backend interface {
	ListNotes(ctx context.Context) ([]model.Note, error)
	CreateNote(ctx context.Context, in model.NoteInput) error
	UpdateNote(ctx context.Context, id string, in model.NoteInput) error
	DeleteNote(ctx context.Context, id string) error
	CurrentTenant(ctx context.Context) (*model.Tenant, error)
	UpgradeTenant(ctx context.Context, slug string) error
	Invite(ctx context.Context, email string, role model.Role) error
	Logout(ctx context.Context) error
}

type ModalKind string

const (
	ModalNone   ModalKind = ""
	ModalNote   ModalKind = "note"
	ModalDelete ModalKind = "delete"
	ModalInvite ModalKind = "invite"
)

type Dashboard struct {
	backend Backend
	session *session.Store
	log     zerolog.Logger
	toasts  *toast.Queue
	host    *modal.Host

	mu            sync.Mutex
	user          *model.User
	notes         []model.Note
	tenant        *model.Tenant
	loadingNotes  bool
	modalLoading  bool
	upgrading     bool
	errMsg        string
	redirect      string
	editing       *model.Note
	pendingDelete *model.Note
	deletingID    string

	open        ModalKind
	noteModal   *modal.Modal
	inviteModal *modal.Modal
	confirm     *modal.Confirm
	noteForm    *forms.NoteForm
	inviteForm  *forms.InviteForm
}

func New(b Backend, s *session.Store, log zerolog.Logger) *Dashboard {
	d := &Dashboard{
		backend: b,
		session: s,
		log:     log.With().Str("component", "dashboard").Logger(),
		toasts:  toast.NewQueue(),
		host:    modal.NewHost(),
	}
	// OnClose callbacks run with d.mu held.
	noteOpts := modal.DefaultOptions("")
	noteOpts.Size = modal.SizeLG
	noteOpts.OnClose = d.clearNoteLocked
	d.noteModal = modal.New("note-modal", noteOpts)

	inviteOpts := modal.DefaultOptions("Invite New User")
	inviteOpts.OnClose = d.clearInviteLocked
	d.inviteModal = modal.New("invite-modal", inviteOpts)

	d.confirm = modal.NewConfirm("delete-modal", d.clearDeleteLocked)
	return d
}

func (d *Dashboard) Toasts() *toast.Queue { return d.toasts }
func (d *Dashboard) Host() *modal.Host    { return d.host }

// Mount waits for the session, redirects when nobody is signed in, and then
// loads notes and tenant info concurrently. Fetch failures are reported
// through state and toasts, not the returned error.
func (d *Dashboard) Mount(ctx context.Context) error {
	sess, err := d.session.Wait(ctx)
	if err != nil {
		return err
	}
	if !sess.Authenticated() {
		d.mu.Lock()
		d.redirect = LoginPath
		d.mu.Unlock()
		return nil
	}

	d.mu.Lock()
	d.user = sess.User
	d.mu.Unlock()

	d.refresh(ctx)
	return nil
}

// refresh runs the two independent fetches; neither cancels the other.
func (d *Dashboard) refresh(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error {
		_ = d.FetchNotes(ctx)
		return nil
	})
	g.Go(func() error {
		_ = d.FetchTenant(ctx)
		return nil
	})
	_ = g.Wait()
}

func (d *Dashboard) FetchNotes(ctx context.Context) error {
	d.mu.Lock()
	d.errMsg = ""
	d.loadingNotes = true
	d.mu.Unlock()

	notes, err := d.backend.ListNotes(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loadingNotes = false
	if err != nil {
		d.log.Warn().Err(err).Msg("fetch notes failed")
		d.errMsg = "Failed to fetch notes."
		if api.IsUnauthorized(err) {
			d.redirect = LoginPath
		}
		return err
	}
	d.notes = notes
	return nil
}

func (d *Dashboard) FetchTenant(ctx context.Context) error {
	t, err := d.backend.CurrentTenant(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.log.Warn().Err(err).Msg("fetch tenant failed")
		d.toasts.Error("failed to fetch tenant info")
		return err
	}
	d.tenant = t
	return nil
}

func (d *Dashboard) Logout(ctx context.Context) error {
	if err := d.backend.Logout(ctx); err != nil {
		d.log.Error().Err(err).Msg("logout failed")
		d.toasts.Error("Logout failed")
		return err
	}
	d.session.Clear()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.unmountLocked()
	d.user = nil
	d.redirect = LoginPath
	return nil
}

// Unmount drops every modal effect without running close callbacks, as when
// the page goes away.
func (d *Dashboard) Unmount() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unmountLocked()
}

func (d *Dashboard) unmountLocked() {
	d.noteModal.Unmount()
	d.inviteModal.Unmount()
	d.confirm.Modal().Unmount()
	d.clearNoteLocked()
	d.clearInviteLocked()
	d.clearDeleteLocked()
}

// CloseModal is the close button of whichever modal is open.
func (d *Dashboard) CloseModal() {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.open {
	case ModalNote:
		d.noteModal.Close()
	case ModalInvite:
		d.inviteModal.Close()
	case ModalDelete:
		d.confirm.Cancel()
	}
}

// HandleKey forwards a key press to the open modal.
func (d *Dashboard) HandleKey(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.open {
	case ModalNote:
		return d.noteModal.HandleKey(key)
	case ModalInvite:
		return d.inviteModal.HandleKey(key)
	case ModalDelete:
		return d.confirm.HandleKey(key)
	}
	return false
}

// ClickOverlay handles a click outside the open modal.
func (d *Dashboard) ClickOverlay() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.open {
	case ModalNote:
		return d.noteModal.ClickOverlay()
	case ModalInvite:
		return d.inviteModal.ClickOverlay()
	case ModalDelete:
		return d.confirm.ClickOverlay()
	}
	return false
}

// openLocked shows m, dropping any other modal first.
func (d *Dashboard) openLocked(kind ModalKind, m *modal.Modal) {
	if d.open != ModalNone && d.open != kind {
		d.unmountLocked()
	}
	d.open = kind
	m.Open(d.host)
}

func (d *Dashboard) closedLocked(kind ModalKind) {
	if d.open == kind {
		d.open = ModalNone
	}
}

func (d *Dashboard) clearNoteLocked() {
	d.closedLocked(ModalNote)
	d.editing = nil
	d.noteForm = nil
}

func (d *Dashboard) clearInviteLocked() {
	d.closedLocked(ModalInvite)
	d.inviteForm = nil
}

func (d *Dashboard) clearDeleteLocked() {
	d.closedLocked(ModalDelete)
	d.pendingDelete = nil
}

func (d *Dashboard) findLocked(id string) (model.Note, bool) {
	for _, n := range d.notes {
		if n.ID == id {
			return n, true
		}
	}
	return model.Note{}, false
}
