package dashboard

import (
	"encoding/json"
	"fmt"

	"notes-frontend/internal/forms"
	"notes-frontend/internal/modal"
	"notes-frontend/internal/model"

	"github.com/zeebo/blake3"
)

type NoteFormView struct {
	Heading          string `json:"heading"`
	Title            string `json:"title"`
	Content          string `json:"content"`
	TitleError       string `json:"titleError,omitempty"`
	ContentError     string `json:"contentError,omitempty"`
	TitleCount       int    `json:"titleCount"`
	ContentCount     int    `json:"contentCount"`
	ContentNearLimit bool   `json:"contentNearLimit"`
	CanSubmit        bool   `json:"canSubmit"`
	Pending          bool   `json:"pending"`
	SubmitLabel      string `json:"submitLabel"`
}

type InviteFormView struct {
	Email       string     `json:"email"`
	Role        model.Role `json:"role"`
	Error       string     `json:"error,omitempty"`
	SubmitError string     `json:"submitError,omitempty"`
	Success     string     `json:"success,omitempty"`
	CanSubmit   bool       `json:"canSubmit"`
	Pending     bool       `json:"pending"`
	SubmitLabel string     `json:"submitLabel"`
}

type ConfirmView struct {
	Title        string      `json:"title"`
	Message      string      `json:"message"`
	ConfirmLabel string      `json:"confirmLabel"`
	CancelLabel  string      `json:"cancelLabel"`
	Busy         bool        `json:"busy"`
	Note         *model.Note `json:"note,omitempty"`
}

// View is an immutable snapshot of the dashboard for rendering.
type View struct {
	User         *model.User   `json:"user,omitempty"`
	Notes        []model.Note  `json:"notes"`
	Tenant       *model.Tenant `json:"tenant,omitempty"`
	LoadingNotes bool          `json:"loadingNotes"`
	ModalLoading bool          `json:"modalLoading"`
	Upgrading    bool          `json:"upgrading"`
	Error        string        `json:"error,omitempty"`
	Redirect     string        `json:"redirect,omitempty"`
	DeletingID   string        `json:"deletingId,omitempty"`
	Modal        ModalKind     `json:"modal,omitempty"`
	ModalSize    modal.Size    `json:"modalSize,omitempty"`
	ScrollLocked bool          `json:"scrollLocked"`

	NoteForm   *NoteFormView   `json:"noteForm,omitempty"`
	InviteForm *InviteFormView `json:"inviteForm,omitempty"`
	Confirm    *ConfirmView    `json:"confirm,omitempty"`
}

// IsFreePlan is true until tenant info says otherwise.
func (v View) IsFreePlan() bool {
	return v.Tenant == nil || v.Tenant.PlanOrFree() == model.PlanFree
}

func (v View) IsProPlan() bool {
	return v.Tenant != nil && v.Tenant.PlanOrFree() == model.PlanPro
}

func (v View) RemainingNotes() int {
	return max(0, model.FreePlanNoteLimit-len(v.Notes))
}

func (v View) LimitReached() bool {
	return v.IsFreePlan() && len(v.Notes) >= model.FreePlanNoteLimit
}

func (v View) CreateDisabled() bool {
	return v.ModalLoading || v.Upgrading || v.LimitReached()
}

// CanUpgrade needs the tenant slug, so it stays false until tenant info loads.
func (v View) CanUpgrade() bool {
	return v.User.IsAdmin() && v.Tenant != nil && v.IsFreePlan()
}

func (v View) CanInvite() bool { return v.User.IsAdmin() }

// UsagePercent is the share of the free plan's note allowance in use, capped
// at 100.
func (v View) UsagePercent() int {
	return min(100, len(v.Notes)*100/model.FreePlanNoteLimit)
}

func (d *Dashboard) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewLocked()
}

func (d *Dashboard) viewLocked() View {
	v := View{
		Notes:        append([]model.Note(nil), d.notes...),
		LoadingNotes: d.loadingNotes,
		ModalLoading: d.modalLoading,
		Upgrading:    d.upgrading,
		Error:        d.errMsg,
		Redirect:     d.redirect,
		DeletingID:   d.deletingID,
		Modal:        d.open,
		ScrollLocked: d.host.ScrollLocked(),
	}
	if d.user != nil {
		u := *d.user
		v.User = &u
	}
	if d.tenant != nil {
		t := *d.tenant
		v.Tenant = &t
	}
	switch d.open {
	case ModalNote:
		v.ModalSize = d.noteModal.Options().Size
		if d.noteForm != nil {
			v.NoteForm = noteFormView(d.noteForm)
		}
	case ModalInvite:
		v.ModalSize = d.inviteModal.Options().Size
		if d.inviteForm != nil {
			v.InviteForm = inviteFormView(d.inviteForm)
		}
	case ModalDelete:
		v.ModalSize = d.confirm.Modal().Options().Size
		c := &ConfirmView{
			Title:        d.confirm.TitleText(),
			Message:      d.confirm.MessageText(),
			ConfirmLabel: d.confirm.ConfirmText(),
			CancelLabel:  d.confirm.CancelText(),
			Busy:         d.confirm.ButtonsDisabled(),
		}
		if d.pendingDelete != nil {
			n := *d.pendingDelete
			c.Note = &n
		}
		v.Confirm = c
	}
	return v
}

func noteFormView(f *forms.NoteForm) *NoteFormView {
	return &NoteFormView{
		Heading:          f.Heading(),
		Title:            f.Title(),
		Content:          f.Content(),
		TitleError:       f.Error(forms.FieldTitle),
		ContentError:     f.Error(forms.FieldContent),
		TitleCount:       f.TitleCount(),
		ContentCount:     f.ContentCount(),
		ContentNearLimit: f.ContentNearLimit(),
		CanSubmit:        f.CanSubmit(),
		Pending:          f.Pending(),
		SubmitLabel:      f.SubmitLabel(),
	}
}

func inviteFormView(f *forms.InviteForm) *InviteFormView {
	return &InviteFormView{
		Email:       f.Email(),
		Role:        f.Role(),
		Error:       f.Error(),
		SubmitError: f.SubmitError(),
		Success:     f.Success(),
		CanSubmit:   f.CanSubmit(),
		Pending:     f.Pending(),
		SubmitLabel: f.SubmitLabel(),
	}
}

// Version fingerprints the rendered state so streams can skip identical
// re-renders.
func (v View) Version() (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode view: %w", err)
	}
	hasher := blake3.New()
	if _, err := hasher.Write(b); err != nil {
		return "", fmt.Errorf("hash view: %w", err)
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)[:16]), nil
}

// Version is the fingerprint of the current View.
func (d *Dashboard) Version() (string, error) { return d.View().Version() }
