package dashboard

import (
	"context"

	"notes-frontend/internal/api"
	"notes-frontend/internal/forms"
	"notes-frontend/internal/model"
)

func (d *Dashboard) OpenInvite() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.viewLocked().CanInvite() {
		return ErrForbidden
	}
	d.openLocked(ModalInvite, d.inviteModal)
	if d.inviteForm == nil {
		d.inviteForm = forms.NewInviteForm()
	}
	return nil
}

func (d *Dashboard) ChangeInviteEmail(v string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inviteForm != nil {
		d.inviteForm.ChangeEmail(v)
	}
}

func (d *Dashboard) BlurInviteEmail() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inviteForm != nil {
		d.inviteForm.BlurEmail()
	}
}

func (d *Dashboard) SetInviteRole(r model.Role) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inviteForm == nil {
		return ErrNoModal
	}
	return d.inviteForm.SetRole(r)
}

// SubmitInvite posts the invite. Success closes the modal; failure keeps it
// open with the backend message shown in the form.
func (d *Dashboard) SubmitInvite(ctx context.Context) error {
	d.mu.Lock()
	f := d.inviteForm
	if f == nil || d.open != ModalInvite {
		d.mu.Unlock()
		return ErrNoModal
	}
	email, role, err := f.Begin()
	d.mu.Unlock()
	if err != nil {
		return err
	}

	err = d.backend.Invite(ctx, email, role)

	d.mu.Lock()
	defer d.mu.Unlock()
	f.Finish(err)
	if err != nil {
		d.log.Warn().Err(err).Str("role", string(role)).Msg("invite failed")
		d.toasts.Error(api.MessageOr(err, "Failed to send invite."))
		return err
	}
	d.toasts.Success("Invitation sent successfully!")
	if d.inviteForm == f {
		d.inviteModal.Close()
	}
	return nil
}

// Upgrade moves a free tenant to Pro, then refetches tenant and notes once
// each.
func (d *Dashboard) Upgrade(ctx context.Context) error {
	d.mu.Lock()
	if !d.viewLocked().CanUpgrade() {
		d.mu.Unlock()
		return ErrForbidden
	}
	if d.upgrading {
		d.mu.Unlock()
		return ErrBusy
	}
	d.upgrading = true
	slug := d.tenant.Slug
	d.mu.Unlock()

	err := d.backend.UpgradeTenant(ctx, slug)

	d.mu.Lock()
	d.upgrading = false
	if err != nil {
		d.log.Warn().Err(err).Str("tenant", slug).Msg("upgrade failed")
		d.toasts.Error(api.MessageOr(err, "Upgrade failed."))
		d.mu.Unlock()
		return err
	}
	d.toasts.Success("Subscription upgraded to Pro!")
	d.mu.Unlock()

	d.refresh(ctx)
	return nil
}
