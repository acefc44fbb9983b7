package dashboard

import (
	"context"
	"fmt"

	"notes-frontend/internal/api"
	"notes-frontend/internal/forms"
	"notes-frontend/internal/model"
)

func (d *Dashboard) OpenCreate() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.viewLocked().CreateDisabled() {
		return ErrNoteLimit
	}
	d.openLocked(ModalNote, d.noteModal)
	d.editing = nil
	d.noteForm = forms.NewNoteForm(forms.Create())
	return nil
}

func (d *Dashboard) OpenEdit(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.findLocked(id)
	if !ok {
		return ErrNotFound
	}
	d.openLocked(ModalNote, d.noteModal)
	d.editing = &n
	d.noteForm = forms.NewNoteForm(forms.Edit(n))
	return nil
}

// ChangeNote updates a field of the open note form.
func (d *Dashboard) ChangeNote(field forms.Field, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.noteForm != nil {
		d.noteForm.Change(field, value)
	}
}

func (d *Dashboard) BlurNote(field forms.Field) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.noteForm != nil {
		d.noteForm.Blur(field)
	}
}

// SubmitNote creates or updates depending on whether a note is being edited.
// On success the modal closes and the whole list is fetched again.
//
// The refetch stands where an optimistic local update would go.
func (d *Dashboard) SubmitNote(ctx context.Context) error {
	d.mu.Lock()
	f := d.noteForm
	if f == nil || d.open != ModalNote {
		d.mu.Unlock()
		return ErrNoModal
	}
	in, err := f.Begin()
	if err != nil {
		d.mu.Unlock()
		return err
	}
	d.modalLoading = true
	editing := d.editing
	d.mu.Unlock()

	if editing != nil {
		err = d.backend.UpdateNote(ctx, editing.ID, in)
	} else {
		err = d.backend.CreateNote(ctx, in)
	}

	d.mu.Lock()
	f.Finish()
	d.modalLoading = false
	if err != nil {
		fallback := "Failed to create note."
		if editing != nil {
			fallback = "Failed to update note."
		}
		d.log.Warn().Err(err).Bool("edit", editing != nil).Msg("save note failed")
		d.toasts.Error(api.MessageOr(err, fallback))
		d.mu.Unlock()
		return err
	}
	if editing != nil {
		d.toasts.Success("Note updated successfully!")
	} else {
		d.toasts.Success("Note created successfully!")
	}
	// A newer open may have replaced the form while the request ran.
	if d.noteForm == f {
		d.noteModal.Close()
	}
	d.mu.Unlock()

	_ = d.FetchNotes(ctx)
	return nil
}

func (d *Dashboard) RequestDelete(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.findLocked(id)
	if !ok {
		return ErrNotFound
	}
	d.openLocked(ModalDelete, d.confirm.Modal())
	d.confirm.Busy = false
	d.confirm.Message = fmt.Sprintf("Are you sure you want to delete \"%s\"? This action cannot be undone and the note will be permanently removed.", n.Title)
	d.confirm.CancelLabel = "Keep Note"
	d.pendingDelete = &n
	return nil
}

func (d *Dashboard) CancelDelete() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open == ModalDelete {
		d.confirm.Cancel()
	}
}

// ConfirmDelete deletes the pending note, toasts the outcome, refetches the
// list, and clears the pending delete whether or not the call succeeded.
func (d *Dashboard) ConfirmDelete(ctx context.Context) error {
	d.mu.Lock()
	if d.pendingDelete == nil {
		d.mu.Unlock()
		return ErrNoDeleteSet
	}
	if d.deletingID != "" {
		d.mu.Unlock()
		return ErrBusy
	}
	target := *d.pendingDelete
	d.deletingID = target.ID
	d.confirm.Busy = true
	d.mu.Unlock()

	err := d.backend.DeleteNote(ctx, target.ID)

	d.mu.Lock()
	d.deletingID = ""
	d.confirm.Busy = false
	if err != nil {
		d.log.Warn().Err(err).Str("note", target.ID).Msg("delete note failed")
		d.toasts.Error(api.MessageOr(err, "Failed to delete note."))
	} else {
		d.toasts.Success("Note deleted successfully!")
	}
	if d.pendingDelete != nil && d.pendingDelete.ID == target.ID {
		d.confirm.Modal().Unmount()
		d.clearDeleteLocked()
	}
	d.mu.Unlock()

	_ = d.FetchNotes(ctx)
	return err
}

// Note returns the note with id from the current list.
func (d *Dashboard) Note(id string) (model.Note, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.findLocked(id)
}
