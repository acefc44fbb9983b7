package forms

import (
	"context"
	"strings"
	"unicode/utf8"

	"notes-frontend/internal/model"
)

// Mode selects between creating a note and editing an existing one.
type Mode struct {
	note *model.Note
}

func Create() Mode { return Mode{} }

func Edit(n model.Note) Mode { return Mode{note: &n} }

func (m Mode) IsEdit() bool { return m.note != nil }

// Note returns the note being edited.
func (m Mode) Note() (model.Note, bool) {
	if m.note == nil {
		return model.Note{}, false
	}
	return *m.note, true
}

func ValidateTitle(v string) string {
	t := strings.TrimSpace(v)
	n := utf8.RuneCountInString(t)
	switch {
	case t == "":
		return "Title is required"
	case n < model.TitleMinLen:
		return "Title must be at least 3 characters long"
	case n > model.TitleMaxLen:
		return "Title must be less than 100 characters"
	}
	return ""
}

func ValidateContent(v string) string {
	if utf8.RuneCountInString(v) > model.ContentMaxLen {
		return "Content must be less than 2000 characters"
	}
	return ""
}

type NoteForm struct {
	mode    Mode
	title   string
	content string
	fields  fieldState
	pending bool
}

func NewNoteForm(mode Mode) *NoteForm {
	f := &NoteForm{mode: mode, fields: newFieldState()}
	if n, ok := mode.Note(); ok {
		f.title = n.Title
		f.content = n.Content
	}
	return f
}

func (f *NoteForm) Mode() Mode        { return f.mode }
func (f *NoteForm) Title() string     { return f.title }
func (f *NoteForm) Content() string   { return f.content }
func (f *NoteForm) Pending() bool     { return f.pending }
func (f *NoteForm) HasErrors() bool   { return f.fields.any() }
func (f *NoteForm) TitleCount() int   { return utf8.RuneCountInString(f.title) }
func (f *NoteForm) ContentCount() int { return utf8.RuneCountInString(f.content) }

// ContentNearLimit is true past 80% of the content limit.
func (f *NoteForm) ContentNearLimit() bool {
	return f.ContentCount()*10 > model.ContentMaxLen*8
}

// Error returns the message to display for field, if it has been touched.
func (f *NoteForm) Error(field Field) string { return f.fields.visible(field) }

func (f *NoteForm) validate(field Field) {
	switch field {
	case FieldTitle:
		f.fields.set(FieldTitle, ValidateTitle(f.title))
	case FieldContent:
		f.fields.set(FieldContent, ValidateContent(f.content))
	}
}

// Change stores a new value for field and re-validates it.
func (f *NoteForm) Change(field Field, value string) {
	switch field {
	case FieldTitle:
		f.title = value
	case FieldContent:
		f.content = value
	default:
		return
	}
	f.validate(field)
}

// Blur marks field as touched and re-validates it.
func (f *NoteForm) Blur(field Field) {
	if field != FieldTitle && field != FieldContent {
		return
	}
	f.fields.touched[field] = true
	f.validate(field)
}

func (f *NoteForm) CanSubmit() bool {
	return !f.pending && !f.fields.any() && strings.TrimSpace(f.title) != ""
}

// Begin validates every field and, when valid, marks the form pending and
// returns the trimmed values. Callers must call Finish afterwards.
func (f *NoteForm) Begin() (model.NoteInput, error) {
	if f.pending {
		return model.NoteInput{}, ErrBusy
	}
	f.fields.touched[FieldTitle] = true
	f.fields.touched[FieldContent] = true
	f.validate(FieldTitle)
	f.validate(FieldContent)
	if f.fields.any() {
		return model.NoteInput{}, ErrInvalid
	}
	f.pending = true
	return model.NoteInput{
		Title:   strings.TrimSpace(f.title),
		Content: strings.TrimSpace(f.content),
	}, nil
}

func (f *NoteForm) Finish() { f.pending = false }

// Submit runs Begin, the handler and Finish in one call.
func (f *NoteForm) Submit(ctx context.Context, handler func(context.Context, model.NoteInput) error) error {
	in, err := f.Begin()
	if err != nil {
		return err
	}
	defer f.Finish()
	return handler(ctx, in)
}

func (f *NoteForm) Heading() string {
	if f.mode.IsEdit() {
		return "Edit Note"
	}
	return "Create New Note"
}

func (f *NoteForm) SubmitLabel() string {
	switch {
	case f.mode.IsEdit() && f.pending:
		return "Updating..."
	case f.mode.IsEdit():
		return "Update Note"
	case f.pending:
		return "Creating..."
	}
	return "Create Note"
}
