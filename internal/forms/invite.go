package forms

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"notes-frontend/internal/api"
	"notes-frontend/internal/model"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidateEmail(v string) string {
	e := strings.TrimSpace(v)
	switch {
	case e == "":
		return "Email address is required"
	case !emailPattern.MatchString(e):
		return "Please enter a valid email address"
	case utf8.RuneCountInString(e) > model.EmailMaxLen:
		return "Email address is too long"
	}
	return ""
}

type RoleOption struct {
	Value       model.Role
	Label       string
	Description string
}

func RoleOptions() []RoleOption {
	return []RoleOption{
		{Value: model.RoleMember, Label: "Member", Description: "Can create and manage their own notes"},
		{Value: model.RoleAdmin, Label: "Admin", Description: "Full access including user management"},
	}
}

type InviteForm struct {
	email   string
	role    model.Role
	fields  fieldState
	success string
	failure string
	pending bool
}

func NewInviteForm() *InviteForm {
	return &InviteForm{role: model.RoleMember, fields: newFieldState()}
}

func (f *InviteForm) Email() string       { return f.email }
func (f *InviteForm) Role() model.Role    { return f.role }
func (f *InviteForm) Pending() bool       { return f.pending }
func (f *InviteForm) Success() string     { return f.success }
func (f *InviteForm) SubmitError() string { return f.failure }

func (f *InviteForm) Error() string { return f.fields.visible(FieldEmail) }

// ChangeEmail stores the value and clears the success message and the email
// error; the email is re-validated on blur and submit.
func (f *InviteForm) ChangeEmail(v string) {
	f.email = v
	f.success = ""
	f.fields.set(FieldEmail, "")
}

func (f *InviteForm) BlurEmail() {
	f.fields.touched[FieldEmail] = true
	f.fields.set(FieldEmail, ValidateEmail(f.email))
}

func (f *InviteForm) SetRole(r model.Role) error {
	if !r.Valid() {
		return fmt.Errorf("forms: unknown role %q", r)
	}
	f.role = r
	return nil
}

// EnterSubmits reports whether pressing Enter should submit.
func (f *InviteForm) EnterSubmits() bool {
	return f.fields.errs[FieldEmail] == "" && strings.TrimSpace(f.email) != ""
}

func (f *InviteForm) CanSubmit() bool { return !f.pending && f.EnterSubmits() }

// Begin validates the email and marks the form pending. Callers must call
// Finish with the outcome.
func (f *InviteForm) Begin() (string, model.Role, error) {
	if f.pending {
		return "", "", ErrBusy
	}
	f.success = ""
	f.failure = ""
	f.fields.touched[FieldEmail] = true
	msg := ValidateEmail(f.email)
	f.fields.set(FieldEmail, msg)
	if msg != "" {
		return "", "", ErrInvalid
	}
	f.pending = true
	return strings.TrimSpace(f.email), f.role, nil
}

// Finish records the outcome of a submission started with Begin.
func (f *InviteForm) Finish(err error) {
	f.pending = false
	if err != nil {
		f.failure = api.MessageOr(err, "Failed to send invitation. Please try again.")
		return
	}
	sent := strings.TrimSpace(f.email)
	f.email = ""
	f.role = model.RoleMember
	f.fields.reset()
	f.success = fmt.Sprintf("Invitation sent successfully to %s!", sent)
}

func (f *InviteForm) Submit(ctx context.Context, handler func(context.Context, string, model.Role) error) error {
	email, role, err := f.Begin()
	if err != nil {
		return err
	}
	err = handler(ctx, email, role)
	f.Finish(err)
	return err
}

func (f *InviteForm) SubmitLabel() string {
	if f.pending {
		return "Sending Invitation..."
	}
	return "Send Invitation"
}
