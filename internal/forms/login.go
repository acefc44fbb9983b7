package forms

import (
	"context"
	"strings"

	"notes-frontend/internal/accounts"
	"notes-frontend/internal/api"
)

type LoginForm struct {
	email    string
	password string
	err      string
	pending  bool
}

func NewLoginForm() *LoginForm { return &LoginForm{} }

func (f *LoginForm) Email() string    { return f.email }
func (f *LoginForm) Password() string { return f.password }
func (f *LoginForm) Error() string    { return f.err }
func (f *LoginForm) Pending() bool    { return f.pending }

// Change updates a field; typing clears any previous login error.
func (f *LoginForm) Change(field Field, value string) {
	switch field {
	case FieldEmail:
		f.email = value
	case FieldPassword:
		f.password = value
	default:
		return
	}
	f.err = ""
}

// Fill copies a demo account's credentials into the form.
func (f *LoginForm) Fill(a accounts.Account) {
	f.email = a.Email
	f.password = a.Password
	f.err = ""
}

func (f *LoginForm) Begin() (email, password string, err error) {
	if f.pending {
		return "", "", ErrBusy
	}
	f.err = ""
	if strings.TrimSpace(f.email) == "" || f.password == "" {
		f.err = "Please enter your email and password"
		return "", "", ErrInvalid
	}
	f.pending = true
	return strings.TrimSpace(f.email), f.password, nil
}

func (f *LoginForm) Finish(err error) {
	f.pending = false
	if err != nil {
		f.err = api.MessageOr(err, "Login failed. Please try again.")
	}
}

func (f *LoginForm) Submit(ctx context.Context, handler func(ctx context.Context, email, password string) error) error {
	email, password, err := f.Begin()
	if err != nil {
		return err
	}
	err = handler(ctx, email, password)
	f.Finish(err)
	return err
}
