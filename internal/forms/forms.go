// Package forms holds the draft state and validation for the note, invite and
// login forms. Forms never talk to the backend; submission is delegated to a
// caller-supplied handler. A form is not safe for concurrent use.
package forms

import (
	"errors"
	"strings"
)

var (
	// ErrInvalid is returned by Submit/Begin when a field fails validation.
	ErrInvalid = errors.New("forms: invalid input")
	// ErrBusy is returned while a previous submission is still pending.
	ErrBusy = errors.New("forms: submission pending")
)

type Field string

const (
	FieldTitle    Field = "title"
	FieldContent  Field = "content"
	FieldEmail    Field = "email"
	FieldPassword Field = "password"
)

// IsSubmitShortcut reports whether key is the quick-save chord: Ctrl/Cmd+Enter,
// or ctrl+s where the terminal cannot report modified Enter.
func IsSubmitShortcut(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "ctrl+enter", "meta+enter", "cmd+enter", "ctrl+s":
		return true
	}
	return false
}

type fieldState struct {
	errs    map[Field]string
	touched map[Field]bool
}

func newFieldState() fieldState {
	return fieldState{errs: map[Field]string{}, touched: map[Field]bool{}}
}

func (s fieldState) set(f Field, msg string) {
	if msg == "" {
		delete(s.errs, f)
		return
	}
	s.errs[f] = msg
}

// visible returns the error for f only once the field has been touched.
func (s fieldState) visible(f Field) string {
	if !s.touched[f] {
		return ""
	}
	return s.errs[f]
}

func (s fieldState) any() bool { return len(s.errs) > 0 }

func (s *fieldState) reset() { *s = newFieldState() }
