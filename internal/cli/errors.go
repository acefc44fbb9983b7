package cli

import (
	"errors"
	"fmt"
)

var errNotSignedIn = errors.New("not signed in; run `notes login`")

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

// adminOnlyError is returned for commands the dashboard only offers to admins.
type adminOnlyError struct {
	action string
	email  string
}

func (e adminOnlyError) Error() string {
	return fmt.Sprintf("permission denied: %s is not an admin and cannot %s", e.email, e.action)
}

func errAdminOnly(action, email string) error {
	return adminOnlyError{action: action, email: email}
}
