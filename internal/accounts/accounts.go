// Package accounts lists the demo backend's test accounts offered on login screens.
package accounts

import (
	_ "embed"
	"fmt"
	"sync"

	"notes-frontend/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoYAML []byte

type Account struct {
	Email    string     `yaml:"email" json:"email"`
	Password string     `yaml:"password" json:"-"`
	Role     model.Role `yaml:"role" json:"role"`
	Company  string     `yaml:"company" json:"company"`
}

// Label is the short button text, e.g. "Admin · ACME Corp".
func (a Account) Label() string {
	role := "User"
	if a.Role == model.RoleAdmin {
		role = "Admin"
	}
	return fmt.Sprintf("%s · %s", role, a.Company)
}

var (
	demoOnce sync.Once
	demo     []Account
	demoErr  error
)

// Demo returns the embedded demo accounts. The slice is a copy.
func Demo() []Account {
	demoOnce.Do(func() {
		demo, demoErr = Parse(demoYAML)
	})
	if demoErr != nil {
		return nil
	}
	return append([]Account(nil), demo...)
}

func Parse(b []byte) ([]Account, error) {
	var out []Account
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("accounts: %w", err)
	}
	for i, a := range out {
		if a.Email == "" {
			return nil, fmt.Errorf("accounts: entry %d has no email", i)
		}
		if !a.Role.Valid() {
			return nil, fmt.Errorf("accounts: entry %d has invalid role %q", i, a.Role)
		}
	}
	return out, nil
}
