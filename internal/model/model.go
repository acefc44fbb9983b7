package model

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool { return r == RoleMember || r == RoleAdmin }

type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

const (
	FreePlanNoteLimit = 3

	TitleMinLen   = 3
	TitleMaxLen   = 100
	ContentMaxLen = 2000
	EmailMaxLen   = 254
)

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	TenantID string `json:"tenantId,omitempty"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// UnmarshalJSON accepts both `_id` and `id`; the backend is Mongo-backed and
// sends `_id` on most payloads.
func (u *User) UnmarshalJSON(b []byte) error {
	type alias User
	var raw struct {
		alias
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*u = User(raw.alias)
	if u.ID == "" {
		u.ID = raw.MongoID
	}
	return nil
}

type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (n *Note) UnmarshalJSON(b []byte) error {
	type alias Note
	var raw struct {
		alias
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*n = Note(raw.alias)
	if n.ID == "" {
		n.ID = raw.MongoID
	}
	return nil
}

// CreatedLabel renders the creation date the way note cards show it ("Jan 2, 2006").
func (n Note) CreatedLabel() string {
	if n.CreatedAt.IsZero() {
		return ""
	}
	return n.CreatedAt.Local().Format("Jan 2, 2006")
}

// WasUpdated reports whether the note was edited after creation.
func (n Note) WasUpdated() bool {
	return !n.UpdatedAt.IsZero() && !n.UpdatedAt.Equal(n.CreatedAt)
}

// Excerpt returns at most max runes of the content, suffixed with "..." when cut.
func (n Note) Excerpt(max int) string {
	c := n.Content
	if c == "" || max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(c) <= max {
		return c
	}
	r := []rune(c)
	return string(r[:max]) + "..."
}

// NoteInput is the request body for note create/update.
type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type Tenant struct {
	Slug             string `json:"slug"`
	Name             string `json:"name,omitempty"`
	SubscriptionPlan Plan   `json:"subscriptionPlan"`
}

// PlanOrFree treats an unknown/empty plan as free, matching how the plan banner
// labels a tenant before its info has loaded.
func (t Tenant) PlanOrFree() Plan {
	p := Plan(strings.ToLower(strings.TrimSpace(string(t.SubscriptionPlan))))
	if p == "" {
		return PlanFree
	}
	return p
}
