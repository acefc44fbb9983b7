// Package apitest provides an in-memory notes backend for tests.
//
// Every request it receives is checked against api.ContractYAML; a request the
// contract does not describe fails the test.
package apitest

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"notes-frontend/internal/api"
	"notes-frontend/internal/model"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

const sessionCookie = "token"

type account struct {
	user     model.User
	password string
	tenant   string
}

type failure struct {
	status  int
	message string
}

type Invite struct {
	Email  string
	Role   model.Role
	Tenant string
}

type Backend struct {
	t      testing.TB
	Server *httptest.Server

	mu       sync.Mutex
	router   routers.Router
	accounts map[string]*account
	tenants  map[string]*model.Tenant
	notes    map[string][]model.Note
	sessions map[string]string
	invites  []Invite
	calls    map[string]int
	fail     map[string]failure
	seq      int
}

// New starts an empty backend. It is closed when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		t:        t,
		accounts: map[string]*account{},
		tenants:  map[string]*model.Tenant{},
		notes:    map[string][]model.Note{},
		sessions: map[string]string{},
		calls:    map[string]int{},
		fail:     map[string]failure{},
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(api.ContractYAML)
	if err != nil {
		t.Fatalf("load contract: %v", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		t.Fatalf("invalid contract: %v", err)
	}
	doc.Servers = openapi3.Servers{&openapi3.Server{URL: b.Server.URL}}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		t.Fatalf("contract router: %v", err)
	}
	b.router = router
	return b
}

// NewSeeded starts a backend with the demo tenants: acme (free) and globex (pro),
// each with an admin and a member whose password is "password".
func NewSeeded(t testing.TB) *Backend {
	b := New(t)
	b.AddTenant("acme", model.PlanFree)
	b.AddTenant("globex", model.PlanPro)
	b.AddUser("admin@acme.test", "password", model.RoleAdmin, "acme")
	b.AddUser("user@acme.test", "password", model.RoleMember, "acme")
	b.AddUser("admin@globex.test", "password", model.RoleAdmin, "globex")
	b.AddUser("user@globex.test", "password", model.RoleMember, "globex")
	return b
}

func (b *Backend) URL() string { return b.Server.URL }

func (b *Backend) AddTenant(slug string, plan model.Plan) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tenants[slug] = &model.Tenant{Slug: slug, SubscriptionPlan: plan}
}

func (b *Backend) AddUser(email, password string, role model.Role, tenant string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.accounts[email] = &account{
		user:     model.User{ID: fmt.Sprintf("u%d", b.seq), Email: email, Role: role, TenantID: tenant},
		password: password,
		tenant:   tenant,
	}
}

// SeedNotes appends notes with the given titles to a tenant.
func (b *Backend) SeedNotes(tenant string, titles ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, title := range titles {
		b.appendNoteLocked(tenant, model.NoteInput{Title: title})
	}
}

func (b *Backend) Notes(tenant string) []model.Note {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Note(nil), b.notes[tenant]...)
}

func (b *Backend) Tenant(slug string) model.Tenant {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t := b.tenants[slug]; t != nil {
		return *t
	}
	return model.Tenant{}
}

func (b *Backend) Invites() []Invite {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Invite(nil), b.invites...)
}

// FailNext makes the next request matching "METHOD /path" answer with status and message.
func (b *Backend) FailNext(method, path string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[method+" "+path] = failure{status: status, message: message}
}

// Calls returns how many requests matched "METHOD /path".
func (b *Backend) Calls(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method+" "+path]
}

// LoginAs creates a session directly and returns its cookie.
func (b *Backend) LoginAs(email string) *http.Cookie {
	b.mu.Lock()
	defer b.mu.Unlock()
	tok := newToken()
	b.sessions[tok] = email
	return &http.Cookie{Name: sessionCookie, Value: tok, Path: "/"}
}

// ExpireSessions drops every session, so authenticated calls answer 401.
func (b *Backend) ExpireSessions() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions = map[string]string{}
}

type wireNote struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type wireUser struct {
	ID    string     `json:"_id"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	b.validate(r)

	key := r.Method + " " + r.URL.Path
	b.mu.Lock()
	b.calls[key]++
	f, failing := b.fail[key]
	delete(b.fail, key)
	b.mu.Unlock()
	if failing {
		writeError(w, f.status, f.message)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/auth/login" {
		b.login(w, r)
		return
	}

	acct := b.accountFor(r)
	if acct == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/auth/profile":
		writeJSON(w, http.StatusOK, wireUser{ID: acct.user.ID, Email: acct.user.Email, Role: acct.user.Role})
	case r.Method == http.MethodPost && r.URL.Path == "/auth/logout":
		if c, err := r.Cookie(sessionCookie); err == nil {
			delete(b.sessions, c.Value)
		}
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
	case r.Method == http.MethodGet && r.URL.Path == "/notes":
		out := []wireNote{}
		for _, n := range b.notes[acct.tenant] {
			out = append(out, wireNote(n))
		}
		writeJSON(w, http.StatusOK, out)
	case r.Method == http.MethodPost && r.URL.Path == "/notes":
		var in model.NoteInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
		t := b.tenants[acct.tenant]
		if t != nil && t.SubscriptionPlan == model.PlanFree && len(b.notes[acct.tenant]) >= model.FreePlanNoteLimit {
			writeError(w, http.StatusForbidden, "Free plan limit reached. Upgrade to Pro.")
			return
		}
		n := b.appendNoteLocked(acct.tenant, in)
		writeJSON(w, http.StatusCreated, wireNote(n))
	case len(parts) == 2 && parts[0] == "notes" && (r.Method == http.MethodPut || r.Method == http.MethodDelete):
		notes := b.notes[acct.tenant]
		idx := -1
		for i := range notes {
			if notes[i].ID == parts[1] {
				idx = i
			}
		}
		if idx < 0 {
			writeError(w, http.StatusNotFound, "Note not found")
			return
		}
		if r.Method == http.MethodDelete {
			b.notes[acct.tenant] = append(notes[:idx:idx], notes[idx+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Note deleted"})
			return
		}
		var in model.NoteInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
		notes[idx].Title = in.Title
		notes[idx].Content = in.Content
		notes[idx].UpdatedAt = time.Now().UTC()
		writeJSON(w, http.StatusOK, wireNote(notes[idx]))
	case r.Method == http.MethodGet && r.URL.Path == "/tenants/tenant":
		t := b.tenants[acct.tenant]
		if t == nil {
			writeError(w, http.StatusNotFound, "Tenant not found")
			return
		}
		writeJSON(w, http.StatusOK, t)
	case r.Method == http.MethodPost && len(parts) == 3 && parts[0] == "tenants" && parts[2] == "upgrade":
		if acct.user.Role != model.RoleAdmin || parts[1] != acct.tenant {
			writeError(w, http.StatusForbidden, "Only admins can upgrade")
			return
		}
		b.tenants[acct.tenant].SubscriptionPlan = model.PlanPro
		writeJSON(w, http.StatusOK, b.tenants[acct.tenant])
	case r.Method == http.MethodPost && r.URL.Path == "/invite":
		if acct.user.Role != model.RoleAdmin {
			writeError(w, http.StatusForbidden, "Only admins can invite users")
			return
		}
		var in struct {
			Email string     `json:"email"`
			Role  model.Role `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
		if _, exists := b.accounts[in.Email]; exists {
			writeError(w, http.StatusBadRequest, "User already exists")
			return
		}
		b.invites = append(b.invites, Invite{Email: in.Email, Role: in.Role, Tenant: acct.tenant})
		writeJSON(w, http.StatusCreated, map[string]string{"message": "Invitation sent"})
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	b.mu.Lock()
	acct := b.accounts[in.Email]
	if acct == nil || acct.password != in.Password {
		b.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	tok := newToken()
	b.sessions[tok] = in.Email
	b.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: tok, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged in"})
}

func (b *Backend) accountFor(r *http.Request) *account {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	email, ok := b.sessions[c.Value]
	if !ok {
		return nil
	}
	return b.accounts[email]
}

func (b *Backend) appendNoteLocked(tenant string, in model.NoteInput) model.Note {
	b.seq++
	now := time.Now().UTC()
	n := model.Note{
		ID:        fmt.Sprintf("n%d", b.seq),
		Title:     in.Title,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.notes[tenant] = append(b.notes[tenant], n)
	return n
}

func (b *Backend) validate(r *http.Request) {
	b.mu.Lock()
	router := b.router
	b.mu.Unlock()
	if router == nil {
		return
	}
	route, params, err := router.FindRoute(r)
	if err != nil {
		b.t.Errorf("apitest: %s %s is not part of the backend contract: %v", r.Method, r.URL.Path, err)
		return
	}
	in := &openapi3filter.RequestValidationInput{
		Request:    r,
		PathParams: params,
		Route:      route,
		Options:    &openapi3filter.Options{AuthenticationFunc: openapi3filter.NoopAuthenticationFunc},
	}
	if err := openapi3filter.ValidateRequest(context.Background(), in); err != nil {
		b.t.Errorf("apitest: %s %s violates the backend contract: %v", r.Method, r.URL.Path, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func newToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
