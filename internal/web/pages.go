package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"notes-frontend/internal/accounts"
	"notes-frontend/internal/dashboard"
	"notes-frontend/internal/forms"
	"notes-frontend/internal/model"
	"notes-frontend/internal/toast"
)

var errNoSession = errors.New("web: login did not establish a session")

type loginVM struct {
	Email    string
	Password string
	Error    string
	Accounts []accounts.Account
}

func (s *Server) loginVMFor(f *forms.LoginForm) loginVM {
	return loginVM{
		Email:    f.Email(),
		Password: f.Password(),
		Error:    f.Error(),
		Accounts: accounts.Demo(),
	}
}

func (s *Server) handleLoginGet(w http.ResponseWriter, r *http.Request) {
	if cs := s.signedIn(r.Context(), w, r); cs != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	cs, err := s.stateFor(w, r, true)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeHTMLTemplate(w, "login.html", s.loginVMFor(cs.loginForm()))
}

// handleLoginPost signs in, or with a "fill" value copies a demo account
// into the form.
func (s *Server) handleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cs, err := s.stateFor(w, r, true)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	f := cs.loginForm()

	if fill := strings.TrimSpace(r.Form.Get("fill")); fill != "" {
		demo := accounts.Demo()
		if i, err := strconv.Atoi(fill); err == nil && i >= 0 && i < len(demo) {
			f.Fill(demo[i])
		}
		s.writeHTMLTemplate(w, "login.html", s.loginVMFor(f))
		return
	}

	f.Change(forms.FieldEmail, r.Form.Get("email"))
	f.Change(forms.FieldPassword, r.Form.Get("password"))
	err = f.Submit(r.Context(), func(ctx context.Context, email, password string) error {
		if err := cs.client.Login(ctx, email, password); err != nil {
			return err
		}
		if !cs.session.Refetch(ctx).Authenticated() {
			return errNoSession
		}
		return nil
	})
	if err != nil {
		requestLogger(r).Info().Err(err).Msg("login failed")
		status := http.StatusUnauthorized
		if errors.Is(err, forms.ErrInvalid) {
			status = http.StatusBadRequest
		}
		s.writeHTMLTemplateStatus(w, status, "login.html", s.loginVMFor(f))
		return
	}
	cs.resetDashboard()
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	s.writeHTMLTemplate(w, "landing.html", nil)
}

func (s *Server) handleLogoutPost(w http.ResponseWriter, r *http.Request) {
	cs, _ := s.stateFor(w, r, false)
	if cs == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	d := cs.board()
	if err := d.Logout(r.Context()); err != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.states.drop(cs.id)
	clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	cs := s.signedIn(r.Context(), w, r)
	if cs == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	d := cs.board()
	if err := d.Mount(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	v := d.View()
	if v.Redirect != "" {
		s.leave(cs)
		http.Redirect(w, r, v.Redirect, http.StatusSeeOther)
		return
	}
	s.writeHTMLTemplate(w, "dashboard.html", newDashboardVM(v, d.Toasts().Drain()))
}

// leave forgets the signed-in user after the backend rejected the session.
func (s *Server) leave(cs *clientState) {
	cs.session.Clear()
	cs.resetDashboard()
}

type noteVM struct {
	ID          string
	Title       string
	Excerpt     string
	ContentHTML template.HTML
	Created     string
	Updated     bool
	Deleting    bool
}

type dashboardVM struct {
	dashboard.View
	NoteCards   []noteVM
	PlanLabel   string
	NoteLimit   int
	Toasts      []toast.Toast
	RoleOptions []forms.RoleOption
}

func newDashboardVM(v dashboard.View, toasts []toast.Toast) dashboardVM {
	vm := dashboardVM{
		View:        v,
		NoteLimit:   model.FreePlanNoteLimit,
		Toasts:      toasts,
		RoleOptions: forms.RoleOptions(),
		PlanLabel:   strings.ToUpper(string(model.PlanFree)),
	}
	if v.Tenant != nil {
		vm.PlanLabel = strings.ToUpper(string(v.Tenant.PlanOrFree()))
	}
	for _, n := range v.Notes {
		created := n.CreatedLabel()
		if created == "" {
			created = time.Now().Format("Jan 2, 2006")
		}
		vm.NoteCards = append(vm.NoteCards, noteVM{
			ID:          n.ID,
			Title:       n.Title,
			Excerpt:     n.Excerpt(120),
			ContentHTML: renderMarkdownHTML(n.Content),
			Created:     created,
			Updated:     n.WasUpdated(),
			Deleting:    v.DeletingID == n.ID,
		})
	}
	return vm
}
