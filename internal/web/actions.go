package web

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"notes-frontend/internal/dashboard"
	"notes-frontend/internal/forms"
	"notes-frontend/internal/model"

	"github.com/starfederation/datastar-go/datastar"
)

// dashboardSignals are the datastar signals bound by the dashboard's forms.
type dashboardSignals struct {
	NoteTitle   string `json:"noteTitle"`
	NoteContent string `json:"noteContent"`
	InviteEmail string `json:"inviteEmail"`
	InviteRole  string `json:"inviteRole"`
}

type dashboardAct func(r *http.Request, d *dashboard.Dashboard, sig dashboardSignals) error

// serveDashboardAction runs act against the browser's dashboard and answers
// with SSE patches for the main region, any new toasts, and (with
// syncSignals) the form signals.
func (s *Server) serveDashboardAction(w http.ResponseWriter, r *http.Request, syncSignals bool, act dashboardAct) {
	var sig dashboardSignals
	readErr := datastar.ReadSignals(r, &sig)

	cs := s.signedIn(r.Context(), w, r)
	sse := datastar.NewSSE(w, r)
	if cs == nil {
		_ = sse.Redirect("/")
		return
	}
	if readErr != nil {
		requestLogger(r).Warn().Err(readErr).Msg("read signals failed")
		_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, readErr.Error()))
		return
	}

	d := cs.board()
	if err := act(r, d, sig); err != nil {
		requestLogger(r).Debug().Err(err).Msg("dashboard action")
	}
	s.patchDashboard(sse, cs, d, syncSignals)
	cs.hub.broadcast()
}

// patchDashboard reports false once the browser has been sent away.
func (s *Server) patchDashboard(sse *datastar.ServerSentEventGenerator, cs *clientState, d *dashboard.Dashboard, syncSignals bool) bool {
	v := d.View()
	if v.Redirect != "" {
		s.leave(cs)
		_ = sse.Redirect(v.Redirect)
		return false
	}

	html, err := s.renderTemplate("dashboard_main", newDashboardVM(v, nil))
	if err != nil {
		s.log.Error().Err(err).Msg("render dashboard")
		_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
		return true
	}
	_ = sse.PatchElements(html, datastar.WithSelector("#dashboard-main"), datastar.WithMode(datastar.ElementPatchModeOuter))

	for _, t := range d.Toasts().Drain() {
		th, err := s.renderTemplate("toast", t)
		if err != nil {
			continue
		}
		_ = sse.PatchElements(th, datastar.WithSelector("#toasts"), datastar.WithMode(datastar.ElementPatchModeAppend))
	}

	if syncSignals {
		_ = sse.MarshalAndPatchSignals(signalsFor(v))
	}
	return true
}

func signalsFor(v dashboard.View) map[string]any {
	sig := map[string]any{
		"noteTitle":   "",
		"noteContent": "",
		"inviteEmail": "",
		"inviteRole":  string(model.RoleMember),
	}
	if f := v.NoteForm; f != nil {
		sig["noteTitle"] = f.Title
		sig["noteContent"] = f.Content
	}
	if f := v.InviteForm; f != nil {
		sig["inviteEmail"] = f.Email
		sig["inviteRole"] = string(f.Role)
	}
	return sig
}

func (s *Server) handleNoteNew(w http.ResponseWriter, r *http.Request) {
	s.serveDashboardAction(w, r, true, func(r *http.Request, d *dashboard.Dashboard, _ dashboardSignals) error {
		return d.OpenCreate()
	})
}

func (s *Server) handleNoteEdit(w http.ResponseWriter, r *http.Request) {
	s.serveDashboardAction(w, r, true, func(r *http.Request, d *dashboard.Dashboard, _ dashboardSignals) error {
		return d.OpenEdit(r.PathValue("noteId"))
	})
}

func (s *Server) handleNoteDelete(w http.ResponseWriter, r *http.Request) {
	s.serveDashboardAction(w, r, false, func(r *http.Request, d *dashboard.Dashboard, _ dashboardSignals) error {
		return d.RequestDelete(r.PathValue("noteId"))
	})
}

// handleNoteValidate applies the bound field values; ?blur=<field> also marks
// that field touched.
func (s *Server) handleNoteValidate(w http.ResponseWriter, r *http.Request) {
	s.serveDashboardAction(w, r, false, func(r *http.Request, d *dashboard.Dashboard, sig dashboardSignals) error {
		d.ChangeNote(forms.FieldTitle, sig.NoteTitle)
		d.ChangeNote(forms.FieldContent, sig.NoteContent)
		if blur := strings.TrimSpace(r.URL.Query().Get("blur")); blur != "" {
			d.BlurNote(forms.Field(blur))
		}
		return nil
	})
}

func (s *Server) handleNoteSubmit(w http.ResponseWriter, r *http.Request) {
	s.serveDashboardAction(w, r, true, func(r *http.Request, d *dashboard.Dashboard, sig dashboardSignals) error {
		d.ChangeNote(forms.FieldTitle, sig.NoteTitle)
		d.ChangeNote(forms.FieldContent, sig.NoteContent)
		return d.SubmitNote(r.Context())
	})
}

func (s *Server) handleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	s.serveDashboardAction(w, r, false, func(r *http.Request, d *dashboard.Dashboard, _ dashboardSignals) error {
		return d.ConfirmDelete(r.Context())
	})
}

func (s *Server) handleInviteOpen(w http.ResponseWriter, r *http.Request) {
	s.serveDashboardAction(w, r, true, func(r *http.Request, d *dashboard.Dashboard, _ dashboardSignals) error {
		return d.OpenInvite()
	})
}

func applyInviteSignals(d *dashboard.Dashboard, sig dashboardSignals) error {
	d.ChangeInviteEmail(sig.InviteEmail)
	if role := strings.TrimSpace(sig.InviteRole); role != "" {
		return d.SetInviteRole(model.Role(role))
	}
	return nil
}

func (s *Server) handleInviteValidate(w http.ResponseWriter, r *http.Request) {
	s.serveDashboardAction(w, r, false, func(r *http.Request, d *dashboard.Dashboard, sig dashboardSignals) error {
		err := applyInviteSignals(d, sig)
		if r.URL.Query().Get("blur") != "" {
			d.BlurInviteEmail()
		}
		return err
	})
}

func (s *Server) handleInviteSubmit(w http.ResponseWriter, r *http.Request) {
	s.serveDashboardAction(w, r, true, func(r *http.Request, d *dashboard.Dashboard, sig dashboardSignals) error {
		if err := applyInviteSignals(d, sig); err != nil {
			return err
		}
		return d.SubmitInvite(r.Context())
	})
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	s.serveDashboardAction(w, r, false, func(r *http.Request, d *dashboard.Dashboard, _ dashboardSignals) error {
		return d.Upgrade(r.Context())
	})
}

// handleModalClose closes the open modal: ?key=esc for Escape, ?overlay=1 for
// a click outside it, otherwise the close button.
func (s *Server) handleModalClose(w http.ResponseWriter, r *http.Request) {
	s.serveDashboardAction(w, r, true, func(r *http.Request, d *dashboard.Dashboard, _ dashboardSignals) error {
		q := r.URL.Query()
		switch {
		case q.Get("key") != "":
			d.HandleKey(q.Get("key"))
		case q.Get("overlay") != "":
			d.ClickOverlay()
		default:
			d.CloseModal()
		}
		return nil
	})
}

// handleDashboardEvents streams re-renders while the dashboard changes, e.g.
// from another tab of the same browser.
func (s *Server) handleDashboardEvents(w http.ResponseWriter, r *http.Request) {
	cs := s.signedIn(r.Context(), w, r)
	sse := datastar.NewSSE(w, r)
	if cs == nil {
		_ = sse.Redirect("/")
		return
	}

	last, _ := cs.board().Version()
	ch, cancel := cs.hub.subscribe()
	defer cancel()

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case <-ch:
			d := cs.board()
			v, err := d.Version()
			if err != nil || v == last {
				continue
			}
			last = v
			if !s.patchDashboard(sse, cs, d, false) {
				return
			}
		}
	}
}
