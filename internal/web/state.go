package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"notes-frontend/internal/api"
	"notes-frontend/internal/dashboard"
	"notes-frontend/internal/forms"
	"notes-frontend/internal/metrics"
	"notes-frontend/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// clientState is everything the server holds for one browser: its backend
// cookie jar (inside client), session and dashboard.
type clientState struct {
	id      string
	client  *api.Client
	session *session.Store
	hub     *resourceHub
	log     zerolog.Logger

	mu       sync.Mutex
	dash     *dashboard.Dashboard
	login    *forms.LoginForm
	lastSeen time.Time
}

func (cs *clientState) board() *dashboard.Dashboard {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.dash
}

// resetDashboard starts a fresh dashboard, e.g. after sign-in or sign-out.
func (cs *clientState) resetDashboard() *dashboard.Dashboard {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.dash != nil {
		cs.dash.Unmount()
	}
	cs.dash = dashboard.New(cs.client, cs.session, cs.log)
	return cs.dash
}

func (cs *clientState) loginForm() *forms.LoginForm {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.login == nil {
		cs.login = forms.NewLoginForm()
	}
	return cs.login
}

func (cs *clientState) touch(now time.Time) {
	cs.mu.Lock()
	cs.lastSeen = now
	cs.mu.Unlock()
}

func (cs *clientState) idleSince() time.Time {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.lastSeen
}

type stateStore struct {
	baseURL   string
	transport http.RoundTripper
	log       zerolog.Logger
	metrics   *metrics.Metrics
	ttl       time.Duration
	now       func() time.Time

	mu     sync.Mutex
	states map[string]*clientState

	stopOnce sync.Once
	stopCh   chan struct{}
}

func newStateStore(baseURL string, transport http.RoundTripper, ttl time.Duration, log zerolog.Logger, m *metrics.Metrics) *stateStore {
	return &stateStore{
		baseURL:   baseURL,
		transport: transport,
		log:       log,
		metrics:   m,
		ttl:       ttl,
		now:       time.Now,
		states:    map[string]*clientState{},
		stopCh:    make(chan struct{}),
	}
}

func (st *stateStore) get(id string) (*clientState, bool) {
	st.mu.Lock()
	cs, ok := st.states[id]
	st.mu.Unlock()
	if ok {
		cs.touch(st.now())
	}
	return cs, ok
}

func (st *stateStore) create() (*clientState, error) {
	id := uuid.NewString()
	log := st.log.With().Str("state", id[:8]).Logger()
	c, err := api.New(api.Options{
		BaseURL:   st.baseURL,
		Transport: st.transport,
		Logger:    log,
		Metrics:   st.metrics,
	})
	if err != nil {
		return nil, err
	}
	cs := &clientState{
		id:       id,
		client:   c,
		session:  session.New(c, log),
		hub:      newResourceHub(),
		log:      log,
		lastSeen: st.now(),
	}
	cs.dash = dashboard.New(c, cs.session, log)

	st.mu.Lock()
	st.states[id] = cs
	n := len(st.states)
	st.mu.Unlock()
	if st.metrics != nil {
		st.metrics.ClientStates.Set(float64(n))
	}
	return cs, nil
}

func (st *stateStore) drop(id string) {
	st.mu.Lock()
	delete(st.states, id)
	n := len(st.states)
	st.mu.Unlock()
	if st.metrics != nil {
		st.metrics.ClientStates.Set(float64(n))
	}
}

// sweep drops states idle for longer than the TTL and returns how many went.
func (st *stateStore) sweep() int {
	cutoff := st.now().Add(-st.ttl)
	st.mu.Lock()
	dropped := 0
	for id, cs := range st.states {
		if cs.idleSince().Before(cutoff) {
			delete(st.states, id)
			dropped++
		}
	}
	n := len(st.states)
	st.mu.Unlock()
	if st.metrics != nil {
		st.metrics.ClientStates.Set(float64(n))
	}
	return dropped
}

func (st *stateStore) sweepLoop(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-st.stopCh:
			return
		case <-t.C:
			if n := st.sweep(); n > 0 {
				st.log.Debug().Int("dropped", n).Msg("expired browser states")
			}
		}
	}
}

func (st *stateStore) Stop() {
	st.stopOnce.Do(func() { close(st.stopCh) })
}

// stateFor resolves the browser's state from its signed cookie. With create
// set, a missing or stale cookie gets a new state and a new cookie.
func (s *Server) stateFor(w http.ResponseWriter, r *http.Request, create bool) (*clientState, error) {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		if sp, err := verifyToken(s.key, c.Value); err == nil {
			if cs, ok := s.states.get(sp.Sub); ok {
				return cs, nil
			}
		}
	}
	if !create {
		return nil, nil
	}
	cs, err := s.states.create()
	if err != nil {
		return nil, err
	}
	tok, err := newSessionToken(s.key, cs.id, s.cfg.SessionTTL)
	if err != nil {
		s.states.drop(cs.id)
		return nil, err
	}
	setSessionCookie(w, tok, s.cfg.SessionTTL)
	return cs, nil
}

// signedIn resolves the state and its session, loading the session on first
// use. It returns nil when the browser is not signed in.
func (s *Server) signedIn(ctx context.Context, w http.ResponseWriter, r *http.Request) *clientState {
	cs, err := s.stateFor(w, r, false)
	if err != nil || cs == nil {
		return nil
	}
	if !cs.session.EnsureLoaded(ctx).Authenticated() {
		return nil
	}
	return cs
}

// resourceHub fans out "state changed" notices to a browser's open streams.
type resourceHub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func newResourceHub() *resourceHub {
	return &resourceHub{subs: map[chan struct{}]struct{}{}}
}

func (h *resourceHub) subscribe() (ch chan struct{}, cancel func()) {
	ch = make(chan struct{}, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}
}

func (h *resourceHub) broadcast() {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()
}
