// Package api is the shared HTTP client for the notes backend.
//
// Sessions are cookie based: the client carries a cookie jar and never handles
// bearer tokens. There are no retries and no client-side timeouts; callers bound
// requests with their context.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"notes-frontend/internal/metrics"
	"notes-frontend/internal/model"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
)

const DefaultBaseURL = "https://note-app-backend-six.vercel.app"

type Options struct {
	BaseURL string
	// Jar holds the backend session cookie. A fresh in-memory jar is used when nil.
	Jar http.CookieJar
	// Transport is shared across clients (the web server creates one client per browser).
	Transport http.RoundTripper
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics
}

type Client struct {
	rc      *resty.Client
	baseURL *url.URL
	jar     http.CookieJar
	log     zerolog.Logger
	metrics *metrics.Metrics
}

func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("api: invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("api: base url must be http or https")
	}

	jar := opts.Jar
	if jar == nil {
		jar, err = cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, err
		}
	}

	rc := resty.New().
		SetBaseURL(base).
		SetCookieJar(jar).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	if opts.Transport != nil {
		rc.SetTransport(opts.Transport)
	}
	rc.SetLogger(restyLogger{log: opts.Logger})

	return &Client{
		rc:      rc,
		baseURL: u,
		jar:     jar,
		log:     opts.Logger,
		metrics: opts.Metrics,
	}, nil
}

func (c *Client) BaseURL() string { return c.baseURL.String() }

// Cookies returns the cookies currently held for the backend origin.
func (c *Client) Cookies() []*http.Cookie { return c.jar.Cookies(c.baseURL) }

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type request struct {
	op         string
	method     string
	path       string
	pathParams map[string]string
	body       any
	out        any
}

func (c *Client) do(ctx context.Context, rq request) error {
	var eb errorBody
	r := c.rc.R().SetContext(ctx).SetError(&eb)
	if rq.pathParams != nil {
		r.SetPathParams(rq.pathParams)
	}
	if rq.body != nil {
		r.SetBody(rq.body)
	}
	if rq.out != nil {
		r.SetResult(rq.out)
	}

	start := time.Now()
	resp, err := r.Execute(rq.method, rq.path)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveBackend(rq.op, 0, elapsed)
		c.log.Debug().Err(err).Str("op", rq.op).Dur("latency", elapsed).Msg("backend call failed")
		return fmt.Errorf("api: %s: %w", rq.op, err)
	}

	status := resp.StatusCode()
	c.metrics.ObserveBackend(rq.op, status, elapsed)
	c.log.Debug().
		Str("op", rq.op).
		Str("method", rq.method).
		Str("path", resp.Request.URL).
		Int("status", status).
		Dur("latency", elapsed).
		Msg("backend call")

	if resp.IsError() {
		msg := strings.TrimSpace(eb.Message)
		if msg == "" {
			msg = strings.TrimSpace(eb.Error)
		}
		return &Error{Op: rq.op, Status: status, Message: msg}
	}
	return nil
}

func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, request{op: "auth.profile", method: http.MethodGet, path: "/auth/profile", out: &u}); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	return c.do(ctx, request{op: "auth.login", method: http.MethodPost, path: "/auth/login", body: body})
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, request{op: "auth.logout", method: http.MethodPost, path: "/auth/logout"})
}

func (c *Client) ListNotes(ctx context.Context) ([]model.Note, error) {
	var notes []model.Note
	if err := c.do(ctx, request{op: "notes.list", method: http.MethodGet, path: "/notes", out: &notes}); err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []model.Note{}
	}
	return notes, nil
}

func (c *Client) CreateNote(ctx context.Context, in model.NoteInput) error {
	return c.do(ctx, request{op: "notes.create", method: http.MethodPost, path: "/notes", body: in})
}

func (c *Client) UpdateNote(ctx context.Context, id string, in model.NoteInput) error {
	return c.do(ctx, request{
		op:         "notes.update",
		method:     http.MethodPut,
		path:       "/notes/{id}",
		pathParams: map[string]string{"id": id},
		body:       in,
	})
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, request{
		op:         "notes.delete",
		method:     http.MethodDelete,
		path:       "/notes/{id}",
		pathParams: map[string]string{"id": id},
	})
}

func (c *Client) CurrentTenant(ctx context.Context) (*model.Tenant, error) {
	var t model.Tenant
	if err := c.do(ctx, request{op: "tenants.current", method: http.MethodGet, path: "/tenants/tenant", out: &t}); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) UpgradeTenant(ctx context.Context, slug string) error {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return errors.New("api: tenants.upgrade: missing tenant slug")
	}
	return c.do(ctx, request{
		op:         "tenants.upgrade",
		method:     http.MethodPost,
		path:       "/tenants/{slug}/upgrade",
		pathParams: map[string]string{"slug": slug},
	})
}

func (c *Client) Invite(ctx context.Context, email string, role model.Role) error {
	body := map[string]string{"email": email, "role": string(role)}
	return c.do(ctx, request{op: "invite", method: http.MethodPost, path: "/invite", body: body})
}

// restyLogger routes resty's internal warnings into zerolog.
type restyLogger struct{ log zerolog.Logger }

func (l restyLogger) Errorf(format string, v ...any) { l.log.Error().Msgf(format, v...) }
func (l restyLogger) Warnf(format string, v ...any)  { l.log.Warn().Msgf(format, v...) }
func (l restyLogger) Debugf(format string, v ...any) { l.log.Debug().Msgf(format, v...) }
