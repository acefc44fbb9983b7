// Package cookiejar keeps the backend session cookie across terminal runs.
//
// It wraps the in-memory net/http/cookiejar and writes every change through to
// a sqlite file, so `notes login` in one process is seen by the next.
package cookiejar

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	stdjar "net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"

	_ "modernc.org/sqlite"
)

type Jar struct {
	db  *sql.DB
	log zerolog.Logger
	now func() time.Time

	mu  sync.Mutex
	mem *stdjar.Jar
}

// Open opens (creating if needed) the cookie database at path.
func Open(ctx context.Context, path string, log zerolog.Logger) (*Jar, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("cookiejar: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("cookiejar: %w", err)
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cookiejar: open %s: %w", path, err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("cookiejar: %s: %w", p, err)
		}
	}
	j, err := New(ctx, db, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// New migrates db and loads every unexpired cookie from it.
func New(ctx context.Context, db *sql.DB, log zerolog.Logger) (*Jar, error) {
	mem, err := stdjar.New(&stdjar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	j := &Jar{db: db, log: log, now: time.Now, mem: mem}
	if err := j.migrate(ctx); err != nil {
		return nil, err
	}
	if err := j.load(ctx); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Jar) migrate(ctx context.Context) error {
	_, err := j.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS cookies (
		host TEXT NOT NULL,
		name TEXT NOT NULL,
		path TEXT NOT NULL,
		value TEXT NOT NULL,
		domain TEXT NOT NULL,
		secure INTEGER NOT NULL,
		http_only INTEGER NOT NULL,
		expires_unixms INTEGER NOT NULL,
		PRIMARY KEY(host, name, path)
	);`)
	if err != nil {
		return fmt.Errorf("cookiejar: migrate: %w", err)
	}
	return nil
}

func (j *Jar) load(ctx context.Context) error {
	rows, err := j.db.QueryContext(ctx,
		`SELECT host, name, path, value, domain, secure, http_only, expires_unixms
		FROM cookies WHERE expires_unixms = 0 OR expires_unixms > ?`,
		j.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("cookiejar: load: %w", err)
	}
	defer rows.Close()

	j.mu.Lock()
	defer j.mu.Unlock()
	for rows.Next() {
		var (
			host, domain string
			c            http.Cookie
			expires      int64
		)
		if err := rows.Scan(&host, &c.Name, &c.Path, &c.Value, &domain, &c.Secure, &c.HttpOnly, &expires); err != nil {
			return fmt.Errorf("cookiejar: scan: %w", err)
		}
		if expires > 0 {
			c.Expires = time.UnixMilli(expires)
		}
		c.Domain = domain
		scheme := "http"
		if c.Secure {
			scheme = "https"
		}
		j.mem.SetCookies(&url.URL{Scheme: scheme, Host: host, Path: c.Path}, []*http.Cookie{&c})
	}
	return rows.Err()
}

func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.mem.Cookies(u)
}

// SetCookies updates the in-memory jar and persists the change. Write
// failures are logged; the cookies stay usable for this process.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	j.mem.SetCookies(u, cookies)
	j.mu.Unlock()

	ctx := context.Background()
	now := j.now()
	for _, c := range cookies {
		if err := j.persist(ctx, u, c, now); err != nil {
			j.log.Warn().Err(err).Str("cookie", c.Name).Msg("persist cookie failed")
		}
	}
}

func (j *Jar) persist(ctx context.Context, u *url.URL, c *http.Cookie, now time.Time) error {
	host := strings.TrimPrefix(strings.ToLower(c.Domain), ".")
	if host == "" {
		host = u.Hostname()
	}
	path := c.Path
	if path == "" || path[0] != '/' {
		path = defaultPath(u.Path)
	}
	if c.MaxAge < 0 || (!c.Expires.IsZero() && !c.Expires.After(now)) {
		_, err := j.db.ExecContext(ctx, `DELETE FROM cookies WHERE host = ? AND name = ? AND path = ?`, host, c.Name, path)
		return err
	}
	var expires int64
	switch {
	case c.MaxAge > 0:
		expires = now.Add(time.Duration(c.MaxAge) * time.Second).UnixMilli()
	case !c.Expires.IsZero():
		expires = c.Expires.UnixMilli()
	}
	secure := c.Secure || u.Scheme == "https"
	_, err := j.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cookies(host, name, path, value, domain, secure, http_only, expires_unixms)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		host, c.Name, path, c.Value, c.Domain, secure, c.HttpOnly, expires)
	return err
}

// defaultPath is the RFC 6265 default-path: the directory of the request
// path, as net/http/cookiejar computes it.
func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}

// Clear forgets every cookie, in memory and on disk.
func (j *Jar) Clear(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, `DELETE FROM cookies`); err != nil {
		return fmt.Errorf("cookiejar: clear: %w", err)
	}
	mem, err := stdjar.New(&stdjar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return err
	}
	j.mu.Lock()
	j.mem = mem
	j.mu.Unlock()
	return nil
}

func (j *Jar) Close() error { return j.db.Close() }
