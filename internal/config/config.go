// Package config loads process settings from the environment and an optional
// .env file. Command-line flags override what is loaded here.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const Prefix = "NOTES"

type Config struct {
	BackendURL    string        `envconfig:"BACKEND_URL" default:"https://note-app-backend-six.vercel.app"`
	WebAddr       string        `envconfig:"WEB_ADDR" default:"127.0.0.1:5173"`
	SessionSecret string        `envconfig:"SESSION_SECRET"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"12h"`
	CookieDB      string        `envconfig:"COOKIE_DB"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`
	TUITheme      string        `envconfig:"TUI_THEME" default:"auto"`
}

// Load reads envFiles (missing files are skipped) and then the NOTES_*
// environment. Variables already set in the environment win over .env values.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: %s: %w", f, err)
		}
	}
	var c Config
	if err := envconfig.Process(Prefix, &c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if c.CookieDB == "" {
		c.CookieDB = DefaultCookieDB()
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	return c, nil
}

// DefaultCookieDB is the per-user cookie database used by the terminal
// clients.
func DefaultCookieDB() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "notes", "cookies.sqlite")
}
