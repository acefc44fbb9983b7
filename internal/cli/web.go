package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"notes-frontend/internal/metrics"
	"notes-frontend/internal/web"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newWebCmd(app *App) *cobra.Command {
	var addr string
	var open bool

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the browser front end",
		Long: strings.TrimSpace(`
Serve the notes web front end from a local HTTP server.

Pages are rendered on the server; the dashboard stays live over a
server-sent event stream. Backend calls are made by this process on behalf
of each signed-in browser.
`),
		Example: strings.TrimSpace(`
# Serve on the configured address (NOTES_WEB_ADDR)
notes web

# Pick a port and open a browser
notes web --addr 127.0.0.1:8080 --open
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				listenAddr = app.cfg.WebAddr
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}
			actualAddr := ln.Addr().String()

			srv, err := web.NewServer(web.ServerConfig{
				Addr:          actualAddr,
				BackendURL:    app.cfg.BackendURL,
				SessionSecret: app.cfg.SessionSecret,
				SessionTTL:    app.cfg.SessionTTL,
				Logger:        app.log,
				Metrics:       metrics.New(),
			})
			if err != nil {
				_ = ln.Close()
				return writeErr(cmd, err)
			}
			defer srv.Close()

			url := "http://" + actualAddr + "/"
			opened := false
			openErr := ""
			if open {
				if err := openPath(url); err != nil {
					openErr = err.Error()
				} else {
					opened = true
				}
			}

			hints := []string{}
			if !opened {
				hints = append(hints, "open "+url)
			}
			_ = writeOut(cmd, app, map[string]any{
				"addr":      actualAddr,
				"url":       url,
				"backend":   app.cfg.BackendURL,
				"opened":    opened,
				"openError": openErr,
				"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
			}, hints...)

			fmt.Fprintf(cmd.ErrOrStderr(), "Notes web running at %s (backend=%s)\n", url, app.cfg.BackendURL)
			if openErr != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to open browser: %s\n", openErr)
			}
			if strings.TrimSpace(app.cfg.SessionSecret) == "" {
				app.log.Warn().Msg("NOTES_SESSION_SECRET is empty; browser sessions end when the server restarts")
			}

			if err := serve(cmd.Context(), ln, srv.Handler()); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Bind address (host:port or :port; default NOTES_WEB_ADDR)")
	cmd.Flags().BoolVar(&open, "open", false, "Open the UI in your default browser")
	return cmd
}

// serve runs h on ln until ctx is done, then drains open requests. Event
// streams use ctx as their base context so they end with it.
func serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	hs := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := hs.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return hs.Shutdown(sctx)
	})
	return g.Wait()
}
