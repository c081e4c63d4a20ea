// Package web serves the viewer session over HTTP for the browser dashboard.
package web

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/cors"
	goutils "go.viam.com/utils"
	"goji.io"
	"goji.io/pat"

	"github.com/ggldnl/hexviz/logging"
	"github.com/ggldnl/hexviz/viewer"
)

// Options configures the web server.
type Options struct {
	BindAddress string
	// StaticDir, when set, is served at / for the dashboard shell.
	StaticDir string
}

// api binds the HTTP routes to a session.
type api struct {
	session *viewer.Session
	logger  logging.Logger
}

// NewHandler returns the API and optional static file routes wrapped in a permissive
// CORS handler.
func NewHandler(session *viewer.Session, options Options, logger logging.Logger) http.Handler {
	a := &api{session: session, logger: logger}
	mux := goji.NewMux()
	mux.HandleFunc(pat.Get("/api/status"), a.status)
	mux.HandleFunc(pat.Get("/api/scene"), a.scene)
	mux.HandleFunc(pat.Get("/api/joints"), a.joints)
	mux.HandleFunc(pat.Put("/api/pose"), a.pose)
	mux.HandleFunc(pat.Post("/api/description"), a.description)
	mux.HandleFunc(pat.Post("/api/connect"), a.connect)
	mux.HandleFunc(pat.Post("/api/disconnect"), a.disconnect)
	mux.HandleFunc(pat.Get("/api/telemetry"), a.telemetry)
	if options.StaticDir != "" {
		mux.Handle(pat.Get("/*"), http.FileServer(http.Dir(options.StaticDir)))
	}
	return cors.AllowAll().Handler(mux)
}

// RunWeb serves the session until ctx is done.
func RunWeb(ctx context.Context, session *viewer.Session, options Options, logger logging.Logger) error {
	listener, err := net.Listen("tcp", options.BindAddress)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", options.BindAddress)
	}
	return Serve(ctx, listener, session, options, logger)
}

// Serve serves the session on listener until ctx is done.
func Serve(ctx context.Context, listener net.Listener, session *viewer.Session, options Options, logger logging.Logger) error {
	httpServer := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Handler:           NewHandler(session, options, logger),
	}

	done := make(chan struct{})
	defer close(done)
	goutils.PanicCapturingGo(func() {
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Errorw("error shutting down", "error", err)
		}
	})

	logger.Infow("serving", "url", "http://"+listener.Addr().String())
	if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
