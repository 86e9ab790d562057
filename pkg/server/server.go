// Package server exposes a widget over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/user/frameconv/pkg/ports"
	"github.com/user/frameconv/pkg/widget"
)

// SourceOpener opens an uploaded file for conversion.
type SourceOpener func(path string) (ports.SourceMedia, error)

// Options configures a Server.
type Options struct {
	Logger     ports.Logger
	FileSystem ports.FileSystem
	Open       SourceOpener

	AllowedOrigins []string
	MaxUploadBytes int64

	// MetricsPath mounts the Prometheus handler when non-empty.
	MetricsPath string
}

// Server routes API requests to a single widget.
type Server struct {
	widget *widget.Widget
	opts   Options
	logger ports.Logger
	router *mux.Router
}

// New creates a Server for w.
func New(w *widget.Widget, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 512 << 20
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	s := &Server{
		widget: w,
		opts:   opts,
		logger: opts.Logger.WithComponent("server"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(metricsMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/capability", s.handleCapability).Methods(http.MethodGet)
	api.HandleFunc("/convert", s.handleConvert).Methods(http.MethodPost)
	api.HandleFunc("/job", s.handleJob).Methods(http.MethodGet)
	api.HandleFunc("/job", s.handleCancel).Methods(http.MethodDelete)
	api.HandleFunc("/job/output", s.handleOutput).Methods(http.MethodGet)

	if s.opts.MetricsPath != "" {
		r.Handle(s.opts.MetricsPath, promhttp.Handler()).Methods(http.MethodGet)
	}
	return r
}

// Handler returns the router wrapped with CORS handling.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		ExposedHeaders: []string{"Content-Disposition"},
	})
	return c.Handler(s.router)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down and
// cancels any running job.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.widget.Close()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
