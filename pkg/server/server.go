package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elonfeng/mediavault/internal/scheduler"
	"github.com/elonfeng/mediavault/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Refresher runs an on-demand refresh pass.
type Refresher interface {
	RefreshAll(ctx context.Context) (scheduler.Report, error)
}

// Server provides the HTTP API.
type Server struct {
	store     store.Store
	refresher Refresher
	log       zerolog.Logger
	port      int
}

// New creates a new HTTP server. refresher may be nil, in which case the
// refresh endpoint answers 503.
func New(s store.Store, refresher Refresher, log zerolog.Logger, port int) *Server {
	if port == 0 {
		port = 8080
	}
	return &Server{
		store:     s,
		refresher: refresher,
		log:       log.With().Str("component", "server").Logger(),
		port:      port,
	}
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/playlists", s.handleListPlaylists)
		r.Post("/playlists", s.handleCreatePlaylist)
		r.Get("/playlists/{id}", s.handleGetPlaylist)
		r.Delete("/playlists/{id}", s.handleDeletePlaylist)
		r.Get("/playlists/{id}/streams", s.handlePlaylistStreams)
		r.Post("/playlists/{id}/streams", s.handleAddStream)
		r.Delete("/playlists/{id}/streams/{index}", s.handleRemoveStream)
		r.Post("/playlists/{id}/move", s.handleMoveStream)

		r.Get("/remote-playlists", s.handleListRemotePlaylists)
		r.Get("/subscriptions", s.handleListSubscriptions)
		r.Post("/refresh", s.handleRefresh)
	})
	return r
}

// ListenAndServe serves the API until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "refresh not configured")
		return
	}

	report, err := s.refresher.RefreshAll(r.Context())
	resp := map[string]any{"report": report}
	if err != nil {
		s.log.Warn().Err(err).Msg("refresh finished with errors")
		resp["errors"] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps store errors to status codes.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrPositionOutOfRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrDanglingMembership):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error().Err(err).Msg("store error")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func intParam(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, chi.URLParam(r, name))
	}
	return v, nil
}
