package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/atomicstack/tab-popup-switcher/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	defaultWait = 25 * time.Second
	maxWait     = time.Minute
	maxBody     = 1 << 20
)

type server struct {
	coord *Coordinator
	hub   *Hub
	cmds  *Commands
}

// NewServer exposes the coordinator, the push hub and the shortcut commands
// over HTTP.
func NewServer(coord *Coordinator, hub *Hub, cmds *Commands) http.Handler {
	s := &server{coord: coord, hub: hub, cmds: cmds}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Route("/v1", func(r chi.Router) {
		r.Post("/messages", s.handleMessage)
		r.Get("/overlay/events", s.handlePoll)
		r.Delete("/overlay/events", s.handleDisconnect)
		r.Post("/commands/"+CommandRelease, s.handleRelease)
		r.Post("/commands/{name}", s.handleCommand)
	})
	return r
}

func (s *server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var env Envelope
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&env); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := s.coord.Handle(r.Context(), env)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrUnknownType) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handlePoll(w http.ResponseWriter, r *http.Request) {
	wait := defaultWait
	if raw := r.URL.Query().Get("wait"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			wait = d
		}
	}
	if wait > maxWait {
		wait = maxWait
	}
	ctx, cancel := context.WithTimeout(r.Context(), wait)
	defer cancel()
	env, err := s.hub.Next(ctx)
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

func (s *server) handleDisconnect(w http.ResponseWriter, _ *http.Request) {
	s.hub.Disconnect()
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleCommand(w http.ResponseWriter, r *http.Request) {
	action, err := s.cmds.Run(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"action": action})
}

func (s *server) handleRelease(w http.ResponseWriter, r *http.Request) {
	action, err := s.cmds.Release(r.URL.Query().Get("key"))
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"action": action})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error(err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
