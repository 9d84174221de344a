package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/benchrig/rigcheck/internal/harness"
	"github.com/benchrig/rigcheck/internal/history"
	"github.com/benchrig/rigcheck/internal/output"
)

const defaultRunsLimit = 20

// Routes returns the HTTP handler tree for the agent.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthcheck", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/sections", s.handleSections)
		r.Get("/stats", s.handleStats)
		r.Get("/runs", s.handleRuns)
		r.Post("/run", s.handleRun)
		r.Route("/sections/{sectionID}", func(r chi.Router) {
			r.Post("/enable", s.handleEnable)
			r.Post("/disable", s.handleDisable)
		})
	})
	r.Get("/metrics", s.handleMetrics)
	r.Get("/ws", s.handleWS)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSections(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, output.Sections(s.opts.Registry))
}

type statsResponse struct {
	// Session covers runs executed by this agent process.
	Session harness.Totals `json:"session"`
	// Persisted covers the on-disk history across restarts.
	Persisted *harness.Totals `json:"persisted,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{Session: s.agg.Totals()}
	if s.opts.History != nil {
		persisted, err := s.opts.History.Totals(r.Context())
		if err != nil {
			s.log.Errorf("history totals: %v", err)
		} else {
			resp.Persisted = &persisted
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	runs := []history.RunSummary{}
	if s.opts.History != nil {
		var err error
		runs, err = s.opts.History.RecentRuns(r.Context(), parseLimit(r, defaultRunsLimit))
		if err != nil {
			s.log.Errorf("recent runs: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Sections []string `json:"sections"`
	}
	// An empty body means "run everything enabled".
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	req := harness.AllEnabled()
	if len(body.Sections) > 0 {
		req = harness.Explicit(body.Sections...)
	}

	if err := s.acquireRun(); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	go func() {
		defer s.releaseRun()
		if _, err := s.execute(context.Background(), req); err != nil {
			s.log.Errorf("api run: %v", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{"started": true, "request": req.String()})
}

func (s *Server) handleEnable(w http.ResponseWriter, r *http.Request) {
	s.toggleSection(w, r, true)
}

func (s *Server) handleDisable(w http.ResponseWriter, r *http.Request) {
	s.toggleSection(w, r, false)
}

func (s *Server) toggleSection(w http.ResponseWriter, r *http.Request, enabled bool) {
	id := chi.URLParam(r, "sectionID")
	var ok bool
	if enabled {
		ok = s.opts.Registry.Enable(id)
	} else {
		ok = s.opts.Registry.Disable(id)
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown section"})
		return
	}
	s.log.Infof("section %s %s", id, stateWord(enabled))
	writeJSON(w, http.StatusOK, map[string]any{"section": id, "enabled": enabled})
}

func stateWord(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.hub.ServeConn(conn)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseLimit(r *http.Request, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
