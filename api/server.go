// Package api exposes the evaluation engine over HTTP: upload a dataset and
// a run configuration, get back the scorecard and fix list.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"impactproof/adapters/report"
	"impactproof/adapters/tabular"
	"impactproof/app"
	"impactproof/domain/core"
	"impactproof/internal"
	"impactproof/internal/config"
)

// Server holds the HTTP surface and an in-memory store of completed runs.
type Server struct {
	svc *app.RunService
	log *internal.Logger

	mu   sync.RWMutex
	runs map[core.RunID]*app.RunResult
}

// NewServer creates an API server around a run service
func NewServer(svc *app.RunService, log *internal.Logger) *Server {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Server{
		svc:  svc,
		log:  log,
		runs: map[core.RunID]*app.RunResult{},
	}
}

// Router builds the chi route tree
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/runs", s.handleCreateRun)
	r.Get("/runs/{runID}", s.handleGetRun)
	r.Get("/runs/{runID}/report", s.handleGetReport)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateRun accepts a multipart form with a "config" YAML part and a
// "dataset" CSV part, evaluates the run, and returns the result.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form with config and dataset parts")
		return
	}

	cfgFile, _, err := r.FormFile("config")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing config part")
		return
	}
	defer cfgFile.Close()

	cfgBytes, err := io.ReadAll(cfgFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable config part")
		return
	}
	cfg, err := config.Parse(cfgBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dataFile, _, err := r.FormFile("dataset")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing dataset part")
		return
	}
	defer dataFile.Close()

	rows, err := tabular.CSVRows(dataFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.svc.Evaluate(r.Context(), rows, cfg)
	if err != nil {
		// Config errors are precondition failures, not data findings
		if core.IsConfigError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.log.Error("run failed: %v", err)
		writeError(w, http.StatusInternalServerError, "evaluation failed")
		return
	}

	s.mu.Lock()
	s.runs[result.RunID] = result
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	result, err := s.lookup(chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	result, err := s.lookup(chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(report.HTML(result))
}

func (s *Server) lookup(id string) (*app.RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.runs[core.RunID(id)]
	if !ok {
		return nil, fmt.Errorf("%w %s", core.ErrRunNotFound, id)
	}
	return result, nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
