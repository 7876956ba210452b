// Package api exposes the diagram pipeline over HTTP.
//
// The surface mirrors the CLI: POST /api/scan discovers inventories and
// playbooks in a repository, POST /api/generate renders diagrams for a
// selection of them. GET /healthz reports liveness. Repositories are read
// from the server's filesystem; acquisition (cloning, checkout) is out of
// scope.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/playgraph/playgraph/internal/config"
	"github.com/playgraph/playgraph/pkg/ansible"
	"github.com/playgraph/playgraph/pkg/discover"
	"github.com/playgraph/playgraph/pkg/errors"
	"github.com/playgraph/playgraph/pkg/observability"
	"github.com/playgraph/playgraph/pkg/pipeline"
)

// Server handles HTTP requests for scanning and diagram generation.
type Server struct {
	runner *pipeline.Runner
	cfg    config.Config
	logger *log.Logger
}

// NewServer creates a server around an existing pipeline runner.
func NewServer(runner *pipeline.Runner, cfg config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, cfg: cfg, logger: logger}
}

// Handler builds the HTTP routing tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/scan", s.handleScan)
		r.Post("/generate", s.handleGenerate)
	})
	return r
}

// requestID assigns each request a UUID, exposed via the X-Request-ID header
// and the request logger.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", w.Header().Get("X-Request-ID"),
			"duration", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// scanRequest asks for the inventories and playbooks of a repository.
type scanRequest struct {
	RepoRoot string `json:"repo_root"`
	Refresh  bool   `json:"refresh,omitempty"`
}

// scanResponse lists the discovered input files.
type scanResponse struct {
	RepoRoot    string   `json:"repo_root"`
	Inventories []string `json:"inventories"`
	Playbooks   []string `json:"playbooks"`
	CacheHit    bool     `json:"cache_hit"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if err := errors.ValidateRepoPath(req.RepoRoot); err != nil {
		s.writeError(w, err)
		return
	}

	key := s.runner.Keyer.ScanKey(req.RepoRoot)
	if !req.Refresh {
		if data, hit, err := s.runner.Cache.Get(r.Context(), key); err == nil && hit {
			var res discover.Result
			if json.Unmarshal(data, &res) == nil {
				observability.Cache().OnCacheHit(r.Context(), "scan")
				writeJSON(w, http.StatusOK, scanResponse{
					RepoRoot:    req.RepoRoot,
					Inventories: res.Inventories,
					Playbooks:   res.Playbooks,
					CacheHit:    true,
				})
				return
			}
		}
		observability.Cache().OnCacheMiss(r.Context(), "scan")
	}

	res, err := discover.Scan(req.RepoRoot)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if data, err := json.Marshal(res); err == nil {
		_ = s.runner.Cache.Set(r.Context(), key, data, s.cfg.Cache.TTL())
		observability.Cache().OnCacheSet(r.Context(), "scan", len(data))
	}

	writeJSON(w, http.StatusOK, scanResponse{
		RepoRoot:    req.RepoRoot,
		Inventories: res.Inventories,
		Playbooks:   res.Playbooks,
	})
}

// generateRequest selects input files and rendering options.
type generateRequest struct {
	RepoRoot    string   `json:"repo_root"`
	Inventories []string `json:"inventories,omitempty"`
	Playbooks   []string `json:"playbooks"`
	Layout      string   `json:"layout,omitempty"`
	Formats     []string `json:"formats,omitempty"`
	Refresh     bool     `json:"refresh,omitempty"`
}

// generateResponse carries the rendered diagrams. All formats are textual
// (Mermaid, DOT, SVG), so artifacts are plain strings.
type generateResponse struct {
	DiagramID string            `json:"diagram_id"`
	Layout    string            `json:"layout"`
	Artifacts map[string]string `json:"artifacts"`
	Warnings  []ansible.Warning `json:"warnings,omitempty"`
	Stats     generateStats     `json:"stats"`
	CacheHit  bool              `json:"cache_hit"`
}

type generateStats struct {
	Groups    int `json:"groups"`
	Playbooks int `json:"playbooks"`
	Roles     int `json:"roles"`
	Tasks     int `json:"tasks"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	layout := req.Layout
	if layout == "" {
		layout = s.cfg.Diagram.Layout
	}

	opts := pipeline.Options{
		RepoRoot:    req.RepoRoot,
		Inventories: req.Inventories,
		Playbooks:   req.Playbooks,
		Layout:      layout,
		Formats:     req.Formats,
		Refresh:     req.Refresh,
		CacheTTL:    s.cfg.Cache.TTL(),
		Logger:      s.logger,
	}

	result, err := s.runner.Generate(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	artifacts := make(map[string]string, len(result.Artifacts))
	for format, data := range result.Artifacts {
		artifacts[format] = string(data)
	}

	res := generateResponse{
		DiagramID: uuid.NewString(),
		Layout:    opts.Layout,
		Artifacts: artifacts,
		Warnings:  result.Warnings,
		CacheHit:  result.CacheInfo.Hit,
	}
	if result.Model != nil {
		res.Stats = generateStats{
			Groups:    result.Stats.Groups,
			Playbooks: result.Stats.Playbooks,
			Roles:     result.Stats.Roles,
			Tasks:     result.Stats.Tasks,
		}
	}
	writeJSON(w, http.StatusOK, res)
}

// errorResponse is the JSON body for failed requests.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidLayout, errors.ErrCodeInvalidPath,
		errors.ErrCodeUnsupported:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: string(code)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
