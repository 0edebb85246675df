package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/mirrorcat/gameversions/internal/common"
	"github.com/mirrorcat/gameversions/internal/mirror"
)

// Server routes HTTP traffic to the mirror query bridge and serves the
// static asset directory.
type Server struct {
	router    chi.Router
	mirror    *mirror.Service
	staticDir string
}

func NewServer(svc *mirror.Service, staticDir string) (*Server, error) {
	logger := common.Logger()
	if svc == nil {
		return nil, errors.New("mirror service required")
	}
	if strings.TrimSpace(staticDir) == "" {
		staticDir = "static"
	}
	if _, err := os.Stat(filepath.Join(staticDir, "index.html")); err != nil {
		logger.Warn("api: static index missing", "path", filepath.Join(staticDir, "index.html"), "error", err)
	}
	srv := &Server{
		router:    chi.NewRouter(),
		mirror:    svc,
		staticDir: staticDir,
	}
	srv.routes()
	logger.Info("api: server ready")
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(requestIDMiddleware)
	s.router.Use(loggingMiddleware)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Get("/logs", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, common.LogEntries())
	})

	s.router.Post("/query.json", s.handleQuery)
	s.router.Post("/query", s.handleQuery)

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/static/index.html", http.StatusFound)
	})
	s.router.Get("/static/*", s.handleStatic)
	s.router.NotFound(s.serveNotFound)
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(r.URL.Path, "/static/")
	if rel == "" || rel == "/" {
		rel = "index.html"
	}
	target := filepath.Join(s.staticDir, filepath.FromSlash(path.Clean("/"+rel)))
	if info, err := os.Stat(target); err != nil || info.IsDir() {
		s.serveNotFound(w, r)
		return
	}
	http.StripPrefix("/static/", http.FileServer(http.Dir(s.staticDir))).ServeHTTP(w, r)
}

// serveNotFound renders the custom 404 document for unmatched paths and
// missing static files.
func (s *Server) serveNotFound(w http.ResponseWriter, r *http.Request) {
	page := filepath.Join(s.staticDir, "404.html")
	data, err := os.ReadFile(page)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
