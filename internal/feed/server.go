package feed

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/wagnerlima/memory-cloud/devfeed/internal/loader"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/models"
)

// Server serves the projects document with a time-bounded cache.
type Server struct {
	fetcher loader.Fetcher
	ttl     time.Duration
	mux     *http.ServeMux
	now     func() time.Time

	mu       sync.Mutex
	cached   *models.RawDataset
	cachedAt time.Time
}

// NewServer creates a feed server backed by f. A ttl of zero disables caching.
func NewServer(f loader.Fetcher, ttl time.Duration) *Server {
	s := &Server{
		fetcher: f,
		ttl:     ttl,
		mux:     http.NewServeMux(),
		now:     time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return loggingMiddleware(s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/projects", s.handleProjects)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	doc, err := s.document(r)
	if err != nil {
		log.Printf("[FEED] Failed to build projects document: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to read project data"})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) document(r *http.Request) (*models.RawDataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.now().Sub(s.cachedAt) < s.ttl {
		return s.cached, nil
	}

	doc, err := s.fetcher.Fetch(r.Context())
	if err != nil {
		return nil, err
	}
	s.cached = doc
	s.cachedAt = s.now()
	return doc, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}
