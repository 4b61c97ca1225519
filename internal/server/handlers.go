package server

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready to roll!"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil && !s.health.IsHealthy() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]bool{"healthy": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"healthy": true})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.state.ReleaseVersion))
}

func (s *Server) handleOperator(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"public_key": s.state.OperatorPublicKey})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.ServedHashes())
}

// handleFileService resolves a manifest hash and file_name header to a
// local path and serves it, full or ranged:
// auth check -> manifest lookup -> file_name header -> range header -> response.
func (s *Server) handleFileService(w http.ResponseWriter, r *http.Request) {
	manifestHash := chi.URLParam(r, "manifestHash")

	if !s.authorized(r) {
		s.metrics.recordRequest("unauthorized")
		http.Error(w, "missing or invalid Authorization", http.StatusUnauthorized)
		return
	}

	sf, ok := s.state.Get(manifestHash)
	if !ok {
		s.metrics.recordRequest("not_found")
		http.Error(w, "subfile not found", http.StatusNotFound)
		return
	}

	fileName := r.Header.Get("file_name")
	if fileName == "" {
		s.metrics.recordRequest("missing_file_name")
		http.Error(w, "missing required file_name header", http.StatusNotAcceptable)
		return
	}
	path := filepath.Join(sf.LocalDir, fileName)

	rangeHeader := r.Header.Get("Content-Range")
	if rangeHeader == "" {
		s.serveFull(w, path)
		return
	}

	rng, err := parseRangeHeader(rangeHeader)
	if err != nil {
		s.metrics.recordRequest("bad_range")
		http.Error(w, "invalid Content-Range: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.serveRange(w, path, rng)
}

// authorized reports whether r carries the configured bearer token: if a
// free_query_auth_token is configured, Authorization must equal
// "Bearer <token>" exactly; otherwise every request is accepted.
func (s *Server) authorized(r *http.Request) bool {
	if s.state.FreeQueryAuthToken == "" {
		return true
	}
	return r.Header.Get("Authorization") == "Bearer "+s.state.FreeQueryAuthToken
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

