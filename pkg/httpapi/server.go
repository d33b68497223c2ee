// Package httpapi implements the read-only trace viewer HTTP surface:
// a JSON query API over a *store.Store plus the static web/ assets,
// realized on plain net/http per the ambient-stack decision to avoid
// pulling in a router dependency for three routes.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/store"
)

// Server serves the trace API and static viewer assets over a fixed
// *store.Store. It holds no other state, so handlers never need locks
// of their own — store.Store is already safe for concurrent readers.
type Server struct {
	db     *store.Store
	webDir string
	logger *slog.Logger
	mux    *http.ServeMux
}

// New builds a Server. webDir may be empty, in which case static asset
// requests 404 instead of serving a filesystem (see Non-goals: no
// bundled UI is shipped).
func New(db *store.Store, webDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{db: db, webDir: webDir, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/trace/", s.handleTraceStep)
	s.mux.HandleFunc("/api/trace", s.handleTraceRange)
	if s.webDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.webDir)))
	}
}

// ServeHTTP applies permissive CORS (spec §6: the viewer may be served
// from a different origin than the API) and dispatches to the mux.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.mux.ServeHTTP(w, r)
}

// handleTraceRange serves GET /api/trace?start=&end=. An omitted start
// defaults to 0 and an omitted end to the largest step, so omitting both
// returns the full trace.
func (s *Server) handleTraceRange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	lo, hi := uint64(0), ^uint64(0)
	if v := r.URL.Query().Get("start"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "bad start", http.StatusBadRequest)
			return
		}
		lo = parsed
	}
	if v := r.URL.Query().Get("end"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "bad end", http.StatusBadRequest)
			return
		}
		hi = parsed
	}

	entries := s.db.GetRange(lo, hi)
	s.writeJSON(w, http.StatusOK, entries)
}

// handleTraceStep serves GET /api/trace/<step>.
func (s *Server) handleTraceStep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/api/trace/")
	if raw == "" {
		s.handleTraceRange(w, r)
		return
	}
	step, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		http.Error(w, "bad step", http.StatusBadRequest)
		return
	}

	entry, ok := s.db.Get(step)
	if !ok {
		http.Error(w, "no such step", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}
