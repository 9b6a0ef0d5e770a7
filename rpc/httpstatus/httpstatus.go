// Package httpstatus exposes a tiny debug HTTP endpoint reporting
// coordinator/worker health, separate from the binary wire-RPC protocol of
// §6. Grounded on the teacher's use of github.com/gorilla/mux for akita
// component debug/introspection routes (monitoring.Monitor.StartServer's
// sibling surface in the sample programs), reused here for Cascade's own
// operational status rather than akita engine introspection.
package httpstatus

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// Status is the JSON body served at /status.
type Status struct {
	LogicalTime   uint64    `json:"logical_time"`
	EnginesBuilt  int       `json:"engines_built"`
	CompileErrors int       `json:"compile_errors"`
	Connections   int       `json:"connections"`
	Uptime        string    `json:"uptime"`
	startedAt     time.Time `json:"-"`
}

// Source reports the current status, typically a closure over a
// runtime.Runtime's Stats plus the rpc listener's live connection count.
type Source func() Status

// Server is a minimal health endpoint: GET /status returns the latest
// Source snapshot as JSON, GET /healthz returns 200 unconditionally once
// the server is reachable.
type Server struct {
	mu     sync.Mutex
	source Source
	router *mux.Router
	srv    *http.Server
}

// New builds a Server; source is called fresh on every /status request.
func New(addr string, source Source) *Server {
	s := &Server{source: source, router: mux.NewRouter()}
	s.router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	s.srv = &http.Server{Addr: addr, Handler: s.router}
	return s
}

// ListenAndServe blocks serving the status endpoint until the server is
// shut down or errors.
func (s *Server) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	src := s.source
	s.mu.Unlock()
	var st Status
	if src != nil {
		st = src()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(st)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
