// Package web serves the token-protected admin HTTP surface over the
// Pool Manager, in the same constant-time-token-check, POST-only shape
// as the teacher's proxy reload HTTP server.
package web

import (
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"

	"github.com/sequring/proxypoolmgr/metrics"
	"github.com/sequring/proxypoolmgr/pool"
)

// AdminServer exposes /admin/refresh, /admin/stats, and /admin/select
// over the configured pool.Manager.
type AdminServer struct {
	manager *pool.Manager
	token   string
	addr    string
}

// NewAdminServer constructs an AdminServer. A blank addr disables the
// endpoint entirely, the same opt-out convention as the metrics exporter.
func NewAdminServer(manager *pool.Manager, addr, token string) *AdminServer {
	return &AdminServer{manager: manager, token: token, addr: addr}
}

// Start launches the admin HTTP server in the background.
func (s *AdminServer) Start() {
	if s.addr == "" {
		log.Println("Admin HTTP endpoint is disabled (no listen address specified).")
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/admin/refresh", s.checkToken(s.handleRefresh))
	mux.HandleFunc("/admin/stats", s.checkToken(s.handleStats))
	mux.HandleFunc("/admin/select", s.checkToken(s.handleSelect))

	log.Printf("Starting admin HTTP server on %s", s.addr)
	go func() {
		if err := http.ListenAndServe(s.addr, mux); err != nil {
			log.Printf("Error starting admin HTTP server: %v", err)
		}
	}()
}

func (s *AdminServer) checkToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Reload-Token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
			log.Printf("Unauthorized admin request to %s from %s", r.URL.Path, r.RemoteAddr)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// handleRefresh triggers an immediate Refresh Loop pass, bypassing the
// normal due-for-refresh gate.
func (s *AdminServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Only POST method is allowed", http.StatusMethodNotAllowed)
		return
	}

	log.Printf("Received authorized request to refresh the proxy pool from %s", r.RemoteAddr)
	s.manager.Refresh(r.Context())

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Proxy pool refresh triggered successfully.\n"))
}

// handleStats reports the current StatsRecord as JSON.
func (s *AdminServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Only GET method is allowed", http.StatusMethodNotAllowed)
		return
	}

	stats := s.manager.Stats()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		log.Printf("Error encoding stats response: %v", err)
		http.Error(w, "Internal error encoding stats", http.StatusInternalServerError)
	}
}

type selectRequest struct {
	Country  string `json:"country,omitempty"`
	MaxRTMs  *int64 `json:"max_rt_ms,omitempty"`
}

type selectResponse struct {
	Found bool            `json:"found"`
	Proxy *pool.Descriptor `json:"proxy,omitempty"`
}

// handleSelect runs the Selector against optional country/max_rt_ms
// filters and reports the chosen descriptor, if any.
func (s *AdminServer) handleSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Only POST method is allowed", http.StatusMethodNotAllowed)
		return
	}

	var req selectRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON body", http.StatusBadRequest)
			return
		}
	}

	d, ok := s.manager.Select(pool.SelectOptions{Country: req.Country, MaxRTMs: req.MaxRTMs})
	metrics.ObserveSelection(ok)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(selectResponse{Found: ok, Proxy: d})
}
