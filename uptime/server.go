package uptime

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"doghouse/database"
)

// Server is the incidental status page: a JSON health endpoint and a small
// HTML page, guarded by an IP allow-list
type Server struct {
	httpServer *http.Server
	db         *database.DB
	allowedIPs map[string]bool
	started    time.Time
}

// StatusResponse is the GET /status payload
type StatusResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	DBLatencyMs   float64 `json:"db_latency_ms"`
}

// NewServer builds the status server. An empty allow-list permits everyone.
func NewServer(addr string, db *database.DB, allowedIPs []string) *Server {
	s := &Server{
		db:         db,
		allowedIPs: make(map[string]bool, len(allowedIPs)),
		started:    time.Now(),
	}
	for _, ip := range allowedIPs {
		s.allowedIPs[ip] = true
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.allowListMiddleware)
	r.Get("/status", s.handleStatus)
	r.Get("/", s.handleIndex)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start runs the listener in the background
func (s *Server) Start() {
	go func() {
		log.WithField("addr", s.httpServer.Addr).Info("Status page listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Status page server error")
		}
	}()
}

// Shutdown stops the listener gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// allowListMiddleware rejects callers not on the allow-list. The first hop
// of X-Forwarded-For wins when present, otherwise RemoteAddr.
func (s *Server) allowListMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.allowedIPs) > 0 && !s.allowedIPs[clientIP(r)] {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	}

	if s.db != nil {
		latency, err := s.db.PingLatency(r.Context())
		if err != nil {
			resp.Status = "degraded"
		} else {
			resp.DBLatencyMs = float64(latency.Microseconds()) / 1000
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.WithError(err).Warn("Failed to encode status response")
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(s.started).Round(time.Second)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>doghouse status</title></head>
<body>
<h1>doghouse</h1>
<p>up for %s</p>
<p><a href="/status">status JSON</a></p>
</body>
</html>`, uptime)
}
