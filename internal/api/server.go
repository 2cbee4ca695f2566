// Package api provides the HTTP API for observing a running session.
// All endpoints are GET and read-only; handlers only touch the session
// through its snapshot accessors, so they never block the sim loop for
// longer than a state copy.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/seafall/tradewind/internal/sim"
)

// Server serves session state over HTTP.
type Server struct {
	Session *sim.Session
	Port    int
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// Generous per-IP limit; market boards are the heaviest payload.
	limiter := NewRateLimiter(600, time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/cities", s.handleCities)
	mux.HandleFunc("/api/v1/city/", RateLimitMiddleware(limiter, s.handleCityMarket))
	mux.HandleFunc("/api/v1/shipments", s.handleShipments)
	mux.HandleFunc("/api/v1/player", s.handlePlayer)
	mux.HandleFunc("/api/v1/events", s.handleEvents)

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins. Set
// CORS_ORIGINS to a comma-separated list; localhost dev servers are always
// allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !getOnly(w, r) {
		return
	}
	writeJSON(w, s.Session.Status())
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	if !getOnly(w, r) {
		return
	}
	writeJSON(w, map[string]any{"cities": s.Session.Cities()})
}

// handleCityMarket serves GET /api/v1/city/:id, the full quote board.
func (s *Server) handleCityMarket(w http.ResponseWriter, r *http.Request) {
	if !getOnly(w, r) {
		return
	}
	cityID := strings.TrimPrefix(r.URL.Path, "/api/v1/city/")
	cityID = strings.TrimSuffix(cityID, "/")
	if cityID == "" {
		http.Error(w, "missing city id", http.StatusBadRequest)
		return
	}

	snap := s.Session.Market(cityID)
	if snap == nil {
		http.Error(w, "unknown city", http.StatusNotFound)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleShipments(w http.ResponseWriter, r *http.Request) {
	if !getOnly(w, r) {
		return
	}
	writeJSON(w, map[string]any{"shipments": s.Session.ShipmentList()})
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	if !getOnly(w, r) {
		return
	}
	writeJSON(w, s.Session.PlayerState())
}

// handleEvents serves the tail of the session log, newest last.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if !getOnly(w, r) {
		return
	}
	n := 50
	if q := r.URL.Query().Get("n"); q != "" {
		if parsed, err := strconv.Atoi(q); err == nil && parsed > 0 {
			n = parsed
		}
	}
	writeJSON(w, map[string]any{"events": s.Session.RecentEvents(n)})
}

func getOnly(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}
