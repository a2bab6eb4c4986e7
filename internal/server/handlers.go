// Package server exposes HTTP handlers, including the authenticated WebSocket
// upgrade, health checks and the state snapshot.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Tyrowin/gochat-gateway/internal/auth"
)

// WebSocketHandler authenticates the handshake, upgrades the connection and
// hands the bound client to the hub. A request without a valid bearer token
// is refused with 401 before any event handler exists for it.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	claims, err := s.verifier.Verify(r.Context(), auth.TokenFromRequest(r))
	if err != nil {
		s.log.Warn("Rejected WebSocket handshake", "addr", r.RemoteAddr, "err", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", "addr", r.RemoteAddr, "err", err)
		return
	}

	client := NewClient(conn, s.hub, claims.Identity, r.RemoteAddr, s.cfg)
	if err := s.hub.Register(client); err != nil {
		s.log.Warn("Hub not accepting connections", "err", err)
		client.closeConnection()
	}
}

// HealthHandler provides a simple health check endpoint that returns server status.
func (s *Server) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "GoChat gateway is running!")
}

// Stats is the public summary served on /stats.
type Stats struct {
	Connections      int `json:"connections"`
	OnlineIdentities int `json:"onlineIdentities"`
	Rooms            int `json:"rooms"`
}

// StatsHandler reports connection, presence and room counts.
func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	snap, err := s.hub.Snapshot(ctx)
	if err != nil {
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(Stats{
		Connections:      snap.Connections,
		OnlineIdentities: len(snap.Identities),
		Rooms:            len(snap.Rooms),
	}); err != nil {
		s.log.Warn("Error writing stats response", "err", err)
	}
}
