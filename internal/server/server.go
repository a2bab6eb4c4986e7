// Package server ties the hub, the token verifier and the HTTP upgrader
// together into the gateway's Server.
package server

import (
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/Tyrowin/gochat-gateway/internal/auth"
)

// Server owns the HTTP-facing half of the gateway.
type Server struct {
	cfg      Config
	hub      *Hub
	verifier auth.Verifier
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewServer(cfg Config, hub *Hub, verifier auth.Verifier, log *slog.Logger) *Server {
	cfg.Sanitize()
	origins := newOriginPolicy(cfg.Origins(), log)
	return &Server{
		cfg:      cfg,
		hub:      hub,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.checkOrigin,
		},
		log: log,
	}
}

func (s *Server) Hub() *Hub {
	return s.hub
}
