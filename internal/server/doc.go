// Package server implements the realtime gateway: the authenticated WebSocket
// endpoint, the hub that owns every connection's state, and the event handlers
// for chat relaying and call-setup signaling.
//
// The implementation is organized into specialized files for configuration,
// hub management, clients, event dispatch, routing, and HTTP handlers.
package server
