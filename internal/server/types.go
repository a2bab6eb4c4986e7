// Package server defines the wire frames, acknowledgment results and request
// payloads exchanged with clients.
package server

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/Tyrowin/gochat-gateway/internal/apperr"
)

// Client -> server event names.
const (
	EventSendMessage      = "send_message"
	EventJoinConversation = "join_conversation"
	EventTypingIndicator  = "typing_indicator"
	EventMarkAsRead       = "mark_as_read"
	EventJoinRoom         = "join-room"
	EventLeaveRoom        = "leave-room"
)

// EventAck is the server -> client event that resolves an acknowledgment.
const EventAck = "ack"

const msgNotAuthorized = "Not authorized for this conversation"

// Frame is the JSON envelope of every inbound WebSocket message. AckID is set
// when the client wants an acknowledgment.
type Frame struct {
	Event string          `json:"event"`
	AckID string          `json:"ackId,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// OutboundFrame is the envelope of every message the server writes.
type OutboundFrame struct {
	Event string `json:"event"`
	AckID string `json:"ackId,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// Response is the body of an acknowledgment. Participants is set on join-room
// acknowledgments only, where it is always present.
type Response struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	Data         any    `json:"data,omitempty"`
	Participants *int   `json:"participants,omitempty"`
}

func ok() Response {
	return Response{Success: true}
}

func fail(err error) Response {
	return Response{Success: false, Message: apperr.Message(err)}
}

// Ack resolves a client's acknowledgment at most once. A nil Ack, or one for a
// frame that carried no ackId, swallows every resolution. Resolve must be
// called from the hub goroutine.
type Ack struct {
	once   sync.Once
	id     string
	client *Client
	hub    *Hub
}

func (a *Ack) Resolve(resp Response) {
	if a == nil || a.id == "" {
		return
	}
	a.once.Do(func() {
		a.hub.push(a.client, OutboundFrame{Event: EventAck, AckID: a.id, Data: resp})
	})
}

type SendMessageRequest struct {
	ReceiverID     string `json:"receiverId"`
	Content        string `json:"content"`
	ConversationID string `json:"conversationId" validate:"required"`
}

type ConversationRequest struct {
	ConversationID string `json:"conversationId" validate:"required"`
}

type TypingRequest struct {
	ConversationID string `json:"conversationId" validate:"required"`
	ReceiverID     string `json:"receiverId" validate:"required"`
}

type RoomRequest struct {
	RoomID string `json:"roomId" validate:"required"`
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, errHubClosed) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
