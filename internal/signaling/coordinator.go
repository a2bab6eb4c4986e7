// Package signaling coordinates WebRTC call-setup inside ephemeral rooms.
//
// A room exists from the first join until its last member leaves or
// disconnects. The coordinator relays offer, answer and ICE candidate
// payloads between members without looking inside them; media never passes
// through here.
package signaling

import (
	"encoding/json"
	"log/slog"

	"github.com/samber/lo"

	"github.com/Tyrowin/gochat-gateway/internal/apperr"
)

// Server-pushed event names.
const (
	EventUserJoined = "user-joined"
	EventUserLeft   = "user-left"
)

// Kind is a relayable signaling message type. The relayed event keeps the
// same name.
type Kind string

const (
	Offer        Kind = "offer"
	Answer       Kind = "answer"
	ICECandidate Kind = "ice-candidate"
)

// Kinds lists every relayable Kind.
func Kinds() []Kind {
	return []Kind{Offer, Answer, ICECandidate}
}

// Member is one connection inside a room.
type Member struct {
	ConnectionID string `json:"connectionId"`
	Identity     string `json:"identity"`
}

// SignalRequest is the inbound offer/answer/ice-candidate payload.
type SignalRequest struct {
	RoomID             string          `json:"roomId"`
	Payload            json.RawMessage `json:"payload"`
	TargetConnectionID string          `json:"targetConnectionId,omitempty"`
}

// Signal is what the receiving members get.
type Signal struct {
	RoomID           string          `json:"roomId"`
	Payload          json.RawMessage `json:"payload"`
	FromConnectionID string          `json:"fromConnectionId"`
	FromIdentity     string          `json:"fromIdentity"`
}

type UserJoined struct {
	RoomID       string `json:"roomId"`
	ConnectionID string `json:"connectionId"`
	Identity     string `json:"identity"`
}

type UserLeft struct {
	RoomID       string `json:"roomId"`
	ConnectionID string `json:"connectionId"`
}

// Sender pushes an event to a single connection. Delivery is fire-and-forget.
type Sender interface {
	SendTo(connectionID, event string, payload any)
}

// Coordinator owns the room state machine. Like the Store underneath it, it
// is driven from a single goroutine.
type Coordinator struct {
	store  Store
	sender Sender
	log    *slog.Logger
}

func NewCoordinator(store Store, sender Sender, log *slog.Logger) *Coordinator {
	return &Coordinator{store: store, sender: sender, log: log}
}

// Join adds m to roomID and returns the participant count including m.
// Re-joining is a no-op on membership and does not re-announce the member.
func (c *Coordinator) Join(m Member, roomID string) (int, error) {
	if roomID == "" {
		return 0, apperr.Validation("roomId is required")
	}

	if c.store.Add(roomID, m) {
		notice := UserJoined{RoomID: roomID, ConnectionID: m.ConnectionID, Identity: m.Identity}
		for _, other := range c.others(roomID, m.ConnectionID) {
			c.sender.SendTo(other.ConnectionID, EventUserJoined, notice)
		}
		c.log.Debug("Joined signaling room", "room", roomID, "conn", m.ConnectionID, "identity", m.Identity)
	}
	return len(c.store.Members(roomID)), nil
}

// Relay forwards a signaling payload from the connection from. With a target
// it reaches that member only; without one it reaches every other member.
// The returned error only explains why nothing was sent.
func (c *Coordinator) Relay(from string, kind Kind, req SignalRequest) error {
	if req.RoomID == "" {
		return apperr.Validation("roomId is required")
	}
	sender, ok := c.store.Member(req.RoomID, from)
	if !ok {
		return apperr.Validation("not a member of this room")
	}

	signal := Signal{
		RoomID:           req.RoomID,
		Payload:          req.Payload,
		FromConnectionID: sender.ConnectionID,
		FromIdentity:     sender.Identity,
	}

	if req.TargetConnectionID != "" {
		if req.TargetConnectionID == from {
			return apperr.Validation("cannot signal yourself")
		}
		if _, ok := c.store.Member(req.RoomID, req.TargetConnectionID); !ok {
			return apperr.Validation("target is not a member of this room")
		}
		c.sender.SendTo(req.TargetConnectionID, string(kind), signal)
		return nil
	}

	for _, other := range c.others(req.RoomID, from) {
		c.sender.SendTo(other.ConnectionID, string(kind), signal)
	}
	return nil
}

// Leave removes connectionID from roomID, deleting the room when it empties
// and announcing the departure to whoever remains.
func (c *Coordinator) Leave(connectionID, roomID string) error {
	if roomID == "" {
		return apperr.Validation("roomId is required")
	}
	if !c.leave(connectionID, roomID) {
		return apperr.Validation("not a member of this room")
	}
	return nil
}

// Disconnect removes connectionID from every room it belongs to and returns
// those rooms.
func (c *Coordinator) Disconnect(connectionID string) []string {
	rooms := c.store.RoomsOf(connectionID)
	for _, roomID := range rooms {
		c.leave(connectionID, roomID)
	}
	return rooms
}

func (c *Coordinator) leave(connectionID, roomID string) bool {
	remaining, removed := c.store.Remove(roomID, connectionID)
	if !removed {
		return false
	}
	if remaining == 0 {
		c.log.Debug("Signaling room closed", "room", roomID)
		return true
	}

	notice := UserLeft{RoomID: roomID, ConnectionID: connectionID}
	for _, other := range c.store.Members(roomID) {
		c.sender.SendTo(other.ConnectionID, EventUserLeft, notice)
	}
	return true
}

func (c *Coordinator) others(roomID, connectionID string) []Member {
	return lo.Filter(c.store.Members(roomID), func(m Member, _ int) bool {
		return m.ConnectionID != connectionID
	})
}

func (c *Coordinator) Participants(roomID string) []Member {
	return c.store.Members(roomID)
}

func (c *Coordinator) Rooms() []string {
	return c.store.Rooms()
}
