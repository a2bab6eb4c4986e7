//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat.go -package=mocks

// Package chat declares the collaborators the realtime gateway delegates to:
// message persistence, conversation membership, read state and the
// notification registry. The gateway never stores chat data itself.
package chat

import (
	"context"
	"time"
)

// Events pushed to clients by the persistence side.
const (
	EventNewMessage   = "new_message"
	EventUserTyping   = "user_typing"
	EventMessagesRead = "messages_read"
	EventNotification = "notification"
)

// Message is a stored chat message. The gateway passes it through untouched.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	ReceiverID     string    `json:"receiverId"`
	Content        string    `json:"content"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"createdAt"`
}

type SendInput struct {
	SenderID       string
	ReceiverID     string
	ConversationID string
	Content        string
}

// Persistence stores messages and answers membership questions. Send is
// responsible for delivering the stored message to its recipients.
type Persistence interface {
	Send(ctx context.Context, in SendInput) (Message, error)
	EnsureParticipant(ctx context.Context, conversationID, identity string) (bool, error)
	MarkRead(ctx context.Context, identity, conversationID string) error
	EmitTyping(ctx context.Context, conversationID, from, to string) error
}

// NotificationRegistry learns which connections an identity can be reached on
// for out-of-band pushes. Implementations must not block.
type NotificationRegistry interface {
	Register(identity, connectionID string)
	Unregister(identity, connectionID string)
}

// Emitter delivers an event to every connection subscribed to any of the
// given channels, once per connection. Safe for concurrent use.
type Emitter interface {
	Emit(event string, payload any, channels ...string)
}

// UserChannel is the identity-private channel every connection joins on
// handshake.
func UserChannel(identity string) string {
	return "user:" + identity
}

// ConversationChannel is joined only after an authorization check.
func ConversationChannel(conversationID string) string {
	return "conversation:" + conversationID
}
