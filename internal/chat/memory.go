package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Tyrowin/gochat-gateway/internal/apperr"
)

// MemoryStore is an in-process Persistence used for local runs and tests. It
// delivers stored messages through the attached Emitter.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]map[string]struct{}
	messages      map[string][]*Message
	emitter       Emitter
	now           func() time.Time
	log           *slog.Logger
}

func NewMemoryStore(log *slog.Logger) *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]map[string]struct{}),
		messages:      make(map[string][]*Message),
		now:           time.Now,
		log:           log,
	}
}

// Attach wires the emitter used for deliveries. The gateway hub is created
// after the store, hence the late binding.
func (s *MemoryStore) Attach(e Emitter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitter = e
}

func (s *MemoryStore) CreateConversation(conversationID string, participants ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.conversations[conversationID]
	if !ok {
		members = make(map[string]struct{})
		s.conversations[conversationID] = members
	}
	for _, p := range participants {
		members[p] = struct{}{}
	}
}

func (s *MemoryStore) RemoveParticipant(conversationID, identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations[conversationID], identity)
}

// Messages returns a copy of the conversation's history, oldest first.
func (s *MemoryStore) Messages(conversationID string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(s.messages[conversationID], func(m *Message, _ int) Message { return *m })
}

func (s *MemoryStore) isParticipant(conversationID, identity string) bool {
	_, ok := s.conversations[conversationID][identity]
	return ok
}

func (s *MemoryStore) Send(ctx context.Context, in SendInput) (Message, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, apperr.Collaborator("Failed to send message", err)
	}
	if in.Content == "" {
		return Message{}, apperr.Validation("content is required")
	}

	s.mu.Lock()
	if !s.isParticipant(in.ConversationID, in.SenderID) {
		s.mu.Unlock()
		return Message{}, apperr.Authorization("Not authorized for this conversation")
	}
	if in.ReceiverID != "" && !s.isParticipant(in.ConversationID, in.ReceiverID) {
		s.mu.Unlock()
		return Message{}, apperr.Validation("receiver is not part of this conversation")
	}
	msg := &Message{
		ID:             uuid.NewString(),
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		ReceiverID:     in.ReceiverID,
		Content:        in.Content,
		CreatedAt:      s.now().UTC(),
	}
	s.messages[in.ConversationID] = append(s.messages[in.ConversationID], msg)
	out := *msg
	emitter := s.emitter
	s.mu.Unlock()

	channels := []string{ConversationChannel(in.ConversationID)}
	if in.ReceiverID != "" {
		channels = append(channels, UserChannel(in.ReceiverID))
	}
	if emitter != nil {
		emitter.Emit(EventNewMessage, out, channels...)
	}
	s.log.Debug("Stored message", "conversation", in.ConversationID, "message", out.ID)
	return out, nil
}

func (s *MemoryStore) EnsureParticipant(ctx context.Context, conversationID, identity string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, apperr.Collaborator("Failed to check participant", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isParticipant(conversationID, identity), nil
}

type readReceipt struct {
	ConversationID string `json:"conversationId"`
	ReaderID       string `json:"readerId"`
	Count          int    `json:"count"`
}

// MarkRead flags every unread message addressed to identity in the
// conversation.
func (s *MemoryStore) MarkRead(ctx context.Context, identity, conversationID string) error {
	if err := ctx.Err(); err != nil {
		return apperr.Collaborator("Failed to mark messages as read", err)
	}

	s.mu.Lock()
	if !s.isParticipant(conversationID, identity) {
		s.mu.Unlock()
		return apperr.Authorization("Not authorized for this conversation")
	}
	count := 0
	for _, m := range s.messages[conversationID] {
		if m.ReceiverID == identity && !m.Read {
			m.Read = true
			count++
		}
	}
	emitter := s.emitter
	s.mu.Unlock()

	if count > 0 && emitter != nil {
		emitter.Emit(EventMessagesRead, readReceipt{
			ConversationID: conversationID,
			ReaderID:       identity,
			Count:          count,
		}, ConversationChannel(conversationID))
	}
	return nil
}

type typingNotice struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
}

func (s *MemoryStore) EmitTyping(ctx context.Context, conversationID, from, to string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	allowed := s.isParticipant(conversationID, from)
	emitter := s.emitter
	s.mu.RUnlock()

	if !allowed {
		return apperr.Authorization("Not authorized for this conversation")
	}
	if emitter != nil {
		emitter.Emit(EventUserTyping, typingNotice{ConversationID: conversationID, UserID: from}, UserChannel(to))
	}
	return nil
}

// MemoryNotifications is an in-process NotificationRegistry that can push
// notifications to any identity it knows a connection for.
type MemoryNotifications struct {
	mu         sync.RWMutex
	byIdentity map[string]map[string]struct{}
	emitter    Emitter
}

func NewMemoryNotifications() *MemoryNotifications {
	return &MemoryNotifications{byIdentity: make(map[string]map[string]struct{})}
}

func (n *MemoryNotifications) Attach(e Emitter) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emitter = e
}

func (n *MemoryNotifications) Register(identity, connectionID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	conns, ok := n.byIdentity[identity]
	if !ok {
		conns = make(map[string]struct{})
		n.byIdentity[identity] = conns
	}
	conns[connectionID] = struct{}{}
}

func (n *MemoryNotifications) Unregister(identity, connectionID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	conns, ok := n.byIdentity[identity]
	if !ok {
		return
	}
	delete(conns, connectionID)
	if len(conns) == 0 {
		delete(n.byIdentity, identity)
	}
}

func (n *MemoryNotifications) Reachable(identity string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.byIdentity[identity]) > 0
}

// Push sends payload to identity's private channel. It reports false when the
// identity has no registered connection.
func (n *MemoryNotifications) Push(identity string, payload any) bool {
	n.mu.RLock()
	reachable := len(n.byIdentity[identity]) > 0
	emitter := n.emitter
	n.mu.RUnlock()

	if !reachable || emitter == nil {
		return false
	}
	emitter.Emit(EventNotification, payload, UserChannel(identity))
	return true
}
