package chat

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/gochat-gateway/internal/apperr"
)

type emitted struct {
	event    string
	payload  any
	channels []string
}

type fakeEmitter struct {
	mu  sync.Mutex
	out []emitted
}

func (f *fakeEmitter) Emit(event string, payload any, channels ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out = append(f.out, emitted{event: event, payload: payload, channels: channels})
}

func newStore(t *testing.T) (*MemoryStore, *fakeEmitter) {
	t.Helper()
	s := NewMemoryStore(slog.New(slog.DiscardHandler))
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	e := &fakeEmitter{}
	s.Attach(e)
	s.CreateConversation("c1", "alice", "bob")
	return s, e
}

func TestMemoryStore_SendStoresAndDelivers(t *testing.T) {
	req := require.New(t)
	s, e := newStore(t)

	msg, err := s.Send(context.Background(), SendInput{
		SenderID: "alice", ReceiverID: "bob", ConversationID: "c1", Content: "hi",
	})
	req.NoError(err)
	req.NotEmpty(msg.ID)
	req.Equal("hi", msg.Content)
	req.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), msg.CreatedAt)

	req.Equal([]Message{msg}, s.Messages("c1"))
	req.Len(e.out, 1)
	req.Equal(EventNewMessage, e.out[0].event)
	req.Equal([]string{"conversation:c1", "user:bob"}, e.out[0].channels)
}

func TestMemoryStore_SendRejects(t *testing.T) {
	s, e := newStore(t)
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		in   SendInput
		kind error
	}{
		{"outsider", context.Background(), SendInput{SenderID: "mallory", ConversationID: "c1", Content: "x"}, apperr.ErrAuthorization},
		{"unknown receiver", context.Background(), SendInput{SenderID: "alice", ReceiverID: "mallory", ConversationID: "c1", Content: "x"}, apperr.ErrValidation},
		{"empty content", context.Background(), SendInput{SenderID: "alice", ConversationID: "c1"}, apperr.ErrValidation},
		{"cancelled", cancelled, SendInput{SenderID: "alice", ConversationID: "c1", Content: "x"}, apperr.ErrCollaborator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Send(tt.ctx, tt.in)
			require.ErrorIs(t, err, tt.kind)
		})
	}
	require.Empty(t, s.Messages("c1"))
	require.Empty(t, e.out)
}

func TestMemoryStore_EnsureParticipantIsLive(t *testing.T) {
	req := require.New(t)
	s, _ := newStore(t)
	ctx := context.Background()

	ok, err := s.EnsureParticipant(ctx, "c1", "bob")
	req.NoError(err)
	req.True(ok)

	s.RemoveParticipant("c1", "bob")
	ok, err = s.EnsureParticipant(ctx, "c1", "bob")
	req.NoError(err)
	req.False(ok)
}

func TestMemoryStore_MarkRead(t *testing.T) {
	req := require.New(t)
	s, e := newStore(t)
	ctx := context.Background()

	for _, content := range []string{"one", "two"} {
		_, err := s.Send(ctx, SendInput{SenderID: "alice", ReceiverID: "bob", ConversationID: "c1", Content: content})
		req.NoError(err)
	}
	_, err := s.Send(ctx, SendInput{SenderID: "bob", ReceiverID: "alice", ConversationID: "c1", Content: "three"})
	req.NoError(err)
	e.out = nil

	req.NoError(s.MarkRead(ctx, "bob", "c1"))
	for _, m := range s.Messages("c1") {
		req.Equal(m.ReceiverID == "bob", m.Read, m.Content)
	}
	req.Len(e.out, 1)
	req.Equal(EventMessagesRead, e.out[0].event)
	req.Equal(readReceipt{ConversationID: "c1", ReaderID: "bob", Count: 2}, e.out[0].payload)

	e.out = nil
	req.NoError(s.MarkRead(ctx, "bob", "c1"))
	req.Empty(e.out, "nothing new to mark")

	req.ErrorIs(s.MarkRead(ctx, "mallory", "c1"), apperr.ErrAuthorization)
}

func TestMemoryStore_EmitTyping(t *testing.T) {
	req := require.New(t)
	s, e := newStore(t)

	req.NoError(s.EmitTyping(context.Background(), "c1", "alice", "bob"))
	req.Equal([]emitted{{
		event:    EventUserTyping,
		payload:  typingNotice{ConversationID: "c1", UserID: "alice"},
		channels: []string{"user:bob"},
	}}, e.out)

	req.ErrorIs(s.EmitTyping(context.Background(), "c1", "mallory", "bob"), apperr.ErrAuthorization)
}

func TestMemoryNotifications(t *testing.T) {
	req := require.New(t)
	n := NewMemoryNotifications()
	e := &fakeEmitter{}
	n.Attach(e)

	req.False(n.Push("u", "hello"))

	n.Register("u", "c1")
	n.Register("u", "c2")
	n.Unregister("u", "c1")
	req.True(n.Reachable("u"))
	req.True(n.Push("u", "hello"))
	req.Equal([]emitted{{event: EventNotification, payload: "hello", channels: []string{"user:u"}}}, e.out)

	n.Unregister("u", "c2")
	n.Unregister("u", "c2")
	req.False(n.Reachable("u"))
}
