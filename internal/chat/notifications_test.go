package chat_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Tyrowin/gochat-gateway/internal/chat"
	"github.com/Tyrowin/gochat-gateway/internal/mocks"
)

func TestMemoryNotifications_PushReachesRegisteredIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	emitter := mocks.NewMockEmitter(ctrl)
	n := chat.NewMemoryNotifications()
	n.Attach(emitter)

	require.False(t, n.Push("alice", "hello"), "nobody registered yet")

	n.Register("alice", "k1")
	n.Register("alice", "k2")
	emitter.EXPECT().Emit(chat.EventNotification, "hello", chat.UserChannel("alice"))
	require.True(t, n.Push("alice", "hello"))

	n.Unregister("alice", "k1")
	require.True(t, n.Reachable("alice"))
	n.Unregister("alice", "k2")
	require.False(t, n.Reachable("alice"))
	require.False(t, n.Push("alice", "hello"))
}

func TestMemoryStore_TypingGoesToReceiverOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	emitter := mocks.NewMockEmitter(ctrl)
	s := chat.NewMemoryStore(slog.New(slog.DiscardHandler))
	s.Attach(emitter)
	s.CreateConversation("c1", "alice", "bob")

	emitter.EXPECT().Emit(chat.EventUserTyping, gomock.Any(), chat.UserChannel("bob"))
	require.NoError(t, s.EmitTyping(context.Background(), "c1", "alice", "bob"))

	require.Error(t, s.EmitTyping(context.Background(), "c1", "mallory", "bob"))
}
