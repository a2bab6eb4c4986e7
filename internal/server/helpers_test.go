package server

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/gochat-gateway/internal/chat"
)

type testFrame struct {
	Event string          `json:"event"`
	AckID string          `json:"ackId"`
	Data  json.RawMessage `json:"data"`
}

type testAck struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	Data         json.RawMessage `json:"data"`
	Participants int             `json:"participants"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newTestHub builds a hub that is driven by the test goroutine instead of Run.
func newTestHub(t *testing.T, opts HubOptions) *Hub {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	if opts.CollaboratorTimeout == 0 {
		opts.CollaboratorTimeout = 2 * time.Second
	}
	h := NewHub(opts)
	t.Cleanup(h.cancel)
	return h
}

func connect(h *Hub, identity string) *Client {
	c := NewClient(nil, h, identity, "test", Config{})
	h.handleRegister(c)
	return c
}

func newFrame(t *testing.T, event, ackID string, data any) Frame {
	t.Helper()
	f := Frame{Event: event, AckID: ackID}
	if data != nil {
		raw, err := json.Marshal(data)
		require.NoError(t, err)
		f.Data = raw
	}
	return f
}

// runNextTask executes the next completion a collaborator call posted back.
func runNextTask(t *testing.T, h *Hub) {
	t.Helper()
	select {
	case task := <-h.tasks:
		task()
	case <-time.After(3 * time.Second):
		t.Fatal("no task was posted to the hub")
	}
}

func drain(t *testing.T, c *Client) []testFrame {
	t.Helper()
	var out []testFrame
	for {
		select {
		case raw, ok := <-c.send:
			if !ok {
				return out
			}
			var f testFrame
			require.NoError(t, json.Unmarshal(raw, &f))
			out = append(out, f)
		default:
			return out
		}
	}
}

func onlyAck(t *testing.T, c *Client, ackID string) testAck {
	t.Helper()
	frames := drain(t, c)
	require.Len(t, frames, 1, "expected exactly one frame")
	require.Equal(t, EventAck, frames[0].Event)
	require.Equal(t, ackID, frames[0].AckID)

	var ack testAck
	require.NoError(t, json.Unmarshal(frames[0].Data, &ack))
	return ack
}

func subscriptions(h *Hub, c *Client) []string {
	var out []string
	for ch := range h.subs[c.id] {
		out = append(out, ch)
	}
	return out
}

func conversationRequest(id string) ConversationRequest {
	return ConversationRequest{ConversationID: id}
}

var _ chat.Emitter = (*Hub)(nil)
