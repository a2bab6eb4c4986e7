package signaling

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/gochat-gateway/internal/apperr"
)

type delivery struct {
	to      string
	event   string
	payload any
}

type recorder struct {
	sent []delivery
}

func (r *recorder) SendTo(connectionID, event string, payload any) {
	r.sent = append(r.sent, delivery{to: connectionID, event: event, payload: payload})
}

func (r *recorder) to(connectionID string) []delivery {
	var out []delivery
	for _, d := range r.sent {
		if d.to == connectionID {
			out = append(out, d)
		}
	}
	return out
}

func (r *recorder) reset() { r.sent = nil }

func newTestCoordinator() (*Coordinator, *recorder) {
	rec := &recorder{}
	return NewCoordinator(NewMemoryStore(), rec, slog.New(slog.DiscardHandler)), rec
}

var (
	memberA = Member{ConnectionID: "conn-a", Identity: "alice"}
	memberB = Member{ConnectionID: "conn-b", Identity: "bob"}
	memberC = Member{ConnectionID: "conn-c", Identity: "carol"}
)

func TestJoin_AnnouncesToOthersAndCountsParticipants(t *testing.T) {
	req := require.New(t)
	c, rec := newTestCoordinator()

	n, err := c.Join(memberA, "r1")
	req.NoError(err)
	req.Equal(1, n)
	req.Empty(rec.sent)

	n, err = c.Join(memberB, "r1")
	req.NoError(err)
	req.Equal(2, n)

	req.Len(rec.sent, 1)
	req.Equal(delivery{
		to:      "conn-a",
		event:   EventUserJoined,
		payload: UserJoined{RoomID: "r1", ConnectionID: "conn-b", Identity: "bob"},
	}, rec.sent[0])
}

func TestJoin_IsIdempotent(t *testing.T) {
	req := require.New(t)
	c, rec := newTestCoordinator()

	_, err := c.Join(memberA, "r1")
	req.NoError(err)
	_, err = c.Join(memberB, "r1")
	req.NoError(err)
	rec.reset()

	n, err := c.Join(memberB, "r1")
	req.NoError(err)
	req.Equal(2, n)
	req.Len(c.Participants("r1"), 2)
	req.Empty(rec.sent, "re-join must not re-announce")
	req.Equal([]string{"r1"}, c.store.RoomsOf("conn-b"))
}

func TestJoin_RequiresRoomID(t *testing.T) {
	c, _ := newTestCoordinator()

	_, err := c.Join(memberA, "")
	require.ErrorIs(t, err, apperr.ErrValidation)
	require.Empty(t, c.Rooms())
}

func TestRelay_UntargetedReachesOthersNeverSender(t *testing.T) {
	req := require.New(t)
	c, rec := newTestCoordinator()
	for _, m := range []Member{memberA, memberB, memberC} {
		_, err := c.Join(m, "r1")
		req.NoError(err)
	}
	rec.reset()

	payload := json.RawMessage(`{"sdp":"v=0"}`)
	req.NoError(c.Relay("conn-a", Offer, SignalRequest{RoomID: "r1", Payload: payload}))

	req.Empty(rec.to("conn-a"))
	for _, id := range []string{"conn-b", "conn-c"} {
		got := rec.to(id)
		req.Len(got, 1)
		req.Equal("offer", got[0].event)
		req.Equal(Signal{RoomID: "r1", Payload: payload, FromConnectionID: "conn-a", FromIdentity: "alice"}, got[0].payload)
	}
}

func TestRelay_TargetedReachesOnlyTarget(t *testing.T) {
	req := require.New(t)
	c, rec := newTestCoordinator()
	for _, m := range []Member{memberA, memberB, memberC} {
		_, err := c.Join(m, "r1")
		req.NoError(err)
	}
	rec.reset()

	req.NoError(c.Relay("conn-a", ICECandidate, SignalRequest{
		RoomID:             "r1",
		Payload:            json.RawMessage(`{"candidate":"x"}`),
		TargetConnectionID: "conn-c",
	}))

	req.Len(rec.sent, 1)
	req.Equal("conn-c", rec.sent[0].to)
	req.Equal("ice-candidate", rec.sent[0].event)
}

func TestRelay_Drops(t *testing.T) {
	c, rec := newTestCoordinator()
	_, err := c.Join(memberA, "r1")
	require.NoError(t, err)
	_, err = c.Join(memberB, "r1")
	require.NoError(t, err)
	_, err = c.Join(memberC, "r2")
	require.NoError(t, err)
	rec.reset()

	tests := map[string]struct {
		from string
		req  SignalRequest
	}{
		"missing room":      {"conn-a", SignalRequest{}},
		"sender not member": {"conn-c", SignalRequest{RoomID: "r1"}},
		"target elsewhere":  {"conn-a", SignalRequest{RoomID: "r1", TargetConnectionID: "conn-c"}},
		"target is self":    {"conn-a", SignalRequest{RoomID: "r1", TargetConnectionID: "conn-a"}},
		"unknown room":      {"conn-a", SignalRequest{RoomID: "nope"}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := c.Relay(tt.from, Answer, tt.req)
			require.ErrorIs(t, err, apperr.ErrValidation)
			require.Empty(t, rec.sent)
		})
	}
}

func TestLeave_LastMemberDeletesRoom(t *testing.T) {
	req := require.New(t)
	c, rec := newTestCoordinator()

	_, err := c.Join(memberA, "r1")
	req.NoError(err)
	_, err = c.Join(memberB, "r1")
	req.NoError(err)
	rec.reset()

	req.NoError(c.Leave("conn-a", "r1"))
	req.Equal([]delivery{{to: "conn-b", event: EventUserLeft, payload: UserLeft{RoomID: "r1", ConnectionID: "conn-a"}}}, rec.sent)
	req.True(exists(c, "r1"))

	rec.reset()
	req.NoError(c.Leave("conn-b", "r1"))
	req.Empty(rec.sent)
	req.False(exists(c, "r1"))
	req.Empty(c.Participants("r1"))
	req.Empty(c.Rooms())
	req.Empty(c.store.RoomsOf("conn-b"))
}

func TestLeave_Failures(t *testing.T) {
	req := require.New(t)
	c, _ := newTestCoordinator()
	_, err := c.Join(memberA, "r1")
	req.NoError(err)

	req.ErrorIs(c.Leave("conn-a", ""), apperr.ErrValidation)
	req.ErrorIs(c.Leave("conn-b", "r1"), apperr.ErrValidation)
	req.ErrorIs(c.Leave("conn-a", "r2"), apperr.ErrValidation)
	req.True(exists(c, "r1"))
}

func TestDisconnect_LeavesEveryRoomOnce(t *testing.T) {
	req := require.New(t)
	c, rec := newTestCoordinator()

	_, err := c.Join(memberA, "r1")
	req.NoError(err)
	_, err = c.Join(memberA, "r2")
	req.NoError(err)
	_, err = c.Join(memberB, "r2")
	req.NoError(err)
	rec.reset()

	left := c.Disconnect("conn-a")
	req.Equal([]string{"r1", "r2"}, left)

	req.False(exists(c, "r1"))
	req.True(exists(c, "r2"))
	req.Equal([]Member{memberB}, c.Participants("r2"))
	req.Equal([]delivery{{to: "conn-b", event: EventUserLeft, payload: UserLeft{RoomID: "r2", ConnectionID: "conn-a"}}}, rec.sent)

	rec.reset()
	req.Empty(c.Disconnect("conn-a"))
	req.Empty(rec.sent)
}

func exists(c *Coordinator, roomID string) bool {
	return len(c.Participants(roomID)) > 0
}

func TestKinds(t *testing.T) {
	require.Equal(t, []Kind{"offer", "answer", "ice-candidate"}, Kinds())
}
