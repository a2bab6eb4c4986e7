// Package server routes inbound client events to the authorization gate, the
// chat relays and the signaling coordinator.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/Tyrowin/gochat-gateway/internal/apperr"
	"github.com/Tyrowin/gochat-gateway/internal/chat"
	"github.com/Tyrowin/gochat-gateway/internal/signaling"
)

func (h *Hub) eventHandlers() map[string]eventHandler {
	handlers := map[string]eventHandler{
		EventSendMessage:      h.handleSendMessage,
		EventJoinConversation: h.handleJoinConversation,
		EventTypingIndicator:  h.handleTyping,
		EventMarkAsRead:       h.handleMarkAsRead,
		EventJoinRoom:         h.handleJoinRoom,
		EventLeaveRoom:        h.handleLeaveRoom,
	}
	for _, kind := range signaling.Kinds() {
		handlers[string(kind)] = h.signalHandler(kind)
	}
	return handlers
}

// dispatch runs one inbound frame on the hub goroutine. A panicking handler
// costs the caller a failed acknowledgment, never the connection.
func (h *Hub) dispatch(c *Client, f Frame) {
	if c == nil || !h.live(c) {
		return
	}
	ack := &Ack{id: f.AckID, client: c, hub: h}

	defer func() {
		if r := recover(); r != nil {
			h.log.Error("Recovered from panic in event handler", "event", f.Event, "conn", c.id, "panic", r)
			ack.Resolve(fail(apperr.Wrap(apperr.ErrInternal, "handler panic", fmt.Errorf("%v", r))))
		}
	}()

	handler, ok := h.handlers[f.Event]
	if !ok {
		h.log.Debug("Unknown event", "event", f.Event, "conn", c.id)
		ack.Resolve(fail(apperr.Validation("unknown event: " + f.Event)))
		return
	}
	handler(c, f.Data, ack)
}

// decode unmarshals and validates an event payload.
func (h *Hub) decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperr.Wrap(apperr.ErrValidation, "malformed payload", err)
	}
	if err := h.validate.Struct(v); err != nil {
		return apperr.Wrap(apperr.ErrValidation, validationMessage(err), err)
	}
	return nil
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid payload"
	}
	fe := fieldErrs[0]
	if fe.Tag() == "required" {
		return fe.Field() + " is required"
	}
	return fe.Field() + " is invalid"
}

// collaboratorError keeps classified errors as they are and marks everything
// else as a collaborator failure.
func collaboratorError(err error, message string) error {
	for _, kind := range []error{apperr.ErrAuthorization, apperr.ErrValidation, apperr.ErrCollaborator} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return apperr.Collaborator(message, err)
}

// callCollaborator runs fn on its own goroutine under the collaborator
// timeout and hands the result to done on the hub goroutine. A call that
// outlives the timeout resolves as a failure even if fn ignores its context.
func callCollaborator[T any](h *Hub, fn func(ctx context.Context) (T, error), done func(T, error)) {
	type result struct {
		value T
		err   error
	}

	h.calls.Add(1)
	go func() {
		defer h.calls.Done()

		ctx, cancel := context.WithTimeout(h.ctx, h.callTimeout)
		defer cancel()

		results := make(chan result, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					results <- result{err: apperr.Wrap(apperr.ErrInternal, "collaborator panic", fmt.Errorf("%v", r))}
				}
			}()
			v, err := fn(ctx)
			results <- result{value: v, err: err}
		}()

		var res result
		select {
		case res = <-results:
		case <-ctx.Done():
			res.err = apperr.Collaborator("Request timed out", ctx.Err())
		}
		h.post(func() { done(res.value, res.err) })
	}()
}

func (h *Hub) handleSendMessage(c *Client, data json.RawMessage, ack *Ack) {
	var req SendMessageRequest
	if err := h.decode(data, &req); err != nil {
		ack.Resolve(fail(err))
		return
	}

	in := chat.SendInput{
		SenderID:       c.identity,
		ReceiverID:     req.ReceiverID,
		ConversationID: req.ConversationID,
		Content:        req.Content,
	}
	callCollaborator(h, func(ctx context.Context) (chat.Message, error) {
		return h.chat.Send(ctx, in)
	}, func(msg chat.Message, err error) {
		if err != nil {
			h.log.Warn("Failed to send message", "conn", c.id, "conversation", in.ConversationID, "err", err)
			ack.Resolve(fail(collaboratorError(err, "Failed to send message")))
			return
		}
		ack.Resolve(Response{Success: true, Data: msg})
	})
}

// handleJoinConversation asks the persistence side on every call; membership
// can be revoked at any time, so the answer is never cached.
func (h *Hub) handleJoinConversation(c *Client, data json.RawMessage, ack *Ack) {
	var req ConversationRequest
	if err := h.decode(data, &req); err != nil {
		ack.Resolve(fail(err))
		return
	}

	identity := c.identity
	callCollaborator(h, func(ctx context.Context) (bool, error) {
		return h.chat.EnsureParticipant(ctx, req.ConversationID, identity)
	}, func(allowed bool, err error) {
		if err != nil {
			h.log.Warn("Participant check failed", "conn", c.id, "conversation", req.ConversationID, "err", err)
			ack.Resolve(fail(collaboratorError(err, "Failed to join conversation")))
			return
		}
		if !allowed {
			ack.Resolve(fail(apperr.Authorization(msgNotAuthorized)))
			return
		}
		if !h.live(c) {
			return
		}
		h.subscribe(c, chat.ConversationChannel(req.ConversationID))
		ack.Resolve(ok())
	})
}

// handleTyping is best effort: bad payloads and collaborator errors are
// dropped without telling the sender.
func (h *Hub) handleTyping(c *Client, data json.RawMessage, _ *Ack) {
	var req TypingRequest
	if err := h.decode(data, &req); err != nil {
		h.log.Debug("Dropping typing indicator", "conn", c.id, "err", err)
		return
	}

	from := c.identity
	callCollaborator(h, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.chat.EmitTyping(ctx, req.ConversationID, from, req.ReceiverID)
	}, func(_ struct{}, err error) {
		if err != nil {
			h.log.Debug("Typing indicator not delivered", "conn", c.id, "err", err)
		}
	})
}

func (h *Hub) handleMarkAsRead(c *Client, data json.RawMessage, ack *Ack) {
	var req ConversationRequest
	if err := h.decode(data, &req); err != nil {
		ack.Resolve(fail(err))
		return
	}

	identity := c.identity
	callCollaborator(h, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.chat.MarkRead(ctx, identity, req.ConversationID)
	}, func(_ struct{}, err error) {
		if err != nil {
			h.log.Warn("Failed to mark messages as read", "conn", c.id, "conversation", req.ConversationID, "err", err)
			ack.Resolve(fail(collaboratorError(err, "Failed to mark messages as read")))
			return
		}
		ack.Resolve(ok())
	})
}

func (h *Hub) handleJoinRoom(c *Client, data json.RawMessage, ack *Ack) {
	var req RoomRequest
	if err := h.decode(data, &req); err != nil {
		ack.Resolve(fail(err))
		return
	}

	n, err := h.rooms.Join(signaling.Member{ConnectionID: c.id, Identity: c.identity}, req.RoomID)
	if err != nil {
		ack.Resolve(fail(err))
		return
	}
	ack.Resolve(Response{Success: true, Participants: lo.ToPtr(n)})
}

func (h *Hub) handleLeaveRoom(c *Client, data json.RawMessage, ack *Ack) {
	var req RoomRequest
	if err := h.decode(data, &req); err != nil {
		ack.Resolve(fail(err))
		return
	}
	if err := h.rooms.Leave(c.id, req.RoomID); err != nil {
		ack.Resolve(fail(err))
		return
	}
	ack.Resolve(ok())
}

// signalHandler relays offer/answer/ice-candidate frames. Nothing is ever
// acknowledged; malformed frames are dropped.
func (h *Hub) signalHandler(kind signaling.Kind) eventHandler {
	return func(c *Client, data json.RawMessage, _ *Ack) {
		var req signaling.SignalRequest
		if len(data) == 0 {
			return
		}
		if err := json.Unmarshal(data, &req); err != nil {
			h.log.Debug("Dropping malformed signal", "event", kind, "conn", c.id, "err", err)
			return
		}
		if err := h.rooms.Relay(c.id, kind, req); err != nil {
			h.log.Debug("Signal not relayed", "event", kind, "conn", c.id, "room", req.RoomID, "err", err)
		}
	}
}
