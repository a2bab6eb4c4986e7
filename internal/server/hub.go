// Package server coordinates client registration, channel fan-out, event
// dispatch and connection cleanup for the gateway via the Hub type.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/Tyrowin/gochat-gateway/internal/chat"
	"github.com/Tyrowin/gochat-gateway/internal/presence"
	"github.com/Tyrowin/gochat-gateway/internal/signaling"
)

var errHubClosed = errors.New("hub closed")

// HubOptions carries the hub's collaborators. Nil stores default to the
// in-memory implementations.
type HubOptions struct {
	Presence            presence.Store
	Rooms               signaling.Store
	Chat                chat.Persistence
	Notifications       chat.NotificationRegistry
	CollaboratorTimeout time.Duration
	Logger              *slog.Logger
}

type inbound struct {
	client *Client
	frame  Frame
}

type eventHandler func(c *Client, data json.RawMessage, ack *Ack)

// Hub is the gateway's scheduler. Every piece of connection state (the client
// table, channel subscriptions, presence and signaling rooms) is touched only
// from the Run goroutine, so none of it is locked. Collaborator calls run on
// their own goroutines and post their completions back to Run.
type Hub struct {
	clients  map[string]*Client
	channels map[string]map[string]*Client
	subs     map[string]map[string]struct{}

	presence      presence.Store
	rooms         *signaling.Coordinator
	chat          chat.Persistence
	notifications chat.NotificationRegistry
	handlers      map[string]eventHandler
	validate      *validator.Validate
	callTimeout   time.Duration
	log           *slog.Logger

	register   chan *Client
	unregister chan *Client
	inbound    chan inbound
	tasks      chan func()

	wg     sync.WaitGroup
	calls  sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHub creates a Hub ready to Run.
func NewHub(opts HubOptions) *Hub {
	if opts.Presence == nil {
		opts.Presence = presence.NewMemory()
	}
	if opts.Rooms == nil {
		opts.Rooms = signaling.NewMemoryStore()
	}
	if opts.CollaboratorTimeout <= 0 {
		opts.CollaboratorTimeout = defaultCollaboratorTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		clients:       make(map[string]*Client),
		channels:      make(map[string]map[string]*Client),
		subs:          make(map[string]map[string]struct{}),
		presence:      opts.Presence,
		chat:          opts.Chat,
		notifications: opts.Notifications,
		validate:      newValidator(),
		callTimeout:   opts.CollaboratorTimeout,
		log:           opts.Logger,
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		inbound:       make(chan inbound, 256),
		tasks:         make(chan func(), 256),
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
	}
	h.rooms = signaling.NewCoordinator(opts.Rooms, h, opts.Logger)
	h.handlers = h.eventHandlers()
	return h
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Register hands an authenticated client to the hub, which starts its pumps.
func (h *Hub) Register(c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-h.ctx.Done():
		return errHubClosed
	}
}

// Unregister asks the hub to run disconnect cleanup for c.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	}
}

func (h *Hub) enqueue(c *Client, f Frame) bool {
	select {
	case h.inbound <- inbound{client: c, frame: f}:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// post schedules task on the hub goroutine. It must not be called from the
// hub goroutine itself.
func (h *Hub) post(task func()) bool {
	if h.ctx.Err() != nil {
		return false
	}
	select {
	case h.tasks <- task:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// Run starts the hub's main event loop. It returns after Shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.disconnect(client)

		case in := <-h.inbound:
			h.dispatch(in.client, in.frame)

		case task := <-h.tasks:
			task()
		}
	}
}

func (h *Hub) handleRegister(c *Client) {
	if c == nil {
		h.log.Warn("Received nil client registration; skipping")
		return
	}

	h.clients[c.id] = c
	h.presence.Register(c.identity, c.id)
	if h.notifications != nil {
		h.notifications.Register(c.identity, c.id)
	}
	h.subscribe(c, chat.UserChannel(c.identity))

	h.log.Info("Client registered",
		"conn", c.id, "identity", c.identity, "addr", c.addr,
		"clients", len(h.clients), "devices", len(h.presence.Connections(c.identity)))

	if c.conn == nil {
		return
	}
	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		c.writePump()
	}()
	go func() {
		defer h.wg.Done()
		c.readPump()
	}()
}

// disconnect is the single cleanup point for a connection. A second call for
// the same client is a no-op.
func (h *Hub) disconnect(c *Client) {
	if c == nil {
		return
	}
	if _, ok := h.clients[c.id]; !ok {
		return
	}

	delete(h.clients, c.id)
	rooms := h.rooms.Disconnect(c.id)
	h.unsubscribeAll(c)
	h.presence.Unregister(c.identity, c.id)
	if h.notifications != nil {
		h.notifications.Unregister(c.identity, c.id)
	}

	c.closed = true
	close(c.send)

	h.log.Info("Client unregistered",
		"conn", c.id, "identity", c.identity, "rooms", len(rooms),
		"online", h.presence.Online(c.identity), "clients", len(h.clients))
}

func (h *Hub) live(c *Client) bool {
	_, ok := h.clients[c.id]
	return ok && !c.closed
}

func (h *Hub) subscribe(c *Client, channel string) {
	members, ok := h.channels[channel]
	if !ok {
		members = make(map[string]*Client)
		h.channels[channel] = members
	}
	members[c.id] = c

	joined, ok := h.subs[c.id]
	if !ok {
		joined = make(map[string]struct{})
		h.subs[c.id] = joined
	}
	joined[channel] = struct{}{}
}

func (h *Hub) unsubscribeAll(c *Client) {
	for channel := range h.subs[c.id] {
		members := h.channels[channel]
		delete(members, c.id)
		if len(members) == 0 {
			delete(h.channels, channel)
		}
	}
	delete(h.subs, c.id)
}

// push serializes one frame for c and queues it without blocking. A client
// whose queue is full is evicted; its read pump then unregisters it.
func (h *Hub) push(c *Client, frame OutboundFrame) {
	if c == nil || c.closed {
		return
	}
	payload, err := json.Marshal(frame)
	if err != nil {
		h.log.Error("Failed to encode frame", "event", frame.Event, "err", err)
		return
	}
	h.deliver(c, payload)
}

func (h *Hub) deliver(c *Client, payload []byte) {
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
		h.evict(c)
	}
}

func (h *Hub) evict(c *Client) {
	if c.evicting {
		return
	}
	c.evicting = true
	h.log.Warn("Evicting client with full send buffer", "conn", c.id, "identity", c.identity)
	c.closeConnection()
}

// SendTo pushes an event to one connection. It runs on the hub goroutine and
// backs the signaling coordinator.
func (h *Hub) SendTo(connectionID, event string, payload any) {
	c, ok := h.clients[connectionID]
	if !ok {
		return
	}
	h.push(c, OutboundFrame{Event: event, Data: payload})
}

// Emit delivers an event to every connection subscribed to any of channels,
// once per connection. It is safe to call from any goroutine except the hub's
// own; collaborators use it to deliver messages.
func (h *Hub) Emit(event string, payload any, channels ...string) {
	h.post(func() {
		h.emit(event, payload, channels...)
	})
}

func (h *Hub) emit(event string, payload any, channels ...string) {
	targets := make(map[string]*Client)
	for _, channel := range lo.Uniq(channels) {
		for id, c := range h.channels[channel] {
			targets[id] = c
		}
	}
	if len(targets) == 0 {
		return
	}

	data, err := json.Marshal(OutboundFrame{Event: event, Data: payload})
	if err != nil {
		h.log.Error("Failed to encode frame", "event", event, "err", err)
		return
	}
	for _, c := range targets {
		h.deliver(c, data)
	}
}

// Snapshot is a point-in-time copy of the hub's state.
type Snapshot struct {
	Connections   int                           `json:"connections"`
	Identities    map[string][]string           `json:"identities"`
	Rooms         map[string][]signaling.Member `json:"rooms"`
	Subscriptions map[string][]string           `json:"subscriptions"`
}

// Snapshot copies the hub's state on the hub goroutine.
func (h *Hub) Snapshot(ctx context.Context) (Snapshot, error) {
	result := make(chan Snapshot, 1)
	if !h.post(func() { result <- h.snapshot() }) {
		return Snapshot{}, errHubClosed
	}
	select {
	case s := <-result:
		return s, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (h *Hub) snapshot() Snapshot {
	s := Snapshot{
		Connections:   len(h.clients),
		Identities:    make(map[string][]string),
		Rooms:         make(map[string][]signaling.Member),
		Subscriptions: make(map[string][]string, len(h.subs)),
	}
	for _, c := range h.clients {
		s.Identities[c.identity] = h.presence.Connections(c.identity)
	}
	for _, roomID := range h.rooms.Rooms() {
		s.Rooms[roomID] = h.rooms.Participants(roomID)
	}
	for id, channels := range h.subs {
		s.Subscriptions[id] = lo.Keys(channels)
	}
	return s
}

// shutdownClients runs disconnect cleanup for every client and closes its
// connection. Closing send lets the write pump emit a close frame and exit.
func (h *Hub) shutdownClients() {
	h.log.Info("Shutting down all client connections...")

	clients := lo.Values(h.clients)
	for _, c := range clients {
		h.disconnect(c)
		c.closeConnection()
	}

	h.log.Info("Closed client connections", "count", len(clients))
}

// Shutdown stops Run and waits for all client pumps and in-flight
// collaborator calls, or until timeout.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info("Initiating hub shutdown...")

	h.cancel()
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		h.calls.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		h.log.Warn("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
