// Package ws pushes session events to the browser tabs of a signed-in user.
package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/google/uuid"

	"gatehouse/internal/domain"
	"gatehouse/internal/logger"
)

type sessionEvent struct {
	sessionID uuid.UUID
	event     *domain.WsServerEvent
}

// Hub owns every connected client. Its maps are only touched by Run.
type Hub struct {
	ctx    context.Context
	cancel context.CancelFunc

	clients  map[*Client]bool
	sessions map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	events     chan *sessionEvent

	connected atomic.Int64

	log logger.Logger
}

func NewHub(parent context.Context, log logger.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)

	return &Hub{
		ctx:    ctx,
		cancel: cancel,

		clients:  make(map[*Client]bool),
		sessions: make(map[uuid.UUID]map[*Client]bool),

		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan *sessionEvent, 100),

		log: log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			h.log.Info("ws: hub shutting down")
			for client := range h.clients {
				close(client.send)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			if h.sessions[client.SessionID] == nil {
				h.sessions[client.SessionID] = make(map[*Client]bool)
			}
			h.sessions[client.SessionID][client] = true
			h.connected.Store(int64(len(h.clients)))
			h.log.Debug("ws: client registered", "session_id", client.SessionID, "user_id", client.UserID, "total_clients", len(h.clients))

		case client := <-h.unregister:
			h.remove(client)

		case ev := <-h.events:
			h.handleEvent(ev)
		}
	}
}

func (h *Hub) Stop() {
	h.cancel()
}

// Connected reports how many clients Run has registered.
func (h *Hub) Connected() int {
	return int(h.connected.Load())
}

// Send queues an event for every client of the session. It gives up when
// the hub is stopped.
func (h *Hub) Send(sessionID uuid.UUID, ev *domain.WsServerEvent) {
	select {
	case h.events <- &sessionEvent{sessionID: sessionID, event: ev}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) remove(client *Client) {
	if !h.clients[client] {
		return
	}

	delete(h.clients, client)
	close(client.send)

	if subs, ok := h.sessions[client.SessionID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.sessions, client.SessionID)
		}
	}

	h.connected.Store(int64(len(h.clients)))
	h.log.Debug("ws: client unregistered", "session_id", client.SessionID, "total_clients", len(h.clients))
}

func (h *Hub) handleEvent(ev *sessionEvent) {
	subs, ok := h.sessions[ev.sessionID]
	if !ok {
		h.log.Debug("ws: session has no clients", "session_id", ev.sessionID)
		return
	}

	message, err := json.Marshal(ev.event)
	if err != nil {
		h.log.Error("ws: failed to marshal server event", "error", err)
		return
	}

	for client := range subs {
		select {
		case client.send <- message:
		default:
			h.log.Warn("ws: client channel full, force unregister", "session_id", client.SessionID)
			h.remove(client)
		}
	}

	// Nothing more will be sent to an ended session. Closing send lets the
	// write pump flush the last message and close the socket.
	if ev.event.Event == domain.WsEventSessionEnded {
		for client := range h.sessions[ev.sessionID] {
			h.remove(client)
		}
	}
}
