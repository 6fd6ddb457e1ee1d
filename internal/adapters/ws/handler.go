package ws

import (
	"context"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"

	"gatehouse/internal/adapters/http/middleware"
	"gatehouse/internal/domain"
	"gatehouse/internal/logger"
)

type SessionResolver interface {
	CurrentSession(ctx context.Context, token string) (*domain.Session, error)
}

type Handler struct {
	hub      *Hub
	sessions SessionResolver
	upgrader websocket.Upgrader
	log      logger.Logger
}

func NewHandler(hub *Hub, sessions SessionResolver, allowedOrigins []string, log logger.Logger) *Handler {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			if !slices.Contains(allowedOrigins, origin) {
				log.Warn("ws auth: origin rejected", "origin", origin)
				return false
			}

			return true
		},
	}

	return &Handler{
		hub:      hub,
		sessions: sessions,
		upgrader: upgrader,
		log:      log,
	}
}

func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	token := middleware.AccessToken(r)
	if token == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sess, err := h.sessions.CurrentSession(r.Context(), token)
	if err != nil {
		h.log.Debug("ws auth: session rejected", "error", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("ws auth: upgrade failed", "error", err)
		return
	}

	c := NewClient(h.hub, conn, h.log, sess.ID, sess.UserID)

	select {
	case h.hub.register <- c:
	case <-h.hub.ctx.Done():
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}
