package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatehouse/internal/adapters/http/middleware"
	"gatehouse/internal/config"
	"gatehouse/internal/domain"
	"gatehouse/internal/event"
	"gatehouse/internal/logger"
)

type fakeResolver struct {
	sessions map[string]*domain.Session
}

func (f *fakeResolver) CurrentSession(_ context.Context, token string) (*domain.Session, error) {
	if s, ok := f.sessions[token]; ok {
		return s, nil
	}
	return nil, domain.ErrUnauthorized
}

type fixture struct {
	hub     *Hub
	bus     *event.Bus
	server  *httptest.Server
	session *domain.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithOrigins(t, []string{"http://localhost:3000"})
}

func newFixtureWithOrigins(t *testing.T, origins []string) *fixture {
	t.Helper()

	sess := &domain.Session{ID: uuid.New(), UserID: 7}
	resolver := &fakeResolver{sessions: map[string]*domain.Session{"good-token": sess}}

	hub := NewHub(context.Background(), logger.Nop())
	go hub.Run()
	t.Cleanup(hub.Stop)

	bus := event.New()
	RegisterSubscribers(bus, hub)

	h := NewHandler(hub, resolver, origins, logger.Nop())
	srv := httptest.NewServer(http.HandlerFunc(h.Serve))
	t.Cleanup(srv.Close)

	return &fixture{hub: hub, bus: bus, server: srv, session: sess}
}

func (f *fixture) dial(token, origin string) (*websocket.Conn, *http.Response, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Cookie", middleware.AccessTokenCookie+"="+token)
	}
	if origin != "" {
		header.Set("Origin", origin)
	}
	url := "ws" + strings.TrimPrefix(f.server.URL, "http")
	return websocket.DefaultDialer.Dial(url, header)
}

func TestSignOutEndsSessionChannel(t *testing.T) {
	f := newFixture(t)

	conn, _, err := f.dial("good-token", "http://localhost:3000")
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.hub.Connected() == 1 }, time.Second, 10*time.Millisecond)

	f.bus.Publish(context.Background(), domain.EventSignedOut, domain.AuthEvent{
		UserID:    f.session.UserID,
		SessionID: f.session.ID,
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev domain.WsServerEvent
	require.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, domain.WsEventSessionEnded, ev.Event)

	require.Eventually(t, func() bool { return f.hub.Connected() == 0 }, time.Second, 10*time.Millisecond)
}

func TestOtherSessionsAreNotNotified(t *testing.T) {
	f := newFixture(t)

	conn, _, err := f.dial("good-token", "")
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.hub.Connected() == 1 }, time.Second, 10*time.Millisecond)

	f.bus.Publish(context.Background(), domain.EventSignedOut, domain.AuthEvent{SessionID: uuid.New()})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 1, f.hub.Connected())
}

func TestRejectsUnauthenticated(t *testing.T) {
	f := newFixture(t)

	for _, token := range []string{"", "bad-token"} {
		_, resp, err := f.dial(token, "")
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestRejectsForeignOrigin(t *testing.T) {
	f := newFixture(t)

	_, resp, err := f.dial("good-token", "http://evil.example")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDefaultConfigAcceptsOwnPages(t *testing.T) {
	for _, key := range []string{"PUBLIC_URL", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}
	cfg := config.Load()

	f := newFixtureWithOrigins(t, cfg.AllowedOrigins)

	conn, _, err := f.dial("good-token", cfg.PublicURL)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.hub.Connected() == 1 }, time.Second, 10*time.Millisecond)
}
