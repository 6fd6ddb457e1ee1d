package ws

import (
	"context"

	"gatehouse/internal/domain"
	"gatehouse/internal/event"
)

func RegisterSubscribers(bus *event.Bus, hub *Hub) {
	bus.Subscribe(domain.EventSignedOut, func(_ context.Context, ev any) {
		evt, ok := ev.(domain.AuthEvent)
		if !ok {
			return
		}

		hub.Send(evt.SessionID, &domain.WsServerEvent{
			Event: domain.WsEventSessionEnded,
		})
	})
}
