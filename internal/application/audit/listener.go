// Package audit records auth events in the log and, when configured, in a
// capped redis stream.
package audit

import (
	"context"
	"time"

	"gatehouse/internal/domain"
	"gatehouse/internal/event"
	"gatehouse/internal/logger"
)

const (
	Stream       = "auth:audit"
	StreamMaxLen = 10000
)

type Appender interface {
	Append(ctx context.Context, stream string, payload any, maxLen int64) (string, error)
}

type Record struct {
	Event     string    `json:"event"`
	UserID    int64     `json:"user_id"`
	SessionID string    `json:"session_id"`
	Provider  string    `json:"provider,omitempty"`
	At        time.Time `json:"at"`
}

type Listener struct {
	stream Appender
	log    logger.Logger
	now    func() time.Time
}

// NewListener accepts a nil stream; events are then only logged.
func NewListener(stream Appender, log logger.Logger) *Listener {
	return &Listener{stream: stream, log: log, now: time.Now}
}

func (l *Listener) Register(bus *event.Bus) {
	for _, name := range []string{domain.EventSignedUp, domain.EventSignedIn, domain.EventSignedOut} {
		bus.Subscribe(name, l.handler(name))
	}
}

func (l *Listener) handler(name string) event.Handler {
	return func(ctx context.Context, ev any) {
		evt, ok := ev.(domain.AuthEvent)
		if !ok {
			return
		}

		l.log.Info("audit: "+name,
			"event", name,
			"user_id", evt.UserID,
			"session_id", evt.SessionID.String(),
			"provider", evt.Provider,
		)

		if l.stream == nil {
			return
		}

		rec := Record{
			Event:     name,
			UserID:    evt.UserID,
			SessionID: evt.SessionID.String(),
			Provider:  evt.Provider,
			At:        l.now().UTC(),
		}
		if _, err := l.stream.Append(context.WithoutCancel(ctx), Stream, rec, StreamMaxLen); err != nil {
			l.log.Warn("audit: append failed", "event", name, "error", err)
		}
	}
}
