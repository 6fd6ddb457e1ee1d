package workers

import (
	"context"
	"fmt"
	"time"

	"gatehouse/internal/domain"
	"gatehouse/internal/logger"
)

type SessionCleanupWorker struct {
	sessions domain.SessionRepository
	log      logger.Logger
	now      func() time.Time
}

func NewSessionCleanupWorker(sessions domain.SessionRepository, log logger.Logger) *SessionCleanupWorker {
	return &SessionCleanupWorker{
		sessions: sessions,
		log:      log,
		now:      time.Now,
	}
}

func (w *SessionCleanupWorker) Name() string {
	return "session_cleanup"
}

func (w *SessionCleanupWorker) Run(ctx context.Context) error {
	n, err := w.sessions.DeleteExpired(ctx, w.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	if n > 0 {
		w.log.Info("expired sessions removed", "count", n)
	}

	return nil
}
