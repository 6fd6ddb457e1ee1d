// Package workers
package workers

import (
	"context"
	"time"

	"gatehouse/internal/domain"
	"gatehouse/internal/logger"
)

type Worker interface {
	Name() string
	Run(ctx context.Context) error
}

type ManagerOptions struct {
	Sessions        domain.SessionRepository
	CleanupInterval time.Duration
}

type Manager struct {
	log logger.Logger

	scheduler *Scheduler
	opts      *ManagerOptions
}

func NewManager(log logger.Logger, scheduler *Scheduler, opts *ManagerOptions) *Manager {
	return &Manager{
		log: log,

		scheduler: scheduler,
		opts:      opts,
	}
}

func (m *Manager) Start(ctx context.Context) {
	m.log.Info("worker: manager started")

	interval := m.opts.CleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}

	m.scheduler.RunByDuration(ctx, interval, NewSessionCleanupWorker(m.opts.Sessions, m.log))
}
