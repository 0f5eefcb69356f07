package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Nishanthpaka11/TinyLink/internal/app/repository"
)

// ClickJanitor periodically fails pending click events whose JetStream
// message never came back through the consumer.
type ClickJanitor struct {
	logger   *zap.Logger
	repo     repository.ClickEventRepository
	ttl      time.Duration
	interval time.Duration
	stopChan chan struct{}
}

// NewClickJanitor creates a janitor that fails pending events older
// than ttl.
func NewClickJanitor(logger *zap.Logger, repo repository.ClickEventRepository, ttl time.Duration) *ClickJanitor {
	return &ClickJanitor{
		logger:   logger,
		repo:     repo,
		ttl:      ttl,
		interval: 30 * time.Second,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic sweep.
func (j *ClickJanitor) Start() {
	go j.run()
}

// Stop halts the sweep loop.
func (j *ClickJanitor) Stop() {
	close(j.stopChan)
}

func (j *ClickJanitor) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep()
		case <-j.stopChan:
			j.logger.Info("click janitor stopped")
			return
		}
	}
}

func (j *ClickJanitor) sweep() {
	ctx := context.Background()
	expiredBefore := time.Now().Add(-j.ttl)

	affected, err := j.repo.FailExpiredPending(ctx, expiredBefore)
	if err != nil {
		j.logger.Error("failed to sweep pending click events", zap.Error(err))
		return
	}

	if affected > 0 {
		j.logger.Info("failed stale pending click events",
			zap.Int64("count", affected),
			zap.Time("expired_before", expiredBefore),
		)
	}
}
