package sessions

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// JanitorConfig contains janitor configuration.
type JanitorConfig struct {
	Interval time.Duration
}

// DefaultJanitorConfig returns default janitor configuration.
func DefaultJanitorConfig() JanitorConfig {
	return JanitorConfig{
		Interval: time.Minute,
	}
}

// Janitor periodically removes expired session records. Expiry checks on
// the read path already keep stale sessions from resolving; the janitor
// only stops dead rows from piling up in the table.
type Janitor struct {
	config JanitorConfig
	repo   Repository

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewJanitor creates a new session janitor.
func NewJanitor(config JanitorConfig, repo Repository) *Janitor {
	return &Janitor{
		config: config,
		repo:   repo,
		stopCh: make(chan struct{}),
	}
}

// Start launches the janitor goroutine.
func (j *Janitor) Start(ctx context.Context) {
	slog.Info("starting session janitor", "interval", j.config.Interval)

	j.wg.Add(1)
	go j.run(ctx)
}

// Stop gracefully stops the janitor.
func (j *Janitor) Stop() {
	close(j.stopCh)
	j.wg.Wait()
	slog.Info("session janitor stopped")
}

func (j *Janitor) run(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-j.stopCh:
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	now := time.Now()

	removed, err := j.repo.DeleteExpiredSessions(ctx, now)
	if err != nil {
		slog.Error("failed to sweep expired sessions", "error", err)
		return
	}

	if removed > 0 {
		recordSessionsSwept(removed)
		slog.Debug("swept expired sessions", "removed", removed)
	}

	active, err := j.repo.CountActiveSessions(ctx, now)
	if err != nil {
		slog.Error("failed to count active sessions", "error", err)
		return
	}
	recordActiveSessions(active)
}
