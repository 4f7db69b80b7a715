package refresh

import (
	"context"
	"log/slog"
	"time"
)

// Reloader re-reads persisted state and reports whether it changed
type Reloader interface {
	Reload(ctx context.Context) (bool, error)
}

// Refresher periodically reloads the completion map so that writes made
// through a shared store by other processes become visible.
type Refresher struct {
	target   Reloader
	interval time.Duration
}

// NewRefresher creates a new refresh worker
func NewRefresher(target Reloader, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = time.Minute
	}

	return &Refresher{
		target:   target,
		interval: interval,
	}
}

// Start begins the refresh worker in a goroutine
func (r *Refresher) Start(ctx context.Context) {
	go r.run(ctx)
}

// run is the main loop for the refresh worker
func (r *Refresher) run(ctx context.Context) {
	slog.Info("refresh worker started", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("refresh worker stopped")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// refresh performs a single reload cycle
func (r *Refresher) refresh(ctx context.Context) {
	changed, err := r.target.Reload(ctx)
	if err != nil {
		slog.Error("failed to reload completion map", "error", err)
		return
	}
	if changed {
		slog.Info("completion map changed in store")
	}
}
