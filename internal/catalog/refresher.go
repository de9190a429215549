package catalog

import (
	"context"
	"log/slog"
	"time"
)

// Reloader is a Source that can re-read its backing data.
// FileSystemSource implements it.
type Reloader interface {
	Reload() error
}

// Refresher periodically reloads the catalog source, if it supports it,
// and purges the resolver cache so renamed or recategorized products are
// picked up without a restart.
type Refresher struct {
	interval time.Duration
	source   Source
	resolver *Resolver
}

// NewRefresher creates a refresher ticking every interval.
func NewRefresher(interval time.Duration, source Source, resolver *Resolver) *Refresher {
	return &Refresher{interval: interval, source: source, resolver: resolver}
}

// Start refreshes on every tick until ctx is cancelled.
func (r *Refresher) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("[Catalog] Starting catalog refresher", "interval", r.interval)

	for {
		select {
		case <-ticker.C:
			r.Refresh()
		case <-ctx.Done():
			slog.Info("[Catalog] Stopping catalog refresher (context cancelled)")
			return nil
		}
	}
}

// Refresh runs one reload. A failed reload keeps the previous catalog and
// the cache.
func (r *Refresher) Refresh() {
	if reloader, ok := r.source.(Reloader); ok {
		if err := reloader.Reload(); err != nil {
			slog.Error("[Catalog] Reload failed, keeping previous catalog", "error", err)
			return
		}
	}
	r.resolver.Purge()
	slog.Debug("[Catalog] Product cache purged")
}
