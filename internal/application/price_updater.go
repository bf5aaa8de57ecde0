package application

import (
	"context"
	"log/slog"
	"time"
)

type SnapshotRefresher interface {
	RefreshSnapshot(ctx context.Context) error
}

// PriceUpdater keeps the market snapshot fresh. It refreshes once on start
// and then every interval until stopped.
type PriceUpdater struct {
	service  SnapshotRefresher
	interval time.Duration
	stopChan chan struct{}
}

func NewPriceUpdater(service SnapshotRefresher, interval time.Duration) *PriceUpdater {
	return &PriceUpdater{
		service:  service,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (u *PriceUpdater) Start(ctx context.Context) {
	slog.Info("Price updater started", "interval", u.interval)
	u.refresh(ctx)

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			u.refresh(ctx)
		case <-u.stopChan:
			slog.Info("Price updater stopped")
			return
		case <-ctx.Done():
			slog.Info("Price updater stopped due to context cancellation")
			return
		}
	}
}

func (u *PriceUpdater) refresh(ctx context.Context) {
	if err := u.service.RefreshSnapshot(ctx); err != nil {
		slog.Error("Error refreshing snapshot", "error", err)
		return
	}
	slog.Debug("Snapshot refreshed successfully")
}

func (u *PriceUpdater) Stop() {
	close(u.stopChan)
}
