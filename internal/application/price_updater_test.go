package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type mockSnapshotRefresher struct {
	mu          sync.Mutex
	refreshFunc func(ctx context.Context) error
	callCount   int
}

func (m *mockSnapshotRefresher) RefreshSnapshot(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	if m.refreshFunc != nil {
		return m.refreshFunc(ctx)
	}
	return nil
}

func (m *mockSnapshotRefresher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

func TestPriceUpdater_Start(t *testing.T) {
	t.Run("Refreshes immediately and on interval", func(t *testing.T) {
		mockRefresher := &mockSnapshotRefresher{}
		updater := NewPriceUpdater(mockRefresher, 10*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go updater.Start(ctx)

		time.Sleep(50 * time.Millisecond)

		updater.Stop()

		assert.GreaterOrEqual(t, mockRefresher.CallCount(), 3)
	})

	t.Run("Refreshes once before the first tick", func(t *testing.T) {
		mockRefresher := &mockSnapshotRefresher{}
		updater := NewPriceUpdater(mockRefresher, time.Hour)

		go updater.Start(context.Background())
		assert.Eventually(t, func() bool { return mockRefresher.CallCount() == 1 }, time.Second, 5*time.Millisecond)

		updater.Stop()
	})

	t.Run("Handles refresh error gracefully", func(t *testing.T) {
		mockRefresher := &mockSnapshotRefresher{
			refreshFunc: func(ctx context.Context) error {
				return errors.New("refresh failed")
			},
		}
		updater := NewPriceUpdater(mockRefresher, 10*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go updater.Start(ctx)
		time.Sleep(30 * time.Millisecond)
		updater.Stop()

		assert.GreaterOrEqual(t, mockRefresher.CallCount(), 2)
	})

	t.Run("Stops on context cancellation", func(t *testing.T) {
		mockRefresher := &mockSnapshotRefresher{}
		updater := NewPriceUpdater(mockRefresher, 100*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})

		go func() {
			updater.Start(ctx)
			close(done)
		}()
		time.Sleep(20 * time.Millisecond)

		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("updater did not stop after context cancellation")
		}
	})
}
