package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/integration"
)

// pullOverlap is subtracted from each scheduled window start so orders
// updated around the previous window boundary are never missed. The
// mapping store makes the resulting re-imports no-ops.
const pullOverlap = 5 * time.Minute

// ---------------------------------------------------------------------------
// PullTrigger
// ---------------------------------------------------------------------------

// PullTrigger schedules periodic pull and push jobs for every registered
// marketplace.
type PullTrigger struct {
	config      CoordinatorConfig
	coordinator *SyncCoordinator
	registry    integration.ClientRegistry
	logger      *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// lastPulled tracks each marketplace's previous window end
	lastPulledMu sync.Mutex
	lastPulled   map[integration.Marketplace]time.Time
}

// NewPullTrigger creates a periodic sync trigger
func NewPullTrigger(
	config CoordinatorConfig,
	coordinator *SyncCoordinator,
	registry integration.ClientRegistry,
	logger *zap.Logger,
) *PullTrigger {
	return &PullTrigger{
		config:      config,
		coordinator: coordinator,
		registry:    registry,
		logger:      logger,
		lastPulled:  make(map[integration.Marketplace]time.Time),
	}
}

// Start starts the trigger loop
func (t *PullTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("sync pull trigger started",
		zap.Duration("pull_interval", t.config.PullInterval),
		zap.Duration("pull_lookback", t.config.PullLookback),
	)

	return nil
}

// Stop stops the trigger loop
func (t *PullTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("sync pull trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop schedules sync jobs every pull interval
func (t *PullTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.PullInterval)
	defer ticker.Stop()

	// Run immediately on start
	t.scheduleAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.scheduleAll(ctx)
		}
	}
}

// scheduleAll submits one pull job and one push job per registered
// marketplace
func (t *PullTrigger) scheduleAll(_ context.Context) {
	marketplaces := t.registry.Marketplaces()
	if len(marketplaces) == 0 {
		t.logger.Debug("no marketplaces registered, nothing to schedule")
		return
	}

	now := time.Now()

	for _, marketplace := range marketplaces {
		start := t.windowStart(marketplace, now)

		pull := NewSyncJob(marketplace, SyncJobKindPullOrders, SyncTriggerScheduled, t.config.MaxRetries)
		pull.WindowStart = start
		pull.WindowEnd = now

		if err := t.coordinator.Submit(pull); err != nil {
			// A full queue means the previous cycle is still draining; the
			// next tick covers this window via lastPulled.
			t.logger.Warn("failed to schedule pull job",
				zap.String("marketplace", marketplace.String()),
				zap.Error(err),
			)
			continue
		}

		t.setLastPulled(marketplace, now)

		push := NewSyncJob(marketplace, SyncJobKindPushProducts, SyncTriggerScheduled, t.config.MaxRetries)
		if err := t.coordinator.Submit(push); err != nil && !errors.Is(err, ErrJobQueueFull) {
			t.logger.Warn("failed to schedule push job",
				zap.String("marketplace", marketplace.String()),
				zap.Error(err),
			)
		}

		t.logger.Debug("sync cycle scheduled",
			zap.String("marketplace", marketplace.String()),
			zap.Time("window_start", start),
			zap.Time("window_end", now),
		)
	}
}

// windowStart derives the pull window start for a marketplace
func (t *PullTrigger) windowStart(marketplace integration.Marketplace, now time.Time) time.Time {
	t.lastPulledMu.Lock()
	last, seen := t.lastPulled[marketplace]
	t.lastPulledMu.Unlock()

	if !seen {
		return now.Add(-t.config.PullLookback)
	}
	return last.Add(-pullOverlap)
}

func (t *PullTrigger) setLastPulled(marketplace integration.Marketplace, end time.Time) {
	t.lastPulledMu.Lock()
	t.lastPulled[marketplace] = end
	t.lastPulledMu.Unlock()
}
