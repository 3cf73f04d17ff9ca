package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/integration"
	"github.com/marketsync/backend/internal/infrastructure/config"
)

// requeueDelay is how long a worker parks a job that cannot run yet
// (marketplace lease held, or retry backoff not elapsed).
const requeueDelay = time.Second

// ---------------------------------------------------------------------------
// CoordinatorConfig
// ---------------------------------------------------------------------------

// CoordinatorConfig holds sync coordinator configuration
type CoordinatorConfig struct {
	Enabled bool
	// Workers is the number of concurrent job workers
	Workers int
	// QueueSize is the job queue capacity
	QueueSize int
	// JobTimeout is the maximum time a job can run
	JobTimeout time.Duration
	// MaxRetries is the number of retry attempts for failed jobs
	MaxRetries int
	// RetryDelay is the base delay between retries (with exponential backoff)
	RetryDelay time.Duration
	// HistoryLimit caps the in-memory run history
	HistoryLimit int
	// PullInterval is how often the periodic trigger schedules pulls
	PullInterval time.Duration
	// PullLookback is the pull window for a marketplace never pulled before
	PullLookback time.Duration
}

// DefaultCoordinatorConfig returns default configuration
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		Enabled:      true,
		Workers:      3,
		QueueSize:    100,
		JobTimeout:   30 * time.Minute,
		MaxRetries:   3,
		RetryDelay:   5 * time.Minute,
		HistoryLimit: 100,
		PullInterval: 15 * time.Minute,
		PullLookback: 24 * time.Hour,
	}
}

// CoordinatorConfigFromApp maps the application sync section onto the
// coordinator configuration.
func CoordinatorConfigFromApp(cfg config.SyncConfig) CoordinatorConfig {
	c := DefaultCoordinatorConfig()
	c.Enabled = cfg.Enabled
	if cfg.Workers > 0 {
		c.Workers = cfg.Workers
	}
	if cfg.JobTimeout > 0 {
		c.JobTimeout = cfg.JobTimeout
	}
	if cfg.MaxRetries > 0 {
		c.MaxRetries = cfg.MaxRetries
	}
	if cfg.RetryDelay > 0 {
		c.RetryDelay = cfg.RetryDelay
	}
	if cfg.HistoryLimit > 0 {
		c.HistoryLimit = cfg.HistoryLimit
	}
	if cfg.PullInterval > 0 {
		c.PullInterval = cfg.PullInterval
	}
	if cfg.PullLookback > 0 {
		c.PullLookback = cfg.PullLookback
	}
	return c
}

// Validate validates the configuration
func (c *CoordinatorConfig) Validate() error {
	if c.Workers <= 0 {
		return ErrInvalidConfig
	}
	if c.QueueSize <= 0 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.MaxRetries < 0 {
		return ErrInvalidConfig
	}
	if c.HistoryLimit <= 0 {
		return ErrInvalidConfig
	}
	if c.PullInterval <= 0 || c.PullLookback <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ---------------------------------------------------------------------------
// JobExecutor Interface
// ---------------------------------------------------------------------------

// JobExecutor executes sync jobs
type JobExecutor interface {
	// Execute runs the pipeline the job names and records its results on
	// the job
	Execute(ctx context.Context, job *SyncJob) error
}

// ---------------------------------------------------------------------------
// SyncCoordinator
// ---------------------------------------------------------------------------

// SyncCoordinator manages sync jobs over a worker pool. A per-marketplace
// lease keeps jobs for the same marketplace mutually exclusive while
// different marketplaces proceed in parallel.
type SyncCoordinator struct {
	config   CoordinatorConfig
	executor JobExecutor
	logger   *zap.Logger

	jobs      chan *SyncJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// leases holds the marketplaces with a job in flight
	leaseMu sync.Mutex
	leases  map[integration.Marketplace]struct{}

	// Job history for the dashboard (in-memory, bounded)
	historyMu sync.RWMutex
	history   []*SyncJob
}

// NewSyncCoordinator creates a new sync coordinator
func NewSyncCoordinator(config CoordinatorConfig, executor JobExecutor, logger *zap.Logger) (*SyncCoordinator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &SyncCoordinator{
		config:   config,
		executor: executor,
		logger:   logger,
		jobs:     make(chan *SyncJob, config.QueueSize),
		leases:   make(map[integration.Marketplace]struct{}),
		history:  make([]*SyncJob, 0, config.HistoryLimit),
	}, nil
}

// Start starts the worker pool
func (c *SyncCoordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	for i := 0; i < c.config.Workers; i++ {
		c.wg.Add(1)
		go c.worker(ctx, i)
	}

	c.logger.Info("sync coordinator started",
		zap.Int("workers", c.config.Workers),
		zap.Duration("job_timeout", c.config.JobTimeout),
	)

	return nil
}

// Stop gracefully stops the coordinator
func (c *SyncCoordinator) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	close(c.jobs)

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("sync coordinator stopped gracefully")
		return nil
	case <-ctx.Done():
		c.logger.Warn("sync coordinator stop timed out")
		return ctx.Err()
	}
}

// Submit submits a job for execution
func (c *SyncCoordinator) Submit(job *SyncJob) error {
	if !job.Kind.IsValid() {
		return ErrInvalidJobKind
	}

	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return ErrCoordinatorNotRunning
	}
	c.mu.Unlock()

	select {
	case c.jobs <- job:
		c.logger.Debug("sync job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("marketplace", job.Marketplace.String()),
			zap.String("kind", string(job.Kind)),
			zap.String("trigger", string(job.Trigger)),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// TriggerPull schedules an order pull for a marketplace over an explicit
// window. Used by the HTTP trigger endpoint.
func (c *SyncCoordinator) TriggerPull(marketplace integration.Marketplace, start, end time.Time) (*SyncJob, error) {
	if start.After(end) {
		return nil, ErrInvalidTimeRange
	}
	if end.Sub(start) > 7*24*time.Hour {
		return nil, ErrInvalidTimeRange
	}

	job := NewSyncJob(marketplace, SyncJobKindPullOrders, SyncTriggerManual, c.config.MaxRetries)
	job.WindowStart = start
	job.WindowEnd = end
	if err := c.Submit(job); err != nil {
		return nil, err
	}
	return job, nil
}

// TriggerPush schedules a product push for a marketplace.
func (c *SyncCoordinator) TriggerPush(marketplace integration.Marketplace) (*SyncJob, error) {
	job := NewSyncJob(marketplace, SyncJobKindPushProducts, SyncTriggerManual, c.config.MaxRetries)
	if err := c.Submit(job); err != nil {
		return nil, err
	}
	return job, nil
}

// worker processes jobs from the queue
func (c *SyncCoordinator) worker(ctx context.Context, workerID int) {
	defer c.wg.Done()

	c.logger.Debug("sync worker started", zap.Int("worker_id", workerID))

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("sync worker stopping", zap.Int("worker_id", workerID))
			return
		case job, ok := <-c.jobs:
			if !ok {
				c.logger.Debug("sync job channel closed", zap.Int("worker_id", workerID))
				return
			}
			c.processJob(ctx, job, workerID)
		}
	}
}

// processJob executes a single job under the marketplace lease
func (c *SyncCoordinator) processJob(ctx context.Context, job *SyncJob, workerID int) {
	// Retry backoff not elapsed yet: park and re-queue
	if job.NextRetryAt != nil && time.Now().Before(*job.NextRetryAt) {
		c.requeue(ctx, job)
		return
	}

	// Another job for this marketplace is in flight: park and re-queue
	if !c.acquireLease(job.Marketplace) {
		c.requeue(ctx, job)
		return
	}
	defer c.releaseLease(job.Marketplace)

	job.Start()
	c.logger.Info("processing sync job",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("marketplace", job.Marketplace.String()),
		zap.String("kind", string(job.Kind)),
	)

	jobCtx, cancel := context.WithTimeout(ctx, c.config.JobTimeout)
	defer cancel()

	err := c.executor.Execute(jobCtx, job)
	if err != nil {
		job.Fail(err.Error())
		c.logger.Error("sync job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("marketplace", job.Marketplace.String()),
			zap.String("kind", string(job.Kind)),
			zap.Error(err),
		)

		if job.ShouldRetry() {
			job.ScheduleRetry(c.config.RetryDelay)
			c.logger.Info("sync job scheduled for retry",
				zap.String("job_id", job.ID.String()),
				zap.Int("retry_count", job.RetryCount),
				zap.Int("max_retries", job.MaxRetries),
				zap.Time("next_retry_at", *job.NextRetryAt),
			)
			select {
			case c.jobs <- job:
			default:
				c.logger.Warn("failed to re-queue sync job for retry",
					zap.String("job_id", job.ID.String()),
				)
			}
			return
		}

		c.addToHistory(job)
		return
	}

	c.logger.Info("sync job completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("marketplace", job.Marketplace.String()),
		zap.String("kind", string(job.Kind)),
		zap.String("status", string(job.Status)),
		zap.Int("processed", job.Processed),
		zap.Int("skipped", job.Skipped),
		zap.Int("failed", job.Failed),
	)

	c.addToHistory(job)
}

// requeue puts a not-yet-runnable job back on the queue after a short
// pause so workers stay available for runnable jobs.
func (c *SyncCoordinator) requeue(ctx context.Context, job *SyncJob) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(requeueDelay):
	}

	select {
	case c.jobs <- job:
	default:
		c.logger.Warn("failed to re-queue sync job",
			zap.String("job_id", job.ID.String()),
			zap.String("marketplace", job.Marketplace.String()),
		)
	}
}

func (c *SyncCoordinator) acquireLease(marketplace integration.Marketplace) bool {
	c.leaseMu.Lock()
	defer c.leaseMu.Unlock()
	if _, held := c.leases[marketplace]; held {
		return false
	}
	c.leases[marketplace] = struct{}{}
	return true
}

func (c *SyncCoordinator) releaseLease(marketplace integration.Marketplace) {
	c.leaseMu.Lock()
	defer c.leaseMu.Unlock()
	delete(c.leases, marketplace)
}

// addToHistory records a terminal job for the dashboard
func (c *SyncCoordinator) addToHistory(job *SyncJob) {
	c.historyMu.Lock()
	defer c.historyMu.Unlock()

	c.history = append([]*SyncJob{job}, c.history...)
	if len(c.history) > c.config.HistoryLimit {
		c.history = c.history[:c.config.HistoryLimit]
	}
}

// History returns recent terminal jobs, newest first
func (c *SyncCoordinator) History(limit int) []*SyncJob {
	c.historyMu.RLock()
	defer c.historyMu.RUnlock()

	if limit <= 0 || limit > len(c.history) {
		limit = len(c.history)
	}

	result := make([]*SyncJob, limit)
	copy(result, c.history[:limit])
	return result
}

// HistoryByMarketplace returns recent terminal jobs for one marketplace
func (c *SyncCoordinator) HistoryByMarketplace(marketplace integration.Marketplace, limit int) []*SyncJob {
	c.historyMu.RLock()
	defer c.historyMu.RUnlock()

	result := make([]*SyncJob, 0, limit)
	for _, job := range c.history {
		if job.Marketplace == marketplace {
			result = append(result, job)
			if limit > 0 && len(result) >= limit {
				break
			}
		}
	}
	return result
}
