package scheduler

import (
	"time"

	"github.com/google/uuid"

	"github.com/marketsync/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Sync Job Types
// ---------------------------------------------------------------------------

// SyncJobKind names what a sync job does.
type SyncJobKind string

const (
	// SyncJobKindPullOrders imports remote orders for a time window
	SyncJobKindPullOrders SyncJobKind = "pull_orders"
	// SyncJobKindPushProducts exports local products needing sync
	SyncJobKindPushProducts SyncJobKind = "push_products"
)

// IsValid returns true if the job kind is known
func (k SyncJobKind) IsValid() bool {
	return k == SyncJobKindPullOrders || k == SyncJobKindPushProducts
}

// SyncJobStatus represents the status of a sync job
type SyncJobStatus string

const (
	SyncJobStatusPending SyncJobStatus = "PENDING"
	SyncJobStatusRunning SyncJobStatus = "RUNNING"
	SyncJobStatusSuccess SyncJobStatus = "SUCCESS"
	SyncJobStatusPartial SyncJobStatus = "PARTIAL"
	SyncJobStatusFailed  SyncJobStatus = "FAILED"
)

// SyncTrigger records what scheduled a job.
type SyncTrigger string

const (
	SyncTriggerScheduled SyncTrigger = "scheduled"
	SyncTriggerManual    SyncTrigger = "manual"
)

// SyncJob is one unit of coordinator work: a single pipeline run for a
// single marketplace. Jobs for the same marketplace never run
// concurrently; jobs for different marketplaces may.
type SyncJob struct {
	ID          uuid.UUID
	Marketplace integration.Marketplace
	Kind        SyncJobKind
	Trigger     SyncTrigger

	// WindowStart/WindowEnd bound the pull for pull_orders jobs
	WindowStart time.Time
	WindowEnd   time.Time

	Status      SyncJobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time

	// Run results
	Processed int
	Skipped   int
	Failed    int
}

// NewSyncJob creates a pending sync job
func NewSyncJob(marketplace integration.Marketplace, kind SyncJobKind, trigger SyncTrigger, maxRetries int) *SyncJob {
	return &SyncJob{
		ID:          uuid.New(),
		Marketplace: marketplace,
		Kind:        kind,
		Trigger:     trigger,
		Status:      SyncJobStatusPending,
		MaxRetries:  maxRetries,
	}
}

// Start marks the job as running
func (j *SyncJob) Start() {
	now := time.Now()
	j.Status = SyncJobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete records run results and derives the final status
func (j *SyncJob) Complete(processed, skipped, failed int) {
	now := time.Now()
	j.Processed = processed
	j.Skipped = skipped
	j.Failed = failed
	j.CompletedAt = &now

	switch {
	case failed == 0:
		j.Status = SyncJobStatusSuccess
	case processed > 0 || skipped > 0:
		j.Status = SyncJobStatusPartial
	default:
		j.Status = SyncJobStatusFailed
	}
}

// Fail marks the job as failed
func (j *SyncJob) Fail(err string) {
	now := time.Now()
	j.Status = SyncJobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *SyncJob) ShouldRetry() bool {
	return j.Status == SyncJobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry schedules the job for retry with exponential backoff.
// The delay doubles per attempt and is capped at 30 minutes.
func (j *SyncJob) ScheduleRetry(baseDelay time.Duration) {
	j.RetryCount++
	j.Status = SyncJobStatusPending
	delay := baseDelay * time.Duration(1<<(j.RetryCount-1))
	if delay > 30*time.Minute {
		delay = 30 * time.Minute
	}
	nextRetry := time.Now().Add(delay)
	j.NextRetryAt = &nextRetry
	j.Error = ""
}
