package dto

import (
	"time"

	"github.com/marketsync/backend/internal/domain/integration"
	"github.com/marketsync/backend/internal/infrastructure/scheduler"
)

// ---------------------------------------------------------------------------
// Sync trigger
// ---------------------------------------------------------------------------

// TriggerSyncRequest asks the coordinator for a manual run.
type TriggerSyncRequest struct {
	Marketplace string `json:"marketplace" binding:"required"`
	// Kind selects the pipeline; defaults to pull_orders
	Kind string `json:"kind" binding:"omitempty,oneof=pull_orders push_products"`
	// StartTime/EndTime bound the pull window; both optional
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

// SyncJobResponse is the API shape of a coordinator job.
type SyncJobResponse struct {
	ID          string     `json:"id"`
	Marketplace string     `json:"marketplace"`
	Kind        string     `json:"kind"`
	Trigger     string     `json:"trigger"`
	Status      string     `json:"status"`
	WindowStart *time.Time `json:"window_start,omitempty"`
	WindowEnd   *time.Time `json:"window_end,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	RetryCount  int        `json:"retry_count"`
	Processed   int        `json:"processed"`
	Skipped     int        `json:"skipped"`
	Failed      int        `json:"failed"`
	Error       string     `json:"error,omitempty"`
}

// SyncJobResponseFromJob converts a coordinator job
func SyncJobResponseFromJob(job *scheduler.SyncJob) SyncJobResponse {
	resp := SyncJobResponse{
		ID:          job.ID.String(),
		Marketplace: job.Marketplace.String(),
		Kind:        string(job.Kind),
		Trigger:     string(job.Trigger),
		Status:      string(job.Status),
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
		RetryCount:  job.RetryCount,
		Processed:   job.Processed,
		Skipped:     job.Skipped,
		Failed:      job.Failed,
		Error:       job.Error,
	}
	if !job.WindowStart.IsZero() {
		start := job.WindowStart
		resp.WindowStart = &start
	}
	if !job.WindowEnd.IsZero() {
		end := job.WindowEnd
		resp.WindowEnd = &end
	}
	return resp
}

// SyncJobResponsesFromJobs converts a job slice
func SyncJobResponsesFromJobs(jobs []*scheduler.SyncJob) []SyncJobResponse {
	out := make([]SyncJobResponse, len(jobs))
	for i, job := range jobs {
		out[i] = SyncJobResponseFromJob(job)
	}
	return out
}

// ---------------------------------------------------------------------------
// Sync log listing
// ---------------------------------------------------------------------------

// ListLogsRequest selects sync log entries.
type ListLogsRequest struct {
	Marketplace string `form:"marketplace"`
	Operation   string `form:"operation"`
	Status      string `form:"status" binding:"omitempty,oneof=success warning error"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// ToFilter converts the request into a domain log filter
func (r *ListLogsRequest) ToFilter() integration.LogFilter {
	filter := integration.LogFilter{
		Page:     r.Page,
		PageSize: r.PageSize,
	}
	if r.Marketplace != "" {
		m := integration.Marketplace(r.Marketplace)
		filter.Marketplace = &m
	}
	if r.Operation != "" {
		op := integration.Operation(r.Operation)
		filter.Operation = &op
	}
	if r.Status != "" {
		st := integration.LogStatus(r.Status)
		filter.Status = &st
	}
	return filter
}

// LogEntryResponse is the API shape of one sync log entry.
type LogEntryResponse struct {
	ID          string    `json:"id"`
	Marketplace string    `json:"marketplace"`
	Operation   string    `json:"operation"`
	TargetID    string    `json:"target_id,omitempty"`
	Status      string    `json:"status"`
	Message     string    `json:"message,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// LogEntryResponseFromDomain converts a domain log entry
func LogEntryResponseFromDomain(entry *integration.LogEntry) LogEntryResponse {
	return LogEntryResponse{
		ID:          entry.ID.String(),
		Marketplace: entry.Marketplace.String(),
		Operation:   entry.Operation.String(),
		TargetID:    entry.TargetID,
		Status:      string(entry.Status),
		Message:     entry.Message,
		DurationMs:  entry.Duration.Milliseconds(),
		CreatedAt:   entry.CreatedAt,
	}
}
