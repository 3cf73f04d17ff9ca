package scheduler

import "errors"

var (
	// ErrCoordinatorNotRunning is returned when submitting a job to a stopped coordinator
	ErrCoordinatorNotRunning = errors.New("sync coordinator is not running")

	// ErrJobQueueFull is returned when the job queue is full
	ErrJobQueueFull = errors.New("sync job queue is full")

	// ErrInvalidConfig is returned when coordinator configuration is invalid
	ErrInvalidConfig = errors.New("invalid sync coordinator configuration")

	// ErrInvalidJobKind is returned for unknown job kinds
	ErrInvalidJobKind = errors.New("invalid sync job kind")

	// ErrInvalidTimeRange is returned for invalid pull windows
	ErrInvalidTimeRange = errors.New("invalid sync time range")

	// ErrSyncTimeout is returned when a job exceeds its timeout
	ErrSyncTimeout = errors.New("sync job timed out")
)
