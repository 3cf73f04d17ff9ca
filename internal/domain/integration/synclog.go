package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Sync log types
// ---------------------------------------------------------------------------

// Operation names the kind of sync attempt a log entry records.
type Operation string

const (
	OperationImportOrder   Operation = "import_order"
	OperationImportProduct Operation = "import_product"
	OperationUpdatePrice   Operation = "update_price"
	OperationUpdateStock   Operation = "update_stock"
	OperationWebhook       Operation = "webhook"
	OperationHealthCheck   Operation = "health_check"
)

// IsValid returns true if the operation is valid
func (o Operation) IsValid() bool {
	switch o {
	case OperationImportOrder, OperationImportProduct, OperationUpdatePrice,
		OperationUpdateStock, OperationWebhook, OperationHealthCheck:
		return true
	default:
		return false
	}
}

// String returns the string representation of Operation
func (o Operation) String() string {
	return string(o)
}

// LogStatus is the outcome recorded on a sync log entry.
type LogStatus string

const (
	LogStatusSuccess LogStatus = "success"
	LogStatusWarning LogStatus = "warning"
	LogStatusError   LogStatus = "error"
)

// IsValid returns true if the status is valid
func (s LogStatus) IsValid() bool {
	switch s {
	case LogStatusSuccess, LogStatusWarning, LogStatusError:
		return true
	default:
		return false
	}
}

// LogEntry is one record of a sync attempt. Entries are immutable once
// written and are purged only by a retention job outside this engine.
type LogEntry struct {
	ID          uuid.UUID
	Marketplace Marketplace
	Operation   Operation
	// TargetID identifies the affected entity (remote order id, local
	// product id); empty for run-level entries
	TargetID string
	// DedupKey identifies a webhook delivery for replay detection; empty
	// for batch entries
	DedupKey string
	Status   LogStatus
	Message  string
	// ResponseSnapshot is the opaque remote response kept for diagnosis
	ResponseSnapshot string
	Duration         time.Duration
	CreatedAt        time.Time
}

// NewLogEntry builds an entry stamped now.
func NewLogEntry(marketplace Marketplace, op Operation, status LogStatus, message string) *LogEntry {
	return &LogEntry{
		ID:          uuid.New(),
		Marketplace: marketplace,
		Operation:   op,
		Status:      status,
		Message:     message,
		CreatedAt:   time.Now(),
	}
}

// ---------------------------------------------------------------------------
// Repository
// ---------------------------------------------------------------------------

// LogFilter selects sync log entries for listing.
type LogFilter struct {
	Marketplace *Marketplace
	Operation   *Operation
	Status      *LogStatus
	Since       *time.Time
	Until       *time.Time
	Page        int
	PageSize    int
}

// LogStats is the dashboard-facing aggregate over the sync log.
type LogStats struct {
	SuccessCount int64
	WarningCount int64
	ErrorCount   int64
	LastError    string
	LastEntryAt  *time.Time
}

// SyncLogRepository persists the append-only sync log.
type SyncLogRepository interface {
	// Append writes one immutable entry
	Append(ctx context.Context, entry *LogEntry) error

	// FindRecentSuccess returns the most recent success entry with the
	// given dedup key written at or after since, or ErrLogEntryNotFound
	FindRecentSuccess(ctx context.Context, dedupKey string, since time.Time) (*LogEntry, error)

	// List returns entries matching the filter, newest first, with the
	// total count for pagination
	List(ctx context.Context, filter LogFilter) ([]LogEntry, int64, error)

	// StatsSince aggregates outcome counts for entries written at or
	// after since, scoped to one marketplace when given
	StatsSince(ctx context.Context, marketplace *Marketplace, since time.Time) (*LogStats, error)
}
