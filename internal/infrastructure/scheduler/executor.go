package scheduler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	app "github.com/marketsync/backend/internal/application/integration"
	"github.com/marketsync/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// PipelineExecutor
// ---------------------------------------------------------------------------

// OrderPullPipeline imports remote orders for a time window.
type OrderPullPipeline interface {
	Run(ctx context.Context, marketplace integration.Marketplace, filter integration.OrderListFilter) (*app.ImportSummary, error)
}

// ProductPushPipeline exports local products needing sync.
type ProductPushPipeline interface {
	Run(ctx context.Context, marketplace integration.Marketplace) (*app.ImportSummary, error)
}

// PipelineExecutor runs coordinator jobs through the import and export
// pipelines and appends one summary log entry per completed run.
type PipelineExecutor struct {
	importer OrderPullPipeline
	exporter ProductPushPipeline
	logs     integration.SyncLogRepository
	logger   *zap.Logger
}

// NewPipelineExecutor creates a pipeline-backed job executor
func NewPipelineExecutor(
	importer OrderPullPipeline,
	exporter ProductPushPipeline,
	logs integration.SyncLogRepository,
	logger *zap.Logger,
) *PipelineExecutor {
	return &PipelineExecutor{
		importer: importer,
		exporter: exporter,
		logs:     logs,
		logger:   logger,
	}
}

// Execute runs the pipeline the job names and records its results on the
// job. Item-level failures are already logged by the pipelines; only an
// infrastructure-level failure makes Execute return an error.
func (e *PipelineExecutor) Execute(ctx context.Context, job *SyncJob) error {
	switch job.Kind {
	case SyncJobKindPullOrders:
		filter := integration.OrderListFilter{
			StartTime: job.WindowStart,
			EndTime:   job.WindowEnd,
		}
		summary, err := e.importer.Run(ctx, job.Marketplace, filter)
		if err != nil {
			return err
		}
		job.Complete(summary.Imported, summary.Skipped, summary.ErrorCount())
		e.appendRunSummary(ctx, job, integration.OperationImportOrder, summary)
		return nil

	case SyncJobKindPushProducts:
		summary, err := e.exporter.Run(ctx, job.Marketplace)
		if err != nil {
			return err
		}
		job.Complete(summary.Imported, summary.Skipped, summary.ErrorCount())
		e.appendRunSummary(ctx, job, integration.OperationImportProduct, summary)
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrInvalidJobKind, job.Kind)
	}
}

// appendRunSummary writes one log entry describing the whole run
func (e *PipelineExecutor) appendRunSummary(ctx context.Context, job *SyncJob, op integration.Operation, summary *app.ImportSummary) {
	status := integration.LogStatusSuccess
	if summary.ErrorCount() > 0 {
		status = integration.LogStatusWarning
	}

	message := fmt.Sprintf("run %s: processed=%d skipped=%d errors=%d",
		job.ID, summary.Imported, summary.Skipped, summary.ErrorCount())

	entry := integration.NewLogEntry(job.Marketplace, op, status, message)
	entry.Duration = summary.Duration
	if err := e.logs.Append(ctx, entry); err != nil {
		e.logger.Warn("failed to append run summary log entry",
			zap.String("marketplace", job.Marketplace.String()),
			zap.Error(err),
		)
	}
}

// Ensure PipelineExecutor implements JobExecutor
var _ JobExecutor = (*PipelineExecutor)(nil)
