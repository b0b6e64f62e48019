package ports

import (
	"context"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

// MetricsExporter exports report results to an external observability system.
type MetricsExporter interface {
	// ExportReport records the outcome of one report run for an experiment.
	ExportReport(ctx context.Context, experiment string, report *domain.Report) error
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}
