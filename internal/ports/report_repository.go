package ports

import (
	"context"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

type ReportRepository interface {
	Save(ctx context.Context, run *domain.ReportRun) error
	ListByExperiment(ctx context.Context, experimentID string, limit int) ([]*domain.ReportRun, error)
	Latest(ctx context.Context, experimentID string) (*domain.ReportRun, error)
}
