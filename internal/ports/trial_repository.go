package ports

import (
	"context"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

// ArmCounts are the raw per-arm tallies of an experiment.
type ArmCounts struct {
	TreatmentConversions int64
	TreatmentTotal       int64
	ControlConversions   int64
	ControlTotal         int64
}

type TrialRepository interface {
	// InsertBatch stores records atomically and returns how many were written.
	InsertBatch(ctx context.Context, experimentID string, records []domain.TrialRecord) (int64, error)
	// Counts aggregates conversions per arm without loading the records.
	Counts(ctx context.Context, experimentID string) (ArmCounts, error)
	Records(ctx context.Context, experimentID string) ([]domain.TrialRecord, error)
	Count(ctx context.Context, experimentID string) (int64, error)
}
