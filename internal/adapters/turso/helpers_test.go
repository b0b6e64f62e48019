package turso_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/abtest/internal/adapters/turso"
	"github.com/emiliopalmerini/abtest/internal/domain"
	"github.com/emiliopalmerini/abtest/internal/migrate"
)

func testDB(t *testing.T) *turso.DB {
	t.Helper()

	ctx := context.Background()
	db, err := turso.Open(ctx, turso.Options{Path: filepath.Join(t.TempDir(), "abtest.db")})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := migrate.RunAll(ctx, db.DB); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedExperiment(t *testing.T, repo *turso.ExperimentRepository, name string) *domain.Experiment {
	t.Helper()

	exp := &domain.Experiment{
		ID:             uuid.NewString(),
		Name:           name,
		TreatmentLabel: domain.DefaultTreatmentLabel,
		ControlLabel:   domain.DefaultControlLabel,
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
	if err := repo.Create(context.Background(), exp); err != nil {
		t.Fatalf("failed to seed experiment: %v", err)
	}
	return exp
}

func records(tConv, tTotal, cConv, cTotal int) []domain.TrialRecord {
	out := make([]domain.TrialRecord, 0, tTotal+cTotal)
	for i := 0; i < tTotal; i++ {
		out = append(out, domain.TrialRecord{Assignment: domain.Treatment, Converted: i < tConv, TotalAds: i % 50})
	}
	for i := 0; i < cTotal; i++ {
		out = append(out, domain.TrialRecord{Assignment: domain.Control, Converted: i < cConv, TotalAds: i % 50})
	}
	return out
}
