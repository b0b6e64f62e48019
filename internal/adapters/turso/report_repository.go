package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

// timeLayout is fixed width so created_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Save(ctx context.Context, run *domain.ReportRun) error {
	payload, err := json.Marshal(run.Report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO report_runs (id, experiment_id, created_at, alpha, recommendation, bundle_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.ExperimentID,
		run.CreatedAt.UTC().Format(timeLayout),
		run.Report.Decision.Alpha,
		string(run.Report.Decision.Recommendation),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save report run: %w", err)
	}
	return nil
}

// ListByExperiment returns the most recent runs first. A non-positive limit
// returns every run.
func (r *ReportRepository) ListByExperiment(ctx context.Context, experimentID string, limit int) ([]*domain.ReportRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, experiment_id, created_at, bundle_json
		FROM report_runs
		WHERE experiment_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, experimentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list report runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.ReportRun
	for rows.Next() {
		run, err := scanReportRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *ReportRepository) Latest(ctx context.Context, experimentID string) (*domain.ReportRun, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, experiment_id, created_at, bundle_json
		FROM report_runs
		WHERE experiment_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, experimentID)
	run, err := scanReportRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return run, err
}

func scanReportRun(s rowScanner) (*domain.ReportRun, error) {
	var (
		run       domain.ReportRun
		createdAt any
		payload   string
	)
	if err := s.Scan(&run.ID, &run.ExperimentID, &createdAt, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan report run: %w", err)
	}
	createdTime, err := parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to read report run %s: %w", run.ID, err)
	}
	run.CreatedAt = createdTime
	if err := json.Unmarshal([]byte(payload), &run.Report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", run.ID, err)
	}
	return &run, nil
}
