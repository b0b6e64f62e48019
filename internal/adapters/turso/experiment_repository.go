package turso

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

type ExperimentRepository struct {
	db *sql.DB
}

func NewExperimentRepository(db *sql.DB) *ExperimentRepository {
	return &ExperimentRepository{db: db}
}

const experimentColumns = `id, name, description, hypothesis, treatment_label, control_label, created_at`

func (r *ExperimentRepository) Create(ctx context.Context, experiment *domain.Experiment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO experiments (`+experimentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		experiment.ID,
		experiment.Name,
		nullStringPtr(experiment.Description),
		nullStringPtr(experiment.Hypothesis),
		experiment.TreatmentLabel,
		experiment.ControlLabel,
		experiment.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create experiment: %w", err)
	}
	return nil
}

func (r *ExperimentRepository) GetByName(ctx context.Context, name string) (*domain.Experiment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+experimentColumns+` FROM experiments WHERE name = ?`, name)
	exp, err := scanExperiment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get experiment by name: %w", err)
	}
	return exp, nil
}

func (r *ExperimentRepository) List(ctx context.Context) ([]*domain.Experiment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+experimentColumns+` FROM experiments ORDER BY created_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}
	defer rows.Close()

	var experiments []*domain.Experiment
	for rows.Next() {
		exp, err := scanExperiment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan experiment: %w", err)
		}
		experiments = append(experiments, exp)
	}
	return experiments, rows.Err()
}

// Delete removes the experiment with its records and report history.
func (r *ExperimentRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`DELETE FROM report_runs WHERE experiment_id = ?`,
		`DELETE FROM trial_records WHERE experiment_id = ?`,
		`DELETE FROM experiments WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("failed to delete experiment: %w", err)
		}
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExperiment(s rowScanner) (*domain.Experiment, error) {
	var (
		exp                     domain.Experiment
		description, hypothesis sql.NullString
		createdAt               any
	)
	if err := s.Scan(&exp.ID, &exp.Name, &description, &hypothesis, &exp.TreatmentLabel, &exp.ControlLabel, &createdAt); err != nil {
		return nil, err
	}
	exp.Description = stringPtr(description)
	exp.Hypothesis = stringPtr(hypothesis)
	created, err := parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiment %s: %w", exp.Name, err)
	}
	exp.CreatedAt = created
	return &exp, nil
}
