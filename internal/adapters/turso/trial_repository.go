package turso

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emiliopalmerini/abtest/internal/domain"
	"github.com/emiliopalmerini/abtest/internal/ports"
)

type TrialRepository struct {
	db *sql.DB
}

func NewTrialRepository(db *sql.DB) *TrialRepository {
	return &TrialRepository{db: db}
}

func (r *TrialRepository) InsertBatch(ctx context.Context, experimentID string, records []domain.TrialRecord) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trial_records (experiment_id, user_id, assignment, converted, total_ads, most_ads_day, most_ads_hour)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	var n int64
	for _, rec := range records {
		if !rec.Assignment.Valid() {
			return 0, fmt.Errorf("record %d: %w %q", n, domain.ErrInvalidAssignment, rec.Assignment)
		}
		var hour sql.NullInt64
		if rec.HasHour {
			hour = sql.NullInt64{Int64: int64(rec.MostAdsHour), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			experimentID,
			nullString(rec.UserID),
			string(rec.Assignment),
			boolToInt(rec.Converted),
			rec.TotalAds,
			nullString(rec.MostAdsDay),
			hour,
		); err != nil {
			return 0, fmt.Errorf("failed to insert trial record: %w", err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit trial records: %w", err)
	}
	return n, nil
}

func (r *TrialRepository) Counts(ctx context.Context, experimentID string) (ports.ArmCounts, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT assignment, COALESCE(SUM(converted), 0), COUNT(*)
		FROM trial_records
		WHERE experiment_id = ?
		GROUP BY assignment
	`, experimentID)
	if err != nil {
		return ports.ArmCounts{}, fmt.Errorf("failed to aggregate trial records: %w", err)
	}
	defer rows.Close()

	var c ports.ArmCounts
	for rows.Next() {
		var (
			assignment         string
			conversions, total int64
		)
		if err := rows.Scan(&assignment, &conversions, &total); err != nil {
			return ports.ArmCounts{}, fmt.Errorf("failed to scan arm counts: %w", err)
		}
		switch domain.Assignment(assignment) {
		case domain.Treatment:
			c.TreatmentConversions, c.TreatmentTotal = conversions, total
		case domain.Control:
			c.ControlConversions, c.ControlTotal = conversions, total
		}
	}
	return c, rows.Err()
}

func (r *TrialRepository) Records(ctx context.Context, experimentID string) ([]domain.TrialRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, assignment, converted, total_ads, most_ads_day, most_ads_hour
		FROM trial_records
		WHERE experiment_id = ?
		ORDER BY id
	`, experimentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trial records: %w", err)
	}
	defer rows.Close()

	var records []domain.TrialRecord
	for rows.Next() {
		var (
			rec         domain.TrialRecord
			userID, day sql.NullString
			assignment  string
			converted   int64
			hour        sql.NullInt64
		)
		if err := rows.Scan(&userID, &assignment, &converted, &rec.TotalAds, &day, &hour); err != nil {
			return nil, fmt.Errorf("failed to scan trial record: %w", err)
		}
		rec.UserID = userID.String
		rec.Assignment = domain.Assignment(assignment)
		rec.Converted = converted == 1
		rec.MostAdsDay = day.String
		if hour.Valid {
			rec.MostAdsHour = int(hour.Int64)
			rec.HasHour = true
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *TrialRepository) Count(ctx context.Context, experimentID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trial_records WHERE experiment_id = ?`, experimentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count trial records: %w", err)
	}
	return n, nil
}
