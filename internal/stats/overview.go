package stats

import (
	"github.com/emiliopalmerini/abtest/internal/domain"
)

// Overview describes the dataset: group sizes, allocation and data quality.
// DuplicateRows counts records identical to an earlier one in every field;
// DuplicateUsers counts repeated non-empty user ids regardless of the rest.
func Overview(records []domain.TrialRecord) (domain.Overview, error) {
	t, c, err := Tally(records)
	if err != nil {
		return domain.Overview{}, err
	}

	ov := domain.Overview{
		TotalRecords:   int64(len(records)),
		TreatmentCount: t.Total,
		ControlCount:   c.Total,
		TotalConverted: t.Conversions + c.Conversions,
	}
	if ov.TotalRecords > 0 {
		n := float64(ov.TotalRecords)
		ov.TreatmentShare = float64(t.Total) / n
		ov.ControlShare = float64(c.Total) / n
		ov.OverallRate = float64(ov.TotalConverted) / n
	}

	rows := make(map[domain.TrialRecord]struct{}, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, ok := rows[r]; ok {
			ov.DuplicateRows++
		} else {
			rows[r] = struct{}{}
		}
		if r.UserID == "" {
			ov.MissingUserIDs++
			continue
		}
		if _, ok := seen[r.UserID]; ok {
			ov.DuplicateUsers++
			continue
		}
		seen[r.UserID] = struct{}{}
	}
	return ov, nil
}
