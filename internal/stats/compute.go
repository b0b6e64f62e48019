package stats

import (
	"fmt"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

// Tally partitions records by arm and counts conversions.
func Tally(records []domain.TrialRecord) (t, c domain.GroupSummary, err error) {
	t.Group, c.Group = domain.Treatment, domain.Control
	for i, r := range records {
		var g *domain.GroupSummary
		switch r.Assignment {
		case domain.Treatment:
			g = &t
		case domain.Control:
			g = &c
		default:
			return t, c, &domain.SchemaError{
				Column: "assignment",
				Value:  string(r.Assignment),
				Err:    fmt.Errorf("record %d: %w %q", i, domain.ErrInvalidAssignment, r.Assignment),
			}
		}
		g.Total++
		if r.Converted {
			g.Conversions++
		}
	}
	return t, c, nil
}

// Compute turns raw records into a metrics bundle.
func Compute(records []domain.TrialRecord) (*domain.MetricsBundle, error) {
	t, c, err := Tally(records)
	if err != nil {
		return nil, err
	}
	return FromCounts(t.Conversions, t.Total, c.Conversions, c.Total)
}

// FromCounts computes the bundle from per-arm conversion counts, for callers
// that aggregate elsewhere (e.g. in SQL).
func FromCounts(treatmentConversions, treatmentTotal, controlConversions, controlTotal int64) (*domain.MetricsBundle, error) {
	t, err := Summarize(domain.Treatment, treatmentConversions, treatmentTotal)
	if err != nil {
		return nil, err
	}
	c, err := Summarize(domain.Control, controlConversions, controlTotal)
	if err != nil {
		return nil, err
	}

	lift, err := RelativeLift(t.Rate, c.Rate)
	if err != nil {
		return nil, err
	}

	z, err := ZTest(t, c)
	if err != nil {
		return nil, err
	}

	chi, err := ChiSquare(t, c)
	if err != nil {
		return nil, err
	}

	liftCI, liftSE := DiffInterval(t, c)
	h := CohensH(t.Rate, c.Rate)

	var warnings []domain.DegenerateRateWarning
	for _, g := range []domain.GroupSummary{t, c} {
		if degenerate(g.Rate) {
			warnings = append(warnings, domain.DegenerateRateWarning{Group: g.Group, Rate: g.Rate})
		}
	}

	return &domain.MetricsBundle{
		Treatment:       t,
		Control:         c,
		AbsoluteLift:    t.Rate - c.Rate,
		RelativeLiftPct: lift,
		ZTest:           z,
		LiftCI:          liftCI,
		LiftStdErr:      liftSE,
		CohensH:         h,
		Effect:          InterpretH(h),
		ChiSquare:       chi,
		Warnings:        warnings,
	}, nil
}
