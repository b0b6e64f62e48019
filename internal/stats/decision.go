package stats

import (
	"fmt"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

// DefaultAlpha is the significance level used when none is configured.
const DefaultAlpha = 0.05

// Decide applies the decision rule at significance level alpha.
//
// Treatment is recommended when the one-sided test rejects the null. It is
// rejected when the lift interval lies entirely below zero. Anything else is
// inconclusive.
func Decide(b *domain.MetricsBundle, alpha float64) (domain.Decision, error) {
	if alpha <= 0 || alpha >= 1 {
		return domain.Decision{}, fmt.Errorf("alpha must be in (0, 1), got %g", alpha)
	}

	d := domain.Decision{
		Alpha:                alpha,
		Significant:          b.ZTest.PValue < alpha,
		ChiSquareSignificant: b.ChiSquare.PValue < alpha,
		IntervalsOverlap:     b.Treatment.CI.Overlaps(b.Control.CI),
		LiftExcludesZero:     !b.LiftCI.Contains(0),
		TreatmentPerThousand: b.Treatment.Rate * 1000,
		ControlPerThousand:   b.Control.Rate * 1000,
		NetGainPerThousand:   b.AbsoluteLift * 1000,
		Effect:               b.Effect,
	}

	switch {
	case d.Significant && b.AbsoluteLift > 0:
		d.Recommendation = domain.RecommendImplement
	case b.LiftCI.Upper < 0:
		d.Recommendation = domain.RecommendDoNotImplement
	default:
		d.Recommendation = domain.RecommendInconclusive
	}
	return d, nil
}

// Analyze computes the bundle and decision for one dataset.
func Analyze(ds domain.Dataset, alpha float64) (*domain.Report, error) {
	b, err := Compute(ds.Records)
	if err != nil {
		return nil, err
	}
	return NewReport(ds.Name, b, alpha)
}

// NewReport pairs an already computed bundle with its decision.
func NewReport(source string, b *domain.MetricsBundle, alpha float64) (*domain.Report, error) {
	d, err := Decide(b, alpha)
	if err != nil {
		return nil, err
	}
	return &domain.Report{Source: source, Metrics: *b, Decision: d}, nil
}
