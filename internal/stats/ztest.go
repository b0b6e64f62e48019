package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

// AlternativeLarger names the one-sided alternative rate_t > rate_c.
const AlternativeLarger = "larger"

// ZTest runs the pooled two-proportion z-test with the one-sided alternative
// that treatment converts better than control.
func ZTest(t, c domain.GroupSummary) (domain.ZTestResult, error) {
	pooled := float64(t.Conversions+c.Conversions) / float64(t.Total+c.Total)
	if degenerate(pooled) {
		return domain.ZTestResult{}, &domain.DegenerateRateError{Statistic: "pooled z statistic", Rate: pooled}
	}

	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(t.Total) + 1/float64(c.Total)))
	z := (t.Rate - c.Rate) / se

	return domain.ZTestResult{
		Z:           z,
		PValue:      distuv.UnitNormal.CDF(-z),
		PooledRate:  pooled,
		StdErr:      se,
		Alternative: AlternativeLarger,
	}, nil
}

// TwoSidedPValue converts a z statistic into a two-sided p-value.
// Tail probabilities go through CDF(-|z|), which uses Erfc and stays
// accurate far from the mean where Survival rounds to zero.
func TwoSidedPValue(z float64) float64 {
	return 2 * distuv.UnitNormal.CDF(-math.Abs(z))
}
