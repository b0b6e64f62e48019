package stats

import (
	"math"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

// CohensH is 2·(asin√rate_t − asin√rate_c) in radians, positive when treatment wins.
func CohensH(treatmentRate, controlRate float64) float64 {
	return 2 * (math.Asin(math.Sqrt(treatmentRate)) - math.Asin(math.Sqrt(controlRate)))
}

// InterpretH classifies the magnitude of h.
func InterpretH(h float64) domain.EffectSize {
	switch a := math.Abs(h); {
	case a < 0.2:
		return domain.EffectSmall
	case a < 0.5:
		return domain.EffectSmallMedium
	case a < 0.8:
		return domain.EffectMediumLarge
	default:
		return domain.EffectLarge
	}
}
