package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

func TestCohensH(t *testing.T) {
	ad := float64(adConversions) / float64(adTotal)
	psa := float64(psaConversions) / float64(psaTotal)

	h := CohensH(ad, psa)

	assert.InEpsilon(t, 0.053002578606030915, h, 1e-9)
	assert.Equal(t, -h, CohensH(psa, ad))
	assert.Equal(t, 0.0, CohensH(0.3, 0.3))
}

func TestCohensH_FiniteOnBoundary(t *testing.T) {
	h := CohensH(1, 0)

	assert.InDelta(t, math.Pi, h, 1e-15)
	assert.False(t, math.IsNaN(CohensH(0, 0)))
}

func TestInterpretH(t *testing.T) {
	tests := []struct {
		h    float64
		want domain.EffectSize
	}{
		{0, domain.EffectSmall},
		{0.053, domain.EffectSmall},
		{0.1999, domain.EffectSmall},
		{0.2, domain.EffectSmallMedium},
		{-0.3, domain.EffectSmallMedium},
		{0.4999, domain.EffectSmallMedium},
		{0.5, domain.EffectMediumLarge},
		{0.79, domain.EffectMediumLarge},
		{0.8, domain.EffectLarge},
		{-1.2, domain.EffectLarge},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InterpretH(tt.h), "h=%v", tt.h)
	}
}
