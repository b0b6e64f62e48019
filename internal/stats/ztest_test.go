package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

func TestZTest_MarketingCampaign(t *testing.T) {
	ad := summary(t, domain.Treatment, adConversions, adTotal)
	psa := summary(t, domain.Control, psaConversions, psaTotal)

	got, err := ZTest(ad, psa)
	require.NoError(t, err)

	assert.InEpsilon(t, 7.3700781265454145, got.Z, 1e-9)
	assert.InEpsilon(t, 8.526403580779937e-14, got.PValue, 1e-6)
	assert.Less(t, got.PValue, 1e-4)
	assert.InEpsilon(t, float64(adConversions+psaConversions)/float64(adTotal+psaTotal), got.PooledRate, 1e-15)
	assert.Equal(t, AlternativeLarger, got.Alternative)
}

func TestZTest_EqualRatesCenterOfNull(t *testing.T) {
	a := summary(t, domain.Treatment, 50, 1000)
	b := summary(t, domain.Control, 10, 200)

	got, err := ZTest(a, b)
	require.NoError(t, err)

	assert.Equal(t, 0.0, got.Z)
	assert.InDelta(t, 0.5, got.PValue, 1e-15)
}

func TestZTest_TreatmentWorseGivesLargePValue(t *testing.T) {
	a := summary(t, domain.Treatment, 10, 1000)
	b := summary(t, domain.Control, 30, 1000)

	got, err := ZTest(a, b)
	require.NoError(t, err)

	assert.Less(t, got.Z, 0.0)
	assert.Greater(t, got.PValue, 0.5)
	assert.LessOrEqual(t, got.PValue, 1.0)
}

func TestZTest_PooledRateOnBoundary(t *testing.T) {
	tests := []struct {
		name         string
		tConv, cConv int64
	}{
		{"nobody converted", 0, 0},
		{"everybody converted", 100, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := summary(t, domain.Treatment, tt.tConv, 100)
			b := summary(t, domain.Control, tt.cConv, 40)

			_, err := ZTest(a, b)
			require.ErrorIs(t, err, domain.ErrDegenerateRate)
		})
	}
}

func TestTwoSidedPValue(t *testing.T) {
	assert.InDelta(t, 1.0, TwoSidedPValue(0), 1e-15)
	assert.InDelta(t, 0.05, TwoSidedPValue(1.959963984540054), 1e-12)
	assert.Equal(t, TwoSidedPValue(2.5), TwoSidedPValue(-2.5))
}

func TestNormalTail_KeepsPrecisionFarFromTheMean(t *testing.T) {
	// Reference values from erfc(z/sqrt(2))/2.
	tests := []struct {
		z    float64
		want float64
	}{
		{7.3700781265454145, 8.526403580779937e-14},
		{9, 1.1285884059538422e-19},
	}
	for _, tt := range tests {
		assert.InEpsilon(t, 2*tt.want, TwoSidedPValue(tt.z), 1e-9, "z=%v", tt.z)
		assert.Greater(t, TwoSidedPValue(tt.z), 0.0)
	}
}
