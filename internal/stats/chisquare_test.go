package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

func TestChiSquare_MarketingCampaign(t *testing.T) {
	ad := summary(t, domain.Treatment, adConversions, adTotal)
	psa := summary(t, domain.Control, psaConversions, psaTotal)

	got, err := ChiSquare(ad, psa)
	require.NoError(t, err)

	assert.Equal(t, 1, got.DegreesOfFreedom)
	assert.InEpsilon(t, 54.318051591383124, got.Statistic, 1e-9)
	assert.InEpsilon(t, 1.7052807161560196e-13, got.PValue, 1e-6)
	assert.InEpsilon(t, 54.005823883685245, got.YatesStatistic, 1e-9)
	assert.InEpsilon(t, 1.9989623063390022e-13, got.YatesPValue, 1e-6)
}

func TestChiSquare_AgreesWithTwoSidedZTest(t *testing.T) {
	ad := summary(t, domain.Treatment, adConversions, adTotal)
	psa := summary(t, domain.Control, psaConversions, psaTotal)

	chi, err := ChiSquare(ad, psa)
	require.NoError(t, err)
	z, err := ZTest(ad, psa)
	require.NoError(t, err)

	// Without continuity correction the 2x2 Pearson statistic is the squared pooled z.
	assert.InEpsilon(t, z.Z*z.Z, chi.Statistic, 1e-9)
	assert.InEpsilon(t, TwoSidedPValue(z.Z), chi.PValue, 1e-6)
}

func TestChiSquare_ExpectedPreservesMargins(t *testing.T) {
	a := summary(t, domain.Treatment, 30, 400)
	b := summary(t, domain.Control, 12, 250)

	got, err := ChiSquare(a, b)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		assert.InDelta(t, got.Observed[i][0]+got.Observed[i][1], got.Expected[i][0]+got.Expected[i][1], 1e-9)
	}
	for j := 0; j < 2; j++ {
		assert.InDelta(t, got.Observed[0][j]+got.Observed[1][j], got.Expected[0][j]+got.Expected[1][j], 1e-9)
	}
	assert.Equal(t, [2]float64{370, 30}, got.Observed[0])
	assert.Equal(t, [2]float64{238, 12}, got.Observed[1])
}

func TestChiSquare_YatesNeverExceedsPearson(t *testing.T) {
	a := summary(t, domain.Treatment, 7, 40)
	b := summary(t, domain.Control, 3, 38)

	got, err := ChiSquare(a, b)
	require.NoError(t, err)

	assert.LessOrEqual(t, got.YatesStatistic, got.Statistic)
	assert.GreaterOrEqual(t, got.YatesPValue, got.PValue)
	assert.GreaterOrEqual(t, got.Statistic, 0.0)
}

func TestChiSquare_IndependentTable(t *testing.T) {
	a := summary(t, domain.Treatment, 20, 200)
	b := summary(t, domain.Control, 10, 100)

	got, err := ChiSquare(a, b)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, got.Statistic, 1e-12)
	assert.InDelta(t, 1.0, got.PValue, 1e-12)
}

func TestChiSquare_EmptyColumn(t *testing.T) {
	a := summary(t, domain.Treatment, 0, 20)
	b := summary(t, domain.Control, 0, 30)

	_, err := ChiSquare(a, b)
	require.ErrorIs(t, err, domain.ErrDegenerateRate)
}
