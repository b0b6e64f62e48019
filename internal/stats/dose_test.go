package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

func exposed(a domain.Assignment, ads, conv, total int) []domain.TrialRecord {
	out := make([]domain.TrialRecord, total)
	for i := range out {
		out[i] = domain.TrialRecord{Assignment: a, TotalAds: ads, Converted: i < conv}
	}
	return out
}

func TestDoseBin_EdgesAreRightClosed(t *testing.T) {
	tests := []struct {
		ads    int
		want   string
		binned bool
	}{
		{0, "", false},
		{1, "1-25", true},
		{25, "1-25", true},
		{26, "26-50", true},
		{400, "301-400", true},
		{401, "400+", true},
		{2500, "400+", true},
		{2501, "", false},
	}
	for _, tt := range tests {
		idx, ok := doseBin(tt.ads)
		require.Equal(t, tt.binned, ok, "ads=%d", tt.ads)
		if ok {
			assert.Equal(t, tt.want, DoseBins[idx].Label, "ads=%d", tt.ads)
		}
	}
}

func TestDoseResponse(t *testing.T) {
	var records []domain.TrialRecord
	records = append(records, exposed(domain.Treatment, 10, 1, 200)...)
	records = append(records, exposed(domain.Treatment, 120, 12, 150)...)
	// Highest rate but too few users to be a candidate.
	records = append(records, exposed(domain.Treatment, 450, 30, 50)...)
	// Control never contributes.
	records = append(records, exposed(domain.Control, 120, 100, 100)...)

	got := DoseResponse(records)

	require.Len(t, got.Buckets, len(DoseBins))
	assert.Equal(t, int64(200), got.Buckets[0].Total)
	assert.Equal(t, 0.005, got.Buckets[0].Rate)
	assert.Equal(t, int64(150), got.Buckets[3].Total)
	assert.Equal(t, 0.6, got.Buckets[8].Rate)
	assert.False(t, got.Buckets[8].Eligible)
	assert.Zero(t, got.Buckets[1].Rate)

	require.NotNil(t, got.Optimal)
	assert.Equal(t, "101-150", got.Optimal.Label)
	assert.Equal(t, 0.08, got.Optimal.Rate)
}

func TestDoseResponse_NoEligibleBucket(t *testing.T) {
	got := DoseResponse(exposed(domain.Treatment, 30, 5, 99))

	assert.Nil(t, got.Optimal)
	assert.Equal(t, int64(99), got.Buckets[1].Total)
}
