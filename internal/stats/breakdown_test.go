package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

func dayRecords(day string, a domain.Assignment, conv, total int) []domain.TrialRecord {
	out := make([]domain.TrialRecord, total)
	for i := range out {
		out[i] = domain.TrialRecord{Assignment: a, Converted: i < conv, MostAdsDay: day}
	}
	return out
}

func TestBreakdown_ByDayOrdersWeekdays(t *testing.T) {
	var records []domain.TrialRecord
	records = append(records, dayRecords("Sunday", domain.Treatment, 3, 10)...)
	records = append(records, dayRecords("Sunday", domain.Control, 1, 10)...)
	records = append(records, dayRecords("Monday", domain.Treatment, 2, 10)...)
	records = append(records, dayRecords("Monday", domain.Control, 4, 10)...)
	records = append(records, dayRecords("Wednesday", domain.Treatment, 5, 10)...)
	records = append(records, dayRecords("Holiday", domain.Control, 1, 10)...)
	records = append(records, domain.TrialRecord{Assignment: domain.Control})

	got, err := Breakdown(records, domain.ByDay)
	require.NoError(t, err)

	keys := make([]string, len(got.Strata))
	for i, s := range got.Strata {
		keys[i] = s.Key
	}
	assert.Equal(t, []string{"Monday", "Wednesday", "Sunday", "Holiday"}, keys)
	assert.Equal(t, 2, got.Comparable)
	assert.Equal(t, 1, got.TreatmentHigher)

	assert.False(t, got.Strata[0].TreatmentHigher)
	assert.Nil(t, got.Strata[1].Control)
	require.NotNil(t, got.Strata[1].Treatment)
	assert.Equal(t, 0.5, got.Strata[1].Treatment.Rate)
	assert.True(t, got.Strata[2].TreatmentHigher)
	assert.Nil(t, got.Strata[3].Treatment)
}

func TestBreakdown_ByHour(t *testing.T) {
	records := []domain.TrialRecord{
		{Assignment: domain.Treatment, Converted: true, MostAdsHour: 14, HasHour: true},
		{Assignment: domain.Control, MostAdsHour: 14, HasHour: true},
		{Assignment: domain.Treatment, MostAdsHour: 0, HasHour: true},
		{Assignment: domain.Control, Converted: true, MostAdsHour: 0, HasHour: true},
		{Assignment: domain.Treatment, Converted: true},
	}

	got, err := Breakdown(records, domain.ByHour)
	require.NoError(t, err)

	require.Len(t, got.Strata, 2)
	assert.Equal(t, "0", got.Strata[0].Key)
	assert.Equal(t, "14", got.Strata[1].Key)
	assert.Equal(t, int64(1), got.Strata[1].Treatment.Total)
	assert.Equal(t, 2, got.Comparable)
	assert.Equal(t, 1, got.TreatmentHigher)
}

func TestBreakdown_ByExposure(t *testing.T) {
	records := []domain.TrialRecord{
		{Assignment: domain.Treatment, TotalAds: 500},
		{Assignment: domain.Treatment, TotalAds: 3, Converted: true},
		{Assignment: domain.Control, TotalAds: 25},
		{Assignment: domain.Control, TotalAds: 0},
	}

	got, err := Breakdown(records, domain.ByExposure)
	require.NoError(t, err)

	require.Len(t, got.Strata, 2)
	assert.Equal(t, "1-25", got.Strata[0].Key)
	assert.Equal(t, "400+", got.Strata[1].Key)
	assert.True(t, got.Strata[0].TreatmentHigher)
}

func TestBreakdown_Errors(t *testing.T) {
	_, err := Breakdown(makeRecords(1, 2, 1, 2), domain.Dimension("month"))
	assert.Error(t, err)

	records := []domain.TrialRecord{{Assignment: "psa", MostAdsDay: "Monday"}}
	_, err = Breakdown(records, domain.ByDay)
	require.ErrorIs(t, err, domain.ErrInvalidAssignment)
	require.ErrorIs(t, err, domain.ErrSchema)
}
