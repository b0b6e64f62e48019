package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

func TestOverview(t *testing.T) {
	records := []domain.TrialRecord{
		{UserID: "1", Assignment: domain.Treatment, Converted: true},
		{UserID: "2", Assignment: domain.Treatment},
		{UserID: "3", Assignment: domain.Treatment},
		{UserID: "1", Assignment: domain.Control},
		{Assignment: domain.Control, Converted: true},
	}

	got, err := Overview(records)
	require.NoError(t, err)

	assert.Equal(t, int64(5), got.TotalRecords)
	assert.Equal(t, int64(3), got.TreatmentCount)
	assert.Equal(t, int64(2), got.ControlCount)
	assert.Equal(t, 0.6, got.TreatmentShare)
	assert.Equal(t, 0.4, got.ControlShare)
	assert.Equal(t, int64(2), got.TotalConverted)
	assert.Equal(t, 0.4, got.OverallRate)
	assert.Equal(t, int64(0), got.DuplicateRows)
	assert.Equal(t, int64(1), got.DuplicateUsers)
	assert.Equal(t, int64(1), got.MissingUserIDs)
}

func TestOverview_DuplicateRowsMatchEveryField(t *testing.T) {
	row := domain.TrialRecord{UserID: "7", Assignment: domain.Treatment, Converted: true, TotalAds: 12, MostAdsDay: "Monday", MostAdsHour: 20, HasHour: true}
	sameUserOtherDay := row
	sameUserOtherDay.MostAdsDay = "Tuesday"

	got, err := Overview([]domain.TrialRecord{
		row,
		row,
		sameUserOtherDay,
		{UserID: "8", Assignment: domain.Control},
		row,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), got.DuplicateRows)
	assert.Equal(t, int64(3), got.DuplicateUsers)
}

func TestOverview_Empty(t *testing.T) {
	got, err := Overview(nil)
	require.NoError(t, err)
	assert.Equal(t, domain.Overview{}, got)
}

func TestOverview_InvalidAssignment(t *testing.T) {
	_, err := Overview([]domain.TrialRecord{{Assignment: "ad"}})
	require.ErrorIs(t, err, domain.ErrInvalidAssignment)
}
