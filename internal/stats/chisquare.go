package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

// ChiSquare runs Pearson's test of independence on the 2x2 table whose rows are
// the arms and whose columns are (not converted, converted).
//
// Cells are summed column by column so that swapping the rows gives a
// bit-identical statistic.
func ChiSquare(t, c domain.GroupSummary) (domain.ChiSquareResult, error) {
	observed := [2][2]float64{
		{float64(t.Total - t.Conversions), float64(t.Conversions)},
		{float64(c.Total - c.Conversions), float64(c.Conversions)},
	}
	rows := [2]float64{float64(t.Total), float64(c.Total)}
	cols := [2]float64{observed[0][0] + observed[1][0], observed[0][1] + observed[1][1]}
	n := rows[0] + rows[1]

	if cols[0] == 0 || cols[1] == 0 {
		return domain.ChiSquareResult{}, &domain.DegenerateRateError{Statistic: "chi-square statistic", Rate: cols[1] / n}
	}

	var expected [2][2]float64
	var stat, yates float64
	for j := 0; j < 2; j++ {
		var col, colYates float64
		for i := 0; i < 2; i++ {
			e := rows[i] * cols[j] / n
			expected[i][j] = e
			d := math.Abs(observed[i][j] - e)
			col += d * d / e
			dy := math.Max(0, d-0.5)
			colYates += dy * dy / e
		}
		stat += col
		yates += colYates
	}

	dist := distuv.ChiSquared{K: 1}
	return domain.ChiSquareResult{
		Statistic:        stat,
		PValue:           dist.Survival(stat),
		DegreesOfFreedom: 1,
		YatesStatistic:   yates,
		YatesPValue:      dist.Survival(yates),
		Observed:         observed,
		Expected:         expected,
	}, nil
}
