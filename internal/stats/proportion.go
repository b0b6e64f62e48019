package stats

import (
	"fmt"
	"math"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

const (
	// ConfidenceLevel of every interval in a bundle.
	ConfidenceLevel = 0.95
	// zCritical is the two-sided 95% normal quantile, rounded as in the reference.
	zCritical = 1.96
)

// Rate returns conversions/total. A group without members has no rate.
func Rate(group domain.Assignment, conversions, total int64) (float64, error) {
	if total <= 0 {
		return 0, &domain.InsufficientDataError{Group: group}
	}
	if conversions < 0 || conversions > total {
		return 0, &domain.SchemaError{
			Column: "converted",
			Err:    fmt.Errorf("%d conversions out of range for %d %s records", conversions, total, group),
		}
	}
	return float64(conversions) / float64(total), nil
}

// Summarize builds a GroupSummary with its Wald interval.
func Summarize(group domain.Assignment, conversions, total int64) (domain.GroupSummary, error) {
	rate, err := Rate(group, conversions, total)
	if err != nil {
		return domain.GroupSummary{}, err
	}
	return domain.GroupSummary{
		Group:       group,
		Conversions: conversions,
		Total:       total,
		Rate:        rate,
		CI:          WaldInterval(rate, total),
	}, nil
}

// WaldInterval is the normal-approximation interval rate ± 1.96·sqrt(rate(1-rate)/n).
// Bounds are left unclamped.
func WaldInterval(rate float64, total int64) domain.Interval {
	half := zCritical * math.Sqrt(rate*(1-rate)/float64(total))
	return domain.Interval{Lower: rate - half, Upper: rate + half, Level: ConfidenceLevel}
}

// DiffInterval is the interval for rate_t - rate_c using the unpooled standard
// error. It returns the interval and that standard error.
func DiffInterval(t, c domain.GroupSummary) (domain.Interval, float64) {
	se := math.Sqrt(t.Rate*(1-t.Rate)/float64(t.Total) + c.Rate*(1-c.Rate)/float64(c.Total))
	diff := t.Rate - c.Rate
	half := zCritical * se
	return domain.Interval{Lower: diff - half, Upper: diff + half, Level: ConfidenceLevel}, se
}

// RelativeLift is 100·(rate_t - rate_c)/rate_c.
func RelativeLift(treatmentRate, controlRate float64) (float64, error) {
	if controlRate == 0 {
		return 0, &domain.DivisionByZeroError{Quantity: "relative lift (control rate is zero)"}
	}
	return 100 * (treatmentRate - controlRate) / controlRate, nil
}

func degenerate(rate float64) bool {
	return rate == 0 || rate == 1
}
