package stats

import (
	"github.com/emiliopalmerini/abtest/internal/domain"
)

// MinBucketUsers is the smallest bucket that takes part in the optimum search.
const MinBucketUsers = 100

// DoseBin is a right-closed exposure interval (Lower, Upper].
type DoseBin struct {
	Label string
	Lower int
	Upper int
}

// DoseBins are the exposure buckets of the dose-response curve.
var DoseBins = []DoseBin{
	{"1-25", 0, 25},
	{"26-50", 25, 50},
	{"51-100", 50, 100},
	{"101-150", 100, 150},
	{"151-200", 150, 200},
	{"201-250", 200, 250},
	{"251-300", 250, 300},
	{"301-400", 300, 400},
	{"400+", 400, 2500},
}

func doseBin(ads int) (int, bool) {
	for i, b := range DoseBins {
		if ads > b.Lower && ads <= b.Upper {
			return i, true
		}
	}
	return 0, false
}

// DoseResponse buckets treatment records by number of ads seen. Exposures
// outside every bin are ignored.
func DoseResponse(records []domain.TrialRecord) domain.DoseResponse {
	buckets := make([]domain.DoseBucket, len(DoseBins))
	for i, b := range DoseBins {
		buckets[i] = domain.DoseBucket{Label: b.Label, Lower: b.Lower, Upper: b.Upper}
	}

	for _, r := range records {
		if r.Assignment != domain.Treatment {
			continue
		}
		idx, ok := doseBin(r.TotalAds)
		if !ok {
			continue
		}
		buckets[idx].Total++
		if r.Converted {
			buckets[idx].Conversions++
		}
	}

	out := domain.DoseResponse{Buckets: buckets}
	for i := range buckets {
		b := &buckets[i]
		if b.Total > 0 {
			b.Rate = float64(b.Conversions) / float64(b.Total)
		}
		b.Eligible = b.Total >= MinBucketUsers
		if b.Eligible && (out.Optimal == nil || b.Rate > out.Optimal.Rate) {
			opt := *b
			out.Optimal = &opt
		}
	}
	return out
}
