package stats

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

var weekdayOrder = map[string]int{
	"Monday": 0, "Tuesday": 1, "Wednesday": 2, "Thursday": 3,
	"Friday": 4, "Saturday": 5, "Sunday": 6,
}

type counts struct {
	conversions, total int64
}

type stratumCounts struct {
	key   string
	order int
	arms  map[domain.Assignment]*counts
}

// Breakdown compares the arms within each value of a covariate. Records that
// did not record the covariate are skipped.
func Breakdown(records []domain.TrialRecord, dim domain.Dimension) (*domain.Breakdown, error) {
	keyOf, err := stratumKey(dim)
	if err != nil {
		return nil, err
	}

	strata := make(map[string]*stratumCounts)
	for i, r := range records {
		if !r.Assignment.Valid() {
			return nil, &domain.SchemaError{
				Column: "assignment",
				Value:  string(r.Assignment),
				Err:    fmt.Errorf("record %d: %w %q", i, domain.ErrInvalidAssignment, r.Assignment),
			}
		}
		key, order, ok := keyOf(r)
		if !ok {
			continue
		}
		s, found := strata[key]
		if !found {
			s = &stratumCounts{key: key, order: order, arms: make(map[domain.Assignment]*counts, 2)}
			strata[key] = s
		}
		c, found := s.arms[r.Assignment]
		if !found {
			c = &counts{}
			s.arms[r.Assignment] = c
		}
		c.total++
		if r.Converted {
			c.conversions++
		}
	}

	ordered := make([]*stratumCounts, 0, len(strata))
	for _, s := range strata {
		ordered = append(ordered, s)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].order != ordered[j].order {
			return ordered[i].order < ordered[j].order
		}
		return ordered[i].key < ordered[j].key
	})

	out := &domain.Breakdown{Dimension: dim, Strata: make([]domain.Stratum, 0, len(ordered))}
	for _, s := range ordered {
		st := domain.Stratum{Key: s.key}
		if c, ok := s.arms[domain.Treatment]; ok {
			g, err := Summarize(domain.Treatment, c.conversions, c.total)
			if err != nil {
				return nil, err
			}
			st.Treatment = &g
		}
		if c, ok := s.arms[domain.Control]; ok {
			g, err := Summarize(domain.Control, c.conversions, c.total)
			if err != nil {
				return nil, err
			}
			st.Control = &g
		}
		if st.Treatment != nil && st.Control != nil {
			out.Comparable++
			if st.Treatment.Rate > st.Control.Rate {
				st.TreatmentHigher = true
				out.TreatmentHigher++
			}
		}
		out.Strata = append(out.Strata, st)
	}
	return out, nil
}

func stratumKey(dim domain.Dimension) (func(domain.TrialRecord) (string, int, bool), error) {
	switch dim {
	case domain.ByDay:
		return func(r domain.TrialRecord) (string, int, bool) {
			if r.MostAdsDay == "" {
				return "", 0, false
			}
			order, known := weekdayOrder[r.MostAdsDay]
			if !known {
				order = len(weekdayOrder)
			}
			return r.MostAdsDay, order, true
		}, nil
	case domain.ByHour:
		return func(r domain.TrialRecord) (string, int, bool) {
			if !r.HasHour {
				return "", 0, false
			}
			return strconv.Itoa(r.MostAdsHour), r.MostAdsHour, true
		}, nil
	case domain.ByExposure:
		return func(r domain.TrialRecord) (string, int, bool) {
			idx, ok := doseBin(r.TotalAds)
			if !ok {
				return "", 0, false
			}
			return DoseBins[idx].Label, idx, true
		}, nil
	}
	return nil, fmt.Errorf("unknown breakdown dimension %q (want day, hour or exposure)", dim)
}
