package stats

import (
	"github.com/emiliopalmerini/abtest/internal/domain"
)

// Counts of the marketing campaign dataset.
const (
	adConversions  = 14423
	adTotal        = 564577
	psaConversions = 420
	psaTotal       = 23524
)

func makeRecords(tConv, tTotal, cConv, cTotal int) []domain.TrialRecord {
	records := make([]domain.TrialRecord, 0, tTotal+cTotal)
	for i := 0; i < tTotal; i++ {
		records = append(records, domain.TrialRecord{Assignment: domain.Treatment, Converted: i < tConv})
	}
	for i := 0; i < cTotal; i++ {
		records = append(records, domain.TrialRecord{Assignment: domain.Control, Converted: i < cConv})
	}
	return records
}

func swapArms(records []domain.TrialRecord) []domain.TrialRecord {
	out := make([]domain.TrialRecord, len(records))
	for i, r := range records {
		if r.Assignment == domain.Treatment {
			r.Assignment = domain.Control
		} else {
			r.Assignment = domain.Treatment
		}
		out[i] = r
	}
	return out
}

func summary(t interface{ Fatalf(string, ...any) }, g domain.Assignment, conv, total int64) domain.GroupSummary {
	s, err := Summarize(g, conv, total)
	if err != nil {
		t.Fatalf("Summarize(%s, %d, %d): %v", g, conv, total, err)
	}
	return s
}
