package domain

import "fmt"

// Assignment is the arm of the test a subject was exposed to.
type Assignment string

const (
	Treatment Assignment = "treatment"
	Control   Assignment = "control"
)

// Valid reports whether a is one of the two recognized arms.
func (a Assignment) Valid() bool {
	return a == Treatment || a == Control
}

// ParseAssignment maps a raw label to an arm using the experiment's labels.
func ParseAssignment(label, treatmentLabel, controlLabel string) (Assignment, error) {
	switch label {
	case treatmentLabel:
		return Treatment, nil
	case controlLabel:
		return Control, nil
	}
	return "", fmt.Errorf("%w: %q (expected %q or %q)", ErrInvalidAssignment, label, treatmentLabel, controlLabel)
}

// TrialRecord is one subject of the test. Covariates are optional and only
// used by breakdowns; a zero value means "not recorded".
type TrialRecord struct {
	UserID      string
	Assignment  Assignment
	Converted   bool
	TotalAds    int
	MostAdsDay  string
	MostAdsHour int
	HasHour     bool
}

// Dataset is an externally owned, read-only collection of records.
type Dataset struct {
	Name    string
	Records []TrialRecord
}
