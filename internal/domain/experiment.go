package domain

import "time"

// Default assignment labels used by the marketing dataset.
const (
	DefaultTreatmentLabel = "ad"
	DefaultControlLabel   = "psa"
)

type Experiment struct {
	ID             string    `json:"id" yaml:"id"`
	Name           string    `json:"name" yaml:"name"`
	Description    *string   `json:"description,omitempty" yaml:"description,omitempty"`
	Hypothesis     *string   `json:"hypothesis,omitempty" yaml:"hypothesis,omitempty"`
	TreatmentLabel string    `json:"treatment_label" yaml:"treatment_label"`
	ControlLabel   string    `json:"control_label" yaml:"control_label"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
}

// ReportRun is a persisted report computed for an experiment.
type ReportRun struct {
	ID           string    `json:"id" yaml:"id"`
	ExperimentID string    `json:"experiment_id" yaml:"experiment_id"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	Report       Report    `json:"report" yaml:"report"`
}
