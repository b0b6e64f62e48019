package domain

// Overview summarizes a dataset before any inference.
type Overview struct {
	TotalRecords   int64   `json:"total_records" yaml:"total_records"`
	TreatmentCount int64   `json:"treatment_count" yaml:"treatment_count"`
	ControlCount   int64   `json:"control_count" yaml:"control_count"`
	TreatmentShare float64 `json:"treatment_share" yaml:"treatment_share"`
	ControlShare   float64 `json:"control_share" yaml:"control_share"`
	DuplicateRows  int64   `json:"duplicate_rows" yaml:"duplicate_rows"`
	DuplicateUsers int64   `json:"duplicate_users" yaml:"duplicate_users"`
	MissingUserIDs int64   `json:"missing_user_ids" yaml:"missing_user_ids"`
	TotalConverted int64   `json:"total_converted" yaml:"total_converted"`
	OverallRate    float64 `json:"overall_rate" yaml:"overall_rate"`
}

// Dimension selects the covariate a breakdown is stratified on.
type Dimension string

const (
	ByDay      Dimension = "day"
	ByHour     Dimension = "hour"
	ByExposure Dimension = "exposure"
)

// Stratum holds both arms for one covariate value. A nil arm had no records.
type Stratum struct {
	Key             string        `json:"key" yaml:"key"`
	Treatment       *GroupSummary `json:"treatment,omitempty" yaml:"treatment,omitempty"`
	Control         *GroupSummary `json:"control,omitempty" yaml:"control,omitempty"`
	TreatmentHigher bool          `json:"treatment_higher" yaml:"treatment_higher"`
}

// Breakdown is a stratified comparison with a consistency count.
type Breakdown struct {
	Dimension       Dimension `json:"dimension" yaml:"dimension"`
	Strata          []Stratum `json:"strata" yaml:"strata"`
	Comparable      int       `json:"comparable" yaml:"comparable"`
	TreatmentHigher int       `json:"treatment_higher" yaml:"treatment_higher"`
}

// DoseBucket is one exposure bin of the dose-response curve.
type DoseBucket struct {
	Label       string  `json:"label" yaml:"label"`
	Lower       int     `json:"lower" yaml:"lower"`
	Upper       int     `json:"upper" yaml:"upper"`
	Conversions int64   `json:"conversions" yaml:"conversions"`
	Total       int64   `json:"total" yaml:"total"`
	Rate        float64 `json:"rate" yaml:"rate"`
	Eligible    bool    `json:"eligible" yaml:"eligible"`
}

// DoseResponse relates exposure count to conversion in the treatment arm.
type DoseResponse struct {
	Buckets []DoseBucket `json:"buckets" yaml:"buckets"`
	Optimal *DoseBucket  `json:"optimal,omitempty" yaml:"optimal,omitempty"`
}
