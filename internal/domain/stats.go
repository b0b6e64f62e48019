package domain

// GroupSummary holds the conversion counts of one arm.
type GroupSummary struct {
	Group       Assignment `json:"group" yaml:"group"`
	Conversions int64      `json:"conversions" yaml:"conversions"`
	Total       int64      `json:"total" yaml:"total"`
	Rate        float64    `json:"rate" yaml:"rate"`
	CI          Interval   `json:"ci" yaml:"ci"`
}

// Interval is a two-sided confidence interval. Bounds are not clamped to
// [0,1], so normal-approximation intervals near the boundary may leave it.
type Interval struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
	Level float64 `json:"level" yaml:"level"`
}

// Contains reports whether x lies inside the closed interval.
func (i Interval) Contains(x float64) bool {
	return i.Lower <= x && x <= i.Upper
}

// Overlaps reports whether the two intervals share at least one point.
func (i Interval) Overlaps(o Interval) bool {
	return i.Lower <= o.Upper && o.Lower <= i.Upper
}

// ZTestResult is a one-sided two-proportion z-test of treatment > control.
// StdErr is the pooled standard error under the null hypothesis.
type ZTestResult struct {
	Z           float64 `json:"z" yaml:"z"`
	PValue      float64 `json:"p_value" yaml:"p_value"`
	PooledRate  float64 `json:"pooled_rate" yaml:"pooled_rate"`
	StdErr      float64 `json:"std_err" yaml:"std_err"`
	Alternative string  `json:"alternative" yaml:"alternative"`
}

// ChiSquareResult is a test of independence on the 2x2 assignment x converted
// table. Statistic carries no continuity correction; the Yates-corrected
// values are reported alongside.
type ChiSquareResult struct {
	Statistic        float64       `json:"statistic" yaml:"statistic"`
	PValue           float64       `json:"p_value" yaml:"p_value"`
	DegreesOfFreedom int           `json:"dof" yaml:"dof"`
	YatesStatistic   float64       `json:"yates_statistic" yaml:"yates_statistic"`
	YatesPValue      float64       `json:"yates_p_value" yaml:"yates_p_value"`
	Observed         [2][2]float64 `json:"observed" yaml:"observed"`
	Expected         [2][2]float64 `json:"expected" yaml:"expected"`
}

// EffectSize classifies |Cohen's h|.
type EffectSize string

const (
	EffectSmall       EffectSize = "small"
	EffectSmallMedium EffectSize = "small-medium"
	EffectMediumLarge EffectSize = "medium-large"
	EffectLarge       EffectSize = "large"
)

// DegenerateRateWarning flags a group whose rate sits exactly on 0 or 1.
type DegenerateRateWarning struct {
	Group Assignment `json:"group" yaml:"group"`
	Rate  float64    `json:"rate" yaml:"rate"`
}

func (w DegenerateRateWarning) String() string {
	return string(w.Group) + " rate is on the boundary; variance-based statistics are degenerate"
}

// MetricsBundle is the immutable result of one computation.
type MetricsBundle struct {
	Treatment       GroupSummary            `json:"treatment" yaml:"treatment"`
	Control         GroupSummary            `json:"control" yaml:"control"`
	AbsoluteLift    float64                 `json:"abs_diff" yaml:"abs_diff"`
	RelativeLiftPct float64                 `json:"lift_pct" yaml:"lift_pct"`
	ZTest           ZTestResult             `json:"z_test" yaml:"z_test"`
	LiftCI          Interval                `json:"lift_ci" yaml:"lift_ci"`
	LiftStdErr      float64                 `json:"lift_std_err" yaml:"lift_std_err"`
	CohensH         float64                 `json:"cohens_h" yaml:"cohens_h"`
	Effect          EffectSize              `json:"effect" yaml:"effect"`
	ChiSquare       ChiSquareResult         `json:"chi_square" yaml:"chi_square"`
	Warnings        []DegenerateRateWarning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Recommendation is the outcome of the decision rule.
type Recommendation string

const (
	RecommendImplement      Recommendation = "implement"
	RecommendDoNotImplement Recommendation = "do-not-implement"
	RecommendInconclusive   Recommendation = "inconclusive"
)

// Decision turns a bundle into an actionable verdict at a significance level.
type Decision struct {
	Alpha                float64        `json:"alpha" yaml:"alpha"`
	Significant          bool           `json:"significant" yaml:"significant"`
	ChiSquareSignificant bool           `json:"chi_square_significant" yaml:"chi_square_significant"`
	IntervalsOverlap     bool           `json:"intervals_overlap" yaml:"intervals_overlap"`
	LiftExcludesZero     bool           `json:"lift_excludes_zero" yaml:"lift_excludes_zero"`
	TreatmentPerThousand float64        `json:"treatment_per_thousand" yaml:"treatment_per_thousand"`
	ControlPerThousand   float64        `json:"control_per_thousand" yaml:"control_per_thousand"`
	NetGainPerThousand   float64        `json:"net_gain_per_thousand" yaml:"net_gain_per_thousand"`
	Effect               EffectSize     `json:"effect" yaml:"effect"`
	Recommendation       Recommendation `json:"recommendation" yaml:"recommendation"`
}

// Report pairs a bundle with its decision for presentation.
type Report struct {
	Source   string        `json:"source" yaml:"source"`
	Metrics  MetricsBundle `json:"metrics" yaml:"metrics"`
	Decision Decision      `json:"decision" yaml:"decision"`
}
