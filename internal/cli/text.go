package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/emiliopalmerini/abtest/internal/domain"
	"github.com/emiliopalmerini/abtest/internal/experiments"
	"github.com/emiliopalmerini/abtest/internal/util"
)

func heading(w io.Writer, title string) {
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintf(w, "  %s\n", strings.Repeat("-", len(title)))
}

func formatInterval(i domain.Interval) string {
	return fmt.Sprintf("[%s, %s]", util.FormatPercent(i.Lower), util.FormatPercent(i.Upper))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func printReport(w io.Writer, r *domain.Report) {
	m := r.Metrics
	d := r.Decision

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", r.Source)
	fmt.Fprintf(w, "  %s\n", strings.Repeat("=", len(r.Source)))
	fmt.Fprintln(w)

	heading(w, "Conversion")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  GROUP\tUSERS\tCONVERTED\tRATE\t95% CI")
	for _, g := range []domain.GroupSummary{m.Treatment, m.Control} {
		fmt.Fprintf(tw, "  %s\t%d\t%d\t%s\t%s\n",
			g.Group, g.Total, g.Conversions, util.FormatPercent(g.Rate), formatInterval(g.CI))
	}
	_ = tw.Flush()
	fmt.Fprintln(w)

	heading(w, "Lift")
	fmt.Fprintf(w, "  Absolute:          %s pp\n", util.FormatSigned(m.AbsoluteLift*100, 3))
	fmt.Fprintf(w, "  Relative:          %s%%\n", util.FormatSigned(m.RelativeLiftPct, 2))
	fmt.Fprintf(w, "  95%% CI:            %s\n", formatInterval(m.LiftCI))
	fmt.Fprintln(w)

	heading(w, "Tests")
	fmt.Fprintf(w, "  z (one-sided):     %.4f  p = %s\n", m.ZTest.Z, util.FormatPValue(m.ZTest.PValue))
	fmt.Fprintf(w, "  Chi-square:        %.4f  p = %s  (df %d)\n", m.ChiSquare.Statistic, util.FormatPValue(m.ChiSquare.PValue), m.ChiSquare.DegreesOfFreedom)
	fmt.Fprintf(w, "  Chi-square, Yates: %.4f  p = %s\n", m.ChiSquare.YatesStatistic, util.FormatPValue(m.ChiSquare.YatesPValue))
	fmt.Fprintf(w, "  Cohen's h:         %.4f  (%s)\n", m.CohensH, m.Effect)
	fmt.Fprintln(w)

	for _, warn := range m.Warnings {
		fmt.Fprintf(w, "  Warning: %s\n", warn)
	}
	if len(m.Warnings) > 0 {
		fmt.Fprintln(w)
	}

	heading(w, "Decision")
	fmt.Fprintf(w, "  Alpha:             %g\n", d.Alpha)
	fmt.Fprintf(w, "  Significant:       %s\n", yesNo(d.Significant))
	fmt.Fprintf(w, "  CIs overlap:       %s\n", yesNo(d.IntervalsOverlap))
	fmt.Fprintf(w, "  Per 1,000 users:   %.1f vs %.1f (net %s)\n", d.TreatmentPerThousand, d.ControlPerThousand, util.FormatSigned(d.NetGainPerThousand, 1))
	fmt.Fprintf(w, "  Recommendation:    %s\n", strings.ToUpper(string(d.Recommendation)))
}

func printOverview(w io.Writer, source string, o domain.Overview) {
	fmt.Fprintln(w)
	heading(w, "Overview: "+source)
	fmt.Fprintf(w, "  Records:           %d\n", o.TotalRecords)
	fmt.Fprintf(w, "  Treatment:         %d (%s)\n", o.TreatmentCount, util.FormatPercent(o.TreatmentShare))
	fmt.Fprintf(w, "  Control:           %d (%s)\n", o.ControlCount, util.FormatPercent(o.ControlShare))
	fmt.Fprintf(w, "  Converted:         %d (%s)\n", o.TotalConverted, util.FormatPercent(o.OverallRate))
	fmt.Fprintf(w, "  Duplicate rows:    %d\n", o.DuplicateRows)
	fmt.Fprintf(w, "  Duplicate users:   %d\n", o.DuplicateUsers)
	fmt.Fprintf(w, "  Missing user ids:  %d\n", o.MissingUserIDs)
}

func armRate(g *domain.GroupSummary) string {
	if g == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%d)", util.FormatPercent(g.Rate), g.Total)
}

func printBreakdown(w io.Writer, b *domain.Breakdown) {
	fmt.Fprintln(w)
	heading(w, "Breakdown by "+string(b.Dimension))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  KEY\tTREATMENT\tCONTROL\tTREATMENT HIGHER")
	for _, s := range b.Strata {
		higher := "-"
		if s.Treatment != nil && s.Control != nil {
			higher = yesNo(s.TreatmentHigher)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", s.Key, armRate(s.Treatment), armRate(s.Control), higher)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n  Treatment higher in %d of %d comparable strata\n", b.TreatmentHigher, b.Comparable)
}

func printDoseResponse(w io.Writer, d domain.DoseResponse) {
	fmt.Fprintln(w)
	heading(w, "Dose response (treatment)")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ADS\tUSERS\tCONVERTED\tRATE")
	for _, b := range d.Buckets {
		rate := util.FormatPercent(b.Rate)
		if !b.Eligible {
			rate += " (too few users)"
		}
		fmt.Fprintf(tw, "  %s\t%d\t%d\t%s\n", b.Label, b.Total, b.Conversions, rate)
	}
	_ = tw.Flush()
	if d.Optimal != nil {
		fmt.Fprintf(w, "\n  Best exposure: %s ads (%s)\n", d.Optimal.Label, util.FormatPercent(d.Optimal.Rate))
	} else {
		fmt.Fprintln(w, "\n  No exposure bucket has enough users")
	}
}

func printExperiments(w io.Writer, exps []experiments.Summary) {
	if len(exps) == 0 {
		fmt.Fprintln(w, "No experiments found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLABELS\tRECORDS\tCREATED\tHYPOTHESIS")
	for _, e := range exps {
		hypothesis := "-"
		if e.Hypothesis != nil {
			hypothesis = *e.Hypothesis
		}
		fmt.Fprintf(tw, "%s\t%s/%s\t%d\t%s\t%s\n", e.Name, e.TreatmentLabel, e.ControlLabel, e.Records, util.FormatDateTime(e.CreatedAt), hypothesis)
	}
	_ = tw.Flush()
}

func printHistory(w io.Writer, name string, runs []*domain.ReportRun) {
	if len(runs) == 0 {
		fmt.Fprintf(w, "No saved reports for %s.\n", name)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tUSERS\tLIFT\tP-VALUE\tALPHA\tRECOMMENDATION")
	for _, run := range runs {
		m := run.Report.Metrics
		fmt.Fprintf(tw, "%s\t%d\t%s%%\t%s\t%g\t%s\n",
			util.FormatDateTime(run.CreatedAt),
			m.Treatment.Total+m.Control.Total,
			util.FormatSigned(m.RelativeLiftPct, 2),
			util.FormatPValue(m.ZTest.PValue),
			run.Report.Decision.Alpha,
			run.Report.Decision.Recommendation,
		)
	}
	_ = tw.Flush()
}
