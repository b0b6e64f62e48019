package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/abtest/internal/domain"
	"github.com/emiliopalmerini/abtest/internal/stats"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>...",
	Short: "Analyze one or more A/B test datasets",
	Long: `Compute conversion rates, significance tests, effect size and a
recommendation for each dataset. Files are analyzed concurrently and printed in
the order given.

Examples:
  abtest analyze marketing_AB.csv
  abtest analyze q1.csv q2.csv --format json
  abtest analyze export.csv --group-column variant --treatment-label B --control-label A`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addSchemaFlags(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	alpha, err := resolveAlpha(cmd, cfg)
	if err != nil {
		return err
	}
	schema, err := schemaFromFlags()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	reports, err := analyzeFiles(ctx, args, func(path string) (*domain.Report, error) {
		ds, err := readDataset(schema, path)
		if err != nil {
			return nil, err
		}
		report, err := stats.Analyze(*ds, alpha)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, w := range report.Metrics.Warnings {
			slog.Warn("degenerate conversion rate", "source", ds.Name, "group", w.Group, "rate", w.Rate)
		}
		return report, nil
	})
	if err != nil {
		return err
	}

	var out any = reports
	if len(reports) == 1 {
		out = reports[0]
	}
	return render(cmd.OutOrStdout(), out, func(w io.Writer) error {
		for i, r := range reports {
			if i > 0 {
				fmt.Fprintln(w)
			}
			printReport(w, r)
		}
		return nil
	})
}

// analyzeFiles runs fn over every path concurrently and returns the results in
// argument order. The first error cancels the rest.
func analyzeFiles(ctx context.Context, paths []string, fn func(string) (*domain.Report, error)) ([]*domain.Report, error) {
	reports := make([]*domain.Report, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := fn(path)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
