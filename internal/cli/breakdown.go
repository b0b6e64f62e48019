package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/abtest/internal/domain"
	"github.com/emiliopalmerini/abtest/internal/stats"
)

var breakdownCmd = &cobra.Command{
	Use:   "breakdown <file>",
	Short: "Compare groups within each day, hour or exposure level",
	Long: `Stratify the dataset on a covariate and compare treatment and control
inside each stratum. With --by exposure the treatment dose-response curve is
shown as well.

Examples:
  abtest breakdown marketing_AB.csv --by day
  abtest breakdown marketing_AB.csv --by exposure --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runBreakdown,
}

var breakdownBy string

// breakdownResult is the machine-readable output of the breakdown command.
type breakdownResult struct {
	Breakdown    *domain.Breakdown    `json:"breakdown" yaml:"breakdown"`
	DoseResponse *domain.DoseResponse `json:"dose_response,omitempty" yaml:"dose_response,omitempty"`
}

func init() {
	rootCmd.AddCommand(breakdownCmd)
	addSchemaFlags(breakdownCmd)
	breakdownCmd.Flags().StringVar(&breakdownBy, "by", string(domain.ByDay), "Dimension: day, hour or exposure")
}

func runBreakdown(cmd *cobra.Command, args []string) error {
	dim := domain.Dimension(breakdownBy)
	switch dim {
	case domain.ByDay, domain.ByHour, domain.ByExposure:
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown dimension %q (expected day, hour or exposure)", breakdownBy))
	}

	schema, err := schemaFromFlags()
	if err != nil {
		return err
	}
	ds, err := readDataset(schema, args[0])
	if err != nil {
		return err
	}

	b, err := stats.Breakdown(ds.Records, dim)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	result := breakdownResult{Breakdown: b}
	if dim == domain.ByExposure {
		dose := stats.DoseResponse(ds.Records)
		result.DoseResponse = &dose
	}

	return render(cmd.OutOrStdout(), result, func(w io.Writer) error {
		printBreakdown(w, b)
		if result.DoseResponse != nil {
			printDoseResponse(w, *result.DoseResponse)
		}
		return nil
	})
}
