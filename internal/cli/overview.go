package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/abtest/internal/stats"
)

var overviewCmd = &cobra.Command{
	Use:   "overview <file>",
	Short: "Summarize a dataset before analysis",
	Long: `Show group sizes, allocation shares, the overall conversion rate and
data quality counts (duplicate and missing user ids).

Examples:
  abtest overview marketing_AB.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runOverview,
}

func init() {
	rootCmd.AddCommand(overviewCmd)
	addSchemaFlags(overviewCmd)
}

func runOverview(cmd *cobra.Command, args []string) error {
	schema, err := schemaFromFlags()
	if err != nil {
		return err
	}
	ds, err := readDataset(schema, args[0])
	if err != nil {
		return err
	}

	o, err := stats.Overview(ds.Records)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return render(cmd.OutOrStdout(), o, func(w io.Writer) error {
		printOverview(w, ds.Name, o)
		return nil
	})
}
