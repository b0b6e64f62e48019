package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/abtest/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "abtest",
	Short: "Statistical inference for conversion A/B tests",
	Long: `abtest measures whether a treatment (e.g. an ad) converts better than a
control (e.g. a public service announcement).

It computes conversion rates, a one-sided two-proportion z-test, a chi-square
test of independence, confidence intervals and Cohen's h, then recommends
whether to implement the treatment. Datasets can be analyzed directly from CSV
files or imported into experiments and reported on over time.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Global flags
var (
	outputFormat string
	verbose      bool
	noColor      bool
	alphaFlag    float64
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", formatText, "Output format: text, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored log output")
	rootCmd.PersistentFlags().Float64Var(&alphaFlag, "alpha", 0.05, "Significance level (overrides ABTEST_ALPHA)")
}

func setup(cmd *cobra.Command, args []string) error {
	switch outputFormat {
	case formatText, formatJSON, formatYAML:
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown format %q (expected text, json or yaml)", outputFormat))
	}
	logging.Setup(cmd.ErrOrStderr(), logging.Options{Verbose: verbose, NoColor: noColor})
	return nil
}

// Execute runs the root command and exits with the code matching the error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(ExitCode(err))
	}
}
