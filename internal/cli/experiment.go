package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/abtest/internal/adapters/csvsource"
	"github.com/emiliopalmerini/abtest/internal/domain"
	"github.com/emiliopalmerini/abtest/internal/experiments"
	"github.com/emiliopalmerini/abtest/internal/stats"
	"github.com/emiliopalmerini/abtest/internal/util"
)

var experimentCmd = &cobra.Command{
	Use:   "experiment",
	Short: "Manage stored experiments",
	Long:  `Create experiments, import datasets into them and keep a history of their reports.`,
}

var experimentCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new experiment",
	Long: `Create a new experiment.

Examples:
  abtest experiment create "spring-campaign" --hypothesis "Ads convert better than PSAs"
  abtest experiment create "checkout" --treatment-label B --control-label A`,
	Args: cobra.ExactArgs(1),
	RunE: runExperimentCreate,
}

var experimentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all experiments",
	RunE:  runExperimentList,
}

var experimentDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an experiment",
	Long:  `Delete an experiment together with its imported records and saved reports.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExperimentDelete,
}

var experimentImportCmd = &cobra.Command{
	Use:   "import <name> <file>",
	Short: "Import a dataset into an experiment",
	Long: `Read a CSV dataset using the experiment's group labels and append its
records to the experiment.

Examples:
  abtest experiment import "spring-campaign" marketing_AB.csv`,
	Args: cobra.ExactArgs(2),
	RunE: runExperimentImport,
}

var experimentReportCmd = &cobra.Command{
	Use:   "report <name>",
	Short: "Compute and save a report for an experiment",
	Long: `Aggregate the stored records of an experiment, compute the statistics and
the recommendation, save the run to the history and export its metrics when
OTEL export is enabled.

Examples:
  abtest experiment report "spring-campaign"
  abtest experiment report "spring-campaign" --alpha 0.01 --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runExperimentReport,
}

var experimentSourcesCmd = &cobra.Command{
	Use:   "sources <name>",
	Short: "List the archived source files of an experiment",
	Long: `List the source files archived when records were imported into an
experiment. With --analyze, read one archived file again and report on it
alone, without touching the stored records.

Examples:
  abtest experiment sources "spring-campaign"
  abtest experiment sources "spring-campaign" --analyze 20260301T120000Z-week1.csv.gz`,
	Args: cobra.ExactArgs(1),
	RunE: runExperimentSources,
}

var experimentHistoryCmd = &cobra.Command{
	Use:   "history <name>",
	Short: "List saved reports of an experiment",
	Args:  cobra.ExactArgs(1),
	RunE:  runExperimentHistory,
}

// Flags
var (
	expDescription    string
	expHypothesis     string
	expTreatmentLabel string
	expControlLabel   string
	reportDryRun      bool
	historyLimit      int
	historyLatest     bool
	sourceAnalyze     string
)

func init() {
	rootCmd.AddCommand(experimentCmd)

	experimentCmd.AddCommand(experimentCreateCmd)
	experimentCmd.AddCommand(experimentListCmd)
	experimentCmd.AddCommand(experimentDeleteCmd)
	experimentCmd.AddCommand(experimentImportCmd)
	experimentCmd.AddCommand(experimentReportCmd)
	experimentCmd.AddCommand(experimentHistoryCmd)
	experimentCmd.AddCommand(experimentSourcesCmd)

	experimentCreateCmd.Flags().StringVarP(&expDescription, "description", "d", "", "Description of the experiment")
	experimentCreateCmd.Flags().StringVarP(&expHypothesis, "hypothesis", "H", "", "Hypothesis to test")
	experimentCreateCmd.Flags().StringVar(&expTreatmentLabel, "treatment-label", "", "Label of the treatment group in imported files (default \"ad\")")
	experimentCreateCmd.Flags().StringVar(&expControlLabel, "control-label", "", "Label of the control group in imported files (default \"psa\")")

	addSchemaFlags(experimentImportCmd)

	experimentReportCmd.Flags().BoolVar(&reportDryRun, "dry-run", false, "Compute the report without saving or exporting it")
	experimentHistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	experimentHistoryCmd.Flags().BoolVar(&historyLatest, "latest", false, "Show only the most recent saved report in full")

	addSchemaFlags(experimentSourcesCmd)
	experimentSourcesCmd.Flags().StringVar(&sourceAnalyze, "analyze", "", "Analyze the archived source with this path or file name")
}

// experimentError maps lookup failures to a command error. Data errors keep
// their own exit code.
func experimentError(err error) error {
	if errors.Is(err, experiments.ErrNotFound) || errors.Is(err, experiments.ErrAlreadyExists) ||
		errors.Is(err, experiments.ErrNoReports) || errors.Is(err, experiments.ErrNoSource) {
		return &ExitError{Code: ExitCommandError, Err: err}
	}
	return err
}

func runExperimentCreate(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, app *AppContext) error {
		exp, err := app.Service.Create(ctx, experiments.CreateParams{
			Name:           args[0],
			Description:    expDescription,
			Hypothesis:     expHypothesis,
			TreatmentLabel: expTreatmentLabel,
			ControlLabel:   expControlLabel,
		})
		if err != nil {
			return experimentError(err)
		}
		return render(cmd.OutOrStdout(), exp, func(w io.Writer) error {
			fmt.Fprintf(w, "Created experiment: %s (labels %s/%s)\n", exp.Name, exp.TreatmentLabel, exp.ControlLabel)
			return nil
		})
	})
}

func runExperimentList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, app *AppContext) error {
		exps, err := app.Service.Summaries(ctx)
		if err != nil {
			return fmt.Errorf("failed to list experiments: %w", err)
		}
		return render(cmd.OutOrStdout(), exps, func(w io.Writer) error {
			printExperiments(w, exps)
			return nil
		})
	})
}

func runExperimentDelete(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, app *AppContext) error {
		if err := app.Service.Delete(ctx, args[0]); err != nil {
			return experimentError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted experiment: %s\n", args[0])
		return nil
	})
}

func runExperimentImport(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, app *AppContext) error {
		name, path := args[0], args[1]
		exp, err := app.Service.Get(ctx, name)
		if err != nil {
			return experimentError(err)
		}

		schema, err := experimentSchema(cmd, exp)
		if err != nil {
			return err
		}

		ds, err := readDataset(schema, path)
		if err != nil {
			return err
		}
		n, err := app.Service.Import(ctx, name, ds)
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records into %s\n", n, name)

		stored, err := app.Service.ArchiveSource(ctx, name, path)
		if err != nil {
			app.Logger.Warn("failed to archive dataset", "path", path, "error", err)
		} else if stored != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Archived source as %s\n", stored)
		}
		return nil
	})
}

func runExperimentReport(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, app *AppContext) error {
		alpha, err := resolveAlpha(cmd, app.Config)
		if err != nil {
			return err
		}
		run, err := app.Service.Report(ctx, args[0], alpha, !reportDryRun)
		if err != nil {
			return experimentError(err)
		}
		return render(cmd.OutOrStdout(), run, func(w io.Writer) error {
			printReport(w, &run.Report)
			return nil
		})
	})
}

// experimentSchema builds the reader schema from the flags. The experiment's
// labels apply unless overridden on the command line.
func experimentSchema(cmd *cobra.Command, exp *domain.Experiment) (csvsource.Schema, error) {
	schema, err := schemaFromFlags()
	if err != nil {
		return schema, err
	}
	if !cmd.Flags().Changed("treatment-label") {
		schema.TreatmentLabel = exp.TreatmentLabel
	}
	if !cmd.Flags().Changed("control-label") {
		schema.ControlLabel = exp.ControlLabel
	}
	return schema, nil
}

func runExperimentHistory(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, app *AppContext) error {
		if historyLatest {
			run, err := app.Service.Latest(ctx, args[0])
			if err != nil {
				return experimentError(err)
			}
			return render(cmd.OutOrStdout(), run, func(w io.Writer) error {
				fmt.Fprintf(w, "Saved %s (run %s)\n", util.FormatDateTime(run.CreatedAt), run.ID)
				printReport(w, &run.Report)
				return nil
			})
		}

		runs, err := app.Service.History(ctx, args[0], historyLimit)
		if err != nil {
			return experimentError(err)
		}
		return render(cmd.OutOrStdout(), runs, func(w io.Writer) error {
			printHistory(w, args[0], runs)
			return nil
		})
	})
}

func runExperimentSources(cmd *cobra.Command, args []string) error {
	if sourceAnalyze != "" {
		return runSourceAnalyze(cmd, args[0], sourceAnalyze)
	}
	return withApp(cmd, func(ctx context.Context, app *AppContext) error {
		sources, err := app.Service.Sources(ctx, args[0])
		if err != nil {
			return experimentError(err)
		}
		if sources == nil {
			sources = []string{}
		}
		return render(cmd.OutOrStdout(), sources, func(w io.Writer) error {
			if len(sources) == 0 {
				fmt.Fprintf(w, "No archived sources for %s.\n", args[0])
				return nil
			}
			for _, s := range sources {
				fmt.Fprintln(w, s)
			}
			return nil
		})
	})
}

func runSourceAnalyze(cmd *cobra.Command, name, source string) error {
	return withApp(cmd, func(ctx context.Context, app *AppContext) error {
		alpha, err := resolveAlpha(cmd, app.Config)
		if err != nil {
			return err
		}
		exp, rc, err := app.Service.OpenSource(ctx, name, source)
		if err != nil {
			return experimentError(err)
		}
		defer rc.Close()

		schema, err := experimentSchema(cmd, exp)
		if err != nil {
			return err
		}
		ds, err := csvsource.NewReader(schema).Read(rc, filepath.Base(source))
		if err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
		report, err := stats.Analyze(*ds, alpha)
		if err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
		return render(cmd.OutOrStdout(), report, func(w io.Writer) error {
			printReport(w, report)
			return nil
		})
	})
}
