package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/abtest/internal/adapters/csvsource"
)

var experimentExportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Export the stored records of an experiment as CSV",
	Long: `Write every stored record of an experiment as CSV, using the experiment's
group labels, so the file can be analyzed or imported again.

Examples:
  abtest experiment export "spring-campaign" --output spring.csv
  abtest experiment export "spring-campaign" | abtest analyze /dev/stdin`,
	Args: cobra.ExactArgs(1),
	RunE: runExperimentExport,
}

var exportOutput string

func init() {
	experimentCmd.AddCommand(experimentExportCmd)
	experimentExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
}

func runExperimentExport(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, app *AppContext) error {
		exp, ds, err := app.Service.Dataset(ctx, args[0])
		if err != nil {
			return experimentError(err)
		}

		schema := csvsource.DefaultSchema()
		schema.TreatmentLabel = exp.TreatmentLabel
		schema.ControlLabel = exp.ControlLabel

		write := func(w io.Writer) error {
			return csvsource.NewWriter(schema).Write(w, ds.Records)
		}
		if exportOutput == "" {
			return write(cmd.OutOrStdout())
		}

		f, err := os.Create(exportOutput)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create output file", err)
		}
		if err := writeAndClose(f, write); err != nil {
			return WrapExitError(ExitCommandError, "failed to write "+exportOutput, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d records to %s\n", len(ds.Records), exportOutput)
		return nil
	})
}

// writeAndClose runs write against wc and reports the close error, which is
// where buffered file writes surface.
func writeAndClose(wc io.WriteCloser, write func(io.Writer) error) error {
	if err := write(wc); err != nil {
		_ = wc.Close()
		return err
	}
	return wc.Close()
}
