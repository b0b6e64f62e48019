package cli

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/abtest/internal/adapters/csvsource"
	"github.com/emiliopalmerini/abtest/internal/domain"
)

// Schema flags shared by every command that reads a CSV file.
var (
	groupColumn     string
	convertedColumn string
	treatmentLabel  string
	controlLabel    string
	delimiter       string
)

func addSchemaFlags(cmd *cobra.Command) {
	defaults := csvsource.DefaultSchema()
	cmd.Flags().StringVar(&groupColumn, "group-column", defaults.GroupColumn, "Column holding the assignment label")
	cmd.Flags().StringVar(&convertedColumn, "converted-column", defaults.ConvertedColumn, "Column holding the conversion outcome")
	cmd.Flags().StringVar(&treatmentLabel, "treatment-label", defaults.TreatmentLabel, "Label of the treatment group")
	cmd.Flags().StringVar(&controlLabel, "control-label", defaults.ControlLabel, "Label of the control group")
	cmd.Flags().StringVar(&delimiter, "delimiter", ",", "Field delimiter (a single character)")
}

// schemaFromFlags builds the reader schema from the default layout and the
// schema flags.
func schemaFromFlags() (csvsource.Schema, error) {
	schema := csvsource.DefaultSchema()
	schema.GroupColumn = groupColumn
	schema.ConvertedColumn = convertedColumn
	schema.TreatmentLabel = treatmentLabel
	schema.ControlLabel = controlLabel

	delim := delimiter
	if delim == `\t` {
		delim = "\t"
	}
	comma, size := utf8.DecodeRuneInString(delim)
	if size == 0 || size != len(delim) {
		return schema, NewExitError(ExitCommandError, fmt.Sprintf("delimiter must be a single character, got %q", delimiter))
	}
	schema.Comma = comma

	if schema.TreatmentLabel == schema.ControlLabel {
		return schema, NewExitError(ExitCommandError, fmt.Sprintf("treatment and control labels must differ, both are %q", schema.TreatmentLabel))
	}
	return schema, nil
}

func readDataset(schema csvsource.Schema, path string) (*domain.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "cannot read dataset", err)
	}
	ds, err := csvsource.NewReader(schema).ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}
