package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag of the command tree to its default so tests
// do not leak state through the package-level flag variables.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// useTempDB points the configuration at a fresh database file.
func useTempDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "abtest.db")
	t.Setenv("ABTEST_DATABASE_PATH", path)
	t.Setenv("ABTEST_ARCHIVE_DIR", "")
	t.Setenv("ABTEST_DATABASE_URL", "")
	t.Setenv("ABTEST_OTEL_ENABLED", "false")
	t.Setenv("ABTEST_ALPHA", "0.05")
	return path
}

// run executes the root command with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

var days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// writeDataset writes a marketing-style CSV with the given conversion counts.
func writeDataset(t *testing.T, name string, tConv, tTotal, cConv, cTotal int) string {
	t.Helper()

	var b strings.Builder
	b.WriteString(",user id,test group,converted,total ads,most ads day,most ads hour\n")
	row := 0
	write := func(group string, conv, total int) {
		for i := 0; i < total; i++ {
			converted := "False"
			if i < conv {
				converted = "True"
			}
			fmt.Fprintf(&b, "%d,%d,%s,%s,%d,%s,%d\n", row, 1000000+row, group, converted, 1+i%180, days[i%len(days)], i%24)
			row++
		}
	}
	write("ad", tConv, tTotal)
	write("psa", cConv, cTotal)

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("failed to write dataset: %v", err)
	}
	return path
}
