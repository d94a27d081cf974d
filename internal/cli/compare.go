package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scanops/scandiff/internal/compare"
	"github.com/scanops/scandiff/internal/normalize"
)

var (
	compareFormatA    string
	compareFormatB    string
	compareOutputFile string
)

func newCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <fileA> <fileB>",
		Short: "Compare two scan logs",
		Long: `Analyze two scan logs, normalize both into a common shape and diff them:
summary metrics with deltas, file-set differences, per-query result changes
and error samples.

The two logs may come from different runtimes; a CxOne cloud run can be
compared against a CxSAST on-prem run of the same project. Files are matched
by basename so relocated checkouts still line up.

Examples:
  scandiff compare baseline.log current.log
  scandiff compare --format-a cxsast --format-b cxone_sast old.log new.log
  scandiff compare -o json baseline.log current.log`,
		Args: cobra.ExactArgs(2),
		RunE: runCompare,
	}

	cmd.Flags().StringVar(&compareFormatA, "format-a", "auto", "log format of the first file")
	cmd.Flags().StringVar(&compareFormatB, "format-b", "auto", "log format of the second file")
	cmd.Flags().StringVar(&compareOutputFile, "output-file", "", "save output to file instead of stdout")

	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
	a, err := loadNormalized(args[0], compareFormatA)
	if err != nil {
		return fmt.Errorf("file A: %w", err)
	}
	b, err := loadNormalized(args[1], compareFormatB)
	if err != nil {
		return fmt.Errorf("file B: %w", err)
	}

	result := compare.Compare(a, b)

	f, err := getFormatter(getOutputFormat())
	if err != nil {
		return err
	}
	output, err := f.FormatComparison(result)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	return handleOutputDestination(output, compareOutputFile)
}

func loadNormalized(filename, formatFlag string) (*normalize.Analysis, error) {
	content, err := readLogContent(filename)
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, fmt.Errorf("no log content found")
	}

	format, err := resolveFormat(formatFlag, content)
	if err != nil {
		return nil, err
	}

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Analyzing %s as %s\n", filename, format.Label())
	}
	return normalize.Normalize(analyzeContent(content, format)), nil
}
