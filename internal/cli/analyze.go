package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	analyzeFormat     string
	analyzeOutputFile string
)

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze a scan-engine log file",
		Long: `Analyze a scan log and extract structured facts: scan metadata,
executed queries, processed files, errors, phases and memory usage.

The log format is auto-detected unless --format is given. DAST logs are
never auto-detected and must be requested with --format dast. Use "-" as
the file name to read from stdin.

Examples:
  scandiff analyze engine.log
  scandiff analyze --format cxsast onprem-scan.log
  scandiff analyze --format dast zap.log
  cat engine.log | scandiff analyze -`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().StringVarP(&analyzeFormat, "format", "f", "auto", "log format (auto, cxone, cxone_sast, cxsast, dast)")
	cmd.Flags().StringVar(&analyzeOutputFile, "output-file", "", "save output to file instead of stdout")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	content, err := readLogContent(args[0])
	if err != nil {
		return err
	}
	if content == "" {
		return fmt.Errorf("no log content found")
	}

	format, err := resolveFormat(analyzeFormat, content)
	if err != nil {
		return err
	}

	result := analyzeContent(content, format)
	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Parsed %d of %d lines\n", result.ParsedLines, result.TotalLines)
	}

	f, err := getFormatter(getOutputFormat())
	if err != nil {
		return err
	}
	output, err := f.FormatAnalysis(result)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	return handleOutputDestination(output, analyzeOutputFile)
}
