package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scanops/scandiff/internal/parser"
)

func newDetectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "detect [file]",
		Short: "Detect the format of a scan log",
		Long: `Classify a scan log as CxOne cloud SAST, CxSAST on-prem, or generic
CxOne format. Only the first 150 lines are inspected.

Detection never fails: an unrecognized log is reported as generic CxOne.
DAST logs are not part of detection; they are selected explicitly with
--format dast on the other commands.

Examples:
  scandiff detect engine.log
  cat engine.log | scandiff detect -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readLogContent(args[0])
			if err != nil {
				return err
			}

			format := parser.Detect(content)
			fmt.Printf("%s (%s)\n", format.Label(), format)
			return nil
		},
	}
}
