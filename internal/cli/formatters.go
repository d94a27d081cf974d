package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/scanops/scandiff/internal/formatter"
)

// getFormatter returns the appropriate formatter for the given format
func getFormatter(format string) (formatter.Formatter, error) {
	switch format {
	case "json":
		return formatter.NewJSON(), nil
	case "markdown", "md":
		return formatter.NewMarkdown(), nil
	case "csv":
		return formatter.NewCSV(), nil
	case "text", "terminal", "":
		return formatter.NewTerminal(colorEnabled(), !noEmoji), nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// handleOutputDestination writes output to a file or stdout
func handleOutputDestination(output []byte, outputFile string) error {
	if outputFile == "" {
		fmt.Print(string(output))
		return nil
	}

	cleanPath := filepath.Clean(outputFile)
	file, err := os.Create(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", closeErr)
		}
	}()

	if _, err := file.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file: %w", err)
	}

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Output saved to: %s\n", cleanPath)
	}
	return nil
}
