package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/scanops/scandiff/internal/analyzer"
	"github.com/scanops/scandiff/internal/parser"
)

// readLogContent returns the full content of a log file, or of stdin when
// filename is "-".
func readLogContent(filename string) (string, error) {
	if filename == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	if err := validateFilePath(filename); err != nil {
		return "", fmt.Errorf("invalid file path: %w", err)
	}

	cleanPath := filepath.Clean(filename)
	maxSize := int64(GetGlobalConfig().Analysis.MaxFileSizeMB) * 1024 * 1024
	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", fmt.Errorf("cannot access file: %w", err)
	}
	if info.Size() > maxSize {
		return "", fmt.Errorf("file %s is %d bytes, above the configured limit of %d MB",
			cleanPath, info.Size(), GetGlobalConfig().Analysis.MaxFileSizeMB)
	}

	// #nosec G304 - path is validated above
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Read %d bytes from %s\n", len(data), cleanPath)
	}
	return string(data), nil
}

// validateFilePath validates that a path points at a readable regular file
func validateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)
	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", cleanPath)
		}
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", cleanPath)
	}
	return nil
}

// resolveFormat turns the --format flag (or config default) into a parser
// format, running detection for "auto". DAST is never auto-detected; it has
// to be requested explicitly.
func resolveFormat(flagValue, content string) (parser.Format, error) {
	format := flagValue
	if format == "" || format == "auto" {
		format = GetGlobalConfig().Analysis.Format
	}

	switch format {
	case "", "auto":
		detected := parser.Detect(content)
		if isVerbose() {
			fmt.Fprintf(os.Stderr, "Detected format: %s\n", detected.Label())
		}
		return detected, nil
	case "cxone":
		return parser.FormatCxOne, nil
	case "cxone_sast":
		return parser.FormatCxOneSAST, nil
	case "cxsast":
		return parser.FormatCxSAST, nil
	case "dast":
		return parser.FormatDAST, nil
	default:
		return "", fmt.Errorf("unknown format %s. Available formats: auto, cxone, cxone_sast, cxsast, dast", format)
	}
}

// analyzeContent routes content to the extractor for its format
func analyzeContent(content string, format parser.Format) *analyzer.Result {
	markers := GetGlobalConfig().EffectiveMarkers()
	switch format {
	case parser.FormatCxSAST, parser.FormatCxOneSAST:
		return analyzer.AnalyzeSAST(content, format, markers...)
	case parser.FormatDAST:
		return analyzer.AnalyzeDAST(content, markers...)
	default:
		return analyzer.AnalyzeEngine(content, markers...)
	}
}
