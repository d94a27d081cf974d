package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/yildizm/go-logparser"

	"github.com/scanops/scandiff/internal/analyzer"
	"github.com/scanops/scandiff/internal/logger"
	"github.com/scanops/scandiff/internal/parser"
)

var (
	watchFormat string
	watchFilter string
	watchLevels []string

	watchLog = logger.New("watch", isVerbose)
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [file]",
		Short: "Watch a scan log for new entries in real time",
		Long: `Monitor a growing scan log and print warnings and errors as they are
written. Lines in the scan-engine grammar are parsed with the selected
format; anything else falls back to a generic log parser so that wrapper
and orchestrator output still surfaces.

Press Ctrl+C to stop watching.

Examples:
  scandiff watch engine.log
  scandiff watch --format dast zap.log
  scandiff watch --filter "Queries" --level ERROR engine.log`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().StringVarP(&watchFormat, "format", "f", "auto", "log format (auto, cxone, cxone_sast, cxsast, dast)")
	cmd.Flags().StringVar(&watchFilter, "filter", "", "case-insensitive substring filter")
	cmd.Flags().StringSliceVar(&watchLevels, "level", nil, "only show these log levels (e.g. ERROR,WARN)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	filename := args[0]

	cfg := GetGlobalConfig()
	if watchFilter == "" {
		watchFilter = cfg.Watch.Filter
	}
	if len(watchLevels) == 0 {
		watchLevels = cfg.Watch.Levels
	}

	watcher, file, cleanup, err := setupFileWatcher(filename)
	if err != nil {
		return err
	}
	defer cleanup()

	format, err := resolveWatchFormat(filename)
	if err != nil {
		return err
	}

	return runWatchLoop(watcher, file, format)
}

// resolveWatchFormat picks the line grammar for watched output. Auto mode
// detects from the file's existing content; an empty file defaults to the
// generic cloud format until restarted.
func resolveWatchFormat(filename string) (parser.Format, error) {
	if watchFormat != "auto" && watchFormat != "" {
		return resolveFormat(watchFormat, "")
	}

	// #nosec G304 - path is validated by setupFileWatcher
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read file for detection: %w", err)
	}
	detected := parser.Detect(string(data))
	watchLog.Info("detected format: %s", detected.Label())
	return detected, nil
}

// processNewLines reads lines appended since the last event and prints the
// ones worth surfacing
func processNewLines(file *os.File, format parser.Format, fallback logparser.Parser) (logparser.Parser, error) {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var newLines []string
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			newLines = append(newLines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fallback, fmt.Errorf("scanner error: %w", err)
	}
	if len(newLines) == 0 {
		return fallback, nil
	}

	newLines = analyzer.FilterLines(newLines, watchFilter, watchLevels)

	var unmatched []string
	for _, line := range newLines {
		entry, ok := parseScanLine(line, format)
		if !ok {
			unmatched = append(unmatched, line)
			continue
		}
		if entry.Level >= parser.LevelWarn || len(watchLevels) > 0 {
			fmt.Printf("[%s] %s: %s\n", entry.Timestamp, entry.Level, entry.Message)
		}
	}

	// Non-grammar lines still matter when they carry warnings
	if len(unmatched) > 0 {
		if fallback == nil {
			fallback = logparser.New()
		}
		entries, err := fallback.ParseString(strings.Join(unmatched, "\n"))
		if err != nil {
			watchLog.Debug("failed to parse %d lines: %v", len(unmatched), err)
			return fallback, nil
		}
		for i := range entries {
			level := parser.ParseLogLevel(entries[i].Level)
			if level >= parser.LevelWarn || len(watchLevels) > 0 {
				timestamp := entries[i].Timestamp.Format("15:04:05")
				fmt.Printf("[%s] %s: %s\n", timestamp, level, entries[i].Message)
			}
		}
	}

	return fallback, nil
}

func parseScanLine(line string, format parser.Format) (*parser.LogLine, bool) {
	if format == parser.FormatDAST {
		return parser.ParseDASTLine(line)
	}
	return parser.ParseEngineLine(line)
}

// cleanupWatcher safely closes watcher with error logging
func cleanupWatcher(watcher *fsnotify.Watcher) {
	if err := watcher.Close(); err != nil {
		watchLog.Debug("failed to close watcher: %v", err)
	}
}

// cleanupFile safely closes file with error logging
func cleanupFile(file *os.File) {
	if err := file.Close(); err != nil {
		watchLog.Debug("failed to close file: %v", err)
	}
}

// createWatcher creates and configures a new file system watcher
func createWatcher(filename string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filename); err != nil {
		cleanupWatcher(watcher)
		return nil, fmt.Errorf("failed to watch file: %w", err)
	}

	return watcher, nil
}

// openWatchFile opens and seeks to the end of the watched file
func openWatchFile(filename string) (*os.File, error) {
	// #nosec G304 - path is validated by caller
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		cleanupFile(file)
		return nil, fmt.Errorf("failed to seek to end of file: %w", err)
	}

	return file, nil
}

// setupFileWatcher creates and configures file watcher
func setupFileWatcher(filename string) (*fsnotify.Watcher, *os.File, func(), error) {
	if err := validateWatchFilePath(filename); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid file path: %w", err)
	}

	watchLog.Info("watching %s, press Ctrl+C to stop", filename)

	watcher, err := createWatcher(filename)
	if err != nil {
		return nil, nil, nil, err
	}

	file, err := openWatchFile(filename)
	if err != nil {
		cleanupWatcher(watcher)
		return nil, nil, nil, err
	}

	cleanup := func() {
		cleanupWatcher(watcher)
		cleanupFile(file)
	}

	return watcher, file, cleanup, nil
}

// runWatchLoop runs the main watch loop with signal handling
func runWatchLoop(watcher *fsnotify.Watcher, file *os.File, format parser.Format) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	var fallback logparser.Parser

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-signals:
			watchLog.Info("received interrupt signal, stopping")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Write == fsnotify.Write {
				updated, err := processNewLines(file, format, fallback)
				if err != nil {
					watchLog.Warn("error handling event: %v", err)
				} else {
					fallback = updated
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			watchLog.Warn("watcher error: %v", err)
		}
	}
}

// validateWatchFilePath validates that a file path is safe to watch
func validateWatchFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot watch directory, must be a file")
	}

	return nil
}
