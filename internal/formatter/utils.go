package formatter

import (
	"fmt"
	"sort"

	"github.com/scanops/scandiff/internal/parser"
	"github.com/yildizm/go-termfmt"
)

// formatNumber formats numbers with commas for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return addCommas(fmt.Sprintf("%d", n))
}

// addCommas adds commas to number strings
func addCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return addCommas(s[:len(s)-3]) + "," + s[len(s)-3:]
}

// formatDelta renders a numeric delta with an explicit sign
func formatDelta(delta int) string {
	if delta > 0 {
		return fmt.Sprintf("+%d", delta)
	}
	return fmt.Sprintf("%d", delta)
}

// getLevelEmoji returns emoji for log levels using go-termfmt
func getLevelEmoji(level parser.LogLevel) string {
	opts := termfmt.DefaultOptions()
	switch level {
	case parser.LevelError:
		return termfmt.GetEmoji("error", opts)
	case parser.LevelWarn:
		return termfmt.GetEmoji("warning", opts)
	case parser.LevelInfo:
		return termfmt.GetEmoji("info", opts)
	default:
		return termfmt.GetEmoji("insight", opts)
	}
}

// sortedLanguages returns language names in alphabetical order
func sortedLanguages(languages map[string]int) []string {
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// truncateMessage shortens a message for single-line display
func truncateMessage(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
