package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/go-termfmt"

	"github.com/scanops/scandiff/internal/analyzer"
	"github.com/scanops/scandiff/internal/compare"
	"github.com/scanops/scandiff/internal/normalize"
)

const (
	maxTerminalQueries = 10
	maxTerminalErrors  = 5
)

// terminalFormatter formats output as plain text for terminal display using
// go-termfmt trees and lipgloss styling
type terminalFormatter struct {
	opts        *termfmt.TerminalOptions
	headerStyle lipgloss.Style
	labelStyle  lipgloss.Style
	plusStyle   lipgloss.Style
	minusStyle  lipgloss.Style
}

// NewTerminal creates a new terminal formatter with optional color and
// emoji support
func NewTerminal(color, emoji bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = emoji

	f := &terminalFormatter{opts: opts}
	if color {
		f.headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
		f.labelStyle = lipgloss.NewStyle().Bold(true)
		f.plusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
		f.minusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	} else {
		f.headerStyle = lipgloss.NewStyle()
		f.labelStyle = lipgloss.NewStyle()
		f.plusStyle = lipgloss.NewStyle()
		f.minusStyle = lipgloss.NewStyle()
	}
	return f
}

func (f *terminalFormatter) FormatAnalysis(result *analyzer.Result) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b, fmt.Sprintf("Scan Log Analysis - %s", result.Format.Label()))
	f.writeScanInfo(&b, result)
	f.writeQueries(&b, result)
	f.writePhases(&b, result)
	f.writeDAST(&b, result)
	f.writeIssues(&b, result)
	f.writeMarkers(&b, result)

	return []byte(b.String()), nil
}

func (f *terminalFormatter) FormatComparison(result *compare.Result) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b, "Scan Log Comparison")
	f.writeComparisonSummary(&b, result)
	f.writeFilesDiff(&b, &result.Files)
	f.writeQueriesDiff(&b, &result.Queries)
	f.writeErrorsDiff(&b, &result.Errors)

	return []byte(b.String()), nil
}

// writeHeader writes a box-drawn header
func (f *terminalFormatter) writeHeader(b *strings.Builder, header string) {
	styled := f.headerStyle.Render(header)
	b.WriteString("╔" + strings.Repeat("═", len(header)+2) + "╗\n")
	b.WriteString("║ " + styled + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", len(header)+2) + "╝\n\n")
}

func (f *terminalFormatter) writeScanInfo(b *strings.Builder, result *analyzer.Result) {
	symbol := termfmt.GetEmoji("statistics", f.opts)
	b.WriteString(symbol + " Scan Overview\n")

	info := result.ScanInfo
	items := []termfmt.TreeItem{
		{Label: "Lines", Value: fmt.Sprintf("%s parsed of %s", formatNumber(result.ParsedLines), formatNumber(result.TotalLines))},
	}
	if info.ProjectName != "" {
		items = append(items, termfmt.TreeItem{Label: "Project", Value: info.ProjectName})
	}
	if info.Version != "" {
		items = append(items, termfmt.TreeItem{Label: "Engine Version", Value: info.Version})
	}
	if info.Hostname != "" {
		items = append(items, termfmt.TreeItem{Label: "Host", Value: info.Hostname})
	}
	if info.OS != "" {
		items = append(items, termfmt.TreeItem{Label: "OS", Value: info.OS})
	}
	if info.Processors > 0 {
		items = append(items, termfmt.TreeItem{Label: "Processors", Value: fmt.Sprintf("%d", info.Processors)})
	}
	if result.PeakMemory > 0 {
		items = append(items, termfmt.TreeItem{Label: "Peak Memory", Value: formatNumber(result.PeakMemory) + " MB"})
	}
	if result.ScannedLOC > 0 {
		items = append(items, termfmt.TreeItem{Label: "Scanned LOC", Value: formatNumber(result.ScannedLOC)})
	}
	if len(result.Files) > 0 {
		items = append(items, termfmt.TreeItem{Label: "Files Processed", Value: formatNumber(len(result.Files))})
	}
	items = append(items,
		termfmt.TreeItem{Label: "Scan Mode", Value: normalize.ScanModeLabel(info)},
		termfmt.TreeItem{Label: "Elapsed", Value: normalize.FormatElapsed(result.TotalElapsed), Last: true},
	)

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

func (f *terminalFormatter) writeQueries(b *strings.Builder, result *analyzer.Result) {
	if len(result.Queries) == 0 {
		return
	}

	symbol := termfmt.GetEmoji("insights", f.opts)
	fmt.Fprintf(b, "%s Queries (%d total, %d failed)\n",
		symbol, len(result.Queries), result.FailedQueries())

	// Top queries by result count
	sorted := make([]analyzer.QueryRecord, len(result.Queries))
	copy(sorted, result.Queries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Results > sorted[j].Results
	})

	n := len(sorted)
	if n > maxTerminalQueries {
		n = maxTerminalQueries
	}
	items := make([]termfmt.TreeItem, 0, n)
	for i := 0; i < n; i++ {
		q := sorted[i]
		name := q.Language + "." + q.Name
		value := fmt.Sprintf("%d results", q.Results)
		if q.Status != "" && q.Status != "success" {
			value = q.Status
		}
		items = append(items, termfmt.TreeItem{
			Label: name,
			Value: value,
			Last:  i == n-1,
		})
	}
	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n")
	if result.QueryTotals.TotalResults > 0 {
		fmt.Fprintf(b, "Total results: %s\n", formatNumber(result.QueryTotals.TotalResults))
	}
	b.WriteString("\n")
}

func (f *terminalFormatter) writePhases(b *strings.Builder, result *analyzer.Result) {
	if len(result.PhaseCounts) == 0 {
		return
	}

	b.WriteString("Phases\n")
	names := make([]string, 0, len(result.PhaseCounts))
	for name := range result.PhaseCounts {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]termfmt.TreeItem, 0, len(names))
	for i, name := range names {
		items = append(items, termfmt.TreeItem{
			Label: name,
			Value: fmt.Sprintf("%d lines", result.PhaseCounts[name]),
			Last:  i == len(names)-1,
		})
	}
	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

func (f *terminalFormatter) writeDAST(b *strings.Builder, result *analyzer.Result) {
	if result.DAST == nil {
		return
	}
	dast := result.DAST

	b.WriteString("Dynamic Scan\n")
	items := []termfmt.TreeItem{
		{Label: "Jobs", Value: fmt.Sprintf("%d", len(dast.Jobs))},
		{Label: "Passive Rules", Value: fmt.Sprintf("%d", len(dast.PassiveRules))},
		{Label: "Active Rules", Value: fmt.Sprintf("%d", len(dast.ActiveRules))},
		{Label: "Messages Sent", Value: formatNumber(dast.TotalMessages)},
		{Label: "Alerts Raised", Value: formatNumber(dast.TotalAlerts), Last: true},
	}
	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

func (f *terminalFormatter) writeIssues(b *strings.Builder, result *analyzer.Result) {
	if len(result.Errors) == 0 && len(result.Warnings) == 0 {
		return
	}

	symbol := termfmt.GetEmoji("error", f.opts)
	fmt.Fprintf(b, "%s Issues (%d errors, %d warnings)\n",
		symbol, len(result.Errors), len(result.Warnings))

	n := len(result.Errors)
	if n > maxTerminalErrors {
		n = maxTerminalErrors
	}
	for i := 0; i < n; i++ {
		e := result.Errors[i]
		prefix := "├─"
		if i == n-1 {
			prefix = "└─"
		}
		fmt.Fprintf(b, "%s %s %s\n", prefix, getLevelEmoji(e.Level), truncateMessage(e.Message, 100))
	}
	b.WriteString("\n")
}

func (f *terminalFormatter) writeMarkers(b *strings.Builder, result *analyzer.Result) {
	if len(result.MarkerHits) == 0 {
		return
	}

	b.WriteString("Known Issue Markers\n")
	items := make([]termfmt.TreeItem, 0, len(result.MarkerHits))
	for i, hit := range result.MarkerHits {
		items = append(items, termfmt.TreeItem{
			Label: hit.Marker.Name,
			Value: fmt.Sprintf("%d occurrence(s)", hit.Count),
			Last:  i == len(result.MarkerHits)-1,
		})
	}
	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

func (f *terminalFormatter) writeComparisonSummary(b *strings.Builder, result *compare.Result) {
	symbol := termfmt.GetEmoji("statistics", f.opts)
	b.WriteString(symbol + " Summary\n")

	items := make([]termfmt.TreeItem, 0, len(compare.SummaryOrder))
	for i, key := range compare.SummaryOrder {
		pair, ok := result.Summary[key]
		if !ok {
			continue
		}
		value := fmt.Sprintf("%s -> %s", pair.ValueA, pair.ValueB)
		if pair.Numeric && pair.Delta != 0 {
			value += " (" + f.styledDelta(pair.Delta) + ")"
		}
		items = append(items, termfmt.TreeItem{
			Label: key,
			Value: value,
			Last:  i == len(compare.SummaryOrder)-1,
		})
	}
	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

func (f *terminalFormatter) styledDelta(delta int) string {
	s := formatDelta(delta)
	if delta > 0 {
		return f.plusStyle.Render(s)
	}
	return f.minusStyle.Render(s)
}

func (f *terminalFormatter) writeFilesDiff(b *strings.Builder, diff *compare.FilesDiff) {
	b.WriteString(f.labelStyle.Render("Files") + "\n")
	fmt.Fprintf(b, "├─ in both: %d\n", len(diff.InBoth))
	f.writeFileList(b, "├─", "only in A", diff.OnlyInA)
	f.writeFileList(b, "└─", "only in B", diff.OnlyInB)
	b.WriteString("\n")
}

func (f *terminalFormatter) writeFileList(b *strings.Builder, prefix, label string, files []string) {
	fmt.Fprintf(b, "%s %s: %d\n", prefix, label, len(files))
	n := len(files)
	if n > maxTerminalQueries {
		n = maxTerminalQueries
	}
	for i := 0; i < n; i++ {
		b.WriteString("│    " + files[i] + "\n")
	}
	if len(files) > n {
		fmt.Fprintf(b, "│    ... and %d more\n", len(files)-n)
	}
}

func (f *terminalFormatter) writeQueriesDiff(b *strings.Builder, diff *compare.QueriesDiff) {
	b.WriteString(f.labelStyle.Render("Queries") + "\n")
	fmt.Fprintf(b, "├─ in both: %d\n", diff.InBothCount)
	fmt.Fprintf(b, "├─ only in A: %d\n", len(diff.OnlyInA))
	fmt.Fprintf(b, "└─ only in B: %d\n", len(diff.OnlyInB))

	if len(diff.ResultsChanged) > 0 {
		b.WriteString("\nResult changes (largest first)\n")
		n := len(diff.ResultsChanged)
		if n > maxTerminalQueries {
			n = maxTerminalQueries
		}
		for i := 0; i < n; i++ {
			c := diff.ResultsChanged[i]
			prefix := "├─"
			if i == n-1 {
				prefix = "└─"
			}
			fmt.Fprintf(b, "%s %s: %d -> %d (%s)\n",
				prefix, c.Name, c.ResultsA, c.ResultsB, f.styledDelta(c.Delta))
		}
	}
	b.WriteString("\n")
}

func (f *terminalFormatter) writeErrorsDiff(b *strings.Builder, diff *compare.ErrorsDiff) {
	if len(diff.SampleA) == 0 && len(diff.SampleB) == 0 {
		return
	}

	symbol := termfmt.GetEmoji("error", f.opts)
	b.WriteString(symbol + " Error Samples\n")
	for _, side := range []struct {
		label  string
		sample []string
	}{
		{"A", diff.SampleA},
		{"B", diff.SampleB},
	} {
		if len(side.sample) == 0 {
			continue
		}
		fmt.Fprintf(b, "%s:\n", side.label)
		for _, msg := range side.sample {
			b.WriteString("  • " + msg + "\n")
		}
	}
}
