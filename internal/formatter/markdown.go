package formatter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/scanops/scandiff/internal/analyzer"
	"github.com/scanops/scandiff/internal/compare"
	"github.com/scanops/scandiff/internal/normalize"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) FormatAnalysis(result *analyzer.Result) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Scan Log Analysis Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	f.writeOverviewTable(&b, result)
	f.writeQueryTable(&b, result)
	f.writeLanguageTable(&b, result)
	f.writeDASTSection(&b, result)
	f.writeErrorSection(&b, result)
	f.writeMarkerSection(&b, result)

	b.WriteString("---\n")
	b.WriteString("*Report generated by scandiff*\n")
	return []byte(b.String()), nil
}

func (f *markdownFormatter) FormatComparison(result *compare.Result) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Scan Comparison Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Run A | Run B | Delta |\n")
	b.WriteString("|--------|-------|-------|-------|\n")
	for _, key := range compare.SummaryOrder {
		pair, ok := result.Summary[key]
		if !ok {
			continue
		}
		delta := ""
		if pair.Numeric {
			delta = formatDelta(pair.Delta)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", key, pair.ValueA, pair.ValueB, delta)
	}
	b.WriteString("\n")

	b.WriteString("## Files\n\n")
	fmt.Fprintf(&b, "In both: %d, only in A: %d, only in B: %d\n\n",
		len(result.Files.InBoth), len(result.Files.OnlyInA), len(result.Files.OnlyInB))
	f.writeFileList(&b, "Only in A", result.Files.OnlyInA)
	f.writeFileList(&b, "Only in B", result.Files.OnlyInB)

	b.WriteString("## Queries\n\n")
	fmt.Fprintf(&b, "In both: %d, only in A: %d, only in B: %d\n\n",
		result.Queries.InBothCount, len(result.Queries.OnlyInA), len(result.Queries.OnlyInB))
	if len(result.Queries.ResultsChanged) > 0 {
		b.WriteString("| Query | Results A | Results B | Delta |\n")
		b.WriteString("|-------|-----------|-----------|-------|\n")
		for _, c := range result.Queries.ResultsChanged {
			fmt.Fprintf(&b, "| %s | %d | %d | %s |\n", c.Name, c.ResultsA, c.ResultsB, formatDelta(c.Delta))
		}
		b.WriteString("\n")
	}

	if len(result.Errors.SampleA) > 0 || len(result.Errors.SampleB) > 0 {
		b.WriteString("## Error Samples\n\n")
		f.writeErrorSample(&b, "Run A", result.Errors.SampleA)
		f.writeErrorSample(&b, "Run B", result.Errors.SampleB)
	}

	b.WriteString("---\n")
	b.WriteString("*Report generated by scandiff*\n")
	return []byte(b.String()), nil
}

func (f *markdownFormatter) writeOverviewTable(b *strings.Builder, result *analyzer.Result) {
	b.WriteString("## Overview\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(b, "| Format | %s |\n", result.Format.Label())
	fmt.Fprintf(b, "| Lines | %s parsed of %s |\n", formatNumber(result.ParsedLines), formatNumber(result.TotalLines))
	if result.ScanInfo.ProjectName != "" {
		fmt.Fprintf(b, "| Project | %s |\n", result.ScanInfo.ProjectName)
	}
	if result.ScanInfo.Version != "" {
		fmt.Fprintf(b, "| Engine Version | %s |\n", result.ScanInfo.Version)
	}
	fmt.Fprintf(b, "| Scan Mode | %s |\n", normalize.ScanModeLabel(result.ScanInfo))
	fmt.Fprintf(b, "| Elapsed | %s |\n", normalize.FormatElapsed(result.TotalElapsed))
	fmt.Fprintf(b, "| Files Processed | %d |\n", len(result.Files))
	fmt.Fprintf(b, "| Errors | %d |\n", len(result.Errors))
	fmt.Fprintf(b, "| Warnings | %d |\n", len(result.Warnings))
	if result.PeakMemory > 0 {
		fmt.Fprintf(b, "| Peak Memory | %s MB |\n", formatNumber(result.PeakMemory))
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeQueryTable(b *strings.Builder, result *analyzer.Result) {
	if len(result.Queries) == 0 {
		return
	}

	b.WriteString("## Queries\n\n")
	byLang := result.QueriesByLanguage()
	langs := make([]string, 0, len(byLang))
	for lang := range byLang {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	for _, lang := range langs {
		heading := lang
		if heading == "" {
			heading = "(unknown)"
		}
		fmt.Fprintf(b, "### %s\n\n", heading)
		b.WriteString("| Query | Status | Results | Duration |\n")
		b.WriteString("|-------|--------|---------|----------|\n")
		for _, q := range byLang[lang] {
			fmt.Fprintf(b, "| %s | %s | %d | %s |\n",
				q.Name, q.Status, q.Results, q.Duration)
		}
		b.WriteString("\n")
	}
	if result.QueryTotals.TotalResults > 0 {
		fmt.Fprintf(b, "\n**Total results**: %s\n", formatNumber(result.QueryTotals.TotalResults))
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeLanguageTable(b *strings.Builder, result *analyzer.Result) {
	if len(result.Languages) == 0 {
		return
	}

	b.WriteString("## Languages\n\n")
	b.WriteString("| Language | LOC |\n")
	b.WriteString("|----------|-----|\n")
	for _, lang := range sortedLanguages(result.Languages) {
		fmt.Fprintf(b, "| %s | %s |\n", lang, formatNumber(result.Languages[lang]))
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeDASTSection(b *strings.Builder, result *analyzer.Result) {
	if result.DAST == nil {
		return
	}
	dast := result.DAST

	b.WriteString("## Dynamic Scan\n\n")
	fmt.Fprintf(b, "Jobs: %d, passive rules: %d, active rules: %d\n\n",
		len(dast.Jobs), len(dast.PassiveRules), len(dast.ActiveRules))
	if len(dast.ActiveRules) > 0 {
		b.WriteString("| Rule | Duration | Messages | Alerts |\n")
		b.WriteString("|------|----------|----------|--------|\n")
		for _, rule := range dast.ActiveRules {
			fmt.Fprintf(b, "| %s | %.2fs | %d | %d |\n",
				rule.Name, rule.Duration, rule.MessagesSent, rule.AlertsRaised)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "**Total alerts**: %d\n\n", dast.TotalAlerts)
}

func (f *markdownFormatter) writeErrorSection(b *strings.Builder, result *analyzer.Result) {
	if len(result.Errors) == 0 {
		return
	}

	b.WriteString("## Errors\n\n")
	b.WriteString("```\n")
	n := len(result.Errors)
	if n > 10 {
		n = 10
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(b, "%s\n", truncateMessage(result.Errors[i].Message, 200))
	}
	b.WriteString("```\n\n")
}

func (f *markdownFormatter) writeMarkerSection(b *strings.Builder, result *analyzer.Result) {
	if len(result.MarkerHits) == 0 {
		return
	}

	b.WriteString("## Known Issue Markers\n\n")
	for _, hit := range result.MarkerHits {
		fmt.Fprintf(b, "### %s (%d occurrences)\n\n", hit.Marker.Name, hit.Count)
		if len(hit.Sample) > 0 {
			b.WriteString("```\n")
			for _, s := range hit.Sample {
				fmt.Fprintf(b, "%s\n", s)
			}
			b.WriteString("```\n\n")
		}
	}
}

func (f *markdownFormatter) writeFileList(b *strings.Builder, title string, files []string) {
	if len(files) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s**:\n", title)
	for _, file := range files {
		b.WriteString("- `" + file + "`\n")
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeErrorSample(b *strings.Builder, title string, sample []string) {
	if len(sample) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s**:\n", title)
	b.WriteString("```\n")
	for _, msg := range sample {
		fmt.Fprintf(b, "%s\n", msg)
	}
	b.WriteString("```\n\n")
}
