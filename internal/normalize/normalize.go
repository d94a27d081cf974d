// Package normalize projects format-specific analysis results into one
// canonical schema so analyses from different scan engines can be compared.
package normalize

import (
	"fmt"
	"time"

	"github.com/scanops/scandiff/internal/analyzer"
	"github.com/scanops/scandiff/internal/parser"
)

// Query is one entry of the canonical query map. ResultsKnown separates
// "zero results" from "this log format does not track result counts": the
// generic cloud format has no per-query counts and carries an explicit
// placeholder instead of an invented number.
type Query struct {
	Results      int    `json:"results"`
	Duration     string `json:"duration"`
	Status       string `json:"status"`
	ResultsKnown bool   `json:"results_known"`
}

// Analysis is the canonical cross-format projection of one analyzed log.
// It is the sole input shape the comparator accepts.
type Analysis struct {
	LogType     string `json:"log_type"`
	ProjectName string `json:"project_name"`
	TotalTime   string `json:"total_time"`

	Files   []string         `json:"files"`
	Queries map[string]Query `json:"queries"`

	TotalResults int              `json:"total_results"`
	Errors       []parser.LogLine `json:"errors"`

	Languages  map[string]int `json:"languages,omitempty"`
	LOC        int            `json:"loc"`
	PeakMemory int            `json:"peak_memory"`

	IsIncremental           bool   `json:"is_incremental"`
	IncrementalFilesChanged *int   `json:"incremental_files_changed,omitempty"`
	IncrementalSkipped      bool   `json:"incremental_skipped"`
	ScanMode                string `json:"scan_mode"`
}

// Normalize projects an analysis result into the canonical schema.
func Normalize(r *analyzer.Result) *Analysis {
	switch r.Format {
	case parser.FormatCxSAST, parser.FormatCxOneSAST:
		return normalizeSAST(r)
	case parser.FormatDAST:
		return normalizeDAST(r)
	default:
		return normalizeGeneric(r)
	}
}

func normalizeSAST(r *analyzer.Result) *Analysis {
	queries := make(map[string]Query, len(r.Queries))
	for _, q := range r.Queries {
		queries[q.Language+"."+q.Name] = Query{
			Results:      q.Results,
			Duration:     q.Duration,
			Status:       q.Status,
			ResultsKnown: true,
		}
	}

	return &Analysis{
		LogType:                 r.Format.Label(),
		ProjectName:             projectName(r.ScanInfo.ProjectName),
		TotalTime:               r.TotalElapsed,
		Files:                   r.Files,
		Queries:                 queries,
		TotalResults:            r.QueryTotals.TotalResults,
		Errors:                  r.Errors,
		Languages:               r.Languages,
		LOC:                     r.ScannedLOC,
		PeakMemory:              r.PeakMemory,
		IsIncremental:           r.ScanInfo.IsIncremental,
		IncrementalFilesChanged: r.ScanInfo.IncrementalFilesChanged,
		IncrementalSkipped:      r.ScanInfo.IncrementalSkipped,
		ScanMode:                ScanModeLabel(r.ScanInfo),
	}
}

func normalizeGeneric(r *analyzer.Result) *Analysis {
	queries := make(map[string]Query, len(r.Queries))
	for _, q := range r.Queries {
		// The generic format tracks no per-query result counts; the zero is
		// an explicit placeholder, not a measurement.
		queries[q.Language+"."+q.Group+"."+q.Name] = Query{
			Results:      0,
			Duration:     "00:00:00",
			Status:       "success",
			ResultsKnown: false,
		}
	}

	name := r.ScanInfo.ProjectName
	if name == "" {
		name = r.ScanInfo.Hostname
	}

	return &Analysis{
		LogType:                 r.Format.Label(),
		ProjectName:             projectName(name),
		TotalTime:               totalTime(r.TotalElapsed),
		Files:                   r.Files,
		Queries:                 queries,
		Errors:                  r.Errors,
		PeakMemory:              r.PeakMemory,
		IsIncremental:           r.ScanInfo.IsIncremental,
		IncrementalFilesChanged: r.ScanInfo.IncrementalFilesChanged,
		IncrementalSkipped:      r.ScanInfo.IncrementalSkipped,
		ScanMode:                ScanModeLabel(r.ScanInfo),
	}
}

func normalizeDAST(r *analyzer.Result) *Analysis {
	queries := make(map[string]Query)
	totalResults := 0
	if r.DAST != nil {
		for _, rule := range r.DAST.ActiveRules {
			queries[rule.Name] = Query{
				Results:      rule.AlertsRaised,
				Duration:     fmt.Sprintf("%.2fs", rule.Duration),
				Status:       "success",
				ResultsKnown: true,
			}
		}
		totalResults = r.DAST.TotalAlerts
	}

	name := r.ScanInfo.TargetURL
	if name == "" {
		name = r.ScanInfo.Hostname
	}

	total := ""
	if r.DAST != nil {
		total = dastElapsed(r.DAST.FirstTimestamp, r.DAST.LastTimestamp)
	}

	return &Analysis{
		LogType:       r.Format.Label(),
		ProjectName:   projectName(name),
		TotalTime:     totalTime(total),
		Files:         r.Files,
		Queries:       queries,
		TotalResults:  totalResults,
		Errors:        r.Errors,
		IsIncremental: false,
		ScanMode:      ScanModeLabel(r.ScanInfo),
	}
}

// ScanModeLabel renders the incremental flags as a display label. The
// precedence is skipped, then incremental with a known count, then
// incremental with an unknown count, then full; every normalization branch
// shares this one implementation.
func ScanModeLabel(info analyzer.ScanInfo) string {
	switch {
	case info.IncrementalSkipped:
		return "Incremental (Skipped - 0 changes)"
	case info.IsIncremental && info.IncrementalFilesChanged != nil:
		return fmt.Sprintf("Incremental (%d files changed)", *info.IncrementalFilesChanged)
	case info.IsIncremental:
		return "Incremental"
	default:
		return "Full Scan"
	}
}

func projectName(name string) string {
	if name == "" {
		return "Unknown"
	}
	return name
}

const dastTimestampLayout = "2006-01-02 15:04:05,000"

// dastElapsed derives a wall-clock duration from the first and last log
// timestamps. DAST logs have no elapsed-time column of their own.
func dastElapsed(first, last string) string {
	if first == "" || last == "" {
		return ""
	}
	start, err := time.Parse(dastTimestampLayout, first)
	if err != nil {
		return ""
	}
	end, err := time.Parse(dastTimestampLayout, last)
	if err != nil || end.Before(start) {
		return ""
	}
	d := end.Sub(start)
	return fmt.Sprintf("%02d:%02d:%02d",
		int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}

func totalTime(elapsed string) string {
	if elapsed == "" {
		return "00:00:00"
	}
	return elapsed
}

// FormatElapsed trims the sub-second suffix from an elapsed-time string for
// display (HH:MM:SS.nnn -> HH:MM:SS).
func FormatElapsed(elapsed string) string {
	if elapsed == "" || elapsed == "N/A" {
		return "N/A"
	}
	for i := 0; i < len(elapsed); i++ {
		if elapsed[i] == '.' {
			return elapsed[:i]
		}
	}
	return elapsed
}
