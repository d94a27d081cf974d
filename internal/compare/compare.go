// Package compare diffs two normalized scan analyses.
package compare

import (
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/scanops/scandiff/internal/normalize"
	"github.com/scanops/scandiff/internal/parser"
)

const (
	errorSampleCount  = 10
	errorSampleLength = 100
)

// SummaryPair is one summary metric from both sides. Delta is only
// meaningful when Numeric is true; string-valued metrics are carried as a
// plain pair.
type SummaryPair struct {
	ValueA  string `json:"value_a"`
	ValueB  string `json:"value_b"`
	Delta   int    `json:"delta,omitempty"`
	Numeric bool   `json:"numeric"`
}

// FilesDiff is the file-set difference. Files are matched by basename to
// tolerate relocation between runs, but the lists carry full normalized
// paths for display, taken from whichever side owns the basename.
type FilesDiff struct {
	OnlyInA []string `json:"only_in_a"`
	OnlyInB []string `json:"only_in_b"`
	InBoth  []string `json:"in_both"`
}

// QueryChange records a query present in both runs whose result count moved
type QueryChange struct {
	Name     string `json:"name"`
	ResultsA int    `json:"results_a"`
	ResultsB int    `json:"results_b"`
	Delta    int    `json:"delta"`
}

// QueriesDiff is the query-set difference keyed by canonical query name
type QueriesDiff struct {
	OnlyInA        []string      `json:"only_in_a"`
	OnlyInB        []string      `json:"only_in_b"`
	InBothCount    int           `json:"in_both_count"`
	ResultsChanged []QueryChange `json:"results_changed"`
}

// ErrorsDiff carries a truncated sample of each side's error messages. The
// two samples are paired positionally for display; entries are not matched
// by content.
type ErrorsDiff struct {
	SampleA []string `json:"sample_a"`
	SampleB []string `json:"sample_b"`
}

// Result is a complete diff of two runs. It is recomputed per pair and
// never mutated after Compare returns.
type Result struct {
	Summary map[string]SummaryPair `json:"summary"`
	Files   FilesDiff              `json:"files_diff"`
	Queries QueriesDiff            `json:"queries_diff"`
	Errors  ErrorsDiff             `json:"errors_diff"`
}

// SummaryOrder fixes the display order of summary metrics; Summary itself
// is a map and carries no order.
var SummaryOrder = []string{
	"log_type", "project_name", "scan_mode", "total_time",
	"files_count", "queries_count", "total_results", "errors_count",
	"loc", "peak_memory",
}

// Compare diffs two normalized analyses. Both inputs are read-only.
func Compare(a, b *normalize.Analysis) *Result {
	return &Result{
		Summary: compareSummary(a, b),
		Files:   compareFiles(a.Files, b.Files),
		Queries: compareQueries(a.Queries, b.Queries),
		Errors: ErrorsDiff{
			SampleA: errorSample(a.Errors),
			SampleB: errorSample(b.Errors),
		},
	}
}

func compareSummary(a, b *normalize.Analysis) map[string]SummaryPair {
	s := make(map[string]SummaryPair, len(SummaryOrder))
	s["log_type"] = stringPair(a.LogType, b.LogType)
	s["project_name"] = stringPair(a.ProjectName, b.ProjectName)
	s["scan_mode"] = stringPair(a.ScanMode, b.ScanMode)
	s["total_time"] = stringPair(a.TotalTime, b.TotalTime)
	s["files_count"] = numericPair(len(a.Files), len(b.Files))
	s["queries_count"] = numericPair(len(a.Queries), len(b.Queries))
	s["total_results"] = numericPair(a.TotalResults, b.TotalResults)
	s["errors_count"] = numericPair(len(a.Errors), len(b.Errors))
	s["loc"] = numericPair(a.LOC, b.LOC)
	s["peak_memory"] = numericPair(a.PeakMemory, b.PeakMemory)
	return s
}

func stringPair(a, b string) SummaryPair {
	return SummaryPair{ValueA: a, ValueB: b}
}

func numericPair(a, b int) SummaryPair {
	return SummaryPair{
		ValueA:  strconv.Itoa(a),
		ValueB:  strconv.Itoa(b),
		Delta:   b - a,
		Numeric: true,
	}
}

func compareFiles(filesA, filesB []string) FilesDiff {
	byNameA := make(map[string]string, len(filesA))
	for _, f := range filesA {
		byNameA[parser.Basename(f)] = f
	}
	byNameB := make(map[string]string, len(filesB))
	for _, f := range filesB {
		byNameB[parser.Basename(f)] = f
	}

	var diff FilesDiff
	for name, path := range byNameA {
		if _, ok := byNameB[name]; ok {
			diff.InBoth = append(diff.InBoth, path)
		} else {
			diff.OnlyInA = append(diff.OnlyInA, path)
		}
	}
	for name, path := range byNameB {
		if _, ok := byNameA[name]; !ok {
			diff.OnlyInB = append(diff.OnlyInB, path)
		}
	}

	sort.Strings(diff.OnlyInA)
	sort.Strings(diff.OnlyInB)
	sort.Strings(diff.InBoth)
	return diff
}

func compareQueries(qa, qb map[string]normalize.Query) QueriesDiff {
	var diff QueriesDiff
	for name, q1 := range qa {
		q2, ok := qb[name]
		if !ok {
			diff.OnlyInA = append(diff.OnlyInA, name)
			continue
		}
		diff.InBothCount++
		if q1.Results != q2.Results {
			diff.ResultsChanged = append(diff.ResultsChanged, QueryChange{
				Name:     name,
				ResultsA: q1.Results,
				ResultsB: q2.Results,
				Delta:    q2.Results - q1.Results,
			})
		}
	}
	for name := range qb {
		if _, ok := qa[name]; !ok {
			diff.OnlyInB = append(diff.OnlyInB, name)
		}
	}

	sort.Strings(diff.OnlyInA)
	sort.Strings(diff.OnlyInB)
	sort.SliceStable(diff.ResultsChanged, func(i, j int) bool {
		di, dj := abs(diff.ResultsChanged[i].Delta), abs(diff.ResultsChanged[j].Delta)
		if di != dj {
			return di > dj
		}
		return diff.ResultsChanged[i].Name < diff.ResultsChanged[j].Name
	})
	return diff
}

func errorSample(errs []parser.LogLine) []string {
	sample := make([]string, 0, errorSampleCount)
	for _, e := range errs {
		if len(sample) == errorSampleCount {
			break
		}
		msg := e.Message
		if utf8.RuneCountInString(msg) > errorSampleLength {
			runes := []rune(msg)
			msg = string(runes[:errorSampleLength])
		}
		sample = append(sample, msg)
	}
	return sample
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

