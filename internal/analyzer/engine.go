package analyzer

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/scanops/scandiff/internal/parser"
)

// headerWindowLines bounds where the generic extractor looks for one-shot
// header fields. The incremental-scan markers are exempt: they can appear
// anywhere in the log.
const headerWindowLines = 50

var (
	queryTagPattern = regexp.MustCompile(
		`Language: (\w+), PackageTypeName: (\w+), GroupName: ([\w_]+), QueryName: ([\w_]+)`)
	beginQueryPattern    = regexp.MustCompile(`Begin running query ([\w.]+)`)
	filesChangedPattern  = regexp.MustCompile(`number of files changed:\s*(\d+)`)
	processedFilePattern = regexp.MustCompile(`file: (.+)$`)
)

// AnalyzeEngine extracts an analysis from a generic cloud-format log. Every
// facet degrades to its zero value when the log does not contain it; a
// malformed line never aborts the walk.
func AnalyzeEngine(content string, markers ...Marker) *Result {
	lines := strings.Split(content, "\n")

	result := &Result{
		Format:      parser.FormatCxOne,
		TotalLines:  len(lines),
		PhaseCounts: make(map[string]int),
	}

	fileSet := make(map[string]struct{})

	for _, raw := range lines {
		line, ok := parser.ParseEngineLine(raw)
		if !ok {
			continue
		}
		result.ParsedLines++
		result.PhaseCounts[line.Context]++

		result.MemoryTimeline = append(result.MemoryTimeline, MemorySample{
			ElapsedTime:     line.ElapsedTime,
			UsedMemory:      line.UsedMemory,
			AvailableMemory: line.AvailableMemory,
		})

		switch line.Level {
		case parser.LevelError:
			result.Errors = append(result.Errors, *line)
		case parser.LevelWarn:
			result.Warnings = append(result.Warnings, *line)
		}

		if line.Context == "Queries" && strings.Contains(line.Message, "Finish running query") {
			if q, ok := parseQueryIdentity(line.Message); ok {
				result.Queries = append(result.Queries, q)
			}
		}

		if strings.Contains(line.Message, "Finished processing file") {
			if m := processedFilePattern.FindStringSubmatch(line.Message); m != nil {
				if path := strings.TrimSpace(m[1]); path != "" {
					fileSet[parser.NormalizePath(path)] = struct{}{}
				}
			}
		}
	}

	result.Files = sortedKeys(fileSet)
	result.ScanInfo = extractEngineScanInfo(lines)
	result.PeakMemory = peakMemory(result.MemoryTimeline)
	if n := len(result.MemoryTimeline); n > 0 {
		result.TotalElapsed = result.MemoryTimeline[n-1].ElapsedTime
	}
	result.MarkerHits = ScanMarkers(markers, lines)

	return result
}

// parseQueryIdentity derives query identity from either the structured tag
// form or the dotted "Begin running query L.P.G.Q" form. The generic format
// carries no per-query result counts.
func parseQueryIdentity(message string) (QueryRecord, bool) {
	if m := queryTagPattern.FindStringSubmatch(message); m != nil {
		return QueryRecord{
			Language:    m[1],
			PackageType: m[2],
			Group:       m[3],
			Name:        m[4],
		}, true
	}

	if m := beginQueryPattern.FindStringSubmatch(message); m != nil {
		parts := strings.Split(m[1], ".")
		if len(parts) >= 4 {
			return QueryRecord{
				Language:    parts[0],
				PackageType: parts[1],
				Group:       parts[2],
				Name:        parts[3],
			}, true
		}
	}

	return QueryRecord{}, false
}

func extractEngineScanInfo(lines []string) ScanInfo {
	var info ScanInfo

	header := lines
	if len(header) > headerWindowLines {
		header = header[:headerWindowLines]
	}

	for _, line := range header {
		if info.Version == "" && strings.Contains(line, "Product version:") {
			info.Version = valueAfter(line, "Product version:")
		}
		if info.Hostname == "" && strings.Contains(line, "HostName:") {
			info.Hostname = valueAfter(line, "HostName:")
		}
		if info.Processors == 0 && strings.Contains(line, "Processor Count:") {
			info.Processors, _ = strconv.Atoi(valueAfter(line, "Processor Count:"))
		}
		if info.OS == "" && strings.HasPrefix(strings.TrimSpace(line), "OS:") {
			info.OS = valueAfter(line, "OS:")
		}
	}

	applyIncrementalMarkers(lines, &info)

	return info
}

// applyIncrementalMarkers scans the entire log for incremental-scan state.
// The files-changed count is last-write-wins when several lines report it,
// and a count of zero marks the scan as skipped.
func applyIncrementalMarkers(lines []string, info *ScanInfo) {
	for _, line := range lines {
		if strings.Contains(line, "in Incremental Scan State") {
			info.IsIncremental = true
		}
		if strings.Contains(line, "Incremental Scan: number of files changed:") {
			if m := filesChangedPattern.FindStringSubmatch(line); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					count := n
					info.IncrementalFilesChanged = &count
					info.IsIncremental = true
					info.IncrementalSkipped = count == 0
				}
			}
		}
	}
}

// valueAfter returns the trimmed remainder of line after the first
// occurrence of marker.
func valueAfter(line, marker string) string {
	i := strings.Index(line, marker)
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(line[i+len(marker):])
}

func peakMemory(timeline []MemorySample) int {
	peak := 0
	for _, s := range timeline {
		if s.UsedMemory > peak {
			peak = s.UsedMemory
		}
	}
	return peak
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
