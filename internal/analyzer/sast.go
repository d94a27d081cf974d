package analyzer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/scanops/scandiff/internal/parser"
)

// sastHeaderWindowLines bounds the header scan of a SAST log. On-prem logs
// front-load environment info into a few hundred lines.
const sastHeaderWindowLines = 500

var (
	productVersionPattern = regexp.MustCompile(`Product version: (.+)`)
	availableMBPattern    = regexp.MustCompile(`Available memory: (\d+)Mb`)
	osPattern             = regexp.MustCompile(`OS: (.+)`)
	hostnamePattern       = regexp.MustCompile(`HostName: (.+)`)
	fqdnPattern           = regexp.MustCompile(`FQDN: (.+)`)
	processorsPattern     = regexp.MustCompile(`Processor Count: (\d+)`)
	clrVersionPattern     = regexp.MustCompile(`CLR Version: (.+)`)
	projectPattern        = regexp.MustCompile(`ProjectId='(\d+)',ProjectName='([^']+)'`)
	sastVersionPattern    = regexp.MustCompile(`Product: Checkmarx SAST Engine\s*-\s*Main Version: ([\d.]+)`)
	changedFilesPattern   = regexp.MustCompile(`(?i)(\d+)\s*changed files`)
	languagePairPattern   = regexp.MustCompile(`(\w+)=(\d+)`)
	totalLOCPattern       = regexp.MustCompile(`(\d+) lines of code`)
	scannedLOCPattern     = regexp.MustCompile(`Actually scanned lines of code: (\d+)`)
	phaseStartPattern     = regexp.MustCompile(`Engine Phase \(Start\): (.+)`)
	phaseEndPattern       = regexp.MustCompile(`Engine Phase \( End \): (.+)`)
	summaryQueryPattern   = regexp.MustCompile(`^(\w+)\.([^\s]+)\s+(success|failure|error)\s+(\d+)\s+([\d:.]+)`)
	startedFilePattern    = regexp.MustCompile(`Started processing file:\s*(.+?)\s*$`)
	finishedFilePattern   = regexp.MustCompile(`Finished processing file:\s*(.+?)\s*$`)
)

// AnalyzeSAST extracts an analysis from a SAST engine log (cloud-hosted or
// on-prem; the two share one line grammar). format selects the label carried
// through normalization.
func AnalyzeSAST(content string, format parser.Format, markers ...Marker) *Result {
	lines := strings.Split(content, "\n")

	result := &Result{
		Format:     format,
		TotalLines: len(lines),
	}

	result.ScanInfo = extractSASTScanInfo(lines)
	extractLanguages(lines, result)
	result.PhaseEvents = extractPhaseEvents(lines)
	result.Queries = extractSummaryQueries(lines)
	result.QueryTotals = extractQueryTotals(lines)
	result.Files = extractProcessedFiles(lines)
	extractParsedLineFacets(lines, result)
	result.PeakMemory = peakMemory(result.MemoryTimeline)
	result.MarkerHits = ScanMarkers(markers, lines)

	return result
}

func extractSASTScanInfo(lines []string) ScanInfo {
	var info ScanInfo

	header := lines
	if len(header) > sastHeaderWindowLines {
		header = header[:sastHeaderWindowLines]
	}
	headerText := strings.Join(header, "\n")

	if m := productVersionPattern.FindStringSubmatch(headerText); m != nil {
		info.Version = strings.TrimSpace(m[1])
	}
	if m := availableMBPattern.FindStringSubmatch(headerText); m != nil {
		info.AvailableMemoryMB, _ = strconv.Atoi(m[1])
	}
	if m := osPattern.FindStringSubmatch(headerText); m != nil {
		info.OS = strings.TrimSpace(m[1])
	}
	if m := hostnamePattern.FindStringSubmatch(headerText); m != nil {
		info.Hostname = strings.TrimSpace(m[1])
	}
	if m := fqdnPattern.FindStringSubmatch(headerText); m != nil {
		info.FQDN = strings.TrimSpace(m[1])
	}
	if m := processorsPattern.FindStringSubmatch(headerText); m != nil {
		info.Processors, _ = strconv.Atoi(m[1])
	}
	if strings.Contains(headerText, "64Bit platform") {
		info.Platform = "64-bit"
	} else if strings.Contains(headerText, "32Bit platform") {
		info.Platform = "32-bit"
	}
	if m := clrVersionPattern.FindStringSubmatch(headerText); m != nil {
		info.CLRVersion = strings.TrimSpace(m[1])
	}
	if m := projectPattern.FindStringSubmatch(headerText); m != nil {
		info.ProjectID = m[1]
		info.ProjectName = m[2]
	}
	if m := sastVersionPattern.FindStringSubmatch(headerText); m != nil {
		info.SASTVersion = m[1]
	}

	fullLog := strings.Join(lines, "\n")
	if strings.Contains(fullLog, "in Incremental Scan State") {
		info.IsIncremental = true
	}
	// A regular scan that still tracks IncrementalFiles.cx is incremental-capable.
	if strings.Contains(fullLog, "Starting regular scan") &&
		strings.Contains(fullLog, "IncrementalFiles.cx exists:True") {
		info.IsIncremental = true
	}

	for _, line := range lines {
		if strings.Contains(line, "Incremental Scan: number of files changed:") {
			if m := filesChangedPattern.FindStringSubmatch(line); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					count := n
					info.IncrementalFilesChanged = &count
					info.IsIncremental = true
					info.IncrementalSkipped = count == 0
				}
			}
			continue
		}
		// Alternative rendering: "Incremental scan detected N changed files"
		lower := strings.ToLower(line)
		if strings.Contains(lower, "changed files") && strings.Contains(lower, "incremental") {
			if m := changedFilesPattern.FindStringSubmatch(line); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					count := n
					info.IncrementalFilesChanged = &count
					info.IsIncremental = true
					info.IncrementalSkipped = count == 0
				}
			}
		}
	}

	return info
}

func extractLanguages(lines []string, result *Result) {
	languages := make(map[string]int)

	for _, line := range lines {
		if strings.Contains(line, "Languages that will be scanned:") ||
			strings.Contains(line, "source files were identified:") {
			for _, m := range languagePairPattern.FindAllStringSubmatch(line, -1) {
				if n, err := strconv.Atoi(m[2]); err == nil {
					languages[m[1]] = n
				}
			}
		}
		if strings.Contains(strings.ToLower(line), "lines of code") {
			if m := totalLOCPattern.FindStringSubmatch(line); m != nil {
				result.TotalLOC, _ = strconv.Atoi(m[1])
			}
		}
		if strings.Contains(line, "Actually scanned lines of code:") {
			if m := scannedLOCPattern.FindStringSubmatch(line); m != nil {
				result.ScannedLOC, _ = strconv.Atoi(m[1])
			}
		}
	}

	if len(languages) > 0 {
		result.Languages = languages
	}
}

// extractPhaseEvents pairs explicit "(Start)"/"( End )" markers into phase
// events. The fixed-width timestamp is the first 23 characters of the line.
func extractPhaseEvents(lines []string) []PhaseEvent {
	var events []PhaseEvent

	for _, line := range lines {
		var name, kind string
		switch {
		case strings.Contains(line, "Engine Phase (Start):"):
			if m := phaseStartPattern.FindStringSubmatch(line); m != nil {
				name, kind = strings.TrimSpace(m[1]), "start"
			}
		case strings.Contains(line, "Engine Phase ( End ):"):
			if m := phaseEndPattern.FindStringSubmatch(line); m != nil {
				name, kind = strings.TrimSpace(m[1]), "end"
			}
		}
		if name == "" {
			continue
		}
		timestamp := ""
		if len(line) > 23 {
			timestamp = line[:23]
		}
		events = append(events, PhaseEvent{Name: name, Kind: kind, Timestamp: timestamp})
	}

	return events
}

// extractSummaryQueries parses the "General Queries Summary" block. Lines
// outside the start/end markers are ignored regardless of content; a missing
// block yields no queries.
func extractSummaryQueries(lines []string) []QueryRecord {
	var queries []QueryRecord
	inSection := false

	for _, line := range lines {
		switch {
		case strings.Contains(line, "End General Queries Summary"):
			inSection = false
			continue
		case strings.Contains(line, "General Queries Summary"):
			inSection = true
			continue
		}
		if !inSection {
			continue
		}

		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if m := summaryQueryPattern.FindStringSubmatch(stripped); m != nil {
			results, _ := strconv.Atoi(m[4])
			queries = append(queries, QueryRecord{
				Language: m[1],
				Name:     m[2],
				Status:   m[3],
				Results:  results,
				Duration: m[5],
			})
		}
	}

	return queries
}

// extractQueryTotals reads the "Total:" aggregate line. A totals line whose
// fields do not parse is ignored without raising.
func extractQueryTotals(lines []string) QueryTotals {
	totals := QueryTotals{TotalQueryTime: "00:00:00"}

	for _, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "Total:") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 3 {
			continue
		}
		if n, err := strconv.Atoi(parts[1]); err == nil {
			totals.TotalResults = n
			totals.TotalQueryTime = parts[2]
		}
	}

	return totals
}

func extractProcessedFiles(lines []string) []string {
	fileSet := make(map[string]struct{})

	for _, line := range lines {
		var m []string
		switch {
		case strings.Contains(line, "Started processing file:"):
			m = startedFilePattern.FindStringSubmatch(line)
		case strings.Contains(line, "Finished processing file:"):
			m = finishedFilePattern.FindStringSubmatch(line)
		}
		if m == nil {
			continue
		}
		if path := strings.TrimSpace(m[1]); path != "" {
			fileSet[parser.NormalizePath(path)] = struct{}{}
		}
	}

	return sortedKeys(fileSet)
}

// extractParsedLineFacets walks the parseable lines once for the facets that
// come straight off the line grammar: counts, severities, memory samples and
// the total elapsed time.
func extractParsedLineFacets(lines []string, result *Result) {
	for _, raw := range lines {
		line, ok := parser.ParseEngineLine(raw)
		if !ok {
			continue
		}
		result.ParsedLines++

		switch line.Level {
		case parser.LevelError:
			result.Errors = append(result.Errors, *line)
		case parser.LevelWarn:
			result.Warnings = append(result.Warnings, *line)
		}

		result.MemoryTimeline = append(result.MemoryTimeline, MemorySample{
			ElapsedTime:     line.ElapsedTime,
			UsedMemory:      line.UsedMemory,
			AvailableMemory: line.AvailableMemory,
		})
		result.TotalElapsed = line.ElapsedTime
	}

	if result.TotalElapsed == "" {
		result.TotalElapsed = "00:00:00"
	}
}
