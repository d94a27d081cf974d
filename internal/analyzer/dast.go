package analyzer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/scanops/scandiff/internal/parser"
)

var (
	zapStartedPattern  = regexp.MustCompile(`ZAP (\S+) started`)
	zapCoresPattern    = regexp.MustCompile(`cores: (\d+)`)
	zapMemoryPattern   = regexp.MustCompile(`maxMemory: (\d+\s*\w+)`)
	targetURLPattern   = regexp.MustCompile(`from (\S+)`)
	jobStartedPattern  = regexp.MustCompile(`Job (\S+) started`)
	jobFinishedPattern = regexp.MustCompile(`Job (\S+) finished, time taken: (\S+)`)
	jobURLsPattern     = regexp.MustCompile(`added (\d+) URLs`)
	passiveRulePattern = regexp.MustCompile(`Loaded passive scan rule: (.+)$`)
	activeRulePattern  = regexp.MustCompile(
		`\| (\w+) in ([\d.]+)s with (\d+) message\(s\) sent and (\d+) alert\(s\) raised`)
	addonListPattern = regexp.MustCompile(`\[\[(.+)\]\]`)
	addonPattern     = regexp.MustCompile(`id=(\w+), version=([\d.]+)`)
)

// AnalyzeDAST extracts an analysis from a ZAP-based dynamic-scan log.
func AnalyzeDAST(content string, markers ...Marker) *Result {
	lines := strings.Split(content, "\n")

	result := &Result{
		Format:     parser.FormatDAST,
		TotalLines: len(lines),
	}
	dast := &DASTInfo{}
	result.DAST = dast

	for _, raw := range lines {
		line, ok := parser.ParseDASTLine(raw)
		if !ok {
			continue
		}
		result.ParsedLines++

		if dast.FirstTimestamp == "" {
			dast.FirstTimestamp = line.Timestamp
		}
		dast.LastTimestamp = line.Timestamp

		switch line.Level {
		case parser.LevelError:
			result.Errors = append(result.Errors, *line)
		case parser.LevelWarn:
			result.Warnings = append(result.Warnings, *line)
		}
	}

	result.ScanInfo = extractDASTScanInfo(lines)
	dast.Jobs = extractJobs(lines)
	dast.PassiveRules, dast.ActiveRules = extractScanRules(lines)
	dast.Addons = extractAddons(lines)

	for _, rule := range dast.ActiveRules {
		dast.TotalMessages += rule.MessagesSent
		dast.TotalAlerts += rule.AlertsRaised
	}

	result.MarkerHits = ScanMarkers(markers, lines)

	return result
}

func extractDASTScanInfo(lines []string) ScanInfo {
	var info ScanInfo

	for _, line := range lines {
		if strings.Contains(line, "ZAP") && strings.Contains(line, "started") {
			if m := zapStartedPattern.FindStringSubmatch(line); m != nil {
				info.ZapVersion = m[1]
			}
			if m := zapCoresPattern.FindStringSubmatch(line); m != nil {
				info.Cores, _ = strconv.Atoi(m[1])
			}
			if m := zapMemoryPattern.FindStringSubmatch(line); m != nil {
				info.MaxMemory = m[1]
			}
		}

		if strings.Contains(line, "Scanning") && strings.Contains(line, "node(s) from") {
			if m := targetURLPattern.FindStringSubmatch(line); m != nil {
				info.TargetURL = m[1]
			}
		}

		if strings.Contains(line, "Automation plan succeeded") {
			info.Status = "Succeeded"
		} else if strings.Contains(line, "Automation plan failed") {
			info.Status = "Failed"
		}

		if strings.Contains(line, "ZAP") && strings.Contains(line, "terminated") {
			info.Completed = true
		}
	}

	return info
}

// extractJobs pairs job start/finish lines by name and attaches URL counts
// reported by crawler jobs to the most recently finished job.
func extractJobs(lines []string) []JobRecord {
	var jobs []JobRecord

	for _, line := range lines {
		if strings.Contains(line, "Job") && strings.Contains(line, "finished") {
			if m := jobFinishedPattern.FindStringSubmatch(line); m != nil {
				jobs = append(jobs, JobRecord{
					Name:     m[1],
					Duration: m[2],
					Status:   "completed",
				})
			}
		}

		if strings.Contains(line, "Job") && strings.Contains(line, "added") && strings.Contains(line, "URLs") {
			if m := jobURLsPattern.FindStringSubmatch(line); m != nil && len(jobs) > 0 {
				jobs[len(jobs)-1].URLsAdded, _ = strconv.Atoi(m[1])
			}
		}
	}

	return jobs
}

func extractScanRules(lines []string) (passive []string, active []ActiveRule) {
	for _, line := range lines {
		if strings.Contains(line, "Loaded passive scan rule:") {
			if m := passiveRulePattern.FindStringSubmatch(line); m != nil {
				passive = append(passive, strings.TrimSpace(m[1]))
			}
		}

		if strings.Contains(line, "completed host/plugin") {
			if m := activeRulePattern.FindStringSubmatch(line); m != nil {
				duration, _ := strconv.ParseFloat(m[2], 64)
				messages, _ := strconv.Atoi(m[3])
				alerts, _ := strconv.Atoi(m[4])
				active = append(active, ActiveRule{
					Name:         m[1],
					Duration:     duration,
					MessagesSent: messages,
					AlertsRaised: alerts,
				})
			}
		}
	}

	return passive, active
}

// extractAddons parses the bracketed add-on list embedded in one
// "Installed add-ons:" line.
func extractAddons(lines []string) []Addon {
	var addons []Addon

	for _, line := range lines {
		if !strings.Contains(line, "Installed add-ons:") {
			continue
		}
		m := addonListPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		for _, pair := range addonPattern.FindAllStringSubmatch(m[1], -1) {
			addons = append(addons, Addon{ID: pair[1], Version: pair[2]})
		}
	}

	return addons
}
