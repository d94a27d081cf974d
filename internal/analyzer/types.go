package analyzer

import (
	"github.com/scanops/scandiff/internal/parser"
)

// ScanInfo holds the per-run metadata extracted from a log header and, for
// the incremental-scan flags, from the entire log body.
type ScanInfo struct {
	Version           string `json:"version,omitempty"`
	SASTVersion       string `json:"sast_version,omitempty"`
	Hostname          string `json:"hostname,omitempty"`
	FQDN              string `json:"fqdn,omitempty"`
	OS                string `json:"os,omitempty"`
	Platform          string `json:"platform,omitempty"`
	CLRVersion        string `json:"clr_version,omitempty"`
	Processors        int    `json:"processors,omitempty"`
	AvailableMemoryMB int    `json:"available_memory_mb,omitempty"`
	ProjectID         string `json:"project_id,omitempty"`
	ProjectName       string `json:"project_name,omitempty"`

	// IncrementalFilesChanged is nil when no line reported a count; zero
	// means the scan was explicitly skipped.
	IsIncremental           bool `json:"is_incremental"`
	IncrementalFilesChanged *int `json:"incremental_files_changed,omitempty"`
	IncrementalSkipped      bool `json:"incremental_skipped"`

	// DAST-only fields
	ZapVersion string `json:"zap_version,omitempty"`
	Cores      int    `json:"cores,omitempty"`
	MaxMemory  string `json:"max_memory,omitempty"`
	TargetURL  string `json:"target_url,omitempty"`
	Status     string `json:"status,omitempty"`
	Completed  bool   `json:"completed,omitempty"`
}

// QueryRecord is one executed query. SAST summary queries carry status,
// result count and duration; generic-format queries only carry identity
// (result counts are not present in that log format).
type QueryRecord struct {
	Language    string `json:"language"`
	PackageType string `json:"package_type,omitempty"`
	Group       string `json:"group,omitempty"`
	Name        string `json:"name"`
	Status      string `json:"status,omitempty"`
	Results     int    `json:"results"`
	Duration    string `json:"duration,omitempty"`
}

// QueryTotals is the aggregate line at the bottom of a SAST query summary
type QueryTotals struct {
	TotalResults   int    `json:"total_results"`
	TotalQueryTime string `json:"total_query_time"`
}

// PhaseEvent is one explicit phase boundary from a SAST log. The timestamp
// is the fixed-width 23-character prefix of the source line.
type PhaseEvent struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"` // "start" or "end"
	Timestamp string `json:"timestamp"`
}

// MemorySample is one point of the memory timeline, in log line order
type MemorySample struct {
	ElapsedTime     string `json:"elapsed_time"`
	UsedMemory      int    `json:"used_memory"`
	AvailableMemory int    `json:"available_memory"`
}

// JobRecord is one DAST automation job
type JobRecord struct {
	Name      string `json:"name"`
	Duration  string `json:"duration,omitempty"`
	Status    string `json:"status"`
	URLsAdded int    `json:"urls_added,omitempty"`
}

// ActiveRule is one active-scan rule summary from a DAST log
type ActiveRule struct {
	Name         string  `json:"name"`
	Duration     float64 `json:"duration_seconds"`
	MessagesSent int     `json:"messages_sent"`
	AlertsRaised int     `json:"alerts_raised"`
}

// Addon is one installed ZAP add-on
type Addon struct {
	ID      string `json:"id"`
	Version string `json:"version"`
}

// DASTInfo groups the facets that only exist for DAST logs
type DASTInfo struct {
	Jobs           []JobRecord  `json:"jobs"`
	PassiveRules   []string     `json:"passive_rules"`
	ActiveRules    []ActiveRule `json:"active_rules"`
	Addons         []Addon      `json:"addons"`
	TotalMessages  int          `json:"total_messages"`
	TotalAlerts    int          `json:"total_alerts"`
	FirstTimestamp string       `json:"first_timestamp,omitempty"`
	LastTimestamp  string       `json:"last_timestamp,omitempty"`
}

// Result aggregates everything extracted from one log. It is immutable once
// produced; facets that do not apply to the log's format stay at their zero
// value.
type Result struct {
	Format      parser.Format `json:"format"`
	TotalLines  int           `json:"total_lines"`
	ParsedLines int           `json:"parsed_lines"`

	ScanInfo ScanInfo `json:"scan_info"`

	// PhaseCounts is the generic-format per-phase line tally; PhaseEvents is
	// the SAST start/end event list. The two are not interchangeable.
	PhaseCounts map[string]int `json:"phase_counts,omitempty"`
	PhaseEvents []PhaseEvent   `json:"phase_events,omitempty"`

	Queries     []QueryRecord `json:"queries"`
	QueryTotals QueryTotals   `json:"query_totals"`

	// Files holds normalized relative paths, deduplicated and sorted
	Files []string `json:"files"`

	Errors   []parser.LogLine `json:"errors"`
	Warnings []parser.LogLine `json:"warnings"`

	MemoryTimeline []MemorySample `json:"memory_timeline,omitempty"`
	PeakMemory     int            `json:"peak_memory"`
	TotalElapsed   string         `json:"total_elapsed_time"`

	Languages  map[string]int `json:"languages,omitempty"`
	TotalLOC   int            `json:"total_loc"`
	ScannedLOC int            `json:"scanned_loc"`

	DAST *DASTInfo `json:"dast,omitempty"`

	MarkerHits []MarkerHit `json:"marker_hits,omitempty"`
}

// SuccessfulQueries counts queries whose status is "success"
func (r *Result) SuccessfulQueries() int {
	n := 0
	for _, q := range r.Queries {
		if q.Status == "success" {
			n++
		}
	}
	return n
}

// FailedQueries counts queries with a non-success status. Generic-format
// queries carry no status and are not counted.
func (r *Result) FailedQueries() int {
	n := 0
	for _, q := range r.Queries {
		if q.Status != "" && q.Status != "success" {
			n++
		}
	}
	return n
}

// QueriesByLanguage groups queries by language
func (r *Result) QueriesByLanguage() map[string][]QueryRecord {
	byLang := make(map[string][]QueryRecord)
	for _, q := range r.Queries {
		byLang[q.Language] = append(byLang[q.Language], q)
	}
	return byLang
}
