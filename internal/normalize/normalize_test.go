package normalize

import (
	"testing"

	"github.com/scanops/scandiff/internal/analyzer"
	"github.com/scanops/scandiff/internal/parser"
)

func intp(n int) *int { return &n }

func TestNormalizeSAST(t *testing.T) {
	r := &analyzer.Result{
		Format: parser.FormatCxSAST,
		ScanInfo: analyzer.ScanInfo{
			ProjectName:   "BookStore",
			Hostname:      "sast-host",
			IsIncremental: true,
		},
		Queries: []analyzer.QueryRecord{
			{Language: "JavaScript", Name: "Find_Passwords_abc", Status: "success", Results: 56, Duration: "00:00:00.328"},
			{Language: "Java", Name: "SQL_Injection", Status: "failure", Results: 0, Duration: "00:00:01.002"},
		},
		QueryTotals:  analyzer.QueryTotals{TotalResults: 56, TotalQueryTime: "00:00:02"},
		Files:        []string{"src/app.js", "src/db.js"},
		PeakMemory:   2048,
		TotalElapsed: "0:03:12.450",
		ScannedLOC:   1234,
		Languages:    map[string]int{"JavaScript": 1000, "Java": 234},
	}

	a := Normalize(r)

	if a.LogType != "CxSAST (On-Prem)" {
		t.Errorf("LogType = %q", a.LogType)
	}
	if a.ProjectName != "BookStore" {
		t.Errorf("ProjectName = %q", a.ProjectName)
	}
	if a.ScanMode != "Incremental" {
		t.Errorf("ScanMode = %q", a.ScanMode)
	}
	q, ok := a.Queries["JavaScript.Find_Passwords_abc"]
	if !ok {
		t.Fatalf("missing query key, have %v", a.Queries)
	}
	if q.Results != 56 || !q.ResultsKnown || q.Status != "success" {
		t.Errorf("unexpected query %+v", q)
	}
	if a.TotalResults != 56 {
		t.Errorf("TotalResults = %d", a.TotalResults)
	}
	if a.LOC != 1234 {
		t.Errorf("LOC = %d", a.LOC)
	}
}

func TestNormalizeGeneric(t *testing.T) {
	r := &analyzer.Result{
		Format: parser.FormatCxOne,
		ScanInfo: analyzer.ScanInfo{
			Hostname: "engine-pod-1",
		},
		Queries: []analyzer.QueryRecord{
			{Language: "Python", Group: "Python_High_Risk", Name: "SqlInjection"},
			{Language: "Python", Group: "", Name: "Orphan_Query"},
		},
		Files:        []string{"app/views.py"},
		PeakMemory:   512,
		TotalElapsed: "0:00:42.100",
	}

	a := Normalize(r)

	if a.ProjectName != "engine-pod-1" {
		t.Errorf("hostname fallback not applied, got %q", a.ProjectName)
	}
	q, ok := a.Queries["Python.Python_High_Risk.SqlInjection"]
	if !ok {
		t.Fatalf("missing query key, have %v", a.Queries)
	}
	if q.ResultsKnown {
		t.Error("generic query should not claim a known result count")
	}
	if q.Results != 0 || q.Status != "success" || q.Duration != "00:00:00" {
		t.Errorf("unexpected placeholder query %+v", q)
	}
	if _, ok := a.Queries["Python..Orphan_Query"]; !ok {
		t.Error("empty group should be preserved in the key")
	}
	if a.TotalTime != "0:00:42.100" {
		t.Errorf("TotalTime = %q", a.TotalTime)
	}
	if a.PeakMemory != 512 {
		t.Errorf("PeakMemory = %d", a.PeakMemory)
	}
}

func TestNormalizeGenericEmptyProject(t *testing.T) {
	a := Normalize(&analyzer.Result{Format: parser.FormatCxOne})
	if a.ProjectName != "Unknown" {
		t.Errorf("ProjectName = %q, want Unknown", a.ProjectName)
	}
	if a.TotalTime != "00:00:00" {
		t.Errorf("TotalTime = %q", a.TotalTime)
	}
	if a.ScanMode != "Full Scan" {
		t.Errorf("ScanMode = %q", a.ScanMode)
	}
}

func TestNormalizeDAST(t *testing.T) {
	r := &analyzer.Result{
		Format: parser.FormatDAST,
		ScanInfo: analyzer.ScanInfo{
			TargetURL: "https://demo.example.com",
		},
		DAST: &analyzer.DASTInfo{
			ActiveRules: []analyzer.ActiveRule{
				{Name: "SQL_Injection", Duration: 12.5, MessagesSent: 400, AlertsRaised: 3},
				{Name: "XSS_Reflected", Duration: 8.01, MessagesSent: 210, AlertsRaised: 0},
			},
			TotalAlerts:    3,
			FirstTimestamp: "2025-01-01 10:00:00,000",
			LastTimestamp:  "2025-01-01 11:30:05,500",
		},
	}

	a := Normalize(r)

	if a.LogType != "CxOne DAST" {
		t.Errorf("LogType = %q", a.LogType)
	}
	if a.ProjectName != "https://demo.example.com" {
		t.Errorf("ProjectName = %q", a.ProjectName)
	}
	if a.TotalTime != "01:30:05" {
		t.Errorf("TotalTime = %q", a.TotalTime)
	}
	q := a.Queries["SQL_Injection"]
	if q.Results != 3 || !q.ResultsKnown || q.Duration != "12.50s" {
		t.Errorf("unexpected rule query %+v", q)
	}
	if a.TotalResults != 3 {
		t.Errorf("TotalResults = %d", a.TotalResults)
	}
	if a.IsIncremental || a.ScanMode != "Full Scan" {
		t.Errorf("DAST scans are never incremental, got %q", a.ScanMode)
	}
}

func TestScanModeLabel(t *testing.T) {
	tests := []struct {
		name string
		info analyzer.ScanInfo
		want string
	}{
		{"full", analyzer.ScanInfo{}, "Full Scan"},
		{"skipped", analyzer.ScanInfo{IsIncremental: true, IncrementalFilesChanged: intp(0), IncrementalSkipped: true}, "Incremental (Skipped - 0 changes)"},
		{"with count", analyzer.ScanInfo{IsIncremental: true, IncrementalFilesChanged: intp(17)}, "Incremental (17 files changed)"},
		{"no count", analyzer.ScanInfo{IsIncremental: true}, "Incremental"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScanModeLabel(tt.info); got != tt.want {
				t.Errorf("ScanModeLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0:03:12.450", "0:03:12"},
		{"00:00:00", "00:00:00"},
		{"", "N/A"},
		{"N/A", "N/A"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.in); got != tt.want {
			t.Errorf("FormatElapsed(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
