package analyzer

import (
	"strings"
	"testing"

	"github.com/scanops/scandiff/internal/parser"
)

const sastHeader = `Product version: 9.6.5.1000
Available memory: 16384Mb
OS: Microsoft Windows Server 2019
HostName: CX-ENGINE-01
FQDN: cx-engine-01.corp.local
Processor Count: 16
Running on 64Bit platform
CLR Version: 4.0.30319.42000
Scan request: ProjectId='1042',ProjectName='WebGoat'
Product: Checkmarx SAST Engine - Main Version: 9.6.5
`

func TestAnalyzeSASTScanInfo(t *testing.T) {
	result := AnalyzeSAST(sastHeader, parser.FormatCxSAST)
	info := result.ScanInfo

	if info.Version != "9.6.5.1000" {
		t.Errorf("unexpected version %q", info.Version)
	}
	if info.AvailableMemoryMB != 16384 {
		t.Errorf("unexpected available memory %d", info.AvailableMemoryMB)
	}
	if info.OS != "Microsoft Windows Server 2019" {
		t.Errorf("unexpected OS %q", info.OS)
	}
	if info.Hostname != "CX-ENGINE-01" {
		t.Errorf("unexpected hostname %q", info.Hostname)
	}
	if info.FQDN != "cx-engine-01.corp.local" {
		t.Errorf("unexpected FQDN %q", info.FQDN)
	}
	if info.Processors != 16 {
		t.Errorf("unexpected processors %d", info.Processors)
	}
	if info.Platform != "64-bit" {
		t.Errorf("unexpected platform %q", info.Platform)
	}
	if info.CLRVersion != "4.0.30319.42000" {
		t.Errorf("unexpected CLR version %q", info.CLRVersion)
	}
	if info.ProjectID != "1042" || info.ProjectName != "WebGoat" {
		t.Errorf("unexpected project %q/%q", info.ProjectID, info.ProjectName)
	}
	if info.SASTVersion != "9.6.5" {
		t.Errorf("unexpected engine version %q", info.SASTVersion)
	}
	if info.IsIncremental {
		t.Error("plain header should not look incremental")
	}
}

func TestAnalyzeSASTQueriesSummary(t *testing.T) {
	content := strings.Join([]string{
		"JavaScript.Ignored_Before_Block  success  99  00:00:00.001",
		"---------------------------General Queries Summary------------------------------Status-...",
		"",
		"JavaScript.Find_Passwords_abc  success  56  00:00:00.328  extra fields",
		"Python.SqlInjection_9f1  failure  0  00:00:01.002",
		"CSharp.Hardcoded_Key_77  error  3  00:00:00.150",
		"not a query line",
		"End General Queries Summary",
		"JavaScript.Ignored_After_Block  success  12  00:00:00.100",
		"Total:  179481  00:00:17.603  more",
	}, "\n")

	result := AnalyzeSAST(content, parser.FormatCxSAST)

	if len(result.Queries) != 3 {
		t.Fatalf("want 3 queries, got %d: %v", len(result.Queries), result.Queries)
	}

	q := result.Queries[0]
	if q.Language != "JavaScript" || q.Name != "Find_Passwords_abc" ||
		q.Status != "success" || q.Results != 56 || q.Duration != "00:00:00.328" {
		t.Errorf("unexpected first query %+v", q)
	}

	if result.SuccessfulQueries() != 1 || result.FailedQueries() != 2 {
		t.Errorf("want 1 success / 2 failed, got %d/%d",
			result.SuccessfulQueries(), result.FailedQueries())
	}

	if result.QueryTotals.TotalResults != 179481 {
		t.Errorf("unexpected total results %d", result.QueryTotals.TotalResults)
	}
	if result.QueryTotals.TotalQueryTime != "00:00:17.603" {
		t.Errorf("unexpected total query time %q", result.QueryTotals.TotalQueryTime)
	}
}

func TestAnalyzeSASTMalformedTotalsIgnored(t *testing.T) {
	result := AnalyzeSAST("Total:  not-a-number  00:00:01\n", parser.FormatCxSAST)
	if result.QueryTotals.TotalResults != 0 {
		t.Errorf("malformed totals should stay zero, got %d", result.QueryTotals.TotalResults)
	}
	if result.QueryTotals.TotalQueryTime != "00:00:00" {
		t.Errorf("malformed totals should keep default time, got %q", result.QueryTotals.TotalQueryTime)
	}
}

func TestAnalyzeSASTPhaseEvents(t *testing.T) {
	content := strings.Join([]string{
		"21/12/2025 10:00:01,100 Engine Phase (Start): Parsing VBScript",
		"21/12/2025 10:00:09,900 Engine Phase ( End ): Parsing VBScript",
		"Engine Phase (Start): X", // shorter than a timestamp prefix
	}, "\n")

	result := AnalyzeSAST(content, parser.FormatCxSAST)

	if len(result.PhaseEvents) != 3 {
		t.Fatalf("want 3 phase events, got %d", len(result.PhaseEvents))
	}
	if result.PhaseEvents[0].Name != "Parsing VBScript" || result.PhaseEvents[0].Kind != "start" {
		t.Errorf("unexpected first event %+v", result.PhaseEvents[0])
	}
	if result.PhaseEvents[0].Timestamp != "21/12/2025 10:00:01,100" {
		t.Errorf("unexpected timestamp %q", result.PhaseEvents[0].Timestamp)
	}
	if result.PhaseEvents[1].Kind != "end" {
		t.Errorf("unexpected second event %+v", result.PhaseEvents[1])
	}
	if result.PhaseEvents[2].Timestamp != "" {
		t.Errorf("short line should have empty timestamp, got %q", result.PhaseEvents[2].Timestamp)
	}
}

func TestAnalyzeSASTLanguagesAndLOC(t *testing.T) {
	content := strings.Join([]string{
		"Languages that will be scanned: JavaScript=82, VbScript=24, Python=24",
		"Project contains 120000 lines of code",
		"Actually scanned lines of code: 98000",
	}, "\n")

	result := AnalyzeSAST(content, parser.FormatCxSAST)

	if result.Languages["JavaScript"] != 82 || result.Languages["VbScript"] != 24 || result.Languages["Python"] != 24 {
		t.Errorf("unexpected languages %v", result.Languages)
	}
	if result.TotalLOC != 120000 {
		t.Errorf("unexpected total LOC %d", result.TotalLOC)
	}
	if result.ScannedLOC != 98000 {
		t.Errorf("unexpected scanned LOC %d", result.ScannedLOC)
	}
}

func TestAnalyzeSASTFilesFromBothMarkers(t *testing.T) {
	content := strings.Join([]string{
		`Started processing file: C:\CxSrc\3fa85f64-5717-4562-b3fc-2c963f66afa6\src\app.js`,
		"Finished processing file: /tmp/3fa85f64-5717-4562-b3fc-2c963f66afa6/src/app.js",
		"Finished processing file: /tmp/3fa85f64-5717-4562-b3fc-2c963f66afa6/src/util.js",
	}, "\n")

	result := AnalyzeSAST(content, parser.FormatCxSAST)

	// app.js appears under two roots but reduces to one normalized path.
	if len(result.Files) != 2 {
		t.Fatalf("want 2 unique files, got %d: %v", len(result.Files), result.Files)
	}
	if result.Files[0] != "src/app.js" || result.Files[1] != "src/util.js" {
		t.Errorf("unexpected files %v", result.Files)
	}
}

func TestAnalyzeSASTIncrementalAlternates(t *testing.T) {
	t.Run("regular scan with incremental state file", func(t *testing.T) {
		content := "Starting regular scan\nIncrementalFiles.cx exists:True\n"
		result := AnalyzeSAST(content, parser.FormatCxSAST)
		if !result.ScanInfo.IsIncremental {
			t.Error("expected incremental")
		}
		if result.ScanInfo.IncrementalFilesChanged != nil {
			t.Error("no count should be reported")
		}
	})

	t.Run("alternative changed-files wording", func(t *testing.T) {
		content := "Incremental scan detected 42 changed files\n"
		result := AnalyzeSAST(content, parser.FormatCxSAST)
		info := result.ScanInfo
		if !info.IsIncremental || info.IncrementalFilesChanged == nil || *info.IncrementalFilesChanged != 42 {
			t.Errorf("unexpected incremental info %+v", info)
		}
	})
}
