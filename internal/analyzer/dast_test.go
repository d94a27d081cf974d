package analyzer

import (
	"strings"
	"testing"

	"github.com/scanops/scandiff/internal/parser"
)

const dastSample = `2025-12-31 19:02:04,001 [main] INFO  org.zaproxy.zap.ZAP - ZAP D-2025-12-23 started 31/12/2025, 19:02:04 with home: /home/zap/.ZAP cores: 4 maxMemory: 6 GB
2025-12-31 19:02:05,002 [main] INFO  ExtensionLoader - Loaded passive scan rule: Timestamp Disclosure
2025-12-31 19:02:05,003 [main] INFO  ExtensionLoader - Loaded passive scan rule: Private IP Disclosure
2025-12-31 19:02:06,004 [main] INFO  ExtensionAutomation - Job spider started
2025-12-31 19:02:30,005 [main] INFO  ExtensionAutomation - Job spider finished, time taken: 00:00:24
2025-12-31 19:02:30,006 [main] INFO  ExtensionAutomation - Job openapi added 37 URLs
2025-12-31 19:02:31,007 [main] INFO  ActiveScan - Scanning 42 node(s) from https://demo.example.com
2025-12-31 19:03:00,008 [main] WARN  ActiveScan - slow response
2025-12-31 19:03:10,009 [main] INFO  HostProcess - completed host/plugin https://demo.example.com | SqlInjection in 12.5s with 240 message(s) sent and 3 alert(s) raised
2025-12-31 19:03:12,010 [main] INFO  HostProcess - completed host/plugin https://demo.example.com | Xss in 8.25s with 120 message(s) sent and 1 alert(s) raised
2025-12-31 19:03:15,011 [main] ERROR ActiveScan - connection reset
2025-12-31 19:03:20,012 [main] INFO  ExtensionFactory - Installed add-ons: [[id=ascanrules, version=58.0.0, status=release], [id=pscanrules, version=53.0.0]]
2025-12-31 19:03:21,013 [main] INFO  Automation - Automation plan succeeded
2025-12-31 19:03:22,014 [main] INFO  org.zaproxy.zap.ZAP - ZAP terminated
stack trace continuation line
`

func TestAnalyzeDAST(t *testing.T) {
	result := AnalyzeDAST(dastSample)

	if result.Format != parser.FormatDAST {
		t.Fatalf("want DAST format, got %v", result.Format)
	}
	if result.ParsedLines != 14 {
		t.Errorf("want 14 parsed lines, got %d", result.ParsedLines)
	}
	if len(result.Errors) != 1 || len(result.Warnings) != 1 {
		t.Errorf("want 1 error / 1 warning, got %d/%d", len(result.Errors), len(result.Warnings))
	}

	info := result.ScanInfo
	if info.ZapVersion != "D-2025-12-23" {
		t.Errorf("unexpected zap version %q", info.ZapVersion)
	}
	if info.Cores != 4 {
		t.Errorf("unexpected cores %d", info.Cores)
	}
	if info.MaxMemory != "6 GB" {
		t.Errorf("unexpected max memory %q", info.MaxMemory)
	}
	if info.TargetURL != "https://demo.example.com" {
		t.Errorf("unexpected target url %q", info.TargetURL)
	}
	if info.Status != "Succeeded" {
		t.Errorf("unexpected status %q", info.Status)
	}
	if !info.Completed {
		t.Error("expected completed flag")
	}

	dast := result.DAST
	if dast == nil {
		t.Fatal("missing DAST facets")
	}
	if len(dast.Jobs) != 1 {
		t.Fatalf("want 1 finished job, got %d", len(dast.Jobs))
	}
	if dast.Jobs[0].Name != "spider" || dast.Jobs[0].Duration != "00:00:24" {
		t.Errorf("unexpected job %+v", dast.Jobs[0])
	}
	if dast.Jobs[0].URLsAdded != 37 {
		t.Errorf("URL count should attach to last finished job, got %d", dast.Jobs[0].URLsAdded)
	}

	if len(dast.PassiveRules) != 2 {
		t.Errorf("want 2 passive rules, got %v", dast.PassiveRules)
	}
	if len(dast.ActiveRules) != 2 {
		t.Fatalf("want 2 active rules, got %v", dast.ActiveRules)
	}
	rule := dast.ActiveRules[0]
	if rule.Name != "SqlInjection" || rule.Duration != 12.5 || rule.MessagesSent != 240 || rule.AlertsRaised != 3 {
		t.Errorf("unexpected active rule %+v", rule)
	}
	if dast.TotalMessages != 360 || dast.TotalAlerts != 4 {
		t.Errorf("unexpected totals %d/%d", dast.TotalMessages, dast.TotalAlerts)
	}

	if len(dast.Addons) != 2 {
		t.Fatalf("want 2 add-ons, got %v", dast.Addons)
	}
	if dast.Addons[0].ID != "ascanrules" || dast.Addons[0].Version != "58.0.0" {
		t.Errorf("unexpected add-on %+v", dast.Addons[0])
	}

	if dast.FirstTimestamp != "2025-12-31 19:02:04,001" {
		t.Errorf("unexpected first timestamp %q", dast.FirstTimestamp)
	}
	if dast.LastTimestamp != "2025-12-31 19:03:22,014" {
		t.Errorf("unexpected last timestamp %q", dast.LastTimestamp)
	}
}

func TestAnalyzeDASTFailedPlan(t *testing.T) {
	content := "2025-12-31 19:03:21,013 [main] ERROR Automation - Automation plan failed\n"
	result := AnalyzeDAST(content)
	if result.ScanInfo.Status != "Failed" {
		t.Errorf("unexpected status %q", result.ScanInfo.Status)
	}
	if result.ScanInfo.Completed {
		t.Error("plan failure alone does not mean terminated")
	}
}

func TestAnalyzeDASTEmptyInput(t *testing.T) {
	result := AnalyzeDAST("")
	if result.ParsedLines != 0 {
		t.Errorf("want 0 parsed lines, got %d", result.ParsedLines)
	}
	if len(result.DAST.Jobs) != 0 || len(result.DAST.Addons) != 0 {
		t.Errorf("empty input should yield empty facets: %+v", result.DAST)
	}
	if result.ScanInfo.Status != "" {
		t.Errorf("unexpected status %q", result.ScanInfo.Status)
	}
}

func TestFilterLines(t *testing.T) {
	lines := strings.Split(dastSample, "\n")

	errors := FilterLines(lines, "", []string{"ERROR"})
	if len(errors) != 1 || !strings.Contains(errors[0], "connection reset") {
		t.Errorf("unexpected ERROR filter result %v", errors)
	}

	both := FilterLines(lines, "", []string{"ERROR", "WARN"})
	if len(both) != 2 {
		t.Errorf("want 2 lines for ERROR+WARN, got %d", len(both))
	}

	text := FilterLines(lines, "passive scan rule", nil)
	if len(text) != 2 {
		t.Errorf("want 2 lines for text filter, got %d", len(text))
	}

	combined := FilterLines(lines, "slow", []string{"WARN"})
	if len(combined) != 1 {
		t.Errorf("want 1 line for combined filter, got %d", len(combined))
	}
}
