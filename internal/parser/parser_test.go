package parser

import (
	"strings"
	"testing"
)

func TestParseEngineLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantOK   bool
		validate func(*testing.T, *LogLine)
	}{
		{
			name: "full engine line",
			input: "23/12/2025 19:02:04,123 [Engine Worker 3] INFO  " +
				"Available memory: 4096 Used memory: 1024 Elapsed Time: 0:01:02.345 [Queries] - Begin running query JavaScript.Cx.General.Find_Passwords",
			wantOK: true,
			validate: func(t *testing.T, l *LogLine) {
				if l.Level != LevelInfo {
					t.Errorf("want level INFO, got %v", l.Level)
				}
				if l.Thread != "Engine Worker 3" {
					t.Errorf("want thread 'Engine Worker 3', got %q", l.Thread)
				}
				if l.AvailableMemory != 4096 || l.UsedMemory != 1024 {
					t.Errorf("want memory 4096/1024, got %d/%d", l.AvailableMemory, l.UsedMemory)
				}
				if l.ElapsedTime != "0:01:02.345" {
					t.Errorf("want elapsed '0:01:02.345', got %q", l.ElapsedTime)
				}
				if l.Context != "Queries" {
					t.Errorf("want context 'Queries', got %q", l.Context)
				}
				if !strings.HasPrefix(l.Message, "Begin running query") {
					t.Errorf("unexpected message %q", l.Message)
				}
			},
		},
		{
			name: "error level",
			input: "01/01/2026 00:00:00,001 [main] ERROR  " +
				"Available memory: 10 Used memory: 20 Elapsed Time: 0:00:00.001 [Init] - failed to open project",
			wantOK: true,
			validate: func(t *testing.T, l *LogLine) {
				if l.Level != LevelError {
					t.Errorf("want level ERROR, got %v", l.Level)
				}
			},
		},
		{
			name:   "banner line",
			input:  "=== Checkmarx Engine ===",
			wantOK: false,
		},
		{
			name:   "continuation line",
			input:  "    at System.IO.File.Open(...)",
			wantOK: false,
		},
		{
			name:   "empty line",
			input:  "",
			wantOK: false,
		},
		{
			name: "dast timestamp does not match engine grammar",
			input: "2025-12-23 19:02:04,001 [main] INFO  " +
				"Available memory: 1 Used memory: 2 Elapsed Time: 0:00:00.001 [Init] - x",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, ok := ParseEngineLine(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseEngineLine() ok = %v, want %v", ok, tt.wantOK)
			}
			if tt.validate != nil && line != nil {
				tt.validate(t, line)
			}
		})
	}
}

func TestParseDASTLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantOK   bool
		validate func(*testing.T, *LogLine)
	}{
		{
			name:   "error line",
			input:  "2025-12-23 19:02:04,001 [main] ERROR ZapClass - boom",
			wantOK: true,
			validate: func(t *testing.T, l *LogLine) {
				if l.Level != LevelError {
					t.Errorf("want level ERROR, got %v", l.Level)
				}
				if l.Context != "ZapClass" {
					t.Errorf("want context 'ZapClass', got %q", l.Context)
				}
				if l.Message != "boom" {
					t.Errorf("want message 'boom', got %q", l.Message)
				}
			},
		},
		{
			name:   "info line with dotted class",
			input:  "2025-12-23 19:02:05,002 [ZAP-Thread-1] INFO  org.zaproxy.addon.automation.ExtensionAutomation - Job spider started",
			wantOK: true,
			validate: func(t *testing.T, l *LogLine) {
				if l.Context != "org.zaproxy.addon.automation.ExtensionAutomation" {
					t.Errorf("unexpected context %q", l.Context)
				}
				if l.Thread != "ZAP-Thread-1" {
					t.Errorf("unexpected thread %q", l.Thread)
				}
			},
		},
		{
			name:   "engine timestamp does not match dast grammar",
			input:  "23/12/2025 19:02:04,001 [main] ERROR ZapClass - boom",
			wantOK: false,
		},
		{
			name:   "stack trace continuation",
			input:  "\tat org.zaproxy.zap.ZAP.main(ZAP.java:129)",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, ok := ParseDASTLine(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseDASTLine() ok = %v, want %v", ok, tt.wantOK)
			}
			if tt.validate != nil && line != nil {
				tt.validate(t, line)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"ERROR":   LevelError,
		"error":   LevelError,
		"WARN":    LevelWarn,
		"WARNING": LevelWarn,
		"INFO":    LevelInfo,
		"DEBUG":   LevelDebug,
		"TRACE":   LevelOther,
		"":        LevelOther,
	}
	for input, want := range cases {
		if got := ParseLogLevel(input); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
