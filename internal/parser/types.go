package parser

import "strings"

// LogLevel represents the severity of a log line
type LogLevel int

const (
	LevelOther LogLevel = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// LogLine represents one parsed log line.
//
// Context holds the phase name for engine-format lines and the originating
// class name for DAST lines. The memory and elapsed-time fields are only set
// for engine-format lines; ElapsedTime stays an opaque string because each
// engine renders durations its own way.
type LogLine struct {
	Timestamp       string   `json:"timestamp"`
	Thread          string   `json:"thread"`
	Level           LogLevel `json:"level"`
	Context         string   `json:"context"`
	Message         string   `json:"message"`
	AvailableMemory int      `json:"available_memory,omitempty"`
	UsedMemory      int      `json:"used_memory,omitempty"`
	ElapsedTime     string   `json:"elapsed_time,omitempty"`
}

// Format identifies a scan-log format
type Format string

const (
	// FormatCxOneSAST is the cloud-hosted source engine (Kubernetes/Unix)
	FormatCxOneSAST Format = "cxone_sast"
	// FormatCxSAST is the on-premise source engine (Windows)
	FormatCxSAST Format = "cxsast"
	// FormatCxOne is the generic cloud log format
	FormatCxOne Format = "cxone"
	// FormatDAST is the ZAP-based dynamic scan log. Detect never returns it;
	// callers select it explicitly.
	FormatDAST Format = "dast"
)

// Label returns the display name for a format
func (f Format) Label() string {
	switch f {
	case FormatCxOneSAST:
		return "CxOne SAST"
	case FormatCxSAST:
		return "CxSAST (On-Prem)"
	case FormatDAST:
		return "CxOne DAST"
	default:
		return "CxOne"
	}
}

// String methods for LogLevel
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "OTHER"
	}
}

// ParseLogLevel parses string to LogLevel
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR", "FATAL":
		return LevelError
	default:
		return LevelOther
	}
}
