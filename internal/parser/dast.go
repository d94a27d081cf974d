package parser

import (
	"regexp"
	"strings"
)

// dastLinePattern matches the ZAP-based DAST line grammar:
//
//	YYYY-MM-DD HH:MM:SS,mmm [thread] LEVEL  ClassName - message
var dastLinePattern = regexp.MustCompile(
	`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2},\d{3}) \[([^\]]+)\] (\w+)\s+(\S+) - (.*)$`)

// ParseDASTLine parses one DAST-format line. Context carries the originating
// class name; DAST lines have no memory or phase fields.
func ParseDASTLine(line string) (*LogLine, bool) {
	m := dastLinePattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}

	return &LogLine{
		Timestamp: m[1],
		Thread:    strings.TrimSpace(m[2]),
		Level:     ParseLogLevel(m[3]),
		Context:   m[4],
		Message:   strings.TrimSpace(m[5]),
	}, true
}
