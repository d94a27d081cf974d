package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// engineLinePattern matches the line grammar shared by the CxOne cloud SAST
// engine and the CxSAST on-prem engine:
//
//	DD/MM/YYYY HH:MM:SS,mmm [thread] LEVEL  Available memory: N Used memory: N Elapsed Time: H:MM:SS.nnn [Phase] - message
var engineLinePattern = regexp.MustCompile(
	`^(\d{2}/\d{2}/\d{4} \d{2}:\d{2}:\d{2},\d{3}) \[([^\]]+)\] (\w+)\s+` +
		`Available memory: (\d+) Used memory: (\d+) Elapsed Time: ([\d:.]+) \[([^\]]+)\] - (.*)$`)

// ParseEngineLine parses one engine-format line. Lines that do not match the
// grammar (continuation lines, banners) return ok=false; that is expected and
// not an error.
func ParseEngineLine(line string) (*LogLine, bool) {
	m := engineLinePattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}

	avail, err := strconv.Atoi(m[4])
	if err != nil {
		return nil, false
	}
	used, err := strconv.Atoi(m[5])
	if err != nil {
		return nil, false
	}

	return &LogLine{
		Timestamp:       m[1],
		Thread:          strings.TrimSpace(m[2]),
		Level:           ParseLogLevel(m[3]),
		AvailableMemory: avail,
		UsedMemory:      used,
		ElapsedTime:     m[6],
		Context:         m[7],
		Message:         strings.TrimSpace(m[8]),
	}, true
}
