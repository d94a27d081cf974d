package parser

import "strings"

// detectSampleLines bounds how much of the log the detector inspects.
// Signature tokens occasionally recur later in a log for unrelated reasons,
// so only the head is trusted.
const detectSampleLines = 150

// signature is one ordered detection rule. Rules are evaluated in slice
// order and the first match wins, which keeps the precedence auditable and
// testable per predicate.
type signature struct {
	match  func(sample string) bool
	format func(sample string) Format
}

// cloudEngineMarkers distinguish the cloud-hosted engine from the on-prem
// one once the shared engine grammar has been recognized.
var cloudEngineMarkers = []string{
	"sast-engine-worker", // Kubernetes pod name (lower-cased sample)
	"os: unix",
	"os: linux",
	"/app/engine", // container path
	"kubernetes.io",
	"/usr/share/dotnet",
}

var signatures = []signature{
	{
		// The shared engine grammar must be checked before the generic name
		// fragments: on-prem logs can also contain those fragments.
		match: func(s string) bool {
			return strings.Contains(s, "Available memory:") &&
				strings.Contains(s, "Used memory:") &&
				strings.Contains(s, "Elapsed Time:")
		},
		format: func(s string) Format {
			lower := strings.ToLower(s)
			for _, marker := range cloudEngineMarkers {
				if strings.Contains(lower, marker) {
					return FormatCxOneSAST
				}
			}
			return FormatCxSAST
		},
	},
	{
		match:  func(s string) bool { return strings.Contains(s, "Checkmarx Engine Service") },
		format: func(string) Format { return FormatCxSAST },
	},
	{
		match: func(s string) bool {
			lower := strings.ToLower(s)
			return strings.Contains(s, "CxOne") ||
				strings.Contains(lower, "cx-one") ||
				strings.Contains(lower, "ast-sast") ||
				strings.Contains(s, "INFO  QueryResolver") ||
				strings.Contains(s, "Starting Query:")
		},
		format: func(string) Format { return FormatCxOne },
	},
}

// Detect classifies raw log content into one of the three source-analysis
// formats by inspecting the first 150 lines. Detection never fails: content
// matching no signature defaults to the generic cloud format. DAST logs are
// not classified here; the caller selects the DAST path explicitly.
func Detect(content string) Format {
	lines := strings.Split(content, "\n")
	if len(lines) > detectSampleLines {
		lines = lines[:detectSampleLines]
	}
	sample := strings.Join(lines, "\n")

	for _, sig := range signatures {
		if sig.match(sample) {
			return sig.format(sample)
		}
	}
	return FormatCxOne
}
