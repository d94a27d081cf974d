package analyzer

import "strings"

// FilterLines filters raw log lines by case-insensitive substring and/or by
// severity token. The level match keys on the "] LEVEL " rendering shared by
// all three log grammars, so it works on unparsed lines too.
func FilterLines(lines []string, text string, levels []string) []string {
	filtered := lines

	if text != "" {
		lower := strings.ToLower(text)
		var out []string
		for _, line := range filtered {
			if strings.Contains(strings.ToLower(line), lower) {
				out = append(out, line)
			}
		}
		filtered = out
	}

	if len(levels) > 0 {
		var out []string
		for _, line := range filtered {
			for _, level := range levels {
				if strings.Contains(line, "] "+strings.ToUpper(level)+" ") {
					out = append(out, line)
					break
				}
			}
		}
		filtered = out
	}

	return filtered
}
