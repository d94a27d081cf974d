package parser

import (
	"strings"

	"github.com/google/uuid"
)

// runIDLength is the textual length of a canonical run identifier
// (8-4-4-4-12 hex digits).
const runIDLength = 36

// NormalizePath canonicalizes a file-system path taken from a log message.
// It normalizes separators to forward slash and strips everything up to and
// including the first path segment carrying a run UUID, returning the
// relative project path. Paths without a run UUID come back unchanged apart
// from separator normalization, so the operation never fails on malformed
// input.
func NormalizePath(p string) string {
	path := strings.ReplaceAll(p, `\`, "/")

	offset := 0
	for _, segment := range strings.Split(path, "/") {
		if containsRunID(segment) {
			rest := path[offset+len(segment):]
			if strings.HasPrefix(rest, "/") && len(rest) > 1 {
				return rest[1:]
			}
		}
		offset += len(segment) + 1
	}

	return path
}

// containsRunID reports whether any 36-character window of the segment is a
// valid UUID. uuid.Parse decides validity, so lookalikes with misplaced
// hyphens or non-hex digits are rejected.
func containsRunID(segment string) bool {
	for i := 0; i+runIDLength <= len(segment); i++ {
		if _, err := uuid.Parse(segment[i : i+runIDLength]); err == nil {
			return true
		}
	}
	return false
}

// Basename returns the final path element, tolerating either slash
// convention. Used by the comparator to match files across runs that were
// checked out under different roots.
func Basename(p string) string {
	path := strings.ReplaceAll(p, `\`, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
