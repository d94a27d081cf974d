package analyzer

import (
	"fmt"
	"regexp"
	"strings"
)

// Marker is a user-defined signature counted against the raw line set.
// Markers are declared in the config file and let operators flag runtime
// conditions the built-in extractors do not track.
type Marker struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Regex    string   `yaml:"regex,omitempty" json:"regex,omitempty"`
	Keywords []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}

// MarkerHit is one marker's match summary for a log
type MarkerHit struct {
	Marker Marker   `json:"marker"`
	Count  int      `json:"count"`
	Sample []string `json:"sample,omitempty"`
}

// markerSampleSize caps how many matching lines are kept per marker
const markerSampleSize = 3

type compiledMarker struct {
	marker        Marker
	regex         *regexp.Regexp
	keywordsLower []string
}

// CompileMarkers validates marker definitions up front so a bad regex
// surfaces at config load, not mid-analysis.
func CompileMarkers(markers []Marker) error {
	for _, m := range markers {
		if _, err := compileMarker(m); err != nil {
			return err
		}
	}
	return nil
}

func compileMarker(m Marker) (*compiledMarker, error) {
	cm := &compiledMarker{marker: m}

	if m.Regex != "" {
		re, err := regexp.Compile("(?i)" + m.Regex)
		if err != nil {
			return nil, fmt.Errorf("marker %s: invalid regex: %w", m.ID, err)
		}
		cm.regex = re
	}

	for _, kw := range m.Keywords {
		cm.keywordsLower = append(cm.keywordsLower, strings.ToLower(kw))
	}

	if cm.regex == nil && len(cm.keywordsLower) == 0 {
		return nil, fmt.Errorf("marker %s: needs a regex or keywords", m.ID)
	}

	return cm, nil
}

// ScanMarkers tallies marker matches over the raw line set. Markers that
// fail to compile are skipped; a broken marker must not abort analysis.
func ScanMarkers(markers []Marker, lines []string) []MarkerHit {
	if len(markers) == 0 {
		return nil
	}

	compiled := make([]*compiledMarker, 0, len(markers))
	for _, m := range markers {
		cm, err := compileMarker(m)
		if err != nil {
			continue
		}
		compiled = append(compiled, cm)
	}

	hits := make([]MarkerHit, len(compiled))
	for i, cm := range compiled {
		hits[i].Marker = cm.marker
	}

	for _, line := range lines {
		lower := ""
		for i, cm := range compiled {
			matched := false
			if cm.regex != nil && cm.regex.MatchString(line) {
				matched = true
			} else if len(cm.keywordsLower) > 0 {
				if lower == "" {
					lower = strings.ToLower(line)
				}
				for _, kw := range cm.keywordsLower {
					if strings.Contains(lower, kw) {
						matched = true
						break
					}
				}
			}
			if !matched {
				continue
			}
			hits[i].Count++
			if len(hits[i].Sample) < markerSampleSize {
				hits[i].Sample = append(hits[i].Sample, strings.TrimSpace(line))
			}
		}
	}

	var result []MarkerHit
	for _, h := range hits {
		if h.Count > 0 {
			result = append(result, h)
		}
	}
	return result
}
