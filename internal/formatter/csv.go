package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/scanops/scandiff/internal/analyzer"
	"github.com/scanops/scandiff/internal/compare"
)

// csvFormatter formats query records and comparison summaries as CSV
type csvFormatter struct{}

// NewCSV creates a new CSV formatter
func NewCSV() Formatter {
	return &csvFormatter{}
}

func (f *csvFormatter) FormatAnalysis(result *analyzer.Result) ([]byte, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	headers := []string{
		"Language",
		"Group",
		"Query",
		"Status",
		"Results",
		"Duration",
	}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, q := range result.Queries {
		record := []string{
			q.Language,
			q.Group,
			q.Name,
			q.Status,
			strconv.Itoa(q.Results),
			q.Duration,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return b.Bytes(), nil
}

func (f *csvFormatter) FormatComparison(result *compare.Result) ([]byte, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	headers := []string{"Metric", "Run A", "Run B", "Delta"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, key := range compare.SummaryOrder {
		pair, ok := result.Summary[key]
		if !ok {
			continue
		}
		delta := ""
		if pair.Numeric {
			delta = strconv.Itoa(pair.Delta)
		}
		record := []string{key, pair.ValueA, pair.ValueB, delta}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	for _, c := range result.Queries.ResultsChanged {
		record := []string{
			"query:" + escapeCSVString(c.Name),
			strconv.Itoa(c.ResultsA),
			strconv.Itoa(c.ResultsB),
			strconv.Itoa(c.Delta),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return b.Bytes(), nil
}

// escapeCSVString removes newlines and truncates long values
func escapeCSVString(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	if len(s) > 100 {
		s = s[:97] + "..."
	}
	return s
}
