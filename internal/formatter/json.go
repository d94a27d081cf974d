package formatter

import (
	"encoding/json"

	"github.com/scanops/scandiff/internal/analyzer"
	"github.com/scanops/scandiff/internal/compare"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

func (f *jsonFormatter) FormatAnalysis(result *analyzer.Result) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}

func (f *jsonFormatter) FormatComparison(result *compare.Result) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}
