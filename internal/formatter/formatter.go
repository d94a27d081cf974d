package formatter

import (
	"github.com/scanops/scandiff/internal/analyzer"
	"github.com/scanops/scandiff/internal/compare"
)

// Formatter renders analysis and comparison results for one output encoding
type Formatter interface {
	FormatAnalysis(result *analyzer.Result) ([]byte, error)
	FormatComparison(result *compare.Result) ([]byte, error)
}
