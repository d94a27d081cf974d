package compare

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/scanops/scandiff/internal/normalize"
	"github.com/scanops/scandiff/internal/parser"
)

func analysis(files []string, queries map[string]normalize.Query) *normalize.Analysis {
	return &normalize.Analysis{
		LogType:     "CxSAST (On-Prem)",
		ProjectName: "BookStore",
		ScanMode:    "Full Scan",
		TotalTime:   "0:05:00",
		Files:       files,
		Queries:     queries,
	}
}

func TestCompareSummary(t *testing.T) {
	a := analysis([]string{"src/a.js"}, nil)
	a.TotalResults = 10
	a.PeakMemory = 1024
	b := analysis([]string{"src/a.js", "src/b.js"}, nil)
	b.TotalResults = 25
	b.PeakMemory = 900
	b.ProjectName = "BookStore-v2"

	r := Compare(a, b)

	tr := r.Summary["total_results"]
	if !tr.Numeric || tr.Delta != 15 {
		t.Errorf("total_results pair = %+v", tr)
	}
	pm := r.Summary["peak_memory"]
	if pm.Delta != -124 {
		t.Errorf("peak_memory delta = %d", pm.Delta)
	}
	pn := r.Summary["project_name"]
	if pn.Numeric || pn.ValueA != "BookStore" || pn.ValueB != "BookStore-v2" {
		t.Errorf("project_name pair = %+v", pn)
	}
	fc := r.Summary["files_count"]
	if fc.ValueA != "1" || fc.ValueB != "2" || fc.Delta != 1 {
		t.Errorf("files_count pair = %+v", fc)
	}
	for _, key := range SummaryOrder {
		if _, ok := r.Summary[key]; !ok {
			t.Errorf("summary missing %q", key)
		}
	}
}

func TestCompareFilesByBasename(t *testing.T) {
	a := analysis([]string{"src/app.js", "lib/util.js"}, nil)
	b := analysis([]string{"moved/deeper/app.js", "lib/extra.js"}, nil)

	r := Compare(a, b)

	if !reflect.DeepEqual(r.Files.InBoth, []string{"src/app.js"}) {
		t.Errorf("InBoth = %v", r.Files.InBoth)
	}
	if !reflect.DeepEqual(r.Files.OnlyInA, []string{"lib/util.js"}) {
		t.Errorf("OnlyInA = %v", r.Files.OnlyInA)
	}
	if !reflect.DeepEqual(r.Files.OnlyInB, []string{"lib/extra.js"}) {
		t.Errorf("OnlyInB = %v", r.Files.OnlyInB)
	}
}

func TestCompareFilesAfterPathNormalization(t *testing.T) {
	pathA := parser.NormalizePath(`/tmp/3fa85f64-5717-4562-b3fc-2c963f66afa6/src/app.js`)
	pathB := parser.NormalizePath(`C:\scans\8b1f3de2-9c44-4f1b-a2d3-55e6a7b8c9d0\src\app.js`)

	r := Compare(analysis([]string{pathA}, nil), analysis([]string{pathB}, nil))

	if len(r.Files.InBoth) != 1 || parser.Basename(r.Files.InBoth[0]) != "app.js" {
		t.Errorf("normalized paths did not match, diff %+v", r.Files)
	}
	if len(r.Files.OnlyInA) != 0 || len(r.Files.OnlyInB) != 0 {
		t.Errorf("unexpected exclusive files %+v", r.Files)
	}
}

func TestCompareQueriesChangedRanking(t *testing.T) {
	qa := map[string]normalize.Query{
		"Python.SqlInjection":  {Results: 10, ResultsKnown: true},
		"Python.HardcodedKey":  {Results: 4, ResultsKnown: true},
		"Java.PathTraversal":   {Results: 7, ResultsKnown: true},
		"Java.RemovedQuery":    {Results: 1, ResultsKnown: true},
		"JavaScript.Unchanged": {Results: 3, ResultsKnown: true},
	}
	qb := map[string]normalize.Query{
		"Python.SqlInjection":  {Results: 25, ResultsKnown: true},
		"Python.HardcodedKey":  {Results: 5, ResultsKnown: true},
		"Java.PathTraversal":   {Results: 2, ResultsKnown: true},
		"JavaScript.Unchanged": {Results: 3, ResultsKnown: true},
		"Go.NewQuery":          {Results: 2, ResultsKnown: true},
	}

	r := Compare(analysis(nil, qa), analysis(nil, qb))

	if !reflect.DeepEqual(r.Queries.OnlyInA, []string{"Java.RemovedQuery"}) {
		t.Errorf("OnlyInA = %v", r.Queries.OnlyInA)
	}
	if !reflect.DeepEqual(r.Queries.OnlyInB, []string{"Go.NewQuery"}) {
		t.Errorf("OnlyInB = %v", r.Queries.OnlyInB)
	}
	if r.Queries.InBothCount != 4 {
		t.Errorf("InBothCount = %d", r.Queries.InBothCount)
	}

	changed := r.Queries.ResultsChanged
	if len(changed) != 3 {
		t.Fatalf("ResultsChanged = %v", changed)
	}
	want := QueryChange{Name: "Python.SqlInjection", ResultsA: 10, ResultsB: 25, Delta: 15}
	if changed[0] != want {
		t.Errorf("top change = %+v, want %+v", changed[0], want)
	}
	if changed[1].Name != "Java.PathTraversal" || changed[1].Delta != -5 {
		t.Errorf("second change = %+v", changed[1])
	}
	if changed[2].Name != "Python.HardcodedKey" || changed[2].Delta != 1 {
		t.Errorf("third change = %+v", changed[2])
	}
}

func TestCompareErrorSamples(t *testing.T) {
	long := strings.Repeat("x", 150)
	var errs []parser.LogLine
	for i := 0; i < 12; i++ {
		errs = append(errs, parser.LogLine{Message: long})
	}

	a := analysis(nil, nil)
	a.Errors = errs
	b := analysis(nil, nil)
	b.Errors = []parser.LogLine{{Message: "boom"}}

	r := Compare(a, b)

	if len(r.Errors.SampleA) != 10 {
		t.Errorf("SampleA length = %d, want 10", len(r.Errors.SampleA))
	}
	if len(r.Errors.SampleA[0]) != 100 {
		t.Errorf("sample not truncated, length = %d", len(r.Errors.SampleA[0]))
	}
	if !reflect.DeepEqual(r.Errors.SampleB, []string{"boom"}) {
		t.Errorf("SampleB = %v", r.Errors.SampleB)
	}
}

func TestCompareErrorSampleMultibyte(t *testing.T) {
	// 120 three-byte runes; truncation must cut between characters
	long := strings.Repeat("日", 120)

	a := analysis(nil, nil)
	a.Errors = []parser.LogLine{{Message: long}}
	b := analysis(nil, nil)

	r := Compare(a, b)

	got := r.Errors.SampleA[0]
	if !utf8.ValidString(got) {
		t.Fatalf("truncated sample is not valid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 100 {
		t.Errorf("sample rune count = %d, want 100", n)
	}
}

func TestCompareSymmetry(t *testing.T) {
	a := analysis([]string{"src/app.js", "lib/util.js"}, map[string]normalize.Query{
		"Python.SqlInjection": {Results: 10, ResultsKnown: true},
		"Java.OnlyHere":       {Results: 2, ResultsKnown: true},
	})
	a.TotalResults = 12
	b := analysis([]string{"src/app.js", "new/other.js"}, map[string]normalize.Query{
		"Python.SqlInjection": {Results: 25, ResultsKnown: true},
		"Go.OnlyThere":        {Results: 1, ResultsKnown: true},
	})
	b.TotalResults = 26

	ab := Compare(a, b)
	ba := Compare(b, a)

	if !reflect.DeepEqual(ab.Files.OnlyInA, ba.Files.OnlyInB) {
		t.Errorf("files OnlyInA/OnlyInB not symmetric: %v vs %v", ab.Files.OnlyInA, ba.Files.OnlyInB)
	}
	if !reflect.DeepEqual(ab.Files.OnlyInB, ba.Files.OnlyInA) {
		t.Errorf("files OnlyInB/OnlyInA not symmetric: %v vs %v", ab.Files.OnlyInB, ba.Files.OnlyInA)
	}
	if !reflect.DeepEqual(ab.Queries.OnlyInA, ba.Queries.OnlyInB) {
		t.Errorf("queries OnlyInA/OnlyInB not symmetric")
	}
	for _, key := range SummaryOrder {
		pa, pb := ab.Summary[key], ba.Summary[key]
		if pa.Numeric && pa.Delta != -pb.Delta {
			t.Errorf("summary %q delta %d does not negate %d", key, pa.Delta, pb.Delta)
		}
	}
	if ab.Queries.ResultsChanged[0].Delta != -ba.Queries.ResultsChanged[0].Delta {
		t.Error("query change delta does not negate when swapped")
	}
}
