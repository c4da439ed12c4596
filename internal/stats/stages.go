package stats

import (
	"math"

	"github.com/montanaflynn/stats"
	gonumstat "gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/sporesheet-cli/internal/grid"
	"github.com/KaramelBytes/sporesheet-cli/internal/sheet"
)

// span selects which sample columns a stage reads.
type span uint8

const (
	// fullSpan is every column between the label column and "Total".
	fullSpan span = iota
	// orderSpan is fullSpan in uniform mode and drops the last sample column
	// in legacy mode.
	orderSpan
)

// RowSample is what a stage sees of one data row.
type RowSample struct {
	Row int
	// Cells holds the raw cells of the span, blanks included.
	Cells []grid.Value
	// Values holds the numeric readings of the span in column order.
	// Blank and non-numeric cells are skipped.
	Values []float64
}

// Stage computes one stat column. Anchor is the column the stage's own column
// is created after when it does not exist yet.
type Stage struct {
	Name    string
	Anchor  string
	span    span
	compute func(RowSample) grid.Value
}

var pipeline = []Stage{
	{Name: sheet.Total, span: fullSpan, compute: total},
	{Name: sheet.Mean, Anchor: sheet.Total, span: fullSpan, compute: mean},
	{Name: sheet.Stdv, Anchor: sheet.Mean, span: fullSpan, compute: stdv},
	{Name: sheet.Frequency, Anchor: sheet.Stdv, span: fullSpan, compute: frequency},
	{Name: sheet.Min, Anchor: sheet.Frequency, span: orderSpan, compute: minimum},
	{Name: sheet.Percentile5, Anchor: sheet.Min, span: orderSpan, compute: percentile(5)},
	{Name: sheet.Median, Anchor: sheet.Percentile5, span: orderSpan, compute: median},
	{Name: sheet.Percentile95, Anchor: sheet.Median, span: orderSpan, compute: percentile(95)},
	{Name: sheet.Max, Anchor: sheet.Percentile95, span: orderSpan, compute: maximum},
	{Name: sheet.Count, Anchor: sheet.Max, span: orderSpan, compute: count},
}

// Stages returns the pipeline in execution order.
func Stages() []Stage {
	out := make([]Stage, len(pipeline))
	copy(out, pipeline)
	return out
}

// Lookup returns the stage named name.
func Lookup(name string) (Stage, bool) {
	for _, s := range pipeline {
		if s.Name == name {
			return s, true
		}
	}
	return Stage{}, false
}

// Compute applies the stage formula to one row.
func (s Stage) Compute(r RowSample) grid.Value { return s.compute(r) }

func total(r RowSample) grid.Value {
	if len(r.Values) == 0 {
		return grid.IntValue(0)
	}
	sum, _ := stats.Sum(r.Values)
	return grid.IntValue(int64(sum))
}

func mean(r RowSample) grid.Value {
	if len(r.Values) == 0 {
		return grid.EmptyValue()
	}
	m, _ := stats.Mean(r.Values)
	return grid.FloatValue(m)
}

// stdv is the sample standard deviation (n-1 denominator).
func stdv(r RowSample) grid.Value {
	if len(r.Values) < 2 {
		return grid.EmptyValue()
	}
	return grid.FloatValue(gonumstat.StdDev(r.Values, nil))
}

// frequency is the share of sample columns holding a nonzero reading, in
// percent, to two places with ties to even. The denominator counts every
// column of the span.
func frequency(r RowSample) grid.Value {
	if len(r.Cells) == 0 {
		return grid.IntValue(0)
	}
	present := 0
	for _, c := range r.Cells {
		if !c.IsZeroLike() {
			present++
		}
	}
	pct := float64(present) / float64(len(r.Cells)) * 100
	return grid.FloatValue(math.RoundToEven(pct*100) / 100)
}

func minimum(r RowSample) grid.Value {
	if len(r.Values) == 0 {
		return grid.EmptyValue()
	}
	m, _ := stats.Min(r.Values)
	return grid.IntValue(int64(m))
}

func maximum(r RowSample) grid.Value {
	if len(r.Values) == 0 {
		return grid.EmptyValue()
	}
	m, _ := stats.Max(r.Values)
	return grid.IntValue(int64(m))
}

// percentile uses the nearest-rank method: sorted[max(0, ceil(p*n)-1)].
func percentile(p float64) func(RowSample) grid.Value {
	return func(r RowSample) grid.Value {
		if len(r.Values) == 0 {
			return grid.EmptyValue()
		}
		v, _ := stats.PercentileNearestRank(r.Values, p)
		return grid.IntValue(int64(v))
	}
}

func median(r RowSample) grid.Value {
	n := len(r.Values)
	if n == 0 {
		return grid.EmptyValue()
	}
	m, _ := stats.Median(r.Values)
	if n%2 == 1 {
		return grid.IntValue(int64(m))
	}
	return grid.FloatValue(m)
}

// count is the number of non-blank cells in the span.
func count(r RowSample) grid.Value {
	n := 0
	for _, c := range r.Cells {
		if !c.IsBlank() {
			n++
		}
	}
	return grid.IntValue(int64(n))
}
