// Package sheet implements the fixed layout of a spore-count worksheet:
// header lookup, column provisioning, sample merging and stat reset.
package sheet

import (
	"fmt"

	"github.com/KaramelBytes/sporesheet-cli/internal/grid"
)

// Fixed layout of the worksheet.
const (
	HeaderRow         = 3
	FirstDataRow      = 4
	LabelColumn       = 1
	FirstSampleColumn = 2
)

// Stat column names, left to right.
const (
	Total        = "Total"
	Mean         = "Mean"
	Stdv         = "Stdv"
	Frequency    = "Frequency"
	Min          = "Min"
	Percentile5  = "5th Percentile"
	Median       = "Median"
	Percentile95 = "95th Percentile"
	Max          = "Max"
	Count        = "Count"
)

// StatColumns lists every stat column in layout order.
var StatColumns = []string{Total, Mean, Stdv, Frequency, Min, Percentile5, Median, Percentile95, Max, Count}

// ResetColumns are zeroed before every recompute.
var ResetColumns = []string{Min, Percentile5, Median, Percentile95, Max, Stdv}

// MissingColumnError is returned when a column the layout requires is absent
// from the header row.
type MissingColumnError struct {
	Name string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("the '%s' column header is missing in row %d of the sheet", e.Name, HeaderRow)
}

// Find returns the 1-based index of the first header cell equal to name.
// The comparison is exact: case-sensitive and untrimmed.
func Find(g grid.Grid, name string) (int, bool, error) {
	for col := 1; col <= g.MaxColumn(); col++ {
		v, err := g.Cell(HeaderRow, col)
		if err != nil {
			return 0, false, err
		}
		if v.Kind() == grid.Text && v.Text() == name {
			return col, true, nil
		}
	}
	return 0, false, nil
}

// TotalColumn locates "Total" or fails with MissingColumnError.
func TotalColumn(g grid.Grid) (int, error) {
	col, ok, err := Find(g, Total)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &MissingColumnError{Name: Total}
	}
	return col, nil
}

// Provision returns the column named name, creating it right after anchor
// when it does not exist yet. Without an anchor in the header row the new
// column is appended after the last used column. An empty anchor always
// appends.
func Provision(g grid.Grid, name, anchor string) (int, error) {
	col, ok, err := Find(g, name)
	if err != nil {
		return 0, err
	}
	if ok {
		return col, nil
	}
	target := g.MaxColumn() + 1
	if anchor != "" {
		a, found, err := Find(g, anchor)
		if err != nil {
			return 0, err
		}
		if found {
			target = a + 1
		}
	}
	if err := g.InsertColumn(target); err != nil {
		return 0, fmt.Errorf("insert column %q at %d: %w", name, target, err)
	}
	if err := g.SetCell(HeaderRow, target, grid.TextValue(name), grid.Header); err != nil {
		return 0, fmt.Errorf("write header %q: %w", name, err)
	}
	return target, nil
}

// SampleColumn is a sample header left of "Total".
type SampleColumn struct {
	Index int
	ID    string
}

// Samples lists the non-blank headers between the label column and "Total".
func Samples(g grid.Grid) ([]SampleColumn, error) {
	total, err := TotalColumn(g)
	if err != nil {
		return nil, err
	}
	var out []SampleColumn
	for col := FirstSampleColumn; col < total; col++ {
		v, err := g.Cell(HeaderRow, col)
		if err != nil {
			return nil, err
		}
		if v.IsBlank() {
			continue
		}
		out = append(out, SampleColumn{Index: col, ID: v.Text()})
	}
	return out, nil
}
