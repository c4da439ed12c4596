package sheet

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/sporesheet-cli/internal/grid"
)

// Label returns the trimmed row label of a data row.
func Label(g grid.Grid, row int) (string, error) {
	v, err := g.Cell(row, LabelColumn)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(v.Text()), nil
}

// Merge writes one sample into the sheet. The first blank header between the
// label column and "Total" is reused; without one a new column is inserted
// right before "Total". Rows are matched on their label. Rows whose label is
// not in values are left untouched and a nil value clears the cell. Labels
// with no matching row are ignored. Merge returns the column it wrote.
func Merge(g grid.Grid, values map[string]*int64, sampleID string) (int, error) {
	total, err := TotalColumn(g)
	if err != nil {
		return 0, err
	}
	target := 0
	for col := FirstSampleColumn; col < total; col++ {
		v, err := g.Cell(HeaderRow, col)
		if err != nil {
			return 0, err
		}
		if v.IsBlank() {
			target = col
			break
		}
	}
	if target == 0 {
		target = total
		if err := g.InsertColumn(target); err != nil {
			return 0, fmt.Errorf("insert sample column: %w", err)
		}
	}
	if err := g.SetCell(HeaderRow, target, grid.TextValue(sampleID), grid.Header); err != nil {
		return 0, fmt.Errorf("write sample header: %w", err)
	}
	for row := FirstDataRow; row <= g.MaxRow(); row++ {
		label, err := Label(g, row)
		if err != nil {
			return 0, err
		}
		n, ok := values[label]
		if !ok {
			continue
		}
		if err := g.SetCell(row, target, grid.OptionalInt(n), grid.Data); err != nil {
			return 0, fmt.Errorf("write %q: %w", label, err)
		}
	}
	return target, nil
}

// Reset zeroes every data cell of the Min, percentile, Median, Max and Stdv
// columns that exist. Missing columns are skipped.
func Reset(g grid.Grid) error {
	for _, name := range ResetColumns {
		col, ok, err := Find(g, name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		for row := FirstDataRow; row <= g.MaxRow(); row++ {
			if err := g.SetCell(row, col, grid.IntValue(0), grid.Unstyled); err != nil {
				return fmt.Errorf("reset %s row %d: %w", name, row, err)
			}
		}
	}
	return nil
}
