package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/sporesheet-cli/internal/grid"
	"github.com/KaramelBytes/sporesheet-cli/internal/sheet"
)

// Template describes a fresh worksheet in the fixed layout.
type Template struct {
	Title       string
	LabelHeader string
	// Spare is the number of blank sample columns reserved before "Total".
	Spare  int
	Labels []string
}

// Create builds a new workbook from t and writes it to path. The caller is
// expected to have checked that path does not exist yet.
func Create(path string, opts Options, t Template) (*Workbook, error) {
	f := excelize.NewFile()
	name := opts.Sheet
	if name == "" {
		name = "Spores"
	}
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	opts.Sheet = name
	w, err := wrap(f, path, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := w.fill(t); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := w.Save(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

func (w *Workbook) fill(t Template) error {
	if t.Title != "" {
		if err := w.SetCell(1, 1, grid.TextValue(t.Title), grid.Header); err != nil {
			return err
		}
	}
	label := t.LabelHeader
	if label == "" {
		label = "Spore Type"
	}
	if err := w.SetCell(sheet.HeaderRow, sheet.LabelColumn, grid.TextValue(label), grid.Header); err != nil {
		return err
	}
	spare := max(0, t.Spare)
	// reserve the blank header cells so the merge step fills them in order
	for i := 0; i < spare; i++ {
		if err := w.SetCell(sheet.HeaderRow, sheet.FirstSampleColumn+i, grid.EmptyValue(), grid.Header); err != nil {
			return err
		}
	}
	totalCol := sheet.FirstSampleColumn + spare
	if err := w.SetCell(sheet.HeaderRow, totalCol, grid.TextValue(sheet.Total), grid.Header); err != nil {
		return err
	}
	for i, l := range t.Labels {
		if err := w.SetCell(sheet.FirstDataRow+i, sheet.LabelColumn, grid.TextValue(l), grid.Data); err != nil {
			return err
		}
	}
	return nil
}
