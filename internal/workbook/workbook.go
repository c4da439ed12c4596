// Package workbook exposes one worksheet of an .xlsx file as a grid.Grid.
package workbook

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/sporesheet-cli/internal/grid"
	"github.com/KaramelBytes/sporesheet-cli/internal/utils"
)

// Font is applied to header (bold) and data cells.
type Font struct {
	Family string
	Size   float64
}

// DefaultFont matches the font lab sheets are formatted with.
var DefaultFont = Font{Family: "Arial", Size: 11}

// Options controls how a workbook is opened.
type Options struct {
	// Sheet selects the worksheet; empty means the active sheet.
	Sheet string
	Font  Font
}

// LockedError means the operating system refused to write the workbook,
// usually because it is open in another program.
type LockedError struct {
	Path string
	Err  error
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("permission denied: unable to save to '%s'; close the file if it is open and retry: %v", e.Path, e.Err)
}

func (e *LockedError) Unwrap() error { return e.Err }

// Workbook is a grid.Grid over one worksheet. It is not safe for concurrent use.
type Workbook struct {
	f      *excelize.File
	path   string
	sheet  string
	font   Font
	styles map[grid.Style]int
	maxRow int
	maxCol int
}

var _ grid.Grid = (*Workbook)(nil)

// Open loads path and selects the worksheet named in opts.
func Open(path string, opts Options) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	w, err := wrap(f, path, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

func wrap(f *excelize.File, path string, opts Options) (*Workbook, error) {
	name := opts.Sheet
	if name == "" {
		name = f.GetSheetName(f.GetActiveSheetIndex())
	}
	idx, err := f.GetSheetIndex(name)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
			name, filepath.Base(path), strings.Join(f.GetSheetList(), ", "))
	}
	font := opts.Font
	if font.Family == "" {
		font.Family = DefaultFont.Family
	}
	if font.Size <= 0 {
		font.Size = DefaultFont.Size
	}
	w := &Workbook{f: f, path: path, sheet: name, font: font, styles: make(map[grid.Style]int)}
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", name, err)
	}
	w.maxRow = len(rows)
	for _, r := range rows {
		if len(r) > w.maxCol {
			w.maxCol = len(r)
		}
	}
	return w, nil
}

// Path is the file the workbook was opened from.
func (w *Workbook) Path() string { return w.path }

// Sheet is the selected worksheet name.
func (w *Workbook) Sheet() string { return w.sheet }

func (w *Workbook) MaxRow() int    { return w.maxRow }
func (w *Workbook) MaxColumn() int { return w.maxCol }

func (w *Workbook) Cell(row, col int) (grid.Value, error) {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return grid.Value{}, err
	}
	raw, err := w.f.GetCellValue(w.sheet, ref, excelize.Options{RawCellValue: true})
	if err != nil {
		return grid.Value{}, fmt.Errorf("read %s: %w", ref, err)
	}
	if raw == "" {
		return grid.Value{}, nil
	}
	typ, err := w.f.GetCellType(w.sheet, ref)
	if err != nil {
		return grid.Value{}, fmt.Errorf("cell type %s: %w", ref, err)
	}
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeBool,
		excelize.CellTypeError, excelize.CellTypeDate:
		return grid.TextValue(raw), nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return grid.IntValue(n), nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		if f == float64(int64(f)) && !strings.ContainsAny(raw, ".eE") {
			return grid.IntValue(int64(f)), nil
		}
		return grid.FloatValue(f), nil
	}
	return grid.TextValue(raw), nil
}

func (w *Workbook) SetCell(row, col int, v grid.Value, style grid.Style) error {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := w.f.SetCellValue(w.sheet, ref, v.Raw()); err != nil {
		return fmt.Errorf("write %s: %w", ref, err)
	}
	if style != grid.Unstyled {
		id, err := w.styleID(style)
		if err != nil {
			return err
		}
		if err := w.f.SetCellStyle(w.sheet, ref, ref, id); err != nil {
			return fmt.Errorf("style %s: %w", ref, err)
		}
	}
	if row > w.maxRow {
		w.maxRow = row
	}
	if col > w.maxCol {
		w.maxCol = col
	}
	return nil
}

func (w *Workbook) InsertColumn(col int) error {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return err
	}
	if err := w.f.InsertCols(w.sheet, name, 1); err != nil {
		return fmt.Errorf("insert column %s: %w", name, err)
	}
	if col <= w.maxCol {
		w.maxCol++
	}
	return nil
}

func (w *Workbook) styleID(s grid.Style) (int, error) {
	if id, ok := w.styles[s]; ok {
		return id, nil
	}
	id, err := w.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: s == grid.Header, Family: w.font.Family, Size: w.font.Size},
	})
	if err != nil {
		return 0, fmt.Errorf("create %s style: %w", s, err)
	}
	w.styles[s] = id
	return id, nil
}

// Save writes the workbook back to its own path through a temp file.
func (w *Workbook) Save() error { return w.SaveAs(w.path) }

// SaveAs serializes the workbook to path. Permission failures come back as
// *LockedError.
func (w *Workbook) SaveAs(path string) error {
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("serialize workbook: %w", err)
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		if isLocked(err) {
			return &LockedError{Path: path, Err: err}
		}
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// Backup copies the file on disk, as it was before this run's changes, into
// dir (the workbook's own directory when dir is empty). It returns the path
// of the copy.
func (w *Workbook) Backup(dir string) (string, error) {
	if dir == "" {
		dir = filepath.Dir(w.path)
	}
	base := filepath.Base(w.path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	name := fmt.Sprintf("%s.%s-%s.bak%s", stem, time.Now().Format("20060102-150405"), uuid.NewString()[:8], ext)
	dst := filepath.Join(dir, name)
	if err := utils.CopyFile(w.path, dst); err != nil {
		return "", fmt.Errorf("backup workbook: %w", err)
	}
	return dst, nil
}

// Close releases the underlying file handles.
func (w *Workbook) Close() error { return w.f.Close() }

func isLocked(err error) bool {
	if errors.Is(err, fs.ErrPermission) {
		return true
	}
	// Windows reports a sharing violation when Excel holds the file open.
	return strings.Contains(err.Error(), "being used by another process")
}
