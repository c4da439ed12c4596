// Package grid defines the 1-indexed cell grid the layout engine and the
// statistics pipeline operate on.
package grid

import "fmt"

// Style selects the font applied when a cell is written.
type Style uint8

const (
	// Unstyled leaves the cell's existing formatting alone.
	Unstyled Style = iota
	// Header is the bold header font.
	Header
	// Data is the regular data font.
	Data
)

func (s Style) String() string {
	switch s {
	case Header:
		return "header"
	case Data:
		return "data"
	}
	return "unstyled"
}

// Grid is a mutable, 1-indexed table of cells. Rows and columns only grow.
// Implementations are not safe for concurrent use.
type Grid interface {
	// Cell returns the value at row, col. Cells outside the used range are empty.
	Cell(row, col int) (Value, error)
	// SetCell writes v at row, col and applies style.
	SetCell(row, col int, v Value, style Style) error
	// InsertColumn inserts an empty column at col, shifting col and everything
	// to its right one position to the right.
	InsertColumn(col int) error
	// MaxRow is the last row holding any cell.
	MaxRow() int
	// MaxColumn is the last column holding any cell.
	MaxColumn() int
}

// OutOfRangeError reports a row or column index below 1.
type OutOfRangeError struct {
	Row, Col int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("cell (%d,%d) out of range: grid is 1-indexed", e.Row, e.Col)
}

func checkIndex(row, col int) error {
	if row < 1 || col < 1 {
		return &OutOfRangeError{Row: row, Col: col}
	}
	return nil
}
