package extract

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Positions inside a report table, relative to the marker cell's column.
const (
	sampleIDRow   = 1
	firstCountRow = 3
	valueOffset   = 2
)

// FromTables finds the first table with a marker cell and reads the sample
// out of it. Tables are row-major and may be ragged.
func FromTables(tables [][][]string, opt Options) (*Result, error) {
	log := opt.logger()
	for ti, tbl := range tables {
		col, ok := findMarker(tbl, opt.markers())
		if !ok {
			log.Debug("no section marker in table", zap.Int("table", ti+1))
			continue
		}
		id := strings.TrimSpace(cellAt(tbl, sampleIDRow, col))
		if id == "" {
			return nil, fmt.Errorf("%w: table %d has no sample id under the section header", ErrNoSection, ti+1)
		}
		res := &Result{SampleID: id, Counts: make(map[string]*int64)}
		unreadable := 0
		for r := firstCountRow; r < len(tbl); r++ {
			label := clean(cellAt(tbl, r, 0))
			if label == "" {
				continue
			}
			n := parseCount(cellAt(tbl, r, col+valueOffset))
			if n == nil {
				unreadable++
			}
			if _, seen := res.Counts[label]; !seen {
				res.Labels = append(res.Labels, label)
			}
			res.Counts[label] = n
		}
		if len(res.Counts) == 0 {
			return nil, fmt.Errorf("%w: table %d lists no spore types", ErrNoSection, ti+1)
		}
		log.Debug("section found",
			zap.Int("table", ti+1),
			zap.Int("column", col+1),
			zap.Int("unreadable", unreadable))
		return res, nil
	}
	return nil, ErrNoSection
}

// findMarker scans column by column, top to bottom.
func findMarker(tbl [][]string, markers []string) (int, bool) {
	width := 0
	for _, row := range tbl {
		width = max(width, len(row))
	}
	for c := 0; c < width; c++ {
		for r := range tbl {
			cell := strings.TrimSpace(cellAt(tbl, r, c))
			if cell == "" {
				continue
			}
			for _, m := range markers {
				if strings.EqualFold(cell, m) {
					return c, true
				}
			}
		}
	}
	return 0, false
}

func cellAt(tbl [][]string, r, c int) string {
	if r < 0 || r >= len(tbl) || c < 0 || c >= len(tbl[r]) {
		return ""
	}
	return tbl[r][c]
}

// clean trims a label or value and drops thousands separators.
func clean(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}

// parseCount accepts plain digit strings only; anything else is unreadable.
func parseCount(s string) *int64 {
	s = clean(s)
	if s == "" {
		return nil
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
