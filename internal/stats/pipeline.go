// Package stats recomputes the per-row statistics block of a spore-count
// worksheet from every sample column present.
package stats

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/KaramelBytes/sporesheet-cli/internal/grid"
	"github.com/KaramelBytes/sporesheet-cli/internal/sheet"
)

// SpanMode decides where the order statistics stop reading sample columns.
type SpanMode string

const (
	// SpanUniform makes every stage read all sample columns.
	SpanUniform SpanMode = "uniform"
	// SpanLegacy makes Min, the percentiles, Median, Max and Count skip the
	// sample column right before "Total", as older sheets were computed.
	SpanLegacy SpanMode = "legacy"
)

// ParseSpanMode accepts "uniform" and "legacy"; empty means uniform.
func ParseSpanMode(s string) (SpanMode, error) {
	switch SpanMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", SpanUniform:
		return SpanUniform, nil
	case SpanLegacy:
		return SpanLegacy, nil
	}
	return "", fmt.Errorf("invalid span mode %q (use uniform or legacy)", s)
}

// Pipeline runs the stages in their fixed order.
type Pipeline struct {
	mode   SpanMode
	logger *zap.Logger
	warned map[[2]int]bool
}

type Option func(*Pipeline)

func WithSpanMode(m SpanMode) Option {
	return func(p *Pipeline) { p.mode = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

func New(opts ...Option) *Pipeline {
	p := &Pipeline{mode: SpanUniform, logger: zap.NewNop()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run recomputes every stat column. It fails with sheet.MissingColumnError
// when the sheet has no "Total" column.
func (p *Pipeline) Run(g grid.Grid) error {
	p.warned = make(map[[2]int]bool)
	for _, s := range pipeline {
		if err := p.RunStage(g, s); err != nil {
			return err
		}
	}
	p.logger.Debug("stats recomputed",
		zap.Int("rows", max(0, g.MaxRow()-sheet.FirstDataRow+1)),
		zap.String("span_mode", string(p.mode)))
	return nil
}

// RunStage provisions the stage's column and rewrites it for every data row.
func (p *Pipeline) RunStage(g grid.Grid, s Stage) error {
	if _, err := sheet.TotalColumn(g); err != nil {
		return err
	}
	col, err := sheet.Provision(g, s.Name, s.Anchor)
	if err != nil {
		return fmt.Errorf("%s: %w", s.Name, err)
	}
	// provisioning never inserts left of "Total", look it up again anyway
	total, err := sheet.TotalColumn(g)
	if err != nil {
		return err
	}
	last := total - 1
	if s.span == orderSpan && p.mode == SpanLegacy {
		last = total - 2
	}
	for row := sheet.FirstDataRow; row <= g.MaxRow(); row++ {
		rs, err := p.sample(g, row, last)
		if err != nil {
			return fmt.Errorf("%s row %d: %w", s.Name, row, err)
		}
		if err := g.SetCell(row, col, s.compute(rs), grid.Unstyled); err != nil {
			return fmt.Errorf("%s row %d: %w", s.Name, row, err)
		}
	}
	return nil
}

func (p *Pipeline) sample(g grid.Grid, row, last int) (RowSample, error) {
	rs := RowSample{Row: row}
	for col := sheet.FirstSampleColumn; col <= last; col++ {
		v, err := g.Cell(row, col)
		if err != nil {
			return rs, err
		}
		rs.Cells = append(rs.Cells, v)
		if v.IsBlank() {
			continue
		}
		n, ok := v.Number()
		if !ok {
			p.warnNonNumeric(row, col, v)
			continue
		}
		rs.Values = append(rs.Values, float64(n))
	}
	return rs, nil
}

func (p *Pipeline) warnNonNumeric(row, col int, v grid.Value) {
	key := [2]int{row, col}
	if p.warned == nil {
		p.warned = make(map[[2]int]bool)
	}
	if p.warned[key] {
		return
	}
	p.warned[key] = true
	p.logger.Warn("non-numeric sample cell treated as empty",
		zap.Int("row", row),
		zap.Int("column", col),
		zap.String("text", v.Text()))
}
