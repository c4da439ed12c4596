// Package ingest runs one report through a workbook: merge the sample, clear
// and recompute the statistics block, back up and save.
package ingest

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/KaramelBytes/sporesheet-cli/internal/extract"
	"github.com/KaramelBytes/sporesheet-cli/internal/grid"
	"github.com/KaramelBytes/sporesheet-cli/internal/sheet"
	"github.com/KaramelBytes/sporesheet-cli/internal/stats"
	"github.com/KaramelBytes/sporesheet-cli/internal/workbook"
)

// Options configures a Run or Recompute.
type Options struct {
	Report   string
	Workbook string
	Sheet    string
	Font     workbook.Font
	SpanMode stats.SpanMode

	Backup    bool
	BackupDir string

	AllowDuplicateSamples bool
	// DryRun computes everything but leaves the file on disk untouched.
	DryRun bool

	Extract extract.Options
	Logger  *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Outcome describes what a run did.
type Outcome struct {
	SampleID string `json:"sample_id,omitempty"`
	// Column is the 1-based column the sample was written to.
	Column int `json:"column,omitempty"`
	// Matched are report labels that a sheet row carries.
	Matched []string `json:"matched,omitempty"`
	// Unmatched are report labels no sheet row carries; they were dropped.
	Unmatched []string `json:"unmatched,omitempty"`
	// Unreadable are matched labels whose report value could not be read;
	// their cells were cleared.
	Unreadable []string `json:"unreadable,omitempty"`
	Rows       int      `json:"rows"`
	BackupPath string   `json:"backup_path,omitempty"`
	Saved      bool     `json:"saved"`
}

// DuplicateSampleError means the workbook already has a column for the
// report's sample id.
type DuplicateSampleError struct {
	SampleID string
	Column   int
}

func (e *DuplicateSampleError) Error() string {
	return fmt.Sprintf("sample %q is already in column %d; set allow_duplicate_samples to merge it again", e.SampleID, e.Column)
}

// Run extracts opts.Report and merges it into opts.Workbook. A report with
// no usable section fails before the workbook is opened.
func Run(opts Options) (*Outcome, error) {
	log := opts.logger()
	extOpts := opts.Extract
	if extOpts.Logger == nil {
		extOpts.Logger = log
	}
	res, err := extract.File(opts.Report, extOpts)
	if err != nil {
		return nil, err
	}

	wb, err := workbook.Open(opts.Workbook, workbook.Options{Sheet: opts.Sheet, Font: opts.Font})
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	if !opts.AllowDuplicateSamples {
		if err := checkDuplicate(wb, res.SampleID); err != nil {
			return nil, err
		}
	}

	out := &Outcome{SampleID: res.SampleID}
	if err := matchLabels(wb, res.Counts, out); err != nil {
		return nil, err
	}
	for _, l := range out.Unmatched {
		log.Info("report label has no row in sheet", zap.String("label", l))
	}

	col, err := sheet.Merge(wb, res.Counts, res.SampleID)
	if err != nil {
		return nil, err
	}
	out.Column = col
	log.Debug("sample merged", zap.String("sample_id", res.SampleID), zap.Int("column", col))

	if err := recompute(wb, opts, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Recompute clears and rebuilds the statistics block without merging
// anything, for sheets that were edited by hand.
func Recompute(opts Options) (*Outcome, error) {
	wb, err := workbook.Open(opts.Workbook, workbook.Options{Sheet: opts.Sheet, Font: opts.Font})
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	out := &Outcome{}
	if err := recompute(wb, opts, out); err != nil {
		return nil, err
	}
	return out, nil
}

func recompute(wb *workbook.Workbook, opts Options, out *Outcome) error {
	if err := sheet.Reset(wb); err != nil {
		return err
	}
	p := stats.New(stats.WithSpanMode(opts.SpanMode), stats.WithLogger(opts.logger()))
	if err := p.Run(wb); err != nil {
		return err
	}
	out.Rows = max(0, wb.MaxRow()-sheet.FirstDataRow+1)
	if opts.DryRun {
		return nil
	}
	if opts.Backup {
		bak, err := wb.Backup(opts.BackupDir)
		if err != nil {
			return err
		}
		out.BackupPath = bak
	}
	if err := wb.Save(); err != nil {
		return err
	}
	out.Saved = true
	return nil
}

func checkDuplicate(g grid.Grid, id string) error {
	samples, err := sheet.Samples(g)
	if err != nil {
		return err
	}
	for _, s := range samples {
		if s.ID == id {
			return &DuplicateSampleError{SampleID: id, Column: s.Index}
		}
	}
	return nil
}

func matchLabels(g grid.Grid, counts map[string]*int64, out *Outcome) error {
	present := make(map[string]bool)
	for row := sheet.FirstDataRow; row <= g.MaxRow(); row++ {
		l, err := sheet.Label(g, row)
		if err != nil {
			return err
		}
		present[l] = true
	}
	for label, n := range counts {
		if !present[label] {
			out.Unmatched = append(out.Unmatched, label)
			continue
		}
		out.Matched = append(out.Matched, label)
		if n == nil {
			out.Unreadable = append(out.Unreadable, label)
		}
	}
	sort.Strings(out.Matched)
	sort.Strings(out.Unmatched)
	sort.Strings(out.Unreadable)
	return nil
}

// IsDuplicate reports whether err is a DuplicateSampleError.
func IsDuplicate(err error) bool {
	var d *DuplicateSampleError
	return errors.As(err, &d)
}
