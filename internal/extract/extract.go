// Package extract turns lab reports into one sample's per-label spore counts.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Result is one sample read from a report. A nil count means the report
// had a row for the label but its value could not be read.
type Result struct {
	SampleID string
	Counts   map[string]*int64
	// Labels lists the keys of Counts in report order.
	Labels []string
}

// Options tunes extraction.
type Options struct {
	// Markers are the header texts that identify the sample column of a
	// report table. Matching ignores case and surrounding space.
	Markers []string
	Logger  *zap.Logger
}

// DefaultMarkers are the section headers lab reports use for the outdoor
// reference sample.
var DefaultMarkers = []string{"outdoor", "outdoors", "extérieur"}

// DefaultOptions returns the markers above and a no-op logger.
func DefaultOptions() Options {
	return Options{Markers: append([]string(nil), DefaultMarkers...), Logger: zap.NewNop()}
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) markers() []string {
	if len(o.Markers) == 0 {
		return DefaultMarkers
	}
	return o.Markers
}

// Extractor reads one report format.
type Extractor interface {
	CanExtract(filename string) bool
	Extract(path string, opt Options) (*Result, error)
}

var registry []Extractor

// Register adds an extractor to the registry.
func Register(e Extractor) {
	registry = append(registry, e)
}

// ErrNoSection means the report holds no usable sample section. There is
// nothing to merge.
var ErrNoSection = errors.New("no usable data section found in report")

// ErrUnsupported indicates a report format without an extractor.
var ErrUnsupported = errors.New("unsupported report format")

// File picks an extractor by file name and runs it.
func File(path string, opt Options) (*Result, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	for _, e := range registry {
		if e.CanExtract(path) {
			res, err := e.Extract(path, opt)
			if err != nil {
				return nil, err
			}
			opt.logger().Debug("report extracted",
				zap.String("file", filepath.Base(path)),
				zap.String("sample_id", res.SampleID),
				zap.Int("labels", len(res.Counts)))
			return res, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

func hasExt(filename string, exts ...string) bool {
	name := strings.ToLower(filename)
	for _, e := range exts {
		if strings.HasSuffix(name, e) {
			return true
		}
	}
	return false
}

func init() {
	Register(docxExtractor{})
	Register(xlsxExtractor{})
	Register(csvExtractor{})
	Register(structuredExtractor{})
}
