package extract

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/unidoc/unioffice/document"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

type docxExtractor struct{}

func (docxExtractor) CanExtract(filename string) bool { return hasExt(filename, ".docx") }

func (docxExtractor) Extract(path string, opt Options) (*Result, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer fh.Close()
	info, err := fh.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat docx: %w", err)
	}
	doc, err := document.Read(fh, info.Size())
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	var tables [][][]string
	for _, tbl := range doc.Tables() {
		var rows [][]string
		for _, row := range tbl.Rows() {
			var cells []string
			for _, cell := range row.Cells() {
				var paras []string
				for _, p := range cell.Paragraphs() {
					var sb strings.Builder
					for _, run := range p.Runs() {
						sb.WriteString(run.Text())
					}
					paras = append(paras, sb.String())
				}
				cells = append(cells, strings.Join(paras, "\n"))
			}
			rows = append(rows, cells)
		}
		tables = append(tables, rows)
	}
	return FromTables(tables, opt)
}

type xlsxExtractor struct{}

func (xlsxExtractor) CanExtract(filename string) bool { return hasExt(filename, ".xlsx") }

// Extract treats every worksheet as one table, in workbook order.
func (xlsxExtractor) Extract(path string, opt Options) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx report: %w", err)
	}
	defer f.Close()
	var tables [][][]string
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		tables = append(tables, rows)
	}
	return FromTables(tables, opt)
}

type csvExtractor struct{}

func (csvExtractor) CanExtract(filename string) bool { return hasExt(filename, ".csv", ".tsv") }

func (csvExtractor) Extract(path string, opt Options) (*Result, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv report: %w", err)
	}
	defer fh.Close()
	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	if hasExt(path, ".tsv") {
		r.Comma = '\t'
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv report: %w", err)
	}
	return FromTables([][][]string{rows}, opt)
}

// structuredExtractor reads reports that were already reduced to a sample id
// and a label → count map, as YAML or JSON.
type structuredExtractor struct{}

type structuredReport struct {
	SampleID string            `yaml:"sample_id"`
	Counts   map[string]*int64 `yaml:"counts"`
}

func (structuredExtractor) CanExtract(filename string) bool {
	return hasExt(filename, ".yaml", ".yml", ".json")
}

func (structuredExtractor) Extract(path string, _ Options) (*Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var rep structuredReport
	if err := yaml.Unmarshal(b, &rep); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	id := strings.TrimSpace(rep.SampleID)
	if id == "" || len(rep.Counts) == 0 {
		return nil, ErrNoSection
	}
	res := &Result{SampleID: id, Counts: make(map[string]*int64, len(rep.Counts))}
	for label, n := range rep.Counts {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		res.Counts[label] = n
	}
	for label := range res.Counts {
		res.Labels = append(res.Labels, label)
	}
	// YAML maps carry no order once decoded.
	sort.Strings(res.Labels)
	return res, nil
}
