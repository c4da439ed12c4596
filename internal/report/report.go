// Package report renders the statistics block of a worksheet as Markdown or
// as a standalone HTML page.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/KaramelBytes/sporesheet-cli/internal/grid"
	"github.com/KaramelBytes/sporesheet-cli/internal/sheet"
)

// Row is one labelled data row with its stat values in Summary.Columns order.
type Row struct {
	Label string
	Stats []grid.Value
}

// Summary is a read-only view of a worksheet's stat columns.
type Summary struct {
	Name    string
	Samples []sheet.SampleColumn
	Columns []string
	Rows    []Row
	// Missing lists stat columns the sheet does not have yet.
	Missing []string
}

// Build reads the label column and every stat column present. Rows without a
// label are skipped.
func Build(g grid.Grid, name string) (*Summary, error) {
	samples, err := sheet.Samples(g)
	if err != nil {
		return nil, err
	}
	s := &Summary{Name: name, Samples: samples}
	var cols []int
	for _, c := range sheet.StatColumns {
		idx, ok, err := sheet.Find(g, c)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.Missing = append(s.Missing, c)
			continue
		}
		s.Columns = append(s.Columns, c)
		cols = append(cols, idx)
	}
	for row := sheet.FirstDataRow; row <= g.MaxRow(); row++ {
		label, err := sheet.Label(g, row)
		if err != nil {
			return nil, err
		}
		if label == "" {
			continue
		}
		r := Row{Label: label, Stats: make([]grid.Value, len(cols))}
		for i, c := range cols {
			v, err := g.Cell(row, c)
			if err != nil {
				return nil, err
			}
			r.Stats[i] = v
		}
		s.Rows = append(s.Rows, r)
	}
	return s, nil
}

// Markdown renders the summary as a heading, a sample list and one table.
func (s *Summary) Markdown() string {
	var b strings.Builder
	title := "Spore count summary"
	if s.Name != "" {
		title = fmt.Sprintf("%s: %s", title, s.Name)
	}
	b.WriteString("# " + escape(title) + "\n\n")
	b.WriteString(fmt.Sprintf("Samples: %d", len(s.Samples)))
	if len(s.Samples) > 0 {
		ids := make([]string, 0, len(s.Samples))
		for _, sc := range s.Samples {
			ids = append(ids, escape(sc.ID))
		}
		b.WriteString(" (" + strings.Join(ids, ", ") + ")")
	}
	b.WriteString("\n\n")
	if len(s.Missing) > 0 {
		b.WriteString(fmt.Sprintf("Not computed yet: %s\n\n", strings.Join(s.Missing, ", ")))
	}
	if len(s.Rows) == 0 {
		b.WriteString("_No labelled rows._\n")
		return b.String()
	}

	b.WriteString("| Spore type |")
	for _, c := range s.Columns {
		b.WriteString(" " + c + " |")
	}
	b.WriteString("\n|---|")
	for range s.Columns {
		b.WriteString("---:|")
	}
	b.WriteString("\n")
	for _, r := range s.Rows {
		b.WriteString("| " + escape(r.Label) + " |")
		for _, v := range r.Stats {
			b.WriteString(" " + formatValue(v) + " |")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// HTML renders Markdown() as a complete HTML page.
func (s *Summary) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	title := "Spore count summary"
	if s.Name != "" {
		title += ": " + s.Name
	}
	r := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: title,
	})
	return markdown.ToHTML([]byte(s.Markdown()), p, r)
}

func formatValue(v grid.Value) string {
	switch v.Kind() {
	case grid.Empty:
		return ""
	case grid.Float:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v.Raw().(float64)), "0"), ".")
	}
	return escape(v.Text())
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
