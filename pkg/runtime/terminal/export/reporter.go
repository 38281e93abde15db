package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
)

type TableConfig struct {
	MinColumnWidth int
	MaxColumnWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		MinColumnWidth: 8,
		MaxColumnWidth: 40,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

type reportView struct {
	Title         string
	Period        domain.DateRange
	Fields        []string
	Rows          []domain.ReportRow
	RowCount      int
	TotalSessions *int
}

// Handle renders result as a fixed-width table, one column per field.
func (c *Reporter) Handle(spec domain.ReportSpec, result *domain.ReportResult) error {
	fields := spec.Fields()
	widths := c.columnWidths(fields, result.Rows)

	view := reportView{
		Title:    string(spec.Kind()),
		Period:   spec.DateRange(),
		Fields:   fields,
		Rows:     result.Rows,
		RowCount: result.RowCount,
	}
	if spec.Kind() == domain.ReportOverview {
		total := domain.TotalSessions(result.Rows)
		view.TotalSessions = &total
	}

	funcMap := template.FuncMap{
		"formatHeader": func() string {
			cells := make([]string, len(fields))
			for i, f := range fields {
				cells[i] = fmt.Sprintf(" %-*s ", widths[i], c.clip(f))
			}
			return "|" + strings.Join(cells, "|") + "|"
		},
		"formatRow": func(row domain.ReportRow) string {
			cells := make([]string, len(fields))
			for i, f := range fields {
				cells[i] = fmt.Sprintf(" %-*s ", widths[i], c.clip(row[f]))
			}
			return "|" + strings.Join(cells, "|") + "|"
		},
		"separator": func() string {
			cells := make([]string, len(widths))
			for i, w := range widths {
				cells[i] = strings.Repeat("-", w+2)
			}
			return "+" + strings.Join(cells, "+") + "+"
		},
	}

	tmpl := `
{{.Title}} report

Period: {{.Period.Start}} to {{.Period.End}}
Rows: {{.RowCount}}{{if .TotalSessions}}
Total Sessions: {{.TotalSessions}}{{end}}

{{separator}}
{{formatHeader}}
{{separator}}
{{range .Rows}}{{formatRow .}}
{{end}}{{separator}}
`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, view)
}

func (c *Reporter) columnWidths(fields []string, rows []domain.ReportRow) []int {
	widths := make([]int, len(fields))
	for i, f := range fields {
		widths[i] = max(c.config.MinColumnWidth, utf8.RuneCountInString(f))
		for _, row := range rows {
			widths[i] = max(widths[i], utf8.RuneCountInString(row[f]))
		}
		widths[i] = min(widths[i], c.config.MaxColumnWidth)
	}
	return widths
}

// clip shortens s to MaxColumnWidth runes; widths count runes because
// fmt pads %-*s by runes.
func (c *Reporter) clip(s string) string {
	if utf8.RuneCountInString(s) <= c.config.MaxColumnWidth {
		return s
	}
	return string([]rune(s)[:c.config.MaxColumnWidth-3]) + "..."
}
