// Package output renders command results as tables, JSON, YAML or markdown.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	cmdtable "github.com/swot-confluence/offline/internal/cmd/table"
)

// Format types for output.
type Format string

const (
	// FormatTable represents table output format.
	FormatTable Format = "table"
	// FormatWide prints long series in full.
	FormatWide Format = "wide"
	// FormatJSON represents JSON output format.
	FormatJSON Format = "json"
	// FormatYAML represents YAML output format.
	FormatYAML Format = "yaml"
	// FormatMarkdown renders tables as GitHub markdown.
	FormatMarkdown Format = "markdown"
)

// Formats returns the accepted format names.
func Formats() []Format {
	return []Format{FormatTable, FormatWide, FormatJSON, FormatYAML, FormatMarkdown}
}

// Tabular reports whether f renders table Data rather than the raw value.
func (f Format) Tabular() bool {
	switch f {
	case FormatTable, FormatWide, FormatMarkdown, "":
		return true
	}
	return false
}

// Formatter interface for all output types.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// FormatterFunc allows functions to implement Formatter.
type FormatterFunc func(io.Writer, any) error

// Format implements the Formatter interface.
func (f FormatterFunc) Format(w io.Writer, data any) error {
	return f(w, data)
}

// NewFormatter creates appropriate formatter based on format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatMarkdown:
		return FormatterFunc(formatMarkdown)
	default:
		return &TableFormatter{}
	}
}

// JSONFormatter outputs JSON format.
type JSONFormatter struct {
	Indent string
}

// Format implements the Formatter interface for JSON output.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	if f.Indent != "" {
		encoder.SetIndent("", f.Indent)
	}
	return encoder.Encode(data)
}

// YAMLFormatter outputs YAML format.
type YAMLFormatter struct{}

// Format outputs data in YAML format.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	yamlData, err := yaml.MarshalWithOptions(data,
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
	if err != nil {
		return err
	}
	_, err = w.Write(yamlData)
	return err
}

// TableFormatter outputs table format.
type TableFormatter struct{}

// Format outputs table Data; anything else falls back to JSON.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	v, ok := data.(cmdtable.Data)
	if !ok {
		return (&JSONFormatter{Indent: "  "}).Format(w, data)
	}

	config := tablewriter.Config{}
	if len(v.ColumnAlignment) > 0 {
		align := make([]tw.Align, len(v.ColumnAlignment))
		for i, a := range v.ColumnAlignment {
			switch a {
			case cmdtable.AlignLeft:
				align[i] = tw.AlignLeft
			case cmdtable.AlignCenter:
				align[i] = tw.AlignCenter
			case cmdtable.AlignRight:
				align[i] = tw.AlignRight
			default:
				align[i] = tw.Skip
			}
		}
		config.Header.Alignment = tw.CellAlignment{PerColumn: align}
		config.Row.Alignment = tw.CellAlignment{PerColumn: align}
	}

	t := tablewriter.NewTable(w, tablewriter.WithConfig(config))
	if len(v.Headers) > 0 {
		t.Header(anys(v.Headers)...)
	}
	for _, row := range v.Rows {
		if err := t.Append(anys(row)...); err != nil {
			return err
		}
	}
	return t.Render()
}

func formatMarkdown(w io.Writer, data any) error {
	v, ok := data.(cmdtable.Data)
	if !ok {
		return fmt.Errorf("markdown output needs table data, got %T", data)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	if len(v.Headers) > 0 {
		caser := cases.Title(language.English)
		header := make(table.Row, len(v.Headers))
		for i, h := range v.Headers {
			header[i] = caser.String(h)
		}
		t.AppendHeader(header)
	}
	for _, row := range v.Rows {
		t.AppendRow(table.Row(anys(row)))
	}
	t.RenderMarkdown()
	return nil
}

func anys(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

// DetectFormat auto-detects format based on terminal and environment.
func DetectFormat(explicitFormat string) Format {
	if explicitFormat != "" && explicitFormat != "auto" {
		return Format(strings.ToLower(explicitFormat))
	}

	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return FormatTable
	}

	// Default to JSON for pipes/redirects
	return FormatJSON
}

// ParseFormat converts string to Format with validation.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(s)))
	switch format {
	case FormatTable, FormatWide, FormatJSON, FormatYAML, FormatMarkdown, "", "auto":
		return format, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be one of: table, wide, json, yaml, markdown", s)
	}
}

// Write renders data in format. Tabular formats print tab, the others
// encode data itself.
func Write(w io.Writer, format Format, data any, tab func(wide bool) cmdtable.Data) error {
	if format.Tabular() && tab != nil {
		return NewFormatter(format).Format(w, tab(format == FormatWide))
	}
	return NewFormatter(format).Format(w, data)
}
