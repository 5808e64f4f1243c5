// Package export renders tabular reports as CSV or PDF.
package export

import (
	"fmt"
	"strings"
)

// Format is an export file format.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts "csv" or "pdf" case-insensitively; empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Column describes one table column. Width is a relative weight used by the
// PDF layout; zero means 1.
type Column struct {
	Key   string
	Label string
	Width float64
}

// Field is a labelled value printed above or below the table.
type Field struct {
	Label string
	Value string
}

// Report is the content of one export.
type Report struct {
	Title   string
	Meta    []Field
	Columns []Column
	Rows    []map[string]string
	Summary []Field
}

func (r Report) validate() error {
	if len(r.Columns) == 0 {
		return fmt.Errorf("report requires at least one column")
	}
	return nil
}

// Renderer turns a report into file bytes.
type Renderer interface {
	Render(r Report) ([]byte, error)
}

// RendererFor returns the renderer for f.
func RendererFor(f Format) Renderer {
	if f == FormatPDF {
		return NewPDFRenderer()
	}
	return NewCSVRenderer()
}
