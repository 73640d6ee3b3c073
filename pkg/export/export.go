// Package export renders tabular datasets as downloadable documents.
package export

import (
	"fmt"
	"strings"
)

// Format names a supported document type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ParseFormat normalises raw into a Format, defaulting to CSV when empty.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatPDF, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// Dataset defines tabular export content. Summary lines are printed above the
// table by formats that support free text.
type Dataset struct {
	Title   string
	Summary []string
	Headers []string
	Rows    []map[string]string
}

func (d Dataset) record(row map[string]string) []string {
	record := make([]string, len(d.Headers))
	for i, header := range d.Headers {
		record[i] = row[header]
	}
	return record
}
