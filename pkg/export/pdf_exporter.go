package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const pdfTableWidth = 190.0

// PDFExporter renders datasets into a titled A4 table.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with the dataset title, summary lines and table.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(data.Title), "", 1, "C", false, 0, "")
	}
	if len(data.Summary) > 0 {
		pdf.SetFont("Arial", "", 10)
		for _, line := range data.Summary {
			pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	colWidth := pdfTableWidth / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, value := range data.record(row) {
			pdf.CellFormat(colWidth, 7, tr(value), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
