package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// XLSXExporter renders datasets into a single-sheet workbook.
type XLSXExporter struct {
	SheetName string
}

// NewXLSXExporter constructs an XLSX exporter writing to sheetName.
func NewXLSXExporter(sheetName string) *XLSXExporter {
	if sheetName == "" {
		sheetName = defaultSheet
	}
	return &XLSXExporter{SheetName: sheetName}
}

// Render writes the title, summary lines, a styled header row and the table body.
func (e *XLSXExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one header")
	}
	f := excelize.NewFile()
	defer f.Close()

	sheet := e.SheetName
	if sheet != defaultSheet {
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return nil, fmt.Errorf("create sheet: %w", err)
		}
		f.SetActiveSheet(idx)
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return nil, fmt.Errorf("drop default sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	row := 1
	if data.Title != "" {
		if err := f.SetCellValue(sheet, cellName(1, row), data.Title); err != nil {
			return nil, err
		}
		row++
	}
	for _, line := range data.Summary {
		if err := f.SetCellValue(sheet, cellName(1, row), line); err != nil {
			return nil, err
		}
		row++
	}
	if row > 1 {
		row++
	}

	for i, header := range data.Headers {
		if err := f.SetCellValue(sheet, cellName(i+1, row), header); err != nil {
			return nil, err
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, col, col, 20)
	}
	if err := f.SetCellStyle(sheet, cellName(1, row), cellName(len(data.Headers), row), headerStyle); err != nil {
		return nil, fmt.Errorf("style header row: %w", err)
	}
	row++

	for _, values := range data.Rows {
		for i, value := range data.record(values) {
			if err := f.SetCellValue(sheet, cellName(i+1, row), value); err != nil {
				return nil, err
			}
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
