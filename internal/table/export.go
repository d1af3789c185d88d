package table

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the media type of ExportXLSX output.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportXLSX writes rows as a single-sheet workbook: a header row of column
// labels followed by the plain text of every cell. Custom renderers are not
// used since their output is HTML.
func ExportXLSX(w io.Writer, sheet string, columns []Column, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		index, err := f.NewSheet(sheet)
		if err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}
		f.SetActiveSheet(index)
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("drop default sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, c := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("header cell %d: %w", i+1, err)
		}
		if err := f.SetCellValue(sheet, cell, c.Label); err != nil {
			return fmt.Errorf("set header %s: %w", cell, err)
		}
		if c.MinWidth > 0 {
			col, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return fmt.Errorf("column %d: %w", i+1, err)
			}
			// MinWidth is in pixels, excel widths are roughly characters.
			if err := f.SetColWidth(sheet, col, col, float64(c.MinWidth)/7); err != nil {
				return fmt.Errorf("width of column %s: %w", col, err)
			}
		}
	}
	if len(columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(columns), 1)
		if err != nil {
			return fmt.Errorf("header range: %w", err)
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("header style: %w", err)
		}
	}

	for r, row := range rows {
		for i, c := range columns {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return fmt.Errorf("cell %d,%d: %w", i+1, r+2, err)
			}
			if err := f.SetCellValue(sheet, cell, CellText(row[c.Key])); err != nil {
				return fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
