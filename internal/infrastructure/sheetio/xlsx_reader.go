package sheetio

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// MainSheet is the worksheet preferred when a workbook has several.
const MainSheet = "main"

// Workbook is an opened spreadsheet container.
type Workbook struct {
	file *excelize.File
}

// OpenWorkbook reads a workbook from r.
func OpenWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return &Workbook{file: f}, nil
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Sheets returns the worksheet names in file order.
func (w *Workbook) Sheets() []string {
	return w.file.GetSheetList()
}

// SelectSheet returns the sheet named "main" (case-insensitively) when there
// is one, else the first sheet.
func (w *Workbook) SelectSheet() (string, error) {
	sheets := w.Sheets()
	if len(sheets) == 0 {
		return "", ErrMissingHeader
	}
	for _, s := range sheets {
		if strings.EqualFold(s, MainSheet) {
			return s, nil
		}
	}
	return sheets[0], nil
}

// Rows returns every row of sheet as raw cell text. Numbers keep their stored
// representation and dates their serial value, so nothing is coerced by
// display formats.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// Fill returns the solid background color of a cell as uppercase ARGB/RGB
// hex, or "" when the cell has no solid fill. row and col are 1-based.
func (w *Workbook) Fill(sheet string, col, row int) (string, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	styleID, err := w.file.GetCellStyle(sheet, cell)
	if err != nil || styleID == 0 {
		return "", err
	}
	style, err := w.file.GetStyle(styleID)
	if err != nil || style == nil {
		return "", err
	}
	if style.Fill.Type != "pattern" || style.Fill.Pattern != 1 || len(style.Fill.Color) == 0 {
		return "", nil
	}
	return normalizeColor(style.Fill.Color[0]), nil
}

func normalizeColor(c string) string {
	c = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(c), "#"))
	if c == "" || c == "00000000" {
		return ""
	}
	return c
}
