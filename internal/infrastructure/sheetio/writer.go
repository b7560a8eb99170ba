package sheetio

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/dibaisales/central/internal/domain/dataset"
)

// DefaultSheet is the worksheet name used when none is given.
const DefaultSheet = "Sheet1"

// Content types of the produced files.
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeZIP  = "application/zip"
	ContentTypePDF  = "application/pdf"
)

// XLSXWriter renders datasets as single-sheet workbooks: one header row, an
// optional label row, then one row per record.
type XLSXWriter struct {
	sheet string
}

// WriterOption configures an XLSXWriter.
type WriterOption func(*XLSXWriter)

// WithSheetName sets the worksheet name.
func WithSheetName(name string) WriterOption {
	return func(w *XLSXWriter) {
		w.sheet = name
	}
}

// NewXLSXWriter creates a writer.
func NewXLSXWriter(opts ...WriterOption) *XLSXWriter {
	w := &XLSXWriter{sheet: DefaultSheet}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write encodes d to out.
func (w *XLSXWriter) Write(out io.Writer, d *dataset.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if w.sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, w.sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	sw, err := f.NewStreamWriter(w.sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	row := 1
	if err := sw.SetRow(cellName(row), toCells(d.Columns)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	row++
	if d.Labels != nil {
		if err := sw.SetRow(cellName(row), toCells(d.Labels)); err != nil {
			return fmt.Errorf("failed to write label row: %w", err)
		}
		row++
	}

	styles := make(map[string]int)
	for _, rec := range d.Records {
		values := rec.Values(d.Columns)
		cells := make([]interface{}, len(values))
		for i, v := range values {
			color := rec.Fill(d.Columns[i])
			if color == "" {
				cells[i] = v
				continue
			}
			id, err := fillStyle(f, styles, color)
			if err != nil {
				return err
			}
			cells[i] = excelize.Cell{StyleID: id, Value: v}
		}
		if err := sw.SetRow(cellName(row), cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
		row++
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Bytes encodes d and returns the workbook bytes.
func (w *XLSXWriter) Bytes(d *dataset.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := w.Write(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fillStyle(f *excelize.File, cache map[string]int, color string) (int, error) {
	if id, ok := cache[color]; ok {
		return id, nil
	}
	rgb := color
	if len(rgb) == 8 {
		rgb = rgb[2:]
	}
	id, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#" + rgb}},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create fill style %s: %w", color, err)
	}
	cache[color] = id
	return id, nil
}

func cellName(row int) string {
	name, _ := excelize.CoordinatesToCellName(1, row)
	return name
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

// File is one archive member.
type File struct {
	Name string
	Body []byte
}

// WriteZip writes files into a deflate-compressed archive, in order.
func WriteZip(out io.Writer, files []File) error {
	zw := zip.NewWriter(out)
	for _, f := range files {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", f.Name, err)
		}
		if _, err := w.Write(f.Body); err != nil {
			return fmt.Errorf("failed to write %s to archive: %w", f.Name, err)
		}
	}
	return zw.Close()
}

// EncodeBundle renders every table of b as a workbook and zips them, keeping bundle order.
func EncodeBundle(out io.Writer, b dataset.Bundle, w *XLSXWriter) error {
	if w == nil {
		w = NewXLSXWriter()
	}
	files := make([]File, 0, len(b))
	for _, t := range b {
		body, err := w.Bytes(t.Data)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", t.Name, err)
		}
		files = append(files, File{Name: t.Name, Body: body})
	}
	return WriteZip(out, files)
}
