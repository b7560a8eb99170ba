package sheetio

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	"github.com/dibaisales/central/internal/domain/dataset"
)

// Format is an accepted upload format.
type Format string

const (
	FormatCSV  Format = ".csv"
	FormatXLSX Format = ".xlsx"
	FormatXLS  Format = ".xls"
)

// CSVSheet names the single table of a CSV upload in messages.
const CSVSheet = "csv"

// Decoder turns uploaded bytes into a dataset.Dataset.
type Decoder struct {
	formats   []Format
	encoding  Encoding
	fillCols  []string
	sheetName string
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithFormats restricts the accepted formats (default CSV and XLSX/XLS).
func WithFormats(formats ...Format) DecoderOption {
	return func(d *Decoder) {
		d.formats = formats
	}
}

// WithCSVEncoding sets the CSV text encoding (default Latin-1).
func WithCSVEncoding(e Encoding) DecoderOption {
	return func(d *Decoder) {
		d.encoding = e
	}
}

// WithFills records the solid fill color of the named columns' cells.
func WithFills(columns ...string) DecoderOption {
	return func(d *Decoder) {
		d.fillCols = columns
	}
}

// WithSheet reads the named sheet instead of applying the "main"/first policy.
func WithSheet(name string) DecoderOption {
	return func(d *Decoder) {
		d.sheetName = name
	}
}

// NewDecoder creates a decoder.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		formats:  []Format{FormatXLSX, FormatXLS, FormatCSV},
		encoding: EncodingLatin1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Accepts reports whether filename has an accepted extension.
func (d *Decoder) Accepts(filename string) (Format, bool) {
	ext := Format(strings.ToLower(filepath.Ext(filename)))
	for _, f := range d.formats {
		if f == ext {
			return f, true
		}
	}
	return "", false
}

// Decode reads filename's content. Every structural failure is returned as a
// *dataset.StructuralError.
func (d *Decoder) Decode(filename string, content []byte) (*dataset.Dataset, error) {
	format, ok := d.Accepts(filename)
	if !ok {
		accepted := make([]string, len(d.formats))
		for i, f := range d.formats {
			accepted[i] = string(f)
		}
		return nil, dataset.UnsupportedFormat(filename, accepted...)
	}
	if len(content) == 0 {
		return nil, dataset.EmptyInput()
	}

	if format == FormatCSV {
		return d.decodeCSV(content)
	}
	return d.decodeWorkbook(content)
}

func (d *Decoder) decodeCSV(content []byte) (*dataset.Dataset, error) {
	parser, err := ParseFromBytes(content, WithEncoding(d.encoding))
	if err != nil {
		return nil, structural(err)
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, structural(err)
	}
	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, structural(err)
	}
	ds := dataset.FromRows(parser.Headers(), rows)
	ds.Sheet = CSVSheet
	return ds, nil
}

func (d *Decoder) decodeWorkbook(content []byte) (*dataset.Dataset, error) {
	wb, err := OpenWorkbook(bytes.NewReader(content))
	if err != nil {
		return nil, dataset.Unreadable(err)
	}
	defer wb.Close()

	sheet := d.sheetName
	if sheet == "" {
		if sheet, err = wb.SelectSheet(); err != nil {
			return nil, structural(err)
		}
	}
	rows, err := wb.Rows(sheet)
	if err != nil {
		return nil, dataset.Unreadable(err)
	}
	if len(rows) == 0 || isBlankRow(rows[0]) {
		return nil, dataset.EmptyInput()
	}

	headers := uniqueHeaders(rows[0])
	ds := dataset.New(headers...)
	ds.Sheet = sheet

	fillIdx := make(map[string]int, len(d.fillCols))
	for _, c := range d.fillCols {
		for i, h := range headers {
			if h == c {
				fillIdx[c] = i
				break
			}
		}
	}

	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rec := ds.AppendValues(row...)
		for col, idx := range fillIdx {
			color, err := wb.Fill(sheet, idx+1, i+2)
			if err == nil {
				rec.SetFill(col, color)
			}
		}
	}
	return ds, nil
}

func structural(err error) error {
	switch {
	case errors.Is(err, ErrEmptyFile), errors.Is(err, ErrMissingHeader):
		return dataset.EmptyInput()
	default:
		return dataset.Unreadable(err)
	}
}
