package sheetio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encoding selects how CSV bytes are decoded into text.
type Encoding int

const (
	// EncodingLatin1 decodes ISO-8859-1, the legacy export encoding of the lead tools.
	EncodingLatin1 Encoding = iota
	// EncodingUTF8 requires valid UTF-8.
	EncodingUTF8
	// EncodingAuto uses UTF-8 when the sample is valid UTF-8 and Latin-1 otherwise.
	EncodingAuto
)

var (
	// ErrEmptyFile is returned when the input has no bytes
	ErrEmptyFile = errors.New("file is empty")

	// ErrInvalidEncoding is returned when UTF-8 is required and the input is not UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrMissingHeader is returned when the file has no header row
	ErrMissingHeader = errors.New("file missing header row")
)

// CSVParser reads a delimited file into a header and rows of text cells.
type CSVParser struct {
	delimiter  rune
	lazyQuotes bool
	trimSpace  bool
	encoding   Encoding
	headers    []string
	currentRow int
	reader     *csv.Reader
}

// ParserOption is a functional option for CSVParser configuration
type ParserOption func(*CSVParser)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// WithLazyQuotes enables lazy quote handling
func WithLazyQuotes(lazy bool) ParserOption {
	return func(p *CSVParser) {
		p.lazyQuotes = lazy
	}
}

// WithTrimSpace enables trimming of leading/trailing spaces from fields
func WithTrimSpace(trim bool) ParserOption {
	return func(p *CSVParser) {
		p.trimSpace = trim
	}
}

// WithEncoding sets the text encoding (default Latin-1)
func WithEncoding(e Encoding) ParserOption {
	return func(p *CSVParser) {
		p.encoding = e
	}
}

// NewCSVParser creates a new CSV parser from a reader
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	parser := &CSVParser{
		delimiter:  ',',
		lazyQuotes: true,
		trimSpace:  false,
		encoding:   EncodingLatin1,
	}

	for _, opt := range opts {
		opt(parser)
	}

	buf := bufio.NewReader(r)

	// UTF-8 BOM: 0xEF, 0xBB, 0xBF
	head, err := buf.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(head) == 0 {
		return nil, ErrEmptyFile
	}
	bom := len(head) >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF
	if bom {
		_, _ = buf.Discard(3)
	}

	var text io.Reader = buf
	switch parser.encoding {
	case EncodingUTF8:
		if err := validateUTF8(buf); err != nil {
			return nil, err
		}
	case EncodingAuto:
		if !bom && validateUTF8(buf) != nil {
			text = charmap.ISO8859_1.NewDecoder().Reader(buf)
		}
	default:
		if !bom {
			text = charmap.ISO8859_1.NewDecoder().Reader(buf)
		}
	}

	parser.reader = csv.NewReader(text)
	parser.reader.Comma = parser.delimiter
	parser.reader.LazyQuotes = parser.lazyQuotes
	parser.reader.TrimLeadingSpace = parser.trimSpace
	parser.reader.FieldsPerRecord = -1 // Allow variable number of fields

	return parser, nil
}

// validateUTF8 checks that the leading sample of the content is valid UTF-8
func validateUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF && !errors.Is(err, bufio.ErrBufferFull) {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}
	if len(content) == 0 {
		return ErrEmptyFile
	}
	// a multi-byte rune may be cut at the end of the sample
	for i := 0; i < utf8.UTFMax && len(content) > 0 && !utf8.Valid(content); i++ {
		content = content[:len(content)-1]
	}
	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}
	return nil
}

// ParseHeader reads and parses the header row
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if len(record) == 0 {
		return ErrMissingHeader
	}

	p.headers = uniqueHeaders(record)
	p.currentRow = 1
	return nil
}

// Headers returns the parsed header names
func (p *CSVParser) Headers() []string {
	return p.headers
}

// ReadRow reads the next row. It returns io.EOF after the last row.
func (p *CSVParser) ReadRow() ([]string, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.currentRow++
	if err != nil {
		return nil, fmt.Errorf("error reading row %d: %w", p.currentRow, err)
	}
	return record, nil
}

// ReadAllRows reads all remaining rows, skipping completely empty ones
func (p *CSVParser) ReadAllRows() ([][]string, error) {
	var rows [][]string
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, err
		}
		if isBlankRow(row) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// CurrentRow returns the current row number (1-indexed)
func (p *CSVParser) CurrentRow() int {
	return p.currentRow
}

// ParseFromBytes creates a parser from a byte slice
func ParseFromBytes(data []byte, opts ...ParserOption) (*CSVParser, error) {
	return NewCSVParser(bytes.NewReader(data), opts...)
}
