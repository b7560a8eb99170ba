package sheetio

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/dibaisales/central/internal/domain/dataset"
)

func buildWorkbook(t *testing.T, sheets map[string][][]string, order []string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			values := make([]interface{}, len(row))
			for j, v := range row {
				values[j] = v
			}
			require.NoError(t, f.SetSheetRow(name, cell, &values))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestCSVParser_Latin1(t *testing.T) {
	latin1, err := charmap.ISO8859_1.NewEncoder().String("Nome do Lead,Número\nAção Ltda,12\n\n,\n")
	require.NoError(t, err)

	p, err := ParseFromBytes([]byte(latin1))
	require.NoError(t, err)
	require.NoError(t, p.ParseHeader())

	assert.Equal(t, []string{"Nome do Lead", "Número"}, p.Headers())
	rows, err := p.ReadAllRows()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Ação Ltda", "12"}}, rows)
}

func TestCSVParser_Encodings(t *testing.T) {
	utf8Content := []byte("\xEF\xBB\xBFCidade\nSão Paulo\n")
	latin1Content := []byte("Cidade\nS\xE3o Paulo\n")

	tests := []struct {
		name     string
		content  []byte
		encoding Encoding
		want     string
		wantErr  error
	}{
		{"auto picks utf8", []byte("Cidade\nSão Paulo\n"), EncodingAuto, "São Paulo", nil},
		{"auto falls back to latin1", latin1Content, EncodingAuto, "São Paulo", nil},
		{"bom means utf8", utf8Content, EncodingLatin1, "São Paulo", nil},
		{"strict utf8 rejects latin1", latin1Content, EncodingUTF8, "", ErrInvalidEncoding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseFromBytes(tt.content, WithEncoding(tt.encoding))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NoError(t, p.ParseHeader())
			rows, err := p.ReadAllRows()
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows[0][0])
		})
	}
}

func TestCSVParser_Empty(t *testing.T) {
	_, err := ParseFromBytes(nil)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestUniqueHeaders(t *testing.T) {
	got := uniqueHeaders([]string{" CNPJ ", "Email", "", "Email", "Email.1", "Email"})
	assert.Equal(t, []string{"CNPJ", "Email", "Unnamed: 2", "Email.1", "Email.1.1", "Email.2"}, got)
}

func TestDecoder_Accepts(t *testing.T) {
	d := NewDecoder(WithFormats(FormatXLSX))

	_, ok := d.Accepts("Leads.XLSX")
	assert.True(t, ok)
	_, ok = d.Accepts("leads.csv")
	assert.False(t, ok)

	_, err := d.Decode("leads.csv", []byte("a\n1\n"))
	se, isStructural := dataset.AsStructural(err)
	require.True(t, isStructural)
	assert.Equal(t, dataset.ErrCodeUnsupportedFormat, se.Code)
}

func TestDecoder_DecodeCSV(t *testing.T) {
	content := []byte("Nome do Lead,SOCIO1Nome\nAcme,Jane\nBeta\n")

	ds, err := NewDecoder().Decode("leads.csv", content)
	require.NoError(t, err)

	assert.Equal(t, []string{"Nome do Lead", "SOCIO1Nome"}, ds.Columns)
	require.Equal(t, 2, ds.Len())
	v, ok := ds.Records[1].Lookup("SOCIO1Nome")
	assert.True(t, ok, "short rows are padded")
	assert.Equal(t, "", v)
}

func TestDecoder_DecodeWorkbook_SheetSelection(t *testing.T) {
	tests := []struct {
		name      string
		order     []string
		wantSheet string
	}{
		{"prefers main case-insensitively", []string{"Resumo", "MAIN"}, "MAIN"},
		{"falls back to first sheet", []string{"Resumo", "Outra"}, "Resumo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheets := map[string][][]string{}
			for _, s := range tt.order {
				sheets[s] = [][]string{{"Sheet"}, {s}}
			}
			content := buildWorkbook(t, sheets, tt.order)

			ds, err := NewDecoder().Decode("leads.xlsx", content)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSheet, ds.Sheet)
			assert.Equal(t, tt.wantSheet, ds.Records[0].Get("Sheet"))
		})
	}
}

func TestDecoder_DecodeWorkbook_Errors(t *testing.T) {
	_, err := NewDecoder().Decode("leads.xlsx", []byte("not a zip"))
	se, ok := dataset.AsStructural(err)
	require.True(t, ok)
	assert.Equal(t, dataset.ErrCodeUnreadableInput, se.Code)

	empty := buildWorkbook(t, map[string][][]string{"main": nil}, []string{"main"})
	_, err = NewDecoder().Decode("leads.xlsx", empty)
	se, ok = dataset.AsStructural(err)
	require.True(t, ok)
	assert.Equal(t, dataset.ErrCodeEmptyInput, se.Code)
}

func TestXLSXWriter_RoundTrip(t *testing.T) {
	ds := dataset.FromRows([]string{"CNPJ", "Nome do Lead", " "}, [][]string{{"00.000/0001", "Acme", ""}})
	ds.Labels = []string{"CNPJ", "Razão Social", " "}
	ds.Records[0].SetFill("CNPJ", "FFFF0000")

	body, err := NewXLSXWriter(WithSheetName("Dados")).Bytes(ds)
	require.NoError(t, err)

	wb, err := OpenWorkbook(bytes.NewReader(body))
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"Dados"}, wb.Sheets())
	rows, err := wb.Rows("Dados")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"CNPJ", "Nome do Lead", " "}, rows[0])
	assert.Equal(t, []string{"CNPJ", "Razão Social", " "}, rows[1])
	assert.Equal(t, "Acme", rows[2][1])

	color, err := wb.Fill("Dados", 1, 3)
	require.NoError(t, err)
	assert.Contains(t, color, "FF0000")
}

func TestDecoder_ReadsFills(t *testing.T) {
	src := dataset.FromRows([]string{"SOCIO1Celular1", "Other"}, [][]string{{"1199", "x"}, {"2199", "y"}})
	src.Records[1].SetFill("SOCIO1Celular1", "FF00B050")
	src.Records[1].SetFill("Other", "FF00B050")
	body, err := NewXLSXWriter().Bytes(src)
	require.NoError(t, err)

	ds, err := NewDecoder(WithFills("SOCIO1Celular1")).Decode("in.xlsx", body)
	require.NoError(t, err)

	assert.Equal(t, "", ds.Records[0].Fill("SOCIO1Celular1"))
	assert.Contains(t, ds.Records[1].Fill("SOCIO1Celular1"), "00B050")
	assert.Equal(t, "", ds.Records[1].Fill("Other"), "only requested columns are inspected")
}

func TestEncodeBundle(t *testing.T) {
	b := dataset.Bundle{
		{Name: "Empresas.xlsx", Data: dataset.FromRows([]string{"Nome"}, [][]string{{"Acme"}})},
		{Name: "Negocios.xlsx", Data: dataset.FromRows([]string{"Status"}, [][]string{{"Aberto"}})},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeBundle(&buf, b, nil))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "Empresas.xlsx", zr.File[0].Name)
	assert.Equal(t, "Negocios.xlsx", zr.File[1].Name)

	rc, err := zr.File[1].Open()
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)

	ds, err := NewDecoder().Decode("Negocios.xlsx", body)
	require.NoError(t, err)
	assert.Equal(t, []string{"Aberto"}, ds.Column("Status"))
}

func TestUpperHeader(t *testing.T) {
	assert.Equal(t, "GRAVAÇÃO", UpperHeader(" Gravação "))
	assert.Equal(t, "ATENDENTE", UpperHeader("atendente"))
	assert.Equal(t, "ID", UpperHeader("Id"))
}
