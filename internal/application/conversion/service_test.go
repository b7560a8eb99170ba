package conversion

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dibaisales/central/internal/domain/dataset"
	"github.com/dibaisales/central/internal/domain/mapping"
)

func fixedNow() time.Time {
	return time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC)
}

func newTestService(opts ...Option) *Service {
	mapper := mapping.NewMapper(mapping.NewTransformRegistry(mapping.WithClock(fixedNow)))
	return NewService(mapper, nil, append([]Option{WithClock(fixedNow)}, opts...)...)
}

func workbook(t *testing.T, sheet string, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+1)
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func readSheet(t *testing.T, body []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func unzip(t *testing.T, body []byte) (names []string, files map[string][]byte) {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	files = make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		names = append(names, f.Name)
		files[f.Name] = data
	}
	return names, files
}

func leadRows() [][]string {
	return [][]string{
		{"Nome do Lead", "CNPJ", "Rede Social", "SOCIO1Nome", "SOCIO1Celular1", "SOCIO2Nome"},
		{"Acme", "123", "see instagram.com/acme, more text", "Jane", "11999990000", ""},
		{"Beta", "456", "facebook.com/beta", "", "", ""},
	}
}

func requireStructural(t *testing.T, err error, code string) *dataset.StructuralError {
	t.Helper()
	require.Error(t, err)
	se, ok := dataset.AsStructural(err)
	require.True(t, ok, "expected a structural error, got %v", err)
	assert.Equal(t, code, se.Code)
	return se
}

func TestService_Assemble(t *testing.T) {
	svc := newTestService()
	rows := leadRows()
	src := dataset.FromRows(rows[0], rows[1:])

	bundle, err := svc.Assemble(src, mapping.Params{
		mapping.ParamUser:   "ana",
		mapping.ParamFunnel: "Prospecção",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{CompanyTable, DealTable, "Pessoas1.xlsx"}, bundle.Names())

	companies, _ := bundle.Get(CompanyTable)
	require.Equal(t, 2, companies.Len())
	acme := companies.Records[0]
	assert.Equal(t, "Acme", acme.Get("Nome"))
	assert.Equal(t, "123", acme.Get("CNPJ"))
	assert.Equal(t, "http://instagram.com/acme", acme.Get("Instagram"))
	assert.Equal(t, "", acme.Get("Facebook"))
	assert.Equal(t, "ana", acme.Get("Usuário responsável"))
	assert.Equal(t, "Brasil", acme.Get("País"))
	assert.Equal(t, "http://facebook.com/beta", companies.Records[1].Get("Facebook"))

	deals, _ := bundle.Get(DealTable)
	require.Equal(t, 2, deals.Len())
	deal := deals.Records[0]
	assert.Equal(t, "Acme", deal.Get("Título do negócio"))
	assert.Equal(t, "Acme", deal.Get("Empresa relacionada"))
	assert.Equal(t, "Aberto", deal.Get("Status"))
	assert.Equal(t, "Em andamento", deal.Get("Etapa"))
	assert.Equal(t, "Prospecção", deal.Get("Funil"))
	assert.Equal(t, "07/03/2025", deal.Get("Data de início"))

	people, _ := bundle.Get("Pessoas1.xlsx")
	require.Equal(t, 1, people.Len())
	assert.Equal(t, "Jane", people.Records[0].Get("Nome"))
	assert.Equal(t, "Acme", people.Records[0].Get("Empresa"))
	assert.Equal(t, "11999990000", people.Records[0].Get("Celular"))
}

func TestService_Assemble_NoPartners(t *testing.T) {
	svc := newTestService()
	src := dataset.FromRows([]string{"Nome do Lead"}, [][]string{{"Acme"}})

	bundle, err := svc.Assemble(src, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{CompanyTable, DealTable}, bundle.Names())
}

func TestService_Assemble_StampsTodayPerCall(t *testing.T) {
	day := fixedNow()
	svc := newTestService(WithClock(func() time.Time { return day }))
	src := dataset.FromRows([]string{"Nome do Lead"}, [][]string{{"Acme"}})
	params := mapping.Params{mapping.ParamUser: "ana"}

	first, err := svc.Assemble(src, params)
	require.NoError(t, err)
	day = day.AddDate(0, 0, 1)
	second, err := svc.Assemble(src, params)
	require.NoError(t, err)

	firstDeals, _ := first.Get(DealTable)
	secondDeals, _ := second.Get(DealTable)
	assert.Equal(t, "07/03/2025", firstDeals.Records[0].Get("Data de início"))
	assert.Equal(t, "08/03/2025", secondDeals.Records[0].Get("Data de início"))
	assert.Equal(t, mapping.Params{mapping.ParamUser: "ana"}, params)
}

func TestService_ConvertLeads(t *testing.T) {
	svc := newTestService()
	up := Upload{Filename: "leads.xlsx", Content: workbook(t, "main", leadRows())}

	archive, err := svc.ConvertLeads(context.Background(), up, LeadBundleRequest{Funnel: "F", User: "U"})
	require.NoError(t, err)
	assert.Equal(t, LeadBundleArchive, archive.Name)
	assert.Equal(t, "application/zip", archive.ContentType)

	names, files := unzip(t, archive.Body)
	assert.Equal(t, []string{"Empresas.xlsx", "Negocios.xlsx", "Pessoas1.xlsx"}, names)

	companies := readSheet(t, files["Empresas.xlsx"], "Sheet1")
	require.Len(t, companies, 3)
	assert.Len(t, companies[0], len(mapping.CompanySchema.Fields))
	assert.Equal(t, "Nome", companies[0][0])
	assert.Equal(t, "Acme", companies[1][0])

	deals := readSheet(t, files["Negocios.xlsx"], "Sheet1")
	assert.Equal(t, "Título do negócio", deals[0][0])
	assert.Equal(t, "Beta", deals[2][0])
}

func TestService_ConvertLeads_StructuralErrors(t *testing.T) {
	t.Run("unsupported format", func(t *testing.T) {
		_, err := newTestService().ConvertLeads(context.Background(),
			Upload{Filename: "leads.pdf", Content: []byte("x")}, LeadBundleRequest{})
		requireStructural(t, err, dataset.ErrCodeUnsupportedFormat)
	})

	t.Run("empty upload", func(t *testing.T) {
		_, err := newTestService().ConvertLeads(context.Background(),
			Upload{Filename: "leads.csv"}, LeadBundleRequest{})
		requireStructural(t, err, dataset.ErrCodeEmptyInput)
	})

	t.Run("row limit", func(t *testing.T) {
		svc := newTestService(WithMaxRows(1))
		up := Upload{Filename: "leads.xlsx", Content: workbook(t, "main", leadRows())}
		_, err := svc.ConvertLeads(context.Background(), up, LeadBundleRequest{})
		requireStructural(t, err, dataset.ErrCodeTooManyRows)
	})
}

func TestService_UnifyRegistry(t *testing.T) {
	csv := "CNPJ,Razao,Fantasia,UF,Telefone1,Telefone2,Email1,Email2,QtdeFuncionarios,DataAbertura,SOCIO1Nome,SOCIO1Celular1\n" +
		" 123 ,Acme Ltda,Acme,SP,11 3333-0000,11999990000.0,a@acme.com,,12,15/06/2020,Jane,(11) 98888-7777\n"

	archive, err := newTestService().UnifyRegistry(context.Background(),
		Upload{Filename: "speedio.csv", Content: []byte(csv)})
	require.NoError(t, err)
	assert.Equal(t, RegistryFile, archive.Name)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", archive.ContentType)

	rows := readSheet(t, archive.Body, "Sheet1")
	require.Len(t, rows, 3)
	header, labels, data := rows[0], rows[1], rows[2]

	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("column %q not in output", name)
		return -1
	}

	assert.Equal(t, "Razão Social", labels[col("Nome do Lead")])
	assert.Equal(t, "Telefones Válidos", labels[col("Telefones")])
	assert.Equal(t, "CNPJ", labels[col("CNPJ")])

	assert.Equal(t, "123", data[col("CNPJ")])
	assert.Equal(t, "Acme Ltda", data[col("Nome do Lead")])
	assert.Equal(t, "SP", data[col("Estado")])
	assert.Equal(t, "1133330000, 11999990000", data[col("Telefones")])
	assert.Equal(t, "a@acme.com", data[col("E-mails Válidos de Decisores")])
	assert.Equal(t, "11 a 50", data[col("Faixa de Funcionários da Empresa")])
	assert.Equal(t, "15/06/2020", data[col("Data de Abertura")])
	assert.Equal(t, "mais de 4 anos", data[col("Idade da Empresa")])
	assert.Equal(t, "Jane", data[col("SOCIO1Nome")])
	assert.Equal(t, "11988887777", data[col("SOCIO1Celular1")])
}

func TestService_ExportSalesforce(t *testing.T) {
	svc := newTestService()

	t.Run("rejects csv", func(t *testing.T) {
		_, err := svc.ExportSalesforce(context.Background(), Upload{Filename: "leads.csv", Content: []byte("a\n1\n")})
		requireStructural(t, err, dataset.ErrCodeUnsupportedFormat)
	})

	t.Run("maps layout", func(t *testing.T) {
		rows := [][]string{
			{"Nome do Lead", "CNPJ", "Rede Social", "SOCIO1Nome", "SOCIO1Celular1", "SOCIO2Nome", "SOCIO2Celular2"},
			{"Acme", "123", "@acme", "Jane", "11999990000", "John", "11977776666"},
		}
		archive, err := svc.ExportSalesforce(context.Background(),
			Upload{Filename: "leads.xlsx", Content: workbook(t, "Leads", rows)})
		require.NoError(t, err)
		assert.Equal(t, SalesforceFile, archive.Name)

		out := readSheet(t, archive.Body, "Sheet1")
		require.Len(t, out, 2)
		assert.Len(t, out[0], len(mapping.SalesforceSchema.Fields))
		assert.Equal(t, "Company", out[0][0])

		got := make(map[string]string)
		for i, h := range out[0] {
			if i < len(out[1]) {
				got[h] = out[1][i]
			}
		}
		assert.Equal(t, "Acme", got["Company"])
		assert.Equal(t, "Jane", got["LastName"])
		assert.Equal(t, "123", got["Documento__c"])
		assert.Equal(t, "@acme", got["Instagram__c"])
		assert.Equal(t, "", got["Facebook__c"])
		assert.Equal(t, "John", got["Contato_2_Nome__c"])
		assert.Equal(t, "11977776666", got["Contato_2_Telefone_2__c"])
	})
}

func TestService_ExtractPartnerPhones(t *testing.T) {
	svc := newTestService()

	t.Run("no partner slot", func(t *testing.T) {
		up := Upload{Filename: "leads.xlsx", Content: workbook(t, "Base", [][]string{{"Nome do Lead"}, {"Acme"}})}
		_, err := svc.ExtractPartnerPhones(context.Background(), up)
		se := requireStructural(t, err, dataset.ErrCodeNoOutput)
		assert.Equal(t, "Nenhum número encontrado na aba 'Base'.", se.Message)
	})

	t.Run("one file per slot", func(t *testing.T) {
		rows := [][]string{
			{"CNPJ", "Nome do Lead", "SOCIO1Nome", "SOCIO1Celular1", "SOCIO1Celular2", "SOCIO2Nome", "SOCIO2Celular2"},
			{"1", "Acme", "Jane", "", "11 98888-7777", "John", "+55 11 97777-6666"},
			{"2", "Beta", "", "11911112222", "", "", ""},
		}
		archive, err := svc.ExtractPartnerPhones(context.Background(),
			Upload{Filename: "leads.xlsx", Content: workbook(t, "Main", rows)})
		require.NoError(t, err)
		assert.Equal(t, "socios_contatos_Main.zip", archive.Name)

		names, files := unzip(t, archive.Body)
		assert.Equal(t, []string{"socio1.xlsx", "socio2.xlsx"}, names)

		slot1 := readSheet(t, files["socio1.xlsx"], ContactsSheet)
		require.Len(t, slot1, 2)
		assert.Equal(t, []string{"name", "phone_number", "business", "prompt"}, slot1[0])
		assert.Equal(t, "Jane", slot1[1][0])
		assert.Equal(t, "5511988887777", slot1[1][1])
		assert.Equal(t, "Acme", slot1[1][2])
		assert.Contains(t, slot1[1][3], "Este número é de Jane da Acme?")

		slot2 := readSheet(t, files["socio2.xlsx"], ContactsSheet)
		require.Len(t, slot2, 2)
		assert.Equal(t, "5511977776666", slot2[1][1])
	})
}

func TestService_ExtractEmails(t *testing.T) {
	svc := newTestService()

	t.Run("missing column lists what was found", func(t *testing.T) {
		_, err := svc.ExtractEmails(context.Background(),
			Upload{Filename: "x.csv", Content: []byte("Nome,Email\nA,a@b.com\n")}, false)
		se := requireStructural(t, err, dataset.ErrCodeMissingColumn)
		assert.Equal(t, []string{EmailSourceColumn}, se.Missing)
		assert.Equal(t, []string{"Nome", "Email"}, se.Found)
		assert.Contains(t, se.Message, "'csv'")
	})

	t.Run("no valid email", func(t *testing.T) {
		_, err := svc.ExtractEmails(context.Background(),
			Upload{Filename: "x.csv", Content: []byte("SOCIO1Email1\nsem email\n\n")}, false)
		requireStructural(t, err, dataset.ErrCodeNoOutput)
	})

	t.Run("distinct sorted with workbook", func(t *testing.T) {
		rows := [][]string{
			{"SOCIO1Email1"},
			{" zed@acme.com "},
			{"ana@acme.com"},
			{"zed@acme.com"},
			{"invalid@"},
			{"no-at.com"},
		}
		res, err := svc.ExtractEmails(context.Background(),
			Upload{Filename: "x.xlsx", Content: workbook(t, "main", rows)}, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"ana@acme.com", "zed@acme.com"}, res.Emails)

		body, err := base64.StdEncoding.DecodeString(res.ExcelBase64)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"email"}, {"ana@acme.com"}, {"zed@acme.com"}}, readSheet(t, body, EmailsSheet))
	})

	t.Run("without workbook", func(t *testing.T) {
		res, err := svc.ExtractEmails(context.Background(),
			Upload{Filename: "x.csv", Content: []byte("SOCIO1Email1\na@b.com\n")}, false)
		require.NoError(t, err)
		assert.Equal(t, []string{"a@b.com"}, res.Emails)
		assert.Empty(t, res.ExcelBase64)
	})
}
