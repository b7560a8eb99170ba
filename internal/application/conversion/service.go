package conversion

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"maps"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/dibaisales/central/internal/domain/dataset"
	"github.com/dibaisales/central/internal/domain/mapping"
	"github.com/dibaisales/central/internal/domain/normalize"
	"github.com/dibaisales/central/internal/infrastructure/sheetio"
	"github.com/dibaisales/central/internal/infrastructure/telemetry"
)

// Conversion kinds, used in logs and metrics.
const (
	KindLeads         = "leads"
	KindRegistry      = "registry"
	KindSalesforce    = "salesforce"
	KindPartnerPhones = "partner_phones"
	KindEmails        = "emails"
)

// Output file names.
const (
	LeadBundleArchive = "planilhas_convertidas.zip"
	CompanyTable      = "Empresas.xlsx"
	DealTable         = "Negocios.xlsx"
	RegistryFile      = "Speedio_Assertiva_Unificado.xlsx"
	SalesforceFile    = "Salesforce.xlsx"
	ContactsSheet     = "Contatos"
	EmailsSheet       = "Emails"
	EmailColumn       = "email"
	EmailSourceColumn = "SOCIO1Email1"
)

// DateLayout is the display format of stamped dates.
const DateLayout = "02/01/2006"

// Service runs every spreadsheet conversion. It holds no per-request state.
type Service struct {
	mapper   *mapping.Mapper
	expander *mapping.Expander
	now      func() time.Time
	maxRows  int
	metrics  *telemetry.Metrics
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for the deal start date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithMaxRows rejects uploads with more than n data rows. Zero means unlimited.
func WithMaxRows(n int) Option {
	return func(s *Service) {
		s.maxRows = n
	}
}

// WithMetrics records conversion counters.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a conversion service over mapper.
func NewService(mapper *mapping.Mapper, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		mapper:   mapper,
		expander: mapping.NewExpander(mapper),
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// Dataset Assembler
// =============================================================================

// Assemble builds the CRM bundle from a lead table: Empresas, Negocios with
// one deal per company, then one Pessoas{i} table per populated partner slot.
func (s *Service) Assemble(src *dataset.Dataset, params mapping.Params) (dataset.Bundle, error) {
	params = maps.Clone(params)
	if params == nil {
		params = mapping.Params{}
	}
	if _, ok := params[mapping.ParamToday]; !ok {
		params[mapping.ParamToday] = s.now().Format(DateLayout)
	}

	companies, err := s.mapper.Map(mapping.CompanySchema, src, params)
	if err != nil {
		return nil, fmt.Errorf("failed to map companies: %w", err)
	}
	deals, err := s.mapper.Map(mapping.DealSchema, companies, params)
	if err != nil {
		return nil, fmt.Errorf("failed to map deals: %w", err)
	}

	bundle := dataset.Bundle{
		{Name: CompanyTable, Data: companies},
		{Name: DealTable, Data: deals},
	}

	slots, err := s.expander.Expand(mapping.PersonSchema, src, params)
	if err != nil {
		return nil, fmt.Errorf("failed to expand partners: %w", err)
	}
	for _, slot := range slots {
		name := mapping.PersonSchema.Bind(slot.Index).Name + ".xlsx"
		bundle = append(bundle, dataset.Table{Name: name, Data: slot.Data})
	}
	return bundle, nil
}

// =============================================================================
// Conversions
// =============================================================================

// ConvertLeads turns a lead export (Latin-1 CSV or XLSX) into the zipped CRM bundle.
func (s *Service) ConvertLeads(ctx context.Context, up Upload, req LeadBundleRequest) (result *Archive, err error) {
	ctx, span := telemetry.StartSpan(ctx, "conversion.leads", attribute.String("file", up.Filename))
	defer span.End()

	src, err := s.decode(up, sheetio.NewDecoder(
		sheetio.WithFormats(sheetio.FormatCSV, sheetio.FormatXLSX, sheetio.FormatXLS),
		sheetio.WithCSVEncoding(sheetio.EncodingLatin1),
	))
	defer func() { s.finish(ctx, KindLeads, src, err) }()
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	bundle, err := s.Assemble(src, mapping.Params{
		mapping.ParamUser:   req.User,
		mapping.ParamFunnel: req.Funnel,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var buf bytes.Buffer
	if err = sheetio.EncodeBundle(&buf, bundle, sheetio.NewXLSXWriter()); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to encode bundle: %w", err)
	}

	s.logger.Info("lead bundle converted",
		zap.String("file", up.Filename),
		zap.Int("rows", src.Len()),
		zap.Strings("tables", bundle.Names()))

	return &Archive{Name: LeadBundleArchive, ContentType: sheetio.ContentTypeZIP, Body: buf.Bytes()}, nil
}

// UnifyRegistry normalizes a CNPJ registry export (CSV in any encoding, or XLSX)
// into the two-header lead layout.
func (s *Service) UnifyRegistry(ctx context.Context, up Upload) (result *Archive, err error) {
	ctx, span := telemetry.StartSpan(ctx, "conversion.registry", attribute.String("file", up.Filename))
	defer span.End()

	src, err := s.decode(up, sheetio.NewDecoder(
		sheetio.WithFormats(sheetio.FormatCSV, sheetio.FormatXLSX, sheetio.FormatXLS),
		sheetio.WithCSVEncoding(sheetio.EncodingAuto),
	))
	defer func() { s.finish(ctx, KindRegistry, src, err) }()
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	out, err := s.mapper.Map(mapping.RegistrySchema, src, nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to map registry: %w", err)
	}
	body, err := sheetio.NewXLSXWriter().Bytes(out)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to encode registry: %w", err)
	}

	s.logger.Info("registry unified",
		zap.String("file", up.Filename),
		zap.Int("rows", out.Len()))

	return &Archive{Name: RegistryFile, ContentType: sheetio.ContentTypeXLSX, Body: body}, nil
}

// ExportSalesforce remaps a lead workbook to the Salesforce import layout,
// carrying partner phone cell colors over to the contact columns.
func (s *Service) ExportSalesforce(ctx context.Context, up Upload) (result *Archive, err error) {
	ctx, span := telemetry.StartSpan(ctx, "conversion.salesforce", attribute.String("file", up.Filename))
	defer span.End()

	src, err := s.decode(up, sheetio.NewDecoder(
		sheetio.WithFormats(sheetio.FormatXLSX, sheetio.FormatXLS),
		sheetio.WithFills(mapping.FillColumns(mapping.SalesforceSchema)...),
	))
	defer func() { s.finish(ctx, KindSalesforce, src, err) }()
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	out, err := s.mapper.Map(mapping.SalesforceSchema, src, nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to map salesforce layout: %w", err)
	}
	body, err := sheetio.NewXLSXWriter().Bytes(out)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to encode salesforce layout: %w", err)
	}

	s.logger.Info("salesforce layout exported",
		zap.String("file", up.Filename),
		zap.Int("rows", out.Len()))

	return &Archive{Name: SalesforceFile, ContentType: sheetio.ContentTypeXLSX, Body: body}, nil
}

// ExtractPartnerPhones lists, per partner slot, each named partner with their
// best phone and call script, zipped as socio{i}.xlsx.
func (s *Service) ExtractPartnerPhones(ctx context.Context, up Upload) (result *Archive, err error) {
	ctx, span := telemetry.StartSpan(ctx, "conversion.partner_phones", attribute.String("file", up.Filename))
	defer span.End()

	src, err := s.decode(up, sheetio.NewDecoder(
		sheetio.WithFormats(sheetio.FormatXLSX, sheetio.FormatXLS),
	))
	defer func() { s.finish(ctx, KindPartnerPhones, src, err) }()
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	slots, err := s.expander.Expand(mapping.PartnerPhoneSchema, src, nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to expand partner phones: %w", err)
	}
	if len(slots) == 0 {
		err = dataset.NoOutput(fmt.Sprintf("Nenhum número encontrado na aba '%s'.", src.Sheet))
		return nil, err
	}

	w := sheetio.NewXLSXWriter(sheetio.WithSheetName(ContactsSheet))
	bundle := make(dataset.Bundle, 0, len(slots))
	for _, slot := range slots {
		name := mapping.PartnerPhoneSchema.Bind(slot.Index).Name + ".xlsx"
		bundle = append(bundle, dataset.Table{Name: name, Data: slot.Data})
	}
	var buf bytes.Buffer
	if err = sheetio.EncodeBundle(&buf, bundle, w); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to encode partner phones: %w", err)
	}

	s.logger.Info("partner phones extracted",
		zap.String("file", up.Filename),
		zap.String("sheet", src.Sheet),
		zap.Strings("tables", bundle.Names()))

	return &Archive{
		Name:        fmt.Sprintf("socios_contatos_%s.zip", src.Sheet),
		ContentType: sheetio.ContentTypeZIP,
		Body:        buf.Bytes(),
	}, nil
}

// ExtractEmails collects the distinct first-partner emails, sorted. When
// withExcel is set the list is also returned as a base64 encoded workbook.
func (s *Service) ExtractEmails(ctx context.Context, up Upload, withExcel bool) (result *EmailResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "conversion.emails", attribute.String("file", up.Filename))
	defer span.End()

	src, err := s.decode(up, sheetio.NewDecoder(
		sheetio.WithFormats(sheetio.FormatCSV, sheetio.FormatXLSX, sheetio.FormatXLS),
		sheetio.WithCSVEncoding(sheetio.EncodingLatin1),
	))
	defer func() { s.finish(ctx, KindEmails, src, err) }()
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err = src.Require(EmailSourceColumn); err != nil {
		return nil, err
	}

	emails := distinctEmails(src.Column(EmailSourceColumn))
	if len(emails) == 0 {
		err = dataset.NoOutput(fmt.Sprintf("Nenhum e-mail encontrado na coluna '%s' da aba '%s'.",
			EmailSourceColumn, src.Sheet))
		return nil, err
	}

	res := &EmailResult{Emails: emails}
	if withExcel {
		out := dataset.New(EmailColumn)
		for _, e := range emails {
			out.AppendValues(e)
		}
		body, encErr := sheetio.NewXLSXWriter(sheetio.WithSheetName(EmailsSheet)).Bytes(out)
		if encErr != nil {
			err = fmt.Errorf("failed to encode emails: %w", encErr)
			telemetry.RecordError(span, err)
			return nil, err
		}
		res.ExcelBase64 = base64.StdEncoding.EncodeToString(body)
	}

	s.logger.Info("emails extracted",
		zap.String("file", up.Filename),
		zap.Int("rows", src.Len()),
		zap.Int("emails", len(emails)))

	return res, nil
}

// =============================================================================
// helpers
// =============================================================================

func (s *Service) decode(up Upload, dec *sheetio.Decoder) (*dataset.Dataset, error) {
	src, err := dec.Decode(up.Filename, up.Content)
	if err != nil {
		return nil, err
	}
	if s.maxRows > 0 && src.Len() > s.maxRows {
		return nil, dataset.TooManyRows(src.Len(), s.maxRows)
	}
	return src, nil
}

func (s *Service) finish(ctx context.Context, kind string, src *dataset.Dataset, err error) {
	rows := 0
	if src != nil {
		rows = src.Len()
	}
	s.metrics.RecordConversion(ctx, kind, rows, err)
	if err != nil {
		s.logger.Warn("conversion failed",
			zap.String("kind", kind),
			zap.Int("rows", rows),
			zap.Error(err))
	}
}

func distinctEmails(values []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if !normalize.IsEmail(v) {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
