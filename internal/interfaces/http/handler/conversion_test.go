package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dibaisales/central/internal/application/conversion"
	"github.com/dibaisales/central/internal/domain/dataset"
	"github.com/dibaisales/central/internal/interfaces/http/dto"
	"github.com/dibaisales/central/internal/interfaces/http/middleware"
)

type fakeConverter struct {
	upload    conversion.Upload
	request   conversion.LeadBundleRequest
	withExcel bool
	err       error
}

func (f *fakeConverter) archive(name string) (*conversion.Archive, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &conversion.Archive{Name: name, ContentType: "application/zip", Body: []byte("PK\x03\x04")}, nil
}

func (f *fakeConverter) ConvertLeads(ctx context.Context, up conversion.Upload, req conversion.LeadBundleRequest) (*conversion.Archive, error) {
	f.upload, f.request = up, req
	return f.archive("planilhas_convertidas.zip")
}

func (f *fakeConverter) UnifyRegistry(ctx context.Context, up conversion.Upload) (*conversion.Archive, error) {
	f.upload = up
	return f.archive("Speedio_Assertiva_Unificado.xlsx")
}

func (f *fakeConverter) ExportSalesforce(ctx context.Context, up conversion.Upload) (*conversion.Archive, error) {
	f.upload = up
	return f.archive("Salesforce.xlsx")
}

func (f *fakeConverter) ExtractPartnerPhones(ctx context.Context, up conversion.Upload) (*conversion.Archive, error) {
	f.upload = up
	return f.archive("socios_contatos_main.zip")
}

func (f *fakeConverter) ExtractEmails(ctx context.Context, up conversion.Upload, withExcel bool) (*conversion.EmailResult, error) {
	f.upload, f.withExcel = up, withExcel
	if f.err != nil {
		return nil, f.err
	}
	return &conversion.EmailResult{Emails: []string{"a@x.com"}, ExcelBase64: "UEs="}, nil
}

func conversionRouter(svc Converter) *gin.Engine {
	h := NewConversionHandler(svc)
	r := gin.New()
	r.POST("/converter_planilha", h.ConvertLeads)
	r.POST("/speedio_assertiva", h.UnifyRegistry)
	r.POST("/salesforce", h.ExportSalesforce)
	r.POST("/extrator-numero", h.ExtractPartnerPhones)
	r.POST("/extrator-email", h.ExtractEmails)
	return r
}

func TestConversionHandler_ConvertLeads(t *testing.T) {
	t.Run("returns the archive as an attachment", func(t *testing.T) {
		svc := &fakeConverter{}
		w := httptest.NewRecorder()
		conversionRouter(svc).ServeHTTP(w, multipartRequest(t, "/converter_planilha", "leads.xlsx", []byte("xlsx"),
			map[string]string{"funil": "Prospecção", "usuario_responsavel": "Ana"}))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="planilhas_convertidas.zip"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "PK\x03\x04", w.Body.String())
		assert.Equal(t, conversion.LeadBundleRequest{Funnel: "Prospecção", User: "Ana"}, svc.request)
		assert.Equal(t, "leads.xlsx", svc.upload.Filename)
	})

	t.Run("missing form field", func(t *testing.T) {
		svc := &fakeConverter{}
		w := httptest.NewRecorder()
		conversionRouter(svc).ServeHTTP(w, multipartRequest(t, "/converter_planilha", "leads.xlsx", []byte("xlsx"),
			map[string]string{"funil": "Prospecção"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "usuario_responsavel", resp.Error.Details[0].Field)
		assert.Empty(t, svc.upload.Filename)
	})

	t.Run("missing file", func(t *testing.T) {
		w := httptest.NewRecorder()
		conversionRouter(&fakeConverter{}).ServeHTTP(w, multipartRequest(t, "/converter_planilha", "", nil,
			map[string]string{"funil": "F", "usuario_responsavel": "U"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
	})

	t.Run("chunked upload over the body limit", func(t *testing.T) {
		svc := &fakeConverter{}
		r := gin.New()
		r.Use(middleware.BodyLimit(1024))
		r.POST("/converter_planilha", NewConversionHandler(svc).ConvertLeads)

		req := multipartRequest(t, "/converter_planilha", "leads.xlsx", bytes.Repeat([]byte("x"), 4096),
			map[string]string{"funil": "F", "usuario_responsavel": "U"})
		req.ContentLength = -1
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodePayloadTooLarge, resp.Error.Code)
		assert.Equal(t, PayloadTooLargeMessage, resp.Detail)
		assert.Empty(t, svc.upload.Filename)
	})
}

func TestConversionHandler_FileConversions(t *testing.T) {
	tests := []struct {
		path string
		name string
	}{
		{"/speedio_assertiva", "Speedio_Assertiva_Unificado.xlsx"},
		{"/salesforce", "Salesforce.xlsx"},
		{"/extrator-numero", "socios_contatos_main.zip"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			svc := &fakeConverter{}
			w := httptest.NewRecorder()
			conversionRouter(svc).ServeHTTP(w, multipartRequest(t, tt.path, "base.xlsx", []byte("xlsx"), nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Disposition"), tt.name)
			assert.Equal(t, []byte("xlsx"), svc.upload.Content)
		})
	}
}

func TestConversionHandler_Errors(t *testing.T) {
	t.Run("structural", func(t *testing.T) {
		svc := &fakeConverter{err: dataset.UnsupportedFormat("base.pdf", ".csv", ".xlsx")}
		w := httptest.NewRecorder()
		conversionRouter(svc).ServeHTTP(w, multipartRequest(t, "/speedio_assertiva", "base.pdf", []byte("%PDF"), nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dataset.ErrCodeUnsupportedFormat, decodeResponse(t, w).Error.Code)
	})

	t.Run("unexpected", func(t *testing.T) {
		svc := &fakeConverter{err: errors.New("disk full")}
		w := httptest.NewRecorder()
		conversionRouter(svc).ServeHTTP(w, multipartRequest(t, "/salesforce", "base.xlsx", []byte("x"), nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "disk full")
	})
}

func TestConversionHandler_ExtractEmails(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		status    int
		withExcel bool
	}{
		{"default generates excel", "", http.StatusOK, true},
		{"explicit false", "?gerar_excel=false", http.StatusOK, false},
		{"explicit true", "?gerar_excel=true", http.StatusOK, true},
		{"invalid flag", "?gerar_excel=talvez", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeConverter{}
			w := httptest.NewRecorder()
			conversionRouter(svc).ServeHTTP(w, multipartRequest(t, "/extrator-email"+tt.query, "base.csv", []byte("SOCIO1Email1\n"), nil))

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.withExcel, svc.withExcel)
			if tt.status != http.StatusOK {
				assert.Equal(t, "gerar_excel must be true or false", decodeResponse(t, w).Detail)
				return
			}
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, []interface{}{"a@x.com"}, body["emails"])
			assert.Equal(t, "UEs=", body["excel_base64"])
			assert.NotContains(t, body, "success")
		})
	}
}
