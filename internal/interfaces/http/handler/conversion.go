package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dibaisales/central/internal/application/conversion"
	"github.com/dibaisales/central/internal/interfaces/http/dto"
	"github.com/dibaisales/central/internal/interfaces/http/middleware"
)

// Converter is the set of spreadsheet conversions exposed over HTTP.
type Converter interface {
	ConvertLeads(ctx context.Context, up conversion.Upload, req conversion.LeadBundleRequest) (*conversion.Archive, error)
	UnifyRegistry(ctx context.Context, up conversion.Upload) (*conversion.Archive, error)
	ExportSalesforce(ctx context.Context, up conversion.Upload) (*conversion.Archive, error)
	ExtractPartnerPhones(ctx context.Context, up conversion.Upload) (*conversion.Archive, error)
	ExtractEmails(ctx context.Context, up conversion.Upload, withExcel bool) (*conversion.EmailResult, error)
}

// ConversionHandler handles the spreadsheet conversion endpoints
type ConversionHandler struct {
	BaseHandler
	svc Converter
}

// NewConversionHandler creates a new ConversionHandler
func NewConversionHandler(svc Converter) *ConversionHandler {
	return &ConversionHandler{svc: svc}
}

// ConvertLeads handles POST /converter_planilha.
// Multipart fields: file, funil, usuario_responsavel. Answers with a ZIP of
// the CRM import workbooks.
func (h *ConversionHandler) ConvertLeads(c *gin.Context) {
	var req conversion.LeadBundleRequest
	if err := c.ShouldBind(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, PayloadTooLargeMessage)
			return
		}
		middleware.HandleValidationError(c, err)
		return
	}
	up, ok := h.Upload(c)
	if !ok {
		return
	}

	archive, err := h.svc.ConvertLeads(c.Request.Context(), up, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Download(c, archive)
}

// UnifyRegistry handles POST /speedio_assertiva
func (h *ConversionHandler) UnifyRegistry(c *gin.Context) {
	h.convert(c, h.svc.UnifyRegistry)
}

// ExportSalesforce handles POST /salesforce
func (h *ConversionHandler) ExportSalesforce(c *gin.Context) {
	h.convert(c, h.svc.ExportSalesforce)
}

// ExtractPartnerPhones handles POST /extrator-numero
func (h *ConversionHandler) ExtractPartnerPhones(c *gin.Context) {
	h.convert(c, h.svc.ExtractPartnerPhones)
}

// ExtractEmails handles POST /extrator-email.
// Query gerar_excel (default true) adds the base64 workbook to the answer,
// which is the bare {emails, excel_base64} object.
func (h *ConversionHandler) ExtractEmails(c *gin.Context) {
	withExcel := true
	if raw := c.Query("gerar_excel"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "gerar_excel must be true or false")
			return
		}
		withExcel = v
	}
	up, ok := h.Upload(c)
	if !ok {
		return
	}

	res, err := h.svc.ExtractEmails(c.Request.Context(), up, withExcel)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ConversionHandler) convert(c *gin.Context, run func(context.Context, conversion.Upload) (*conversion.Archive, error)) {
	up, ok := h.Upload(c)
	if !ok {
		return
	}
	archive, err := run(c.Request.Context(), up)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Download(c, archive)
}
