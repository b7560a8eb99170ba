package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	appvalidation "github.com/dibaisales/central/internal/application/validation"
	"github.com/dibaisales/central/internal/domain/validation"
	"github.com/dibaisales/central/internal/interfaces/http/dto"
	"github.com/dibaisales/central/internal/interfaces/http/middleware"
)

// NumberValidator checks phone numbers against the messaging service.
type NumberValidator interface {
	Validate(ctx context.Context, number string) validation.Result
	ValidateBatch(ctx context.Context, numbers []string) ([]validation.Result, error)
}

// WhatsAppHandler handles the number validation endpoint
type WhatsAppHandler struct {
	BaseHandler
	svc NumberValidator
}

// NewWhatsAppHandler creates a new WhatsAppHandler
func NewWhatsAppHandler(svc NumberValidator) *WhatsAppHandler {
	return &WhatsAppHandler{svc: svc}
}

// Validate handles POST /whatsapp_validator.
// Body {"number": "..."} answers with one bare result, {"numbers": [...]}
// with a bare list.
func (h *WhatsAppHandler) Validate(c *gin.Context) {
	var req appvalidation.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if req.IsEmpty() {
		h.ValidationError(c, appvalidation.ErrNoNumbers.Error(),
			dto.ValidationDetail{Field: "number", Message: "required"})
		return
	}

	if !req.IsBatch() {
		c.JSON(http.StatusOK, h.svc.Validate(c.Request.Context(), req.Number))
		return
	}

	results, err := h.svc.ValidateBatch(c.Request.Context(), req.Numbers)
	if errors.Is(err, appvalidation.ErrNoNumbers) {
		h.ValidationError(c, err.Error())
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
