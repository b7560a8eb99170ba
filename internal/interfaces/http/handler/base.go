package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dibaisales/central/internal/application/conversion"
	"github.com/dibaisales/central/internal/domain/dataset"
	"github.com/dibaisales/central/internal/infrastructure/logger"
	"github.com/dibaisales/central/internal/interfaces/http/dto"
)

// RequestIDKey is the context key for request ID
const RequestIDKey = "X-Request-ID"

// FileField is the multipart part carrying the uploaded spreadsheet.
const FileField = "file"

// PayloadTooLargeMessage answers uploads cut off by the body limit.
const PayloadTooLargeMessage = "Request body exceeds maximum allowed size"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDKey)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, message string, details ...dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(message, getRequestID(c), details))
}

// HandleError converts use case errors to HTTP responses. Structural input
// errors are the client's fault; everything else is logged and hidden.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	if se, ok := dataset.AsStructural(err); ok {
		c.JSON(dto.GetHTTPStatus(se.Code), dto.NewStructuralErrorResponse(se, getRequestID(c)))
		return
	}
	_ = c.Error(err)
	logger.GetGinLogger(c).Error("request failed", zap.Error(err))
	h.InternalError(c)
}

// Upload reads the spreadsheet part of a multipart request. On failure the
// validation error has already been written.
func (h *BaseHandler) Upload(c *gin.Context) (conversion.Upload, bool) {
	fh, err := c.FormFile(FileField)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, PayloadTooLargeMessage)
		return conversion.Upload{}, false
	}
	if err != nil {
		h.ValidationError(c, "Nenhum arquivo enviado",
			dto.ValidationDetail{Field: FileField, Message: "required"})
		return conversion.Upload{}, false
	}
	content, err := readFormFile(fh)
	if err != nil {
		h.HandleError(c, err)
		return conversion.Upload{}, false
	}
	return conversion.Upload{Filename: fh.Filename, Content: content}, true
}

// Download streams a produced file as an attachment.
func (h *BaseHandler) Download(c *gin.Context, a *conversion.Archive) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, a.Name))
	c.Data(http.StatusOK, a.ContentType, a.Body)
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return content, nil
}
