package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/dibaisales/central/internal/interfaces/http/dto"
)

// RequestIDKey is the header carrying the request ID
const RequestIDKey = "X-Request-ID"

var setupOnce sync.Once

// SetupValidator configures gin's validator: field names come from the json
// or form tag, and the notblank tag rejects whitespace-only strings.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
		_ = v.RegisterValidation("notblank", notBlank)
	})
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(field.String()) != ""
}

// ValidationFailedMessage is the top-level message of a binding failure
const ValidationFailedMessage = "Dados da requisição inválidos"

// FormatValidationErrors turns binding errors into a VALIDATION_ERROR
// envelope with one detail per offending field.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return dto.NewValidationErrorResponse(ValidationFailedMessage, requestID, nil)
	}

	details := make([]dto.ValidationDetail, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		details = append(details, dto.ValidationDetail{
			Field:   e.Field(),
			Message: getValidationMessage(e),
		})
	}
	return dto.NewValidationErrorResponse(ValidationFailedMessage, requestID, details)
}

// HandleValidationError writes a 400 validation envelope
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, getRequestIDFromContext(c)))
}

func getRequestIDFromContext(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader(RequestIDKey)
}

// getValidationMessage renders a field error for the sales team's frontend,
// which shows these strings verbatim.
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "Campo obrigatório"
	case "max":
		if e.Kind() == reflect.Slice {
			return "Máximo de " + e.Param() + " itens"
		}
		return "Máximo de " + e.Param() + " caracteres"
	case "min":
		if e.Kind() == reflect.Slice {
			return "Mínimo de " + e.Param() + " itens"
		}
		return "Mínimo de " + e.Param() + " caracteres"
	default:
		return "Valor inválido"
	}
}
