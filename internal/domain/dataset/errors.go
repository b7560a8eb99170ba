package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Structural error codes
const (
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeUnreadableInput   = "UNREADABLE_INPUT"
	ErrCodeMissingColumn     = "MISSING_COLUMN"
	ErrCodeEmptyInput        = "EMPTY_INPUT"
	ErrCodeNoOutput          = "NO_OUTPUT"
	ErrCodeTooManyRows       = "TOO_MANY_ROWS"
)

// ErrStructural matches every StructuralError with errors.Is.
var ErrStructural = errors.New("structural input error")

// StructuralError aborts a whole conversion. Per-cell problems never produce one.
type StructuralError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Missing []string `json:"missing,omitempty"`
	Found   []string `json:"found,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *StructuralError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrStructural) succeed.
func (e *StructuralError) Is(target error) bool {
	return target == ErrStructural
}

// Unwrap returns the underlying decode error, if any.
func (e *StructuralError) Unwrap() error {
	return e.cause
}

// AsStructural extracts a StructuralError from err.
func AsStructural(err error) (*StructuralError, bool) {
	var se *StructuralError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// UnsupportedFormat reports a file whose extension is not accepted.
func UnsupportedFormat(filename string, accepted ...string) *StructuralError {
	return &StructuralError{
		Code:    ErrCodeUnsupportedFormat,
		Message: fmt.Sprintf("unsupported file format %q, use %s", filename, strings.Join(accepted, " or ")),
	}
}

// Unreadable wraps a decode failure.
func Unreadable(err error) *StructuralError {
	return &StructuralError{
		Code:    ErrCodeUnreadableInput,
		Message: fmt.Sprintf("failed to read spreadsheet: %v", err),
		cause:   err,
	}
}

// EmptyInput reports a file without a header row.
func EmptyInput() *StructuralError {
	return &StructuralError{
		Code:    ErrCodeEmptyInput,
		Message: "spreadsheet is empty",
	}
}

// MissingColumns reports required columns that are absent, listing the ones found.
func MissingColumns(sheet string, missing, found []string) *StructuralError {
	where := ""
	if sheet != "" {
		where = fmt.Sprintf(" in sheet '%s'", sheet)
	}
	return &StructuralError{
		Code: ErrCodeMissingColumn,
		Message: fmt.Sprintf("required column(s) %s not found%s; available columns: %s",
			quoteAll(missing), where, strings.Join(found, ", ")),
		Missing: append([]string(nil), missing...),
		Found:   append([]string(nil), found...),
	}
}

// NoOutput reports a conversion that produced nothing to return.
func NoOutput(message string) *StructuralError {
	return &StructuralError{
		Code:    ErrCodeNoOutput,
		Message: message,
	}
}

// TooManyRows reports an upload above the configured row ceiling.
func TooManyRows(rows, limit int) *StructuralError {
	return &StructuralError{
		Code:    ErrCodeTooManyRows,
		Message: fmt.Sprintf("spreadsheet has %d rows, the limit is %d", rows, limit),
	}
}

func quoteAll(cols []string) string {
	q := make([]string, len(cols))
	for i, c := range cols {
		q[i] = "'" + c + "'"
	}
	return strings.Join(q, ", ")
}
