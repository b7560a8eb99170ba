// Package validation holds the WhatsApp number validation types shared by the
// use case and the service adapters.
package validation

import (
	"context"
	"strings"
)

// Status is the validation verdict for one number.
type Status string

const (
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
	StatusUnknown Status = "unknown"
)

// ParseStatus maps a provider status to a Status. Anything other than
// valid or invalid is unknown.
func ParseStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(StatusValid):
		return StatusValid
	case string(StatusInvalid):
		return StatusInvalid
	default:
		return StatusUnknown
	}
}

// Result is the outcome of validating one number. Transport failures are
// reported as StatusUnknown with the error text in SubStatus.
type Result struct {
	Number    string `json:"number"`
	Status    Status `json:"status"`
	SubStatus string `json:"sub_status"`
}

// Unknown builds the result of a failed check.
func Unknown(number string, err error) Result {
	r := Result{Number: number, Status: StatusUnknown}
	if err != nil {
		r.SubStatus = err.Error()
	}
	return r
}

// Checker validates one number against the messaging service.
type Checker interface {
	Check(ctx context.Context, number string) Result
}
