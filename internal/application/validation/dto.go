package validation

import "strings"

// ValidateRequest is the body of the WhatsApp validator. Number takes
// precedence over Numbers.
type ValidateRequest struct {
	Number  string   `json:"number"`
	Numbers []string `json:"numbers" binding:"omitempty,max=1000"`
}

// IsBatch reports whether the request should be answered with a list.
func (r ValidateRequest) IsBatch() bool {
	return strings.TrimSpace(r.Number) == "" && len(r.Numbers) > 0
}

// IsEmpty reports whether the request names no number at all.
func (r ValidateRequest) IsEmpty() bool {
	return strings.TrimSpace(r.Number) == "" && len(r.Numbers) == 0
}
