// Package normalize holds the field normalizers applied to raw spreadsheet cells.
//
// Every normalizer is total: malformed or missing input yields the
// normalizer's empty sentinel (usually ""), never an error or a panic.
package normalize
