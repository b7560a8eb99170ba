package dataset

import "strings"

// Record is one row of a Dataset. A column that was never set is absent,
// which is different from a column holding the empty string.
type Record struct {
	values map[string]string
	fills  map[string]string
}

// NewRecord creates a record from a column→value map. The map is copied.
func NewRecord(values map[string]string) *Record {
	r := &Record{values: make(map[string]string, len(values))}
	for k, v := range values {
		r.values[k] = v
	}
	return r
}

// Lookup returns the value of col and whether the column is present in the record.
func (r *Record) Lookup(col string) (string, bool) {
	if r == nil {
		return "", false
	}
	v, ok := r.values[col]
	return v, ok
}

// Get returns the value of col, or "" when the column is absent.
func (r *Record) Get(col string) string {
	v, _ := r.Lookup(col)
	return v
}

// Has reports whether col is present, regardless of its value.
func (r *Record) Has(col string) bool {
	_, ok := r.Lookup(col)
	return ok
}

// IsBlank reports whether col is absent or holds only whitespace.
func (r *Record) IsBlank(col string) bool {
	return strings.TrimSpace(r.Get(col)) == ""
}

// Set stores a value for col.
func (r *Record) Set(col, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	r.values[col] = value
}

// Fill returns the solid background color (ARGB hex) recorded for col, if any.
func (r *Record) Fill(col string) string {
	if r == nil || r.fills == nil {
		return ""
	}
	return r.fills[col]
}

// SetFill records a solid background color for col. Empty colors are ignored.
func (r *Record) SetFill(col, argb string) {
	if argb == "" {
		return
	}
	if r.fills == nil {
		r.fills = make(map[string]string)
	}
	r.fills[col] = argb
}

// Values returns the record's values in the given column order.
// Absent columns yield "".
func (r *Record) Values(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = r.Get(c)
	}
	return out
}
