package dataset

import "strings"

// Dataset is an ordered sequence of records sharing a declared column order.
// Records are not guaranteed to carry every column; readers must use Lookup.
type Dataset struct {
	// Columns is the header row in file order.
	Columns []string
	// Labels is an optional second header row, aligned with Columns.
	Labels []string
	// Sheet is the worksheet the dataset was read from, if any.
	Sheet   string
	Records []*Record

	index map[string]int
}

// New creates an empty dataset with the given header.
func New(columns ...string) *Dataset {
	d := &Dataset{Columns: append([]string(nil), columns...)}
	d.reindex()
	return d
}

// FromRows builds a dataset from a header and positional rows. Short rows
// are padded with empty strings so every header column is present.
func FromRows(header []string, rows [][]string) *Dataset {
	d := New(header...)
	for _, row := range rows {
		d.AppendValues(row...)
	}
	return d
}

func (d *Dataset) reindex() {
	d.index = make(map[string]int, len(d.Columns))
	for i, c := range d.Columns {
		if _, dup := d.index[c]; !dup {
			d.index[c] = i
		}
	}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// HasColumn reports whether col is part of the header.
func (d *Dataset) HasColumn(col string) bool {
	if d.index == nil {
		d.reindex()
	}
	_, ok := d.index[col]
	return ok
}

// ColumnAt returns the header name at position i, or "" when out of range.
func (d *Dataset) ColumnAt(i int) string {
	if i < 0 || i >= len(d.Columns) {
		return ""
	}
	return d.Columns[i]
}

// Append adds a record.
func (d *Dataset) Append(r *Record) {
	d.Records = append(d.Records, r)
}

// AppendValues adds a record from positional values aligned with Columns.
func (d *Dataset) AppendValues(values ...string) *Record {
	r := &Record{values: make(map[string]string, len(d.Columns))}
	for i, c := range d.Columns {
		if i < len(values) {
			r.values[c] = values[i]
		} else {
			r.values[c] = ""
		}
	}
	d.Records = append(d.Records, r)
	return r
}

// Filter returns a dataset with the same header holding only the records
// for which keep returns true. Records are shared, not copied.
func (d *Dataset) Filter(keep func(*Record) bool) *Dataset {
	out := New(d.Columns...)
	out.Labels = d.Labels
	out.Sheet = d.Sheet
	for _, r := range d.Records {
		if keep(r) {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

// Rows returns the record values in header order, one slice per record.
func (d *Dataset) Rows() [][]string {
	rows := make([][]string, len(d.Records))
	for i, r := range d.Records {
		rows[i] = r.Values(d.Columns)
	}
	return rows
}

// Column returns every value of col in record order.
func (d *Dataset) Column(col string) []string {
	out := make([]string, len(d.Records))
	for i, r := range d.Records {
		out[i] = r.Get(col)
	}
	return out
}

// Require returns a StructuralError naming every column in cols that is
// missing from the header.
func (d *Dataset) Require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !d.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return MissingColumns(d.Sheet, missing, d.Columns)
}

// NormalizeHeaders rewrites every header with fn (e.g. trimming or upper-casing)
// and rekeys the records accordingly.
func (d *Dataset) NormalizeHeaders(fn func(string) string) {
	renamed := make(map[string]string, len(d.Columns))
	for i, c := range d.Columns {
		n := fn(c)
		renamed[c] = n
		d.Columns[i] = n
	}
	for _, r := range d.Records {
		values := make(map[string]string, len(r.values))
		for k, v := range r.values {
			if n, ok := renamed[k]; ok {
				k = n
			}
			values[k] = v
		}
		r.values = values
		if r.fills != nil {
			fills := make(map[string]string, len(r.fills))
			for k, v := range r.fills {
				if n, ok := renamed[k]; ok {
					k = n
				}
				fills[k] = v
			}
			r.fills = fills
		}
	}
	d.reindex()
}

// TrimHeaders strips surrounding whitespace from every header.
func (d *Dataset) TrimHeaders() {
	d.NormalizeHeaders(strings.TrimSpace)
}

// Table is a named output dataset, e.g. "Empresas.xlsx".
type Table struct {
	Name string
	Data *Dataset
}

// Bundle is an ordered set of named output tables.
type Bundle []Table

// Get returns the table with the given name.
func (b Bundle) Get(name string) (*Dataset, bool) {
	for _, t := range b {
		if t.Name == name {
			return t.Data, true
		}
	}
	return nil, false
}

// Names returns table names in bundle order.
func (b Bundle) Names() []string {
	names := make([]string, len(b))
	for i, t := range b {
		names[i] = t.Name
	}
	return names
}
