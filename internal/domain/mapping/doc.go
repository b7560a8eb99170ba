// Package mapping implements declarative spreadsheet-to-spreadsheet column mapping.
//
// A Schema is an ordered list of target columns, each bound to a Source:
// a source column, a literal, a request parameter, a named transform over
// source columns, or a transform over earlier targets. The Mapper applies a
// Schema to a dataset.Dataset and always emits every target column in
// declared order, falling back to the source's default when a source column
// is absent from the row. The Expander fans one source row out into up to
// MaxPartners per-slot tables, using "{i}" placeholders in column names.
package mapping
