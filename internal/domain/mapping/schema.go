package mapping

import (
	"regexp"
	"strconv"
	"strings"
)

// SourceKind identifies where a target column gets its value.
type SourceKind int

const (
	// FromColumn copies a source column, falling back to Default when absent.
	FromColumn SourceKind = iota
	// FromLiteral always yields Default.
	FromLiteral
	// FromParam reads a request-scoped parameter.
	FromParam
	// FromTransform applies a registered transform to source columns.
	FromTransform
	// FromPattern applies a transform to every source column matching Pattern
	// and joins the non-empty results with Separator.
	FromPattern
	// FromPosition copies the source column at a fixed header position.
	FromPosition
	// FromTargets applies a transform to target columns mapped earlier in the same schema.
	FromTargets
)

// SlotPlaceholder is replaced by the partner index when a schema is bound to a slot.
const SlotPlaceholder = "{i}"

// Source describes how one target column is populated.
type Source struct {
	Kind      SourceKind
	Columns   []string
	Default   string
	Param     string
	Transform string
	Pattern   *regexp.Regexp
	Separator string
	Position  int
	// CopyFill carries the source cell's background color to the target cell.
	CopyFill bool
}

// Column maps a source column; absent columns yield "".
func Column(name string) Source {
	return Source{Kind: FromColumn, Columns: []string{name}}
}

// Literal is a constant value.
func Literal(value string) Source {
	return Source{Kind: FromLiteral, Default: value}
}

// Empty is a column that is always blank.
func Empty() Source {
	return Literal("")
}

// Param reads a request parameter such as the responsible user.
func Param(name string) Source {
	return Source{Kind: FromParam, Param: name}
}

// Derived applies a registered transform to the given source columns.
func Derived(transform string, columns ...string) Source {
	return Source{Kind: FromTransform, Transform: transform, Columns: columns}
}

// Joined applies transform to every source column whose name matches pattern,
// in header order, and joins the non-empty results.
func Joined(pattern, transform, separator string) Source {
	return Source{
		Kind:      FromPattern,
		Pattern:   regexp.MustCompile(pattern),
		Transform: transform,
		Separator: separator,
	}
}

// Positional copies the source column at header index pos (0-based).
func Positional(pos int) Source {
	return Source{Kind: FromPosition, Position: pos}
}

// FromOutput applies transform to target columns already mapped in this schema.
func FromOutput(transform string, targets ...string) Source {
	return Source{Kind: FromTargets, Transform: transform, Columns: targets}
}

// WithFill returns a copy of s that carries the source cell fill color.
func (s Source) WithFill() Source {
	s.CopyFill = true
	return s
}

// Field binds a target column to its source.
type Field struct {
	Target string
	Source Source
}

// Schema is an ordered target-column declaration.
type Schema struct {
	Name   string
	Fields []Field
	// Labels overrides the secondary header row for selected targets.
	// When nil, no secondary header row is produced.
	Labels map[string]string
}

// Columns returns the target columns in declared order.
func (s Schema) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Target
	}
	return cols
}

// LabelRow returns the secondary header row, or nil when the schema has none.
func (s Schema) LabelRow() []string {
	if s.Labels == nil {
		return nil
	}
	row := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		if l, ok := s.Labels[f.Target]; ok {
			row[i] = l
		} else {
			row[i] = f.Target
		}
	}
	return row
}

// Bind returns a copy of the schema with every SlotPlaceholder in source
// column names, target names and the schema name replaced by slot.
func (s Schema) Bind(slot int) Schema {
	n := strconv.Itoa(slot)
	bound := Schema{
		Name:   strings.ReplaceAll(s.Name, SlotPlaceholder, n),
		Fields: make([]Field, len(s.Fields)),
		Labels: s.Labels,
	}
	for i, f := range s.Fields {
		src := f.Source
		if len(src.Columns) > 0 {
			cols := make([]string, len(src.Columns))
			for j, c := range src.Columns {
				cols[j] = strings.ReplaceAll(c, SlotPlaceholder, n)
			}
			src.Columns = cols
		}
		bound.Fields[i] = Field{
			Target: strings.ReplaceAll(f.Target, SlotPlaceholder, n),
			Source: src,
		}
	}
	return bound
}

// Params are request-scoped values referenced by Param sources.
type Params map[string]string

// Well-known parameter names.
const (
	ParamUser   = "user"
	ParamFunnel = "funnel"
	ParamToday  = "today"
)
