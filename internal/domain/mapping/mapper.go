package mapping

import (
	"fmt"
	"strings"

	"github.com/dibaisales/central/internal/domain/dataset"
)

// Mapper applies schemas to datasets. It holds no per-call state and is safe
// for concurrent use once constructed.
type Mapper struct {
	registry *TransformRegistry
}

// NewMapper creates a mapper backed by registry.
func NewMapper(registry *TransformRegistry) *Mapper {
	if registry == nil {
		registry = NewTransformRegistry()
	}
	return &Mapper{registry: registry}
}

// Registry returns the mapper's transform registry.
func (m *Mapper) Registry() *TransformRegistry {
	return m.registry
}

// Map produces one output record per source record, with every schema
// column populated in declared order.
func (m *Mapper) Map(schema Schema, src *dataset.Dataset, params Params) (*dataset.Dataset, error) {
	if err := m.registry.Validate(schema); err != nil {
		return nil, err
	}

	out := dataset.New(schema.Columns()...)
	out.Labels = schema.LabelRow()
	if src == nil {
		return out, nil
	}
	out.Sheet = src.Sheet

	for _, rec := range src.Records {
		out.Append(m.mapRecord(schema, src.Columns, rec, params))
	}
	return out, nil
}

// MapRecord maps a single record. columns is the source header, used by
// pattern and positional sources.
func (m *Mapper) MapRecord(schema Schema, columns []string, rec *dataset.Record, params Params) (*dataset.Record, error) {
	if err := m.registry.Validate(schema); err != nil {
		return nil, err
	}
	return m.mapRecord(schema, columns, rec, params), nil
}

func (m *Mapper) mapRecord(schema Schema, columns []string, rec *dataset.Record, params Params) *dataset.Record {
	out := dataset.NewRecord(nil)
	for _, f := range schema.Fields {
		out.Set(f.Target, m.resolve(f.Source, columns, rec, out, params))
		if f.Source.CopyFill && len(f.Source.Columns) > 0 {
			out.SetFill(f.Target, rec.Fill(f.Source.Columns[0]))
		}
	}
	return out
}

func (m *Mapper) resolve(s Source, columns []string, rec, mapped *dataset.Record, params Params) string {
	switch s.Kind {
	case FromColumn:
		if v, ok := rec.Lookup(s.Columns[0]); ok {
			return v
		}
		return s.Default

	case FromLiteral:
		return s.Default

	case FromParam:
		return params[s.Param]

	case FromTransform:
		return m.apply(s.Transform, lookupAll(rec, s.Columns))

	case FromTargets:
		return m.apply(s.Transform, lookupAll(mapped, s.Columns))

	case FromPattern:
		var parts []string
		for _, c := range columns {
			if !s.Pattern.MatchString(c) {
				continue
			}
			if v := strings.TrimSpace(m.apply(s.Transform, []string{rec.Get(c)})); v != "" {
				parts = append(parts, v)
			}
		}
		return strings.Join(parts, s.Separator)

	case FromPosition:
		if s.Position < 0 || s.Position >= len(columns) {
			return s.Default
		}
		if v, ok := rec.Lookup(columns[s.Position]); ok {
			return v
		}
		return s.Default

	default:
		panic(fmt.Sprintf("mapping: unknown source kind %d", s.Kind))
	}
}

func (m *Mapper) apply(name string, values []string) string {
	fn, _ := m.registry.Get(name)
	return fn(values...)
}

func lookupAll(rec *dataset.Record, cols []string) []string {
	values := make([]string, len(cols))
	for i, c := range cols {
		values[i] = rec.Get(c)
	}
	return values
}
