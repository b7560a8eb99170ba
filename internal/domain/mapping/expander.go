package mapping

import (
	"fmt"
	"strings"

	"github.com/dibaisales/central/internal/domain/dataset"
)

// MaxPartners is the number of partner slots a company row can carry.
const MaxPartners = 3

// PartnerNameColumn is the per-slot column whose presence gates a partner record.
const PartnerNameColumn = "SOCIO{i}Nome"

// Slot is the output of one partner index.
type Slot struct {
	Index int
	Data  *dataset.Dataset
}

// Expander fans each source row out into per-slot secondary records.
type Expander struct {
	mapper     *Mapper
	slots      int
	nameColumn string
}

// ExpanderOption configures an Expander.
type ExpanderOption func(*Expander)

// WithSlots sets the maximum fan-out.
func WithSlots(n int) ExpanderOption {
	return func(e *Expander) {
		e.slots = n
	}
}

// WithNameColumn sets the slot template of the gating name column.
func WithNameColumn(template string) ExpanderOption {
	return func(e *Expander) {
		e.nameColumn = template
	}
}

// NewExpander creates an expander over MaxPartners slots gated by PartnerNameColumn.
func NewExpander(mapper *Mapper, opts ...ExpanderOption) *Expander {
	e := &Expander{
		mapper:     mapper,
		slots:      MaxPartners,
		nameColumn: PartnerNameColumn,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand maps, for each slot i in 1..slots, the source rows whose slot name
// column is present and non-blank, using schema bound to i. A slot whose name
// column is absent, or blank in every row, yields no Slot at all. Rows with a
// blank name are suppressed entirely, even if other slot fields hold values.
func (e *Expander) Expand(schema Schema, src *dataset.Dataset, params Params) ([]Slot, error) {
	var slots []Slot
	for i := 1; i <= e.slots; i++ {
		nameCol := strings.ReplaceAll(e.nameColumn, SlotPlaceholder, fmt.Sprint(i))
		if !src.HasColumn(nameCol) {
			continue
		}
		named := src.Filter(func(r *dataset.Record) bool {
			return !r.IsBlank(nameCol)
		})
		if named.Len() == 0 {
			continue
		}
		out, err := e.mapper.Map(schema.Bind(i), named, params)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		slots = append(slots, Slot{Index: i, Data: out})
	}
	return slots, nil
}
