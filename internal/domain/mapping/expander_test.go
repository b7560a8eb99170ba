package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dibaisales/central/internal/domain/dataset"
)

func TestExpander_Expand(t *testing.T) {
	src := dataset.FromRows(
		[]string{"Nome do Lead", "SOCIO1Nome", "SOCIO1CPF", "SOCIO3Nome"},
		[][]string{
			{"Acme", "Jane", "111", ""},
			{"Beta", "", "222", ""},
			{"Gamma", "   ", "333", " "},
			{"Delta", "John", "", ""},
			{"Eps", "", "", ""},
		},
	)

	slots, err := NewExpander(newTestMapper()).Expand(PersonSchema, src, Params{ParamUser: "ana"})
	require.NoError(t, err)

	require.Len(t, slots, 1, "slot 2 is absent and slot 3 has only blank names")
	assert.Equal(t, 1, slots[0].Index)
	assert.Equal(t, PersonSchema.Columns(), slots[0].Data.Columns)
	assert.Equal(t, []string{"Jane", "John"}, slots[0].Data.Column("Nome"))
	assert.Equal(t, []string{"111", ""}, slots[0].Data.Column("CPF"))
	assert.Equal(t, []string{"Acme", "Delta"}, slots[0].Data.Column("Empresa"))
	assert.Equal(t, []string{"", ""}, slots[0].Data.Column("Cargo"), "absent slot column falls back to empty")
	assert.Equal(t, []string{"ana", "ana"}, slots[0].Data.Column("Usuário responsável"))
}

func TestExpander_BlankNameSuppressesWholeRecord(t *testing.T) {
	src := dataset.FromRows(
		[]string{"SOCIO1Nome", "SOCIO1Celular1"},
		[][]string{{"", "11999990000"}},
	)

	slots, err := NewExpander(newTestMapper()).Expand(PersonSchema, src, nil)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestExpander_Options(t *testing.T) {
	src := dataset.FromRows(
		[]string{"P1", "P2"},
		[][]string{{"a", "b"}},
	)
	schema := Schema{Name: "p{i}", Fields: []Field{{"name", Column("P{i}")}}}

	slots, err := NewExpander(newTestMapper(), WithSlots(1), WithNameColumn("P{i}")).Expand(schema, src, nil)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, 1, slots[0].Index)
	assert.Equal(t, []string{"a"}, slots[0].Data.Column("name"))
}
