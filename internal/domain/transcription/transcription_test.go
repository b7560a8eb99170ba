package transcription

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	call := Call{ID: "7", Attendant: "Ana"}

	long := Classify(call, strings.Repeat("a", 100), 100)
	assert.Equal(t, KindLong, long.Kind)
	assert.Empty(t, long.Status)

	short := Classify(call, "Ana: Alô\nCliente: Oi", 100)
	assert.Equal(t, KindShort, short.Kind)
	assert.Equal(t, "CURTA: Ana: Alô Cliente: Oi...", short.Status)
}

func TestPreview_Truncates(t *testing.T) {
	p := Preview(strings.Repeat("é", 200))
	assert.Equal(t, 123, len([]rune(p)))
	assert.True(t, strings.HasSuffix(p, "..."))
}

func TestNewReport(t *testing.T) {
	outcomes := []Outcome{
		{Call: Call{ID: "1"}, Kind: KindLong},
		Failed(Call{ID: "2"}, StatusTooShort),
		{Call: Call{ID: "3"}, Kind: KindShort},
		{Call: Call{ID: "4"}, Kind: KindLong},
	}
	r := NewReport(outcomes)
	assert.Len(t, r.Long, 2)
	assert.Equal(t, "1", r.Long[0].Call.ID)
	assert.Equal(t, "4", r.Long[1].Call.ID)
	assert.Len(t, r.Summary, 2)
	assert.False(t, r.Empty())
	assert.True(t, Report{}.Empty())
}
