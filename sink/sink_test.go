package sink

import (
	"testing"

	"github.com/dstream-io/pbflow/def"
	"github.com/dstream-io/pbflow/handlers"
	"github.com/dstream-io/pbflow/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trace is the test closure: it records every handler invocation so tests
// can assert dispatch order without a real message type.
type trace struct {
	events []string
}

func TestSinkPutValueDispatchesToHandler(t *testing.T) {
	b := def.NewBuilder()
	mb, _ := b.NewMessage("M")
	count, _ := mb.AddField(def.FieldSpec{Number: 1, Name: "count", Type: def.Int32})
	msgs, err := b.Freeze()
	require.NoError(t, err)
	m := msgs["M"]

	table := handlers.NewTable(m)
	tr := &trace{}
	table.SetValue(count, func(c handlers.Closure, v interface{}) status.Code {
		c.(*trace).events = append(c.(*trace).events, "value")
		assert.Equal(t, int32(7), v)
		return status.OK
	})

	s := New()
	s.Reset(table, tr)
	code := s.PutValue(count.ValueSelector(), int32(7))
	assert.Equal(t, status.OK, code)
	assert.Equal(t, []string{"value"}, tr.events)
}

func TestSinkUnregisteredHandlerIsNoop(t *testing.T) {
	b := def.NewBuilder()
	mb, _ := b.NewMessage("M")
	count, _ := mb.AddField(def.FieldSpec{Number: 1, Name: "count", Type: def.Int32})
	msgs, err := b.Freeze()
	require.NoError(t, err)
	m := msgs["M"]

	table := handlers.NewTable(m)
	s := New()
	s.Reset(table, &trace{})
	code := s.PutValue(count.ValueSelector(), int32(1))
	assert.Equal(t, status.OK, code)
}

func TestSinkSequenceScope(t *testing.T) {
	b := def.NewBuilder()
	mb, _ := b.NewMessage("M")
	tags, _ := mb.AddField(def.FieldSpec{Number: 1, Name: "tags", Label: def.Repeated, Type: def.Uint32})
	msgs, err := b.Freeze()
	require.NoError(t, err)
	m := msgs["M"]

	table := handlers.NewTable(m)
	table.SetStartSequence(tags, func(c handlers.Closure) (handlers.Closure, status.Code) {
		c.(*trace).events = append(c.(*trace).events, "startseq")
		return c, status.OK
	})
	table.SetValue(tags, func(c handlers.Closure, v interface{}) status.Code {
		c.(*trace).events = append(c.(*trace).events, "value")
		return status.OK
	})
	table.SetEndSequence(tags, func(c handlers.Closure) status.Code {
		c.(*trace).events = append(c.(*trace).events, "endseq")
		return status.OK
	})

	tr := &trace{}
	s := New()
	s.Reset(table, tr)
	require.Equal(t, status.OK, s.StartSequence(tags.StartSeqSelector()))
	require.Equal(t, status.OK, s.PutValue(tags.ValueSelector(), uint32(1)))
	require.Equal(t, status.OK, s.PutValue(tags.ValueSelector(), uint32(2)))
	require.Equal(t, status.OK, s.EndSequence(tags.EndSeqSelector()))
	assert.Equal(t, 1, s.Depth())
	assert.Equal(t, []string{"startseq", "value", "value", "endseq"}, tr.events)
}

func TestSinkStringScope(t *testing.T) {
	b := def.NewBuilder()
	mb, _ := b.NewMessage("M")
	name, _ := mb.AddField(def.FieldSpec{Number: 1, Name: "name", Type: def.String})
	msgs, err := b.Freeze()
	require.NoError(t, err)
	m := msgs["M"]

	table := handlers.NewTable(m)
	var got []byte
	table.SetStartString(name, func(c handlers.Closure, sizeHint uint64) (handlers.Closure, status.Code) {
		assert.Equal(t, uint64(5), sizeHint)
		return c, status.OK
	})
	table.SetStringChunk(name, func(c handlers.Closure, chunk []byte) status.Code {
		got = append(got, chunk...)
		return status.OK
	})
	table.SetEndString(name, func(c handlers.Closure) status.Code {
		return status.OK
	})

	s := New()
	s.Reset(table, &trace{})
	require.Equal(t, status.OK, s.StartString(name.StartStrSelector(), 5))
	require.Equal(t, status.OK, s.PutStringBuffer(name.StringChunkSelector(), []byte("hel")))
	require.Equal(t, status.OK, s.PutStringBuffer(name.StringChunkSelector(), []byte("lo")))
	require.Equal(t, status.OK, s.EndString(name.EndStrSelector()))
	assert.Equal(t, "hello", string(got))
	assert.Equal(t, 1, s.Depth())
}

func TestSinkSubMessageScope(t *testing.T) {
	b := def.NewBuilder()
	outer, _ := b.NewMessage("Outer")
	inner, _ := b.NewMessage("Inner")
	child, err := outer.AddField(def.FieldSpec{Number: 1, Name: "child", Type: def.Message, MessageType: "Inner"})
	require.NoError(t, err)
	value, err := inner.AddField(def.FieldSpec{Number: 1, Name: "value", Type: def.Int32})
	require.NoError(t, err)

	msgs, err := b.Freeze()
	require.NoError(t, err)

	innerTable := handlers.NewTable(msgs["Inner"])
	tr := &trace{}
	innerTable.SetStartMessage(func(c handlers.Closure) (handlers.Closure, status.Code) {
		c.(*trace).events = append(c.(*trace).events, "child-start")
		return c, status.OK
	})
	innerTable.SetValue(value, func(c handlers.Closure, v interface{}) status.Code {
		c.(*trace).events = append(c.(*trace).events, "child-value")
		return status.OK
	})
	innerTable.SetEndMessage(func(c handlers.Closure) status.Code {
		c.(*trace).events = append(c.(*trace).events, "child-end")
		return status.OK
	})

	outerTable := handlers.NewTable(msgs["Outer"])
	outerTable.SetStartSubMessage(child, func(c handlers.Closure) (handlers.Closure, status.Code) {
		c.(*trace).events = append(c.(*trace).events, "field-start")
		return c, status.OK
	})
	outerTable.SetSubHandlers(child, innerTable)
	outerTable.SetEndSubMessage(child, func(c handlers.Closure) status.Code {
		c.(*trace).events = append(c.(*trace).events, "field-end")
		return status.OK
	})

	s := New()
	s.Reset(outerTable, tr)
	require.Equal(t, status.OK, s.StartMessage())
	require.Equal(t, status.OK, s.StartSubMessage(child.StartSubMsgSelector(), innerTable))
	require.Equal(t, status.OK, s.PutValue(value.ValueSelector(), int32(42)))
	require.Equal(t, status.OK, s.EndSubMessage(child.StartSubMsgSelector()))
	require.Equal(t, status.OK, s.EndMessage())

	assert.Equal(t, []string{"field-start", "child-start", "child-value", "child-end", "field-end"}, tr.events)
	assert.Equal(t, 1, s.Depth())
}

func TestSinkLatchesFirstFailure(t *testing.T) {
	b := def.NewBuilder()
	mb, _ := b.NewMessage("M")
	count, _ := mb.AddField(def.FieldSpec{Number: 1, Name: "count", Type: def.Int32})
	msgs, err := b.Freeze()
	require.NoError(t, err)
	m := msgs["M"]

	table := handlers.NewTable(m)
	calls := 0
	table.SetValue(count, func(c handlers.Closure, v interface{}) status.Code {
		calls++
		return status.HandlerError
	})

	s := New()
	s.Reset(table, &trace{})
	code := s.PutValue(count.ValueSelector(), int32(1))
	assert.Equal(t, status.HandlerError, code)
	require.NotNil(t, s.Err())

	// Second call short-circuits without invoking the handler again.
	code = s.PutValue(count.ValueSelector(), int32(2))
	assert.Equal(t, status.HandlerError, code)
	assert.Equal(t, 1, calls)
}
