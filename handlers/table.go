package handlers

import (
	"fmt"

	"github.com/dstream-io/pbflow/def"
)

// Table is a message type's complete set of handler slots, sized to
// msg.SelectorCount and indexed by the selectors def.Freeze assigned. Slots
// left unset are simply skipped by the sink: an unregistered handler is not
// an error, per spec §4.4.
type Table struct {
	msg  *def.MessageDescriptor
	fns  []interface{} // one of the Func types in funcs.go, or nil
	subs []*Table       // sub-message handler table, indexed by the field's StartSubMsgSelector, or nil
}

// NewTable allocates an empty handler table sized for msg. msg must already
// be frozen.
func NewTable(msg *def.MessageDescriptor) *Table {
	if !msg.Frozen() {
		panic("handlers: NewTable on an unfrozen message descriptor")
	}
	return &Table{
		msg:  msg,
		fns:  make([]interface{}, msg.SelectorCount),
		subs: make([]*Table, msg.SelectorCount),
	}
}

// Message returns the descriptor this table was built for.
func (t *Table) Message() *def.MessageDescriptor {
	return t.msg
}

func (t *Table) set(selector int, kind Kind, fn interface{}) {
	if selector < 0 {
		panic(fmt.Sprintf("handlers: field does not support a %s handler", kind))
	}
	t.fns[selector] = fn
}

// SetStartMessage registers the message-level start handler (selector 0).
func (t *Table) SetStartMessage(fn StartMessageFunc) { t.fns[def.StartMsgSelector] = fn }

// SetEndMessage registers the message-level end handler (selector 1).
func (t *Table) SetEndMessage(fn EndMessageFunc) { t.fns[def.EndMsgSelector] = fn }

// SetValue registers fd's scalar-value handler.
func (t *Table) SetValue(fd *def.FieldDescriptor, fn ValueFunc) {
	t.set(fd.ValueSelector(), KindValue, fn)
}

// SetStartSequence registers fd's repeated-field start handler.
func (t *Table) SetStartSequence(fd *def.FieldDescriptor, fn StartSequenceFunc) {
	t.set(fd.StartSeqSelector(), KindStartSequence, fn)
}

// SetEndSequence registers fd's repeated-field end handler.
func (t *Table) SetEndSequence(fd *def.FieldDescriptor, fn EndSequenceFunc) {
	t.set(fd.EndSeqSelector(), KindEndSequence, fn)
}

// SetStartString registers fd's string/bytes start handler.
func (t *Table) SetStartString(fd *def.FieldDescriptor, fn StartStringFunc) {
	t.set(fd.StartStrSelector(), KindStartString, fn)
}

// SetStringChunk registers fd's string/bytes chunk handler.
func (t *Table) SetStringChunk(fd *def.FieldDescriptor, fn StringChunkFunc) {
	t.set(fd.StringChunkSelector(), KindStringChunk, fn)
}

// SetEndString registers fd's string/bytes end handler.
func (t *Table) SetEndString(fd *def.FieldDescriptor, fn EndStringFunc) {
	t.set(fd.EndStrSelector(), KindEndString, fn)
}

// SetStartSubMessage registers fd's sub-message/group start handler.
func (t *Table) SetStartSubMessage(fd *def.FieldDescriptor, fn StartSubMessageFunc) {
	t.set(fd.StartSubMsgSelector(), KindStartSubMessage, fn)
}

// SetEndSubMessage registers fd's sub-message/group end handler.
func (t *Table) SetEndSubMessage(fd *def.FieldDescriptor, fn EndSubMessageFunc) {
	t.set(fd.EndSubMsgSelector(), KindEndSubMessage, fn)
}

// SetSubHandlers attaches the handler table the decoder switches to while
// inside fd's sub-message or group body. Required for every message-typed
// field the decoder is expected to recurse into; a sub-message field left
// without one has its bytes skipped as if unknown.
func (t *Table) SetSubHandlers(fd *def.FieldDescriptor, sub *Table) {
	selector := fd.StartSubMsgSelector()
	if selector < 0 {
		panic("handlers: field is not a sub-message or group")
	}
	t.subs[selector] = sub
}

// Get returns the handler function registered at selector, or nil if none
// was set.
func (t *Table) Get(selector int) interface{} {
	if selector < 0 || selector >= len(t.fns) {
		return nil
	}
	return t.fns[selector]
}

// SubHandlers returns the handler table registered for the sub-message
// field whose StartSubMsgSelector is selector, or nil.
func (t *Table) SubHandlers(selector int) *Table {
	if selector < 0 || selector >= len(t.subs) {
		return nil
	}
	return t.subs[selector]
}
