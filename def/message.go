package def

// baseSelectorCount is the number of selectors every message table reserves
// for itself before any field selectors: startmsg and endmsg.
const baseSelectorCount = 2

// StartMsgSelector and EndMsgSelector are fixed at the start of every
// message's selector table.
const (
	StartMsgSelector = 0
	EndMsgSelector   = 1
)

// MessageDescriptor is an immutable message description, produced by
// Builder.Freeze.
type MessageDescriptor struct {
	Name   string
	Fields []*FieldDescriptor // declaration order

	byNumber map[int32]*FieldDescriptor
	byName   map[string]*FieldDescriptor

	// SelectorCount is the total number of handler slots this message's
	// table must reserve (2 fixed + each field's Shape().SelectorCount()).
	SelectorCount int

	frozen bool
}

// FieldByNumber looks up a field by wire field number. Returns nil if the
// message has no such field (the caller should treat the bytes as unknown
// and skip them, per spec §6 unknown-field handling).
func (m *MessageDescriptor) FieldByNumber(n int32) *FieldDescriptor {
	return m.byNumber[n]
}

// FieldByName looks up a field by declared name.
func (m *MessageDescriptor) FieldByName(name string) *FieldDescriptor {
	return m.byName[name]
}

// Frozen reports whether this descriptor has completed Builder.Freeze.
func (m *MessageDescriptor) Frozen() bool {
	return m.frozen
}
