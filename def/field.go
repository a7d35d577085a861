package def

// Shape classifies a field by the handler-selector layout spec §4.3
// reserves for it.
type Shape int

const (
	ShapePrimitiveScalar Shape = iota
	ShapePrimitiveRepeated
	ShapeStringScalar
	ShapeStringRepeated
	ShapeSubMessageScalar
	ShapeSubMessageRepeated
)

// SelectorCount is the number of contiguous handler slots a field of this
// shape reserves, per the spec §4.3 table.
func (s Shape) SelectorCount() int {
	switch s {
	case ShapePrimitiveScalar:
		return 1
	case ShapePrimitiveRepeated:
		return 3
	case ShapeStringScalar:
		return 3
	case ShapeStringRepeated:
		return 5
	case ShapeSubMessageScalar:
		return 2
	case ShapeSubMessageRepeated:
		return 4
	default:
		return 0
	}
}

// FieldDescriptor is an immutable field description, frozen as part of its
// owning MessageDescriptor.
type FieldDescriptor struct {
	Number        int32
	Name          string
	Label         Label
	Type          Type
	IntegerFormat IntegerFormat
	TagDelimited  bool // true for groups: matching END_GROUP tag, no length prefix
	Message       *MessageDescriptor
	Enum          *EnumDescriptor
	Default       interface{}

	// SelectorBase is the first selector index reserved for this field.
	// Assigned during Freeze; -1 until then.
	SelectorBase int
}

// Shape reports the handler-layout shape of the field.
func (f *FieldDescriptor) Shape() Shape {
	isSub := f.Type == Message || f.Type == Group
	isStringy := f.Type == String || f.Type == Bytes
	repeated := f.Label == Repeated
	switch {
	case isSub && repeated:
		return ShapeSubMessageRepeated
	case isSub:
		return ShapeSubMessageScalar
	case isStringy && repeated:
		return ShapeStringRepeated
	case isStringy:
		return ShapeStringScalar
	case repeated:
		return ShapePrimitiveRepeated
	default:
		return ShapePrimitiveScalar
	}
}

// Packable reports whether this field may appear packed on the wire (spec
// §3: a repeated primitive field may be packed or not).
func (f *FieldDescriptor) Packable() bool {
	return f.Label == Repeated && IsPackable(f.Type)
}

const noSelector = -1

// ValueSelector returns the selector for the "value" handler kind, or -1 if
// this field's shape does not reserve one.
func (f *FieldDescriptor) ValueSelector() int {
	switch f.Shape() {
	case ShapePrimitiveScalar:
		return f.SelectorBase
	case ShapePrimitiveRepeated:
		return f.SelectorBase + 2
	default:
		return noSelector
	}
}

// StartSeqSelector returns the selector for "startseq", or -1 if this
// field is not repeated.
func (f *FieldDescriptor) StartSeqSelector() int {
	if f.Label != Repeated {
		return noSelector
	}
	return f.SelectorBase
}

// EndSeqSelector returns the selector for "endseq", or -1 if this field is
// not repeated.
func (f *FieldDescriptor) EndSeqSelector() int {
	if f.Label != Repeated {
		return noSelector
	}
	return f.SelectorBase + 1
}

// StartStrSelector returns the selector for "startstr", or -1 if this
// field is not string/bytes.
func (f *FieldDescriptor) StartStrSelector() int {
	switch f.Shape() {
	case ShapeStringScalar:
		return f.SelectorBase
	case ShapeStringRepeated:
		return f.SelectorBase + 2
	default:
		return noSelector
	}
}

// StringChunkSelector returns the selector for "string-chunk", or -1 if
// this field is not string/bytes.
func (f *FieldDescriptor) StringChunkSelector() int {
	switch f.Shape() {
	case ShapeStringScalar:
		return f.SelectorBase + 1
	case ShapeStringRepeated:
		return f.SelectorBase + 3
	default:
		return noSelector
	}
}

// EndStrSelector returns the selector for "endstr", or -1 if this field is
// not string/bytes.
func (f *FieldDescriptor) EndStrSelector() int {
	switch f.Shape() {
	case ShapeStringScalar:
		return f.SelectorBase + 2
	case ShapeStringRepeated:
		return f.SelectorBase + 4
	default:
		return noSelector
	}
}

// StartSubMsgSelector returns the selector for "startsubmsg", or -1 if this
// field is not a sub-message/group.
func (f *FieldDescriptor) StartSubMsgSelector() int {
	switch f.Shape() {
	case ShapeSubMessageScalar:
		return f.SelectorBase
	case ShapeSubMessageRepeated:
		return f.SelectorBase + 2
	default:
		return noSelector
	}
}

// EndSubMsgSelector returns the selector for "endsubmsg", or -1 if this
// field is not a sub-message/group.
func (f *FieldDescriptor) EndSubMsgSelector() int {
	switch f.Shape() {
	case ShapeSubMessageScalar:
		return f.SelectorBase + 1
	case ShapeSubMessageRepeated:
		return f.SelectorBase + 3
	default:
		return noSelector
	}
}
