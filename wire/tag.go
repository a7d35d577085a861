package wire

// WireType is the 3-bit physical encoding selector carried in the low bits
// of every field tag.
type WireType uint8

const (
	Varint      WireType = 0
	Fixed64     WireType = 1
	Bytes       WireType = 2
	StartGroup  WireType = 3
	EndGroup    WireType = 4
	Fixed32     WireType = 5
)

// Valid reports whether wt is one of the six wire types defined by the
// protobuf wire format.
func (wt WireType) Valid() bool {
	return wt <= Fixed32
}

// Tag is a decoded field tag: (field_number << 3) | wire_type.
type Tag uint64

// MaxFieldNumber is 2^29 - 1, the largest field number the wire format can
// represent without the tag varint overflowing 32 bits of field number.
const MaxFieldNumber = 1<<29 - 1

// MakeTag packs a field number and wire type into a tag value.
func MakeTag(fieldNumber int32, wt WireType) Tag {
	return Tag(uint64(fieldNumber)<<3 | uint64(wt))
}

// FieldNumber extracts the field number from a decoded tag.
func (t Tag) FieldNumber() int32 { return int32(t >> 3) }

// WireType extracts the wire type from a decoded tag.
func (t Tag) WireType() WireType { return WireType(t & 0x7) }
