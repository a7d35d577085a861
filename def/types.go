// Package def implements the frozen descriptor model the decoder is driven
// by: message, field and enum descriptors, and the freeze pass that
// resolves references and assigns handler selectors.
package def

import "github.com/dstream-io/pbflow/wire"

// Type is the schema-level field type, numbered exactly as
// google.protobuf.FieldDescriptorProto_Type so that schemas loaded from
// real .proto/.pb sources need no translation.
type Type int32

const (
	Double   Type = 1
	Float    Type = 2
	Int64    Type = 3
	Uint64   Type = 4
	Int32    Type = 5
	Fixed64  Type = 6
	Fixed32  Type = 7
	Bool     Type = 8
	String   Type = 9
	Group    Type = 10
	Message  Type = 11
	Bytes    Type = 12
	Uint32   Type = 13
	Enum     Type = 14
	Sfixed32 Type = 15
	Sfixed64 Type = 16
	Sint32   Type = 17
	Sint64   Type = 18
)

func (t Type) String() string {
	switch t {
	case Double:
		return "double"
	case Float:
		return "float"
	case Int64:
		return "int64"
	case Uint64:
		return "uint64"
	case Int32:
		return "int32"
	case Fixed64:
		return "fixed64"
	case Fixed32:
		return "fixed32"
	case Bool:
		return "bool"
	case String:
		return "string"
	case Group:
		return "group"
	case Message:
		return "message"
	case Bytes:
		return "bytes"
	case Uint32:
		return "uint32"
	case Enum:
		return "enum"
	case Sfixed32:
		return "sfixed32"
	case Sfixed64:
		return "sfixed64"
	case Sint32:
		return "sint32"
	case Sint64:
		return "sint64"
	default:
		return "unknown"
	}
}

// nativeWireType is indexed by Type (1-18); index 0 is unused.
var nativeWireType = [19]wire.WireType{
	0:        wire.EndGroup, // sentinel, never returned for a real Type
	Double:   wire.Fixed64,
	Float:    wire.Fixed32,
	Int64:    wire.Varint,
	Uint64:   wire.Varint,
	Int32:    wire.Varint,
	Fixed64:  wire.Fixed64,
	Fixed32:  wire.Fixed32,
	Bool:     wire.Varint,
	String:   wire.Bytes,
	Group:    wire.StartGroup,
	Message:  wire.Bytes,
	Bytes:    wire.Bytes,
	Uint32:   wire.Varint,
	Enum:     wire.Varint,
	Sfixed32: wire.Fixed32,
	Sfixed64: wire.Fixed64,
	Sint32:   wire.Varint,
	Sint64:   wire.Varint,
}

// NativeWireType returns the wire type a field of type t is encoded with
// when not packed. It is a pure function of t (spec invariant: descriptor
// type uniquely determines native wire type).
func NativeWireType(t Type) wire.WireType {
	if t < Double || t > Sint64 {
		return nativeWireType[0]
	}
	return nativeWireType[t]
}

var packedEligible = map[Type]bool{
	Double: true, Float: true, Int64: true, Uint64: true, Int32: true,
	Fixed64: true, Fixed32: true, Bool: true, Uint32: true, Enum: true,
	Sfixed32: true, Sfixed64: true, Sint32: true, Sint64: true,
}

// IsPackable reports whether a repeated field of type t may use the packed
// wire representation.
func IsPackable(t Type) bool {
	return packedEligible[t]
}

// IntegerFormat distinguishes the varint encodings that share a native wire
// type but decode differently.
type IntegerFormat int

const (
	// Normal is a plain two's-complement varint (int32/int64/uint32/uint64/
	// bool/enum truncation rules).
	Normal IntegerFormat = iota
	// ZigZag is the sint32/sint64 encoding.
	ZigZag
)

// IntegerFormatFor returns the IntegerFormat implied by t.
func IntegerFormatFor(t Type) IntegerFormat {
	if t == Sint32 || t == Sint64 {
		return ZigZag
	}
	return Normal
}

// Label is a field's cardinality.
type Label int

const (
	Optional Label = iota
	Required
	Repeated
)

func (l Label) String() string {
	switch l {
	case Optional:
		return "optional"
	case Required:
		return "required"
	case Repeated:
		return "repeated"
	default:
		return "unknown"
	}
}
