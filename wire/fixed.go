package wire

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrShortFixed means fewer than the required number of bytes were
// available to decode a fixed32/fixed64 value.
var ErrShortFixed = errors.New("wire: fixed-width value incomplete")

// DecodeFixed32 decodes a little-endian 32-bit value from the front of b.
func DecodeFixed32(b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, ErrShortFixed
	}
	return binary.LittleEndian.Uint32(b), nil
}

// DecodeFixed64 decodes a little-endian 64-bit value from the front of b.
func DecodeFixed64(b []byte) (uint64, error) {
	if len(b) < 8 {
		return 0, ErrShortFixed
	}
	return binary.LittleEndian.Uint64(b), nil
}

// EncodeFixed32 appends the little-endian encoding of v to dst.
func EncodeFixed32(dst []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(dst, buf[:]...)
}

// EncodeFixed64 appends the little-endian encoding of v to dst.
func EncodeFixed64(dst []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(dst, buf[:]...)
}

// Float32FromBits and Float64FromBits convert the raw fixed-width payload
// of a float/double field into its Go representation.
func Float32FromBits(bits uint32) float32 { return math.Float32frombits(bits) }
func Float64FromBits(bits uint64) float64 { return math.Float64frombits(bits) }

// Float32Bits and Float64Bits are the encode-side inverses.
func Float32Bits(f float32) uint32 { return math.Float32bits(f) }
func Float64Bits(f float64) uint64 { return math.Float64bits(f) }
