package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed32RoundTrip(t *testing.T) {
	buf := EncodeFixed32(nil, 0xdeadbeef)
	v, err := DecodeFixed32(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), v)
}

func TestFixed64RoundTrip(t *testing.T) {
	buf := EncodeFixed64(nil, 0x0102030405060708)
	v, err := DecodeFixed64(buf)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), v)
}

func TestFixed32Short(t *testing.T) {
	_, err := DecodeFixed32([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrShortFixed)
}

func TestFixed64Short(t *testing.T) {
	_, err := DecodeFixed64([]byte{1, 2, 3, 4, 5, 6, 7})
	assert.ErrorIs(t, err, ErrShortFixed)
}

func TestFloatBitsRoundTrip(t *testing.T) {
	assert.Equal(t, float32(33), Float32FromBits(Float32Bits(33)))
	assert.Equal(t, float64(-66), Float64FromBits(Float64Bits(-66)))
}

func TestTagRoundTrip(t *testing.T) {
	tag := MakeTag(5, Varint)
	assert.Equal(t, int32(5), tag.FieldNumber())
	assert.Equal(t, Varint, tag.WireType())
}
