package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeVarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 1 << 20, 1 << 40, 1<<64 - 1}
	for _, v := range values {
		buf := EncodeVarint(nil, v)
		got, n, err := DecodeVarint(buf)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, len(buf), n)
		assert.Equal(t, VarintSize(v), len(buf))
	}
}

func TestDecodeVarintShort(t *testing.T) {
	// A continuation byte with nothing after it: not malformed yet, just
	// short. This is the case the decoder buffers and retries.
	_, _, err := DecodeVarint([]byte{0x80})
	assert.ErrorIs(t, err, ErrShortVarint)
}

func TestDecodeVarintOverflowTenBytes(t *testing.T) {
	// 10 continuation bytes with no terminator: permanently malformed,
	// regardless of what might follow.
	buf := make([]byte, MaxVarintLen)
	for i := range buf {
		buf[i] = 0x80
	}
	_, _, err := DecodeVarint(buf)
	assert.ErrorIs(t, err, ErrVarintOverflow)
}

func TestDecodeVarintOverflowHighBits(t *testing.T) {
	// 10th byte encodes more than 1 extra bit: value would exceed 64 bits.
	buf := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x02}
	_, _, err := DecodeVarint(buf)
	assert.ErrorIs(t, err, ErrVarintOverflow)
}

func TestDecodeVarintTrailingBytesIgnored(t *testing.T) {
	buf := append(EncodeVarint(nil, 42), 0xFF, 0xFF)
	v, n, err := DecodeVarint(buf)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)
	assert.Equal(t, 1, n)
}

func TestZigZag32RoundTrip(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 66, -66, 1 << 30, -(1 << 30)} {
		assert.Equal(t, v, ZigZagDecode32(ZigZagEncode32(v)))
	}
	// -66 must match the spec's documented encoding of 131.
	assert.Equal(t, uint64(131), ZigZagEncode32(-66))
}

func TestZigZag64RoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 66, -66, 1 << 40, -(1 << 40)} {
		assert.Equal(t, v, ZigZagDecode64(ZigZagEncode64(v)))
	}
}
