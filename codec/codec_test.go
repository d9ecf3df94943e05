package codec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meilisearch/heed-sub001/codec"
)

func TestBytesIsZeroCopyIdentity(t *testing.T) {
	var c codec.Bytes
	in := []byte("hello")
	enc, err := c.Encode(in)
	require.NoError(t, err)
	require.Equal(t, in, enc)
	dec, err := c.Decode(enc)
	require.NoError(t, err)
	require.Equal(t, in, dec)
}

func TestFixedSizeBytesRejectsWrongLength(t *testing.T) {
	c := codec.NewFixedSizeBytes(4)
	_, err := c.Encode([]byte{1, 2, 3})
	require.Error(t, err)

	b := []byte{1, 2, 3, 4}
	enc, err := c.Encode(b)
	require.NoError(t, err)
	dec, err := c.Decode(enc)
	require.NoError(t, err)
	require.Equal(t, b, dec)
}

func TestStrRejectsInvalidUTF8(t *testing.T) {
	var c codec.Str
	_, err := c.Decode([]byte{0xff, 0xfe, 0xfd})
	require.Error(t, err)

	enc, err := c.Encode("héllo")
	require.NoError(t, err)
	dec, err := c.Decode(enc)
	require.NoError(t, err)
	require.Equal(t, "héllo", dec)
}

func TestUnitRoundTrip(t *testing.T) {
	var c codec.Unit
	enc, err := c.Encode(struct{}{})
	require.NoError(t, err)
	require.Empty(t, enc)
	_, err = c.Decode([]byte{1})
	require.Error(t, err)
}

func TestIntegerCodecsPreserveOrderUnderByteCompare(t *testing.T) {
	values := []int64{-100, -1, 0, 1, 100}
	var encoded [][]byte
	for _, v := range values {
		b, err := codec.I64.Encode(v)
		require.NoError(t, err)
		encoded = append(encoded, b)
	}
	for i := 1; i < len(encoded); i++ {
		require.True(t, string(encoded[i-1]) < string(encoded[i]),
			"encoding of %d should byte-sort before %d", values[i-1], values[i])
	}
	for i, v := range values {
		got, err := codec.I64.Decode(encoded[i])
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestUnsignedIntegerRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 42, 1<<32 - 1} {
		b, err := codec.U32.Encode(v)
		require.NoError(t, err)
		got, err := codec.U32.Decode(b)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestLazyDefersDecodeUntilCalled(t *testing.T) {
	var inner codec.Str
	lazyCdc := codec.LazyDecode[string]{Inner: inner}
	l, err := lazyCdc.Decode([]byte("deferred"))
	require.NoError(t, err)
	require.Equal(t, []byte("deferred"), l.Raw())
	v, err := l.Decode()
	require.NoError(t, err)
	require.Equal(t, "deferred", v)
}

func TestIgnoreDiscardsBytes(t *testing.T) {
	var c codec.Ignore
	_, err := c.Decode([]byte("anything at all"))
	require.NoError(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	type point struct {
		X, Y int
	}
	var c codec.JSON[point]
	b, err := c.Encode(point{X: 1, Y: 2})
	require.NoError(t, err)
	got, err := c.Decode(b)
	require.NoError(t, err)
	require.Equal(t, point{X: 1, Y: 2}, got)
}

func TestMsgPackRoundTrip(t *testing.T) {
	type point struct {
		X, Y int
	}
	var c codec.MsgPack[point]
	b, err := c.Encode(point{X: 3, Y: 4})
	require.NoError(t, err)
	got, err := c.Decode(b)
	require.NoError(t, err)
	require.Equal(t, point{X: 3, Y: 4}, got)
}
