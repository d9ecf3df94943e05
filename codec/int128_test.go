package codec_test

import (
	"bytes"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/meilisearch/heed-sub001/codec"
)

func TestU128RoundTrip(t *testing.T) {
	var c codec.U128
	v := uint256.NewInt(0)
	v.SetFromDecimal("123456789012345678901234567890")

	b, err := c.Encode(*v)
	require.NoError(t, err)
	require.Len(t, b, 16)

	got, err := c.Decode(b)
	require.NoError(t, err)
	require.True(t, v.Eq(&got))
}

func TestU128PreservesOrderUnderByteCompare(t *testing.T) {
	var c codec.U128
	small := *uint256.NewInt(35)
	big := *uint256.NewInt(42)

	bs, err := c.Encode(small)
	require.NoError(t, err)
	bb, err := c.Encode(big)
	require.NoError(t, err)

	require.True(t, bytes.Compare(bs, bb) < 0)
}

func TestU128RejectsValueOverflowing128Bits(t *testing.T) {
	var c codec.U128
	v := new(uint256.Int).Lsh(uint256.NewInt(1), 200)
	_, err := c.Encode(*v)
	require.Error(t, err)
}

func TestU128DecodeRejectsWrongSize(t *testing.T) {
	var c codec.U128
	_, err := c.Decode([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestI128PreservesSignedOrderUnderByteCompare(t *testing.T) {
	var c codec.I128
	zero := *uint256.NewInt(0)
	minusOne := *new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))

	bZero, err := c.Encode(zero)
	require.NoError(t, err)
	bMinusOne, err := c.Encode(minusOne)
	require.NoError(t, err)

	require.True(t, bytes.Compare(bMinusOne, bZero) < 0)

	gotZero, err := c.Decode(bZero)
	require.NoError(t, err)
	require.True(t, zero.Eq(&gotZero))

	gotMinusOne, err := c.Decode(bMinusOne)
	require.NoError(t, err)
	require.True(t, minusOne.Eq(&gotMinusOne))
}
