package heed

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSuccessorIncrementsLastByteWithCarry(t *testing.T) {
	out, ok := successor([]byte{1, 2, 3})
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 4}, out)

	out, ok = successor([]byte{1, 0xFF})
	require.True(t, ok)
	require.Equal(t, []byte{2}, out)

	_, ok = successor([]byte{0xFF, 0xFF})
	require.False(t, ok)
}

// property: for any non-empty byte string without an all-0xFF suffix
// overflow, successor(p) strictly sorts after p and nothing else sorts
// strictly between them in {p's prefix extensions} — the property
// actually load-bearing for prefix iteration is simpler and checked
// here: successor(p) > p, and p is itself < successor(p) for every
// byte string with prefix p (i.e. successor(p) is an exclusive upper
// bound for the prefix).
func TestSuccessorIsExclusiveUpperBoundForPrefix(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := rapid.SliceOfN(rapid.Byte(), 1, 8).Draw(t, "prefix")
		suffix := rapid.SliceOfN(rapid.Byte(), 0, 8).Draw(t, "suffix")

		succ, ok := successor(p)
		if !ok {
			// every byte in p is 0xFF; no finite byte string can be
			// both >= p and < successor, so there is nothing to check.
			return
		}

		extended := append(append([]byte(nil), p...), suffix...)
		require.True(t, bytes.Compare(extended, succ) < 0,
			"extension %v of prefix %v must sort before successor %v", extended, p, succ)
		require.True(t, bytes.Compare(p, succ) < 0)
	})
}

func TestDefaultCompareMatchesBytesCompare(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.SliceOfN(rapid.Byte(), 0, 16).Draw(t, "a")
		b := rapid.SliceOfN(rapid.Byte(), 0, 16).Draw(t, "b")
		require.Equal(t, bytes.Compare(a, b), DefaultCompare(a, b))
	})
}
