package heed

import (
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOptionsValidateRejectsNonPositiveMapSize(t *testing.T) {
	o := NewOptions().WithMapSize(0)
	require.Error(t, o.Validate())
}

func TestOptionsValidateAcceptsPageMultiple(t *testing.T) {
	o := NewOptions().WithMapSize(64 * datasize.MB)
	require.NoError(t, o.Validate())
}

func TestOptionsValidateRejectsNoTLSFlag(t *testing.T) {
	o := NewOptions().WithMapSize(64 * datasize.MB).WithFlags(FlagNoTLS)
	require.Error(t, o.Validate())
}

func TestOptionsEquivalentIgnoresLogger(t *testing.T) {
	a := DefaultOptions()
	b := DefaultOptions()
	b.Logger = zap.NewNop()
	require.True(t, a.equivalent(b))
}

func TestOptionsEquivalentDetectsMapSizeDifference(t *testing.T) {
	a := DefaultOptions()
	b := DefaultOptions()
	b.MapSize = a.MapSize * 2
	require.False(t, a.equivalent(b))
}

func TestOptionsValidateRejectsBadEncryptionKeyLength(t *testing.T) {
	o := NewOptions().WithMapSize(64 * datasize.MB).WithEncryption(AEADChaCha20Poly1305, []byte("too short"))
	require.Error(t, o.Validate())
}
