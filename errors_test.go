package heed

import (
	"errors"
	"testing"

	"github.com/erigontech/mdbx-go/mdbx"
	"github.com/stretchr/testify/require"
)

func TestWrapEngineErrTranslatesNotFound(t *testing.T) {
	err := wrapEngineErr("get", mdbx.NotFound)
	require.Equal(t, CodeNotFound, err.Code())
	require.True(t, isNotFound(err))
}

func TestWrapEngineErrTranslatesKeyExist(t *testing.T) {
	err := wrapEngineErr("put", mdbx.KeyExist)
	require.Equal(t, CodeKeyExist, err.Code())
	require.False(t, isNotFound(err))
}

func TestErrorUnwrapsToUnderlyingEngineError(t *testing.T) {
	err := wrapEngineErr("put", mdbx.KeyExist)
	require.True(t, errors.Is(err, mdbx.KeyExist))
}

func TestIsNotFoundFalseForNil(t *testing.T) {
	require.False(t, isNotFound(nil))
}
