package interfaces

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	want := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	addr, err := ParseAddress("0x00000000000000000000000000000000000000aa")
	require.NoError(t, err)
	assert.Equal(t, want, addr)

	addr, err = ParseAddress("00000000000000000000000000000000000000aa")
	require.NoError(t, err)
	assert.Equal(t, want, addr)

	_, err = ParseAddress("0x1234")
	assert.Error(t, err)

	_, err = ParseAddress("zz000000000000000000000000000000000000aa")
	assert.Error(t, err)
}

func TestParseTokenID(t *testing.T) {
	id, err := ParseTokenID("42")
	require.NoError(t, err)
	assert.Equal(t, TokenID(42), id)
	assert.Equal(t, "42", id.String())

	_, err = ParseTokenID("-1")
	assert.Error(t, err)

	_, err = ParseTokenID("abc")
	assert.Error(t, err)
}

func TestRegistryErrorCodes(t *testing.T) {
	tests := []struct {
		err  RegistryError
		code uint32
	}{
		{ErrAlreadyInitialized, 1},
		{ErrNotInitialized, 2},
		{ErrNotAdmin, 3},
		{ErrTokenNotFound, 4},
		{ErrNotTokenOwner, 5},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code())

			back, ok := RegistryErrorFromCode(tt.code)
			require.True(t, ok)
			assert.True(t, errors.Is(back, tt.err))
		})
	}

	_, ok := RegistryErrorFromCode(0)
	assert.False(t, ok)
	_, ok = RegistryErrorFromCode(6)
	assert.False(t, ok)
}

func TestNewStorageBackendLocation(t *testing.T) {
	loc, err := NewStorageBackendLocation("s3://bucket/prefix?region=eu-west-1")
	require.NoError(t, err)
	assert.True(t, loc.IsS3())
	assert.Equal(t, "bucket", loc.Host)
	assert.Equal(t, "eu-west-1", loc.GetParam("region"))

	loc, err = NewStorageBackendLocation("ipfs://localhost:5001/?gateway=yes")
	require.NoError(t, err)
	assert.True(t, loc.IsIPFS())
	assert.True(t, loc.GetParamBool("gateway"))

	_, err = NewStorageBackendLocation("github://owner/repo")
	assert.ErrorIs(t, err, ErrInvalidLocationURI)
}
