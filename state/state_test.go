package state

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/project-nft-registry/interfaces"
	"github.com/ruteri/project-nft-registry/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys_Unique(t *testing.T) {
	keys := []Key{
		AdminKey{},
		NextTokenIDKey{},
		OwnerKey{TokenID: 0},
		OwnerKey{TokenID: 1},
		OwnerKey{TokenID: 256},
		MetadataKey{TokenID: 0},
		MetadataKey{TokenID: 1},
		MetadataKey{TokenID: 256},
		NonceKey{Signer: common.HexToAddress("0x00000000000000000000000000000000000000a0")},
		NonceKey{Signer: common.HexToAddress("0x00000000000000000000000000000000000000a1")},
	}

	seen := make(map[string]Key)
	for _, k := range keys {
		b := string(k.Bytes())
		if prev, ok := seen[b]; ok {
			t.Fatalf("%s collides with %s", k, prev)
		}
		seen[b] = k

		parsed, err := ParseKey(k.Bytes())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
}

func TestParseKey_Invalid(t *testing.T) {
	for _, b := range [][]byte{
		nil,
		{0x9},
		{adminPrefix, 0x1},
		{ownerPrefix, 0x1, 0x2},
		{noncePrefix, 0x1},
	} {
		_, err := ParseKey(b)
		assert.Error(t, err, "%x", b)
	}
}

func TestMutable_ReadYourWrites(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	m := NewMutable(store)

	_, ok, err := m.Get(ctx, AdminKey{})
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, AdminKey{}, []byte{0x1}))
	v, ok, err := m.Get(ctx, AdminKey{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte{0x1}, v)

	// Nothing reaches the store before Commit
	has, err := store.Has(ctx, AdminKey{}.Bytes())
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, m.Commit(ctx, store))
	has, err = store.Has(ctx, AdminKey{}.Bytes())
	require.NoError(t, err)
	assert.True(t, has)
	assert.Empty(t, m.Changes())
}

func TestMutable_Remove(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	owner := common.HexToAddress("0x00000000000000000000000000000000000000b0")

	m := NewMutable(store)
	require.NoError(t, SetOwner(ctx, m, 7, owner))
	require.NoError(t, m.Commit(ctx, store))

	m = NewMutable(store)
	require.NoError(t, RemoveOwner(ctx, m, 7))

	has, err := m.Has(ctx, OwnerKey{TokenID: 7})
	require.NoError(t, err)
	assert.False(t, has)
	_, ok, err := GetOwner(ctx, m, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Commit(ctx, store))
	_, err = store.Get(ctx, OwnerKey{TokenID: 7}.Bytes())
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)
}

func TestTypedAccessors(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	m := NewMutable(store)

	admin := common.HexToAddress("0x00000000000000000000000000000000000000a0")
	owner := common.HexToAddress("0x00000000000000000000000000000000000000b0")
	meta := interfaces.ProjectMetadata{ProjectID: "proj-1", ContentPointer: "cid-1"}

	id, err := GetNextTokenID(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, interfaces.FirstTokenID, id)

	initialized, err := HasAdmin(ctx, m)
	require.NoError(t, err)
	assert.False(t, initialized)

	require.NoError(t, SetAdmin(ctx, m, admin))
	require.NoError(t, SetNextTokenID(ctx, m, 5))
	require.NoError(t, SetOwner(ctx, m, 4, owner))
	require.NoError(t, SetMetadata(ctx, m, 4, meta))
	require.NoError(t, m.Commit(ctx, store))

	r := NewMutable(store)

	gotAdmin, ok, err := GetAdmin(ctx, r)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, admin, gotAdmin)

	id, err = GetNextTokenID(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, interfaces.TokenID(5), id)

	gotOwner, ok, err := GetOwner(ctx, r, 4)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, owner, gotOwner)

	gotMeta, ok, err := GetMetadata(ctx, r, 4)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, meta, gotMeta)

	_, ok, err = GetMetadata(ctx, r, 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCorruptValues(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	m := NewMutable(store)

	require.NoError(t, m.Set(ctx, AdminKey{}, []byte{0x1, 0x2}))
	require.NoError(t, m.Set(ctx, NextTokenIDKey{}, []byte{0x1}))
	require.NoError(t, m.Set(ctx, MetadataKey{TokenID: 1}, []byte("{")))
	require.NoError(t, m.Set(ctx, MetadataKey{TokenID: 2}, []byte{0, 0, 0, 9, 'a'}))
	require.NoError(t, m.Set(ctx, MetadataKey{TokenID: 3}, append(encodeMetadata(interfaces.ProjectMetadata{ProjectID: "p", ContentPointer: "c"}), 0x0)))
	require.NoError(t, m.Set(ctx, NonceKey{}, []byte{0x1}))

	_, _, err := GetAdmin(ctx, m)
	assert.Error(t, err)
	_, err = GetNextTokenID(ctx, m)
	assert.Error(t, err)
	for _, id := range []interfaces.TokenID{1, 2, 3} {
		_, _, err = GetMetadata(ctx, m, id)
		assert.Error(t, err, "token %d", id)
	}
	_, err = GetNonce(ctx, m, interfaces.Address{})
	assert.Error(t, err)
}

func TestMetadata_ExactBytes(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()

	for _, meta := range []interfaces.ProjectMetadata{
		{ProjectID: "proj-\xff", ContentPointer: "cid-\xfe"},
		{ProjectID: "", ContentPointer: ""},
		{ProjectID: "a\x00b", ContentPointer: "\xc3\x28"},
		{ProjectID: "日本語", ContentPointer: "bafkreigh2akiscaildc"},
	} {
		m := NewMutable(store)
		require.NoError(t, SetMetadata(ctx, m, 1, meta))
		require.NoError(t, m.Commit(ctx, store))

		got, ok, err := GetMetadata(ctx, NewMutable(store), 1)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte(meta.ProjectID), []byte(got.ProjectID))
		assert.Equal(t, []byte(meta.ContentPointer), []byte(got.ContentPointer))
	}
}

func TestConsumeNonce(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	signer := common.HexToAddress("0x00000000000000000000000000000000000000a0")
	other := common.HexToAddress("0x00000000000000000000000000000000000000b0")

	m := NewMutable(store)
	last, err := GetNonce(ctx, m, signer)
	require.NoError(t, err)
	assert.Zero(t, last)

	require.NoError(t, ConsumeNonce(ctx, m, signer, 10))
	assert.ErrorIs(t, ConsumeNonce(ctx, m, signer, 10), interfaces.ErrStaleNonce)
	assert.ErrorIs(t, ConsumeNonce(ctx, m, signer, 9), interfaces.ErrStaleNonce)
	require.NoError(t, m.Commit(ctx, store))

	// Survives a fresh overlay over the same store
	m = NewMutable(store)
	assert.ErrorIs(t, ConsumeNonce(ctx, m, signer, 10), interfaces.ErrStaleNonce)
	require.NoError(t, ConsumeNonce(ctx, m, signer, 11))

	// Nonces are tracked per signer
	require.NoError(t, ConsumeNonce(ctx, m, other, 1))
}
