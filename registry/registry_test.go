package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ruteri/project-nft-registry/auth"
	"github.com/ruteri/project-nft-registry/interfaces"
	"github.com/ruteri/project-nft-registry/kvstore"
	"github.com/ruteri/project-nft-registry/metrics"
	"github.com/ruteri/project-nft-registry/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	addrA = common.HexToAddress("0x000000000000000000000000000000000000000a")
	addrB = common.HexToAddress("0x000000000000000000000000000000000000000b")
	addrC = common.HexToAddress("0x000000000000000000000000000000000000000c")
	addrD = common.HexToAddress("0x000000000000000000000000000000000000000d")
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func as(addr interfaces.Address) context.Context {
	return auth.WithSigner(context.Background(), addr)
}

func newTestRegistry(t *testing.T) (*Registry, *kvstore.MemoryStore) {
	t.Helper()
	store := kvstore.NewMemoryStore()
	return NewRegistry(store, auth.ContextAuthorizer{}, testLogger()), store
}

func newInitializedRegistry(t *testing.T) (*Registry, *kvstore.MemoryStore) {
	t.Helper()
	reg, store := newTestRegistry(t)
	require.NoError(t, reg.Initialize(as(addrA), addrA))
	return reg, store
}

// snapshot returns the raw values of every registry key relevant to the tests.
func snapshot(t *testing.T, store interfaces.KVReader, ids ...interfaces.TokenID) map[string][]byte {
	t.Helper()
	keys := []state.Key{state.AdminKey{}, state.NextTokenIDKey{}}
	for _, id := range ids {
		keys = append(keys, state.OwnerKey{TokenID: id}, state.MetadataKey{TokenID: id})
	}
	out := make(map[string][]byte)
	for _, k := range keys {
		v, err := store.Get(context.Background(), k.Bytes())
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			continue
		}
		require.NoError(t, err)
		out[k.String()] = v
	}
	return out
}

func TestInitialize(t *testing.T) {
	reg, store := newTestRegistry(t)

	require.NoError(t, reg.Initialize(as(addrA), addrA))

	admin, ok, err := state.GetAdmin(context.Background(), state.NewMutable(store))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, addrA, admin)

	next, err := state.GetNextTokenID(context.Background(), state.NewMutable(store))
	require.NoError(t, err)
	assert.Equal(t, interfaces.TokenID(1), next)
}

func TestInitialize_OnlyOnce(t *testing.T) {
	reg, store := newInitializedRegistry(t)
	before := snapshot(t, store)

	err := reg.Initialize(as(addrB), addrB)
	assert.ErrorIs(t, err, ErrAlreadyInitialized)

	// Admin-checked before auth: even an unsigned caller sees AlreadyInitialized
	err = reg.Initialize(context.Background(), addrB)
	assert.ErrorIs(t, err, ErrAlreadyInitialized)

	assert.Equal(t, before, snapshot(t, store))
}

func TestInitialize_Unauthorized(t *testing.T) {
	reg, store := newTestRegistry(t)

	err := reg.Initialize(as(addrB), addrA)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
	assert.Empty(t, snapshot(t, store))

	// The failed attempt did not consume initialization
	require.NoError(t, reg.Initialize(as(addrA), addrA))
}

func TestMint_NotInitialized(t *testing.T) {
	reg, store := newTestRegistry(t)

	_, err := reg.Mint(as(addrA), addrB, "proj-1", "cid-1")
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Empty(t, snapshot(t, store, 1))
}

func TestMint_NotAdmin(t *testing.T) {
	reg, store := newInitializedRegistry(t)
	before := snapshot(t, store, 1)

	_, err := reg.Mint(as(addrB), addrB, "proj-1", "cid-1")
	assert.ErrorIs(t, err, ErrNotAdmin)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)

	_, err = reg.Mint(context.Background(), addrB, "proj-1", "cid-1")
	assert.ErrorIs(t, err, ErrNotAdmin)

	assert.Equal(t, before, snapshot(t, store, 1))
}

func TestMint_SequentialIDs(t *testing.T) {
	reg, _ := newInitializedRegistry(t)

	for want := interfaces.TokenID(1); want <= 10; want++ {
		got, err := reg.Mint(as(addrA), addrB, "proj", "cid")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestMint_ConcurrentIDsAreUnique(t *testing.T) {
	reg, _ := newInitializedRegistry(t)

	const n = 50
	ids := make(chan interfaces.TokenID, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := reg.Mint(as(addrA), addrB, "proj", "cid")
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[interfaces.TokenID]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate token id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	for id := interfaces.TokenID(1); id <= n; id++ {
		assert.True(t, seen[id], "missing token id %d", id)
	}
}

func TestMint_DefaultsNextTokenID(t *testing.T) {
	store := kvstore.NewMemoryStore()
	m := state.NewMutable(store)
	require.NoError(t, state.SetAdmin(context.Background(), m, addrA))
	require.NoError(t, m.Commit(context.Background(), store))

	reg := NewRegistry(store, auth.ContextAuthorizer{}, testLogger())
	id, err := reg.Mint(as(addrA), addrB, "proj", "cid")
	require.NoError(t, err)
	assert.Equal(t, interfaces.FirstTokenID, id)
}

func TestOwnerAndMetadata(t *testing.T) {
	reg, _ := newInitializedRegistry(t)

	id, err := reg.Mint(as(addrA), addrB, "proj-1", "cid-1")
	require.NoError(t, err)

	owner, err := reg.OwnerOf(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, addrB, owner)

	meta, err := reg.GetMetadata(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, interfaces.ProjectMetadata{ProjectID: "proj-1", ContentPointer: "cid-1"}, meta)

	// Metadata survives transfers unchanged
	require.NoError(t, reg.Transfer(as(addrB), addrB, addrC, id))
	meta, err = reg.GetMetadata(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, interfaces.ProjectMetadata{ProjectID: "proj-1", ContentPointer: "cid-1"}, meta)
}

func TestMetadata_NonUTF8RoundTrip(t *testing.T) {
	reg, _ := newInitializedRegistry(t)

	want := interfaces.ProjectMetadata{ProjectID: "proj-\xff", ContentPointer: "cid-\xfe\x00"}
	id, err := reg.Mint(as(addrA), addrB, want.ProjectID, want.ContentPointer)
	require.NoError(t, err)

	meta, err := reg.GetMetadata(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, want, meta)
}

func TestUnknownToken(t *testing.T) {
	reg, _ := newTestRegistry(t)

	for _, id := range []interfaces.TokenID{0, 1, 42} {
		_, err := reg.OwnerOf(context.Background(), id)
		assert.ErrorIs(t, err, ErrTokenNotFound)

		_, err = reg.GetMetadata(context.Background(), id)
		assert.ErrorIs(t, err, ErrTokenNotFound)

		err = reg.Transfer(as(addrB), addrB, addrC, id)
		assert.ErrorIs(t, err, ErrTokenNotFound)
	}
}

func TestTransfer_Unauthorized(t *testing.T) {
	reg, store := newInitializedRegistry(t)
	id, err := reg.Mint(as(addrA), addrB, "proj-1", "cid-1")
	require.NoError(t, err)
	before := snapshot(t, store, id)

	// Owner is right but the caller is not
	err = reg.Transfer(as(addrC), addrB, addrC, id)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)

	// Both checks fail: authorization is observed first
	err = reg.Transfer(as(addrD), addrC, addrD, id)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrNotTokenOwner)

	assert.Equal(t, before, snapshot(t, store, id))
}

func TestTransfer_NotOwner(t *testing.T) {
	reg, store := newInitializedRegistry(t)
	id, err := reg.Mint(as(addrA), addrB, "proj-1", "cid-1")
	require.NoError(t, err)
	before := snapshot(t, store, id)

	// Authorized as from, but from does not own the token
	err = reg.Transfer(as(addrC), addrC, addrD, id)
	assert.ErrorIs(t, err, ErrNotTokenOwner)

	assert.Equal(t, before, snapshot(t, store, id))
}

func TestTransfer_ChecksAuthBeforeOwnership(t *testing.T) {
	store := kvstore.NewMemoryStore()
	authorizer := new(MockAuthorizer)
	reg := NewRegistry(store, authorizer, testLogger())

	authorizer.On("RequireAuth", mock.Anything, addrA).Return(interfaces.Authorization{Signer: addrA}, nil)
	require.NoError(t, reg.Initialize(context.Background(), addrA))
	id, err := reg.Mint(context.Background(), addrB, "proj-1", "cid-1")
	require.NoError(t, err)

	authorizer.On("RequireAuth", mock.Anything, addrC).Return(interfaces.Authorization{Signer: addrC}, nil).Once()
	err = reg.Transfer(context.Background(), addrC, addrD, id)
	assert.ErrorIs(t, err, ErrNotTokenOwner)

	authorizer.AssertCalled(t, "RequireAuth", mock.Anything, addrC)
	authorizer.AssertNumberOfCalls(t, "RequireAuth", 3)
}

func TestConcreteScenario(t *testing.T) {
	reg, _ := newTestRegistry(t)

	require.NoError(t, reg.Initialize(as(addrA), addrA))

	id1, err := reg.Mint(as(addrA), addrB, "proj-1", "cid-1")
	require.NoError(t, err)
	assert.Equal(t, interfaces.TokenID(1), id1)

	id2, err := reg.Mint(as(addrA), addrC, "proj-2", "cid-2")
	require.NoError(t, err)
	assert.Equal(t, interfaces.TokenID(2), id2)

	require.NoError(t, reg.Transfer(as(addrB), addrB, addrD, 1))

	owner, err := reg.OwnerOf(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, addrD, owner)

	owner, err = reg.OwnerOf(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, addrC, owner)

	err = reg.Transfer(as(addrB), addrB, addrD, 1)
	assert.ErrorIs(t, err, ErrNotTokenOwner)
}

func TestVersion(t *testing.T) {
	reg, _ := newTestRegistry(t)
	assert.Equal(t, "project-nft v1", reg.Version())
}

// failingStore fails every commit.
type failingStore struct {
	*kvstore.MemoryStore
}

func (failingStore) Commit(context.Context, []interfaces.KVChange) error {
	return errors.New("disk full")
}

func TestCommitFailureLeavesNoState(t *testing.T) {
	store := failingStore{kvstore.NewMemoryStore()}
	reg := NewRegistry(store, auth.ContextAuthorizer{}, testLogger())

	err := reg.Initialize(as(addrA), addrA)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	_, err = reg.Mint(as(addrA), addrB, "proj", "cid")
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestPersistentStore(t *testing.T) {
	path := t.TempDir()

	store, err := kvstore.OpenPebble(path, testLogger())
	require.NoError(t, err)
	reg := NewRegistry(store, auth.ContextAuthorizer{}, testLogger())
	require.NoError(t, reg.Initialize(as(addrA), addrA))
	_, err = reg.Mint(as(addrA), addrB, "proj-1", "cid-1")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = kvstore.OpenPebble(path, testLogger())
	require.NoError(t, err)
	reg = NewRegistry(store, auth.ContextAuthorizer{}, testLogger())

	owner, err := reg.OwnerOf(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, addrB, owner)

	id, err := reg.Mint(as(addrA), addrC, "proj-2", "cid-2")
	require.NoError(t, err)
	assert.Equal(t, interfaces.TokenID(2), id)

	// Consumed nonces outlive the process
	require.NoError(t, reg.Transfer(signed(addrC, 100), addrC, addrD, id))
	require.NoError(t, store.Close())

	store, err = kvstore.OpenPebble(path, testLogger())
	require.NoError(t, err)
	defer store.Close()
	reg = NewRegistry(store, auth.ContextAuthorizer{}, testLogger())

	_, err = reg.Mint(signed(addrA, 100), addrD, "proj-3", "cid-3")
	require.NoError(t, err, "nonces are per signer")
	require.NoError(t, reg.Transfer(signed(addrD, 1), addrD, addrC, id))
	err = reg.Transfer(signed(addrC, 100), addrC, addrD, id)
	assert.ErrorIs(t, err, ErrStaleNonce)
}

func signed(addr interfaces.Address, nonce uint64) context.Context {
	return auth.WithSignedRequest(context.Background(), addr, nonce)
}

func TestReplayedRequestsAreRejected(t *testing.T) {
	reg, store := newTestRegistry(t)

	adminReq := signed(addrA, 10)
	require.NoError(t, reg.Initialize(adminReq, addrA))

	// The nonce consumed by initialize cannot authorize a mint
	before := snapshot(t, store, 1)
	_, err := reg.Mint(adminReq, addrB, "proj-1", "cid-1")
	assert.ErrorIs(t, err, ErrStaleNonce)
	assert.NotErrorIs(t, err, ErrNotAdmin)
	assert.Equal(t, before, snapshot(t, store, 1))

	mintReq := signed(addrA, 11)
	id, err := reg.Mint(mintReq, addrB, "proj-1", "cid-1")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = reg.Mint(mintReq, addrB, "proj-1", "cid-1")
		assert.ErrorIs(t, err, ErrStaleNonce)
	}
	next, err := state.GetNextTokenID(context.Background(), state.NewMutable(store))
	require.NoError(t, err)
	assert.Equal(t, id+1, next)

	// A token returning to its previous owner cannot be taken by replaying
	// that owner's earlier transfer.
	awayReq := signed(addrB, 1)
	require.NoError(t, reg.Transfer(awayReq, addrB, addrC, id))
	require.NoError(t, reg.Transfer(signed(addrC, 1), addrC, addrB, id))
	err = reg.Transfer(awayReq, addrB, addrC, id)
	assert.ErrorIs(t, err, ErrStaleNonce)

	owner, err := reg.OwnerOf(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, addrB, owner)
}

func TestFailedOperationDoesNotConsumeNonce(t *testing.T) {
	reg, _ := newInitializedRegistry(t)
	id, err := reg.Mint(as(addrA), addrB, "proj-1", "cid-1")
	require.NoError(t, err)

	err = reg.Transfer(signed(addrC, 5), addrC, addrD, id)
	assert.ErrorIs(t, err, ErrNotTokenOwner)

	last, err := state.GetNonce(context.Background(), state.NewMutable(reg.store), addrC)
	require.NoError(t, err)
	assert.Zero(t, last)
}

func TestMetrics(t *testing.T) {
	promReg := prometheus.NewRegistry()
	m, err := metrics.NewRegistryMetrics("test", promReg)
	require.NoError(t, err)

	reg, _ := newTestRegistry(t)
	reg.WithMetrics(m)

	require.NoError(t, reg.Initialize(as(addrA), addrA))
	_, err = reg.Mint(as(addrB), addrB, "proj", "cid")
	require.Error(t, err)

	families, err := promReg.Gather()
	require.NoError(t, err)

	results := make(map[string]float64)
	for _, f := range families {
		if f.GetName() != "test_operations_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			var op, result string
			for _, l := range metric.GetLabel() {
				switch l.GetName() {
				case "operation":
					op = l.GetValue()
				case "result":
					result = l.GetValue()
				}
			}
			results[op+"/"+result] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 1.0, results["initialize/ok"])
	assert.Equal(t, 1.0, results["mint/not_admin"])
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "ok", resultLabel(nil))
	assert.Equal(t, "token_not_found", resultLabel(ErrTokenNotFound))
	assert.Equal(t, "not_admin", resultLabel(errors.Join(ErrNotAdmin, auth.ErrUnauthorized)))
	assert.Equal(t, "error", resultLabel(auth.ErrUnauthorized))
	assert.Equal(t, "stale_nonce", resultLabel(fmt.Errorf("wrapped: %w", ErrStaleNonce)))
}
