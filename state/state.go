package state

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/project-nft-registry/interfaces"
)

// Reader is typed read access to registry state.
type Reader interface {
	// Get returns the raw value under key. Absent keys return ok=false and no error.
	Get(ctx context.Context, key Key) (value []byte, ok bool, err error)
	Has(ctx context.Context, key Key) (bool, error)
}

// ReadWriter is typed read/write access to registry state.
type ReadWriter interface {
	Reader
	Set(ctx context.Context, key Key, value []byte) error
	Remove(ctx context.Context, key Key) error
}

var _ ReadWriter = (*Mutable)(nil)

// Mutable buffers writes on top of a store. Reads observe buffered writes
// first and fall through to the store. Nothing reaches the store until Commit.
type Mutable struct {
	store   interfaces.KVReader
	changes map[string]interfaces.KVChange
}

// NewMutable opens a write buffer over store.
func NewMutable(store interfaces.KVReader) *Mutable {
	return &Mutable{
		store:   store,
		changes: make(map[string]interfaces.KVChange),
	}
}

func (m *Mutable) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	k := key.Bytes()
	if c, ok := m.changes[string(k)]; ok {
		if c.Delete {
			return nil, false, nil
		}
		return c.Value, true, nil
	}
	v, err := m.store.Get(ctx, k)
	if errors.Is(err, interfaces.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("could not read %s: %w", key, err)
	}
	return v, true, nil
}

func (m *Mutable) Has(ctx context.Context, key Key) (bool, error) {
	k := key.Bytes()
	if c, ok := m.changes[string(k)]; ok {
		return !c.Delete, nil
	}
	ok, err := m.store.Has(ctx, k)
	if err != nil {
		return false, fmt.Errorf("could not check %s: %w", key, err)
	}
	return ok, nil
}

func (m *Mutable) Set(_ context.Context, key Key, value []byte) error {
	k := key.Bytes()
	m.changes[string(k)] = interfaces.KVChange{Key: k, Value: bytes.Clone(value)}
	return nil
}

func (m *Mutable) Remove(_ context.Context, key Key) error {
	k := key.Bytes()
	m.changes[string(k)] = interfaces.KVChange{Key: k, Delete: true}
	return nil
}

// Changes returns the buffered writes ordered by key.
func (m *Mutable) Changes() []interfaces.KVChange {
	changes := make([]interfaces.KVChange, 0, len(m.changes))
	for _, c := range m.changes {
		changes = append(changes, c)
	}
	sort.Slice(changes, func(i, j int) bool {
		return bytes.Compare(changes[i].Key, changes[j].Key) < 0
	})
	return changes
}

// Commit writes every buffered change to store in one atomic commit and
// resets the buffer.
func (m *Mutable) Commit(ctx context.Context, store interfaces.KVStore) error {
	if len(m.changes) == 0 {
		return nil
	}
	if err := store.Commit(ctx, m.Changes()); err != nil {
		return err
	}
	m.changes = make(map[string]interfaces.KVChange)
	return nil
}

// GetAdmin returns the admin address, if initialized.
func GetAdmin(ctx context.Context, r Reader) (interfaces.Address, bool, error) {
	return getAddress(ctx, r, AdminKey{})
}

// HasAdmin reports whether the registry was initialized.
func HasAdmin(ctx context.Context, r Reader) (bool, error) {
	return r.Has(ctx, AdminKey{})
}

func SetAdmin(ctx context.Context, w ReadWriter, admin interfaces.Address) error {
	return w.Set(ctx, AdminKey{}, admin.Bytes())
}

// GetNextTokenID returns the stored counter, defaulting to FirstTokenID.
func GetNextTokenID(ctx context.Context, r Reader) (interfaces.TokenID, error) {
	v, ok, err := r.Get(ctx, NextTokenIDKey{})
	if err != nil {
		return 0, err
	}
	if !ok {
		return interfaces.FirstTokenID, nil
	}
	if len(v) != tokenIDLen {
		return 0, fmt.Errorf("corrupt next token id: %d bytes", len(v))
	}
	return interfaces.TokenID(binary.BigEndian.Uint64(v)), nil
}

func SetNextTokenID(ctx context.Context, w ReadWriter, id interfaces.TokenID) error {
	v := make([]byte, tokenIDLen)
	binary.BigEndian.PutUint64(v, uint64(id))
	return w.Set(ctx, NextTokenIDKey{}, v)
}

// GetOwner returns the owner of a token, if minted.
func GetOwner(ctx context.Context, r Reader, id interfaces.TokenID) (interfaces.Address, bool, error) {
	return getAddress(ctx, r, OwnerKey{TokenID: id})
}

func SetOwner(ctx context.Context, w ReadWriter, id interfaces.TokenID, owner interfaces.Address) error {
	return w.Set(ctx, OwnerKey{TokenID: id}, owner.Bytes())
}

// RemoveOwner deletes an owner record. No registry operation calls it.
func RemoveOwner(ctx context.Context, w ReadWriter, id interfaces.TokenID) error {
	return w.Remove(ctx, OwnerKey{TokenID: id})
}

// GetMetadata returns the metadata of a token, if minted.
func GetMetadata(ctx context.Context, r Reader, id interfaces.TokenID) (interfaces.ProjectMetadata, bool, error) {
	key := MetadataKey{TokenID: id}
	v, ok, err := r.Get(ctx, key)
	if err != nil || !ok {
		return interfaces.ProjectMetadata{}, ok, err
	}
	meta, err := decodeMetadata(v)
	if err != nil {
		return interfaces.ProjectMetadata{}, false, fmt.Errorf("corrupt %s: %w", key, err)
	}
	return meta, true, nil
}

func SetMetadata(ctx context.Context, w ReadWriter, id interfaces.TokenID, meta interfaces.ProjectMetadata) error {
	return w.Set(ctx, MetadataKey{TokenID: id}, encodeMetadata(meta))
}

// GetNonce returns the last request nonce consumed for signer, or zero.
func GetNonce(ctx context.Context, r Reader, signer interfaces.Address) (uint64, error) {
	key := NonceKey{Signer: signer}
	v, ok, err := r.Get(ctx, key)
	if err != nil || !ok {
		return 0, err
	}
	if len(v) != 8 {
		return 0, fmt.Errorf("corrupt %s: %d bytes", key, len(v))
	}
	return binary.BigEndian.Uint64(v), nil
}

// ConsumeNonce records nonce as used by signer. It fails with
// interfaces.ErrStaleNonce unless nonce exceeds the last consumed one.
func ConsumeNonce(ctx context.Context, w ReadWriter, signer interfaces.Address, nonce uint64) error {
	last, err := GetNonce(ctx, w, signer)
	if err != nil {
		return err
	}
	if nonce <= last {
		return fmt.Errorf("%w: %d does not exceed %d for %s", interfaces.ErrStaleNonce, nonce, last, signer.Hex())
	}
	v := make([]byte, 8)
	binary.BigEndian.PutUint64(v, nonce)
	return w.Set(ctx, NonceKey{Signer: signer}, v)
}

// [uint32 len][project id][uint32 len][content pointer]
func encodeMetadata(meta interfaces.ProjectMetadata) []byte {
	v := make([]byte, 0, 8+len(meta.ProjectID)+len(meta.ContentPointer))
	v = binary.BigEndian.AppendUint32(v, uint32(len(meta.ProjectID)))
	v = append(v, meta.ProjectID...)
	v = binary.BigEndian.AppendUint32(v, uint32(len(meta.ContentPointer)))
	v = append(v, meta.ContentPointer...)
	return v
}

func decodeMetadata(v []byte) (interfaces.ProjectMetadata, error) {
	projectID, rest, err := readField(v)
	if err != nil {
		return interfaces.ProjectMetadata{}, fmt.Errorf("project id: %w", err)
	}
	contentPointer, rest, err := readField(rest)
	if err != nil {
		return interfaces.ProjectMetadata{}, fmt.Errorf("content pointer: %w", err)
	}
	if len(rest) != 0 {
		return interfaces.ProjectMetadata{}, fmt.Errorf("%d trailing bytes", len(rest))
	}
	return interfaces.ProjectMetadata{ProjectID: projectID, ContentPointer: contentPointer}, nil
}

func readField(v []byte) (string, []byte, error) {
	if len(v) < 4 {
		return "", nil, errors.New("truncated length")
	}
	n := binary.BigEndian.Uint32(v)
	v = v[4:]
	if uint64(n) > uint64(len(v)) {
		return "", nil, fmt.Errorf("length %d exceeds %d remaining bytes", n, len(v))
	}
	return string(v[:n]), v[n:], nil
}

func getAddress(ctx context.Context, r Reader, key Key) (interfaces.Address, bool, error) {
	v, ok, err := r.Get(ctx, key)
	if err != nil || !ok {
		return interfaces.Address{}, ok, err
	}
	if len(v) != common.AddressLength {
		return interfaces.Address{}, false, fmt.Errorf("corrupt %s: %d bytes", key, len(v))
	}
	return common.BytesToAddress(v), true, nil
}
