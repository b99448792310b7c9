package state

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/project-nft-registry/interfaces"
)

// State layout
//
//	0x0 (admin)          => address
//	0x1 (next token id)  => uint64
//	0x2 (owner)    [id]  => address
//	0x3 (metadata) [id]  => [len][project id][len][content pointer]
//	0x4 (nonce) [signer] => uint64
const (
	adminPrefix       byte = 0x0
	nextTokenIDPrefix byte = 0x1
	ownerPrefix       byte = 0x2
	metadataPrefix    byte = 0x3
	noncePrefix       byte = 0x4

	tokenIDLen = 8
)

// Key is the closed set of logical registry keys. Each variant derives a
// unique physical key from its prefix and payload.
type Key interface {
	Bytes() []byte
	String() string

	sealed()
}

// AdminKey addresses the registry admin.
type AdminKey struct{}

// NextTokenIDKey addresses the id the next mint will hand out.
type NextTokenIDKey struct{}

// OwnerKey addresses the owner of one token.
type OwnerKey struct {
	TokenID interfaces.TokenID
}

// MetadataKey addresses the metadata of one token.
type MetadataKey struct {
	TokenID interfaces.TokenID
}

// NonceKey addresses the last request nonce consumed for a signer.
type NonceKey struct {
	Signer interfaces.Address
}

func (AdminKey) Bytes() []byte       { return []byte{adminPrefix} }
func (NextTokenIDKey) Bytes() []byte { return []byte{nextTokenIDPrefix} }
func (k OwnerKey) Bytes() []byte     { return tokenKey(ownerPrefix, k.TokenID) }
func (k MetadataKey) Bytes() []byte  { return tokenKey(metadataPrefix, k.TokenID) }
func (k NonceKey) Bytes() []byte     { return append([]byte{noncePrefix}, k.Signer.Bytes()...) }

func (AdminKey) String() string       { return "Admin" }
func (NextTokenIDKey) String() string { return "NextTokenId" }
func (k OwnerKey) String() string     { return fmt.Sprintf("Owner(%d)", k.TokenID) }
func (k MetadataKey) String() string  { return fmt.Sprintf("Metadata(%d)", k.TokenID) }
func (k NonceKey) String() string     { return fmt.Sprintf("Nonce(%s)", k.Signer.Hex()) }

func (AdminKey) sealed()       {}
func (NextTokenIDKey) sealed() {}
func (OwnerKey) sealed()       {}
func (MetadataKey) sealed()    {}
func (NonceKey) sealed()       {}

// [prefix] + [token id]
func tokenKey(prefix byte, id interfaces.TokenID) []byte {
	k := make([]byte, 1+tokenIDLen)
	k[0] = prefix
	binary.BigEndian.PutUint64(k[1:], uint64(id))
	return k
}

// ParseKey decodes a physical key back to its logical variant.
func ParseKey(b []byte) (Key, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("empty key")
	}
	switch b[0] {
	case adminPrefix:
		if len(b) != 1 {
			return nil, fmt.Errorf("invalid admin key length %d", len(b))
		}
		return AdminKey{}, nil
	case nextTokenIDPrefix:
		if len(b) != 1 {
			return nil, fmt.Errorf("invalid next token id key length %d", len(b))
		}
		return NextTokenIDKey{}, nil
	case ownerPrefix, metadataPrefix:
		if len(b) != 1+tokenIDLen {
			return nil, fmt.Errorf("invalid token key length %d", len(b))
		}
		id := interfaces.TokenID(binary.BigEndian.Uint64(b[1:]))
		if b[0] == ownerPrefix {
			return OwnerKey{TokenID: id}, nil
		}
		return MetadataKey{TokenID: id}, nil
	case noncePrefix:
		if len(b) != 1+common.AddressLength {
			return nil, fmt.Errorf("invalid nonce key length %d", len(b))
		}
		return NonceKey{Signer: common.BytesToAddress(b[1:])}, nil
	default:
		return nil, fmt.Errorf("unknown key prefix 0x%x", b[0])
	}
}
