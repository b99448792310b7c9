package interfaces

import (
	"context"
	"errors"
	"fmt"
)

// ErrStaleNonce is returned when a request nonce does not exceed the last
// nonce consumed for its signer, i.e. the request is a replay.
var ErrStaleNonce = errors.New("stale request nonce")

// RegistryError is the closed set of failures returned by registry operations.
// Numeric values are stable and exposed on the wire.
type RegistryError uint32

const (
	// ErrAlreadyInitialized is returned by Initialize once an admin is set.
	ErrAlreadyInitialized RegistryError = 1
	// ErrNotInitialized is returned by Mint before Initialize succeeded.
	ErrNotInitialized RegistryError = 2
	// ErrNotAdmin is returned by Mint when the caller cannot act as the admin.
	ErrNotAdmin RegistryError = 3
	// ErrTokenNotFound is returned for token ids that were never minted.
	ErrTokenNotFound RegistryError = 4
	// ErrNotTokenOwner is returned by Transfer when from is not the current owner.
	ErrNotTokenOwner RegistryError = 5
)

// Error implements error.
func (e RegistryError) Error() string {
	switch e {
	case ErrAlreadyInitialized:
		return "registry already initialized"
	case ErrNotInitialized:
		return "registry not initialized"
	case ErrNotAdmin:
		return "caller is not the registry admin"
	case ErrTokenNotFound:
		return "token not found"
	case ErrNotTokenOwner:
		return "caller is not the token owner"
	default:
		return fmt.Sprintf("unknown registry error %d", uint32(e))
	}
}

// Code returns the numeric discriminant.
func (e RegistryError) Code() uint32 {
	return uint32(e)
}

// RegistryErrorFromCode maps a wire code back to its error value.
func RegistryErrorFromCode(code uint32) (RegistryError, bool) {
	e := RegistryError(code)
	if e < ErrAlreadyInitialized || e > ErrNotTokenOwner {
		return 0, false
	}
	return e, true
}

// ProjectRegistry is the public operation set of the project NFT registry.
// Every operation is atomic with respect to storage: a failed call leaves no
// writes behind.
type ProjectRegistry interface {
	// Initialize sets the admin address. It can succeed only once.
	Initialize(ctx context.Context, admin Address) error

	// Mint assigns the next token id to the given owner and metadata.
	// Only the admin may mint.
	Mint(ctx context.Context, to Address, projectID string, contentPointer string) (TokenID, error)

	// Transfer moves a token from its current owner to a new one.
	// Only the current owner may transfer.
	Transfer(ctx context.Context, from Address, to Address, tokenID TokenID) error

	// OwnerOf returns the current owner of a token.
	OwnerOf(ctx context.Context, tokenID TokenID) (Address, error)

	// GetMetadata returns the metadata attached to a token at mint time.
	GetMetadata(ctx context.Context, tokenID TokenID) (ProjectMetadata, error)

	// Version identifies the registry build.
	Version() string
}

// Authorization is what a successful RequireAuth grants.
//
// A non-zero Nonce must be consumed by the operation it authorizes: the
// operation fails with ErrStaleNonce unless Nonce exceeds every nonce
// previously consumed for Signer. A zero Nonce carries no replay protection.
type Authorization struct {
	Signer Address
	Nonce  uint64
}

// Authorizer answers whether the caller carried by ctx may act as addr.
// A nil error means authorized.
type Authorizer interface {
	RequireAuth(ctx context.Context, addr Address) (Authorization, error)
}
