package storage

import (
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

var (
	// ErrInvalidPointer is returned for strings that are not raw sha2-256 CIDv1 pointers.
	ErrInvalidPointer = errors.New("invalid content pointer")

	// ErrContentMismatch is returned when fetched bytes do not hash to the requested pointer.
	ErrContentMismatch = errors.New("content does not match pointer")

	// ErrContentTooLarge is returned by backends that cannot store content of the given size.
	ErrContentTooLarge = errors.New("content too large")
)

// ComputePointer returns the content pointer of data.
func ComputePointer(data []byte) (string, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", fmt.Errorf("could not hash content: %w", err)
	}
	return cid.NewCidV1(cid.Raw, mh).String(), nil
}

// ParsePointer decodes and validates a content pointer.
func ParsePointer(pointer string) (cid.Cid, error) {
	c, err := cid.Decode(pointer)
	if err != nil {
		return cid.Undef, fmt.Errorf("%w: %v", ErrInvalidPointer, err)
	}
	prefix := c.Prefix()
	if prefix.Version != 1 || prefix.Codec != cid.Raw || prefix.MhType != multihash.SHA2_256 {
		return cid.Undef, fmt.Errorf("%w: %s is not a raw sha2-256 CIDv1", ErrInvalidPointer, pointer)
	}
	return c, nil
}

// VerifyContent checks that data hashes to pointer.
func VerifyContent(pointer string, data []byte) error {
	want, err := ParsePointer(pointer)
	if err != nil {
		return err
	}
	got, err := want.Prefix().Sum(data)
	if err != nil {
		return fmt.Errorf("could not hash content: %w", err)
	}
	if !got.Equals(want) {
		return fmt.Errorf("%w: expected %s, got %s", ErrContentMismatch, want, got)
	}
	return nil
}
