package auth

import (
	"context"

	"github.com/ruteri/project-nft-registry/interfaces"
)

type callerKey struct{}

type caller struct {
	signer interfaces.Address
	nonce  uint64
}

// WithSigner returns a context carrying a verified caller address without a
// request nonce. Operations authorized through it get no replay protection.
func WithSigner(ctx context.Context, signer interfaces.Address) context.Context {
	return context.WithValue(ctx, callerKey{}, caller{signer: signer})
}

// WithSignedRequest returns a context carrying the caller verified for a
// signed request and the nonce the request was signed with.
func WithSignedRequest(ctx context.Context, signer interfaces.Address, nonce uint64) context.Context {
	return context.WithValue(ctx, callerKey{}, caller{signer: signer, nonce: nonce})
}

// SignerFrom returns the verified caller address, if any.
func SignerFrom(ctx context.Context) (interfaces.Address, bool) {
	c, ok := ctx.Value(callerKey{}).(caller)
	return c.signer, ok
}

// NonceFrom returns the nonce of the verified request, or zero.
func NonceFrom(ctx context.Context) uint64 {
	c, _ := ctx.Value(callerKey{}).(caller)
	return c.nonce
}
