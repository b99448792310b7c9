package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/ruteri/project-nft-registry/interfaces"
)

// ErrUnauthorized is returned when the caller cannot prove control of the
// claimed address.
var ErrUnauthorized = errors.New("unauthorized")

var _ interfaces.Authorizer = ContextAuthorizer{}

// ContextAuthorizer authorizes a claimed address iff it equals the signer
// verified for the current request (see WithSignedRequest and
// VerifySignature). The request nonce is handed on for the operation to
// consume.
type ContextAuthorizer struct{}

func (ContextAuthorizer) RequireAuth(ctx context.Context, addr interfaces.Address) (interfaces.Authorization, error) {
	signer, ok := SignerFrom(ctx)
	if !ok {
		return interfaces.Authorization{}, fmt.Errorf("%w: request for %s is not signed", ErrUnauthorized, addr.Hex())
	}
	if signer != addr {
		return interfaces.Authorization{}, fmt.Errorf("%w: request for %s is signed by %s", ErrUnauthorized, addr.Hex(), signer.Hex())
	}
	return interfaces.Authorization{Signer: signer, Nonce: NonceFrom(ctx)}, nil
}
